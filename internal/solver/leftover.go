package solver

import "controller-sizer/internal/domain"

// Leftover returns the surplus per pool after drawing demand d from totals t
// in a fixed order:
//
//	UI from UI, then UIAO
//	AI from AI, then UI, then UIAO
//	AO from UIAO, then BIAO
//	BI from BI, then BIAO, then UI, then UIAO
//
// BO and PRESSURE are drawn only from their own pools. Unmet demand is
// dropped, so no pool goes below zero.
func Leftover(d domain.PointDemand, t domain.Capacity) domain.Capacity {
	rem := t

	need := d.BO
	draw(&rem.BO, &need)

	need = d.Pressure
	draw(&rem.Pressure, &need)

	need = d.UI
	draw(&rem.UI, &need)
	draw(&rem.UIAO, &need)

	need = d.AI
	draw(&rem.AI, &need)
	draw(&rem.UI, &need)
	draw(&rem.UIAO, &need)

	need = d.AO
	draw(&rem.UIAO, &need)
	draw(&rem.BIAO, &need)

	need = d.BI
	draw(&rem.BI, &need)
	draw(&rem.BIAO, &need)
	draw(&rem.UI, &need)
	draw(&rem.UIAO, &need)

	return rem
}

func draw(pool, need *int) {
	if *pool <= 0 || *need <= 0 {
		return
	}
	n := min(*pool, *need)
	*pool -= n
	*need -= n
}
