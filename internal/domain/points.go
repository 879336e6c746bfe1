package domain

// PointKind is a logical channel kind requested by a system.
type PointKind string

const (
	KindBO       PointKind = "BO"
	KindBI       PointKind = "BI"
	KindUI       PointKind = "UI"
	KindAI       PointKind = "AI"
	KindAO       PointKind = "AO"
	KindPressure PointKind = "PRESSURE"
)

// DemandKinds lists every point kind in canonical order.
var DemandKinds = []PointKind{KindBO, KindBI, KindUI, KindAI, KindAO, KindPressure}

// PointDemand holds the required count per point kind.
// Kinds that are not set are zero.
type PointDemand struct {
	BO       int `json:"BO" yaml:"BO"`
	BI       int `json:"BI" yaml:"BI"`
	UI       int `json:"UI" yaml:"UI"`
	AI       int `json:"AI" yaml:"AI"`
	AO       int `json:"AO" yaml:"AO"`
	Pressure int `json:"PRESSURE" yaml:"PRESSURE"`
}

// Get returns the count for kind, or 0 for an unknown kind.
func (d PointDemand) Get(kind PointKind) int {
	switch kind {
	case KindBO:
		return d.BO
	case KindBI:
		return d.BI
	case KindUI:
		return d.UI
	case KindAI:
		return d.AI
	case KindAO:
		return d.AO
	case KindPressure:
		return d.Pressure
	}
	return 0
}

// Set returns a copy of d with kind set to v.
func (d PointDemand) Set(kind PointKind, v int) PointDemand {
	switch kind {
	case KindBO:
		d.BO = v
	case KindBI:
		d.BI = v
	case KindUI:
		d.UI = v
	case KindAI:
		d.AI = v
	case KindAO:
		d.AO = v
	case KindPressure:
		d.Pressure = v
	}
	return d
}

// Total returns the sum over all kinds.
func (d PointDemand) Total() int {
	return d.BO + d.BI + d.UI + d.AI + d.AO + d.Pressure
}

// Pool is a physical channel pool provided by hardware.
// UIAO and BIAO are hybrid pools serving two logical kinds each.
type Pool string

const (
	PoolBO       Pool = "BO"
	PoolBI       Pool = "BI"
	PoolUI       Pool = "UI"
	PoolAI       Pool = "AI"
	PoolUIAO     Pool = "UIAO"
	PoolBIAO     Pool = "BIAO"
	PoolPressure Pool = "PRESSURE"
)

// Pools lists every pool in output column order.
var Pools = []Pool{PoolBO, PoolBI, PoolUI, PoolAI, PoolUIAO, PoolBIAO, PoolPressure}

// Capacity is a count per pool. It is used both for per-unit capacity of a
// module and for aggregate totals and leftovers of a combination.
type Capacity struct {
	BO       int `json:"BO" yaml:"BO"`
	BI       int `json:"BI" yaml:"BI"`
	UI       int `json:"UI" yaml:"UI"`
	AI       int `json:"AI" yaml:"AI"`
	UIAO     int `json:"UIAO" yaml:"UIAO"`
	BIAO     int `json:"BIAO" yaml:"BIAO"`
	Pressure int `json:"PRESSURE" yaml:"PRESSURE"`
}

// Add returns c + o*qty.
func (c Capacity) Add(o Capacity, qty int) Capacity {
	return Capacity{
		BO:       c.BO + o.BO*qty,
		BI:       c.BI + o.BI*qty,
		UI:       c.UI + o.UI*qty,
		AI:       c.AI + o.AI*qty,
		UIAO:     c.UIAO + o.UIAO*qty,
		BIAO:     c.BIAO + o.BIAO*qty,
		Pressure: c.Pressure + o.Pressure*qty,
	}
}

// Get returns the count for pool.
func (c Capacity) Get(p Pool) int {
	switch p {
	case PoolBO:
		return c.BO
	case PoolBI:
		return c.BI
	case PoolUI:
		return c.UI
	case PoolAI:
		return c.AI
	case PoolUIAO:
		return c.UIAO
	case PoolBIAO:
		return c.BIAO
	case PoolPressure:
		return c.Pressure
	}
	return 0
}

// Values returns the counts in Pools order.
func (c Capacity) Values() []int {
	return []int{c.BO, c.BI, c.UI, c.AI, c.UIAO, c.BIAO, c.Pressure}
}

// Total returns the sum over all pools.
func (c Capacity) Total() int {
	return c.BO + c.BI + c.UI + c.AI + c.UIAO + c.BIAO + c.Pressure
}
