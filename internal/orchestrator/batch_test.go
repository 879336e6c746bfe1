package orchestrator

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"controller-sizer/internal/catalog"
	"controller-sizer/internal/domain"
	"controller-sizer/internal/solver"
)

var allExpansions = []string{catalog.XM90, catalog.XM70, catalog.XM30, catalog.XM32}

func column(schema domain.Schema, name string) int {
	for i, c := range schema.Columns() {
		if c == name {
			return i
		}
	}
	return -1
}

var _ = Describe("BatchDriver", func() {
	var (
		ctx    context.Context
		driver *BatchDriver
		req    BatchRequest
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = NewBatchDriver(solver.New(catalog.Default(), solver.WithWorkers(2)), nil, 3)
		req = BatchRequest{
			Base:       catalog.S500,
			Expansions: allExpansions,
			IncludeAux: true,
			Rows: []domain.DemandRow{
				{Name: "AHU-1", Demand: domain.PointDemand{BO: 9, UI: 2, AI: 5, Pressure: 2}},
				{Name: "AHU-2", Demand: domain.PointDemand{BO: 13}},
			},
		}
	})

	Context("when every row is feasible", func() {
		It("selects the cheapest candidate per row in input order", func() {
			res, err := driver.Run(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Rows).To(HaveLen(2))

			Expect(res.Rows[0].Name).To(Equal("AHU-1"))
			Expect(res.Rows[0].Candidate.Price).To(Equal(1300.0))
			Expect(res.Rows[0].Candidate.Quantities).To(Equal([]int{0, 0, 0, 0}))

			Expect(res.Rows[1].Name).To(Equal("AHU-2"))
			Expect(res.Rows[1].Candidate.Price).To(Equal(1620.0))
			Expect(res.Rows[1].Candidate.Quantity(res.Schema, catalog.XM32)).To(Equal(1))
		})

		It("totals the price column as the sum of the selected prices", func() {
			res, err := driver.Run(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			idx := column(res.Schema, domain.ColumnPrice)
			Expect(res.Total[idx]).To(Equal(res.Rows[0].Candidate.Price + res.Rows[1].Candidate.Price))
			Expect(res.Total[idx]).To(Equal(2920.0))
			Expect(res.Total[column(res.Schema, catalog.S500)]).To(Equal(2.0))
			Expect(res.Total).To(HaveLen(len(res.Schema.Columns())))
		})

		It("applies the shared spare percentage to every row", func() {
			req.SparePercent = 10
			res, err := driver.Run(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Rows[0].Demand.BO).To(Equal(10))
			Expect(res.Rows[1].Demand.BO).To(Equal(15))
		})
	})

	Context("when a row has no feasible combination", func() {
		BeforeEach(func() {
			req.Expansions = []string{catalog.XM30}
			req.Rows = []domain.DemandRow{
				{Name: "ok", Demand: domain.PointDemand{BO: 1}},
				{Name: "needs-bo", Demand: domain.PointDemand{BO: 12}},
				{Name: "needs-more-bo", Demand: domain.PointDemand{BO: 20}},
			}
		})

		It("fails naming the first offending row", func() {
			_, err := driver.Run(ctx, req)
			Expect(errors.Is(err, domain.ErrNoFeasibleCombination)).To(BeTrue())

			var rowErr *domain.RowError
			Expect(errors.As(err, &rowErr)).To(BeTrue())
			Expect(rowErr.Row).To(Equal("needs-bo"))
		})
	})

	Context("when rows exceed the base unit ceiling", func() {
		It("reports every offending row before solving", func() {
			req.Rows = append(req.Rows,
				domain.DemandRow{Name: "big-1", Demand: domain.PointDemand{UI: 200}},
				domain.DemandRow{Name: "big-2", Demand: domain.PointDemand{BO: 100, BI: 40}},
			)
			_, err := driver.Run(ctx, req)
			Expect(errors.Is(err, domain.ErrCapacityExceeded)).To(BeTrue())

			var capErr *domain.CapacityExceededRowsError
			Expect(errors.As(err, &capErr)).To(BeTrue())
			Expect(capErr.Rows).To(Equal([]string{"big-1", "big-2"}))
			Expect(capErr.Ceiling).To(Equal(133))
		})
	})

	Context("with invalid input", func() {
		It("rejects negative counts naming the row", func() {
			req.Rows[1].Demand.AI = -1
			_, err := driver.Run(ctx, req)
			Expect(errors.Is(err, domain.ErrInvalidDemand)).To(BeTrue())

			var rowErr *domain.RowError
			Expect(errors.As(err, &rowErr)).To(BeTrue())
			Expect(rowErr.Row).To(Equal("AHU-2"))
		})

		It("rejects an empty batch", func() {
			_, err := driver.Run(ctx, BatchRequest{Base: catalog.S500})
			Expect(errors.Is(err, domain.ErrInvalidDemand)).To(BeTrue())
		})

		It("rejects an expansion used as base", func() {
			req.Base = catalog.XM90
			_, err := driver.Run(ctx, req)
			Expect(errors.Is(err, domain.ErrUnknownModule)).To(BeTrue())
		})
	})
})
