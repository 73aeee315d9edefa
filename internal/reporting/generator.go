package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"sales-kpi-lab/internal/domain"
	"sales-kpi-lab/internal/kpi"
	"sales-kpi-lab/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	saleStore     storage.SaleStore
	customerStore storage.CustomerStore
	engine        *kpi.Engine
	now           func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	saleStore storage.SaleStore,
	customerStore storage.CustomerStore,
	engine *kpi.Engine,
) *Generator {
	return &Generator{
		saleStore:     saleStore,
		customerStore: customerStore,
		engine:        engine,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate computes a ranking run and builds the complete report around it.
func (g *Generator) Generate(ctx context.Context, periods []int, threshold int) (*Report, error) {
	run, err := g.engine.ComputeRun(ctx, periods, threshold)
	if err != nil {
		return nil, fmt.Errorf("compute run: %w", err)
	}

	dataSummary, err := g.generateDataSummary(ctx, run.Periods)
	if err != nil {
		return nil, err
	}

	rows, err := g.generateRows(ctx, run.Rows)
	if err != nil {
		return nil, err
	}

	return &Report{
		GeneratedAt: g.now(),
		RunID:       run.RunID,
		Periods:     run.Periods,
		Threshold:   run.Threshold,
		DataSummary: *dataSummary,
		DataQuality: DataQualitySection{
			IntegrityErrors: g.engine.GetMissingCustomerErrors(),
		},
		Rows: rows,
	}, nil
}

// generateDataSummary computes the data summary from sales and customers.
func (g *Generator) generateDataSummary(ctx context.Context, periods []int) (*DataSummary, error) {
	sales, err := g.saleStore.GetByPeriods(ctx, periods)
	if err != nil {
		return nil, fmt.Errorf("load sales for summary: %w", err)
	}

	customers, err := g.customerStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers for summary: %w", err)
	}

	channelCounts := make(map[domain.Channel]int)
	var dateRangeStart, dateRangeEnd int64
	if len(sales) > 0 {
		dateRangeStart = sales[0].SoldAt
		dateRangeEnd = sales[0].SoldAt
	}
	for _, s := range sales {
		channelCounts[s.Channel]++
		if s.SoldAt < dateRangeStart {
			dateRangeStart = s.SoldAt
		}
		if s.SoldAt > dateRangeEnd {
			dateRangeEnd = s.SoldAt
		}
	}

	counts := make([]ChannelCountRow, 0, len(channelCounts))
	for channel, count := range channelCounts {
		acquired, err := g.customerStore.GetByChannel(ctx, channel)
		if err != nil {
			return nil, fmt.Errorf("load customers for channel %s: %w", channel, err)
		}
		counts = append(counts, ChannelCountRow{
			Channel:   channel,
			Sales:     count,
			Customers: len(acquired),
		})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Channel < counts[j].Channel
	})

	return &DataSummary{
		TotalSales:     len(sales),
		TotalCustomers: len(customers),
		ChannelCounts:  counts,
		DateRangeStart: dateRangeStart,
		DateRangeEnd:   dateRangeEnd,
	}, nil
}

// generateRows joins run rows with customer names. A missing customer
// record leaves the name empty; the run itself already records the gap
// as an integrity error.
func (g *Generator) generateRows(ctx context.Context, runRows []*domain.TopNRow) ([]ReportRow, error) {
	names := make(map[string]string)

	rows := make([]ReportRow, len(runRows))
	for i, rr := range runRows {
		name, seen := names[rr.CustomerID]
		if !seen {
			customer, err := g.customerStore.GetByID(ctx, rr.CustomerID)
			switch {
			case err == nil:
				name = customer.Name
			case errors.Is(err, storage.ErrNotFound):
				name = ""
			default:
				return nil, fmt.Errorf("load customer %s: %w", rr.CustomerID, err)
			}
			names[rr.CustomerID] = name
		}

		rows[i] = ReportRow{
			Period:       rr.Period,
			Channel:      rr.Channel,
			CustomerID:   rr.CustomerID,
			CustomerName: name,
			Total:        rr.Total,
			Rank:         rr.Rank,
		}
	}

	return rows, nil
}
