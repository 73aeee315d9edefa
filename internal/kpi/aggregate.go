package kpi

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"sales-kpi-lab/internal/domain"
)

// totalKey identifies one (period, channel, entity) aggregation bucket.
type totalKey struct {
	Period  int
	Channel domain.Channel
	Entity  string
}

// AggregateTotals groups sale records into per-(period, channel, customer)
// revenue totals, restricted to records whose period is in requiredPeriods.
// A combination with no matching records is absent from the output, not
// zero-valued. Output order is period ASC, channel ASC, customer ASC.
func AggregateTotals(records []*domain.SaleRecord, requiredPeriods []int) ([]*domain.PeriodTotal, error) {
	opts := defaultOptions()
	return aggregateTotals(records, requiredPeriods, opts.groupBy, opts.entityBy)
}

// aggregateTotals is the extractor-parameterized form used by the
// pipeline entry point.
func aggregateTotals(
	records []*domain.SaleRecord,
	requiredPeriods []int,
	groupBy GroupFunc,
	entityBy EntityFunc,
) ([]*domain.PeriodTotal, error) {
	required := make(map[int]struct{}, len(requiredPeriods))
	for _, p := range requiredPeriods {
		required[p] = struct{}{}
	}

	// Partial sums are buffered until the input is exhausted; a bucket's
	// total cannot be finalized before every contributing record is seen.
	sums := make(map[totalKey]decimal.Decimal)

	for i, r := range records {
		if !r.Valid() {
			return nil, fmt.Errorf("record %d: %w", i, ErrMalformedRecord)
		}
		if _, ok := required[r.Period]; !ok {
			continue
		}

		key := totalKey{Period: r.Period, Channel: groupBy(r), Entity: entityBy(r)}
		if key.Channel == "" || key.Entity == "" {
			return nil, fmt.Errorf("record %d: empty aggregation key: %w", i, ErrMalformedRecord)
		}
		sums[key] = sums[key].Add(r.Amount)
	}

	totals := make([]*domain.PeriodTotal, 0, len(sums))
	for key, sum := range sums {
		total := sum
		totals = append(totals, &domain.PeriodTotal{
			Period:     key.Period,
			Channel:    key.Channel,
			CustomerID: key.Entity,
			Total:      &total,
		})
	}

	// Sort for deterministic output
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Period != totals[j].Period {
			return totals[i].Period < totals[j].Period
		}
		if totals[i].Channel != totals[j].Channel {
			return totals[i].Channel < totals[j].Channel
		}
		return totals[i].CustomerID < totals[j].CustomerID
	})

	return totals, nil
}
