// Package kpi implements the consistent top-N ranking engine: a pure,
// deterministic aggregate → dense-rank → intersect → report pipeline over
// immutable sale records. Each run recomputes every derived value from
// scratch; there is no persisted intermediate state.
package kpi

import "sales-kpi-lab/internal/domain"

// ComputeConsistentTopN returns, for each required period, the ranked
// totals of the entities that placed in the top threshold positions
// (dense rank) in every one of the required periods.
//
// Empty records yield empty output and a nil error. An empty period set
// or a non-positive threshold fails fast with nothing computed. The
// output ordering and rounding are documented on BuildRows.
func ComputeConsistentTopN(
	records []*domain.SaleRecord,
	requiredPeriods []int,
	threshold int,
	opts ...Option,
) ([]*domain.TopNRow, error) {
	if len(requiredPeriods) == 0 {
		return nil, ErrNoPeriods
	}
	if threshold < 1 {
		return nil, ErrInvalidThreshold
	}
	if len(records) == 0 {
		return nil, nil
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	periods := dedupePeriods(requiredPeriods)

	totals, err := aggregateTotals(records, periods, o.groupBy, o.entityBy)
	if err != nil {
		return nil, err
	}

	ranked := RankTotals(totals)
	qualified := Qualify(ranked, threshold, periods)
	return BuildRows(ranked, qualified), nil
}

// dedupePeriods removes duplicates while preserving first-seen order.
// The strict-AND count in Qualify depends on distinct periods only.
func dedupePeriods(periods []int) []int {
	seen := make(map[int]struct{}, len(periods))
	out := make([]int, 0, len(periods))
	for _, p := range periods {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
