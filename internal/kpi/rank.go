package kpi

import (
	"sort"

	"sales-kpi-lab/internal/domain"
)

// partitionKey identifies one independent ranking partition.
type partitionKey struct {
	Period  int
	Channel domain.Channel
}

// RankTotals assigns dense ranks within each (period, channel) partition,
// by total descending. Equal totals share a rank and the next distinct
// total gets the previous rank + 1, never +tie_count: a rank that skips
// on ties would under-count the entities meeting a top-N cutoff when the
// tie sits at the boundary.
//
// Nil totals sort last, after every ranked value, and all share one rank.
// Output order is period ASC, channel ASC, rank ASC, customer ASC.
func RankTotals(totals []*domain.PeriodTotal) []*domain.RankedTotal {
	partitions := make(map[partitionKey][]*domain.PeriodTotal)
	for _, t := range totals {
		key := partitionKey{Period: t.Period, Channel: t.Channel}
		partitions[key] = append(partitions[key], t)
	}

	var ranked []*domain.RankedTotal
	for key, members := range partitions {
		sortPartition(members)

		rank := 0
		var prev *domain.PeriodTotal
		for _, t := range members {
			if prev == nil || !sameTotal(prev, t) {
				rank++
			}
			ranked = append(ranked, &domain.RankedTotal{
				Period:     t.Period,
				Channel:    key.Channel,
				CustomerID: t.CustomerID,
				Total:      t.Total,
				Rank:       rank,
			})
			prev = t
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Period != ranked[j].Period {
			return ranked[i].Period < ranked[j].Period
		}
		if ranked[i].Channel != ranked[j].Channel {
			return ranked[i].Channel < ranked[j].Channel
		}
		if ranked[i].Rank != ranked[j].Rank {
			return ranked[i].Rank < ranked[j].Rank
		}
		return ranked[i].CustomerID < ranked[j].CustomerID
	})

	return ranked
}

// sortPartition orders one partition by total DESC with nil totals last,
// customer id ASC as the deterministic tiebreak inside equal totals.
func sortPartition(members []*domain.PeriodTotal) {
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i].Total, members[j].Total
		switch {
		case a == nil && b == nil:
			return members[i].CustomerID < members[j].CustomerID
		case a == nil:
			return false
		case b == nil:
			return true
		}
		if cmp := a.Cmp(*b); cmp != 0 {
			return cmp > 0
		}
		return members[i].CustomerID < members[j].CustomerID
	})
}

// sameTotal reports whether two adjacent partition members tie.
func sameTotal(a, b *domain.PeriodTotal) bool {
	if a.Total == nil || b.Total == nil {
		return a.Total == nil && b.Total == nil
	}
	return a.Total.Cmp(*b.Total) == 0
}
