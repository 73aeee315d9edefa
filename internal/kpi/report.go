package kpi

import (
	"sort"

	"sales-kpi-lab/internal/domain"
)

// BuildRows joins qualifying entities back to their per-period ranked
// totals and prepares them for presentation: totals are rounded to
// 2 decimal places (half away from zero), rows are ordered by period ASC,
// channel ASC, total DESC, customer ASC. Rounding happens only here, at
// the output boundary, so it can never flip a rank.
func BuildRows(ranked []*domain.RankedTotal, qualified []*domain.QualifiedCustomer) []*domain.TopNRow {
	members := make(map[entityKey]struct{}, len(qualified))
	for _, q := range qualified {
		members[entityKey{CustomerID: q.CustomerID, Channel: q.Channel}] = struct{}{}
	}

	var rows []*domain.TopNRow
	for _, r := range ranked {
		if r.Total == nil {
			continue
		}
		if _, ok := members[entityKey{CustomerID: r.CustomerID, Channel: r.Channel}]; !ok {
			continue
		}
		rows = append(rows, &domain.TopNRow{
			Period:     r.Period,
			Channel:    r.Channel,
			CustomerID: r.CustomerID,
			Total:      r.Total.Round(2),
			Rank:       r.Rank,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Period != rows[j].Period {
			return rows[i].Period < rows[j].Period
		}
		if rows[i].Channel != rows[j].Channel {
			return rows[i].Channel < rows[j].Channel
		}
		if cmp := rows[i].Total.Cmp(rows[j].Total); cmp != 0 {
			return cmp > 0
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})

	return rows
}
