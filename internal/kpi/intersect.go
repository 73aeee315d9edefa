package kpi

import (
	"sort"

	"sales-kpi-lab/internal/domain"
)

// entityKey identifies one (customer, channel) pair across periods.
type entityKey struct {
	CustomerID string
	Channel    domain.Channel
}

// Qualify selects (customer, channel) pairs whose rank met the threshold
// in every distinct period of the required set. This is a strict AND:
// top-N in two of three required periods is excluded, and an entity with
// no record at all for a required period can never reach the full count.
// Entries with nil totals never qualify regardless of their rank.
// Output order is channel ASC, customer ASC.
func Qualify(ranked []*domain.RankedTotal, threshold int, requiredPeriods []int) []*domain.QualifiedCustomer {
	required := make(map[int]struct{}, len(requiredPeriods))
	for _, p := range requiredPeriods {
		required[p] = struct{}{}
	}
	want := len(required)

	// Distinct required periods per entity in which rank <= threshold.
	hits := make(map[entityKey]map[int]struct{})
	for _, r := range ranked {
		if r.Total == nil || r.Rank > threshold {
			continue
		}
		if _, ok := required[r.Period]; !ok {
			continue
		}
		key := entityKey{CustomerID: r.CustomerID, Channel: r.Channel}
		if hits[key] == nil {
			hits[key] = make(map[int]struct{})
		}
		hits[key][r.Period] = struct{}{}
	}

	var qualified []*domain.QualifiedCustomer
	for key, periods := range hits {
		if len(periods) != want {
			continue
		}
		qualified = append(qualified, &domain.QualifiedCustomer{
			CustomerID:        key.CustomerID,
			Channel:           key.Channel,
			QualifyingPeriods: len(periods),
		})
	}

	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].Channel != qualified[j].Channel {
			return qualified[i].Channel < qualified[j].Channel
		}
		return qualified[i].CustomerID < qualified[j].CustomerID
	})

	return qualified
}
