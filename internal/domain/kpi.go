package domain

import "github.com/shopspring/decimal"

// PeriodTotal is one per-(period, channel, customer) revenue total
// produced by aggregation. Recomputed from scratch each run and
// discarded after ranking.
type PeriodTotal struct {
	Period     int
	Channel    Channel
	CustomerID string
	// Total is nil when a caller supplies pre-aggregated data with an
	// unknown total. The aggregator itself never emits nil; the ranker
	// orders nil totals last so they can never reach the top-N cutoff.
	Total *decimal.Decimal
}

// RankedTotal is a PeriodTotal with its dense rank inside the
// (period, channel) partition. Equal totals share a rank and the next
// distinct total gets the previous rank + 1, with no gaps.
type RankedTotal struct {
	Period     int
	Channel    Channel
	CustomerID string
	Total      *decimal.Decimal
	Rank       int
}

// QualifiedCustomer is a (customer, channel) pair that ranked at or
// above the threshold in every required period.
type QualifiedCustomer struct {
	CustomerID string
	Channel    Channel
	// QualifyingPeriods counts distinct required periods in which the
	// rank met the threshold. Equals the required-set size by contract.
	QualifyingPeriods int
}

// TopNRow is one row of the final report: a qualifying customer's total
// and rank in a single period, rounded for presentation.
type TopNRow struct {
	Period     int
	Channel    Channel
	CustomerID string
	Total      decimal.Decimal // rounded to 2 decimal places
	Rank       int
}
