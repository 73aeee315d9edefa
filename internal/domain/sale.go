package domain

import "github.com/shopspring/decimal"

// SaleRecord represents one immutable transaction-level row.
// It is the source of truth for every derived KPI value and is never
// mutated after ingestion.
type SaleRecord struct {
	SaleID     string          // deterministic hash, see internal/idhash
	CustomerID string          // customer the sale belongs to
	Channel    Channel         // sales channel (group key)
	Period     int             // calendar year the sale falls into
	SoldAt     int64           // sale timestamp (Unix ms)
	Amount     decimal.Decimal // monetary amount, unrounded
	Currency   string          // ISO 4217 code
}

// Valid reports whether the record carries every field the KPI engine
// needs to attribute it to exactly one (period, channel, customer) key.
func (s *SaleRecord) Valid() bool {
	return s != nil &&
		s.CustomerID != "" &&
		s.Channel != "" &&
		s.Period > 0
}
