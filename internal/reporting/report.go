package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"sales-kpi-lab/internal/domain"
)

// Report represents the consistent top-N report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string
	Periods     []int
	Threshold   int

	// Data Summary
	DataSummary DataSummary

	// Data Quality (referential integrity)
	DataQuality DataQualitySection

	// Report rows (sorted by period, channel, total DESC, customer_id)
	Rows []ReportRow
}

// DataSummary describes the input data behind the report.
type DataSummary struct {
	TotalSales     int
	TotalCustomers int
	ChannelCounts  []ChannelCountRow
	DateRangeStart int64 // Unix ms, earliest sold_at
	DateRangeEnd   int64 // Unix ms, latest sold_at
}

// ChannelCountRow breaks the summary down per channel, sorted by channel.
type ChannelCountRow struct {
	Channel   domain.Channel
	Sales     int
	Customers int // customers whose first sale was on this channel
}

// DataQualitySection lists integrity errors found while loading data.
type DataQualitySection struct {
	IntegrityErrors []string
}

// ReportRow is one report line: a qualified customer's total in one
// period and channel, with its dense rank within that partition.
type ReportRow struct {
	Period       int
	Channel      domain.Channel
	CustomerID   string
	CustomerName string // empty if the customer record is missing
	Total        decimal.Decimal
	Rank         int
}
