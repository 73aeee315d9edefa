package reporting

import (
	"fmt"
	"strings"
	"time"

	"sales-kpi-lab/internal/idhash"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Consistent Top Customers Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: %s (%s)\n\n", idhash.ShortID(r.RunID), r.RunID))
	sb.WriteString(fmt.Sprintf("Periods: %s | Top-N threshold: %d\n\n", formatPeriods(r.Periods), r.Threshold))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Sales | %d |\n", r.DataSummary.TotalSales))
	sb.WriteString(fmt.Sprintf("| Total Customers | %d |\n", r.DataSummary.TotalCustomers))
	for _, c := range r.DataSummary.ChannelCounts {
		sb.WriteString(fmt.Sprintf("| Sales (%s) | %d |\n", c.Channel, c.Sales))
		sb.WriteString(fmt.Sprintf("| Customers first seen on %s | %d |\n", c.Channel, c.Customers))
	}
	sb.WriteString(fmt.Sprintf("| Date Range Start (ms) | %d |\n", r.DataSummary.DateRangeStart))
	sb.WriteString(fmt.Sprintf("| Date Range End (ms) | %d |\n", r.DataSummary.DateRangeEnd))
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.IntegrityErrors) > 0 {
		sb.WriteString("### Integrity Errors\n\n")
		for _, err := range r.DataQuality.IntegrityErrors {
			sb.WriteString(fmt.Sprintf("- %s\n", err))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No integrity errors found.\n\n")
	}

	// Top Customers
	sb.WriteString("## Top Customers\n\n")
	if len(r.Rows) > 0 {
		sb.WriteString("| Period | Channel | Customer | Name | Total | Rank |\n")
		sb.WriteString("|--------|---------|----------|------|-------|------|\n")
		for _, row := range r.Rows {
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %d |\n",
				row.Period, row.Channel, row.CustomerID, row.CustomerName,
				row.Total.StringFixed(2), row.Rank))
		}
	} else {
		sb.WriteString("No customer qualified in every required period.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

// formatPeriods renders a period list as "1998, 1999, 2001".
func formatPeriods(periods []int) string {
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return strings.Join(parts, ", ")
}
