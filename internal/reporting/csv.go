package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders report rows as CSV string.
func RenderCSV(rows []ReportRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("period,channel,customer_id,customer_name,total,rank\n")

	// Rows
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s,%d\n",
			row.Period,
			row.Channel,
			row.CustomerID,
			csvEscape(row.CustomerName),
			row.Total.StringFixed(2),
			row.Rank,
		))
	}

	return sb.String()
}

// csvEscape quotes a field containing commas or quotes.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
