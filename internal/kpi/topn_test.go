package kpi

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"sales-kpi-lab/internal/domain"
)

func TestComputeConsistentTopN_MultiYearScenario(t *testing.T) {
	// X totals 100/90/80 across 1998/1999/2001, ranked 1st each year.
	// Y totals 95/85, ranked 2nd in 1998/1999, absent in 2001.
	// With threshold 2, only X qualifies (count 3); Y is excluded (count 2).
	records := []*domain.SaleRecord{
		sale("cust-X", "A", 1998, "100"),
		sale("cust-Y", "A", 1998, "95"),
		sale("cust-X", "A", 1999, "90"),
		sale("cust-Y", "A", 1999, "85"),
		sale("cust-X", "A", 2001, "80"),
	}

	rows, err := ComputeConsistentTopN(records, []int{1998, 1999, 2001}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (X in each period), got %d", len(rows))
	}
	wantTotals := map[int]string{1998: "100", 1999: "90", 2001: "80"}
	for _, row := range rows {
		if row.CustomerID != "cust-X" {
			t.Errorf("period %d: customer = %s, want cust-X", row.Period, row.CustomerID)
		}
		if row.Rank != 1 {
			t.Errorf("period %d: rank = %d, want 1", row.Period, row.Rank)
		}
		if !row.Total.Equal(decimal.RequireFromString(wantTotals[row.Period])) {
			t.Errorf("period %d: total = %s, want %s", row.Period, row.Total, wantTotals[row.Period])
		}
	}
}

func TestComputeConsistentTopN_TieAtBoundaryBothQualify(t *testing.T) {
	// B and C tie for total 50 at rank position 2 with threshold 2:
	// dense rank gives both rank 2 and both qualify.
	records := []*domain.SaleRecord{
		sale("cust-A", "A", 1998, "100"),
		sale("cust-B", "A", 1998, "50"),
		sale("cust-C", "A", 1998, "50"),
		sale("cust-A", "A", 1999, "100"),
		sale("cust-B", "A", 1999, "50"),
		sale("cust-C", "A", 1999, "50"),
	}

	rows, err := ComputeConsistentTopN(records, []int{1998, 1999}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	customers := make(map[string]int)
	for _, row := range rows {
		customers[row.CustomerID]++
	}
	for _, c := range []string{"cust-A", "cust-B", "cust-C"} {
		if customers[c] != 2 {
			t.Errorf("customer %s: appears %d times, want 2 (once per period)", c, customers[c])
		}
	}
}

func TestComputeConsistentTopN_EmptyRecords(t *testing.T) {
	rows, err := ComputeConsistentTopN(nil, []int{1998}, 2)
	if err != nil {
		t.Fatalf("empty input must yield empty output, not an error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty output, got %d rows", len(rows))
	}
}

func TestComputeConsistentTopN_InvalidInput(t *testing.T) {
	records := []*domain.SaleRecord{sale("cust-A", "A", 1998, "1")}

	if _, err := ComputeConsistentTopN(records, nil, 2); !errors.Is(err, ErrNoPeriods) {
		t.Errorf("empty period set: got %v, want ErrNoPeriods", err)
	}
	if _, err := ComputeConsistentTopN(records, []int{1998}, 0); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("zero threshold: got %v, want ErrInvalidThreshold", err)
	}
	if _, err := ComputeConsistentTopN(records, []int{1998}, -3); !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("negative threshold: got %v, want ErrInvalidThreshold", err)
	}

	malformed := []*domain.SaleRecord{{Channel: "A", Period: 1998}}
	if _, err := ComputeConsistentTopN(malformed, []int{1998}, 2); !errors.Is(err, ErrMalformedRecord) {
		t.Errorf("malformed record: got %v, want ErrMalformedRecord", err)
	}
}

func TestComputeConsistentTopN_Idempotent(t *testing.T) {
	records := []*domain.SaleRecord{
		sale("cust-X", "A", 1998, "100"),
		sale("cust-Y", "A", 1998, "95"),
		sale("cust-X", "A", 1999, "90"),
		sale("cust-Y", "A", 1999, "85"),
	}

	first, err := ComputeConsistentTopN(records, []int{1998, 1999}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputeConsistentTopN(records, []int{1998, 1999}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Period != b.Period || a.Channel != b.Channel || a.CustomerID != b.CustomerID ||
			a.Rank != b.Rank || !a.Total.Equal(b.Total) {
			t.Fatalf("run output differs at index %d: %+v vs %+v", i, a, b)
		}
	}
}

func TestComputeConsistentTopN_RemovingPeriodExcludes(t *testing.T) {
	// Strict-AND property: Y qualifies over {1998, 1999} but adding 2001
	// (where Y has no sales) must exclude it.
	records := []*domain.SaleRecord{
		sale("cust-X", "A", 1998, "100"),
		sale("cust-Y", "A", 1998, "95"),
		sale("cust-X", "A", 1999, "90"),
		sale("cust-Y", "A", 1999, "85"),
		sale("cust-X", "A", 2001, "80"),
	}

	twoPeriods, err := ComputeConsistentTopN(records, []int{1998, 1999}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hasY := false
	for _, row := range twoPeriods {
		if row.CustomerID == "cust-Y" {
			hasY = true
		}
	}
	if !hasY {
		t.Fatalf("cust-Y must qualify over {1998, 1999}")
	}

	threePeriods, err := ComputeConsistentTopN(records, []int{1998, 1999, 2001}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range threePeriods {
		if row.CustomerID == "cust-Y" {
			t.Errorf("cust-Y must not qualify once 2001 is required")
		}
	}
}

func TestComputeConsistentTopN_BoundedByCommonEntities(t *testing.T) {
	// Result cardinality is bounded by the number of distinct entities
	// present in every required period.
	records := []*domain.SaleRecord{
		sale("cust-X", "A", 1998, "100"),
		sale("cust-Y", "A", 1998, "90"),
		sale("cust-Z", "A", 1998, "80"),
		sale("cust-X", "A", 1999, "70"),
	}

	rows, err := ComputeConsistentTopN(records, []int{1998, 1999}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	distinct := make(map[string]struct{})
	for _, row := range rows {
		distinct[row.CustomerID] = struct{}{}
	}
	// Only cust-X appears in both periods.
	if len(distinct) > 1 {
		t.Errorf("qualifying entities = %d, want at most 1", len(distinct))
	}
}

func TestComputeConsistentTopN_RoundsToTwoDecimals(t *testing.T) {
	records := []*domain.SaleRecord{
		sale("cust-X", "A", 1998, "33.333"),
		sale("cust-X", "A", 1998, "33.333"),
	}

	rows, err := ComputeConsistentTopN(records, []int{1998}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	// 66.666 rounds half away from zero to 66.67.
	if got := rows[0].Total.String(); got != "66.67" {
		t.Errorf("total = %s, want 66.67", got)
	}
}

func TestComputeConsistentTopN_CustomExtractors(t *testing.T) {
	// Re-partition by currency instead of channel.
	records := []*domain.SaleRecord{
		{CustomerID: "c1", Channel: "X", Period: 1998, Amount: decimal.RequireFromString("10"), Currency: "USD"},
		{CustomerID: "c2", Channel: "Y", Period: 1998, Amount: decimal.RequireFromString("20"), Currency: "USD"},
	}

	rows, err := ComputeConsistentTopN(records, []int{1998}, 1,
		WithGroupBy(func(s *domain.SaleRecord) domain.Channel { return domain.Channel(s.Currency) }),
		WithEntityBy(func(s *domain.SaleRecord) string { return s.CustomerID }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Channel != "USD" {
		t.Errorf("group key = %s, want USD", rows[0].Channel)
	}
	if rows[0].CustomerID != "c2" {
		t.Errorf("top entity = %s, want c2", rows[0].CustomerID)
	}
}

func TestComputeConsistentTopN_DuplicatePeriodsCountOnce(t *testing.T) {
	// A duplicated required period must not inflate the distinct-period
	// count an entity has to reach.
	records := []*domain.SaleRecord{
		sale("cust-X", "A", 1998, "100"),
		sale("cust-X", "A", 1999, "90"),
	}

	rows, err := ComputeConsistentTopN(records, []int{1998, 1999, 1998}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}
}
