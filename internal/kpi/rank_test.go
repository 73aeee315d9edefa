package kpi

import (
	"testing"

	"github.com/shopspring/decimal"

	"sales-kpi-lab/internal/domain"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func total(period int, channel domain.Channel, customer, amount string) *domain.PeriodTotal {
	return &domain.PeriodTotal{
		Period:     period,
		Channel:    channel,
		CustomerID: customer,
		Total:      dec(amount),
	}
}

func TestRankTotals_DenseRankOnTies(t *testing.T) {
	// Two entities tie on total; the next distinct total must get
	// previous rank + 1, not +tie_count.
	totals := []*domain.PeriodTotal{
		total(1998, domain.ChannelOnline, "cust-A", "100"),
		total(1998, domain.ChannelOnline, "cust-B", "50"),
		total(1998, domain.ChannelOnline, "cust-C", "50"),
		total(1998, domain.ChannelOnline, "cust-D", "40"),
	}

	ranked := RankTotals(totals)

	want := map[string]int{"cust-A": 1, "cust-B": 2, "cust-C": 2, "cust-D": 3}
	for _, r := range ranked {
		if want[r.CustomerID] != r.Rank {
			t.Errorf("customer %s: rank = %d, want %d", r.CustomerID, r.Rank, want[r.CustomerID])
		}
	}
}

func TestRankTotals_NextRankAfterTieBlock(t *testing.T) {
	// Dense-rank property: minimum rank among entities with the next-lower
	// total is max(tie ranks) + 1.
	totals := []*domain.PeriodTotal{
		total(1999, domain.ChannelStore, "cust-A", "80"),
		total(1999, domain.ChannelStore, "cust-B", "80"),
		total(1999, domain.ChannelStore, "cust-C", "80"),
		total(1999, domain.ChannelStore, "cust-D", "10"),
	}

	ranked := RankTotals(totals)

	byCustomer := make(map[string]int)
	for _, r := range ranked {
		byCustomer[r.CustomerID] = r.Rank
	}

	if byCustomer["cust-A"] != 1 || byCustomer["cust-B"] != 1 || byCustomer["cust-C"] != 1 {
		t.Errorf("tied entities must share rank 1, got %v", byCustomer)
	}
	if byCustomer["cust-D"] != 2 {
		t.Errorf("next distinct total must get rank 2, got %d", byCustomer["cust-D"])
	}
}

func TestRankTotals_PartitionsAreIndependent(t *testing.T) {
	// Same customer in two channels and two periods: each partition
	// ranks in isolation.
	totals := []*domain.PeriodTotal{
		total(1998, domain.ChannelOnline, "cust-A", "10"),
		total(1998, domain.ChannelOnline, "cust-B", "20"),
		total(1998, domain.ChannelStore, "cust-A", "99"),
		total(1999, domain.ChannelOnline, "cust-A", "30"),
	}

	ranked := RankTotals(totals)

	type key struct {
		period   int
		channel  domain.Channel
		customer string
	}
	got := make(map[key]int)
	for _, r := range ranked {
		got[key{r.Period, r.Channel, r.CustomerID}] = r.Rank
	}

	checks := map[key]int{
		{1998, domain.ChannelOnline, "cust-B"}: 1,
		{1998, domain.ChannelOnline, "cust-A"}: 2,
		{1998, domain.ChannelStore, "cust-A"}:  1,
		{1999, domain.ChannelOnline, "cust-A"}: 1,
	}
	for k, want := range checks {
		if got[k] != want {
			t.Errorf("%v: rank = %d, want %d", k, got[k], want)
		}
	}
}

func TestRankTotals_NilTotalsSortLast(t *testing.T) {
	nilTotal := &domain.PeriodTotal{Period: 1998, Channel: domain.ChannelOnline, CustomerID: "cust-N"}
	totals := []*domain.PeriodTotal{
		nilTotal,
		total(1998, domain.ChannelOnline, "cust-A", "5"),
		total(1998, domain.ChannelOnline, "cust-B", "1"),
	}

	ranked := RankTotals(totals)

	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked entries, got %d", len(ranked))
	}
	last := ranked[len(ranked)-1]
	if last.CustomerID != "cust-N" || last.Total != nil {
		t.Errorf("nil total must sort last, got %s at the end", last.CustomerID)
	}
	if last.Rank != 3 {
		t.Errorf("nil total rank = %d, want 3 (after every ranked value)", last.Rank)
	}
}

func TestRankTotals_OutputOrdering(t *testing.T) {
	totals := []*domain.PeriodTotal{
		total(1999, domain.ChannelOnline, "cust-A", "10"),
		total(1998, domain.ChannelStore, "cust-B", "20"),
		total(1998, domain.ChannelOnline, "cust-C", "30"),
	}

	ranked := RankTotals(totals)

	for i := 1; i < len(ranked); i++ {
		prev, cur := ranked[i-1], ranked[i]
		if prev.Period > cur.Period {
			t.Fatalf("output not ordered by period: %d before %d", prev.Period, cur.Period)
		}
		if prev.Period == cur.Period && prev.Channel > cur.Channel {
			t.Fatalf("output not ordered by channel within period")
		}
	}
}
