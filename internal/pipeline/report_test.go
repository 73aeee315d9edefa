package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-kpi-lab/internal/storage/memory"
)

func fixedClock() time.Time {
	return time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)
}

func TestReportPipeline_RunWithFixtures(t *testing.T) {
	ctx := context.Background()
	saleStore := memory.NewSaleStore()
	customerStore := memory.NewCustomerStore()
	runStore := memory.NewRankingRunStore()

	require.NoError(t, LoadFixtures(ctx, saleStore, customerStore))

	outputDir := t.TempDir()
	p := NewReportPipeline(saleStore, customerStore, runStore, outputDir).WithClock(fixedClock)

	err := p.Run(ctx, []int{1998, 1999, 2001}, 3)
	require.NoError(t, err)

	// Both output files exist
	mdBytes, err := os.ReadFile(filepath.Join(outputDir, ReportFileName))
	require.NoError(t, err)
	csvBytes, err := os.ReadFile(filepath.Join(outputDir, CSVFileName))
	require.NoError(t, err)

	md := string(mdBytes)
	csv := string(csvBytes)

	// Only cust_001 and cust_002 hold a top-3 ONLINE rank in all three periods.
	// cust_003 slips to rank 4 in 1999; the STORE channel never covers 2001
	// for cust_004 or 1998 for cust_005.
	assert.Contains(t, md, "cust_001")
	assert.Contains(t, md, "cust_002")
	assert.NotContains(t, md, "| 1998 | ONLINE | cust_003")
	assert.NotContains(t, md, "cust_004")
	assert.NotContains(t, md, "cust_005")
	assert.NotContains(t, md, "cust_006")
	assert.Contains(t, md, "No integrity errors found.")

	// Per-channel summary: four customers entered through ONLINE, two
	// through STORE.
	assert.Contains(t, md, "| Customers first seen on ONLINE | 4 |")
	assert.Contains(t, md, "| Customers first seen on STORE | 2 |")

	lines := strings.Split(strings.TrimSpace(csv), "\n")
	// Header + 2 customers x 3 periods
	assert.Len(t, lines, 7)
	assert.Equal(t, "period,channel,customer_id,customer_name,total,rank", lines[0])
	assert.Contains(t, csv, "1998,ONLINE,cust_001,Atelier Nord,1500.00,1")

	// The run was persisted
	runs, err := runStore.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Len(t, runs[0].Rows, 6)
}

func TestReportPipeline_RunIsRepeatable(t *testing.T) {
	ctx := context.Background()
	saleStore := memory.NewSaleStore()
	customerStore := memory.NewCustomerStore()
	runStore := memory.NewRankingRunStore()

	require.NoError(t, LoadFixtures(ctx, saleStore, customerStore))

	outputDir := t.TempDir()
	p := NewReportPipeline(saleStore, customerStore, runStore, outputDir).WithClock(fixedClock)

	require.NoError(t, p.Run(ctx, []int{1998, 1999, 2001}, 3))
	first, err := os.ReadFile(filepath.Join(outputDir, ReportFileName))
	require.NoError(t, err)

	// Second run over unchanged data: duplicate run tolerated, same output
	require.NoError(t, p.Run(ctx, []int{1998, 1999, 2001}, 3))
	second, err := os.ReadFile(filepath.Join(outputDir, ReportFileName))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))

	runs, err := runStore.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestReportPipeline_RunNoSales(t *testing.T) {
	ctx := context.Background()
	saleStore := memory.NewSaleStore()
	customerStore := memory.NewCustomerStore()
	runStore := memory.NewRankingRunStore()

	outputDir := t.TempDir()
	p := NewReportPipeline(saleStore, customerStore, runStore, outputDir).WithClock(fixedClock)

	err := p.Run(ctx, []int{1990}, 3)
	assert.Error(t, err)
}
