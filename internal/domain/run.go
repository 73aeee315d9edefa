package domain

// RankingRun is the persisted result of one consistent top-N computation.
// Runs are append-only: identical parameters over identical data produce
// an identical run id.
type RankingRun struct {
	RunID       string // deterministic hash of parameters + input extent
	GeneratedAt int64  // Unix ms
	Periods     []int  // required period set, sorted ASC
	Threshold   int    // top-N cutoff
	Rows        []*TopNRow
}
