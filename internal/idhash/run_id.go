package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// ComputeRunID computes a deterministic run_id for a ranking run.
// Formula: SHA256(sorted periods|threshold|sale_count|max_sold_at)
// The same parameters over the same input extent always hash to the
// same id, which is what makes runs append-only dedupable.
func ComputeRunID(periods []int, threshold int, saleCount int, maxSoldAt int64) string {
	sorted := make([]int, len(periods))
	copy(sorted, periods)
	sort.Ints(sorted)

	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = fmt.Sprintf("%d", p)
	}

	data := fmt.Sprintf("%s|%d|%d|%d",
		strings.Join(parts, ","),
		threshold,
		saleCount,
		maxSoldAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
