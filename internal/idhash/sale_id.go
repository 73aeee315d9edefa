package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"

	"sales-kpi-lab/internal/domain"
)

// ComputeSaleID computes a deterministic sale_id using SHA256.
// Formula: SHA256(customer_id|channel|period|sold_at|amount)
// Returns hex-encoded hash (64 characters).
func ComputeSaleID(
	customerID string,
	channel domain.Channel,
	period int,
	soldAt int64,
	amount string,
) string {
	data := fmt.Sprintf("%s|%s|%d|%d|%s",
		customerID,
		string(channel),
		period,
		soldAt,
		amount,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ShortID returns a compact base58 form of a hex sale or run id,
// suitable for report references. Uses the first 16 bytes of the hash.
// Returns the input unchanged if it is not valid hex.
func ShortID(hexID string) string {
	raw, err := hex.DecodeString(hexID)
	if err != nil || len(raw) == 0 {
		return hexID
	}
	if len(raw) > 16 {
		raw = raw[:16]
	}
	return base58.Encode(raw)
}
