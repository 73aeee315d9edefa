package kpi

import "errors"

// Engine errors. All of them fail fast: nothing partially computed is
// ever returned alongside an error.
var (
	// ErrNoPeriods is returned when the required period set is empty.
	ErrNoPeriods = errors.New("required period set is empty")

	// ErrInvalidThreshold is returned when the top-N threshold is not positive.
	ErrInvalidThreshold = errors.New("threshold must be a positive integer")

	// ErrMalformedRecord is returned when a sale record cannot be
	// attributed to exactly one (period, channel, customer) key.
	ErrMalformedRecord = errors.New("malformed sale record")

	// ErrNoSales is returned by the store-bound engine when no sales
	// are available for the required periods.
	ErrNoSales = errors.New("no sales available for the required periods")
)
