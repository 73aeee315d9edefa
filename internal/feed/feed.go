// Package feed ingests live sale events from a WebSocket stream.
package feed

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"sales-kpi-lab/internal/domain"
	"sales-kpi-lab/internal/idhash"
)

// Source streams sale events until closed.
type Source interface {
	// Events returns the channel of decoded sale events.
	// The channel is closed when the source shuts down.
	Events() <-chan SaleEvent

	// Close shuts the source down.
	Close() error
}

// SaleEvent is the wire form of one sale, as pushed by the feed.
type SaleEvent struct {
	CustomerID string `json:"customer_id"`
	Channel    string `json:"channel"`
	Period     int    `json:"period"`
	SoldAt     int64  `json:"sold_at"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
}

// ErrInvalidEvent marks events that cannot become sale records.
var ErrInvalidEvent = errors.New("invalid sale event")

// ToRecord validates the event and converts it to a sale record with a
// derived deterministic sale id. The feed carries no ids of its own, so
// replayed events map onto the same record.
func (e *SaleEvent) ToRecord() (*domain.SaleRecord, error) {
	if e.CustomerID == "" {
		return nil, fmt.Errorf("%w: empty customer_id", ErrInvalidEvent)
	}
	if e.Channel == "" {
		return nil, fmt.Errorf("%w: empty channel", ErrInvalidEvent)
	}
	if e.Period <= 0 {
		return nil, fmt.Errorf("%w: period %d", ErrInvalidEvent, e.Period)
	}
	if e.SoldAt <= 0 {
		return nil, fmt.Errorf("%w: sold_at %d", ErrInvalidEvent, e.SoldAt)
	}

	amount, err := decimal.NewFromString(e.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q", ErrInvalidEvent, e.Amount)
	}

	currency := e.Currency
	if currency == "" {
		currency = "USD"
	}

	channel := domain.Channel(e.Channel)
	return &domain.SaleRecord{
		SaleID:     idhash.ComputeSaleID(e.CustomerID, channel, e.Period, e.SoldAt, amount.String()),
		CustomerID: e.CustomerID,
		Channel:    channel,
		Period:     e.Period,
		SoldAt:     e.SoldAt,
		Amount:     amount,
		Currency:   currency,
	}, nil
}
