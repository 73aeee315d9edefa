package kpi

import "sales-kpi-lab/internal/domain"

// GroupFunc extracts the group key (partition dimension) from a sale.
type GroupFunc func(*domain.SaleRecord) domain.Channel

// EntityFunc extracts the entity key (the thing being ranked) from a sale.
type EntityFunc func(*domain.SaleRecord) string

// Option configures ComputeConsistentTopN.
type Option func(*options)

type options struct {
	groupBy  GroupFunc
	entityBy EntityFunc
}

func defaultOptions() options {
	return options{
		groupBy:  func(s *domain.SaleRecord) domain.Channel { return s.Channel },
		entityBy: func(s *domain.SaleRecord) string { return s.CustomerID },
	}
}

// WithGroupBy overrides the group key extractor. The default partitions
// by sales channel.
func WithGroupBy(fn GroupFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.groupBy = fn
		}
	}
}

// WithEntityBy overrides the entity key extractor. The default ranks
// customers.
func WithEntityBy(fn EntityFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.entityBy = fn
		}
	}
}
