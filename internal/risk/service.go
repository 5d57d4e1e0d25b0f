package risk

import (
	"context"
	"fmt"
)

// Service computes profiles on demand from the current history.
type Service struct {
	agg *Aggregator
	src Source
}

func NewService(agg *Aggregator, src Source) *Service {
	return &Service{agg: agg, src: src}
}

// Profile aggregates the full history, restricting period figures to filter
// when it is set.
func (s *Service) Profile(ctx context.Context, filter *Month) (Profile, error) {
	txs, err := s.src.All(ctx)
	if err != nil {
		return Profile{}, fmt.Errorf("loading transactions: %w", err)
	}

	return s.agg.Aggregate(txs, filter)
}

func (s *Service) AvailableMonths(ctx context.Context) ([]Month, error) {
	txs, err := s.src.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	return s.agg.AvailableMonths(txs), nil
}
