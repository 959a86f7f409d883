package service

import (
	"context"
	"time"
)

type entryCounter interface {
	CountAtOrBefore(ctx context.Context, ts time.Time) (int, error)
}

// RankCalculator derives a 1-based waitlist position from a creation time.
// Entries sharing a timestamp share a position.
type RankCalculator struct {
	counter entryCounter
}

// NewRankCalculator constructs a RankCalculator.
func NewRankCalculator(counter entryCounter) *RankCalculator {
	return &RankCalculator{counter: counter}
}

// Position counts entries created at or before createdAt. Store errors are
// returned as-is.
func (r *RankCalculator) Position(ctx context.Context, createdAt time.Time) (int, error) {
	count, err := r.counter.CountAtOrBefore(ctx, createdAt)
	if err != nil {
		return 0, err
	}
	if count < 1 {
		return 1, nil
	}
	return count, nil
}
