package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/tableqr/repository"
)

// RateLimiter enforces the per-table cooldowns. It keeps no state of its own:
// the answer comes from the store, inside the transaction that holds the
// table lock, so check and insert are atomic for one table.
type RateLimiter struct {
	orderWindow time.Duration
	callWindow  time.Duration
}

func NewRateLimiter(orderWindow, callWindow time.Duration) *RateLimiter {
	return &RateLimiter{orderWindow: orderWindow, callWindow: callWindow}
}

func (l *RateLimiter) Window(kind repository.ActivityKind) time.Duration {
	if kind == repository.ActivityServiceCall {
		return l.callWindow
	}
	return l.orderWindow
}

// HasRecentActivity reports whether tableID has a record of kind created
// after now - window.
func (l *RateLimiter) HasRecentActivity(ctx context.Context, tx repository.Tx, tableID uuid.UUID, kind repository.ActivityKind, now time.Time) (bool, error) {
	recent, err := tx.HasActivitySince(ctx, tableID, kind, now.Add(-l.Window(kind)))
	if err != nil {
		return false, fmt.Errorf("failed to check recent %s activity: %w", kind, err)
	}
	return recent, nil
}
