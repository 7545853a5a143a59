// Package services holds the customer and staff pipelines. Every write runs
// inside one store transaction; every staff call takes the caller's
// models.Principal and filters by its restaurant.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/ray-remotestate/tableqr/apperr"
	"github.com/ray-remotestate/tableqr/config"
	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/repository"
)

// Clock returns the current instant. Stored timestamps are truncated to
// microseconds, the precision Postgres keeps.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		c = time.Now
	}
	return c().UTC().Truncate(time.Microsecond)
}

type Settings struct {
	TableLockTimeout        time.Duration
	OrderCooldown           time.Duration
	ServiceCallCooldown     time.Duration
	ServiceCallActiveWindow time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		TableLockTimeout:        3 * time.Second,
		OrderCooldown:           60 * time.Second,
		ServiceCallCooldown:     180 * time.Second,
		ServiceCallActiveWindow: 180 * time.Second,
	}
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		TableLockTimeout:        cfg.TableLockTimeout,
		OrderCooldown:           cfg.OrderCooldown,
		ServiceCallCooldown:     cfg.ServiceCallCooldown,
		ServiceCallActiveWindow: cfg.ServiceCallActiveWindow,
	}
}

const invalidTableMsg = "Invalid or inactive QR token"

// lockTable is the table gate of the write pipelines: it resolves the token,
// holds the table lock for the rest of tx and rejects inactive restaurants.
// It then joins the restaurant's feed lock; callers stamp created_at after it.
func lockTable(ctx context.Context, tx repository.Tx, qrToken string, timeout time.Duration) (*models.Table, error) {
	table, err := tx.LockActiveTable(ctx, qrToken, timeout)
	if err != nil {
		return nil, gateError(err)
	}
	if !table.RestaurantActive {
		return nil, apperr.BusinessRule("Restaurant is inactive")
	}
	if err := tx.LockRestaurantFeed(ctx, table.RestaurantID, timeout); err != nil {
		return nil, gateError(err)
	}
	return table, nil
}

func gateError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(invalidTableMsg)
	case errors.Is(err, repository.ErrLockTimeout):
		return apperr.LockTimeout(err)
	default:
		return err
	}
}

// translate turns anything a pipeline returns into an *apperr.Error.
func translate(err error) error {
	var appErr *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repository.ErrLockTimeout):
		return apperr.LockTimeout(err)
	default:
		return apperr.Internal(err)
	}
}
