package dbhelper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/repository"
)

const activeTableQuery = `
	SELECT t.id, t.restaurant_id, t.table_number, t.qr_token, t.is_active, r.name, r.is_active
	FROM restaurant_tables t
	JOIN restaurants r ON r.id = t.restaurant_id
	WHERE t.qr_token = $1 AND t.is_active = TRUE`

func getActiveTable(ctx context.Context, q SQLExecutor, query, qrToken string) (*models.Table, error) {
	var t models.Table
	err := q.QueryRowContext(ctx, query, qrToken).Scan(
		&t.ID, &t.RestaurantID, &t.TableNumber, &t.QRToken, &t.Active, &t.RestaurantName, &t.RestaurantActive)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) ResolveActiveTable(ctx context.Context, qrToken string) (*models.Table, error) {
	return getActiveTable(ctx, s.db, activeTableQuery, qrToken)
}

// LockActiveTable takes a row lock on the table for the rest of the
// transaction. lock_timeout is scoped to the transaction by set_config(..., true).
func (t *txStore) LockActiveTable(ctx context.Context, qrToken string, timeout time.Duration) (*models.Table, error) {
	if err := t.setLockTimeout(ctx, timeout); err != nil {
		return nil, err
	}

	table, err := getActiveTable(ctx, t.tx, activeTableQuery+` FOR UPDATE OF t`, qrToken)
	if pqCode(err) == codeLockNotAvailable {
		return nil, repository.ErrLockTimeout
	}
	return table, err
}

// LockRestaurantFeed takes a transaction-scoped advisory lock keyed by the
// restaurant. Hash collisions only serialize unrelated restaurants.
func (t *txStore) LockRestaurantFeed(ctx context.Context, restaurantID uuid.UUID, timeout time.Duration) error {
	if err := t.setLockTimeout(ctx, timeout); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, restaurantID.String())
	if pqCode(err) == codeLockNotAvailable {
		return repository.ErrLockTimeout
	}
	return err
}

func (t *txStore) setLockTimeout(ctx context.Context, timeout time.Duration) error {
	if _, err := t.tx.ExecContext(ctx, `SELECT set_config('lock_timeout', $1, true)`,
		lockTimeoutSetting(timeout)); err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}
	return nil
}

// lockTimeoutSetting rounds up to whole milliseconds. A value of 0 would
// disable lock_timeout and let the wait run forever.
func lockTimeoutSetting(timeout time.Duration) string {
	ms := (timeout + time.Millisecond - 1) / time.Millisecond
	return fmt.Sprintf("%dms", int64(max(ms, 1)))
}

func (t *txStore) HasActivitySince(ctx context.Context, tableID uuid.UUID, kind repository.ActivityKind, threshold time.Time) (bool, error) {
	var query string
	switch kind {
	case repository.ActivityOrder:
		query = `SELECT EXISTS (SELECT 1 FROM customer_orders WHERE table_id = $1 AND created_at > $2)`
	case repository.ActivityServiceCall:
		query = `SELECT EXISTS (SELECT 1 FROM service_calls WHERE table_id = $1 AND created_at > $2)`
	default:
		return false, fmt.Errorf("unknown activity kind %q", kind)
	}

	var exists bool
	if err := t.tx.QueryRowContext(ctx, query, tableID, threshold).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (t *txStore) InsertRestaurant(ctx context.Context, r *models.Restaurant) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO restaurants (id, name, code, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.Name, r.Code, r.Active, r.CreatedAt)
	return err
}

func (t *txStore) InsertTable(ctx context.Context, tb *models.Table) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO restaurant_tables (id, restaurant_id, table_number, qr_token, is_active)
		VALUES ($1, $2, $3, $4, $5)`,
		tb.ID, tb.RestaurantID, tb.TableNumber, tb.QRToken, tb.Active)
	return err
}
