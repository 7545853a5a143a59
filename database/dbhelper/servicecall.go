package dbhelper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/polling"
)

func (s *Store) ListServiceCalls(ctx context.Context, restaurantID uuid.UUID, activeSince time.Time, cur polling.Cursor) ([]models.ServiceCall, error) {
	filter, dir, args := cursorFilter("c", cur, []any{restaurantID, activeSince})
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT c.id, c.seq, c.restaurant_id, c.table_id, t.table_number, c.call_type, c.created_at
		FROM service_calls c
		JOIN restaurant_tables t ON t.id = c.table_id
		WHERE c.restaurant_id = $1 AND c.created_at >= $2%s
		ORDER BY c.created_at %s, c.seq %s`, filter, dir, dir), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calls := make([]models.ServiceCall, 0)
	for rows.Next() {
		var c models.ServiceCall
		if err := rows.Scan(&c.ID, &c.Seq, &c.RestaurantID, &c.TableID, &c.TableNumber, &c.CallType, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.CreatedAt = c.CreatedAt.UTC()
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

func (t *txStore) InsertServiceCall(ctx context.Context, call *models.ServiceCall) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO service_calls (id, restaurant_id, table_id, call_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING seq`,
		call.ID, call.RestaurantID, call.TableID, call.CallType, call.CreatedAt).Scan(&call.Seq)
	if err != nil {
		return fmt.Errorf("failed to insert service call: %w", err)
	}
	return nil
}
