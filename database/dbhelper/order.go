package dbhelper

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/polling"
	"github.com/ray-remotestate/tableqr/repository"
)

const orderColumns = `o.id, o.seq, o.restaurant_id, o.table_id, t.table_number, o.created_at,
	o.total_amount, o.note, o.status, o.sent_to_kitchen_at`

// cursorFilter appends the polling predicate on (created_at, seq) to args and
// returns the SQL fragment plus the ORDER BY direction.
func cursorFilter(alias string, cur polling.Cursor, args []any) (string, string, []any) {
	if cur.IsZero() {
		return "", "DESC", args
	}
	if cur.Seq > 0 {
		args = append(args, cur.Since, cur.Seq)
		return fmt.Sprintf(" AND (%[1]s.created_at, %[1]s.seq) > ($%[2]d, $%[3]d)", alias, len(args)-1, len(args)), "ASC", args
	}
	args = append(args, cur.Since)
	return fmt.Sprintf(" AND %s.created_at > $%d", alias, len(args)), "ASC", args
}

func scanOrder(sc interface{ Scan(...any) error }) (*models.CustomerOrder, error) {
	var (
		o    models.CustomerOrder
		sent sql.NullTime
	)
	if err := sc.Scan(&o.ID, &o.Seq, &o.RestaurantID, &o.TableID, &o.TableNumber, &o.CreatedAt,
		&o.TotalAmount, &o.Note, &o.Status, &sent); err != nil {
		return nil, err
	}
	if !o.Status.IsValid() {
		return nil, fmt.Errorf("order %s has unknown status %q", o.ID, o.Status)
	}
	o.CreatedAt = o.CreatedAt.UTC()
	if sent.Valid {
		at := sent.Time.UTC()
		o.SentToKitchenAt = &at
	}
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, restaurantID uuid.UUID, cur polling.Cursor, page repository.Page) ([]models.CustomerOrder, int, error) {
	filter, dir, args := cursorFilter("o", cur, []any{restaurantID})

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customer_orders o WHERE o.restaurant_id = $1`+filter, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, page.Size, page.Offset())
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s
		FROM customer_orders o
		JOIN restaurant_tables t ON t.id = o.table_id
		WHERE o.restaurant_id = $1%s
		ORDER BY o.created_at %s, o.seq %s
		LIMIT $%d OFFSET $%d`, orderColumns, filter, dir, dir, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]models.CustomerOrder, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

const orderByIDQuery = `
	SELECT ` + orderColumns + `
	FROM customer_orders o
	JOIN restaurant_tables t ON t.id = o.table_id
	WHERE o.id = $1`

func (s *Store) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.CustomerOrder, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, orderByIDQuery, orderID))
	return o, notFound(err)
}

func (s *Store) ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_order_id, line_no, menu_item_id, item_name, quantity, unit_price, total_price, note
		FROM order_items
		WHERE customer_order_id = $1
		ORDER BY line_no`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.OrderItem, 0)
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.LineNo, &it.MenuItemID, &it.ItemName,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.Note); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// InsertOrder writes the order header then its lines in the given order.
// order.Seq is filled from the database.
func (t *txStore) InsertOrder(ctx context.Context, order *models.CustomerOrder, items []models.OrderItem) error {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO customer_orders (id, restaurant_id, table_id, created_at, total_amount, note, status, sent_to_kitchen_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`,
		order.ID, order.RestaurantID, order.TableID, order.CreatedAt, order.TotalAmount,
		order.Note, order.Status, order.SentToKitchenAt).Scan(&order.Seq)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].LineNo = i + 1
		it := items[i]
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_items (id, customer_order_id, line_no, menu_item_id, item_name, quantity, unit_price, total_price, note)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, it.OrderID, it.LineNo, it.MenuItemID, it.ItemName, it.Quantity, it.UnitPrice, it.TotalPrice, it.Note); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

func (t *txStore) GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.CustomerOrder, error) {
	o, err := scanOrder(t.tx.QueryRowContext(ctx, orderByIDQuery+` FOR UPDATE OF o`, orderID))
	return o, notFound(err)
}

func (t *txStore) UpdateOrderStatus(ctx context.Context, order *models.CustomerOrder) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE customer_orders SET status = $2, sent_to_kitchen_at = $3
		WHERE id = $1`, order.ID, order.Status, order.SentToKitchenAt)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
