package dbhelper

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ray-remotestate/tableqr/models"
)

const menuItemColumns = `id, restaurant_id, menu_category_id, name, description, price, is_available, is_active, display_order`

func (s *Store) ListActiveCategories(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, restaurant_id, name, display_order, is_active
		FROM menu_categories
		WHERE restaurant_id = $1 AND is_active = TRUE
		ORDER BY display_order, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.MenuCategory, 0)
	for rows.Next() {
		var c models.MenuCategory
		if err := rows.Scan(&c.ID, &c.RestaurantID, &c.Name, &c.DisplayOrder, &c.Active); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListAvailableMenuItems returns the orderable menu: active and available items only.
func (s *Store) ListAvailableMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+menuItemColumns+`
		FROM menu_items
		WHERE restaurant_id = $1 AND is_active = TRUE AND is_available = TRUE
		ORDER BY display_order, name`, restaurantID)
	if err != nil {
		return nil, err
	}
	return scanMenuItems(rows)
}

// FindMenuItems loads the requested items of one restaurant whatever their
// flags, so the caller can tell a missing item from an inactive or unavailable one.
func (t *txStore) FindMenuItems(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+menuItemColumns+`
		FROM menu_items
		WHERE restaurant_id = $1 AND id = ANY($2::uuid[])`,
		restaurantID, pq.Array(keys))
	if err != nil {
		return nil, err
	}
	return scanMenuItems(rows)
}

func scanMenuItems(rows *sql.Rows) ([]models.MenuItem, error) {
	defer rows.Close()

	items := make([]models.MenuItem, 0)
	for rows.Next() {
		var m models.MenuItem
		if err := rows.Scan(&m.ID, &m.RestaurantID, &m.CategoryID, &m.Name, &m.Description,
			&m.Price, &m.Available, &m.Active, &m.DisplayOrder); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (t *txStore) InsertMenuCategory(ctx context.Context, c *models.MenuCategory) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO menu_categories (id, restaurant_id, name, display_order, is_active)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.RestaurantID, c.Name, c.DisplayOrder, c.Active)
	return err
}

func (t *txStore) InsertMenuItem(ctx context.Context, m *models.MenuItem) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO menu_items (`+menuItemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.RestaurantID, m.CategoryID, m.Name, m.Description, m.Price, m.Available, m.Active, m.DisplayOrder)
	return err
}
