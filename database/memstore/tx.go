package memstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/repository"
)

func (t *tx) LockActiveTable(ctx context.Context, qrToken string, timeout time.Duration) (*models.Table, error) {
	table, err := t.store.activeTable(qrToken)
	if err != nil {
		return nil, err
	}
	if err := t.lock(ctx, table.ID, timeout); err != nil {
		return nil, err
	}
	// the table may have been deactivated while we waited
	return t.store.activeTable(qrToken)
}

func (t *tx) LockRestaurantFeed(ctx context.Context, restaurantID uuid.UUID, timeout time.Duration) error {
	return t.lock(ctx, restaurantID, timeout)
}

func (t *tx) HasActivitySince(_ context.Context, tableID uuid.UUID, kind repository.ActivityKind, threshold time.Time) (bool, error) {
	s := t.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch kind {
	case repository.ActivityOrder:
		for _, o := range s.orders {
			if o.TableID == tableID && o.CreatedAt.After(threshold) {
				return true, nil
			}
		}
	case repository.ActivityServiceCall:
		for _, c := range s.calls {
			if c.TableID == tableID && c.CreatedAt.After(threshold) {
				return true, nil
			}
		}
	default:
		return false, fmt.Errorf("unknown activity kind %q", kind)
	}
	return false, nil
}

func (t *tx) FindMenuItems(_ context.Context, restaurantID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error) {
	s := t.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MenuItem, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		m, ok := s.menuItems[id]
		if !ok || seen[id] || m.RestaurantID != restaurantID {
			continue
		}
		seen[id] = true
		out = append(out, m)
	}
	return out, nil
}

func (t *tx) InsertOrder(_ context.Context, order *models.CustomerOrder, items []models.OrderItem) error {
	order.Seq = t.store.orderSeq.Add(1)
	for i := range items {
		items[i].LineNo = i + 1
	}
	o := *order
	lines := append([]models.OrderItem{}, items...)
	t.stage(func() {
		t.store.orders[o.ID] = o
		t.store.orderItems[o.ID] = lines
	})
	return nil
}

func (t *tx) InsertServiceCall(_ context.Context, call *models.ServiceCall) error {
	call.Seq = t.store.callSeq.Add(1)
	c := *call
	t.stage(func() {
		t.store.calls = append(t.store.calls, c)
	})
	return nil
}

// GetOrderForUpdate holds the order's row lock until the transaction ends.
func (t *tx) GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.CustomerOrder, error) {
	if err := t.lock(ctx, orderID, time.Minute); err != nil {
		return nil, err
	}
	return t.store.GetOrder(ctx, orderID)
}

func (t *tx) UpdateOrderStatus(_ context.Context, order *models.CustomerOrder) error {
	s := t.store
	s.mu.RLock()
	_, ok := s.orders[order.ID]
	s.mu.RUnlock()
	if !ok {
		return repository.ErrNotFound
	}

	id, status, sentAt := order.ID, order.Status, order.SentToKitchenAt
	t.stage(func() {
		o := s.orders[id]
		o.Status = status
		o.SentToKitchenAt = sentAt
		s.orders[id] = o
	})
	return nil
}

func (t *tx) InsertRestaurant(_ context.Context, r *models.Restaurant) error {
	s := t.store
	s.mu.RLock()
	for _, existing := range s.restaurants {
		if existing.Code == r.Code {
			s.mu.RUnlock()
			return fmt.Errorf("restaurant code %q: %w", r.Code, ErrDuplicate)
		}
	}
	s.mu.RUnlock()

	v := *r
	t.stage(func() { s.restaurants[v.ID] = v })
	return nil
}

func (t *tx) InsertTable(_ context.Context, tb *models.Table) error {
	s := t.store
	s.mu.RLock()
	for _, existing := range s.tables {
		if existing.QRToken == tb.QRToken {
			s.mu.RUnlock()
			return fmt.Errorf("qr token %q: %w", tb.QRToken, ErrDuplicate)
		}
	}
	s.mu.RUnlock()

	v := *tb
	v.RestaurantName, v.RestaurantActive = "", false
	t.stage(func() { s.tables[v.ID] = v })
	return nil
}

func (t *tx) InsertMenuCategory(_ context.Context, c *models.MenuCategory) error {
	v := *c
	t.stage(func() { t.store.categories[v.ID] = v })
	return nil
}

func (t *tx) InsertMenuItem(_ context.Context, m *models.MenuItem) error {
	v := *m
	t.stage(func() { t.store.menuItems[v.ID] = v })
	return nil
}

func (t *tx) InsertStaffUser(_ context.Context, u *models.StaffUser) error {
	s := t.store
	s.mu.RLock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			s.mu.RUnlock()
			return fmt.Errorf("username %q: %w", u.Username, ErrDuplicate)
		}
	}
	s.mu.RUnlock()

	v := *u
	t.stage(func() { s.users[v.ID] = v })
	return nil
}
