// Package memstore is a single-process repository.Store kept in memory.
//
// Writes made inside InTx are staged and applied together when fn returns
// nil. Table, order and restaurant feed locks are semaphores, so concurrent
// submissions against one table serialize the same way they do on Postgres.
// It is meant for tests and demos; several processes sharing one memstore
// is not possible.
package memstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/polling"
	"github.com/ray-remotestate/tableqr/repository"
)

// ErrDuplicate mirrors a unique constraint violation.
var ErrDuplicate = errors.New("duplicate key")

type Store struct {
	mu sync.RWMutex

	restaurants map[uuid.UUID]models.Restaurant
	tables      map[uuid.UUID]models.Table
	categories  map[uuid.UUID]models.MenuCategory
	menuItems   map[uuid.UUID]models.MenuItem
	orders      map[uuid.UUID]models.CustomerOrder
	orderItems  map[uuid.UUID][]models.OrderItem
	calls       []models.ServiceCall
	users       map[uuid.UUID]models.StaffUser

	orderSeq atomic.Int64
	callSeq  atomic.Int64

	locksMu sync.Mutex
	locks   map[uuid.UUID]*rowLock
}

// rowLock is dropped from Store.locks once no transaction holds or waits on it.
type rowLock struct {
	sem  *semaphore.Weighted
	refs int
}

func New() *Store {
	return &Store{
		restaurants: make(map[uuid.UUID]models.Restaurant),
		tables:      make(map[uuid.UUID]models.Table),
		categories:  make(map[uuid.UUID]models.MenuCategory),
		menuItems:   make(map[uuid.UUID]models.MenuItem),
		orders:      make(map[uuid.UUID]models.CustomerOrder),
		orderItems:  make(map[uuid.UUID][]models.OrderItem),
		users:       make(map[uuid.UUID]models.StaffUser),
		locks:       make(map[uuid.UUID]*rowLock),
	}
}

var (
	_ repository.Store = (*Store)(nil)
	_ repository.Tx    = (*tx)(nil)
)

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) retainLock(id uuid.UUID) *rowLock {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &rowLock{sem: semaphore.NewWeighted(1)}
		s.locks[id] = l
	}
	l.refs++
	return l
}

func (s *Store) dropLock(id uuid.UUID, l *rowLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, id)
	}
}

func (s *Store) InTx(ctx context.Context, fn func(repository.Tx) error) error {
	t := &tx{store: s, held: make(map[uuid.UUID]*rowLock)}
	defer t.release()

	if err := fn(t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, apply := range t.staged {
		apply()
	}
	return nil
}

type tx struct {
	store  *Store
	staged []func()
	held   map[uuid.UUID]*rowLock
}

func (t *tx) stage(apply func()) {
	t.staged = append(t.staged, apply)
}

func (t *tx) release() {
	for id, l := range t.held {
		l.sem.Release(1)
		t.store.dropLock(id, l)
	}
}

// lock waits for the row lock on id for at most timeout. Locks are re-entrant
// within one transaction.
func (t *tx) lock(ctx context.Context, id uuid.UUID, timeout time.Duration) error {
	if _, ok := t.held[id]; ok {
		return nil
	}
	l := t.store.retainLock(id)

	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := l.sem.Acquire(lockCtx, 1); err != nil {
		t.store.dropLock(id, l)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return repository.ErrLockTimeout
	}
	t.held[id] = l
	return nil
}

// Reads.

func (s *Store) activeTable(qrToken string) (*models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tb := range s.tables {
		if tb.QRToken == qrToken && tb.Active {
			r := s.restaurants[tb.RestaurantID]
			tb.RestaurantName = r.Name
			tb.RestaurantActive = r.Active
			return &tb, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ResolveActiveTable(_ context.Context, qrToken string) (*models.Table, error) {
	return s.activeTable(qrToken)
}

func (s *Store) ListActiveCategories(_ context.Context, restaurantID uuid.UUID) ([]models.MenuCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MenuCategory, 0)
	for _, c := range s.categories {
		if c.RestaurantID == restaurantID && c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) ListAvailableMenuItems(_ context.Context, restaurantID uuid.UUID) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MenuItem, 0)
	for _, m := range s.menuItems {
		if m.RestaurantID == restaurantID && m.Active && m.Available {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Store) withTableNumber(o models.CustomerOrder) models.CustomerOrder {
	o.TableNumber = s.tables[o.TableID].TableNumber
	return o
}

func sortByPosition[T polling.Row](rows []T, desc bool) {
	before := func(a, b T) bool {
		if a.GetCreatedAt().Equal(b.GetCreatedAt()) {
			return a.GetSeq() < b.GetSeq()
		}
		return a.GetCreatedAt().Before(b.GetCreatedAt())
	}
	sort.Slice(rows, func(i, j int) bool {
		if desc {
			return before(rows[j], rows[i])
		}
		return before(rows[i], rows[j])
	})
}

func (s *Store) ListOrders(_ context.Context, restaurantID uuid.UUID, cur polling.Cursor, page repository.Page) ([]models.CustomerOrder, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.CustomerOrder, 0)
	for _, o := range s.orders {
		if o.RestaurantID == restaurantID && cur.After(o.CreatedAt, o.Seq) {
			matched = append(matched, s.withTableNumber(o))
		}
	}
	sortByPosition(matched, cur.IsZero())

	total := len(matched)
	from := min(page.Offset(), total)
	to := min(from+page.Size, total)
	return matched[from:to], total, nil
}

func (s *Store) GetOrder(_ context.Context, orderID uuid.UUID) (*models.CustomerOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o = s.withTableNumber(o)
	return &o, nil
}

func (s *Store) ListOrderItems(_ context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.OrderItem{}, s.orderItems[orderID]...), nil
}

func (s *Store) ListServiceCalls(_ context.Context, restaurantID uuid.UUID, activeSince time.Time, cur polling.Cursor) ([]models.ServiceCall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ServiceCall, 0)
	for _, c := range s.calls {
		if c.RestaurantID != restaurantID || c.CreatedAt.Before(activeSince) || !cur.After(c.CreatedAt, c.Seq) {
			continue
		}
		c.TableNumber = s.tables[c.TableID].TableNumber
		out = append(out, c)
	}
	sortByPosition(out, cur.IsZero())
	return out, nil
}

func (s *Store) GetStaffUserByUsername(_ context.Context, username string) (*models.StaffUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) CountStaffUsers(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}
