// Package repository declares the store contract shared by the Postgres
// driver (database/dbhelper) and the in-memory driver (database/memstore).
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/polling"
)

var (
	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("record not found")
	// ErrLockTimeout is returned when a table lock cannot be acquired in time.
	ErrLockTimeout = errors.New("table lock wait timed out")
)

type ActivityKind string

const (
	ActivityOrder       ActivityKind = "order"
	ActivityServiceCall ActivityKind = "service_call"
)

type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return p.Number * p.Size
}

// Store is the entry point of a storage driver.
type Store interface {
	Reader
	// InTx runs fn inside one all-or-nothing unit. Locks taken through the Tx
	// are released when fn returns, whether it commits or rolls back.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}

// Reader holds the lock-free reads used by menu browsing and staff polling.
type Reader interface {
	ResolveActiveTable(ctx context.Context, qrToken string) (*models.Table, error)
	ListActiveCategories(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuCategory, error)
	ListAvailableMenuItems(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuItem, error)

	ListOrders(ctx context.Context, restaurantID uuid.UUID, cur polling.Cursor, page Page) ([]models.CustomerOrder, int, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.CustomerOrder, error)
	ListOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)

	// ListServiceCalls returns calls of restaurantID created at or after activeSince
	// and strictly after cur.
	ListServiceCalls(ctx context.Context, restaurantID uuid.UUID, activeSince time.Time, cur polling.Cursor) ([]models.ServiceCall, error)

	GetStaffUserByUsername(ctx context.Context, username string) (*models.StaffUser, error)
	CountStaffUsers(ctx context.Context) (int, error)
}

// Tx is the write side, only reachable inside Store.InTx.
type Tx interface {
	// LockActiveTable resolves an active table by token and holds an exclusive
	// lock on it until the transaction ends. It waits at most timeout.
	LockActiveTable(ctx context.Context, qrToken string, timeout time.Duration) (*models.Table, error)
	// LockRestaurantFeed serializes writers of one restaurant's orders and
	// service calls until the transaction ends. Timestamps taken after it
	// follow commit order, which keeps polling cursors from skipping rows.
	LockRestaurantFeed(ctx context.Context, restaurantID uuid.UUID, timeout time.Duration) error
	HasActivitySince(ctx context.Context, tableID uuid.UUID, kind ActivityKind, threshold time.Time) (bool, error)
	FindMenuItems(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error)

	InsertOrder(ctx context.Context, order *models.CustomerOrder, items []models.OrderItem) error
	InsertServiceCall(ctx context.Context, call *models.ServiceCall) error

	GetOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.CustomerOrder, error)
	UpdateOrderStatus(ctx context.Context, order *models.CustomerOrder) error

	// seeding
	InsertRestaurant(ctx context.Context, r *models.Restaurant) error
	InsertTable(ctx context.Context, t *models.Table) error
	InsertMenuCategory(ctx context.Context, c *models.MenuCategory) error
	InsertMenuItem(ctx context.Context, m *models.MenuItem) error
	InsertStaffUser(ctx context.Context, u *models.StaffUser) error
}
