package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/tableqr/database/memstore"
	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/polling"
	"github.com/ray-remotestate/tableqr/repository"
)

var t0 = time.Date(2026, 1, 7, 21, 15, 30, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store *memstore.Store
	clock *fakeClock

	restaurant models.Restaurant
	table      models.Table
	cola       models.MenuItem
	water      models.MenuItem // unavailable
	retired    models.MenuItem // inactive
	staff      models.Principal

	other      models.Restaurant
	otherTable models.Table
	otherItem  models.MenuItem
	otherStaff models.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memstore.New(), clock: &fakeClock{now: t0}}

	f.restaurant = models.Restaurant{ID: uuid.New(), Name: "Demo Restaurant", Code: "DEMO", Active: true}
	f.table = models.Table{ID: uuid.New(), RestaurantID: f.restaurant.ID, TableNumber: 1, QRToken: "T1", Active: true}
	drinks := models.MenuCategory{ID: uuid.New(), RestaurantID: f.restaurant.ID, Name: "Drinks", DisplayOrder: 1, Active: true}
	hidden := models.MenuCategory{ID: uuid.New(), RestaurantID: f.restaurant.ID, Name: "Seasonal", DisplayOrder: 2, Active: false}
	f.cola = models.MenuItem{ID: uuid.New(), RestaurantID: f.restaurant.ID, CategoryID: drinks.ID, Name: "Cola",
		Price: decimal.RequireFromString("2.50"), Available: true, Active: true, DisplayOrder: 1}
	f.water = models.MenuItem{ID: uuid.New(), RestaurantID: f.restaurant.ID, CategoryID: drinks.ID, Name: "Water",
		Price: decimal.RequireFromString("1.50"), Available: false, Active: true, DisplayOrder: 2}
	f.retired = models.MenuItem{ID: uuid.New(), RestaurantID: f.restaurant.ID, CategoryID: drinks.ID, Name: "Lemonade",
		Price: decimal.RequireFromString("3.00"), Available: true, Active: false, DisplayOrder: 3}
	f.staff = models.Principal{UserID: uuid.New(), Role: models.RoleStaff, RestaurantID: f.restaurant.ID}

	f.other = models.Restaurant{ID: uuid.New(), Name: "Other Place", Code: "OTHER", Active: true}
	f.otherTable = models.Table{ID: uuid.New(), RestaurantID: f.other.ID, TableNumber: 7, QRToken: "O7", Active: true}
	f.otherItem = models.MenuItem{ID: uuid.New(), RestaurantID: f.other.ID, CategoryID: uuid.New(), Name: "Tea",
		Price: decimal.RequireFromString("1.20"), Available: true, Active: true}
	f.otherStaff = models.Principal{UserID: uuid.New(), Role: models.RoleManager, RestaurantID: f.other.ID}

	closed := models.Restaurant{ID: uuid.New(), Name: "Closed Diner", Code: "CLOSED", Active: false}
	closedTable := models.Table{ID: uuid.New(), RestaurantID: closed.ID, TableNumber: 1, QRToken: "C1", Active: true}
	retiredTable := models.Table{ID: uuid.New(), RestaurantID: f.restaurant.ID, TableNumber: 2, QRToken: "T2-OLD", Active: false}

	ctx := context.Background()
	err := f.store.InTx(ctx, func(tx repository.Tx) error {
		for _, r := range []models.Restaurant{f.restaurant, f.other, closed} {
			if err := tx.InsertRestaurant(ctx, &r); err != nil {
				return err
			}
		}
		for _, tb := range []models.Table{f.table, f.otherTable, closedTable, retiredTable} {
			if err := tx.InsertTable(ctx, &tb); err != nil {
				return err
			}
		}
		for _, c := range []models.MenuCategory{drinks, hidden} {
			if err := tx.InsertMenuCategory(ctx, &c); err != nil {
				return err
			}
		}
		for _, m := range []models.MenuItem{f.cola, f.water, f.retired, f.otherItem} {
			if err := tx.InsertMenuItem(ctx, &m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return f
}

func (f *fixture) settings() Settings {
	return DefaultSettings()
}

func (f *fixture) orders() *OrderService {
	return NewOrderService(f.store, f.settings(), f.clock.Now)
}

func (f *fixture) calls() *ServiceCallService {
	return NewServiceCallService(f.store, f.settings(), f.clock.Now)
}

func (f *fixture) staffOrders() *StaffOrderService {
	return NewStaffOrderService(f.store, f.clock.Now)
}

func (f *fixture) countOrders(t *testing.T, restaurantID uuid.UUID) int {
	t.Helper()
	_, total, err := f.store.ListOrders(context.Background(), restaurantID, polling.Cursor{}, repository.Page{Size: 1})
	if err != nil {
		t.Fatal(err)
	}
	return total
}

func colaTimes(f *fixture, qty int) SubmitOrderRequest {
	return SubmitOrderRequest{Items: []SubmitOrderItem{{MenuItemID: f.cola.ID, Quantity: qty}}}
}
