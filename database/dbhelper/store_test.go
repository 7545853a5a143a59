package dbhelper

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/polling"
	"github.com/ray-remotestate/tableqr/repository"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

var tableCols = []string{"id", "restaurant_id", "table_number", "qr_token", "is_active", "name", "is_active"}

func TestLockActiveTable(t *testing.T) {
	tableID, restaurantID := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "locked",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FOR UPDATE OF t`).WithArgs("DEMO-TABLE-1").
					WillReturnRows(sqlmock.NewRows(tableCols).
						AddRow(tableID.String(), restaurantID.String(), 1, "DEMO-TABLE-1", true, "Demo Restaurant", true))
				mock.ExpectCommit()
			},
		},
		{
			name: "lockTimeout",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FOR UPDATE OF t`).WithArgs("DEMO-TABLE-1").
					WillReturnError(&pq.Error{Code: codeLockNotAvailable})
				mock.ExpectRollback()
			},
			wantErr: repository.ErrLockTimeout,
		},
		{
			name: "unknownToken",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FOR UPDATE OF t`).WithArgs("DEMO-TABLE-1").
					WillReturnRows(sqlmock.NewRows(tableCols))
				mock.ExpectRollback()
			},
			wantErr: repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMock(t)
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`SELECT set_config('lock_timeout', $1, true)`)).
				WithArgs("3000ms").WillReturnResult(sqlmock.NewResult(0, 1))
			tt.setup(mock)

			var got *models.Table
			err := store.InTx(context.Background(), func(tx repository.Tx) error {
				var err error
				got, err = tx.LockActiveTable(context.Background(), "DEMO-TABLE-1", 3*time.Second)
				return err
			})

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LockActiveTable() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (got.ID != tableID || got.RestaurantName != "Demo Restaurant") {
				t.Errorf("LockActiveTable() = %+v", got)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestLockRestaurantFeed(t *testing.T) {
	restaurantID := uuid.New()

	tests := []struct {
		name    string
		lockErr error
		wantErr error
	}{
		{name: "locked"},
		{name: "lockTimeout", lockErr: &pq.Error{Code: codeLockNotAvailable}, wantErr: repository.ErrLockTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMock(t)
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`SELECT set_config('lock_timeout', $1, true)`)).
				WithArgs("3000ms").WillReturnResult(sqlmock.NewResult(0, 1))
			lock := mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`)).
				WithArgs(restaurantID.String())
			if tt.lockErr != nil {
				lock.WillReturnError(tt.lockErr)
				mock.ExpectRollback()
			} else {
				lock.WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			}

			err := store.InTx(context.Background(), func(tx repository.Tx) error {
				return tx.LockRestaurantFeed(context.Background(), restaurantID, 3*time.Second)
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LockRestaurantFeed() error = %v, want %v", err, tt.wantErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestHasActivitySince(t *testing.T) {
	tableID := uuid.New()
	threshold := time.Date(2026, 1, 7, 21, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		kind  repository.ActivityKind
		table string
	}{
		{name: "orders", kind: repository.ActivityOrder, table: "customer_orders"},
		{name: "serviceCalls", kind: repository.ActivityServiceCall, table: "service_calls"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMock(t)
			mock.ExpectBegin()
			mock.ExpectQuery(`FROM `+tt.table+` WHERE table_id = \$1 AND created_at > \$2`).
				WithArgs(tableID, threshold).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			mock.ExpectCommit()

			var got bool
			err := store.InTx(context.Background(), func(tx repository.Tx) error {
				var err error
				got, err = tx.HasActivitySince(context.Background(), tableID, tt.kind, threshold)
				return err
			})
			if err != nil || !got {
				t.Errorf("HasActivitySince() = %v, %v, want true, nil", got, err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestInsertOrderAssignsSeqAndLineNumbers(t *testing.T) {
	store, mock := newMock(t)
	now := time.Date(2026, 1, 7, 21, 15, 30, 0, time.UTC)
	order := &models.CustomerOrder{
		ID: uuid.New(), RestaurantID: uuid.New(), TableID: uuid.New(),
		CreatedAt: now, TotalAmount: decimal.RequireFromString("5.00"), Status: models.OrderStatusNew,
	}
	cola := models.MenuItem{ID: uuid.New(), Name: "Cola", Price: decimal.RequireFromString("2.50")}
	items := []models.OrderItem{models.NewOrderItem(order.ID, cola, 2, "")}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO customer_orders`).
		WithArgs(order.ID, order.RestaurantID, order.TableID, now, order.TotalAmount, "", models.OrderStatusNew, nil).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(17))
	mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs(items[0].ID, order.ID, 1, cola.ID, "Cola", 2, items[0].UnitPrice, items[0].TotalPrice, "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.InTx(context.Background(), func(tx repository.Tx) error {
		return tx.InsertOrder(context.Background(), order, items)
	})
	if err != nil {
		t.Fatalf("InsertOrder() error = %v", err)
	}
	if order.Seq != 17 {
		t.Errorf("Seq = %d, want 17", order.Seq)
	}
	if items[0].LineNo != 1 {
		t.Errorf("LineNo = %d, want 1", items[0].LineNo)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	if err := store.InTx(context.Background(), func(repository.Tx) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("InTx() error = %v, want %v", err, boom)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

var orderCols = []string{"id", "seq", "restaurant_id", "table_id", "table_number", "created_at",
	"total_amount", "note", "status", "sent_to_kitchen_at"}

func TestLockTimeoutSetting(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{3 * time.Second, "3000ms"},
		{1500 * time.Microsecond, "2ms"},
		{500 * time.Microsecond, "1ms"},
		{time.Nanosecond, "1ms"},
	}
	for _, tt := range tests {
		if got := lockTimeoutSetting(tt.in); got != tt.want {
			t.Errorf("lockTimeoutSetting(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetOrderRejectsUnknownStatus(t *testing.T) {
	store, mock := newMock(t)
	orderID := uuid.New()
	mock.ExpectQuery(`FROM customer_orders o`).WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
			orderID.String(), 1, uuid.NewString(), uuid.NewString(), 1, time.Now(), "2.50", "", "COOKING", nil))

	if _, err := store.GetOrder(context.Background(), orderID); err == nil {
		t.Error("GetOrder() accepted an unknown status")
	}
}

func TestListOrdersCursorModes(t *testing.T) {
	restaurantID := uuid.New()
	since := time.Date(2026, 1, 7, 21, 15, 30, 0, time.UTC)

	tests := []struct {
		name      string
		cur       polling.Cursor
		countArgs []driver.Value
		where     string
		order     string
	}{
		{
			name:      "initialLoad",
			cur:       polling.Cursor{},
			countArgs: []driver.Value{restaurantID},
			where:     `WHERE o.restaurant_id = $1`,
			order:     `ORDER BY o.created_at DESC, o.seq DESC`,
		},
		{
			name:      "timestampOnly",
			cur:       polling.Cursor{Since: since},
			countArgs: []driver.Value{restaurantID, since},
			where:     `WHERE o.restaurant_id = $1 AND o.created_at > $2`,
			order:     `ORDER BY o.created_at ASC, o.seq ASC`,
		},
		{
			name:      "withSeq",
			cur:       polling.Cursor{Since: since, Seq: 4},
			countArgs: []driver.Value{restaurantID, since, int64(4)},
			where:     `WHERE o.restaurant_id = $1 AND (o.created_at, o.seq) > ($2, $3)`,
			order:     `ORDER BY o.created_at ASC, o.seq ASC`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMock(t)
			countArgs := tt.countArgs
			mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM customer_orders o ` + tt.where)).
				WithArgs(countArgs...).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
			mock.ExpectQuery(regexp.QuoteMeta(tt.order)).
				WithArgs(append(countArgs, 20, 0)...).
				WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
					uuid.NewString(), 5, restaurantID.String(), uuid.NewString(), 3, since.Add(time.Second),
					"12.50", "", "NEW", nil))

			orders, total, err := store.ListOrders(context.Background(), restaurantID, tt.cur, repository.Page{Size: 20})
			if err != nil {
				t.Fatalf("ListOrders() error = %v", err)
			}
			if total != 1 || len(orders) != 1 {
				t.Fatalf("ListOrders() = %d orders, total %d", len(orders), total)
			}
			if orders[0].TableNumber != 3 || !orders[0].TotalAmount.Equal(decimal.RequireFromString("12.50")) {
				t.Errorf("order = %+v", orders[0])
			}
			if orders[0].SentToKitchenAt != nil {
				t.Error("SentToKitchenAt should be nil")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestGetStaffUserByUsernameNotFound(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(`FROM staff_users`).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "restaurant_id", "username", "password_hash", "role", "is_active"}))

	if _, err := store.GetStaffUserByUsername(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetStaffUserByUsername() error = %v, want ErrNotFound", err)
	}
}
