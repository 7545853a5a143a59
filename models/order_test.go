package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestNewOrderItemSnapshotsPrice(t *testing.T) {
	item := MenuItem{ID: uuid.New(), Name: "Cola", Price: decimal.RequireFromString("2.50")}
	orderID := uuid.New()

	oi := NewOrderItem(orderID, item, 2, "no ice")

	if !oi.UnitPrice.Equal(decimal.RequireFromString("2.50")) {
		t.Errorf("UnitPrice = %s, want 2.50", oi.UnitPrice)
	}
	if !oi.TotalPrice.Equal(decimal.RequireFromString("5.00")) {
		t.Errorf("TotalPrice = %s, want 5.00", oi.TotalPrice)
	}
	if oi.OrderID != orderID || oi.MenuItemID != item.ID || oi.ItemName != "Cola" {
		t.Errorf("NewOrderItem() = %+v, references not copied", oi)
	}

	item.Price = decimal.RequireFromString("9.99")
	if !oi.UnitPrice.Equal(decimal.RequireFromString("2.50")) {
		t.Error("changing the menu item price must not change the snapshot")
	}
}

func TestSumLineTotalsIsExact(t *testing.T) {
	var items []OrderItem
	tenCents := MenuItem{ID: uuid.New(), Price: decimal.RequireFromString("0.10")}
	for i := 0; i < 3; i++ {
		items = append(items, NewOrderItem(uuid.Nil, tenCents, 1, ""))
	}
	items = append(items, NewOrderItem(uuid.Nil, MenuItem{Price: decimal.RequireFromString("19.99")}, 7, ""))

	got := SumLineTotals(items)
	want := decimal.RequireFromString("140.23")
	if !got.Equal(want) {
		t.Errorf("SumLineTotals() = %s, want %s", got, want)
	}
}

func TestMarkSentToKitchenIsIdempotent(t *testing.T) {
	first := time.Date(2026, 1, 7, 21, 30, 0, 0, time.UTC)
	order := &CustomerOrder{Status: OrderStatusNew}

	if changed := order.MarkSentToKitchen(first); !changed {
		t.Fatal("first transition should report a change")
	}
	if order.Status != OrderStatusSentToKitchen {
		t.Fatalf("Status = %s, want %s", order.Status, OrderStatusSentToKitchen)
	}

	if changed := order.MarkSentToKitchen(first.Add(time.Minute)); changed {
		t.Error("second transition should be a no-op")
	}
	if !order.SentToKitchenAt.Equal(first) {
		t.Errorf("SentToKitchenAt = %v, want %v", order.SentToKitchenAt, first)
	}
}
