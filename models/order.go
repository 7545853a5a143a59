package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusNew           OrderStatus = "NEW"
	OrderStatusSentToKitchen OrderStatus = "SENT_TO_KITCHEN"
)

func (s OrderStatus) IsValid() bool {
	return s == OrderStatusNew || s == OrderStatusSentToKitchen
}

type CustomerOrder struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Seq             int64           `db:"seq" json:"seq"`
	RestaurantID    uuid.UUID       `db:"restaurant_id" json:"restaurant_id"`
	TableID         uuid.UUID       `db:"table_id" json:"table_id"`
	TableNumber     int             `db:"-" json:"table_number"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	Note            string          `db:"note" json:"note"`
	Status          OrderStatus     `db:"status" json:"status"`
	SentToKitchenAt *time.Time      `db:"sent_to_kitchen_at" json:"sent_to_kitchen_at,omitempty"`
}

// MarkSentToKitchen moves a NEW order forward and reports whether anything changed.
// An order already in the kitchen keeps its original timestamp.
func (o *CustomerOrder) MarkSentToKitchen(now time.Time) bool {
	if o.Status == OrderStatusSentToKitchen {
		return false
	}
	o.Status = OrderStatusSentToKitchen
	at := now
	o.SentToKitchenAt = &at
	return true
}

// GetCreatedAt and GetSeq let orders act as polling rows.
func (o CustomerOrder) GetCreatedAt() time.Time { return o.CreatedAt }
func (o CustomerOrder) GetSeq() int64           { return o.Seq }

type OrderItem struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	OrderID    uuid.UUID       `db:"customer_order_id" json:"order_id"`
	LineNo     int             `db:"line_no" json:"-"`
	MenuItemID uuid.UUID       `db:"menu_item_id" json:"menu_item_id"`
	ItemName   string          `db:"item_name" json:"item_name"`
	Quantity   int             `db:"quantity" json:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
	Note       string          `db:"note" json:"note"`
}

// NewOrderItem snapshots the stored price of item for qty units.
func NewOrderItem(orderID uuid.UUID, item MenuItem, qty int, note string) OrderItem {
	return OrderItem{
		ID:         uuid.New(),
		OrderID:    orderID,
		MenuItemID: item.ID,
		ItemName:   item.Name,
		Quantity:   qty,
		UnitPrice:  item.Price,
		TotalPrice: item.Price.Mul(decimal.NewFromInt(int64(qty))),
		Note:       note,
	}
}

// SumLineTotals is the only way an order total is produced.
func SumLineTotals(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}
