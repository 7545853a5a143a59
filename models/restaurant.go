package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Active    bool      `db:"is_active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Table is a physical restaurant table reachable through its QR token.
// RestaurantName and RestaurantActive are filled by the joins that resolve a table.
type Table struct {
	ID               uuid.UUID `db:"id" json:"id"`
	RestaurantID     uuid.UUID `db:"restaurant_id" json:"restaurant_id"`
	TableNumber      int       `db:"table_number" json:"table_number"`
	QRToken          string    `db:"qr_token" json:"-"`
	Active           bool      `db:"is_active" json:"active"`
	RestaurantName   string    `db:"-" json:"-"`
	RestaurantActive bool      `db:"-" json:"-"`
}

type MenuCategory struct {
	ID           uuid.UUID `db:"id" json:"id"`
	RestaurantID uuid.UUID `db:"restaurant_id" json:"-"`
	Name         string    `db:"name" json:"name"`
	DisplayOrder int       `db:"display_order" json:"displayOrder"`
	Active       bool      `db:"is_active" json:"-"`
}

// MenuItem price is mutable over time; orders copy it at submission.
type MenuItem struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	RestaurantID uuid.UUID       `db:"restaurant_id" json:"-"`
	CategoryID   uuid.UUID       `db:"menu_category_id" json:"categoryId"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Available    bool            `db:"is_available" json:"available"`
	Active       bool            `db:"is_active" json:"-"`
	DisplayOrder int             `db:"display_order" json:"displayOrder"`
}
