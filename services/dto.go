package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"

	"github.com/ray-remotestate/tableqr/models"
)

const (
	maxQuantity    = 99
	maxNoteLen     = 1000
	maxItemNoteLen = 500
)

// money renders an amount with exactly two decimals as a JSON number.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func validationErrors() *multierror.Error {
	return &multierror.Error{ErrorFormat: func(errs []error) string {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return strings.Join(msgs, "; ")
	}}
}

type SubmitOrderItem struct {
	MenuItemID uuid.UUID `json:"menuItemId"`
	Quantity   int       `json:"quantity"`
	Note       string    `json:"note"`
}

type SubmitOrderRequest struct {
	Items []SubmitOrderItem `json:"items"`
	Note  string            `json:"note"`
}

// Validate reports every violated field at once.
func (r SubmitOrderRequest) Validate() error {
	errs := validationErrors()
	if len(r.Items) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("items: must not be empty"))
	}
	if utf8.RuneCountInString(r.Note) > maxNoteLen {
		errs = multierror.Append(errs, fmt.Errorf("note: must be at most %d characters", maxNoteLen))
	}
	for i, it := range r.Items {
		if it.MenuItemID == uuid.Nil {
			errs = multierror.Append(errs, fmt.Errorf("items[%d].menuItemId: must not be empty", i))
		}
		if it.Quantity < 1 || it.Quantity > maxQuantity {
			errs = multierror.Append(errs, fmt.Errorf("items[%d].quantity: must be between 1 and %d", i, maxQuantity))
		}
		if utf8.RuneCountInString(it.Note) > maxItemNoteLen {
			errs = multierror.Append(errs, fmt.Errorf("items[%d].note: must be at most %d characters", i, maxItemNoteLen))
		}
	}
	return errs.ErrorOrNil()
}

type SubmitOrderResponse struct {
	OrderID     uuid.UUID   `json:"orderId"`
	CreatedAt   time.Time   `json:"createdAt"`
	TotalAmount json.Number `json:"totalAmount"`
}

type CreateServiceCallRequest struct {
	CallType models.CallType `json:"callType"`
}

func (r CreateServiceCallRequest) Validate() error {
	if r.CallType == "" {
		return fmt.Errorf("callType: must not be empty")
	}
	if !r.CallType.IsValid() {
		return fmt.Errorf("callType: %q is not a valid call type", r.CallType)
	}
	return nil
}

type ServiceCallResponse struct {
	ID          uuid.UUID       `json:"id"`
	Seq         int64           `json:"seq"`
	TableNumber int             `json:"tableNumber"`
	CallType    models.CallType `json:"callType"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func newServiceCallResponse(c models.ServiceCall) ServiceCallResponse {
	return ServiceCallResponse{
		ID:          c.ID,
		Seq:         c.Seq,
		TableNumber: c.TableNumber,
		CallType:    c.CallType,
		CreatedAt:   c.CreatedAt,
	}
}

type MenuCategoryDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	DisplayOrder int       `json:"displayOrder"`
}

type MenuItemDTO struct {
	ID           uuid.UUID   `json:"id"`
	CategoryID   uuid.UUID   `json:"categoryId"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        json.Number `json:"price"`
	Available    bool        `json:"available"`
	DisplayOrder int         `json:"displayOrder"`
}

type MenuResponse struct {
	RestaurantName string            `json:"restaurantName"`
	TableNumber    int               `json:"tableNumber"`
	Categories     []MenuCategoryDTO `json:"categories"`
	Items          []MenuItemDTO     `json:"items"`
}

type OrderSummary struct {
	OrderID     uuid.UUID          `json:"orderId"`
	Seq         int64              `json:"seq"`
	TableNumber int                `json:"tableNumber"`
	CreatedAt   time.Time          `json:"createdAt"`
	TotalAmount json.Number        `json:"totalAmount"`
	Status      models.OrderStatus `json:"status"`
}

type OrderPage struct {
	Content       []OrderSummary `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int            `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
}

type OrderItemDTO struct {
	MenuItemID uuid.UUID   `json:"menuItemId"`
	ItemName   string      `json:"itemName"`
	Quantity   int         `json:"quantity"`
	UnitPrice  json.Number `json:"unitPrice"`
	TotalPrice json.Number `json:"totalPrice"`
	Note       string      `json:"note"`
}

type OrderDetails struct {
	OrderID         uuid.UUID          `json:"orderId"`
	TableNumber     int                `json:"tableNumber"`
	CreatedAt       time.Time          `json:"createdAt"`
	TotalAmount     json.Number        `json:"totalAmount"`
	Note            string             `json:"note"`
	Status          models.OrderStatus `json:"status"`
	SentToKitchenAt *time.Time         `json:"sentToKitchenAt"`
	Items           []OrderItemDTO     `json:"items"`
}

type OrderStatusResponse struct {
	OrderID         uuid.UUID          `json:"orderId"`
	Status          models.OrderStatus `json:"status"`
	SentToKitchenAt *time.Time         `json:"sentToKitchenAt"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string      `json:"accessToken"`
	Role         models.Role `json:"role"`
	RestaurantID uuid.UUID   `json:"restaurantId"`
	UserID       uuid.UUID   `json:"userId"`
}
