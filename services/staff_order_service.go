package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/tableqr/apperr"
	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/polling"
	"github.com/ray-remotestate/tableqr/repository"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type StaffOrderService struct {
	store repository.Store
	clock Clock
}

func NewStaffOrderService(store repository.Store, clock Clock) *StaffOrderService {
	return &StaffOrderService{store: store, clock: clock}
}

func orderNotFound(id uuid.UUID) error {
	return apperr.NotFound("Order not found: %s", id)
}

// ListOrders pages the principal's orders. A zero cursor lists newest first;
// otherwise only orders after the cursor are listed, oldest first.
//
// On the initial load only page 0 yields a next cursor: later pages hold
// older rows, and polling from them would return rows page 0 already showed.
func (s *StaffOrderService) ListOrders(ctx context.Context, principal models.Principal, cur polling.Cursor, page repository.Page) (*OrderPage, polling.Cursor, error) {
	if page.Number < 0 {
		return nil, cur, apperr.Validation("page: must not be negative")
	}
	if page.Size < 1 || page.Size > MaxPageSize {
		return nil, cur, apperr.Validation("size: must be between 1 and %d", MaxPageSize)
	}

	orders, total, err := s.store.ListOrders(ctx, principal.RestaurantID, cur, page)
	if err != nil {
		return nil, cur, translate(err)
	}

	resp := &OrderPage{
		Content:       make([]OrderSummary, 0, len(orders)),
		Page:          page.Number,
		Size:          page.Size,
		TotalElements: total,
		TotalPages:    (total + page.Size - 1) / page.Size,
	}
	for _, o := range orders {
		resp.Content = append(resp.Content, OrderSummary{
			OrderID:     o.ID,
			Seq:         o.Seq,
			TableNumber: o.TableNumber,
			CreatedAt:   o.CreatedAt,
			TotalAmount: money(o.TotalAmount),
			Status:      o.Status,
		})
	}
	if cur.IsZero() && page.Number > 0 {
		return resp, cur, nil
	}
	return resp, polling.Next(cur, orders), nil
}

func (s *StaffOrderService) GetOrderDetails(ctx context.Context, principal models.Principal, orderID uuid.UUID) (*OrderDetails, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && order.RestaurantID != principal.RestaurantID) {
		return nil, orderNotFound(orderID)
	}
	if err != nil {
		return nil, translate(err)
	}

	items, err := s.store.ListOrderItems(ctx, orderID)
	if err != nil {
		return nil, translate(err)
	}

	resp := &OrderDetails{
		OrderID:         order.ID,
		TableNumber:     order.TableNumber,
		CreatedAt:       order.CreatedAt,
		TotalAmount:     money(order.TotalAmount),
		Note:            order.Note,
		Status:          order.Status,
		SentToKitchenAt: order.SentToKitchenAt,
		Items:           make([]OrderItemDTO, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, OrderItemDTO{
			MenuItemID: it.MenuItemID,
			ItemName:   it.ItemName,
			Quantity:   it.Quantity,
			UnitPrice:  money(it.UnitPrice),
			TotalPrice: money(it.TotalPrice),
			Note:       it.Note,
		})
	}
	return resp, nil
}

// MarkSentToKitchen moves a NEW order to SENT_TO_KITCHEN. Repeating the call
// returns the current state and keeps the first timestamp.
func (s *StaffOrderService) MarkSentToKitchen(ctx context.Context, principal models.Principal, orderID uuid.UUID) (*OrderStatusResponse, error) {
	var order *models.CustomerOrder
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		var err error
		order, err = tx.GetOrderForUpdate(ctx, orderID)
		if errors.Is(err, repository.ErrNotFound) || (err == nil && order.RestaurantID != principal.RestaurantID) {
			return orderNotFound(orderID)
		}
		if err != nil {
			return err
		}

		if !order.MarkSentToKitchen(s.clock.now()) {
			return nil
		}
		return tx.UpdateOrderStatus(ctx, order)
	})
	if err != nil {
		return nil, translate(err)
	}

	logrus.WithFields(logrus.Fields{
		"orderId":      order.ID,
		"restaurantId": principal.RestaurantID,
		"userId":       principal.UserID,
	}).Info("order sent to kitchen")

	return &OrderStatusResponse{
		OrderID:         order.ID,
		Status:          order.Status,
		SentToKitchenAt: order.SentToKitchenAt,
	}, nil
}
