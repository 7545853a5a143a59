package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/tableqr/apperr"
	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/repository"
)

type OrderService struct {
	store       repository.Store
	limiter     *RateLimiter
	lockTimeout time.Duration
	clock       Clock
}

func NewOrderService(store repository.Store, settings Settings, clock Clock) *OrderService {
	return &OrderService{
		store:       store,
		limiter:     NewRateLimiter(settings.OrderCooldown, settings.ServiceCallCooldown),
		lockTimeout: settings.TableLockTimeout,
		clock:       clock,
	}
}

// Submit places an order for the table behind qrToken. Lock, cooldown check,
// price lookup and inserts share one transaction; any failure persists nothing.
func (s *OrderService) Submit(ctx context.Context, qrToken string, req SubmitOrderRequest) (*SubmitOrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	var order models.CustomerOrder
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		table, err := lockTable(ctx, tx, qrToken, s.lockTimeout)
		if err != nil {
			return err
		}

		now := s.clock.now()
		recent, err := s.limiter.HasRecentActivity(ctx, tx, table.ID, repository.ActivityOrder, now)
		if err != nil {
			return err
		}
		if recent {
			return apperr.RateLimit("Only one order per minute is allowed for this table")
		}

		menu, err := s.loadMenuItems(ctx, tx, table.RestaurantID, req.Items)
		if err != nil {
			return err
		}

		order = models.CustomerOrder{
			ID:           uuid.New(),
			RestaurantID: table.RestaurantID,
			TableID:      table.ID,
			TableNumber:  table.TableNumber,
			CreatedAt:    now,
			Note:         req.Note,
			Status:       models.OrderStatusNew,
		}
		items := make([]models.OrderItem, 0, len(req.Items))
		for _, line := range req.Items {
			items = append(items, models.NewOrderItem(order.ID, menu[line.MenuItemID], line.Quantity, line.Note))
		}
		order.TotalAmount = models.SumLineTotals(items)

		return tx.InsertOrder(ctx, &order, items)
	})
	if err != nil {
		return nil, translate(err)
	}

	logrus.WithFields(logrus.Fields{
		"orderId":      order.ID,
		"restaurantId": order.RestaurantID,
		"tableNumber":  order.TableNumber,
		"total":        order.TotalAmount.StringFixed(2),
	}).Info("order submitted")

	return &SubmitOrderResponse{
		OrderID:     order.ID,
		CreatedAt:   order.CreatedAt,
		TotalAmount: money(order.TotalAmount),
	}, nil
}

// loadMenuItems fetches each distinct requested item once and checks it can be ordered.
func (s *OrderService) loadMenuItems(ctx context.Context, tx repository.Tx, restaurantID uuid.UUID, lines []SubmitOrderItem) (map[uuid.UUID]models.MenuItem, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if !seen[l.MenuItemID] {
			seen[l.MenuItemID] = true
			ids = append(ids, l.MenuItemID)
		}
	}

	found, err := tx.FindMenuItems(ctx, restaurantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.MenuItem, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}

	for _, id := range ids {
		m, ok := byID[id]
		switch {
		case !ok:
			return nil, apperr.NotFound("Menu item not found: %s", id)
		case !m.Active:
			return nil, apperr.BusinessRule("Menu item is inactive: %s", id)
		case !m.Available:
			return nil, apperr.BusinessRule("Menu item is not available: %s", id)
		}
	}
	return byID, nil
}
