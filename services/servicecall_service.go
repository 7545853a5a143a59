package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/tableqr/apperr"
	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/polling"
	"github.com/ray-remotestate/tableqr/repository"
)

type ServiceCallService struct {
	store        repository.Store
	limiter      *RateLimiter
	lockTimeout  time.Duration
	activeWindow time.Duration
	clock        Clock
}

func NewServiceCallService(store repository.Store, settings Settings, clock Clock) *ServiceCallService {
	return &ServiceCallService{
		store:        store,
		limiter:      NewRateLimiter(settings.OrderCooldown, settings.ServiceCallCooldown),
		lockTimeout:  settings.TableLockTimeout,
		activeWindow: settings.ServiceCallActiveWindow,
		clock:        clock,
	}
}

func (s *ServiceCallService) CreateCall(ctx context.Context, qrToken string, req CreateServiceCallRequest) (*ServiceCallResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	var call models.ServiceCall
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		table, err := lockTable(ctx, tx, qrToken, s.lockTimeout)
		if err != nil {
			return err
		}

		now := s.clock.now()
		recent, err := s.limiter.HasRecentActivity(ctx, tx, table.ID, repository.ActivityServiceCall, now)
		if err != nil {
			return err
		}
		if recent {
			return apperr.RateLimit("Please wait until the previous service request expires before submitting a new request.")
		}

		call = models.ServiceCall{
			ID:           uuid.New(),
			RestaurantID: table.RestaurantID,
			TableID:      table.ID,
			TableNumber:  table.TableNumber,
			CallType:     req.CallType,
			CreatedAt:    now,
		}
		return tx.InsertServiceCall(ctx, &call)
	})
	if err != nil {
		return nil, translate(err)
	}

	logrus.WithFields(logrus.Fields{
		"restaurantId": call.RestaurantID,
		"tableNumber":  call.TableNumber,
		"callType":     call.CallType,
	}).Info("service call created")

	resp := newServiceCallResponse(call)
	return &resp, nil
}

// ListActive returns the principal's calls younger than the active window,
// newest first on initial load and oldest first when polling. The returned
// cursor is the one the client should send next.
func (s *ServiceCallService) ListActive(ctx context.Context, principal models.Principal, cur polling.Cursor) ([]ServiceCallResponse, polling.Cursor, error) {
	activeSince := s.clock.now().Add(-s.activeWindow)
	calls, err := s.store.ListServiceCalls(ctx, principal.RestaurantID, activeSince, cur)
	if err != nil {
		return nil, cur, translate(err)
	}

	out := make([]ServiceCallResponse, 0, len(calls))
	for _, c := range calls {
		out = append(out, newServiceCallResponse(c))
	}
	return out, polling.Next(cur, calls), nil
}
