// Package handlers adapts HTTP requests to the services. Every error goes
// through utils.RespondError so clients always get an ApiErrorResponse.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ray-remotestate/tableqr/apperr"
	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/polling"
	"github.com/ray-remotestate/tableqr/repository"
	"github.com/ray-remotestate/tableqr/services"
)

const (
	NextSinceHeader = "X-Next-Since"
	NextSeqHeader   = "X-Next-Seq"
)

type MenuFetcher interface {
	FetchMenu(ctx context.Context, qrToken string) (*services.MenuResponse, error)
}

type OrderSubmitter interface {
	Submit(ctx context.Context, qrToken string, req services.SubmitOrderRequest) (*services.SubmitOrderResponse, error)
}

type ServiceCalls interface {
	CreateCall(ctx context.Context, qrToken string, req services.CreateServiceCallRequest) (*services.ServiceCallResponse, error)
	ListActive(ctx context.Context, principal models.Principal, cur polling.Cursor) ([]services.ServiceCallResponse, polling.Cursor, error)
}

type StaffOrders interface {
	ListOrders(ctx context.Context, principal models.Principal, cur polling.Cursor, page repository.Page) (*services.OrderPage, polling.Cursor, error)
	GetOrderDetails(ctx context.Context, principal models.Principal, orderID uuid.UUID) (*services.OrderDetails, error)
	MarkSentToKitchen(ctx context.Context, principal models.Principal, orderID uuid.UUID) (*services.OrderStatusResponse, error)
}

type Authenticator interface {
	Login(ctx context.Context, req services.LoginRequest) (*services.LoginResponse, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Menu   MenuFetcher
	Orders OrderSubmitter
	Calls  ServiceCalls
	Staff  StaffOrders
	Auth   Authenticator
	Store  Pinger
}

// maxBodyBytes fits the largest valid order with room to spare.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body exceeds %d bytes", tooLarge.Limit)
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, apperr.Validation("%s: must be a UUID", name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Validation("%s: must be an integer", name)
	}
	return n, nil
}

func queryCursor(r *http.Request) (polling.Cursor, error) {
	q := r.URL.Query()
	cur, err := polling.Parse(q.Get("since"), q.Get("sinceSeq"))
	if err != nil {
		return polling.Cursor{}, apperr.Validation("%s", err.Error())
	}
	return cur, nil
}

func setCursorHeaders(w http.ResponseWriter, cur polling.Cursor) {
	since, seq := cur.Format()
	if since == "" {
		return
	}
	w.Header().Set(NextSinceHeader, since)
	w.Header().Set(NextSeqHeader, seq)
}
