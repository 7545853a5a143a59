package handlers

import (
	"net/http"

	"github.com/ray-remotestate/tableqr/apperr"
	"github.com/ray-remotestate/tableqr/middlewares"
	"github.com/ray-remotestate/tableqr/models"
	"github.com/ray-remotestate/tableqr/repository"
	"github.com/ray-remotestate/tableqr/services"
	"github.com/ray-remotestate/tableqr/utils"
)

func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, err := middlewares.GetPrincipal(r)
	if err != nil {
		utils.RespondError(w, r, apperr.Unauthenticated("authentication required"))
		return models.Principal{}, false
	}
	return p, true
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	cur, err := queryCursor(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	page, err := queryInt(r, "page", 0)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	size, err := queryInt(r, "size", services.DefaultPageSize)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	resp, next, err := h.Staff.ListOrders(r.Context(), p, cur, repository.Page{Number: page, Size: size})
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	setCursorHeaders(w, next)
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	resp, err := h.Staff.GetOrderDetails(r.Context(), p, orderID)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) MarkSentToKitchen(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	orderID, err := pathUUID(r, "orderId")
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	resp, err := h.Staff.MarkSentToKitchen(r.Context(), p, orderID)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListServiceCalls(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	cur, err := queryCursor(r)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}

	calls, next, err := h.Calls.ListActive(r.Context(), p, cur)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	setCursorHeaders(w, next)
	utils.RespondJSON(w, http.StatusOK, calls)
}
