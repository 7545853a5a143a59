package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ray-remotestate/tableqr/services"
	"github.com/ray-remotestate/tableqr/utils"
)

// Public table endpoints. The QR token in the path is the only credential.

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.Menu.FetchMenu(r.Context(), mux.Vars(r)["qrToken"])
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, menu)
}

func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	resp, err := h.Orders.Submit(r.Context(), mux.Vars(r)["qrToken"], req)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, resp)
}

func (h *Handler) CreateServiceCall(w http.ResponseWriter, r *http.Request) {
	var req services.CreateServiceCallRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	resp, err := h.Calls.CreateCall(r.Context(), mux.Vars(r)["qrToken"], req)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, resp)
}
