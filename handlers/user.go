package handlers

import (
	"net/http"

	"github.com/ray-remotestate/tableqr/services"
	"github.com/ray-remotestate/tableqr/utils"
)

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.RespondError(w, r, err)
		return
	}

	resp, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		utils.RespondError(w, r, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]bool{"alive": false})
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"alive": true})
}
