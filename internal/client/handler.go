package client

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/gastoscl/rendiciones/internal/auth"
	"github.com/gastoscl/rendiciones/internal/transport"
	"github.com/gastoscl/rendiciones/pkg/logger"
)

type ServiceAPI interface {
	Register(principal *auth.Principal, dto RegisterClientDTO) (*Client, error)
	ListActive() ([]*Client, error)
	ListPending(principal *auth.Principal) ([]*Client, error)
	Approve(principal *auth.Principal, clientID int64) (*ApproveResult, error)
	Reject(principal *auth.Principal, clientID int64) (*RejectResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) RegisterClient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto RegisterClientDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("RegisterClient: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.Service.Register(principal, dto)
	if err != nil {
		h.Logger.Error("RegisterClient: service error", "error", err, "rut", dto.RUT)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Service.ListActive()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"clients": clients})
}

func (h *Handler) ListPendingClients(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	clients, err := h.Service.ListPending(principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"clients": clients})
}

func (h *Handler) ApproveClient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	result, err := h.Service.Approve(principal, id)
	if err != nil {
		h.Logger.Error("ApproveClient: service error", "error", err, "client_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ApproveClient: client approved",
		"client_id", id,
		"admin_id", principal.ID,
		"pending_expenses", result.PendingExpenses)
	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) RejectClient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	result, err := h.Service.Reject(principal, id)
	if err != nil {
		h.Logger.Error("RejectClient: service error", "error", err, "client_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("RejectClient: client rejected",
		"client_id", id,
		"admin_id", principal.ID,
		"rejected_expenses", result.RejectedExpenses)
	h.WriteJSON(w, http.StatusOK, result)
}
