package category

import (
	"net/http"

	"github.com/gastoscl/rendiciones/internal/transport"
	"github.com/gastoscl/rendiciones/pkg/logger"
)

type ServiceAPI interface {
	GetAllCategories() ([]CategoryResponse, error)
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

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.GetAllCategories()
	if err != nil {
		h.Logger.Error("GetCategories: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get categories")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}
