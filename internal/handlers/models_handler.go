package handlers

import (
	"net/http"

	"github.com/pablocarmonaesparza/education-sub001/internal/registry"
	"github.com/pablocarmonaesparza/education-sub001/pkg/httputil"
)

// ModelsHandler exposes the model registry for client model pickers.
type ModelsHandler struct {
	registry *registry.Registry
}

func NewModelsHandler(reg *registry.Registry) *ModelsHandler {
	return &ModelsHandler{registry: reg}
}

// HandleListModels lists every available model with its display metadata.
func (h *ModelsHandler) HandleListModels(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"models":  h.registry.List(),
		"default": h.registry.Default().ID,
	})
}
