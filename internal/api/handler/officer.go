package handler

import (
	"net/http"

	"github.com/sentinelcore/inehss/internal/api/middleware"
	"github.com/sentinelcore/inehss/internal/api/response"
	"github.com/sentinelcore/inehss/internal/core"
)

type Officer struct {
	svc *core.UserService
}

func NewOfficer(svc *core.UserService) *Officer {
	return &Officer{svc: svc}
}

// List returns the officers an assignment can be created for or reassigned to.
func (h *Officer) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())
	officers, err := h.svc.ListOfficers(r.Context(), actor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, officers)
}
