package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentinelcore/inehss/internal/api/middleware"
	"github.com/sentinelcore/inehss/internal/api/request"
	"github.com/sentinelcore/inehss/internal/api/response"
	"github.com/sentinelcore/inehss/internal/core"
	"github.com/sentinelcore/inehss/internal/model"
)

type Assignment struct {
	svc *core.AssignmentService
}

func NewAssignment(svc *core.AssignmentService) *Assignment {
	return &Assignment{svc: svc}
}

func (h *Assignment) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAssignment
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	asg := &model.Assignment{
		ReportID:         req.ReportID,
		OfficerID:        req.OfficerID,
		InspectionFormID: req.InspectionFormID,
		IsPersistent:     req.IsPersistent,
		Notes:            req.Notes,
		DueDate:          req.DueDate,
	}

	actor := middleware.ActorFrom(r.Context())
	if err := h.svc.Create(r.Context(), asg, actor); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, asg)
}

func (h *Assignment) List(w http.ResponseWriter, r *http.Request) {
	p := request.ParsePagination(r)
	actor := middleware.ActorFrom(r.Context())

	assignments, hasMore, err := h.svc.List(r.Context(), actor, p.Limit, p.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(assignments) > 0 {
		nextCursor = assignments[len(assignments)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, assignments, nextCursor, hasMore)
}

func (h *Assignment) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	asg, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, asg)
}

// transition runs one lifecycle operation and writes the standard
// phrase-plus-assignment payload.
func (h *Assignment) transition(w http.ResponseWriter, r *http.Request, phrase string,
	op func(string, core.Actor) (*model.Assignment, error)) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFrom(r.Context())
	asg, err := op(id, actor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]any{
		"status":     phrase,
		"assignment": asg,
	})
}

func (h *Assignment) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Assignment accepted", func(id string, actor core.Actor) (*model.Assignment, error) {
		return h.svc.Accept(r.Context(), id, actor)
	})
}

func (h *Assignment) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Assignment started", func(id string, actor core.Actor) (*model.Assignment, error) {
		return h.svc.Start(r.Context(), id, actor)
	})
}

func (h *Assignment) SubmitReview(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Assignment submitted for review", func(id string, actor core.Actor) (*model.Assignment, error) {
		return h.svc.SubmitReview(r.Context(), id, actor)
	})
}

func (h *Assignment) RequestRevision(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Revision requested", func(id string, actor core.Actor) (*model.Assignment, error) {
		return h.svc.RequestRevision(r.Context(), id, actor)
	})
}

func (h *Assignment) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Assignment approved", func(id string, actor core.Actor) (*model.Assignment, error) {
		return h.svc.Approve(r.Context(), id, actor)
	})
}

func (h *Assignment) Decline(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Assignment declined", func(id string, actor core.Actor) (*model.Assignment, error) {
		return h.svc.Decline(r.Context(), id, actor)
	})
}

func (h *Assignment) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Assignment completed", func(id string, actor core.Actor) (*model.Assignment, error) {
		return h.svc.Complete(r.Context(), id, actor)
	})
}

func (h *Assignment) Escalate(w http.ResponseWriter, r *http.Request) {
	var req request.EscalateAssignment
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.transition(w, r, "Assignment escalated", func(id string, actor core.Actor) (*model.Assignment, error) {
		return h.svc.Escalate(r.Context(), id, actor, req.Level, req.Reason)
	})
}

func (h *Assignment) Reassign(w http.ResponseWriter, r *http.Request) {
	var req request.ReassignAssignment
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.transition(w, r, "Assignment reassigned", func(id string, actor core.Actor) (*model.Assignment, error) {
		return h.svc.Reassign(r.Context(), id, actor, req.OfficerID)
	})
}
