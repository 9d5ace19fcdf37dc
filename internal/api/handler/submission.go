package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sentinelcore/inehss/internal/api/middleware"
	"github.com/sentinelcore/inehss/internal/api/request"
	"github.com/sentinelcore/inehss/internal/api/response"
	"github.com/sentinelcore/inehss/internal/core"
	"github.com/sentinelcore/inehss/internal/model"
)

type Submission struct {
	svc *core.SubmissionService
}

func NewSubmission(svc *core.SubmissionService) *Submission {
	return &Submission{svc: svc}
}

// Create files a submission against an assignment. The write is durable
// before propagation runs; a propagation failure is logged and the uploader
// still gets a success, because the submission itself is intact.
func (h *Submission) Create(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.CreateSubmission
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := &model.Submission{
		AssignmentID: assignmentID,
		Data:         req.Data,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		IsDraft:      req.IsDraft,
	}

	actor := middleware.ActorFrom(r.Context())
	asg, err := h.svc.Create(r.Context(), sub, actor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	if err := h.svc.Propagate(r.Context(), asg, sub); err != nil {
		log.Ctx(r.Context()).Error().Err(err).
			Str("submission_id", sub.ID).
			Str("assignment_id", assignmentID).
			Msg("submission propagation failed")
	}

	response.WriteJSON(w, http.StatusCreated, sub)
}

func (h *Submission) ListByAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFrom(r.Context())
	subs, err := h.svc.ListByAssignment(r.Context(), assignmentID, actor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, subs)
}

func (h *Submission) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFrom(r.Context())
	sub, err := h.svc.GetByID(r.Context(), id, actor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, sub)
}
