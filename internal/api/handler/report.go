package handler

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sentinelcore/inehss/internal/api/middleware"
	"github.com/sentinelcore/inehss/internal/api/request"
	"github.com/sentinelcore/inehss/internal/api/response"
	"github.com/sentinelcore/inehss/internal/core"
	"github.com/sentinelcore/inehss/internal/model"
)

type Report struct {
	svc        *core.ReportService
	propagator *core.Propagator
}

func NewReport(svc *core.ReportService, propagator *core.Propagator) *Report {
	return &Report{svc: svc, propagator: propagator}
}

// Create accepts a public hazard report. No authentication; the submitter
// gets back a tracking code and nothing else about the system's internals.
func (h *Report) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateReport
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep := &model.Report{
		FormTemplateID: req.FormTemplateID,
		Data:           req.Data,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Address:        req.Address,
		Priority:       req.Priority,
		ReporterName:   req.ReporterName,
		ReporterPhone:  req.ReporterPhone,
		ReporterEmail:  req.ReporterEmail,
		UserAgent:      r.UserAgent(),
	}
	if ip := clientIP(r); ip != "" {
		rep.IPAddress = &ip
	}

	if err := h.svc.Create(r.Context(), rep); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	// Event materialization is a derived projection; its failure must not
	// fail the report the citizen just filed.
	if err := h.propagator.MaterializeForReport(r.Context(), rep); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("report_id", rep.ID).Msg("event materialization failed")
	}

	response.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":            rep.ID,
		"tracking_code": rep.TrackingCode,
		"status":        rep.Status,
	})
}

// trackView is the public status-lookup projection of a report. Reporter
// contact details and internal linkage stay hidden.
type trackView struct {
	TrackingCode string    `json:"tracking_code"`
	Status       string    `json:"status"`
	Priority     string    `json:"priority"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Track serves the public status lookup by tracking code.
func (h *Report) Track(w http.ResponseWriter, r *http.Request) {
	code, err := request.RequireID(chi.URLParam(r, "code"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.svc.GetByTrackingCode(r.Context(), code)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, trackView{
		TrackingCode: rep.TrackingCode,
		Status:       rep.Status,
		Priority:     rep.Priority,
		CreatedAt:    rep.CreatedAt,
		UpdatedAt:    rep.UpdatedAt,
	})
}

func (h *Report) List(w http.ResponseWriter, r *http.Request) {
	p := request.ParsePagination(r)
	filters := core.ReportFilters{
		Status:   r.URL.Query().Get("status"),
		Priority: r.URL.Query().Get("priority"),
		Search:   r.URL.Query().Get("search"),
	}

	reports, hasMore, err := h.svc.List(r.Context(), filters, p.Limit, p.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(reports) > 0 {
		nextCursor = reports[len(reports)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, reports, nextCursor, hasMore)
}

func (h *Report) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, rep)
}

func (h *Report) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateReportStatus
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFrom(r.Context())
	if err := h.svc.UpdateStatus(r.Context(), id, req.Status, actor); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteStatus(w, "Report status updated")
}

func (h *Report) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := middleware.ActorFrom(r.Context())
	if err := h.svc.Delete(r.Context(), id, actor); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteStatus(w, "Report deleted")
}

// clientIP strips the port from RemoteAddr. RealIP middleware has already
// substituted the forwarded address when one is present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
