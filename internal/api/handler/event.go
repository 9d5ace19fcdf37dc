package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sentinelcore/inehss/internal/api/request"
	"github.com/sentinelcore/inehss/internal/api/response"
	"github.com/sentinelcore/inehss/internal/core"
)

type Event struct {
	svc *core.EventService
}

func NewEvent(svc *core.EventService) *Event {
	return &Event{svc: svc}
}

// List serves the map feed: status/severity/category filters plus an
// optional bounding box. Partial boxes are ignored rather than rejected.
func (h *Event) List(w http.ResponseWriter, r *http.Request) {
	p := request.ParsePagination(r)
	q := r.URL.Query()

	filters := core.EventFilters{
		Status:   q.Get("status"),
		Severity: q.Get("severity"),
		Category: q.Get("category"),
		MinLat:   parseCoord(q.Get("min_lat")),
		MaxLat:   parseCoord(q.Get("max_lat")),
		MinLng:   parseCoord(q.Get("min_lng")),
		MaxLng:   parseCoord(q.Get("max_lng")),
	}

	events, hasMore, err := h.svc.List(r.Context(), filters, p.Limit, p.Cursor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(events) > 0 {
		nextCursor = events[len(events)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, events, nextCursor, hasMore)
}

func (h *Event) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	evt, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, evt)
}

func (h *Event) ListMedia(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	media, err := h.svc.ListMedia(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, media)
}

func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
