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

type FormTemplate struct {
	svc *core.FormTemplateService
}

func NewFormTemplate(svc *core.FormTemplateService) *FormTemplate {
	return &FormTemplate{svc: svc}
}

func (h *FormTemplate) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateFormTemplate
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tmpl := &model.FormTemplate{
		Name:          req.Name,
		Description:   req.Description,
		FormType:      req.FormType,
		IsActive:      true,
		Schema:        req.Schema,
		MapIcon:       req.MapIcon,
		MapColor:      req.MapColor,
		EventCategory: req.EventCategory,
	}
	if req.IsActive != nil {
		tmpl.IsActive = *req.IsActive
	}

	actor := middleware.ActorFrom(r.Context())
	if err := h.svc.Create(r.Context(), tmpl, actor); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, tmpl)
}

// List returns templates visible to the caller: staff see everything, the
// public route serves only active public forms.
func (h *FormTemplate) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFrom(r.Context())
	templates, err := h.svc.List(r.Context(), actor)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, templates)
}

func (h *FormTemplate) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tmpl, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, tmpl)
}

func (h *FormTemplate) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tmpl, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	var req request.UpdateFormTemplate
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name != nil {
		tmpl.Name = *req.Name
	}
	if req.Description != nil {
		tmpl.Description = *req.Description
	}
	if req.IsActive != nil {
		tmpl.IsActive = *req.IsActive
	}
	if req.Schema != nil {
		tmpl.Schema = req.Schema
	}
	if req.MapIcon != nil {
		tmpl.MapIcon = *req.MapIcon
	}
	if req.MapColor != nil {
		tmpl.MapColor = *req.MapColor
	}
	if req.EventCategory != nil {
		tmpl.EventCategory = *req.EventCategory
	}

	actor := middleware.ActorFrom(r.Context())
	if err := h.svc.Update(r.Context(), tmpl, actor); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, tmpl)
}

func (h *FormTemplate) Delete(w http.ResponseWriter, r *http.Request) {
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
	response.WriteStatus(w, "Form template deleted")
}
