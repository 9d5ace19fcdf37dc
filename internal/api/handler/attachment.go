package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/sentinelcore/inehss/internal/api/request"
	"github.com/sentinelcore/inehss/internal/api/response"
	"github.com/sentinelcore/inehss/internal/core"
	"github.com/sentinelcore/inehss/internal/media"
	"github.com/sentinelcore/inehss/internal/model"
)

// maxUploadBytes bounds a single attachment upload.
const maxUploadBytes = 64 << 20

type Attachment struct {
	svc   *core.AttachmentService
	store *media.Store
}

func NewAttachment(svc *core.AttachmentService, store *media.Store) *Attachment {
	return &Attachment{svc: svc, store: store}
}

// UploadToReport attaches a file to a report.
func (h *Attachment) UploadToReport(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.upload(w, r, model.OwnedByReport(id))
}

// UploadToSubmission attaches a file to a submission.
func (h *Attachment) UploadToSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.upload(w, r, model.OwnedBySubmission(id))
}

// upload streams the multipart file into the object store, hashing the bytes
// on the way through, then records the attachment row and mirrors it into the
// owning event's media collection. The mirror is best-effort; its failure is
// logged and the uploader still gets a success.
func (h *Attachment) upload(w http.ResponseWriter, r *http.Request, owner model.AttachmentOwner) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "missing file field: "+err.Error())
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := media.ObjectKey(header.Filename, time.Now())
	hasher := sha256.New()
	if err := h.store.Put(r.Context(), key, contentType, io.TeeReader(file, hasher), header.Size); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("key", key).Msg("attachment upload failed")
		response.WriteError(w, http.StatusBadGateway, "upload failed")
		return
	}

	att := &model.MediaAttachment{
		FileKey:          key,
		FileType:         model.AttachmentTypeFromMIME(contentType),
		FileHash:         hex.EncodeToString(hasher.Sum(nil)),
		OriginalFilename: header.Filename,
		FileSize:         header.Size,
	}
	if err := h.svc.Create(r.Context(), owner, att); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	if err := h.svc.SyncToEvent(r.Context(), att); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("attachment_id", att.ID).Msg("event media mirror failed")
	}

	response.WriteJSON(w, http.StatusCreated, att)
}

func (h *Attachment) ListByReport(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.list(w, r, model.OwnedByReport(id))
}

func (h *Attachment) ListBySubmission(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.list(w, r, model.OwnedBySubmission(id))
}

func (h *Attachment) list(w http.ResponseWriter, r *http.Request, owner model.AttachmentOwner) {
	attachments, err := h.svc.ListByOwner(r.Context(), owner)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, attachments)
}
