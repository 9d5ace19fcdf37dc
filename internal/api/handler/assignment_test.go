package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sentinelcore/inehss/internal/core"
	"github.com/sentinelcore/inehss/internal/model"
)

func newAssignmentHandler() *Assignment {
	return NewAssignment(nil)
}

// pendingAssignmentRow scans a pending assignment owned by officerID.
func pendingAssignmentRow(officerID string) *handlerMockRow {
	now := time.Now()
	return &handlerMockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = validID      // ID
		*(dest[1].(**string)) = nil         // ReportID
		*(dest[2].(*string)) = officerID    // OfficerID
		*(dest[3].(*string)) = validID2     // InspectionFormID
		*(dest[4].(*string)) = model.AssignmentPending
		*(dest[5].(*int)) = 0               // ProgressPercent
		*(dest[6].(*string)) = model.EscalationNone
		*(dest[7].(*string)) = ""           // EscalationReason
		*(dest[8].(*bool)) = false          // IsPersistent
		*(dest[9].(*string)) = ""           // Notes
		*(dest[10].(**string)) = nil        // AssignedBy
		*(dest[11].(*time.Time)) = now      // AssignedAt
		*(dest[12].(**time.Time)) = nil     // DueDate
		*(dest[13].(**time.Time)) = nil     // CompletedAt
		*(dest[14].(*time.Time)) = now      // UpdatedAt
		return nil
	}}
}

// --- Create ---

func TestAssignmentCreate_InvalidJSON(t *testing.T) {
	h := newAssignmentHandler()
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/assignments", "{bad json")

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "invalid JSON")
}

func TestAssignmentCreate_MissingRequiredFields(t *testing.T) {
	h := newAssignmentHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/assignments", map[string]any{})

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "validation error")
}

func TestAssignmentCreate_InvalidOfficerID(t *testing.T) {
	h := newAssignmentHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/assignments", map[string]any{
		"officer_id":         "not-a-uuid",
		"inspection_form_id": validID2,
	})

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "validation error")
}

func TestAssignmentCreate_NonStaffForbidden(t *testing.T) {
	db := &handlerMockDB{}
	h := NewAssignment(core.NewAssignmentService(db))
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/assignments", map[string]any{
		"officer_id":         validID,
		"inspection_form_id": validID2,
	})
	r = withOfficer(r, validID)

	h.Create(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

// --- Get ---

func TestAssignmentGet_EmptyID(t *testing.T) {
	h := newAssignmentHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/assignments/", nil)
	r = withChiURLParam(r, "id", "")

	h.Get(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "missing required ID")
}

// --- Accept ---

func TestAssignmentAccept_EmptyID(t *testing.T) {
	h := newAssignmentHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/assignments//accept", nil)
	r = withChiURLParam(r, "id", "")

	h.Accept(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "missing required ID")
}

func TestAssignmentAccept_Success(t *testing.T) {
	db := &handlerMockDB{}
	h := NewAssignment(core.NewAssignmentService(db))

	officerID := "officer-1"
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pendingAssignmentRow(officerID)).Once()
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil).Once()

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/assignments/"+validID+"/accept", nil)
	r = withChiURLParam(r, "id", validID)
	r = withOfficer(r, officerID)

	h.Accept(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status     string           `json:"status"`
		Assignment model.Assignment `json:"assignment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Assignment accepted", body.Status)
	assert.Equal(t, model.AssignmentAccepted, body.Assignment.Status)
	assert.Equal(t, 10, body.Assignment.ProgressPercent)
	db.AssertExpectations(t)
}

func TestAssignmentAccept_NotOwnerForbidden(t *testing.T) {
	db := &handlerMockDB{}
	h := NewAssignment(core.NewAssignmentService(db))

	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pendingAssignmentRow("officer-1")).Once()

	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/assignments/"+validID+"/accept", nil)
	r = withChiURLParam(r, "id", validID)
	r = withOfficer(r, "officer-2")

	h.Accept(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

// --- Escalate ---

func TestAssignmentEscalate_InvalidJSON(t *testing.T) {
	h := newAssignmentHandler()
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/assignments/"+validID+"/escalate", "{bad json")
	r = withChiURLParam(r, "id", validID)

	h.Escalate(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "invalid JSON")
}

func TestAssignmentEscalate_MissingReason(t *testing.T) {
	h := newAssignmentHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/assignments/"+validID+"/escalate", map[string]any{
		"level": "high",
	})
	r = withChiURLParam(r, "id", validID)

	h.Escalate(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "validation error")
}

// --- Reassign ---

func TestAssignmentReassign_MissingOfficer(t *testing.T) {
	h := newAssignmentHandler()
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/assignments/"+validID+"/reassign", map[string]any{})
	r = withChiURLParam(r, "id", validID)

	h.Reassign(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorResponse(rec)
	assert.Contains(t, body["error"], "validation error")
}
