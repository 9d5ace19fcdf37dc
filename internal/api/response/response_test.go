package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelcore/inehss/internal/core"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	payload := map[string]string{"hello": "world"}

	WriteJSON(w, http.StatusOK, payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "world", body["hello"])
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, "something went wrong")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "something went wrong", body["error"])
}

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: only staff can do that", core.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: bad status", core.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: assignment", core.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteServiceError(w, tc.err)
		assert.Equal(t, tc.status, w.Code, "error %q", tc.err)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.err.Error(), body["error"])
	}
}

func TestWriteStatus(t *testing.T) {
	w := httptest.NewRecorder()

	WriteStatus(w, "Assignment accepted")

	assert.Equal(t, http.StatusOK, w.Code)

	var body StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Assignment accepted", body.Status)
}

func TestWritePaginated(t *testing.T) {
	w := httptest.NewRecorder()

	WritePaginated(w, http.StatusOK, []string{"a", "b"}, "cursor-b", true)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items      []string `json:"items"`
		NextCursor string   `json:"next_cursor"`
		HasMore    bool     `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b"}, body.Items)
	assert.Equal(t, "cursor-b", body.NextCursor)
	assert.True(t, body.HasMore)
}

func TestWritePaginated_LastPageOmitsCursor(t *testing.T) {
	w := httptest.NewRecorder()

	WritePaginated(w, http.StatusOK, []string{"a"}, "", false)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body, "next_cursor")
	assert.Equal(t, false, body["has_more"])
}
