package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	mw "github.com/sentinelcore/inehss/internal/api/middleware"
)

// newRequest creates a new HTTP request with an optional JSON body.
func newRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}

// newRequestRaw creates a new HTTP request with a raw string body.
func newRequestRaw(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// withChiURLParam adds a chi URL parameter to the request context.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeErrorResponse parses the JSON error response body into a map.
func decodeErrorResponse(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	json.Unmarshal(rec.Body.Bytes(), &body)
	return body
}

// withStaff injects a staff identity into the request context.
func withStaff(r *http.Request) *http.Request {
	identity := &mw.Identity{UserID: "test-staff-1", Username: "dispatcher", IsStaff: true}
	ctx := context.WithValue(r.Context(), mw.IdentityKey, identity)
	return r.WithContext(ctx)
}

// withOfficer injects a non-staff officer identity into the request context.
func withOfficer(r *http.Request, officerID string) *http.Request {
	identity := &mw.Identity{UserID: officerID, Username: "officer", IsStaff: false}
	ctx := context.WithValue(r.Context(), mw.IdentityKey, identity)
	return r.WithContext(ctx)
}

const validID = "550e8400-e29b-41d4-a716-446655440000"
const validID2 = "6f1c1a52-9f0e-4a43-9a5b-2f9a8a1f3f10"
