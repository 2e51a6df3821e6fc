package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"docportal/internal/domain"
	"docportal/internal/httputil"
)

func TestHandleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "validation",
			err:        &domain.ValidationError{Message: "feedback is required when rejecting a document"},
			wantStatus: http.StatusBadRequest,
			wantDetail: "feedback is required when rejecting a document",
		},
		{
			name:       "not found",
			err:        &domain.NotFoundError{Message: "document not found"},
			wantStatus: http.StatusNotFound,
			wantDetail: "document not found",
		},
		{
			name:       "forbidden",
			err:        &domain.ForbiddenError{Message: "document is outside your department"},
			wantStatus: http.StatusForbidden,
			wantDetail: "document is outside your department",
		},
		{
			name:       "invalid state",
			err:        &domain.InvalidStateError{Message: "document has already been approved"},
			wantStatus: http.StatusConflict,
			wantDetail: "document has already been approved",
		},
		{
			name:       "unknown errors stay opaque",
			err:        errors.New("pq: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("content type = %q, want problem+json", ct)
			}

			var problem httputil.ProblemDetail
			if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
				t.Fatalf("response is not valid JSON: %v", err)
			}
			if problem.Status != tt.wantStatus {
				t.Errorf("problem.status = %d, want %d", problem.Status, tt.wantStatus)
			}
			if problem.Detail != tt.wantDetail {
				t.Errorf("problem.detail = %q, want %q", problem.Detail, tt.wantDetail)
			}
		})
	}
}
