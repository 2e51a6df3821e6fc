package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"docportal/internal/domain/models"
	"docportal/internal/httputil"
	"docportal/internal/service/review"
)

// ReviewHandler handles document review HTTP requests.
// Follows Clean Architecture: handlers only communicate with services, never repositories
type ReviewHandler struct {
	workflow *review.Workflow
	logger   *slog.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(workflow *review.Workflow, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		workflow: workflow,
		logger:   logger,
	}
}

type reviewRequest struct {
	Feedback *string `json:"feedback,omitempty"`
}

type bulkApproveRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

type bulkApproveResponse struct {
	Approved []models.Document `json:"approved"`
	Skipped  int               `json:"skipped"`
}

// Approve approves a pending document
// POST /api/documents/{id}/approve
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	// Feedback is optional on approval, so an empty body is fine.
	var req reviewRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.workflow.Approve(r.Context(), r.PathValue("id"), reviewerID, req.Feedback)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Reject rejects a pending document. Feedback is mandatory.
// POST /api/documents/{id}/reject
func (h *ReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	feedback := ""
	if req.Feedback != nil {
		feedback = *req.Feedback
	}

	doc, err := h.workflow.Reject(r.Context(), r.PathValue("id"), reviewerID, feedback)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// BulkApprove approves every pending document in the request set
// POST /api/documents/bulk-approve
func (h *ReviewHandler) BulkApprove(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req bulkApproveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.DocumentIDs) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "document_ids must not be empty")
		return
	}

	approved, err := h.workflow.BulkApprove(r.Context(), req.DocumentIDs, reviewerID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, bulkApproveResponse{
		Approved: approved,
		Skipped:  len(req.DocumentIDs) - len(approved),
	})
}

// ListDocuments lists documents within the reviewer's department scope
// GET /api/documents?status=&category_id=&submitted_by=
func (h *ReviewHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var filter models.DocumentFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.DocumentStatus(s)
		if !status.Valid() {
			httputil.RespondError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		filter.Status = &status
	}
	if v := r.URL.Query().Get("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := r.URL.Query().Get("submitted_by"); v != "" {
		filter.SubmittedBy = &v
	}

	docs, err := h.workflow.ListDocuments(r.Context(), reviewerID, filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}
