package handler

import (
	"log/slog"
	"net/http"

	"docportal/internal/domain/repositories"
	"docportal/internal/httputil"
	"docportal/internal/service/review"
	"docportal/internal/service/timeliness"
)

// RatingsHandler serves the computed timeliness reports.
type RatingsHandler struct {
	reporter    *timeliness.Reporter
	profileRepo repositories.ProfileRepository
	logger      *slog.Logger
}

// NewRatingsHandler creates a new ratings handler
func NewRatingsHandler(
	reporter *timeliness.Reporter,
	profileRepo repositories.ProfileRepository,
	logger *slog.Logger,
) *RatingsHandler {
	return &RatingsHandler{
		reporter:    reporter,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// ForDepartment reports timeliness for every submission the caller's
// department scope can see. Admin only.
// GET /api/ratings
func (h *RatingsHandler) ForDepartment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.profileRepo.GetByID(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	scope, err := review.ScopeForAdmin(profile)
	if err != nil {
		handleError(w, err)
		return
	}

	departmentID := scope.DepartmentID()
	if departmentID == nil {
		// No department assignment: the scope can see nothing.
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"records": []timeliness.Record{},
			"count":   0,
		})
		return
	}

	records, err := h.reporter.ForDepartment(r.Context(), *departmentID)
	if err != nil {
		h.logger.Error("department timeliness report failed", "department_id", *departmentID, "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// ForSelf reports timeliness for the caller's own submissions.
// GET /api/ratings/me
func (h *RatingsHandler) ForSelf(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	records, err := h.reporter.ForFaculty(r.Context(), userID)
	if err != nil {
		h.logger.Error("faculty timeliness report failed", "user_id", userID, "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}
