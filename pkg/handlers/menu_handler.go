package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/LuisRz1/pluginProvcalApp/pkg/apperrors"
	"github.com/LuisRz1/pluginProvcalApp/pkg/services"
	"github.com/LuisRz1/pluginProvcalApp/pkg/workbook"
)

// maxUploadBytes caps workbook uploads at 20 MiB.
const maxUploadBytes = 20 << 20

// MenuHandler handles menu ingestion, queries and the change workflow.
type MenuHandler struct {
	ingestion services.MenuIngestionService
	query     services.MenuQueryService
	changes   services.ChangeWorkflowService
	logger    *zap.Logger
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(ingestion services.MenuIngestionService, query services.MenuQueryService, changes services.ChangeWorkflowService, logger *zap.Logger) *MenuHandler {
	return &MenuHandler{
		ingestion: ingestion,
		query:     query,
		changes:   changes,
		logger:    logger,
	}
}

// RegisterRoutes registers the menu handler's routes on the given mux.
func (h *MenuHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/menus/{year}/{month}/import", h.ImportMenu)
	mux.HandleFunc("POST /api/menus/{year}/{month}/preview", h.PreviewMenu)
	mux.HandleFunc("GET /api/menus/{year}/{month}", h.GetMenu)
	mux.HandleFunc("GET /api/menus/{year}/{month}/export", h.ExportMenu)
	mux.HandleFunc("GET /api/menus/{year}/{month}/changes", h.GetChangeHistory)
	mux.HandleFunc("GET /api/menus/days/{date}/meals/{meal_type}", h.GetMeal)
	mux.HandleFunc("POST /api/menu-changes", h.ProposeChanges)
	mux.HandleFunc("POST /api/menu-changes/{change_id}/review", h.ReviewChange)
}

// ImportMenu handles POST /api/menus/{year}/{month}/import
func (h *MenuHandler) ImportMenu(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.parseYearMonth(w, r)
	if !ok {
		return
	}

	filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	force := r.URL.Query().Get("force") == "true"

	result, err := h.ingestion.Ingest(r.Context(), filename, data, services.IngestOptions{
		Year:  year,
		Month: month,
		Force: force,
	})
	if err != nil {
		h.writeError(w, err, "import_failed")
		return
	}

	status := http.StatusOK
	if result.Status == services.IngestStatusConflict {
		status = http.StatusConflict
	}
	if err := WriteJSON(w, status, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// PreviewMenu handles POST /api/menus/{year}/{month}/preview
func (h *MenuHandler) PreviewMenu(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.parseYearMonth(w, r)
	if !ok {
		return
	}

	filename, data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	preview, err := h.ingestion.Preview(r.Context(), filename, data, year, month)
	if err != nil {
		h.writeError(w, err, "preview_failed")
		return
	}

	if err := WriteJSON(w, http.StatusOK, preview); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetMenu handles GET /api/menus/{year}/{month}
func (h *MenuHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.parseYearMonth(w, r)
	if !ok {
		return
	}

	view, err := h.query.GetMonthlyMenu(r.Context(), year, month)
	if err != nil {
		h.writeError(w, err, "get_menu_failed")
		return
	}

	if err := WriteJSON(w, http.StatusOK, view); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ExportMenu handles GET /api/menus/{year}/{month}/export
func (h *MenuHandler) ExportMenu(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.parseYearMonth(w, r)
	if !ok {
		return
	}

	data, filename, err := h.query.ExportMonthlyMenu(r.Context(), year, month)
	if err != nil {
		h.writeError(w, err, "export_failed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write export", zap.Error(err))
	}
}

// GetChangeHistory handles GET /api/menus/{year}/{month}/changes
func (h *MenuHandler) GetChangeHistory(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.parseYearMonth(w, r)
	if !ok {
		return
	}

	history, err := h.changes.History(r.Context(), year, month)
	if err != nil {
		h.writeError(w, err, "change_history_failed")
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"changes": history}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// GetMeal handles GET /api/menus/days/{date}/meals/{meal_type}
func (h *MenuHandler) GetMeal(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", r.PathValue("date"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}

	meal, err := h.query.GetMealForDay(r.Context(), date, r.PathValue("meal_type"))
	if err != nil {
		h.writeError(w, err, "get_meal_failed")
		return
	}

	if err := WriteJSON(w, http.StatusOK, meal); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type proposeChangeItem struct {
	DailyMenuID uuid.UUID `json:"daily_menu_id"`
	DayDate     string    `json:"day_date"`
	MealType    string    `json:"meal_type"`
	NewValue    string    `json:"new_value"`
	Reason      string    `json:"reason"`
	Emergency   bool      `json:"emergency"`
}

type proposeChangesRequest struct {
	Changes     []proposeChangeItem `json:"changes"`
	RequestedBy uuid.UUID           `json:"requested_by"`
}

// ProposeChanges handles POST /api/menu-changes
func (h *MenuHandler) ProposeChanges(w http.ResponseWriter, r *http.Request) {
	var req proposeChangesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.RequestedBy == uuid.Nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "requested_by is required")
		return
	}

	proposals := make([]services.ProposedChange, 0, len(req.Changes))
	for _, item := range req.Changes {
		date, err := time.Parse("2006-01-02", item.DayDate)
		if err != nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request",
				fmt.Sprintf("day_date %q must be YYYY-MM-DD", item.DayDate))
			return
		}
		proposals = append(proposals, services.ProposedChange{
			DailyMenuID: item.DailyMenuID,
			DayDate:     date,
			MealType:    item.MealType,
			NewValue:    item.NewValue,
			Reason:      item.Reason,
			Emergency:   item.Emergency,
		})
	}

	result, err := h.changes.Propose(r.Context(), proposals, req.RequestedBy)
	if err != nil {
		h.writeError(w, err, "propose_failed")
		return
	}

	if err := WriteJSON(w, http.StatusCreated, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type reviewChangeRequest struct {
	Decision  string    `json:"decision"` // "approve" or "reject"
	DecidedBy uuid.UUID `json:"decided_by"`
	Notes     *string   `json:"notes,omitempty"`
}

// ReviewChange handles POST /api/menu-changes/{change_id}/review
func (h *MenuHandler) ReviewChange(w http.ResponseWriter, r *http.Request) {
	changeID, err := uuid.Parse(r.PathValue("change_id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_change_id", "change_id must be a UUID")
		return
	}

	var req reviewChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Decision != "approve" && req.Decision != "reject" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "decision must be approve or reject")
		return
	}
	if req.DecidedBy == uuid.Nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "decided_by is required")
		return
	}

	change, err := h.changes.Review(r.Context(), changeID, req.Decision == "approve", req.DecidedBy, req.Notes)
	if err != nil {
		h.writeError(w, err, "review_failed")
		return
	}

	if err := WriteJSON(w, http.StatusOK, change); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *MenuHandler) parseYearMonth(w http.ResponseWriter, r *http.Request) (int, int, bool) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 2000 || year > 2100 {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_year", "year must be a four-digit year")
		return 0, 0, false
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < 1 || month > 12 {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_month", "month must be 1-12")
		return 0, 0, false
	}
	return year, month, true
}

// readUpload extracts the workbook from a multipart form field named "file".
func (h *MenuHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "expected multipart form with a file field")
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "file field is required")
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "failed to read uploaded file")
		return "", nil, false
	}

	return header.Filename, data, true
}

func (h *MenuHandler) writeError(w http.ResponseWriter, err error, fallbackCode string) {
	var layoutErr *workbook.LayoutError
	switch {
	case errors.As(err, &layoutErr):
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_layout", err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		_ = ErrorResponse(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, apperrors.ErrInvalidState):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "invalid_state", err.Error())
	case errors.Is(err, workbook.ErrUnsupportedExtension):
		_ = ErrorResponse(w, http.StatusBadRequest, "unsupported_file", err.Error())
	default:
		h.logger.Error("Request failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}
