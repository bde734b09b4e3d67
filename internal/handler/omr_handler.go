package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edulab/assess-backend/internal/config"
	"github.com/edulab/assess-backend/internal/response"
	"github.com/edulab/assess-backend/internal/service"
	"github.com/edulab/assess-backend/internal/validator"
)

// OmrHandler handles optical answer sheet endpoints.
type OmrHandler struct {
	omrService *service.OmrService
	cfg        *config.Config
}

// NewOmrHandler creates a new OmrHandler.
func NewOmrHandler(omrService *service.OmrService, cfg *config.Config) *OmrHandler {
	return &OmrHandler{omrService: omrService, cfg: cfg}
}

// Preflight godoc
// POST /api/v1/omr/preflight
// Accepts a multipart "image" upload and checks whether it plausibly shows
// an answer form. Detection itself happens on the client; this is the
// server-side sanity gate.
func (h *OmrHandler) Preflight(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	if fileHeader.Size > h.cfg.MaxScanBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	defer file.Close()

	stats, err := h.omrService.Preflight(c.Request.Context(), file)
	if err != nil {
		if errors.Is(err, service.ErrFormNotDetected) {
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrFormNotDetected)
			return
		}
		// Not decodable as an image.
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrUnsupportedFile)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"form_detected": true, "stats": stats})
}

// reconcileRequest carries client-detected bubble letters for one sheet.
// UserID names the student whose result should be recorded; nil means a
// dry run that only reports the comparison.
type reconcileRequest struct {
	ExamID          uuid.UUID `json:"exam_id" binding:"required"`
	DetectedAnswers []string  `json:"detected_answers" binding:"required"`
	UserID          *int      `json:"user_id" binding:"omitempty,min=1"`
}

// Reconcile godoc
// POST /api/v1/omr/reconcile
// Scores detected bubble letters against the exam's multiple-choice answer
// key and optionally records the result for a student.
func (h *OmrHandler) Reconcile(c *gin.Context) {
	var req reconcileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.omrService.Reconcile(c.Request.Context(), req.ExamID, req.DetectedAnswers, req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reconciliation": outcome})
}
