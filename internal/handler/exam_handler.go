package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edulab/assess-backend/internal/access"
	"github.com/edulab/assess-backend/internal/assembly"
	"github.com/edulab/assess-backend/internal/config"
	"github.com/edulab/assess-backend/internal/middleware"
	"github.com/edulab/assess-backend/internal/model"
	"github.com/edulab/assess-backend/internal/response"
	"github.com/edulab/assess-backend/internal/service"
	"github.com/edulab/assess-backend/internal/validator"
)

// ExamHandler handles exam authoring and taking endpoints.
type ExamHandler struct {
	examService       *service.ExamService
	submissionService *service.SubmissionService
	cfg               *config.Config
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, submissionService *service.SubmissionService, cfg *config.Config) *ExamHandler {
	return &ExamHandler{
		examService:       examService,
		submissionService: submissionService,
		cfg:               cfg,
	}
}

// CreateExam godoc
// POST /api/v1/exams
// Creates a new exam, optionally with manually authored questions.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuestion) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// ListExams godoc
// GET /api/v1/exams?course_id=N
// Lists a course's exams without question snapshots.
func (h *ExamHandler) ListExams(c *gin.Context) {
	courseID, err := strconv.Atoi(c.Query("course_id"))
	if err != nil || courseID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exams, err := h.examService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// GetExam godoc
// GET /api/v1/exams/:exam_id
// Serves the student-facing exam payload (no answer keys). The deadline and
// lockdown-browser gates run here; the first timed fetch starts the attempt
// clock.
func (h *ExamHandler) GetExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	payload, err := h.submissionService.TakeExam(c.Request.Context(), examID, claims.UserID,
		c.GetHeader("User-Agent"), h.cfg.SebMarker, time.Now())
	if err != nil {
		h.failAttempt(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": payload})
}

// SubmitExam godoc
// POST /api/v1/exams/:exam_id/submit
// Grades the caller's answers and records the result. Resubmission
// overwrites the earlier score.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, summary, err := h.submissionService.Submit(c.Request.Context(), examID, claims.UserID,
		c.GetHeader("User-Agent"), h.cfg.SebMarker, &req, time.Now())
	if err != nil {
		h.failAttempt(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result, "summary": summary})
}

// AddQuestions godoc
// POST /api/v1/exams/:exam_id/questions
// Duplicates bank questions into the exam, manually or by random sample.
func (h *ExamHandler) AddQuestions(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AddQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	added, err := h.examService.AddQuestions(c.Request.Context(), examID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
		case errors.Is(err, service.ErrQuestionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
		case errors.Is(err, assembly.ErrNoQuestionsSelected):
			response.Fail(c, http.StatusBadRequest, response.ErrNoQuestionsSelected)
		case errors.Is(err, assembly.ErrInsufficientBank):
			response.Fail(c, http.StatusBadRequest, response.ErrInsufficientBank)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"added": added})
}

// GetResults godoc
// GET /api/v1/exams/:exam_id/results
// Teacher view of every recorded result for an exam.
func (h *ExamHandler) GetResults(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	results, err := h.submissionService.ListResults(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if results == nil {
		results = []model.ExamResult{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// GetMyResult godoc
// GET /api/v1/exams/:exam_id/results/me
// The caller's own recorded result.
func (h *ExamHandler) GetMyResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.submissionService.GetResult(c.Request.Context(), examID, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrResultNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// GetSebConfig godoc
// GET /api/v1/exams/:exam_id/seb-config
// Downloads the Safe Exam Browser configuration file for a SEB-gated exam.
func (h *ExamHandler) GetSebConfig(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	cfg, err := h.examService.SebConfig(c.Request.Context(), examID, h.cfg.FrontendURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
		case errors.Is(err, service.ErrSebNotRequired):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "exam_"+examID.String()+".seb"))
	c.Data(http.StatusOK, "application/seb", cfg)
}

// failAttempt maps attempt-gate failures onto their wire signals.
func (h *ExamHandler) failAttempt(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
	case errors.Is(err, access.ErrDeadlinePassed):
		response.Fail(c, http.StatusForbidden, response.ErrDeadlinePassed)
	case errors.Is(err, access.ErrSebRequired):
		response.Fail(c, http.StatusForbidden, response.ErrRequiresSeb)
	case errors.Is(err, access.ErrTimeExpired):
		response.Fail(c, http.StatusForbidden, response.ErrAttemptExpired)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
