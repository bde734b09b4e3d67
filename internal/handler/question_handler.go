package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edulab/assess-backend/internal/model"
	"github.com/edulab/assess-backend/internal/response"
	"github.com/edulab/assess-backend/internal/service"
	"github.com/edulab/assess-backend/internal/validator"
)

// QuestionHandler handles question bank endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// CreateQuestion godoc
// POST /api/v1/courses/:course_id/questions
// Adds a reusable question to the course bank.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	courseID, err := strconv.Atoi(c.Param("course_id"))
	if err != nil || courseID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var payload model.QuestionPayload
	if fields := validator.Bind(c, &payload); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionService.CreateBankQuestion(c.Request.Context(), courseID, &payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuestion) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": q})
}

// ListQuestions godoc
// GET /api/v1/courses/:course_id/questions?type=MULTIPLE_CHOICE
// Lists the course bank, optionally filtered by question type.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	courseID, err := strconv.Atoi(c.Param("course_id"))
	if err != nil || courseID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	typeFilter := model.QuestionType(c.Query("type"))
	questions, err := h.questionService.ListBank(c.Request.Context(), courseID, typeFilter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuestion) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if questions == nil {
		questions = []model.Question{}
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// DeleteQuestion godoc
// DELETE /api/v1/courses/:course_id/questions/:question_id
// Removes a bank question. Exam snapshots copied from it are unaffected.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, err := uuid.Parse(c.Param("question_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionService.DeleteBankQuestion(c.Request.Context(), questionID); err != nil {
		if errors.Is(err, service.ErrBankQuestionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
