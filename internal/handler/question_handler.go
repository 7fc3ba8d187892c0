package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/resumeiq/skilltest-backend/internal/middleware"
	"github.com/resumeiq/skilltest-backend/internal/model"
	"github.com/resumeiq/skilltest-backend/internal/quiz"
	"github.com/resumeiq/skilltest-backend/internal/response"
	"github.com/resumeiq/skilltest-backend/internal/service"
	"github.com/resumeiq/skilltest-backend/internal/validator"
)

// QuestionHandler handles question ingestion and paper retrieval.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// IngestQuestions godoc
// PUT /api/v1/resumes/:resume_id/questions
// Replaces the question set generated for a resume. Service-key protected.
func (h *QuestionHandler) IngestQuestions(c *gin.Context) {
	resumeID, err := uuid.Parse(c.Param("resume_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.IngestQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	count, err := h.questionService.IngestQuestions(c.Request.Context(), resumeID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResumeNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, quiz.ErrEmptyQuestionSet),
			errors.Is(err, quiz.ErrTooFewOptions),
			errors.Is(err, quiz.ErrAnswerNotOption):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidQuestions)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"ingested": count})
}

// GetPaper godoc
// GET /api/v1/resumes/:resume_id/questions
// Returns the candidate-facing paper: questions and options, never answers.
func (h *QuestionHandler) GetPaper(c *gin.Context) {
	resumeID := middleware.GetResumeID(c)

	paper, err := h.questionService.GetPaper(c.Request.Context(), resumeID)
	if err != nil {
		if errors.Is(err, quiz.ErrEmptyQuestionSet) {
			response.Fail(c, http.StatusNotFound, response.ErrNoQuestions)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, paper)
}
