package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/resumeiq/skilltest-backend/internal/middleware"
	"github.com/resumeiq/skilltest-backend/internal/model"
	"github.com/resumeiq/skilltest-backend/internal/quiz"
	"github.com/resumeiq/skilltest-backend/internal/response"
	"github.com/resumeiq/skilltest-backend/internal/service"
	"github.com/resumeiq/skilltest-backend/internal/validator"
)

// TestHandler handles the candidate's timed test lifecycle over REST.
type TestHandler struct {
	sessionService *service.SessionService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(sessionService *service.SessionService) *TestHandler {
	return &TestHandler{sessionService: sessionService}
}

// StartTest godoc
// POST /api/v1/tests/:resume_id/start
// Starts (or rejoins) the timed session for the candidate's question set.
func (h *TestHandler) StartTest(c *gin.Context) {
	resumeID := middleware.GetResumeID(c)

	state, err := h.sessionService.Start(c.Request.Context(), resumeID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// GetState godoc
// GET /api/v1/tests/:resume_id/state
// Returns the live session snapshot so a reload can restore the client.
func (h *TestHandler) GetState(c *gin.Context) {
	state, err := h.sessionService.State(middleware.GetResumeID(c))
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// SelectAnswer godoc
// POST /api/v1/tests/:resume_id/answer
// Records an option for the current question; re-answering overwrites.
func (h *TestHandler) SelectAnswer(c *gin.Context) {
	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
		return
	}

	resumeID := middleware.GetResumeID(c)
	if err := h.sessionService.SelectAnswer(resumeID, req.Option); err != nil {
		h.failSession(c, err)
		return
	}

	state, err := h.sessionService.State(resumeID)
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// NextQuestion godoc
// POST /api/v1/tests/:resume_id/next
func (h *TestHandler) NextQuestion(c *gin.Context) {
	state, err := h.sessionService.Next(middleware.GetResumeID(c))
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// PreviousQuestion godoc
// POST /api/v1/tests/:resume_id/previous
func (h *TestHandler) PreviousQuestion(c *gin.Context) {
	state, err := h.sessionService.Previous(middleware.GetResumeID(c))
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// SubmitTest godoc
// POST /api/v1/tests/:resume_id/submit
// Finishes the session and returns the graded result. Idempotent.
func (h *TestHandler) SubmitTest(c *gin.Context) {
	result, err := h.sessionService.Submit(middleware.GetResumeID(c))
	if err != nil {
		h.failSession(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetResult godoc
// GET /api/v1/tests/:resume_id/result
// Returns the graded result, surviving server restarts via cache and DB.
func (h *TestHandler) GetResult(c *gin.Context) {
	result, err := h.sessionService.GetResult(c.Request.Context(), middleware.GetResumeID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResultNotReady):
			response.Fail(c, http.StatusConflict, response.ErrResultNotReady)
		case errors.Is(err, service.ErrResultNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrTestNotStarted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *TestHandler) failSession(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTestNotStarted):
		response.Fail(c, http.StatusNotFound, response.ErrTestNotStarted)
	case errors.Is(err, service.ErrTestSubmitted):
		response.Fail(c, http.StatusConflict, response.ErrTestSubmitted)
	case errors.Is(err, quiz.ErrUnknownOption):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrUnknownOption)
	case errors.Is(err, quiz.ErrEmptyQuestionSet):
		response.Fail(c, http.StatusNotFound, response.ErrNoQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
