package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/resumeiq/skilltest-backend/internal/extractor"
	"github.com/resumeiq/skilltest-backend/internal/response"
	"github.com/resumeiq/skilltest-backend/internal/service"
)

// ResumeHandler handles resume upload and retrieval endpoints.
type ResumeHandler struct {
	resumeService *service.ResumeService
	authService   *service.AuthService
}

// NewResumeHandler creates a new ResumeHandler.
func NewResumeHandler(resumeService *service.ResumeService, authService *service.AuthService) *ResumeHandler {
	return &ResumeHandler{resumeService: resumeService, authService: authService}
}

// UploadResume godoc
// POST /api/v1/resumes
// Accepts a PDF upload, extracts its text and returns the stored resume
// together with a candidate token scoped to it.
func (h *ResumeHandler) UploadResume(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	resume, err := h.resumeService.ProcessUpload(c.Request.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, service.ErrFileTooLarge):
			response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		case errors.Is(err, extractor.ErrNoRecoverableText), errors.Is(err, extractor.ErrParseFailure):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrResumeNotReadable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	token, err := h.authService.GenerateCandidateToken(resume.ID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"resume": resume,
		"token":  token,
	})
}

// GetResume godoc
// GET /api/v1/resumes/:resume_id
// Returns the stored resume with its extracted text. Service-key protected:
// this is what the question-generation collaborator reads.
func (h *ResumeHandler) GetResume(c *gin.Context) {
	resumeID, err := uuid.Parse(c.Param("resume_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	resume, err := h.resumeService.GetResume(c.Request.Context(), resumeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, resume)
}
