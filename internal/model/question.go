package model

import (
	"github.com/google/uuid"
)

// IngestQuestion is one generated MCQ as pushed by the analysis collaborator.
// The shape is validated here, at the ingestion boundary, instead of being
// defaulted field-by-field at render time.
type IngestQuestion struct {
	// ID is optional; the service mints one when the generator omits it.
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question_text" binding:"required,min=1,max=2000"`
	Options      []string  `json:"options" binding:"required,min=2,dive,required"`
	Answer       string    `json:"answer" binding:"required"`
}

// IngestQuestionsRequest is the payload for replacing a resume's question set.
type IngestQuestionsRequest struct {
	Questions []IngestQuestion `json:"questions" binding:"required,min=1,dive"`
}

// PaperQuestion is a question as shown to the candidate. The correct answer
// is stripped before the payload ever leaves the service.
type PaperQuestion struct {
	ID           uuid.UUID `json:"id"`
	QuestionText string    `json:"question_text"`
	Options      []string  `json:"options"`
}

// QuestionPaper is the cached candidate-facing payload for one resume.
type QuestionPaper struct {
	ResumeID        uuid.UUID       `json:"resume_id"`
	DurationSeconds int             `json:"duration_seconds"`
	Questions       []PaperQuestion `json:"questions"`
}
