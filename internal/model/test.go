package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/resumeiq/skilltest-backend/internal/quiz"
)

// AnswerRequest is the payload for selecting an option on the current question.
type AnswerRequest struct {
	Option string `json:"option" binding:"required"`
}

// TestState is the snapshot returned to the client so a reload can restore
// the question pointer, the answered map and the countdown.
type TestState struct {
	ResumeID         uuid.UUID          `json:"resume_id"`
	Status           quiz.SessionStatus `json:"status"`
	CurrentIndex     int                `json:"current_index"`
	Total            int                `json:"total"`
	RemainingSeconds int                `json:"remaining_seconds"`
	Answers          map[string]string  `json:"answers"`
}

// TestResult is the persisted form of a quiz.Result, one row per resume.
type TestResult struct {
	ID               uuid.UUID       `json:"id"`
	ResumeID         uuid.UUID       `json:"resume_id"`
	Score            int             `json:"score"`
	Total            int             `json:"total"`
	Percentage       float64         `json:"percentage"`
	Status           string          `json:"status"`
	TimeTakenSeconds int             `json:"time_taken_seconds"`
	Review           json.RawMessage `json:"review"`
	CreatedAt        time.Time       `json:"created_at"`
}
