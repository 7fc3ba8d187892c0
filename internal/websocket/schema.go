package websocket

import "github.com/resumeiq/skilltest-backend/internal/quiz"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionSubmit   Action = "submit"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest is sent by the client to select an option on the current
// question.
type AnswerRequest struct {
	Action Action `json:"action"`
	Option string `json:"option"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventState  Event = "state"
	EventTick   Event = "tick"
	EventGraded Event = "graded"
	EventPong   Event = "pong"
)

// StateResponse carries a fresh session snapshot after a navigation or
// answer action, and once on connect.
type StateResponse struct {
	Event            Event             `json:"event"`
	Status           string            `json:"status"`
	CurrentIndex     int               `json:"current_index"`
	Total            int               `json:"total"`
	RemainingSeconds int               `json:"remaining_seconds"`
	Answers          map[string]string `json:"answers"`
}

// TickResponse is pushed once per countdown second.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// GradedResponse is pushed when the test is submitted, manually or by the
// clock reaching zero.
type GradedResponse struct {
	Event  Event        `json:"event"`
	Result *quiz.Result `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
