package quiz

import "errors"

// Session state machine errors.
var (
	ErrSessionSubmitted = errors.New("session is already submitted")
	ErrInvalidDuration  = errors.New("session duration must be positive")
	ErrUnknownOption    = errors.New("option is not part of the current question")
)

// SessionStatus enumerates the states of a test session. A Session is Active
// from construction; NewSession is the Loading -> Active transition and fails
// instead of producing a degenerate session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "ACTIVE"
	SessionSubmitted SessionStatus = "SUBMITTED"
)

// Session is the in-memory state of one timed test: the ordered question set,
// the current question pointer, the answer map and the countdown.
//
// Session is not safe for concurrent use. The session manager serializes all
// access; the countdown ticker and HTTP operations never touch a Session
// concurrently.
type Session struct {
	questions    []Question
	answers      map[string]string
	current      int
	totalSeconds int
	remaining    int
	status       SessionStatus
	policy       ScorePolicy
	result       *Result
}

// NewSession initializes an Active session over the given questions with a
// full time budget. The question set must be non-empty (scoring divides by
// its size) and the duration positive.
func NewSession(questions []Question, totalSeconds int, policy ScorePolicy) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}
	if totalSeconds <= 0 {
		return nil, ErrInvalidDuration
	}

	return &Session{
		questions:    questions,
		answers:      make(map[string]string, len(questions)),
		current:      0,
		totalSeconds: totalSeconds,
		remaining:    totalSeconds,
		status:       SessionActive,
		policy:       policy,
	}, nil
}

// SelectOption records the candidate's answer for the current question,
// overwriting any prior selection (last write wins). The option must be one
// of the current question's options. The question pointer does not move.
func (s *Session) SelectOption(option string) error {
	if s.status != SessionActive {
		return ErrSessionSubmitted
	}

	q := s.questions[s.current]
	if !containsOption(q.Options, option) {
		return ErrUnknownOption
	}

	s.answers[q.ID.String()] = option
	return nil
}

// Next advances the question pointer. At the last question it is a no-op;
// the pointer never leaves [0, N-1].
func (s *Session) Next() error {
	if s.status != SessionActive {
		return ErrSessionSubmitted
	}
	if s.current < len(s.questions)-1 {
		s.current++
	}
	return nil
}

// Previous moves the question pointer back. At the first question it is a
// no-op.
func (s *Session) Previous() error {
	if s.status != SessionActive {
		return ErrSessionSubmitted
	}
	if s.current > 0 {
		s.current--
	}
	return nil
}

// Tick consumes one second of the budget, flooring at zero. The tick that
// first reaches zero performs the automatic one-time submission and returns
// its Result; every other call returns nil. Ticks after submission are no-ops,
// so a late ticker fire can never resubmit.
func (s *Session) Tick() (remaining int, result *Result) {
	if s.status != SessionActive || s.remaining == 0 {
		return s.remaining, nil
	}

	s.remaining--
	if s.remaining == 0 {
		return 0, s.Submit()
	}
	return s.remaining, nil
}

// Submit freezes the session and computes the scored result. It is
// idempotent: repeated calls return the result computed on the first call,
// which makes the race between a manual finish and the timeout firing in the
// same second harmless.
func (s *Session) Submit() *Result {
	if s.status == SessionSubmitted {
		return s.result
	}

	s.status = SessionSubmitted
	s.result = score(s.questions, s.answers, s.totalSeconds-s.remaining, s.policy)
	return s.result
}

// Status returns the session state.
func (s *Session) Status() SessionStatus { return s.status }

// CurrentIndex returns the zero-based index of the current question.
func (s *Session) CurrentIndex() int { return s.current }

// CurrentQuestion returns the question the pointer is on.
func (s *Session) CurrentQuestion() Question { return s.questions[s.current] }

// Total returns the number of questions in the session.
func (s *Session) Total() int { return len(s.questions) }

// Remaining returns the seconds left on the countdown.
func (s *Session) Remaining() int { return s.remaining }

// Answers returns a copy of the answer map (question ID -> selected option).
// Unanswered questions are absent, never empty strings.
func (s *Session) Answers() map[string]string {
	out := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Result returns the scored result, or nil while the session is active.
func (s *Session) Result() *Result { return s.result }
