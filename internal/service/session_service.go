package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/resumeiq/skilltest-backend/internal/config"
	"github.com/resumeiq/skilltest-backend/internal/model"
	"github.com/resumeiq/skilltest-backend/internal/quiz"
	"github.com/rs/zerolog"
)

// Session lifecycle errors.
var (
	ErrTestNotStarted = errors.New("no active test session")
	ErrTestSubmitted  = errors.New("test already submitted")
	ErrResultNotReady = errors.New("test still in progress")
)

// TestEventType enumerates events pushed to session watchers.
type TestEventType string

const (
	EventTick   TestEventType = "tick"
	EventGraded TestEventType = "graded"
)

// TestEvent is a countdown or grading notification for WebSocket streaming.
type TestEvent struct {
	Type             TestEventType `json:"event"`
	RemainingSeconds int           `json:"remaining_seconds"`
	Result           *quiz.Result  `json:"result,omitempty"`
}

// questionSource supplies the graded question set for a resume.
// *QuestionService satisfies it.
type questionSource interface {
	GetQuestions(ctx context.Context, resumeID uuid.UUID) ([]quiz.Question, error)
}

// resultSink receives graded results and serves lookups for sessions no
// longer resident in memory. *ResultService satisfies it.
type resultSink interface {
	Publish(ctx context.Context, resumeID uuid.UUID, result *quiz.Result)
	Find(ctx context.Context, resumeID uuid.UUID) (*quiz.Result, error)
}

// testRunner pairs one live quiz.Session with the goroutine that owns its
// countdown ticker. All access to the session goes through mu: the ticker
// and HTTP handlers never touch the state machine concurrently, which is
// what keeps the auto-submit at-most-once.
type testRunner struct {
	mu       sync.Mutex
	session  *quiz.Session
	done     chan struct{}
	stopOnce sync.Once
	gradOnce sync.Once
	watchers map[int]chan TestEvent
	nextID   int
}

// stop disarms the countdown. Safe to call from any exit path, any number
// of times.
func (r *testRunner) stop() {
	r.stopOnce.Do(func() { close(r.done) })
}

func (r *testRunner) broadcast(ev TestEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.watchers {
		select {
		case ch <- ev:
		default: // Slow watcher: drop the event rather than stall the ticker.
		}
	}
}

// SessionService manages live test sessions, one countdown runner per
// resume.
type SessionService struct {
	mu      sync.Mutex
	runners map[uuid.UUID]*testRunner

	questions questionSource
	results   resultSink
	cfg       *config.Config
	log       zerolog.Logger

	// tickInterval is one second in production; tests shorten it.
	tickInterval time.Duration
}

// NewSessionService creates a new SessionService.
func NewSessionService(questions questionSource, results resultSink, cfg *config.Config, log zerolog.Logger) *SessionService {
	return &SessionService{
		runners:      make(map[uuid.UUID]*testRunner),
		questions:    questions,
		results:      results,
		cfg:          cfg,
		log:          log.With().Str("component", "session_service").Logger(),
		tickInterval: time.Second,
	}
}

func (m *SessionService) policy() quiz.ScorePolicy {
	return quiz.ScorePolicy{
		PointsPerCorrect: m.cfg.PointsPerCorrect,
		FailBelow:        m.cfg.FailBelowScore,
		ExcellentAt:      m.cfg.ExcellentScore,
	}
}

// Start begins a timed session over the resume's ingested questions. Calling
// it again while the session is active is idempotent and returns the current
// state; after submission it fails with ErrTestSubmitted since there is no
// transition back out of the submitted state.
func (m *SessionService) Start(ctx context.Context, resumeID uuid.UUID) (*model.TestState, error) {
	m.mu.Lock()
	if r, ok := m.runners[resumeID]; ok {
		m.mu.Unlock()
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.session.Status() == quiz.SessionSubmitted {
			return nil, ErrTestSubmitted
		}
		return snapshotLocked(resumeID, r.session), nil
	}
	m.mu.Unlock()

	questions, err := m.questions.GetQuestions(ctx, resumeID)
	if err != nil {
		return nil, err
	}

	session, err := quiz.NewSession(questions, m.cfg.TestDurationSeconds, m.policy())
	if err != nil {
		return nil, err
	}

	r := &testRunner{
		session:  session,
		done:     make(chan struct{}),
		watchers: make(map[int]chan TestEvent),
	}

	m.mu.Lock()
	if existing, ok := m.runners[resumeID]; ok {
		// Lost a concurrent start race; reuse the winner.
		m.mu.Unlock()
		existing.mu.Lock()
		defer existing.mu.Unlock()
		return snapshotLocked(resumeID, existing.session), nil
	}
	m.runners[resumeID] = r
	m.mu.Unlock()

	go m.runCountdown(resumeID, r)

	m.log.Info().
		Str("resume_id", resumeID.String()).
		Int("questions", session.Total()).
		Int("duration_seconds", m.cfg.TestDurationSeconds).
		Msg("Test session started")

	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshotLocked(resumeID, r.session), nil
}

// State returns a snapshot of the live session.
func (m *SessionService) State(resumeID uuid.UUID) (*model.TestState, error) {
	r, err := m.runner(resumeID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshotLocked(resumeID, r.session), nil
}

// SelectAnswer records an option for the current question.
func (m *SessionService) SelectAnswer(resumeID uuid.UUID, option string) error {
	r, err := m.runner(resumeID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.session.SelectOption(option); err != nil {
		return mapSessionErr(err)
	}
	return nil
}

// Next advances the question pointer (no-op at the last question).
func (m *SessionService) Next(resumeID uuid.UUID) (*model.TestState, error) {
	return m.navigate(resumeID, (*quiz.Session).Next)
}

// Previous moves the question pointer back (no-op at the first question).
func (m *SessionService) Previous(resumeID uuid.UUID) (*model.TestState, error) {
	return m.navigate(resumeID, (*quiz.Session).Previous)
}

func (m *SessionService) navigate(resumeID uuid.UUID, move func(*quiz.Session) error) (*model.TestState, error) {
	r, err := m.runner(resumeID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := move(r.session); err != nil {
		return nil, mapSessionErr(err)
	}
	return snapshotLocked(resumeID, r.session), nil
}

// Submit finishes the session and returns the scored result. Idempotent: a
// second call, or a manual finish racing the timeout, returns the result
// computed first.
func (m *SessionService) Submit(resumeID uuid.UUID) (*quiz.Result, error) {
	r, err := m.runner(resumeID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	result := r.session.Submit()
	r.mu.Unlock()

	m.finalize(resumeID, r, result)
	return result, nil
}

// Watch subscribes to the session's tick and graded events. The returned
// cancel func must be called when the consumer goes away.
func (m *SessionService) Watch(resumeID uuid.UUID) (<-chan TestEvent, func(), error) {
	r, err := m.runner(resumeID)
	if err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	ch := make(chan TestEvent, 8)
	r.watchers[id] = ch
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		delete(r.watchers, id)
		r.mu.Unlock()
	}
	return ch, cancel, nil
}

// GetResult returns the scored result for a resume: from the live session if
// one is resident, otherwise through the result store.
func (m *SessionService) GetResult(ctx context.Context, resumeID uuid.UUID) (*quiz.Result, error) {
	if r, err := m.runner(resumeID); err == nil {
		r.mu.Lock()
		result := r.session.Result()
		r.mu.Unlock()
		if result != nil {
			return result, nil
		}
		return nil, ErrResultNotReady
	}
	return m.results.Find(ctx, resumeID)
}

// Shutdown disarms every live countdown. Active sessions are abandoned, not
// submitted; their state is lost with the process.
func (m *SessionService) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runners {
		r.stop()
	}
}

// ─── Countdown Runner ───────────────────────────────────────────────

func (m *SessionService) runCountdown(resumeID uuid.UUID, r *testRunner) {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.mu.Lock()
			remaining, result := r.session.Tick()
			r.mu.Unlock()

			if result != nil {
				m.log.Info().
					Str("resume_id", resumeID.String()).
					Int("score", result.Score).
					Msg("Time expired, session auto-submitted")
				m.finalize(resumeID, r, result)
				return
			}
			r.broadcast(TestEvent{Type: EventTick, RemainingSeconds: remaining})
		}
	}
}

// finalize releases the ticker and runs the one-time grading side effects:
// notify watchers and hand the result to the sink. The quiz state machine
// already guarantees a single Result; gradOnce guarantees the side effects
// match it.
func (m *SessionService) finalize(resumeID uuid.UUID, r *testRunner, result *quiz.Result) {
	r.stop()

	r.gradOnce.Do(func() {
		r.broadcast(TestEvent{Type: EventGraded, Result: result})
		m.results.Publish(context.Background(), resumeID, result)

		m.log.Info().
			Str("resume_id", resumeID.String()).
			Int("score", result.Score).
			Str("status", string(result.Status)).
			Float64("percentage", result.Percentage).
			Msg("Test submitted and graded")
	})
}

// ─── Helpers ────────────────────────────────────────────────────────

func (m *SessionService) runner(resumeID uuid.UUID) (*testRunner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runners[resumeID]
	if !ok {
		return nil, ErrTestNotStarted
	}
	return r, nil
}

// snapshotLocked builds a TestState; the caller holds the runner lock.
func snapshotLocked(resumeID uuid.UUID, s *quiz.Session) *model.TestState {
	return &model.TestState{
		ResumeID:         resumeID,
		Status:           s.Status(),
		CurrentIndex:     s.CurrentIndex(),
		Total:            s.Total(),
		RemainingSeconds: s.Remaining(),
		Answers:          s.Answers(),
	}
}

func mapSessionErr(err error) error {
	if errors.Is(err, quiz.ErrSessionSubmitted) {
		return ErrTestSubmitted
	}
	return err
}
