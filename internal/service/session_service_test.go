package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/resumeiq/skilltest-backend/internal/config"
	"github.com/resumeiq/skilltest-backend/internal/quiz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubQuestionSource struct {
	questions []quiz.Question
	err       error
}

func (s *stubQuestionSource) GetQuestions(_ context.Context, _ uuid.UUID) ([]quiz.Question, error) {
	return s.questions, s.err
}

type stubResultSink struct {
	mu        sync.Mutex
	published []*quiz.Result
	stored    *quiz.Result
}

func (s *stubResultSink) Publish(_ context.Context, _ uuid.UUID, result *quiz.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, result)
}

func (s *stubResultSink) Find(_ context.Context, _ uuid.UUID) (*quiz.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stored == nil {
		return nil, ErrResultNotFound
	}
	return s.stored, nil
}

func (s *stubResultSink) publishCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

func sessionQuestions(n int) []quiz.Question {
	questions := make([]quiz.Question, n)
	for i := range questions {
		questions[i] = quiz.Question{
			ID:           uuid.New(),
			QuestionText: "question",
			Options:      []string{"A", "B", "C", "D"},
			Answer:       "B",
		}
	}
	return questions
}

func newTestManager(questions []quiz.Question, durationSeconds int) (*SessionService, *stubResultSink) {
	cfg := &config.Config{
		TestDurationSeconds: durationSeconds,
		PointsPerCorrect:    2,
		FailBelowScore:      5,
		ExcellentScore:      8,
	}
	sink := &stubResultSink{}
	m := NewSessionService(&stubQuestionSource{questions: questions}, sink, cfg, zerolog.Nop())
	m.tickInterval = time.Millisecond
	return m, sink
}

func TestSessionService_StartReturnsInitialState(t *testing.T) {
	m, _ := newTestManager(sessionQuestions(3), 300)
	defer m.Shutdown()
	resumeID := uuid.New()

	state, err := m.Start(context.Background(), resumeID)
	require.NoError(t, err)

	assert.Equal(t, resumeID, state.ResumeID)
	assert.Equal(t, quiz.SessionActive, state.Status)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Equal(t, 3, state.Total)
	assert.Empty(t, state.Answers)
}

func TestSessionService_StartIsIdempotentWhileActive(t *testing.T) {
	m, _ := newTestManager(sessionQuestions(3), 300)
	defer m.Shutdown()
	resumeID := uuid.New()

	_, err := m.Start(context.Background(), resumeID)
	require.NoError(t, err)
	require.NoError(t, m.SelectAnswer(resumeID, "B"))

	state, err := m.Start(context.Background(), resumeID)
	require.NoError(t, err)
	assert.Len(t, state.Answers, 1, "rejoin must not reset recorded answers")
}

func TestSessionService_StartWithNoQuestions(t *testing.T) {
	m, _ := newTestManager(nil, 300)
	defer m.Shutdown()

	_, err := m.Start(context.Background(), uuid.New())
	assert.ErrorIs(t, err, quiz.ErrEmptyQuestionSet)
}

func TestSessionService_OperationsWithoutStart(t *testing.T) {
	m, _ := newTestManager(sessionQuestions(3), 300)
	defer m.Shutdown()
	resumeID := uuid.New()

	_, err := m.State(resumeID)
	assert.ErrorIs(t, err, ErrTestNotStarted)
	assert.ErrorIs(t, m.SelectAnswer(resumeID, "A"), ErrTestNotStarted)
	_, err = m.Next(resumeID)
	assert.ErrorIs(t, err, ErrTestNotStarted)
	_, err = m.Submit(resumeID)
	assert.ErrorIs(t, err, ErrTestNotStarted)
}

func TestSessionService_NavigationAndAnswers(t *testing.T) {
	m, _ := newTestManager(sessionQuestions(2), 300)
	defer m.Shutdown()
	resumeID := uuid.New()

	_, err := m.Start(context.Background(), resumeID)
	require.NoError(t, err)

	require.NoError(t, m.SelectAnswer(resumeID, "B"))

	state, err := m.Next(resumeID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentIndex)

	// Already at the last question, pointer stays put.
	state, err = m.Next(resumeID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentIndex)

	state, err = m.Previous(resumeID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentIndex)

	assert.ErrorIs(t, m.SelectAnswer(resumeID, "Z"), quiz.ErrUnknownOption)
}

func TestSessionService_SubmitPublishesOnce(t *testing.T) {
	m, sink := newTestManager(sessionQuestions(2), 300)
	defer m.Shutdown()
	resumeID := uuid.New()

	_, err := m.Start(context.Background(), resumeID)
	require.NoError(t, err)
	require.NoError(t, m.SelectAnswer(resumeID, "B"))

	first, err := m.Submit(resumeID)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Score)

	second, err := m.Submit(resumeID)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, sink.publishCount())

	_, err = m.Start(context.Background(), resumeID)
	assert.ErrorIs(t, err, ErrTestSubmitted)
	assert.ErrorIs(t, m.SelectAnswer(resumeID, "A"), ErrTestSubmitted)
}

func TestSessionService_AutoSubmitOnTimeout(t *testing.T) {
	m, sink := newTestManager(sessionQuestions(2), 2)
	defer m.Shutdown()
	resumeID := uuid.New()

	_, err := m.Start(context.Background(), resumeID)
	require.NoError(t, err)

	events, cancel, err := m.Watch(resumeID)
	require.NoError(t, err)
	defer cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type != EventGraded {
				continue
			}
			require.NotNil(t, ev.Result)
			assert.Equal(t, 0, ev.Result.Score)
			assert.Equal(t, 2, ev.Result.TimeTakenSeconds)
			assert.Equal(t, 1, sink.publishCount())

			_, err = m.Start(context.Background(), resumeID)
			assert.ErrorIs(t, err, ErrTestSubmitted)
			return
		case <-deadline:
			t.Fatal("timed out waiting for graded event")
		}
	}
}

func TestSessionService_WatchReceivesTicks(t *testing.T) {
	m, _ := newTestManager(sessionQuestions(1), 300)
	defer m.Shutdown()
	resumeID := uuid.New()

	_, err := m.Start(context.Background(), resumeID)
	require.NoError(t, err)

	events, cancel, err := m.Watch(resumeID)
	require.NoError(t, err)
	defer cancel()

	select {
	case ev := <-events:
		assert.Equal(t, EventTick, ev.Type)
		assert.Less(t, ev.RemainingSeconds, 300)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tick event")
	}
}

func TestSessionService_GetResult(t *testing.T) {
	m, sink := newTestManager(sessionQuestions(2), 300)
	defer m.Shutdown()
	resumeID := uuid.New()

	// Nothing anywhere yet.
	_, err := m.GetResult(context.Background(), resumeID)
	assert.ErrorIs(t, err, ErrResultNotFound)

	_, err = m.Start(context.Background(), resumeID)
	require.NoError(t, err)

	// Active session, not yet graded.
	_, err = m.GetResult(context.Background(), resumeID)
	assert.ErrorIs(t, err, ErrResultNotReady)

	submitted, err := m.Submit(resumeID)
	require.NoError(t, err)

	got, err := m.GetResult(context.Background(), resumeID)
	require.NoError(t, err)
	assert.Same(t, submitted, got)

	// After a restart the result comes from the sink.
	sink.stored = submitted
	fresh, _ := newTestManager(sessionQuestions(2), 300)
	fresh.results = sink
	got, err = fresh.GetResult(context.Background(), resumeID)
	require.NoError(t, err)
	assert.Same(t, submitted, got)
}

func TestSessionService_ShutdownStopsCountdownWithoutGrading(t *testing.T) {
	m, sink := newTestManager(sessionQuestions(1), 2)
	resumeID := uuid.New()

	_, err := m.Start(context.Background(), resumeID)
	require.NoError(t, err)

	m.Shutdown()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 0, sink.publishCount())
	state, err := m.State(resumeID)
	require.NoError(t, err)
	assert.Equal(t, quiz.SessionActive, state.Status)
}

func TestSessionService_ManualSubmitRacesTimeout(t *testing.T) {
	m, sink := newTestManager(sessionQuestions(1), 1)
	defer m.Shutdown()
	resumeID := uuid.New()

	_, err := m.Start(context.Background(), resumeID)
	require.NoError(t, err)

	// Submit while the millisecond ticker is about to expire the clock.
	result, err := m.Submit(resumeID)
	if errors.Is(err, ErrTestNotStarted) {
		t.Fatal("runner disappeared")
	}
	require.NoError(t, err)
	require.NotNil(t, result)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, sink.publishCount())
}
