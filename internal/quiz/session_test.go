package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, n, totalSeconds int) (*Session, []Question) {
	t.Helper()
	questions := makeQuestions(n)
	s, err := NewSession(questions, totalSeconds, DefaultScorePolicy())
	require.NoError(t, err)
	return s, questions
}

func TestNewSessionInitialState(t *testing.T) {
	s, _ := newTestSession(t, 10, 900)

	assert.Equal(t, SessionActive, s.Status())
	assert.Zero(t, s.CurrentIndex())
	assert.Equal(t, 900, s.Remaining())
	assert.Equal(t, 10, s.Total())
	assert.Empty(t, s.Answers())
	assert.Nil(t, s.Result())
}

func TestNewSessionRejectsEmptySet(t *testing.T) {
	_, err := NewSession(nil, 900, DefaultScorePolicy())
	assert.ErrorIs(t, err, ErrEmptyQuestionSet)
}

func TestNewSessionRejectsZeroDuration(t *testing.T) {
	_, err := NewSession(makeQuestions(1), 0, DefaultScorePolicy())
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestNavigationStaysInBounds(t *testing.T) {
	s, _ := newTestSession(t, 3, 900)

	// previous() at index 0 is a no-op.
	require.NoError(t, s.Previous())
	assert.Zero(t, s.CurrentIndex())

	require.NoError(t, s.Next())
	require.NoError(t, s.Next())
	assert.Equal(t, 2, s.CurrentIndex())

	// next() at the last index is a no-op.
	require.NoError(t, s.Next())
	assert.Equal(t, 2, s.CurrentIndex())

	require.NoError(t, s.Previous())
	assert.Equal(t, 1, s.CurrentIndex())
}

func TestSelectOptionOverwrites(t *testing.T) {
	s, questions := newTestSession(t, 2, 900)
	qid := questions[0].ID.String()

	require.NoError(t, s.SelectOption("A"))
	assert.Equal(t, "A", s.Answers()[qid])

	// Last write wins; the pointer does not move.
	require.NoError(t, s.SelectOption("C"))
	assert.Equal(t, "C", s.Answers()[qid])
	assert.Zero(t, s.CurrentIndex())

	// Idempotent repeat.
	require.NoError(t, s.SelectOption("C"))
	assert.Len(t, s.Answers(), 1)
}

func TestSelectOptionRejectsUnknownOption(t *testing.T) {
	s, _ := newTestSession(t, 1, 900)

	err := s.SelectOption("not-an-option")
	assert.ErrorIs(t, err, ErrUnknownOption)
	assert.Empty(t, s.Answers())
}

func TestTickCountsDownAndFloorsAtZero(t *testing.T) {
	s, _ := newTestSession(t, 4, 3)

	remaining, result := s.Tick()
	assert.Equal(t, 2, remaining)
	assert.Nil(t, result)

	remaining, result = s.Tick()
	assert.Equal(t, 1, remaining)
	assert.Nil(t, result)

	// The tick that reaches zero auto-submits exactly once.
	remaining, result = s.Tick()
	assert.Zero(t, remaining)
	require.NotNil(t, result)
	assert.Equal(t, SessionSubmitted, s.Status())
	assert.Equal(t, 3, result.TimeTakenSeconds)

	// Repeated ticks at zero never go negative and never resubmit.
	for i := 0; i < 5; i++ {
		remaining, extra := s.Tick()
		assert.Zero(t, remaining)
		assert.Nil(t, extra)
	}
	assert.Same(t, result, s.Result())
}

func TestSubmitIdempotent(t *testing.T) {
	s, questions := newTestSession(t, 4, 900)
	for range questions {
		require.NoError(t, s.SelectOption("B"))
		require.NoError(t, s.Next())
	}

	first := s.Submit()
	require.NotNil(t, first)
	second := s.Submit()

	// Bit-identical: the cached pointer is returned, not a recomputation.
	assert.Same(t, first, second)
	assert.Equal(t, SessionSubmitted, s.Status())
}

func TestSubmitAllCorrectRoundTrip(t *testing.T) {
	// N=4 is the smallest set where a perfect run clears the Excellent bar.
	s, questions := newTestSession(t, 4, 900)
	for range questions {
		require.NoError(t, s.SelectOption("B"))
		require.NoError(t, s.Next())
	}

	result := s.Submit()
	assert.Equal(t, 8, result.Score)
	assert.InDelta(t, 100.0, result.Percentage, 1e-9)
	assert.Equal(t, StatusExcellent, result.Status)
}

func TestOperationsAfterSubmitDoNotCorruptState(t *testing.T) {
	s, _ := newTestSession(t, 2, 900)
	require.NoError(t, s.SelectOption("A"))
	result := s.Submit()

	assert.ErrorIs(t, s.SelectOption("B"), ErrSessionSubmitted)
	assert.ErrorIs(t, s.Next(), ErrSessionSubmitted)
	assert.ErrorIs(t, s.Previous(), ErrSessionSubmitted)

	// The frozen answer map and result are untouched.
	assert.Equal(t, "A", s.Answers()[s.CurrentQuestion().ID.String()])
	assert.Same(t, result, s.Submit())
}

func TestManualSubmitThenTimeoutTick(t *testing.T) {
	s, _ := newTestSession(t, 2, 1)

	manual := s.Submit()
	require.NotNil(t, manual)

	// A ticker fire racing the manual finish must be harmless.
	remaining, auto := s.Tick()
	assert.Equal(t, 1, remaining)
	assert.Nil(t, auto)
	assert.Same(t, manual, s.Result())
	assert.Zero(t, manual.TimeTakenSeconds)
}
