package quiz

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeQuestions(n int) []Question {
	questions := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, Question{
			ID:           uuid.New(),
			QuestionText: fmt.Sprintf("Question %d", i+1),
			Options:      []string{"A", "B", "C", "D"},
			Answer:       "B",
		})
	}
	return questions
}

func answerAll(questions []Question, option string) map[string]string {
	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		answers[q.ID.String()] = option
	}
	return answers
}

func TestScoreAllCorrect(t *testing.T) {
	questions := makeQuestions(10)

	result, err := Score(questions, answerAll(questions, "B"), 120, DefaultScorePolicy())
	require.NoError(t, err)

	assert.Equal(t, 20, result.Score)
	assert.Equal(t, 10, result.Total)
	assert.InDelta(t, 100.0, result.Percentage, 1e-9)
	assert.Equal(t, StatusExcellent, result.Status)
	assert.Equal(t, 120, result.TimeTakenSeconds)
	require.Len(t, result.Review, 10)
	for i, entry := range result.Review {
		assert.Equal(t, questions[i].QuestionText, entry.QuestionText)
		assert.Equal(t, "B", entry.UserAnswer)
		assert.Equal(t, "B", entry.CorrectAnswer)
	}
}

func TestScoreAllWrong(t *testing.T) {
	questions := makeQuestions(10)

	result, err := Score(questions, answerAll(questions, "A"), 60, DefaultScorePolicy())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Score)
	assert.Zero(t, result.Percentage)
	assert.Equal(t, StatusFail, result.Status)
}

func TestScoreSixOfTen(t *testing.T) {
	questions := makeQuestions(10)
	answers := make(map[string]string, 10)
	for i, q := range questions {
		if i < 6 {
			answers[q.ID.String()] = "B"
		} else {
			answers[q.ID.String()] = "C"
		}
	}

	result, err := Score(questions, answers, 300, DefaultScorePolicy())
	require.NoError(t, err)

	// 6 correct * 2 points = 12 >= 8, so Excellent; 12 of max 20 is 60%.
	assert.Equal(t, 12, result.Score)
	assert.Equal(t, StatusExcellent, result.Status)
	assert.InDelta(t, 60.0, result.Percentage, 1e-9)
}

func TestScoreSkippedQuestions(t *testing.T) {
	questions := makeQuestions(4)
	answers := map[string]string{
		questions[0].ID.String(): "B",
	}

	result, err := Score(questions, answers, 10, DefaultScorePolicy())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Score)
	assert.Equal(t, 4, result.Total)
	for _, entry := range result.Review[1:] {
		assert.Equal(t, AnswerSkipped, entry.UserAnswer)
		assert.NotEqual(t, entry.CorrectAnswer, entry.UserAnswer)
	}
}

func TestScorePassBand(t *testing.T) {
	questions := makeQuestions(10)
	answers := make(map[string]string, 3)
	for _, q := range questions[:3] {
		answers[q.ID.String()] = "B"
	}

	// 3 correct = 6 points: at least FailBelow (5), under ExcellentAt (8).
	result, err := Score(questions, answers, 0, DefaultScorePolicy())
	require.NoError(t, err)

	assert.Equal(t, 6, result.Score)
	assert.Equal(t, StatusPass, result.Status)
}

func TestScoreEmptySet(t *testing.T) {
	_, err := Score(nil, nil, 0, DefaultScorePolicy())
	assert.ErrorIs(t, err, ErrEmptyQuestionSet)
}

func TestScoreNegativeElapsedClamped(t *testing.T) {
	questions := makeQuestions(2)

	result, err := Score(questions, nil, -5, DefaultScorePolicy())
	require.NoError(t, err)
	assert.Zero(t, result.TimeTakenSeconds)
}

func TestScoreExactEquality(t *testing.T) {
	q := Question{
		ID:           uuid.New(),
		QuestionText: "Spacing matters",
		Options:      []string{"Go", "Go ", "go"},
		Answer:       "Go",
	}

	// " Go " style near-misses must not be trimmed or case-folded into a hit.
	for _, wrong := range []string{"Go ", "go"} {
		result, err := Score([]Question{q, q}, map[string]string{q.ID.String(): wrong}, 0, DefaultScorePolicy())
		require.NoError(t, err)
		assert.Zero(t, result.Score, "answer %q must not match %q", wrong, q.Answer)
	}
}

func TestValidateQuestions(t *testing.T) {
	valid := makeQuestions(3)
	assert.NoError(t, ValidateQuestions(valid))

	assert.ErrorIs(t, ValidateQuestions(nil), ErrEmptyQuestionSet)

	oneOption := makeQuestions(1)
	oneOption[0].Options = []string{"A"}
	oneOption[0].Answer = "A"
	assert.ErrorIs(t, ValidateQuestions(oneOption), ErrTooFewOptions)

	strayAnswer := makeQuestions(1)
	strayAnswer[0].Answer = "E"
	assert.ErrorIs(t, ValidateQuestions(strayAnswer), ErrAnswerNotOption)
}
