package quiz

// AnswerSkipped is the sentinel recorded in a review entry when the candidate
// never selected an option for a question. It is distinct from every real
// option value, so a skipped question can never score as correct.
const AnswerSkipped = "Skipped"

// ResultStatus classifies a final score against the policy thresholds.
type ResultStatus string

const (
	StatusFail      ResultStatus = "Fail"
	StatusPass      ResultStatus = "Pass"
	StatusExcellent ResultStatus = "Excellent"
)

// ScorePolicy holds the grading constants. They are policy parameters, not
// derived values, and come from configuration.
type ScorePolicy struct {
	// PointsPerCorrect is awarded for each correct answer.
	PointsPerCorrect int
	// FailBelow: raw scores strictly below this are a Fail.
	FailBelow int
	// ExcellentAt: raw scores at or above this are Excellent.
	// Everything between FailBelow and ExcellentAt is a Pass.
	ExcellentAt int
}

// DefaultScorePolicy mirrors the product's grading rules: 2 points per
// correct answer, Fail below 5, Excellent at 8 or more.
func DefaultScorePolicy() ScorePolicy {
	return ScorePolicy{
		PointsPerCorrect: 2,
		FailBelow:        5,
		ExcellentAt:      8,
	}
}

// ReviewEntry is the per-question record of the final report, in the original
// question order. It carries both answers so the renderer can highlight
// options without recomputing anything.
type ReviewEntry struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	UserAnswer    string   `json:"user_answer"`
	CorrectAnswer string   `json:"correct_answer"`
}

// Result is the immutable scored outcome of a session. It is computed exactly
// once at submission and handed off as a plain data contract.
type Result struct {
	Score            int           `json:"score"`
	Total            int           `json:"total"`
	Percentage       float64       `json:"percentage"`
	Status           ResultStatus  `json:"status"`
	TimeTakenSeconds int           `json:"time_taken_seconds"`
	Review           []ReviewEntry `json:"review"`
}

// Score grades a finished session. It is purely functional: the same
// questions, answers and elapsed time always produce the same Result.
// Unanswered questions resolve to AnswerSkipped and score as incorrect.
// Percentage is defined against the maximum obtainable score
// (PointsPerCorrect * len(questions)), so it stays correct if the point
// value ever changes.
func Score(questions []Question, answers map[string]string, elapsedSeconds int, policy ScorePolicy) (*Result, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}

	return score(questions, answers, elapsedSeconds, policy), nil
}

func score(questions []Question, answers map[string]string, elapsedSeconds int, policy ScorePolicy) *Result {
	total := len(questions)
	points := 0
	review := make([]ReviewEntry, 0, total)

	for _, q := range questions {
		userAnswer, ok := answers[q.ID.String()]
		if !ok {
			userAnswer = AnswerSkipped
		}
		if userAnswer == q.Answer {
			points += policy.PointsPerCorrect
		}
		review = append(review, ReviewEntry{
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.Answer,
		})
	}

	maxScore := policy.PointsPerCorrect * total

	return &Result{
		Score:            points,
		Total:            total,
		Percentage:       float64(points) / float64(maxScore) * 100,
		Status:           classify(points, policy),
		TimeTakenSeconds: elapsedSeconds,
		Review:           review,
	}
}

func classify(points int, policy ScorePolicy) ResultStatus {
	switch {
	case points < policy.FailBelow:
		return StatusFail
	case points >= policy.ExcellentAt:
		return StatusExcellent
	default:
		return StatusPass
	}
}
