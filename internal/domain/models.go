package domain

import "time"

// Question types served by the platform.
const (
	TypeSingleChoice   = "single-choice"
	TypeMultipleChoice = "multiple-choice"
	TypeTrueFalse      = "true-false"
	TypeScenarioBased  = "scenario-based"
)

// StatusApproved is the only review status eligible for selection.
const StatusApproved = "approved"

// Option represents a possible answer for a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question is the full record including the answer key. It never leaves the
// server in this form; see PublicQuestion.
type Question struct {
	ID             string   `json:"id"`
	ExamType       string   `json:"examType"`
	Domain         string   `json:"domain"`
	QuestionType   string   `json:"questionType"`
	Difficulty     string   `json:"difficulty,omitempty"`
	QuestionText   string   `json:"questionText"`
	Scenario       string   `json:"scenario,omitempty"`
	Options        []Option `json:"options"`
	CorrectAnswers []string `json:"correctAnswers"`
	Explanation    string   `json:"explanation"`
	References     []string `json:"references,omitempty"`
	Status         string   `json:"status"`
}

// PublicQuestion is the client-facing view of a question. Redaction happens
// by construction: the type has no answer key or explanation fields to leak.
type PublicQuestion struct {
	ID           string   `json:"id"`
	ExamType     string   `json:"examType"`
	Domain       string   `json:"domain"`
	QuestionType string   `json:"questionType"`
	Difficulty   string   `json:"difficulty,omitempty"`
	QuestionText string   `json:"questionText"`
	Scenario     string   `json:"scenario,omitempty"`
	Options      []Option `json:"options"`
}

// Public strips the answer key and explanation from a question.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:           q.ID,
		ExamType:     q.ExamType,
		Domain:       q.Domain,
		QuestionType: q.QuestionType,
		Difficulty:   q.Difficulty,
		QuestionText: q.QuestionText,
		Scenario:     q.Scenario,
		Options:      q.Options,
	}
}

// QuestionResult is the graded outcome for a single question in a session.
type QuestionResult struct {
	QuestionID     string   `json:"questionId"`
	Domain         string   `json:"domain"`
	IsCorrect      bool     `json:"isCorrect"`
	UserAnswers    []string `json:"userAnswers"`
	CorrectAnswers []string `json:"correctAnswers"`
	Explanation    string   `json:"explanation"`
}

// DomainScore is the per-domain breakdown for one attempt.
type DomainScore struct {
	Correct    int `json:"correct"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// QuizSession is the immutable record of one completed attempt.
type QuizSession struct {
	SessionID       string           `json:"sessionId"`
	UserID          string           `json:"userId"`
	ExamType        string           `json:"examType"`
	Results         []QuestionResult `json:"results"`
	ScorePercentage int              `json:"scorePercentage"`
	TotalQuestions  int              `json:"totalQuestions"`
	CorrectCount    int              `json:"correctCount"`
	CompletedAt     time.Time        `json:"completedAt"`
	ExpiresAt       time.Time        `json:"expiresAt"`
}

// UserProgress is the rolling aggregate per (userId, examType).
// DomainScores reflects the most recent attempt only; every scored quiz
// overwrites it rather than merging domain history.
type UserProgress struct {
	UserID       string                 `json:"userId"`
	ExamType     string                 `json:"examType"`
	QuizzesTaken int                    `json:"quizzesTaken"`
	AverageScore int                    `json:"averageScore"`
	LastScore    int                    `json:"lastScore"`
	DomainScores map[string]DomainScore `json:"domainScores"`
	LastUpdated  time.Time              `json:"lastUpdated"`
}

// ScoreResult is what the score calculator returns to the caller.
type ScoreResult struct {
	SessionID       string                 `json:"sessionId"`
	ExamType        string                 `json:"examType"`
	TotalQuestions  int                    `json:"totalQuestions"`
	CorrectCount    int                    `json:"correctCount"`
	ScorePercentage int                    `json:"scorePercentage"`
	DomainScores    map[string]DomainScore `json:"domainScores"`
	Results         []QuestionResult       `json:"results"`
}
