package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"cert-quiz-service/internal/app"
	"cert-quiz-service/internal/domain"
	"cert-quiz-service/internal/infra/memory"
)

const examDev = "Developer-Associate"

func TestSelectReturnsAtMostPoolSize(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	questions, err := service.SelectQuestions(ctx, examDev, 10, nil)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	// pool has 5 questions but only 4 approved
	if len(questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(questions))
	}
	seen := map[string]bool{}
	for _, q := range questions {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s in selection", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelectNeverLeaksAnswers(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	questions, err := service.SelectQuestions(ctx, examDev, 4, nil)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	data, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{"correctAnswers", "explanation"} {
		if strings.Contains(string(data), field) {
			t.Fatalf("serialized selection leaks %q: %s", field, data)
		}
	}
}

func TestSelectExcludesUnapproved(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	questions, err := service.SelectQuestions(ctx, examDev, 10, nil)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	for _, q := range questions {
		if q.ID == "DEV-PENDING" {
			t.Fatalf("pending question served to client")
		}
	}
}

func TestSelectDomainFilter(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	questions, err := service.SelectQuestions(ctx, examDev, 10, []string{"Security"})
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if len(questions) != 1 || questions[0].Domain != "Security" {
		t.Fatalf("expected only Security questions, got %+v", questions)
	}

	_, err = service.SelectQuestions(ctx, examDev, 10, []string{"Not A Domain"})
	if !errors.Is(err, domain.ErrUnknownDomain) {
		t.Fatalf("expected unknown domain error, got %v", err)
	}
}

func TestSelectValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	if _, err := service.SelectQuestions(ctx, "Cloud-Practitioner", 5, nil); !errors.Is(err, domain.ErrUnknownExamType) {
		t.Fatalf("expected unknown exam error, got %v", err)
	}
	if _, err := service.SelectQuestions(ctx, examDev, 0, nil); !errors.Is(err, domain.ErrInvalidQuestionCount) {
		t.Fatalf("expected count error for 0, got %v", err)
	}
	if _, err := service.SelectQuestions(ctx, examDev, 66, nil); !errors.Is(err, domain.ErrInvalidQuestionCount) {
		t.Fatalf("expected count error for 66, got %v", err)
	}
	if _, err := service.SelectQuestions(ctx, "SysOps-Administrator-Associate", 5, nil); !errors.Is(err, domain.ErrNoQuestions) {
		t.Fatalf("expected no questions error, got %v", err)
	}
}

func TestGradeSingleChoice(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	// DEV-1 is single-choice with correct answer B.
	result, err := service.ScoreQuiz(ctx, "u1", examDev, []string{"DEV-1"}, map[string][]string{"DEV-1": {"B"}})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if !result.Results[0].IsCorrect || result.ScorePercentage != 100 {
		t.Fatalf("expected correct single choice, got %+v", result)
	}

	// More than one answer on a single-choice question is wrong even if the
	// correct id is among them.
	result, err = service.ScoreQuiz(ctx, "u1", examDev, []string{"DEV-1"}, map[string][]string{"DEV-1": {"A", "B"}})
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.Results[0].IsCorrect {
		t.Fatalf("expected multi-answer single choice to be wrong")
	}
}

func TestGradeMultipleChoiceSetEquality(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	// DEV-2 is multiple-choice with correct answers {A, C}.
	cases := []struct {
		answers []string
		want    bool
	}{
		{[]string{"A", "C"}, true},
		{[]string{"C", "A"}, true},
		{[]string{"A"}, false},          // missing C
		{[]string{"A", "B", "C"}, false}, // extra B
		{nil, false},                     // unanswered
	}
	for _, tc := range cases {
		result, err := service.ScoreQuiz(ctx, "u1", examDev, []string{"DEV-2"}, map[string][]string{"DEV-2": tc.answers})
		if err != nil {
			t.Fatalf("score failed: %v", err)
		}
		if result.Results[0].IsCorrect != tc.want {
			t.Fatalf("answers %v: expected correct=%v", tc.answers, tc.want)
		}
	}
}

func TestScoreAggregatesAndSession(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t, samplePool())

	ids := []string{"DEV-1", "DEV-2", "DEV-3"}
	answers := map[string][]string{
		"DEV-1": {"B"},      // correct
		"DEV-2": {"A", "C"}, // correct
		// DEV-3 unanswered -> incorrect
	}
	result, err := service.ScoreQuiz(ctx, "u1", examDev, ids, answers)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if result.CorrectCount != 2 || result.TotalQuestions != 3 {
		t.Fatalf("expected 2/3, got %d/%d", result.CorrectCount, result.TotalQuestions)
	}
	if result.ScorePercentage != 67 { // round(200/3)
		t.Fatalf("expected 67%%, got %d", result.ScorePercentage)
	}
	ds := result.DomainScores["Development with AWS Services"]
	if ds.Correct != 1 || ds.Total != 2 || ds.Percentage != 50 {
		t.Fatalf("unexpected domain breakdown: %+v", ds)
	}
	if sec := result.DomainScores["Security"]; sec.Correct != 1 || sec.Total != 1 || sec.Percentage != 100 {
		t.Fatalf("unexpected security breakdown: %+v", sec)
	}

	sessions := store.Sessions("u1")
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session persisted, got %d", len(sessions))
	}
	session := sessions[0]
	if session.SessionID != result.SessionID || session.ScorePercentage != 67 {
		t.Fatalf("session mismatch: %+v", session)
	}
	if !session.ExpiresAt.Equal(session.CompletedAt.Add(90 * 24 * time.Hour)) {
		t.Fatalf("expected 90 day retention, got %v -> %v", session.CompletedAt, session.ExpiresAt)
	}
}

func TestProgressRollingAverage(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	// Two quizzes with controlled outcomes: 100% then 0%.
	if _, err := service.ScoreQuiz(ctx, "u1", examDev, []string{"DEV-1"}, map[string][]string{"DEV-1": {"B"}}); err != nil {
		t.Fatalf("score 1: %v", err)
	}
	if _, err := service.ScoreQuiz(ctx, "u1", examDev, []string{"DEV-1"}, nil); err != nil {
		t.Fatalf("score 2: %v", err)
	}

	progress, err := service.Progress(ctx, "u1", examDev)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.QuizzesTaken != 2 {
		t.Fatalf("expected 2 quizzes taken, got %d", progress.QuizzesTaken)
	}
	if progress.AverageScore != 50 { // round((100*1+0)/2)
		t.Fatalf("expected average 50, got %d", progress.AverageScore)
	}
	if progress.LastScore != 0 {
		t.Fatalf("expected last score 0, got %d", progress.LastScore)
	}
}

// The incremental average recomputes from the previous rounded value, so it
// drifts from the exact mean. Scores 67, 0, 0: the exact mean 67/3 rounds to
// 22, but the incremental formula lands on 23 because the intermediate
// average was already rounded up to 34. That formula is the contract.
func TestProgressRoundedAverageDrift(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	// First call: 2 of 3 correct = 67%.
	ids := []string{"DEV-1", "DEV-2", "DEV-3"}
	answers := map[string][]string{"DEV-1": {"B"}, "DEV-2": {"A", "C"}}
	if _, err := service.ScoreQuiz(ctx, "u1", examDev, ids, answers); err != nil {
		t.Fatalf("score: %v", err)
	}
	// Two more calls: 0 of 1 each.
	for i := 0; i < 2; i++ {
		if _, err := service.ScoreQuiz(ctx, "u1", examDev, []string{"DEV-1"}, nil); err != nil {
			t.Fatalf("score: %v", err)
		}
	}

	progress, err := service.Progress(ctx, "u1", examDev)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	// Incremental: 67, then round(67/2)=34, then round(34*2/3)=23.
	if progress.AverageScore != 23 {
		t.Fatalf("expected incremental average 23, got %d", progress.AverageScore)
	}
	if progress.QuizzesTaken != 3 {
		t.Fatalf("expected 3 quizzes taken, got %d", progress.QuizzesTaken)
	}
}

func TestDomainScoresReflectLatestAttemptOnly(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	if _, err := service.ScoreQuiz(ctx, "u1", examDev, []string{"DEV-2"}, map[string][]string{"DEV-2": {"A", "C"}}); err != nil {
		t.Fatalf("score 1: %v", err)
	}
	if _, err := service.ScoreQuiz(ctx, "u1", examDev, []string{"DEV-1"}, map[string][]string{"DEV-1": {"B"}}); err != nil {
		t.Fatalf("score 2: %v", err)
	}

	progress, err := service.Progress(ctx, "u1", examDev)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if _, ok := progress.DomainScores["Security"]; ok {
		t.Fatalf("expected first attempt's domain scores to be overwritten, got %+v", progress.DomainScores)
	}
	if ds := progress.DomainScores["Development with AWS Services"]; ds.Correct != 1 || ds.Total != 1 {
		t.Fatalf("unexpected latest domain scores: %+v", progress.DomainScores)
	}
}

func TestScoreUnknownQuestionIsNotFound(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	_, err := service.ScoreQuiz(ctx, "u1", examDev, []string{"DEV-1", "DEV-GONE"}, map[string][]string{"DEV-1": {"B"}})
	if !errors.Is(err, domain.ErrQuestionSetMismatch) {
		t.Fatalf("expected question set mismatch, got %v", err)
	}
}

func TestScoreValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, samplePool())

	if _, err := service.ScoreQuiz(ctx, "", examDev, []string{"DEV-1"}, nil); !errors.Is(err, domain.ErrMissingUser) {
		t.Fatalf("expected missing user error, got %v", err)
	}
	if _, err := service.ScoreQuiz(ctx, "u1", examDev, nil, nil); !errors.Is(err, domain.ErrEmptySubmission) {
		t.Fatalf("expected empty submission error, got %v", err)
	}
	if _, err := service.ScoreQuiz(ctx, "u1", "Nope", []string{"DEV-1"}, nil); !errors.Is(err, domain.ErrUnknownExamType) {
		t.Fatalf("expected unknown exam error, got %v", err)
	}
}

func newTestService(t *testing.T, pool []domain.Question) (*app.QuizService, *memory.ResultStore) {
	t.Helper()
	loader := memory.NewStaticQuestionLoader(map[string][]domain.Question{examDev: pool})
	repo := memory.NewQuestionRepository(loader, 5*time.Minute)
	store := memory.NewResultStore()

	// Advance the clock on every read so session IDs stay unique.
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}
	service := app.NewQuizServiceWithClock(repo, store, app.NewProgressFeed(), 90*24*time.Hour, clock, 42)
	return service, store
}

func samplePool() []domain.Question {
	return []domain.Question{
		{
			ID: "DEV-1", ExamType: examDev, Domain: "Development with AWS Services",
			QuestionType: domain.TypeSingleChoice, QuestionText: "Pick B.",
			Options:        []domain.Option{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}, {ID: "C", Text: "c"}},
			CorrectAnswers: []string{"B"}, Explanation: "because", Status: domain.StatusApproved,
		},
		{
			ID: "DEV-2", ExamType: examDev, Domain: "Security",
			QuestionType: domain.TypeMultipleChoice, QuestionText: "Pick A and C.",
			Options:        []domain.Option{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}, {ID: "C", Text: "c"}, {ID: "D", Text: "d"}},
			CorrectAnswers: []string{"A", "C"}, Explanation: "because", Status: domain.StatusApproved,
		},
		{
			ID: "DEV-3", ExamType: examDev, Domain: "Development with AWS Services",
			QuestionType: domain.TypeTrueFalse, QuestionText: "True?",
			Options:        []domain.Option{{ID: "A", Text: "True"}, {ID: "B", Text: "False"}},
			CorrectAnswers: []string{"A"}, Explanation: "because", Status: domain.StatusApproved,
		},
		{
			ID: "DEV-4", ExamType: examDev, Domain: "Deployment",
			QuestionType: domain.TypeScenarioBased, QuestionText: "What now?", Scenario: "It broke.",
			Options:        []domain.Option{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}},
			CorrectAnswers: []string{"B"}, Explanation: "because", Status: domain.StatusApproved,
		},
		{
			ID: "DEV-PENDING", ExamType: examDev, Domain: "Security",
			QuestionType: domain.TypeSingleChoice, QuestionText: "Not reviewed yet.",
			Options:        []domain.Option{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}},
			CorrectAnswers: []string{"A"}, Explanation: "because", Status: "pending",
		},
	}
}
