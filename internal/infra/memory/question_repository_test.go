package memory

import (
	"context"
	"testing"
	"time"

	"cert-quiz-service/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticQuestionLoader(map[string][]domain.Question{
			"Developer-Associate": samplePool(),
		}),
	}
	repo := NewQuestionRepository(loader, time.Minute)

	if _, err := repo.GetPool(context.Background(), "Developer-Associate"); err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetPool(context.Background(), "Developer-Associate"); err != nil {
		t.Fatalf("get pool 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuestionRepositoryGetByIDs(t *testing.T) {
	repo := NewQuestionRepository(NewStaticQuestionLoader(map[string][]domain.Question{
		"Developer-Associate": samplePool(),
	}), time.Minute)

	questions, err := repo.GetByIDs(context.Background(), "Developer-Associate", []string{"DEV-2", "DEV-MISSING"})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(questions) != 1 || questions[0].ID != "DEV-2" {
		t.Fatalf("expected only DEV-2 resolved, got %+v", questions)
	}
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestions(ctx context.Context, examType string) ([]domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestions(ctx, examType)
}

func samplePool() []domain.Question {
	return []domain.Question{
		{
			ID: "DEV-1", ExamType: "Developer-Associate", Domain: "Security",
			QuestionType: domain.TypeSingleChoice, QuestionText: "Pick A.",
			Options:        []domain.Option{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}},
			CorrectAnswers: []string{"A"}, Explanation: "because", Status: domain.StatusApproved,
		},
		{
			ID: "DEV-2", ExamType: "Developer-Associate", Domain: "Deployment",
			QuestionType: domain.TypeTrueFalse, QuestionText: "True?",
			Options:        []domain.Option{{ID: "A", Text: "True"}, {ID: "B", Text: "False"}},
			CorrectAnswers: []string{"A"}, Explanation: "because", Status: domain.StatusApproved,
		},
	}
}
