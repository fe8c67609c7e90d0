package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"cert-quiz-service/internal/domain"
)

// QuestionRepository loads question content (from cache/backing store).
type QuestionRepository interface {
	// GetPool returns every approved question for the exam type.
	GetPool(ctx context.Context, examType string) ([]domain.Question, error)
	// GetByIDs returns the full records (answer keys included) for the given
	// question IDs. Missing IDs are simply absent from the result.
	GetByIDs(ctx context.Context, examType string, ids []string) ([]domain.Question, error)
}

// ResultStore persists quiz sessions and user progress. SaveResult must
// commit both records together where the backing store supports it.
type ResultStore interface {
	SaveResult(ctx context.Context, session domain.QuizSession, progress domain.UserProgress) error
	GetProgress(ctx context.Context, userID, examType string) (domain.UserProgress, error)
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// QuizService contains the quiz use cases: question selection and scoring.
type QuizService struct {
	questions QuestionRepository
	results   ResultStore
	feed      *ProgressFeed
	retention time.Duration
	clock     func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuizService(questions QuestionRepository, results ResultStore, feed *ProgressFeed, retention time.Duration) *QuizService {
	return &QuizService{
		questions: questions,
		results:   results,
		feed:      feed,
		retention: retention,
		clock:     time.Now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps and shuffles.
func NewQuizServiceWithClock(questions QuestionRepository, results ResultStore, feed *ProgressFeed, retention time.Duration, now func() time.Time, seed int64) *QuizService {
	s := NewQuizService(questions, results, feed, retention)
	s.clock = now
	s.rnd = rand.New(rand.NewSource(seed))
	return s
}

// SelectQuestions picks up to questionCount approved questions for the exam
// type, optionally restricted to the given domains, in random order. Answer
// keys and explanations are stripped before the questions are returned.
func (s *QuizService) SelectQuestions(ctx context.Context, examType string, questionCount int, domains []string) ([]domain.PublicQuestion, error) {
	if !domain.ValidExamType(examType) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownExamType, examType)
	}
	if questionCount < 1 || questionCount > domain.MaxQuestionCount {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuestionCount, questionCount)
	}
	for _, d := range domains {
		if !domain.ValidDomain(examType, d) {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDomain, d)
		}
	}

	pool, err := s.questions.GetPool(ctx, examType)
	if err != nil {
		return nil, err
	}
	eligible := filterEligible(pool, domains)
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w for %s", domain.ErrNoQuestions, examType)
	}
	if len(eligible) < questionCount {
		log.Printf("question pool for %s smaller than requested: have %d, want %d", examType, len(eligible), questionCount)
	}

	s.shuffle(eligible)

	n := questionCount
	if len(eligible) < n {
		n = len(eligible)
	}
	selected := make([]domain.PublicQuestion, 0, n)
	for _, q := range eligible[:n] {
		selected = append(selected, q.Public())
	}
	return selected, nil
}

// ScoreQuiz grades a submitted quiz against the authoritative question
// records, persists the session, and folds the score into the user's
// progress aggregate.
func (s *QuizService) ScoreQuiz(ctx context.Context, userID, examType string, questionIDs []string, userAnswers map[string][]string) (domain.ScoreResult, error) {
	if userID == "" {
		return domain.ScoreResult{}, domain.ErrMissingUser
	}
	if !domain.ValidExamType(examType) {
		return domain.ScoreResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownExamType, examType)
	}
	if len(questionIDs) == 0 {
		return domain.ScoreResult{}, domain.ErrEmptySubmission
	}

	fetched, err := s.questions.GetByIDs(ctx, examType, questionIDs)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	byID := make(map[string]domain.Question, len(fetched))
	for _, q := range fetched {
		byID[q.ID] = q
	}
	if len(byID) != len(questionIDs) {
		return domain.ScoreResult{}, fmt.Errorf("%w: want %d questions, resolved %d", domain.ErrQuestionSetMismatch, len(questionIDs), len(byID))
	}

	results := make([]domain.QuestionResult, 0, len(questionIDs))
	correctCount := 0
	domainScores := make(map[string]domain.DomainScore)
	for _, id := range questionIDs {
		q := byID[id]
		answers := userAnswers[id] // missing entry grades as an empty answer set
		correct := grade(q, answers)
		if correct {
			correctCount++
		}
		ds := domainScores[q.Domain]
		ds.Total++
		if correct {
			ds.Correct++
		}
		domainScores[q.Domain] = ds
		results = append(results, domain.QuestionResult{
			QuestionID:     q.ID,
			Domain:         q.Domain,
			IsCorrect:      correct,
			UserAnswers:    answers,
			CorrectAnswers: q.CorrectAnswers,
			Explanation:    q.Explanation,
		})
	}
	for name, ds := range domainScores {
		ds.Percentage = roundPct(ds.Correct, ds.Total)
		domainScores[name] = ds
	}
	scorePct := roundPct(correctCount, len(questionIDs))

	now := s.clock()
	session := domain.QuizSession{
		SessionID:       fmt.Sprintf("%s-%d", userID, now.UnixMilli()),
		UserID:          userID,
		ExamType:        examType,
		Results:         results,
		ScorePercentage: scorePct,
		TotalQuestions:  len(questionIDs),
		CorrectCount:    correctCount,
		CompletedAt:     now,
		ExpiresAt:       now.Add(s.retention),
	}

	progress, err := s.nextProgress(ctx, userID, examType, scorePct, domainScores, now)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	if err := s.results.SaveResult(ctx, session, progress); err != nil {
		return domain.ScoreResult{}, fmt.Errorf("save result: %w", err)
	}
	if s.feed != nil {
		s.feed.Publish(progress)
	}

	return domain.ScoreResult{
		SessionID:       session.SessionID,
		ExamType:        examType,
		TotalQuestions:  session.TotalQuestions,
		CorrectCount:    correctCount,
		ScorePercentage: scorePct,
		DomainScores:    domainScores,
		Results:         results,
	}, nil
}

// Progress returns the caller's aggregate for the exam type.
func (s *QuizService) Progress(ctx context.Context, userID, examType string) (domain.UserProgress, error) {
	if userID == "" {
		return domain.UserProgress{}, domain.ErrMissingUser
	}
	if !domain.ValidExamType(examType) {
		return domain.UserProgress{}, fmt.Errorf("%w: %q", domain.ErrUnknownExamType, examType)
	}
	return s.results.GetProgress(ctx, userID, examType)
}

// PurgeExpiredSessions removes sessions past their retention expiry.
func (s *QuizService) PurgeExpiredSessions(ctx context.Context) (int, error) {
	return s.results.PurgeExpiredSessions(ctx, s.clock())
}

// nextProgress folds the new score into the existing aggregate. The average
// is recomputed from the previous rounded average, matching the platform's
// historical behavior; domain scores are overwritten, not merged.
func (s *QuizService) nextProgress(ctx context.Context, userID, examType string, scorePct int, domainScores map[string]domain.DomainScore, now time.Time) (domain.UserProgress, error) {
	prev, err := s.results.GetProgress(ctx, userID, examType)
	switch {
	case err == nil:
		taken := prev.QuizzesTaken + 1
		avg := int(math.Round(float64(prev.AverageScore*prev.QuizzesTaken+scorePct) / float64(taken)))
		return domain.UserProgress{
			UserID:       userID,
			ExamType:     examType,
			QuizzesTaken: taken,
			AverageScore: avg,
			LastScore:    scorePct,
			DomainScores: domainScores,
			LastUpdated:  now,
		}, nil
	case errors.Is(err, domain.ErrProgressNotFound):
		return domain.UserProgress{
			UserID:       userID,
			ExamType:     examType,
			QuizzesTaken: 1,
			AverageScore: scorePct,
			LastScore:    scorePct,
			DomainScores: domainScores,
			LastUpdated:  now,
		}, nil
	default:
		return domain.UserProgress{}, fmt.Errorf("read progress: %w", err)
	}
}

func (s *QuizService) shuffle(pool []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Fisher-Yates over the whole eligible pool. Domain balance follows the
	// pool's natural distribution; there is no per-domain quota.
	s.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
}

func filterEligible(pool []domain.Question, domains []string) []domain.Question {
	var wanted map[string]struct{}
	if len(domains) > 0 {
		wanted = make(map[string]struct{}, len(domains))
		for _, d := range domains {
			wanted[d] = struct{}{}
		}
	}
	eligible := make([]domain.Question, 0, len(pool))
	for _, q := range pool {
		if q.Status != domain.StatusApproved {
			continue
		}
		if wanted != nil {
			if _, ok := wanted[q.Domain]; !ok {
				continue
			}
		}
		eligible = append(eligible, q)
	}
	return eligible
}

// grade applies the type-specific rule: single-answer questions require
// exactly one matching answer; multi-answer questions require exact set
// equality with no partial credit.
func grade(q domain.Question, answers []string) bool {
	switch q.QuestionType {
	case domain.TypeSingleChoice, domain.TypeTrueFalse:
		return len(answers) == 1 && len(q.CorrectAnswers) == 1 && answers[0] == q.CorrectAnswers[0]
	default:
		return equalStringSets(answers, q.CorrectAnswers)
	}
}

func equalStringSets(a, b []string) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func roundPct(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
