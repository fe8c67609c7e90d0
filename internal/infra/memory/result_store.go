package memory

import (
	"context"
	"sync"
	"time"

	"cert-quiz-service/internal/domain"
)

// ResultStore is an in-memory implementation of app.ResultStore.
type ResultStore struct {
	mu sync.RWMutex
	// sessions keyed by userID; progress keyed by userID then examType.
	sessions map[string][]domain.QuizSession
	progress map[string]map[string]domain.UserProgress
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		sessions: make(map[string][]domain.QuizSession),
		progress: make(map[string]map[string]domain.UserProgress),
	}
}

func (s *ResultStore) SaveResult(_ context.Context, session domain.QuizSession, progress domain.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = append(s.sessions[session.UserID], session)
	byExam, ok := s.progress[progress.UserID]
	if !ok {
		byExam = make(map[string]domain.UserProgress)
		s.progress[progress.UserID] = byExam
	}
	byExam[progress.ExamType] = progress
	return nil
}

func (s *ResultStore) GetProgress(_ context.Context, userID, examType string) (domain.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if byExam, ok := s.progress[userID]; ok {
		if p, ok := byExam[examType]; ok {
			return p, nil
		}
	}
	return domain.UserProgress{}, domain.ErrProgressNotFound
}

func (s *ResultStore) PurgeExpiredSessions(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for userID, sessions := range s.sessions {
		kept := sessions[:0]
		for _, session := range sessions {
			if session.ExpiresAt.After(now) {
				kept = append(kept, session)
			} else {
				purged++
			}
		}
		if len(kept) == 0 {
			delete(s.sessions, userID)
		} else {
			s.sessions[userID] = kept
		}
	}
	return purged, nil
}

// Sessions returns the stored sessions for a user, newest last.
func (s *ResultStore) Sessions(userID string) []domain.QuizSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.QuizSession, len(s.sessions[userID]))
	copy(out, s.sessions[userID])
	return out
}
