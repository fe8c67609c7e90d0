package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cert-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore persists quiz sessions and user progress in Postgres. The
// session insert and the progress upsert share one transaction so a failed
// progress write never leaves an orphaned session behind.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, session domain.QuizSession, progress domain.UserProgress) error {
	sessionData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	progressData, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO quiz_sessions (user_id, session_id, exam_type, completed_at, expires_at, data)
		 VALUES ($1, $2, $3, $4, $5, $6::jsonb)`,
		session.UserID, session.SessionID, session.ExamType, session.CompletedAt, session.ExpiresAt, string(sessionData)); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	// Last-writer-wins on the aggregate, matching the store's single-item
	// upsert semantics.
	if _, err := tx.Exec(ctx,
		`INSERT INTO user_progress (user_id, exam_type, data, updated_at)
		 VALUES ($1, $2, $3::jsonb, $4)
		 ON CONFLICT (user_id, exam_type) DO UPDATE SET data=EXCLUDED.data, updated_at=EXCLUDED.updated_at`,
		progress.UserID, progress.ExamType, string(progressData), progress.LastUpdated); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit result: %w", err)
	}
	return nil
}

func (s *ResultStore) GetProgress(ctx context.Context, userID, examType string) (domain.UserProgress, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM user_progress WHERE user_id=$1 AND exam_type=$2`,
		userID, examType).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProgress{}, domain.ErrProgressNotFound
	}
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("load progress: %w", err)
	}
	var progress domain.UserProgress
	if err := json.Unmarshal(raw, &progress); err != nil {
		return domain.UserProgress{}, fmt.Errorf("unmarshal progress: %w", err)
	}
	return progress, nil
}

func (s *ResultStore) PurgeExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quiz_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
