package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"cert-quiz-service/internal/domain"
	"cert-quiz-service/internal/infra/memory"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionRepository caches question pools in Redis (hash per exam type) and
// falls back to a loader on cache miss.
// Questions are stored as: HSET questions:{examType} {questionID} {json}
type QuestionRepository struct {
	client *redis.Client
	loader memory.QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader memory.QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetPool(ctx context.Context, examType string) ([]domain.Question, error) {
	key := r.poolKey(examType)

	cached, err := r.client.HGetAll(ctx, key).Result()
	if err == nil && len(cached) > 0 {
		return decodePool(cached)
	}

	result, err, _ := r.sf.Do(examType, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := r.client.HGetAll(ctx, key).Result()
		if err == nil && len(cached) > 0 {
			return decodePool(cached)
		}

		questions, err := r.loader.LoadQuestions(ctx, examType)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return questions, nil
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		for _, q := range questions {
			data, err := json.Marshal(q)
			if err != nil {
				return nil, fmt.Errorf("marshal question %s: %w", q.ID, err)
			}
			pipe.HSet(ctx, key, q.ID, data)
		}
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) GetByIDs(ctx context.Context, examType string, ids []string) ([]domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	values, err := r.client.HMGet(ctx, r.poolKey(examType), ids...).Result()
	if err == nil {
		matched := make([]domain.Question, 0, len(ids))
		complete := true
		for _, v := range values {
			raw, ok := v.(string)
			if !ok {
				complete = false
				break
			}
			var q domain.Question
			if err := json.Unmarshal([]byte(raw), &q); err != nil {
				complete = false
				break
			}
			matched = append(matched, q)
		}
		if complete {
			return matched, nil
		}
	}

	// Cold or partially evicted cache: fill it via the pool path and match
	// from the loaded set. IDs absent from the store stay absent here.
	pool, err := r.GetPool(ctx, examType)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	matched := make([]domain.Question, 0, len(ids))
	for _, q := range pool {
		if _, ok := wanted[q.ID]; ok {
			matched = append(matched, q)
		}
	}
	return matched, nil
}

func (r *QuestionRepository) poolKey(examType string) string {
	return "questions:" + examType
}

func decodePool(cached map[string]string) ([]domain.Question, error) {
	questions := make([]domain.Question, 0, len(cached))
	for id, raw := range cached {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("decode cached question %s: %w", id, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
