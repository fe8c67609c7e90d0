package app

import (
	"sync"

	"cert-quiz-service/internal/domain"
)

// ProgressFeed fans out progress updates to per-user subscribers. Scoring
// publishes the fresh aggregate here so connected clients see their stats
// move without polling.
type ProgressFeed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.UserProgress]struct{}
}

func NewProgressFeed() *ProgressFeed {
	return &ProgressFeed{
		subscribers: make(map[string]map[chan domain.UserProgress]struct{}),
	}
}

// Subscribe returns a channel receiving the user's progress updates. The
// caller must invoke the returned cancel function to avoid leaks.
func (f *ProgressFeed) Subscribe(userID string) (<-chan domain.UserProgress, func()) {
	ch := make(chan domain.UserProgress, 8)

	f.mu.Lock()
	subs, ok := f.subscribers[userID]
	if !ok {
		subs = make(map[chan domain.UserProgress]struct{})
		f.subscribers[userID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if subs, ok := f.subscribers[userID]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(f.subscribers, userID)
			}
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the update to every subscriber of the user. Slow
// consumers have their stale update dropped rather than blocking the caller.
func (f *ProgressFeed) Publish(progress domain.UserProgress) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[progress.UserID] {
		select {
		case ch <- progress:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- progress
		}
	}
}
