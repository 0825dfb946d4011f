package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process sliding-log Store.
// Suitable for a single instance and for tests; use RedisStore when
// several server processes share the quota.
type MemoryStore struct {
	logs map[string]*attemptLog
	stop chan struct{}
	now  func() time.Time
	mu   sync.Mutex
	once sync.Once
}

// MemoryStoreOption configures a MemoryStore
type MemoryStoreOption func(*MemoryStore)

// WithStoreClock sets the time source used by the idle-key cleanup.
// Pass the same clock the Limiter uses so cleanup never contradicts Hit.
func WithStoreClock(now func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

type attemptLog struct {
	attempts []time.Time // ascending
	window   time.Duration
}

// NewMemoryStore creates a MemoryStore.
// A positive cleanupInterval starts a goroutine that drops idle keys; stop it with Close.
func NewMemoryStore(cleanupInterval time.Duration, opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		logs: make(map[string]*attemptLog),
		stop: make(chan struct{}),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if cleanupInterval > 0 {
		go s.cleanup(cleanupInterval)
	}
	return s
}

// Hit implements Store
func (s *MemoryStore) Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log, exists := s.logs[key]
	if !exists {
		log = &attemptLog{}
		s.logs[key] = log
	}
	log.window = window
	log.trim(now)

	res := Result{Count: len(log.attempts)}
	if res.Count < limit {
		log.attempts = append(log.attempts, now)
		res.Count++
		res.Admitted = true
	}
	res.Oldest = now
	if len(log.attempts) > 0 {
		res.Oldest = log.attempts[0]
	}
	return res, nil
}

// Close stops the cleanup goroutine
func (s *MemoryStore) Close() {
	s.once.Do(func() {
		close(s.stop)
	})
}

// trim drops attempts outside (now-window, now]
func (l *attemptLog) trim(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.attempts) && !l.attempts[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.attempts = append(l.attempts[:0], l.attempts[i:]...)
	}
}

// cleanup removes keys with no attempts left in their window
func (s *MemoryStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep drops keys with no attempts left in their window as of s.now
func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key, log := range s.logs {
		log.trim(now)
		if len(log.attempts) == 0 {
			delete(s.logs, key)
		}
	}
}
