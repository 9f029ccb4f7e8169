package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/chat"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultIdleTimeout evicts sessions from memory after this long without a request.
	DefaultIdleTimeout = 30 * time.Minute

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = time.Minute

	restoreTimeout = 2 * time.Second
)

// Session is everything the server keeps for one browser.
type Session struct {
	ID           string
	Controller   *service.Controller
	Conversation *chat.Conversation

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Config struct {
	Deps         service.Dependencies
	Advisor      chat.Advisor
	HistoryTurns int
	IdleTimeout  time.Duration
}

// Registry hands out sessions by id. Sessions missing from memory are restored from
// the cache; every state change is written back to it.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cache    cache.SessionCache
	cfg      Config
	sfg      singleflight.Group
	logger   *zap.Logger

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewRegistry(cfg Config, c cache.SessionCache, logger *zap.Logger) *Registry {
	if c == nil {
		c = cache.NopCache{}
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		sessions:    make(map[string]*Session),
		cache:       c,
		cfg:         cfg,
		logger:      logger.Named("session"),
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.New().String()
}

// Get returns the session for id, restoring or creating it as needed.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if ok {
		s.touch(time.Now())
		return s, nil
	}

	// Prevents concurrent requests of one browser from restoring twice
	v, err, _ := r.sfg.Do(id, func() (interface{}, error) {
		r.mu.RLock()
		existing, ok := r.sessions[id]
		r.mu.RUnlock()
		if ok {
			return existing, nil
		}

		// shared by every waiter, so one caller going away must not fail the rest
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		defer cancel()

		var opts []service.Option
		state, err := r.cache.Get(lookupCtx, id)
		switch {
		case err == nil:
			opts = append(opts, service.WithState(*state))
		case errors.Is(err, cache.ErrCacheMiss):
		default:
			// an empty session here would overwrite the cached one on its first change
			r.logger.Error("session cache get failed", zap.String("session_id", id), zap.Error(err))
			return nil, fmt.Errorf("restore session: %w", err)
		}

		created := r.newSession(id, opts...)
		r.mu.Lock()
		r.sessions[id] = created
		r.mu.Unlock()
		return created, nil
	})
	if err != nil {
		return nil, err
	}

	s = v.(*Session)
	s.touch(time.Now())
	return s, nil
}

func (r *Registry) newSession(id string, opts ...service.Option) *Session {
	opts = append(opts, service.WithObserver(func(state domain.SessionState) {
		r.persist(id, state)
	}))
	return &Session{
		ID:           id,
		Controller:   service.NewController(r.cfg.Deps, opts...),
		Conversation: chat.NewConversation(r.cfg.Advisor, r.cfg.HistoryTurns),
		lastSeen:     time.Now(),
	}
}

func (r *Registry) persist(id string, state domain.SessionState) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.cache.Set(ctx, id, &state); err != nil {
		r.logger.Warn("session cache set failed", zap.String("session_id", id), zap.Error(err))
	}
}

// Len is the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(time.Now())
		case <-r.stopCleanup:
			return
		}
	}
}

// evictIdle drops idle sessions from memory. Their state stays in the cache.
func (r *Registry) evictIdle(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) > r.cfg.IdleTimeout {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Debug("evicted idle sessions", zap.Int("count", evicted))
	}
	return evicted
}

// Close stops the background cleanup and waits for it to finish
func (r *Registry) Close() error {
	close(r.stopCleanup)
	r.wg.Wait()
	return nil
}
