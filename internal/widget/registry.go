package widget

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swelljoe/wthr-widget/internal/logger"
	"github.com/swelljoe/wthr-widget/internal/prefs"
)

// Registry holds the in-memory sessions keyed by visitor id.
type Registry struct {
	store prefs.Store
	opts  Options
	log   *zap.SugaredLogger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(store prefs.Store, opts Options) *Registry {
	return &Registry{
		store:    store,
		opts:     opts,
		log:      logger.GetLogger(),
		sessions: make(map[string]*Session),
	}
}

// Open returns the session for id. Unknown but well-formed ids are
// recreated with their stored preferences; anything else gets a fresh id.
func (r *Registry) Open(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		s.touch()
		return s, nil
	}
	r.mu.Unlock()

	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	p, err := prefs.Load(ctx, r.store, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another request may have opened the same id meanwhile.
	if s, ok := r.sessions[id]; ok {
		s.touch()
		return s, nil
	}
	s := newSession(id, r.store, p, r.opts)
	r.sessions[id] = s
	sinkMetrics().activeSessions.Set(float64(len(r.sessions)))
	r.log.Debugw("Session opened", "session", id, "dark_mode", p.DarkMode, "sound_on", p.SoundOn)
	return s, nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and stops their audio.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	var evicted []*Session
	for id, s := range r.sessions {
		if s.lastSeen().Before(cutoff) {
			evicted = append(evicted, s)
			delete(r.sessions, id)
		}
	}
	sinkMetrics().activeSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()

	for _, s := range evicted {
		s.close()
	}
	if len(evicted) > 0 {
		r.log.Infow("Evicted idle sessions", "count", len(evicted))
	}
	return len(evicted)
}

// RunSweeper sweeps every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(maxIdle)
		}
	}
}
