package widget

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/swelljoe/wthr-widget/internal/audio"
	"github.com/swelljoe/wthr-widget/internal/prefs"
	"github.com/swelljoe/wthr-widget/internal/weather"
)

// Runner performs one weather lookup.
type Runner interface {
	Run(ctx context.Context, rawQuery string) weather.Outcome
}

// Options configures the sinks of new sessions.
type Options struct {
	IconBaseURL   string
	SoundBasePath string
	Volume        float64
	// NewPlayer builds the playback handle; defaults to audio.NewHandle.
	NewPlayer func() audio.Player
}

// View is a snapshot of everything a session currently presents.
type View struct {
	// Outcome is the kind of the applied outcome, empty before the first lookup.
	Outcome     string            `json:"outcome,omitempty"`
	Query       string            `json:"query"`
	Card        Card              `json:"card"`
	Theme       Theme             `json:"theme"`
	Audio       audio.State       `json:"audio"`
	Preferences prefs.Preferences `json:"preferences"`
}

// Session is one visitor's widget: its sinks, the latest applied outcome and
// its preferences. Lookups run outside the lock; results are applied in
// sequence order and stale ones are dropped.
type Session struct {
	ID string

	store  prefs.Store
	issued atomic.Uint64
	seen   atomic.Int64

	mu         sync.Mutex
	applied    uint64
	prefs      prefs.Preferences
	outcome    weather.Outcome
	hasOutcome bool
	query      string

	render *RenderSink
	sound  *SoundSink
	theme  *ThemeSink
}

func newSession(id string, store prefs.Store, p prefs.Preferences, opts Options) *Session {
	newPlayer := opts.NewPlayer
	if newPlayer == nil {
		newPlayer = func() audio.Player { return audio.NewHandle() }
	}

	s := &Session{
		ID:     id,
		store:  store,
		prefs:  p,
		render: NewRenderSink(opts.IconBaseURL),
		sound:  NewSoundSink(newPlayer(), opts.SoundBasePath, opts.Volume),
		theme:  NewThemeSink(),
	}
	s.theme.theme = Theme{Dark: p.DarkMode}
	s.touch()
	return s
}

func (s *Session) touch() {
	s.seen.Store(time.Now().UnixNano())
}

func (s *Session) lastSeen() time.Time {
	return time.Unix(0, s.seen.Load())
}

// Begin issues the sequence number for a new lookup.
func (s *Session) Begin() uint64 {
	s.touch()
	return s.issued.Add(1)
}

// Apply fans out to all three sinks unless a later lookup was already
// applied. It reports whether the outcome was applied.
func (s *Session) Apply(seq uint64, query string, out weather.Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		sinkMetrics().staleDiscarded.Inc()
		return false
	}
	s.applied = seq
	s.outcome = out
	s.hasOutcome = true
	s.query = query

	_ = Dispatch(out, s.prefs, s.render, s.sound, s.theme)
	return true
}

// Search runs one lookup and applies it. The view reflects whatever outcome
// is applied afterwards, which is a newer one when this lookup went stale.
func (s *Session) Search(ctx context.Context, r Runner, rawQuery string) (View, bool) {
	seq := s.Begin()
	out := r.Run(ctx, rawQuery)
	applied := s.Apply(seq, rawQuery, out)
	return s.View(), applied
}

// HasOutcome reports whether any lookup has been applied yet.
func (s *Session) HasOutcome() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasOutcome
}

// Preferences returns the current toggles.
func (s *Session) Preferences() prefs.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// UpdatePreferences derives new toggles with change, persists them and
// re-applies the displayed outcome to the sinks whose toggle changed.
// On a store failure the session keeps its previous toggles.
func (s *Session) UpdatePreferences(ctx context.Context, change func(prefs.Preferences) prefs.Preferences) (prefs.Preferences, error) {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()

	next := change(s.prefs)
	if err := prefs.Save(ctx, s.store, s.ID, next); err != nil {
		return s.prefs, err
	}

	prev := s.prefs
	s.prefs = next

	var sinks []Sink
	if prev.DarkMode != next.DarkMode {
		sinks = append(sinks, s.theme)
	}
	if prev.SoundOn != next.SoundOn {
		sinks = append(sinks, s.sound)
	}
	if len(sinks) == 0 {
		return next, nil
	}

	if s.hasOutcome {
		_ = Dispatch(s.outcome, next, sinks...)
		return next, nil
	}

	// Nothing displayed yet: only the dark class and muting apply.
	s.theme.theme = Theme{Dark: next.DarkMode}
	if !next.SoundOn {
		s.sound.Stop()
	}
	return next, nil
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		Query:       s.query,
		Card:        s.render.Card(),
		Theme:       s.theme.Theme(),
		Audio:       s.sound.State(),
		Preferences: s.prefs,
	}
	if s.hasOutcome {
		v.Outcome = s.outcome.Kind().String()
	}
	return v
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sound.Stop()
}
