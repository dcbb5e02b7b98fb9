package widget

import (
	"strings"

	"github.com/swelljoe/wthr-widget/internal/audio"
	"github.com/swelljoe/wthr-widget/internal/logger"
	"github.com/swelljoe/wthr-widget/internal/prefs"
	"github.com/swelljoe/wthr-widget/internal/weather"
)

// DefaultVolume is the ambient playback level.
const DefaultVolume = 0.29

// SoundSink drives the session's playback handle.
type SoundSink struct {
	player   audio.Player
	basePath string
	volume   float64
}

func NewSoundSink(player audio.Player, basePath string, volume float64) *SoundSink {
	return &SoundSink{player: player, basePath: basePath, volume: volume}
}

func (s *SoundSink) Name() string { return "sound" }

// Consume plays the clip mapped to the outcome's condition, loading it only
// when it differs from the loaded one. Anything else stops playback, as does
// an empty base path. Play failures are ignored since the browser may refuse
// autoplay anyway.
func (s *SoundSink) Consume(out weather.Outcome, p prefs.Preferences) error {
	clip, ok := out.Condition().SoundClip()
	if !p.SoundOn || !ok || s.basePath == "" {
		s.player.Stop()
		return nil
	}

	src := ClipURL(s.basePath, clip)
	if s.player.Source() != src {
		if err := s.player.Load(src); err != nil {
			s.player.Stop()
			return err
		}
	}
	s.player.SetVolume(s.volume)
	if err := s.player.Play(); err != nil {
		logger.GetLogger().Debugw("Ambient playback refused", "source", src, "error", err)
	}
	return nil
}

// ClipURL joins a clip name onto a base path or absolute URL.
func ClipURL(base, clip string) string {
	return strings.TrimRight(base, "/") + "/" + clip
}

// State returns the playback handle snapshot.
func (s *SoundSink) State() audio.State {
	return s.player.State()
}

// Stop releases the clip, used when a session is evicted.
func (s *SoundSink) Stop() {
	s.player.Stop()
}
