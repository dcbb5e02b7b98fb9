// Package audio models the single ambient playback handle a widget session
// owns. The server never decodes audio; the handle's state is what the page
// hands to the browser's <audio> element.
package audio

import (
	"errors"
	"sync"
)

// ErrNoSource is returned by Play when nothing is loaded.
var ErrNoSource = errors.New("audio: no source loaded")

// Player is an owned playback handle.
type Player interface {
	// Source returns the loaded clip, "" when cleared.
	Source() string
	// Load replaces the loaded clip and rewinds. Playback pauses until Play.
	Load(src string) error
	SetVolume(v float64)
	// Play starts looping playback of the loaded clip.
	Play() error
	// Stop pauses, rewinds and clears the source.
	Stop()
	State() State
}

// State is a snapshot of a handle.
type State struct {
	Source  string  `json:"source"`
	Playing bool    `json:"playing"`
	Loop    bool    `json:"loop"`
	Volume  float64 `json:"volume"`
	// Loads counts how many times a new clip was loaded.
	Loads int `json:"loads"`
}

// Handle is the in-memory Player.
type Handle struct {
	mu    sync.Mutex
	state State
}

// NewHandle returns a stopped handle at full volume.
func NewHandle() *Handle {
	return &Handle{state: State{Volume: 1, Loop: true}}
}

func (h *Handle) Source() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Source
}

func (h *Handle) Load(src string) error {
	if src == "" {
		return ErrNoSource
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.Source = src
	h.state.Playing = false
	h.state.Loads++
	return nil
}

func (h *Handle) SetVolume(v float64) {
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	h.mu.Lock()
	h.state.Volume = v
	h.mu.Unlock()
}

func (h *Handle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.Source == "" {
		return ErrNoSource
	}
	h.state.Playing = true
	return nil
}

func (h *Handle) Stop() {
	h.mu.Lock()
	h.state.Source = ""
	h.state.Playing = false
	h.mu.Unlock()
}

func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}
