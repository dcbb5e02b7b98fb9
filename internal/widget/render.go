package widget

import (
	"github.com/swelljoe/wthr-widget/internal/prefs"
	"github.com/swelljoe/wthr-widget/internal/weather"
)

// Fixed card messages.
const (
	MessageNotFound   = "City not found"
	MessageEmptyQuery = "Please enter a city name"
)

// Card is the human-readable weather card.
type Card struct {
	Error       string `json:"error,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	Title       string `json:"title,omitempty"`
	Condition   string `json:"condition,omitempty"`
	Description string `json:"description,omitempty"`
	IconURL     string `json:"icon_url,omitempty"`
	TempC       int    `json:"temp_c"`
	MinC        int    `json:"min_c"`
	MaxC        int    `json:"max_c"`
	// Render increments on every render so the page can restart the card animation.
	Render int `json:"render"`
}

// IsEmpty reports whether nothing has been rendered yet.
func (c Card) IsEmpty() bool {
	return c.Render == 0
}

// RenderSink builds the card. Not safe for concurrent use; the owning
// session serializes access.
type RenderSink struct {
	iconBaseURL string
	card        Card
}

func NewRenderSink(iconBaseURL string) *RenderSink {
	return &RenderSink{iconBaseURL: iconBaseURL}
}

func (r *RenderSink) Name() string { return "render" }

func (r *RenderSink) Consume(out weather.Outcome, _ prefs.Preferences) error {
	r.card = BuildCard(out, r.iconBaseURL, r.card.Render+1)
	return nil
}

// Card returns the last rendered card.
func (r *RenderSink) Card() Card {
	return r.card
}

// BuildCard maps an outcome to a card.
func BuildCard(out weather.Outcome, iconBaseURL string, render int) Card {
	switch out.Kind() {
	case weather.OutcomeEmptyQuery:
		return Card{Error: MessageEmptyQuery, Render: render}
	case weather.OutcomeNotFound:
		return Card{Error: MessageNotFound, Render: render}
	}

	cur, _ := out.Current()
	return Card{
		Emoji:       cur.Condition.Emoji(),
		Title:       cur.City + ", " + cur.Country,
		Condition:   cur.Main,
		Description: cur.Description,
		IconURL:     weather.IconURL(iconBaseURL, cur.Icon),
		TempC:       cur.TempC,
		MinC:        cur.MinC,
		MaxC:        cur.MaxC,
		Render:      render,
	}
}
