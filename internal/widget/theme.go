package widget

import (
	"strings"

	"github.com/swelljoe/wthr-widget/internal/prefs"
	"github.com/swelljoe/wthr-widget/internal/weather"
)

// DarkModeClass is applied to the page body whenever dark mode is on.
const DarkModeClass = "darkmode"

// Theme is the page-level visual theme.
type Theme struct {
	Dark       bool   `json:"dark"`
	Background string `json:"background,omitempty"`
}

// BodyClass renders the theme as a class attribute value.
func (t Theme) BodyClass() string {
	classes := make([]string, 0, 2)
	if t.Dark {
		classes = append(classes, DarkModeClass)
	}
	if t.Background != "" {
		classes = append(classes, t.Background)
	}
	return strings.Join(classes, " ")
}

type ThemeSink struct {
	theme Theme
}

func NewThemeSink() *ThemeSink {
	return &ThemeSink{}
}

func (t *ThemeSink) Name() string { return "theme" }

func (t *ThemeSink) Consume(out weather.Outcome, p prefs.Preferences) error {
	bg, _ := out.Condition().Background()
	t.theme = Theme{Dark: p.DarkMode, Background: bg}
	return nil
}

func (t *ThemeSink) Theme() Theme {
	return t.theme
}
