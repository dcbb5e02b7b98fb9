package weather

// Condition is the coarse weather category reported by the provider.
type Condition string

const (
	Clear        Condition = "Clear"
	Clouds       Condition = "Clouds"
	Rain         Condition = "Rain"
	Drizzle      Condition = "Drizzle"
	Thunderstorm Condition = "Thunderstorm"
	Snow         Condition = "Snow"
	Mist         Condition = "Mist"
	Fog          Condition = "Fog"
	Haze         Condition = "Haze"
	Smoke        Condition = "Smoke"
	Dust         Condition = "Dust"
	Sand         Condition = "Sand"
	Ash          Condition = "Ash"
	Squall       Condition = "Squall"
	Tornado      Condition = "Tornado"
	Unknown      Condition = "Unknown"
)

// FallbackEmoji is shown for conditions without a dedicated glyph.
const FallbackEmoji = "🌈"

var emojis = map[Condition]string{
	Clear:        "☀️",
	Clouds:       "☁️",
	Rain:         "🌧️",
	Drizzle:      "🌦️",
	Thunderstorm: "⛈️",
	Snow:         "❄️",
	Mist:         "🌫️",
	Fog:          "🌫️",
	Haze:         "🌫️",
	Smoke:        "🌫️",
	Dust:         "🌫️",
	Sand:         "🌫️",
	Ash:          "🌫️",
	Squall:       "🌬️",
	Tornado:      "🌪️",
}

// Clip file names, relative to the configured sound base path.
var soundClips = map[Condition]string{
	Clear:        "clear.mp3",
	Clouds:       "clouds.mp3",
	Rain:         "rain.mp3",
	Drizzle:      "rain.mp3",
	Thunderstorm: "thunder.mp3",
	Snow:         "snow.mp3",
}

var backgrounds = map[Condition]string{
	Clear:        "clear",
	Clouds:       "clouds",
	Rain:         "rain",
	Drizzle:      "rain",
	Thunderstorm: "thunderstorm",
	Snow:         "snow",
}

// ParseCondition maps a provider label to a Condition; unlisted labels map to Unknown.
func ParseCondition(s string) Condition {
	c := Condition(s)
	if _, ok := emojis[c]; ok {
		return c
	}
	return Unknown
}

// Emoji returns the glyph for c, FallbackEmoji when there is none.
func (c Condition) Emoji() string {
	if e, ok := emojis[c]; ok {
		return e
	}
	return FallbackEmoji
}

// SoundClip returns the ambient clip file for c.
func (c Condition) SoundClip() (string, bool) {
	clip, ok := soundClips[c]
	return clip, ok
}

// Background returns the page background class for c.
func (c Condition) Background() (string, bool) {
	bg, ok := backgrounds[c]
	return bg, ok
}
