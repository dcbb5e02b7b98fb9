// Package widget fans a weather outcome out to the render, sound and theme
// sinks of one visitor session.
package widget

import (
	"errors"
	"fmt"

	"github.com/swelljoe/wthr-widget/internal/logger"
	"github.com/swelljoe/wthr-widget/internal/prefs"
	"github.com/swelljoe/wthr-widget/internal/weather"
)

// Sink consumes a resolved outcome and produces one kind of effect.
type Sink interface {
	Name() string
	Consume(out weather.Outcome, p prefs.Preferences) error
}

// Dispatch hands out to every sink. A sink that fails or panics is logged
// and counted; the remaining sinks still run. The joined errors are returned.
func Dispatch(out weather.Outcome, p prefs.Preferences, sinks ...Sink) error {
	var errs []error
	for _, s := range sinks {
		if err := consumeSafely(s, out, p); err != nil {
			sinkMetrics().failures.WithLabelValues(s.Name()).Inc()
			logger.GetLogger().Errorw("Sink failed",
				"sink", s.Name(),
				"outcome", out.Kind().String(),
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func consumeSafely(s Sink, out weather.Outcome, p prefs.Preferences) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s sink panicked: %v", s.Name(), r)
		}
	}()
	return s.Consume(out, p)
}
