package weather

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/swelljoe/wthr-widget/internal/logger"
)

// Fetcher issues the single outbound request of a lookup.
type Fetcher interface {
	FetchCurrent(ctx context.Context, city string) (*CurrentResponse, error)
}

// Pipeline turns a free-text city query into an Outcome.
type Pipeline struct {
	fetcher     Fetcher
	defaultCity string
	metrics     *pipelineMetrics
	log         *zap.SugaredLogger
}

// NewPipeline creates a pipeline. An empty defaultCity makes empty queries
// resolve to EmptyQuery instead of a lookup.
func NewPipeline(fetcher Fetcher, defaultCity string) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		defaultCity: strings.TrimSpace(defaultCity),
		metrics:     newPipelineMetrics(),
		log:         logger.GetLogger(),
	}
}

// Normalize trims raw and substitutes fallback when nothing is left.
// ok is false only when both are empty.
func Normalize(raw, fallback string) (city string, ok bool) {
	city = strings.TrimSpace(raw)
	if city == "" {
		city = strings.TrimSpace(fallback)
	}
	return city, city != ""
}

// Run performs one lookup. It never returns an error: every failure
// collapses into NotFound.
func (p *Pipeline) Run(ctx context.Context, rawQuery string) Outcome {
	out := p.run(ctx, rawQuery)
	p.metrics.lookups.WithLabelValues(out.Kind().String()).Inc()
	return out
}

func (p *Pipeline) run(ctx context.Context, rawQuery string) Outcome {
	city, ok := Normalize(rawQuery, p.defaultCity)
	if !ok {
		return EmptyQuery()
	}

	start := time.Now()
	resp, err := p.fetcher.FetchCurrent(ctx, city)
	p.metrics.requestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.log.Warnw("Weather lookup failed", "city", city, "error", err)
		return NotFound()
	}

	return transform(resp)
}

func transform(resp *CurrentResponse) Outcome {
	if resp == nil || resp.Cod != StatusSuccess || len(resp.Weather) == 0 {
		return NotFound()
	}

	w := resp.Weather[0]
	return Success(Current{
		City:        resp.Name,
		Country:     resp.Sys.Country,
		Condition:   ParseCondition(w.Main),
		Main:        w.Main,
		Description: w.Description,
		Icon:        w.Icon,
		TempC:       roundHalfUp(resp.Main.Temp),
		MinC:        roundHalfUp(resp.Main.TempMin),
		MaxC:        roundHalfUp(resp.Main.TempMax),
	})
}

// roundHalfUp rounds .5 toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
