// Package ai wraps the generative text service. Every call degrades: a
// missing key, an open breaker or a failed request yields the caller's
// original text (EnhanceEntry) or no insight (LocationInsight).
package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"io.winapps.starlight/internal/metrics"
	models "io.winapps.starlight/internal/models/account"
)

// ErrDisabled is returned by generators that have no credentials
var ErrDisabled = errors.New("ai: generator not configured")

// Link is a citation attached to a grounded answer
type Link struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Generation is one model answer
type Generation struct {
	Text  string
	Links []Link
}

// Request is one prompt to the model. Grounded asks the model to cite web sources.
type Request struct {
	Prompt   string
	Grounded bool
}

// Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, req Request) (*Generation, error)
}

// Insight is the location insight returned to clients
type Insight struct {
	Text  string `json:"text"`
	Links []Link `json:"links"`
}

// Service is the AI enhancement client used by the entry editor
type Service struct {
	gen     Generator
	breaker *gobreaker.CircuitBreaker[*Generation]
	prompts prompts
	timeout time.Duration
	metrics metrics.Recorder
	logger  *zap.SugaredLogger
}

// NewService creates the service. gen may be nil, in which case every call
// falls back immediately.
func NewService(gen Generator, language string, rec metrics.Recorder, logger *zap.SugaredLogger) *Service {
	if rec == nil {
		rec = metrics.Nop{}
	}
	s := &Service{
		gen:     gen,
		prompts: promptsFor(language),
		timeout: 30 * time.Second,
		metrics: rec,
		logger:  logger,
	}
	s.breaker = gobreaker.NewCircuitBreaker[*Generation](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Infow("ai circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return s
}

// Enabled reports whether a generator is configured
func (s *Service) Enabled() bool {
	return s.gen != nil
}

func (s *Service) generate(ctx context.Context, req Request) (*Generation, error) {
	if s.gen == nil {
		return nil, ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.breaker.Execute(func() (*Generation, error) {
		return s.gen.Generate(ctx, req)
	})
}

// EnhanceEntry rewrites an observation note into polished prose. On any
// failure it returns text unchanged.
func (s *Service) EnhanceEntry(ctx context.Context, text, target string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	out, err := s.generate(ctx, Request{Prompt: s.prompts.enhance(text, target)})
	if err != nil {
		s.fallback("enhance", err)
		return text
	}
	enhanced := strings.TrimSpace(out.Text)
	if enhanced == "" {
		s.fallback("enhance", errors.New("empty response"))
		return text
	}
	return enhanced
}

// LocationInsight asks for astronomical and observing-condition facts about
// a place. ok is false when nothing could be produced.
func (s *Service) LocationInsight(ctx context.Context, location string, coords *models.Coordinates) (*Insight, bool) {
	if strings.TrimSpace(location) == "" && coords == nil {
		return nil, false
	}
	out, err := s.generate(ctx, Request{Prompt: s.prompts.location(location, coords), Grounded: true})
	if err != nil {
		s.fallback("location_insight", err)
		return nil, false
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		text = s.prompts.noInfo
	}
	return &Insight{Text: text, Links: dedupeLinks(out.Links)}, true
}

func (s *Service) fallback(op string, err error) {
	s.metrics.RecordAIFallback(op)
	if errors.Is(err, ErrDisabled) {
		s.logger.Debugw("ai disabled, returning fallback", "op", op)
		return
	}
	s.logger.Warnw("ai request failed, returning fallback", "op", op, "error", err)
}

// dedupeLinks keeps the first link for each URI, in order
func dedupeLinks(links []Link) []Link {
	out := make([]Link, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	for _, l := range links {
		if l.URI == "" {
			continue
		}
		if _, ok := seen[l.URI]; ok {
			continue
		}
		seen[l.URI] = struct{}{}
		out = append(out, l)
	}
	return out
}
