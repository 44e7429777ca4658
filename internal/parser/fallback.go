package parser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"docex/internal/port"
)

// circuitState tracks rate-limit backoff for a single parser.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackParser tries parsers in order, skipping those with open circuits.
// When every parser fails or is skipped and a final parser is set, the final
// parser's result is returned instead of an error. It implements
// port.DocumentParser.
type FallbackParser struct {
	parsers  []port.DocumentParser
	circuits []*circuitState
	names    []string
	final    port.DocumentParser
}

// NewFallbackParser creates a FallbackParser from an ordered list of parsers
// and their names. final may be nil.
func NewFallbackParser(parsers []port.DocumentParser, names []string, final port.DocumentParser) *FallbackParser {
	circuits := make([]*circuitState, len(parsers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackParser{
		parsers:  parsers,
		circuits: circuits,
		names:    names,
		final:    final,
	}
}

func (f *FallbackParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	out, err := f.parseChain(ctx, input)
	if err == nil || f.final == nil {
		return out, err
	}

	log.Warn().Err(err).Msg("parser.FallbackParser: all providers unavailable, using final parser")
	out, finalErr := f.final.Parse(ctx, input)
	if finalErr != nil {
		return nil, fmt.Errorf("final parser failed: %w (after: %v)", finalErr, err)
	}
	if out.FieldProvenance == nil {
		out.FieldProvenance = map[string]string{}
	}
	out.FieldProvenance["_source"] = "final_fallback"
	return out, nil
}

func (f *FallbackParser) parseChain(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	now := time.Now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, p := range f.parsers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			log.Debug().Str("provider", f.names[i]).Time("reset_at", resetAt).
				Msg("parser.FallbackParser: skipping provider, circuit open")
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := p.Parse(ctx, input)
		if err == nil {
			return out, nil
		}

		log.Warn().Str("provider", f.names[i]).Err(err).Msg("parser.FallbackParser: provider failed")
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil && len(f.parsers) == 0 {
		return nil, errors.New("no parsers configured")
	}

	if lastErr == nil || allRateLimited {
		retryAfter := time.Until(earliestReset)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all parsers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all parsers failed: %w", lastErr)
}
