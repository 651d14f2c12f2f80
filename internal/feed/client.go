package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// MetricsInterface defines the metrics the client reports.
type MetricsInterface interface {
	FetchRetriesInc()
	FetchFailuresInc()
}

// FetchError reports an upstream fetch that failed after all retry
// attempts.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("feed fetch failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPStatusError reports a non-200 upstream response.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %d", e.StatusCode)
}

// Options configures the upstream client.
type Options struct {
	URL       string
	Timeout   time.Duration
	Attempts  int
	Backoff   time.Duration
	RateLimit float64 // requests per second
	UserAgent string
}

type Client struct {
	url      string
	attempts int
	wait     time.Duration
	rest     *resty.Client
	limiter  *rate.Limiter
	metrics  MetricsInterface
	logger   zerolog.Logger
}

func NewClient(opts Options) *Client {
	r := resty.New()
	if opts.Timeout > 0 {
		r.SetTimeout(opts.Timeout)
	} else {
		r.SetTimeout(8 * time.Second) // default fallback
	}
	if opts.UserAgent != "" {
		r.SetHeader("User-Agent", opts.UserAgent)
	}
	r.SetHeader("Accept", "application/json")

	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	wait := opts.Backoff
	if wait <= 0 {
		wait = time.Second
	}
	rps := opts.RateLimit
	if rps <= 0 {
		rps = 2.0
	}

	return &Client{
		url:      opts.URL,
		attempts: attempts,
		wait:     wait,
		rest:     r,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		logger:   log.With().Str("component", "feed").Logger(),
	}
}

// SetMetrics attaches the metrics sink.
func (c *Client) SetMetrics(m MetricsInterface) {
	c.metrics = m
}

// FetchHistory downloads the draw history and returns it in
// chronological order (oldest first).
func (c *Client) FetchHistory(ctx context.Context) ([]DrawRecord, error) {
	var draws []DrawRecord
	attempt := 0

	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		attempt++
		if attempt > 1 {
			c.logger.Warn().Int("attempt", attempt).Msg("retrying feed fetch")
			if c.metrics != nil {
				c.metrics.FetchRetriesInc()
			}
		}

		resp, err := c.rest.R().SetContext(ctx).Get(c.url)
		if err != nil {
			return err
		}
		if resp.StatusCode() != 200 {
			return &HTTPStatusError{StatusCode: resp.StatusCode()}
		}

		decoded, err := DecodeHistory(resp.Body())
		if err != nil {
			return err
		}
		draws = decoded
		return nil
	}

	strategy := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.wait), uint64(c.attempts-1))
	if err := backoff.Retry(operation, backoff.WithContext(strategy, ctx)); err != nil {
		if c.metrics != nil {
			c.metrics.FetchFailuresInc()
		}
		var shapeErr *DataShapeError
		if errors.As(err, &shapeErr) {
			return nil, shapeErr
		}
		return nil, &FetchError{URL: c.url, Attempts: attempt, Err: err}
	}

	return draws, nil
}
