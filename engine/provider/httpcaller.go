package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const defaultTimeout = 5 * time.Second

// HTTPOptions configures an HTTPCaller.
type HTTPOptions struct {
	// Timeout bounds each outbound request. Defaults to 5s.
	Timeout time.Duration

	// RetryMax is the number of same-call retries. Search lookups run with
	// 0 so a failed call is simply "no candidate".
	RetryMax int

	// RatePerSec paces requests to the provider. 0 disables pacing.
	RatePerSec float64
	RateBurst  int

	UserAgent string
}

// HTTPCaller issues JSON GET requests with pacing and a circuit breaker.
// All provider clients share this so transient provider trouble trips one
// breaker per provider instead of hammering a failing API.
type HTTPCaller struct {
	name      string
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	limiter   *rate.Limiter
	userAgent string
}

// NewHTTPCaller creates a caller for the named provider.
func NewHTTPCaller(name string, opts HTTPOptions) *HTTPCaller {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = nil
	rc.HTTPClient.Timeout = opts.Timeout

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}

	var limiter *rate.Limiter
	if opts.RatePerSec > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), burst)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "playtag/1.0"
	}

	return &HTTPCaller{
		name:      name,
		client:    rc.StandardClient(),
		breaker:   gobreaker.NewCircuitBreaker(settings),
		limiter:   limiter,
		userAgent: userAgent,
	}
}

// GetJSON fetches rawURL and decodes a 2xx body into out. It returns the
// HTTP status code so callers can map 404 to ErrNotFound themselves.
// Transport errors and 5xx responses count against the circuit breaker.
func (c *HTTPCaller) GetJSON(ctx context.Context, rawURL string, out any) (int, error) {
	body, status, err := c.get(ctx, rawURL)
	if err != nil {
		return status, err
	}
	if status < 200 || status >= 300 {
		return status, nil
	}
	if out == nil {
		return status, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return status, WrapErr(c.name, "decode", err)
	}
	return status, nil
}

// GetBytes fetches rawURL and returns the raw 2xx body.
func (c *HTTPCaller) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	body, status, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, WrapErr(c.name, "get", fmt.Errorf("%w: status %d", ErrUnavailable, status))
	}
	return body, nil
}

func (c *HTTPCaller) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, WrapErr(c.name, "pace", err)
		}
	}

	type response struct {
		body   []byte
		status int
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return response{body: body, status: resp.StatusCode}, nil
	})
	if err != nil {
		return nil, 0, WrapErr(c.name, "get", err)
	}

	resp := result.(response)
	return resp.body, resp.status, nil
}
