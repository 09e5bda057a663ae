package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vedion/refurbed-sync/pkg/errors"
	"github.com/vedion/refurbed-sync/pkg/logger"
)

const maxErrorBodyBytes = 2048

// Params configures a JSON client for one remote service.
type Params struct {
	ServiceName string
	BaseURL     string
	Timeout     time.Duration
	Headers     map[string]string
	Logger      *logger.Logger
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client speaks JSON to a single remote API behind a circuit breaker.
type Client struct {
	service string
	baseURL string
	headers map[string]string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

func New(params Params) (*Client, error) {
	if params.ServiceName == "" {
		return nil, fmt.Errorf("service name required")
	}
	if params.BaseURL == "" {
		return nil, fmt.Errorf("base URL required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Timeout <= 0 {
		params.Timeout = 30 * time.Second
	}

	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: params.Timeout}
	}

	log := params.Logger
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        params.ServiceName,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ctx := log.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			log.Warn(ctx, "circuit breaker state changed")
		},
	})

	return &Client{
		service: params.ServiceName,
		baseURL: params.BaseURL,
		headers: params.Headers,
		http:    httpClient,
		breaker: breaker,
		log:     params.Logger,
	}, nil
}

// DoJSON sends body (when non-nil) as JSON to baseURL+path and decodes the
// response into out (when non-nil). Any status outside 2xx becomes a
// StatusError carrying a truncated body.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", c.service, err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("building %s request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	raw, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("calling %s: %w", c.service, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading %s response: %w", c.service, err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &errors.StatusError{
				Service: c.service,
				Status:  resp.StatusCode,
				Body:    truncate(data),
			}
		}
		return data, nil
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return errors.Wrap(errors.CodeDependency, err, c.service+" circuit open")
	}
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	data := raw.([]byte)
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", c.service, err)
	}
	return nil
}

func truncate(data []byte) string {
	if len(data) > maxErrorBodyBytes {
		data = data[:maxErrorBodyBytes]
	}
	return string(data)
}
