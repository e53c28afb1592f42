package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/nft-metadata-gateway/internal/logger"
)

// ErrResponseTooLarge is returned when a response body exceeds the caller's limit
var ErrResponseTooLarge = errors.New("response body too large")

// HTTPClient defines an interface for HTTP client operations to enable mocking
//
//go:generate mockgen -source=http.go -destination=../mocks/http.go -package=mocks -mock_names=HTTPClient=MockHTTPClient
type HTTPClient interface {
	// GetBytes performs a GET request and returns at most maxBytes of the response body
	// Rate limited responses (429) are retried with backoff until the context expires
	GetBytes(ctx context.Context, url string, maxBytes int64) ([]byte, error)

	// HeadNoRetry performs a single HEAD request
	// The caller is responsible for closing the response body
	HeadNoRetry(ctx context.Context, url string) (*http.Response, error)

	// GetResponseNoRetry performs a single GET request with optional headers
	// The caller is responsible for closing the response body
	GetResponseNoRetry(ctx context.Context, url string, headers map[string]string) (*http.Response, error)
}

// RetryConfig controls the backoff used for rate limited requests
type RetryConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// RealHTTPClient implements HTTPClient using the standard http package
type RealHTTPClient struct {
	client *http.Client
	retry  RetryConfig
}

// NewHTTPClient creates a new real HTTP client
func NewHTTPClient(timeout time.Duration, retry RetryConfig) HTTPClient {
	if retry.InitialInterval <= 0 {
		retry.InitialInterval = 200 * time.Millisecond
	}
	if retry.MaxInterval <= 0 {
		retry.MaxInterval = 2 * time.Second
	}
	if retry.MaxElapsedTime <= 0 {
		retry.MaxElapsedTime = 10 * time.Second
	}

	return &RealHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		retry: retry,
	}
}

// GetBytes performs a GET request with exponential backoff retry for rate limiting
func (c *RealHTTPClient) GetBytes(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	var respBody []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		resp, err := c.client.Do(req)
		if err != nil {
			// Network errors are not retried, the caller owns the deadline
			return backoff.Permanent(fmt.Errorf("failed to perform request: %w", err))
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logger.WarnCtx(ctx, "failed to close response body", zap.Error(err), zap.String("url", url))
			}
		}()

		if resp.StatusCode == http.StatusTooManyRequests {
			logger.WarnCtx(ctx, "rate limited, retrying with backoff", zap.String("url", url))
			return fmt.Errorf("rate limited (429), retrying")
		}

		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("unexpected status code %d", resp.StatusCode))
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to read response body: %w", err))
		}
		if int64(len(body)) > maxBytes {
			return backoff.Permanent(ErrResponseTooLarge)
		}

		respBody = body
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retry.InitialInterval
	b.MaxInterval = c.retry.MaxInterval
	b.MaxElapsedTime = c.retry.MaxElapsedTime
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return respBody, nil
}

// HeadNoRetry performs a HEAD request
// The caller is responsible for closing the response body
func (c *RealHTTPClient) HeadNoRetry(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}

	return resp, nil
}

// GetResponseNoRetry performs a GET request with the given headers
// The caller is responsible for closing the response body
func (c *RealHTTPClient) GetResponseNoRetry(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}

	return resp, nil
}

// IsTimeoutError reports whether err was caused by a deadline or a network timeout
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
