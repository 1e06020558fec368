package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Provider delivers a single-turn prompt to a generative-language API.
// Implementations report non-2xx provider responses as *ProviderError so
// the retry layer can classify them; any other error is a transport-level
// failure.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderError is a non-2xx response from the provider.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("provider returned status %d", e.StatusCode)
}

// Transient reports whether the failure is worth retrying. Exactly two
// status codes qualify: 503 (overloaded) and 500.
func (e *ProviderError) Transient() bool {
	return e.StatusCode == 503 || e.StatusCode == 500
}

const (
	maxProviderAttempts = 3

	// Returned when the provider answers 2xx but the extraction path
	// yields no text.
	placeholderResponse = "Sorry, I could not generate a response."
)

// RetryingClient wraps a Provider with bounded exponential-backoff retry.
// Transient failures are retried with 2s/4s/8s waits; any other status is
// terminal. A transport error is also terminal and skips the remaining
// retry budget, while an HTTP 500/503 body consumes it — the asymmetry
// mirrors the upstream failure policy and is kept on purpose (see
// DESIGN.md).
type RetryingClient struct {
	provider Provider
	attempts int
	sleep    func(time.Duration)
}

// NewRetryingClient wraps provider with the standard retry policy.
func NewRetryingClient(provider Provider) *RetryingClient {
	return &RetryingClient{
		provider: provider,
		attempts: maxProviderAttempts,
		sleep:    time.Sleep,
	}
}

// NewRetryingClientWithSleep is NewRetryingClient with an injected sleep
// func, so tests never wait real seconds.
func NewRetryingClientWithSleep(provider Provider, sleep func(time.Duration)) *RetryingClient {
	return &RetryingClient{provider: provider, attempts: maxProviderAttempts, sleep: sleep}
}

// Name returns the wrapped provider's name.
func (c *RetryingClient) Name() string {
	return c.provider.Name()
}

// Generate attempts the provider call up to the retry budget, masking
// transient failures.
func (c *RetryingClient) Generate(ctx context.Context, prompt string) (string, error) {
	for attempt := 1; attempt <= c.attempts; attempt++ {
		text, err := c.provider.Generate(ctx, prompt)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return placeholderResponse, nil
			}
			return text, nil
		}

		var perr *ProviderError
		if !errors.As(err, &perr) {
			log.Printf("ERROR: [Provider] %s transport failure (no retry): %v", c.provider.Name(), err)
			return "", err
		}
		if !perr.Transient() {
			log.Printf("WARN: [Provider] %s returned terminal status %d (no retry).", c.provider.Name(), perr.StatusCode)
			return "", err
		}
		if attempt == c.attempts {
			log.Printf("WARN: [Provider] %s still failing with status %d after %d attempts, giving up.",
				c.provider.Name(), perr.StatusCode, c.attempts)
			return "", err
		}

		wait := time.Duration(1<<uint(attempt)) * time.Second // 2s, 4s, 8s
		log.Printf("WARN: [Provider] %s returned status %d, retrying in %s (attempt %d/%d).",
			c.provider.Name(), perr.StatusCode, wait, attempt, c.attempts)
		c.sleep(wait)
	}
	// Unreachable: the loop always returns.
	return "", errors.New("provider retry budget exhausted")
}
