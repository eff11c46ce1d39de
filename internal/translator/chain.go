package translator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/doctran/doctran/internal/validator"
)

// ChainConfig tunes the fallback chain.
type ChainConfig struct {
	// Attempts is the total number of tries per service, including the
	// first. Values below 1 are treated as 1.
	Attempts int
	// RetryDelay is the pause between attempts on the same service.
	RetryDelay time.Duration
	// SkipValidation disables target-language verification of results.
	SkipValidation bool
}

// Chain tries a list of translation services in order and returns the first
// usable result. All retry and failover policy for a single text lives here;
// callers such as the line-wise orchestrator issue exactly one Translate call
// per text and rely on the chain for resilience.
type Chain struct {
	services []TranslationService
	cfg      ServiceConfig
	config   ChainConfig
	val      *validator.Validator
	log      *zap.Logger
}

func NewChain(services []TranslationService, cfg ServiceConfig, config ChainConfig, log *zap.Logger) *Chain {
	if config.Attempts < 1 {
		config.Attempts = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Chain{services: services, cfg: cfg, config: config, log: log}
	if !config.SkipValidation {
		c.val = validator.New()
	}
	return c
}

// Translate implements the single-call translation contract over the service
// list. A result in the wrong language is kept as a fallback but the next
// service is still tried. The returned error wraps ErrUnavailable only when
// every service failed at the transport level, which callers treat as
// systemic backend unavailability.
func (c *Chain) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if len(c.services) == 0 {
		return "", fmt.Errorf("no translation services configured: %w", ErrUnavailable)
	}

	req := TranslateRequest{Text: text, SourceLang: sourceLang, TargetLang: targetLang}

	var fallback string
	var lastErr error
	allTransport := true

	for _, svc := range c.services {
		res, err := c.translateWithRetry(ctx, svc, req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			c.log.Debug("service failed", zap.String("service", svc.Name()), zap.Error(err))
			lastErr = err
			if !isTransportError(err) {
				allTransport = false
			}
			continue
		}
		allTransport = false

		if res.TranslatedText == "" {
			lastErr = fmt.Errorf("%s: empty translation", svc.Name())
			continue
		}

		if c.val != nil {
			if ok, verr := c.val.IsValid(res.TranslatedText, targetLang); !ok {
				c.log.Debug("result failed language validation",
					zap.String("service", svc.Name()), zap.Error(verr))
				if fallback == "" {
					fallback = res.TranslatedText
				}
				lastErr = fmt.Errorf("%s: %v", svc.Name(), verr)
				continue
			}
		}

		return res.TranslatedText, nil
	}

	if fallback != "" {
		// Wrong-language result beats no result.
		return fallback, nil
	}

	if allTransport {
		return "", fmt.Errorf("all %d services unreachable: %v: %w", len(c.services), lastErr, ErrUnavailable)
	}
	return "", fmt.Errorf("all %d services failed: %w", len(c.services), lastErr)
}

func (c *Chain) translateWithRetry(ctx context.Context, svc TranslationService, req TranslateRequest) (*ServiceResult, error) {
	var lastErr error
	for attempt := 0; attempt < c.config.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		res, err := svc.Translate(ctx, c.cfg, req)
		if err == nil && res != nil && res.Error == "" {
			return res, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("%s: %s", svc.Name(), res.Error)
		}
	}
	return nil, lastErr
}

// isTransportError reports whether err looks like a connectivity failure
// (dial/timeout) rather than an API-level rejection of this particular text.
func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
