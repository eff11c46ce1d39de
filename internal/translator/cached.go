package translator

import (
	"context"

	"go.uber.org/zap"

	"github.com/doctran/doctran/internal/store"
)

// singleTranslator matches the narrow per-text translation contract used by
// the line-wise orchestrator.
type singleTranslator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Cached wraps a translator with the sqlite translation memory. Because the
// orchestrator translates line by line, repeated lines (headers, footers,
// boilerplate) across documents hit the cache instead of the network.
type Cached struct {
	next  singleTranslator
	db    *store.Store
	name  string
	fuzzy float64
	log   *zap.Logger
}

// NewCached builds the decorator. fuzzyThreshold > 0 additionally enables
// similarity lookup, which catches OCR'd repeats of the same physical line
// that differ by a character or two.
func NewCached(next singleTranslator, db *store.Store, serviceName string, fuzzyThreshold float64, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{next: next, db: db, name: serviceName, fuzzy: fuzzyThreshold, log: log}
}

func (c *Cached) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if c.db != nil {
		if cached, found, err := c.db.GetCachedTranslation(ctx, text, sourceLang, targetLang); err == nil && found {
			c.log.Debug("translation memory hit",
				zap.String("source", sourceLang), zap.String("target", targetLang))
			return cached, nil
		}
		if c.fuzzy > 0 {
			if cached, found, err := c.db.FuzzyGetCachedTranslation(ctx, text, sourceLang, targetLang, c.fuzzy); err == nil && found {
				c.log.Debug("fuzzy translation memory hit",
					zap.String("source", sourceLang), zap.String("target", targetLang))
				return cached, nil
			}
		}
	}

	translated, err := c.next.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}

	if c.db != nil {
		if err := c.db.SaveToMemory(ctx, text, sourceLang, targetLang, translated, c.name); err != nil {
			c.log.Debug("failed to save to translation memory", zap.Error(err))
		}
	}
	return translated, nil
}
