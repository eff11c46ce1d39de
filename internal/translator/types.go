// Package translator defines the translation service contract and its
// concrete backends (Google Cloud Translation, MyMemory, DeepL,
// LibreTranslate, Ollama), plus the fallback chain and caching decorator
// that turn a set of services into a single translate call.
package translator

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a systemic backend failure: every configured service
// is unreachable or rejected the request outright. Callers treat it as fatal
// rather than a per-text failure.
var ErrUnavailable = errors.New("translation services unavailable")

// ServiceConfig carries per-service credentials and tuning. It is populated
// from explicit configuration, never from ambient process state.
type ServiceConfig struct {
	Credentials string        `mapstructure:"credentials" json:"credentials"`
	APIKey      string        `mapstructure:"api_key" json:"api_key"`
	Model       string        `mapstructure:"model" json:"model"`
	BaseURL     string        `mapstructure:"base_url" json:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout" json:"timeout"`
	ProjectID   string        `mapstructure:"project_id" json:"project_id"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type ServiceResult struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	Confidence     float64           `json:"confidence"`
	Metadata       map[string]string `json:"metadata"`
	Latency        time.Duration     `json:"latency"`
	Error          string            `json:"error,omitempty"`
}

type TranslationService interface {
	Name() string
	Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
	SupportedLanguages(ctx context.Context) ([]string, error)
}
