package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type DeepLService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewDeepLService builds a DeepL backend. Keys ending in ":fx" belong to the
// free tier, which lives on a separate host.
func NewDeepLService(apiKey string) *DeepLService {
	baseURL := "https://api.deepl.com"
	if strings.HasSuffix(apiKey, ":fx") {
		baseURL = "https://api-free.deepl.com"
	}
	return &DeepLService{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *DeepLService) Name() string {
	return "deepl"
}

func (s *DeepLService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	apiKey := s.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		result.Error = "DeepL API key required"
		return result, fmt.Errorf("DeepL API key required")
	}

	form := url.Values{}
	form.Set("text", req.Text)
	form.Set("target_lang", strings.ToUpper(req.TargetLang))
	if req.SourceLang != "" && req.SourceLang != "auto" {
		form.Set("source_lang", strings.ToUpper(req.SourceLang))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		fmt.Sprintf("%s/v2/translate", s.baseURL), strings.NewReader(form.Encode()))
	if err != nil {
		result.Error = fmt.Sprintf("failed to create request: %v", err)
		return result, err
	}

	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		result.Error = fmt.Sprintf("API returned status %d: %s", resp.StatusCode, string(body))
		return result, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var deeplResp struct {
		Translations []struct {
			DetectedSourceLanguage string `json:"detected_source_language"`
			Text                   string `json:"text"`
		} `json:"translations"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&deeplResp); err != nil {
		result.Error = fmt.Sprintf("failed to decode response: %v", err)
		return result, err
	}

	if len(deeplResp.Translations) == 0 || deeplResp.Translations[0].Text == "" {
		result.Error = "empty translation response"
		return result, fmt.Errorf("empty translation response")
	}

	result.TranslatedText = deeplResp.Translations[0].Text
	result.Confidence = 1.0
	result.Metadata = map[string]string{
		"detected_source": strings.ToLower(deeplResp.Translations[0].DetectedSourceLanguage),
	}

	return result, nil
}

func (s *DeepLService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("DeepL API key not configured")
	}
	return nil
}

func (s *DeepLService) SupportedLanguages(ctx context.Context) ([]string, error) {
	return []string{"en", "de", "fr", "es", "it", "nl", "pl", "pt", "ru", "ja", "zh", "uk", "cs", "da", "el", "fi", "hu", "ro", "sv", "tr"}, nil
}
