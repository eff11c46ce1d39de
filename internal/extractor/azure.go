package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// azureAPIVersion selects the Document Intelligence REST surface that
// carries the prebuilt-read model.
const azureAPIVersion = "2024-11-30"

// AzureConfig holds Document Intelligence credentials. Both fields are
// required; they come from explicit configuration, never read from the
// environment inside this package.
type AzureConfig struct {
	Endpoint string
	APIKey   string
	// PollInterval between result fetches; defaults to 2s.
	PollInterval time.Duration
	// PollTimeout bounds the whole analyze operation; defaults to 5m.
	PollTimeout time.Duration
}

// AzureExtractor extracts text with the Azure Document Intelligence
// prebuilt-read model: submit the document, poll the returned operation
// until it succeeds, and return the recognized content.
type AzureExtractor struct {
	cfg    AzureConfig
	client *http.Client
}

func NewAzureExtractor(cfg AzureConfig) (*AzureExtractor, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("azure credentials not configured: endpoint and api key are required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Minute
	}
	return &AzureExtractor{
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (e *AzureExtractor) Name() string {
	return "azure"
}

func (e *AzureExtractor) SupportsFormat(ext string) bool {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf", "png", "jpg", "jpeg", "bmp", "tif", "tiff":
		return true
	}
	return false
}

func (e *AzureExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	ext := filepath.Ext(path)
	if !e.SupportsFormat(ext) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	opLocation, err := e.submit(ctx, data)
	if err != nil {
		return "", err
	}

	return e.poll(ctx, opLocation)
}

// submit posts the document to the analyze endpoint and returns the
// Operation-Location URL to poll.
func (e *AzureExtractor) submit(ctx context.Context, data []byte) (string, error) {
	analyzeURL := fmt.Sprintf(
		"%s/documentintelligence/documentModels/prebuilt-read:analyze?api-version=%s",
		strings.TrimRight(e.cfg.Endpoint, "/"), azureAPIVersion)

	req, err := http.NewRequestWithContext(ctx, "POST", analyzeURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", e.cfg.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("analyze request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("analyze rejected with status %d: %s", resp.StatusCode, string(body))
	}

	opLocation := resp.Header.Get("Operation-Location")
	if opLocation == "" {
		return "", fmt.Errorf("analyze response missing Operation-Location header")
	}
	return opLocation, nil
}

// poll fetches the operation result until it leaves the running states.
func (e *AzureExtractor) poll(ctx context.Context, opLocation string) (string, error) {
	deadline := time.Now().Add(e.cfg.PollTimeout)

	for {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("analyze operation timed out after %s", e.cfg.PollTimeout)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(e.cfg.PollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, "GET", opLocation, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create poll request: %w", err)
		}
		req.Header.Set("Ocp-Apim-Subscription-Key", e.cfg.APIKey)

		resp, err := e.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("poll request failed: %w", err)
		}

		var opResp struct {
			Status        string `json:"status"`
			Error         *struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
			AnalyzeResult struct {
				Content string `json:"content"`
			} `json:"analyzeResult"`
		}

		err = json.NewDecoder(resp.Body).Decode(&opResp)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("failed to decode poll response: %w", err)
		}

		switch opResp.Status {
		case "succeeded":
			return opResp.AnalyzeResult.Content, nil
		case "failed":
			if opResp.Error != nil {
				return "", fmt.Errorf("analyze failed: %s: %s", opResp.Error.Code, opResp.Error.Message)
			}
			return "", fmt.Errorf("analyze failed")
		case "running", "notStarted":
			// keep polling
		default:
			return "", fmt.Errorf("unexpected operation status: %s", opResp.Status)
		}
	}
}
