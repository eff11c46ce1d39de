package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/doctran/doctran/pkg/executor"
)

// TesseractConfig tunes local OCR.
type TesseractConfig struct {
	// Languages are Tesseract trained-data codes ("eng", "deu", ...).
	Languages []string
	// DPI used when rasterizing PDF pages. 300–500 gives good OCR quality.
	DPI int
}

// TesseractExtractor performs local OCR with Tesseract. Images go straight
// through gosseract; PDFs are first rasterized one image per page with
// pdftoppm and each page is OCR'd in order.
type TesseractExtractor struct {
	cfg  TesseractConfig
	exec executor.Executor
}

func NewTesseractExtractor(cfg TesseractConfig) *TesseractExtractor {
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"eng"}
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &TesseractExtractor{cfg: cfg, exec: executor.New()}
}

func (e *TesseractExtractor) Name() string {
	return "tesseract"
}

func (e *TesseractExtractor) SupportsFormat(ext string) bool {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf", "png", "jpg", "jpeg", "tif", "tiff":
		return true
	}
	return false
}

func (e *TesseractExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("file not found: %w", err)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !e.SupportsFormat(ext) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	if ext == "pdf" {
		return e.extractFromPDF(ctx, path)
	}
	return e.ocrImage(ctx, path)
}

func (e *TesseractExtractor) extractFromPDF(ctx context.Context, path string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "doctran-pages-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// pdftoppm writes page-1.png, page-2.png, ... zero-padded so a
	// lexical sort preserves page order.
	prefix := filepath.Join(tmpDir, "page")
	_, err = e.exec.Execute(ctx, "pdftoppm",
		"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to rasterize PDF: %w", err)
	}

	pages, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no pages produced from %s", path)
	}
	sort.Strings(pages)

	var texts []string
	for _, page := range pages {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		text, err := e.ocrImage(ctx, page)
		if err != nil {
			return "", fmt.Errorf("OCR failed on %s: %w", filepath.Base(page), err)
		}
		if strings.TrimSpace(text) != "" {
			texts = append(texts, text)
		}
	}

	return strings.Join(texts, "\n"), nil
}

func (e *TesseractExtractor) ocrImage(ctx context.Context, path string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.cfg.Languages...); err != nil {
		return "", fmt.Errorf("failed to set OCR languages: %w", err)
	}
	if err := client.SetImage(path); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}
