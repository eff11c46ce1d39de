/*
Copyright © 2025 Doctran Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doctran/doctran/internal"
	"github.com/doctran/doctran/internal/config"
	"github.com/doctran/doctran/internal/detector"
	"github.com/doctran/doctran/internal/logger"
	"github.com/doctran/doctran/internal/orchestrator"
	"github.com/doctran/doctran/internal/store"
	"github.com/doctran/doctran/internal/translator"
)

var (
	inputFile     string
	outputFile    string
	targetLang    string
	mode          string
	extractorName string
	services      []string
	configPath    string

	dbPath         string
	noCache        bool
	fuzzyThreshold float64
	maxAttempts    int
	skipValidation bool
	debug          bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Extract text from a document and translate it",
	Long: `Extract text from a document and translate it into the target language.

Extraction backends (--extractor):
  tesseract   Local Tesseract OCR (PDFs and images)
  azure       Azure Document Intelligence (requires credentials)
  plaintext   Direct reading of .txt / .md files

Translation services (--services, tried in order until one succeeds):
  google          Google Cloud Translation (requires credentials)
  mymemory        MyMemory (free, rate-limited)
  deepl           DeepL (requires API key)
  libretranslate  Self-hosted LibreTranslate
  ollama          Local LLM via Ollama

Modes (--mode):
  multi    Detect and translate each line independently (default).
           Lines already in the target language, blank lines, and lines
           whose language cannot be detected are left untouched.
  single   Detect one language for the whole document and translate it
           in a single call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if debug {
			cfg.Debug = true
		}

		log, err := logger.New(cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer log.Sync()

		ctx := context.Background()

		// Step 1: extraction.
		ext, err := buildRegistry(cfg).Create(extractorName)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Extracting text with %s...\n", ext.Name())
		text, err := ext.ExtractText(ctx, inputFile)
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}

		// Step 2: translation pipeline.
		if !cmd.Flags().Changed("db") && cfg.Cache.Path != "" {
			dbPath = cfg.Cache.Path
		}
		var db *store.Store
		if !noCache && !cfg.Cache.Disabled && dbPath != "" {
			db, err = store.New(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
		}
		if fuzzyThreshold == 0 {
			fuzzyThreshold = cfg.Cache.FuzzyThreshold
		}

		serviceList, err := buildServices(cfg, services)
		if err != nil {
			return err
		}

		chain := translator.NewChain(serviceList, serviceConfig(cfg), translator.ChainConfig{
			Attempts:       maxAttempts,
			SkipValidation: skipValidation,
		}, log)

		var tr orchestrator.Translator = chain
		if db != nil {
			tr = translator.NewCached(chain, db, serviceList[0].Name(), fuzzyThreshold, log)
		}

		orch := orchestrator.New(detector.New(), tr, orchestrator.WithLogger(log))

		fmt.Fprintf(os.Stderr, "Translating to %s (%s mode)...\n", targetLang, mode)
		start := time.Now()

		var finalText string
		var summary *orchestrator.Summary
		switch mode {
		case "multi":
			finalText, summary, err = orch.TranslateMultilingual(ctx, text, targetLang)
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}
		case "single":
			var source string
			finalText, source, err = orch.TranslateSingle(ctx, text, targetLang)
			if err != nil {
				// The extracted text is still worth keeping; save it and
				// report the failure instead of losing the OCR work.
				fmt.Fprintf(os.Stderr, "Translation failed: %v\nSaving extracted text only...\n", err)
				finalText = text
			} else if source != "" {
				fmt.Fprintf(os.Stderr, "Detected source language: %s\n", source)
			}
		default:
			return fmt.Errorf("unknown mode: %s (expected multi or single)", mode)
		}

		if db != nil && summary != nil {
			saveRun(ctx, db, log, text, finalText, targetLang, summary, time.Since(start))
		}

		// Step 3: write output.
		if dir := filepath.Dir(outputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(outputFile, []byte(finalText), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}

		fmt.Printf("Saved %s\n", outputFile)
		if summary != nil {
			printSummary(summary)
		}
		return nil
	},
}

func printSummary(s *orchestrator.Summary) {
	fmt.Printf("Lines: %d total, %d translated, %d already in target language, %d blank\n",
		s.Lines, s.Translated, s.AlreadyTarget, s.Skipped)
	if s.DetectionFailed > 0 || s.TranslationFailed > 0 {
		fmt.Printf("Kept original text for %d undetected and %d failed lines\n",
			s.DetectionFailed, s.TranslationFailed)
	}
}

// saveRun records the document run in the history tables. Failures here are
// logged, never fatal.
func saveRun(ctx context.Context, db *store.Store, log *zap.Logger, source, final, targetLang string, s *orchestrator.Summary, elapsed time.Duration) {
	reqID := uuid.New().String()
	req := internal.TranslationRequest{
		ID:         reqID,
		SourceFile: inputFile,
		SourceText: source,
		SourceLang: "auto",
		TargetLang: targetLang,
		Timestamp:  time.Now(),
	}
	if err := db.SaveRequest(ctx, req); err != nil {
		log.Debug("failed to save request", zap.Error(err))
		return
	}
	failed := s.DetectionFailed + s.TranslationFailed
	if err := db.SaveResult(ctx, reqID, "chain", final, s.Lines, s.Translated, failed,
		int(elapsed.Milliseconds()), ""); err != nil {
		log.Debug("failed to save result", zap.Error(err))
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input document (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for translated text (required)")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")
	translateCmd.Flags().StringVarP(&mode, "mode", "m", "multi", "Translation mode: multi (line-wise) or single (whole document)")
	translateCmd.Flags().StringVarP(&extractorName, "extractor", "e", "tesseract", "Extraction backend: tesseract, azure, plaintext")
	translateCmd.Flags().StringSliceVar(&services, "services", nil, "Translation services in fallback order (default from config)")
	translateCmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ./.doctran.yaml)")

	translateCmd.Flags().StringVar(&dbPath, "db", "./data/doctran.db", "Database path for translation memory")
	translateCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable translation memory cache")
	translateCmd.Flags().Float64Var(&fuzzyThreshold, "fuzzy", 0, "Fuzzy cache match threshold 0-1 (0 = exact matches only)")
	translateCmd.Flags().IntVar(&maxAttempts, "max-attempts", 1, "Attempts per service including the first (1 = no retries)")
	translateCmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Skip target-language validation of results")
	translateCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("output")
	translateCmd.MarkFlagRequired("target")
}
