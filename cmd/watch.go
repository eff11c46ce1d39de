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
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doctran/doctran/internal/config"
	"github.com/doctran/doctran/internal/detector"
	"github.com/doctran/doctran/internal/logger"
	"github.com/doctran/doctran/internal/orchestrator"
	"github.com/doctran/doctran/internal/store"
	"github.com/doctran/doctran/internal/translator"
	"github.com/doctran/doctran/internal/watcher"
)

var (
	watchDir       string
	watchOutDir    string
	watchTarget    string
	watchExtractor string
	watchServices  []string
	watchConfig    string
	watchDB        string
	watchNoCache   bool
	watchWorkers   int
	watchDebug     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and translate new documents as they appear",
	Long: `Watch a directory for new documents and translate each one as it
arrives, writing <name>.<target>.txt files into the output directory.
Runs until interrupted with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(watchConfig)
		if err != nil {
			return err
		}
		if watchDebug {
			cfg.Debug = true
		}

		log, err := logger.New(cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer log.Sync()

		ext, err := buildRegistry(cfg).Create(watchExtractor)
		if err != nil {
			return err
		}

		var db *store.Store
		if !watchNoCache && watchDB != "" {
			db, err = store.New(watchDB)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
		}

		serviceList, err := buildServices(cfg, watchServices)
		if err != nil {
			return err
		}
		chain := translator.NewChain(serviceList, serviceConfig(cfg), translator.ChainConfig{Attempts: 1}, log)

		var tr orchestrator.Translator = chain
		if db != nil {
			tr = translator.NewCached(chain, db, serviceList[0].Name(), cfg.Cache.FuzzyThreshold, log)
		}
		orch := orchestrator.New(detector.New(), tr, orchestrator.WithLogger(log))

		if err := os.MkdirAll(watchOutDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		handler := func(ctx context.Context, path string) error {
			text, err := ext.ExtractText(ctx, path)
			if err != nil {
				return fmt.Errorf("extract %s: %w", path, err)
			}

			final, summary, err := orch.TranslateMultilingual(ctx, text, watchTarget)
			if err != nil {
				return fmt.Errorf("translate %s: %w", path, err)
			}

			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			out := filepath.Join(watchOutDir, fmt.Sprintf("%s.%s.txt", base, watchTarget))
			if err := os.WriteFile(out, []byte(final), 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			log.Info("document translated",
				zap.String("input", path),
				zap.String("output", out),
				zap.Int("lines", summary.Lines),
				zap.Int("translated", summary.Translated))
			return nil
		}

		w, err := watcher.New(watchDir, documentExtensions, handler, log, watchWorkers)
		if err != nil {
			return err
		}
		defer w.Stop()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "Watching %s, writing translations to %s (Ctrl-C to stop)\n", watchDir, watchOutDir)
		return w.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "Directory to watch (required)")
	watchCmd.Flags().StringVarP(&watchOutDir, "out", "o", "", "Output directory for translations (required)")
	watchCmd.Flags().StringVarP(&watchTarget, "target", "t", "", "Target language code (required)")
	watchCmd.Flags().StringVarP(&watchExtractor, "extractor", "e", "tesseract", "Extraction backend: tesseract, azure, plaintext")
	watchCmd.Flags().StringSliceVar(&watchServices, "services", nil, "Translation services in fallback order (default from config)")
	watchCmd.Flags().StringVar(&watchConfig, "config", "", "Config file path (default ./.doctran.yaml)")
	watchCmd.Flags().StringVar(&watchDB, "db", "./data/doctran.db", "Database path for translation memory")
	watchCmd.Flags().BoolVar(&watchNoCache, "no-cache", false, "Disable translation memory cache")
	watchCmd.Flags().IntVar(&watchWorkers, "workers", 2, "Maximum documents processed concurrently")
	watchCmd.Flags().BoolVar(&watchDebug, "debug", false, "Enable debug logging")

	watchCmd.MarkFlagRequired("dir")
	watchCmd.MarkFlagRequired("out")
	watchCmd.MarkFlagRequired("target")
}
