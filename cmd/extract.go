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
	"strings"

	"github.com/spf13/cobra"

	"github.com/doctran/doctran/internal/config"
)

var (
	extractInput     string
	extractOutput    string
	extractBackend   string
	extractConfig    string
	extractListFlags bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract text from a document without translating",
	Long: `Extract text from a PDF, image, or text file and print it or save it
to a file. Useful for checking OCR quality before spending translation
quota, or for feeding the text into other tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(extractConfig)
		if err != nil {
			return err
		}

		registry := buildRegistry(cfg)
		if extractListFlags {
			fmt.Println("Available extraction backends:")
			for _, name := range registry.Names() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		}

		if extractInput == "" {
			return fmt.Errorf("required flag \"input\" not set")
		}

		ext, err := registry.Create(extractBackend)
		if err != nil {
			return err
		}

		if !ext.SupportsFormat(strings.ToLower(filepath.Ext(extractInput))) {
			return fmt.Errorf("%s does not support %s files", ext.Name(), filepath.Ext(extractInput))
		}

		fmt.Fprintf(os.Stderr, "Extracting text with %s...\n", ext.Name())
		text, err := ext.ExtractText(context.Background(), extractInput)
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}

		if extractOutput == "" {
			fmt.Print(text)
			return nil
		}

		if dir := filepath.Dir(extractOutput); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		if err := os.WriteFile(extractOutput, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %s\n", extractOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractInput, "input", "i", "", "Input document (required unless --list)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file (default stdout)")
	extractCmd.Flags().StringVarP(&extractBackend, "extractor", "e", "tesseract", "Extraction backend: tesseract, azure, plaintext")
	extractCmd.Flags().StringVar(&extractConfig, "config", "", "Config file path (default ./.doctran.yaml)")
	extractCmd.Flags().BoolVar(&extractListFlags, "list", false, "List available extraction backends")
}
