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
	"os"

	"github.com/spf13/cobra"
)

var version = "0.3.0"

var rootCmd = &cobra.Command{
	Use:   "doctran",
	Short: "Extract text from documents and translate it line by line",
	Long: `doctran extracts text from PDFs, scanned images, and text files
(Tesseract OCR, Azure Document Intelligence, or direct reading) and
translates the result into a target language.

Multilingual documents are translated line by line: each line's language is
detected and only the lines that need translating are sent to a backend, so
a single unreadable line never fails the whole document.

Use "doctran translate --help" for translation options.`,
	Version: version,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
