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
	"fmt"
	"os"
	"time"

	"github.com/doctran/doctran/internal/config"
	"github.com/doctran/doctran/internal/extractor"
	"github.com/doctran/doctran/internal/translator"
)

// documentExtensions are the file types the tool accepts end to end.
var documentExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".txt", ".md"}

// buildServices constructs the ordered translation service list from the
// configured names. Unknown names are skipped with a warning so one typo in
// a config file does not kill a batch run.
func buildServices(cfg *config.Config, serviceNames []string) ([]translator.TranslationService, error) {
	if len(serviceNames) == 0 {
		serviceNames = cfg.Services
	}

	var list []translator.TranslationService
	for _, name := range serviceNames {
		switch name {
		case "google":
			list = append(list, translator.NewGoogleService())
		case "mymemory":
			list = append(list, translator.NewMyMemoryService(cfg.MyMemory.Email))
		case "deepl":
			list = append(list, translator.NewDeepLService(cfg.DeepL.APIKey))
		case "libretranslate":
			list = append(list, translator.NewLibreTranslateService(cfg.LibreTranslate.BaseURL, cfg.LibreTranslate.APIKey))
		case "ollama":
			list = append(list, translator.NewOllamaTranslator(cfg.Ollama.BaseURL, cfg.Ollama.Models))
		default:
			fmt.Fprintf(os.Stderr, "Unknown service: %s, skipping\n", name)
		}
	}

	if len(list) == 0 {
		return nil, fmt.Errorf("no valid services configured")
	}
	return list, nil
}

// buildRegistry registers every extraction backend. Factories that need
// credentials fail at Create time, not here, so available backends stay
// listable without cloud configuration.
func buildRegistry(cfg *config.Config) *extractor.Registry {
	registry := extractor.NewRegistry()

	registry.Register("tesseract", func() (extractor.Extractor, error) {
		return extractor.NewTesseractExtractor(extractor.TesseractConfig{
			Languages: cfg.Tesseract.Languages,
			DPI:       cfg.Tesseract.DPI,
		}), nil
	})

	registry.Register("azure", func() (extractor.Extractor, error) {
		return extractor.NewAzureExtractor(extractor.AzureConfig{
			Endpoint: cfg.Azure.Endpoint,
			APIKey:   cfg.Azure.APIKey,
		})
	})

	registry.Register("plaintext", func() (extractor.Extractor, error) {
		return extractor.NewPlainTextExtractor(), nil
	})

	return registry
}

func serviceConfig(cfg *config.Config) translator.ServiceConfig {
	return translator.ServiceConfig{
		Credentials: cfg.Google.Credentials,
		ProjectID:   cfg.Google.ProjectID,
		Timeout:     30 * time.Second,
	}
}
