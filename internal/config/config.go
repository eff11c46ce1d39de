// Package config loads tool configuration from an optional YAML file and
// DOCTRAN_* environment variables into explicit structs that are handed to
// collaborator constructors. Nothing else in the codebase reads ambient
// process state for credentials.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type GoogleConfig struct {
	Credentials string `mapstructure:"credentials"`
	ProjectID   string `mapstructure:"project_id"`
}

type AzureConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
}

type OllamaConfig struct {
	BaseURL string   `mapstructure:"base_url"`
	Models  []string `mapstructure:"models"`
}

type DeepLConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type LibreTranslateConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type MyMemoryConfig struct {
	Email string `mapstructure:"email"`
}

type TesseractConfig struct {
	Languages []string `mapstructure:"languages"`
	DPI       int      `mapstructure:"dpi"`
}

type CacheConfig struct {
	Path           string  `mapstructure:"path"`
	Disabled       bool    `mapstructure:"disabled"`
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold"`
}

type Config struct {
	Google         GoogleConfig         `mapstructure:"google"`
	Azure          AzureConfig          `mapstructure:"azure"`
	Ollama         OllamaConfig         `mapstructure:"ollama"`
	DeepL          DeepLConfig          `mapstructure:"deepl"`
	LibreTranslate LibreTranslateConfig `mapstructure:"libretranslate"`
	MyMemory       MyMemoryConfig       `mapstructure:"mymemory"`
	Tesseract      TesseractConfig      `mapstructure:"tesseract"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Services       []string             `mapstructure:"services"`
	Debug          bool                 `mapstructure:"debug"`
}

// Load reads configuration from configPath (or ./doctran.yaml and
// ~/.doctran.yaml when empty) and overlays DOCTRAN_* environment variables
// (e.g. DOCTRAN_AZURE_API_KEY). A missing file is not an error; env and
// defaults still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Every key needs a default so AutomaticEnv values survive Unmarshal.
	v.SetDefault("services", []string{"google"})
	v.SetDefault("google.credentials", "")
	v.SetDefault("google.project_id", "")
	v.SetDefault("azure.endpoint", "")
	v.SetDefault("azure.api_key", "")
	v.SetDefault("deepl.api_key", "")
	v.SetDefault("libretranslate.base_url", "")
	v.SetDefault("libretranslate.api_key", "")
	v.SetDefault("mymemory.email", "")
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.models", []string{})
	v.SetDefault("tesseract.languages", []string{"eng"})
	v.SetDefault("tesseract.dpi", 300)
	v.SetDefault("cache.path", "./data/doctran.db")
	v.SetDefault("cache.disabled", false)
	v.SetDefault("cache.fuzzy_threshold", 0.0)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("DOCTRAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName(".doctran")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
