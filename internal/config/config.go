package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

type OCRConfig struct {
	Languages string `mapstructure:"languages"`
}

type StorageConfig struct {
	Backend       string `mapstructure:"backend"`
	UploadDir     string `mapstructure:"upload_dir"`
	ResultsDir    string `mapstructure:"results_dir"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Load reads config.yaml from the working directory (or the path named by
// OCRAI_CONFIG) and applies OCRAI_* environment overrides. A missing config
// file is fine; defaults and environment cover everything.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", false)
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("ocr.languages", "jpn+eng")
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.upload_dir", "uploads")
	v.SetDefault("storage.results_dir", "results")
	v.SetDefault("storage.max_upload_size", 16<<20)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if path := os.Getenv("OCRAI_CONFIG"); path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("OCRAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only surfaces keys viper already knows about during
	// Unmarshal, so keys without a default need an explicit binding.
	for _, key := range []string{"openai.api_key", "openai.base_url", "database.dsn"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Storage.Backend {
	case "file", "postgres":
	default:
		return fmt.Errorf(`storage.backend must be "file" or "postgres", got %q`, c.Storage.Backend)
	}
	if c.Storage.Backend == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required when storage.backend is postgres")
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("storage.max_upload_size must be positive, got %d", c.Storage.MaxUploadSize)
	}
	return nil
}
