// Package config loads cowrite settings from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/csheth/cowrite/internal/completion"
	"github.com/csheth/cowrite/internal/llm"
)

// EnvPrefix namespaces environment overrides, e.g. COWRITE_LLM_PROVIDER.
const EnvPrefix = "COWRITE"

// Config is the fully resolved configuration.
type Config struct {
	// Endpoint is the completion URL the editor posts drafts to.
	Endpoint string       `mapstructure:"endpoint" yaml:"endpoint"`
	Server   ServerConfig `mapstructure:"server" yaml:"server"`
	LLM      LLMConfig    `mapstructure:"llm" yaml:"llm"`
	Log      LogConfig    `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds settings for `cowrite serve`.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	CORSOrigins    []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LLMConfig selects and tunes the revision model.
type LLMConfig struct {
	// Provider is one of ollama, openai or echo.
	Provider  string `mapstructure:"provider" yaml:"provider"`
	Model     string `mapstructure:"model" yaml:"model"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// LogConfig controls slog output. File is only used by the editor, whose
// terminal belongs to the UI.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", completion.DefaultEndpoint)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", 2*time.Minute)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("llm.provider", llm.ProviderOllama)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.max_tokens", 1500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "cowrite.log")
}

// ReadFile points v at cfgFile, or searches ./cowrite.yaml and
// ~/.config/cowrite/cowrite.yaml. A missing file is not an error.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("cowrite")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "cowrite"))
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes and validates v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings that would only fail later at request time.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case llm.ProviderOllama, llm.ProviderOpenAI, llm.ProviderEcho:
	default:
		return fmt.Errorf("llm.provider %q not supported (want ollama, openai or echo)", c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint must not be empty")
	}
	return nil
}

// Redacted returns a copy safe to print, with the API key masked.
func (c Config) Redacted() Config {
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = "****"
	}
	c.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	return c
}

// LLMSettings converts the llm block into an llm.Config.
func (c Config) LLMSettings() llm.Config {
	return llm.Config{
		Provider:  c.LLM.Provider,
		Model:     c.LLM.Model,
		Endpoint:  c.LLM.BaseURL,
		APIKey:    c.LLM.APIKey,
		MaxTokens: c.LLM.MaxTokens,
	}
}
