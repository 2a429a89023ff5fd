package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting of a docgrade run. Values come from defaults,
// then the YAML file named by DOCGRADE_CONFIG, then environment variables.
type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Paths  PathsConfig  `yaml:"paths"`
	Server ServerConfig `yaml:"server"`

	LogLevel string `yaml:"log_level"`
}

// LLMConfig selects and configures the grading service.
type LLMConfig struct {
	Provider   string        `yaml:"provider"` // openai, anthropic, gemini
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	MaxTokens  int           `yaml:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// PathsConfig names the files a full run reads and writes.
type PathsConfig struct {
	Document       string `yaml:"document"`        // source .docx
	Report         string `yaml:"report"`          // overall report
	SectionsDir    string `yaml:"sections_dir"`    // one .txt per entry
	DocumentReview string `yaml:"document_review"` // whole-document grading result
}

// ServerConfig configures `docgrade serve`.
type ServerConfig struct {
	Port           string `yaml:"port"`
	APIKey         string `yaml:"api_key"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider: "openai",
			Timeout:  5 * time.Minute,
		},
		Paths: PathsConfig{
			Report:         "overall.txt",
			SectionsDir:    "specific",
			DocumentReview: "overall_AI.txt",
		},
		Server: ServerConfig{
			Port:           "8090",
			MaxUploadBytes: 52428800, // 50MB
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the YAML file named by
// DOCGRADE_CONFIG and the environment.
func Load() (Config, error) {
	return LoadFile(os.Getenv("DOCGRADE_CONFIG"))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// MergeFile overlays the keys present in a YAML file onto cfg.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.LLM.Provider = envOr("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.APIKey = envOr("LLM_API_KEY", c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv(providerKeyEnv(c.LLM.Provider))
	}
	c.LLM.BaseURL = envOr("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = envOr("LLM_MODEL", c.LLM.Model)
	c.LLM.MaxTokens = envInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.Timeout = envDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.MaxRetries = envInt("LLM_MAX_RETRIES", c.LLM.MaxRetries)

	c.Paths.Document = envOr("DOCUMENT_PATH", c.Paths.Document)
	c.Paths.Report = envOr("REPORT_PATH", c.Paths.Report)
	c.Paths.SectionsDir = envOr("SECTIONS_DIR", c.Paths.SectionsDir)
	c.Paths.DocumentReview = envOr("DOCUMENT_REVIEW_PATH", c.Paths.DocumentReview)

	c.Server.Port = envOr("PORT", c.Server.Port)
	c.Server.APIKey = envOr("DOCGRADE_API_KEY", c.Server.APIKey)
	c.Server.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.Server.MaxUploadBytes)

	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
}

func (c *Config) normalize() {
	def := Default()
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = def.LLM.Provider
	}
	if c.LLM.Timeout < 0 {
		c.LLM.Timeout = def.LLM.Timeout
	}
	if c.LLM.MaxRetries < 0 {
		c.LLM.MaxRetries = 0
	}
	if c.Server.Port == "" {
		c.Server.Port = def.Server.Port
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = def.Server.MaxUploadBytes
	}
}

// providerKeyEnv names the provider-specific key variable consulted when
// LLM_API_KEY is unset.
func providerKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return "DEEPSEEK_API_KEY"
	}
}

// ValidateLLM checks the settings needed to call the grading service.
func (c Config) ValidateLLM() error {
	switch c.LLM.Provider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY or %s is required", providerKeyEnv(c.LLM.Provider))
	}
	return nil
}

// ValidateServer checks the settings needed by the HTTP server.
func (c Config) ValidateServer() error {
	if c.Server.APIKey == "" {
		return fmt.Errorf("DOCGRADE_API_KEY is required")
	}
	return c.ValidateLLM()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
