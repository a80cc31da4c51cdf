// Package config loads docmeta settings from a YAML file, environment
// variables and defaults, and reloads them when the file changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/crewdocs/docmeta/internal/ocr"
)

// Config holds all settings.
type Config struct {
	LogLevel    string `mapstructure:"log_level"`
	Port        int    `mapstructure:"port"`
	CatalogPath string `mapstructure:"catalog_path"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`

	OCR           OCR           `mapstructure:"ocr"`
	Kafka         Kafka         `mapstructure:"kafka"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	Worker        Worker        `mapstructure:"worker"`
}

// OCR configures text extraction from uploads.
type OCR struct {
	Provider    string        `mapstructure:"provider"`
	Retries     int           `mapstructure:"retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
	OllamaURL   string        `mapstructure:"ollama_url"`
	OllamaModel string        `mapstructure:"ollama_model"`
	OpenAIKey   string        `mapstructure:"openai_api_key"`
	OpenAIModel string        `mapstructure:"openai_model"`
	GeminiKey   string        `mapstructure:"gemini_api_key"`
	GeminiModel string        `mapstructure:"gemini_model"`
}

// Kafka configures the extraction worker's input topic.
type Kafka struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
}

// Elasticsearch configures where extraction results are indexed.
// An empty Addr disables indexing.
type Elasticsearch struct {
	Addr  string `mapstructure:"addr"`
	Index string `mapstructure:"index"`
}

// Worker tunes the Kafka worker.
type Worker struct {
	DedupeCapacity int           `mapstructure:"dedupe_capacity"`
	DedupeTTL      time.Duration `mapstructure:"dedupe_ttl"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"log_level":              "LOG_LEVEL",
	"port":                   "PORT",
	"catalog_path":           "CATALOG_PATH",
	"max_upload_mb":          "MAX_UPLOAD_MB",
	"ocr.provider":           "OCR_PROVIDER",
	"ocr.retries":            "OCR_RETRIES",
	"ocr.timeout":            "OCR_TIMEOUT",
	"ocr.ollama_url":         "OLLAMA_URL",
	"ocr.ollama_model":       "OLLAMA_MODEL",
	"ocr.openai_api_key":     "OPENAI_API_KEY",
	"ocr.openai_model":       "OPENAI_MODEL",
	"ocr.gemini_api_key":     "GEMINI_API_KEY",
	"ocr.gemini_model":       "GEMINI_MODEL",
	"kafka.brokers":          "KAFKA_BROKERS",
	"kafka.topic":            "KAFKA_TOPIC",
	"kafka.consumer_group":   "KAFKA_CONSUMER_GROUP",
	"elasticsearch.addr":     "ELASTICSEARCH_ADDR",
	"elasticsearch.index":    "ELASTICSEARCH_INDEX",
	"worker.dedupe_capacity": "WORKER_DEDUPE_CAPACITY",
	"worker.dedupe_ttl":      "WORKER_DEDUPE_TTL",
}

// Manager handles configuration loading and hot-reload.
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a config manager. An empty cfgFile searches
// ./docmeta.yaml and $HOME/.docmeta/docmeta.yaml; a missing file is fine.
func NewManager(cfgFile string) (*Manager, error) {
	m := &Manager{v: viper.New()}

	if err := m.initViper(cfgFile); err != nil {
		return nil, err
	}

	if err := m.load(); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Manager) initViper(cfgFile string) error {
	v := m.v

	v.SetDefault("log_level", "INFO")
	v.SetDefault("port", 8888)
	v.SetDefault("catalog_path", "")
	v.SetDefault("max_upload_mb", 20)
	v.SetDefault("ocr.provider", "ollama")
	v.SetDefault("ocr.retries", 3)
	v.SetDefault("ocr.timeout", "2m")
	v.SetDefault("ocr.ollama_url", "http://localhost:11434")
	v.SetDefault("ocr.ollama_model", "")
	v.SetDefault("ocr.openai_api_key", "")
	v.SetDefault("ocr.openai_model", "")
	v.SetDefault("ocr.gemini_api_key", "")
	v.SetDefault("ocr.gemini_model", "")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "crew_documents")
	v.SetDefault("kafka.consumer_group", "docmeta-worker")
	v.SetDefault("elasticsearch.addr", "")
	v.SetDefault("elasticsearch.index", "crew_documents")
	v.SetDefault("worker.dedupe_capacity", 20000)
	v.SetDefault("worker.dedupe_ttl", "24h")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docmeta")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".docmeta"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

func (m *Manager) load() error {
	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Kafka.Brokers = splitBrokers(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.config = &cfg
	m.mu.Unlock()

	return nil
}

// Get returns the current configuration (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// ConfigFile returns the file the settings were read from, if any.
func (m *Manager) ConfigFile() string {
	return m.v.ConfigFileUsed()
}

// OnChange registers a callback invoked after a successful reload.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// WatchConfig reloads the file on change. Invalid edits are reported to
// onError and the previous configuration stays in effect.
func (m *Manager) WatchConfig(onError func(error)) {
	m.v.OnConfigChange(func(e fsnotify.Event) {
		if err := m.load(); err != nil {
			if onError != nil {
				onError(fmt.Errorf("failed to reload %s: %w", e.Name, err))
			}
			return
		}

		m.mu.RLock()
		cfg := m.config
		callbacks := append([]func(*Config){}, m.callbacks...)
		m.mu.RUnlock()

		for _, cb := range callbacks {
			cb(cfg)
		}
	})
	m.v.WatchConfig()
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	switch c.OCR.Provider {
	case "ollama", "openai", "gemini":
	default:
		return fmt.Errorf("OCR_PROVIDER must be ollama, openai or gemini, got %q", c.OCR.Provider)
	}
	if c.OCR.Retries < 1 {
		return fmt.Errorf("OCR_RETRIES must be at least 1")
	}
	if c.OCR.Timeout <= 0 {
		return fmt.Errorf("OCR_TIMEOUT must be positive")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.Worker.DedupeCapacity <= 0 {
		return fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}
	if c.Worker.DedupeTTL <= 0 {
		return fmt.Errorf("WORKER_DEDUPE_TTL must be positive")
	}
	return nil
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// OCRService converts the OCR settings for ocr.NewService.
func (c *Config) OCRService() ocr.Config {
	return ocr.Config{
		Provider:    c.OCR.Provider,
		Retries:     c.OCR.Retries,
		Timeout:     c.OCR.Timeout,
		OllamaURL:   c.OCR.OllamaURL,
		OllamaModel: c.OCR.OllamaModel,
		OpenAIKey:   c.OCR.OpenAIKey,
		OpenAIModel: c.OCR.OpenAIModel,
		GeminiKey:   c.OCR.GeminiKey,
		GeminiModel: c.OCR.GeminiModel,
	}
}

// splitBrokers accepts both a YAML list and a comma separated env value.
func splitBrokers(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
