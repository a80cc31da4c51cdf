package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docmeta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewManager_Defaults(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	cfg := mgr.Get()
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, 8888, cfg.Port)
	assert.Equal(t, 20, cfg.MaxUploadMB)
	assert.Equal(t, "ollama", cfg.OCR.Provider)
	assert.Equal(t, 3, cfg.OCR.Retries)
	assert.Equal(t, 2*time.Minute, cfg.OCR.Timeout)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "crew_documents", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Elasticsearch.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Worker.DedupeTTL)
}

func TestNewManager_FromFile(t *testing.T) {
	path := writeConfig(t, `
port: 9090
log_level: debug
ocr:
  provider: gemini
  timeout: 90s
kafka:
  brokers:
    - kafka-1:9092
    - kafka-2:9092
elasticsearch:
  addr: http://es:9200
`)

	mgr, err := NewManager(path)
	require.NoError(t, err)

	cfg := mgr.Get()
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "gemini", cfg.OCR.Provider)
	assert.Equal(t, 90*time.Second, cfg.OCR.Timeout)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "http://es:9200", cfg.Elasticsearch.Addr)
	assert.Equal(t, path, mgr.ConfigFile())
}

func TestNewManager_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "port: 9090\n")
	t.Setenv("PORT", "7070")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("WORKER_DEDUPE_TTL", "1h")

	mgr, err := NewManager(path)
	require.NoError(t, err)

	cfg := mgr.Get()
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "secret", cfg.OCR.GeminiKey)
	assert.Equal(t, time.Hour, cfg.Worker.DedupeTTL)
}

func TestNewManager_MissingExplicitFile(t *testing.T) {
	_, err := NewManager(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNewManager_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"port out of range", "port: 70000\n"},
		{"zero upload size", "max_upload_mb: 0\n"},
		{"no retries", "ocr:\n  retries: 0\n"},
		{"unknown provider", "ocr:\n  provider: tesseract\n"},
		{"empty brokers", "kafka:\n  brokers: []\n"},
		{"zero dedupe capacity", "worker:\n  dedupe_capacity: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManager(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestManager_OnChange_Multiple(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	mgr.OnChange(func(cfg *Config) {})
	mgr.OnChange(func(cfg *Config) {})

	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	assert.Len(t, mgr.callbacks, 2)
}

func TestConfig_OCRService(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "ocr:\n  provider: openai\n  openai_model: gpt-4o\n"))
	require.NoError(t, err)

	cfg := mgr.Get()
	ocrCfg := cfg.OCRService()
	assert.Equal(t, "openai", ocrCfg.Provider)
	assert.Equal(t, "gpt-4o", ocrCfg.OpenAIModel)
	assert.Equal(t, cfg.OCR.Retries, ocrCfg.Retries)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes())
}

func TestSplitBrokers(t *testing.T) {
	got := splitBrokers([]string{"a:1,b:2", " ", "c:3"})
	assert.Equal(t, []string{"a:1", "b:2", "c:3"}, got)
}

func TestManager_Get_ThreadSafe(t *testing.T) {
	mgr, err := NewManager(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				_ = mgr.Get().Port
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
