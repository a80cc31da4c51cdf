package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/crewdocs/docmeta/internal/gemini"
	"github.com/crewdocs/docmeta/internal/ollama"
	"github.com/crewdocs/docmeta/internal/openai"
	"github.com/crewdocs/docmeta/internal/pdftext"
	"github.com/crewdocs/docmeta/internal/providers"
)

// Kind is the broad type of an uploaded file.
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
	KindText  Kind = "text"
)

// ErrUnsupported is returned for files that are neither PDF, image nor text.
var ErrUnsupported = errors.New("unsupported document type")

// Config selects and configures the vision OCR providers.
type Config struct {
	Provider    string
	Retries     int
	Timeout     time.Duration
	RetryDelay  time.Duration
	OllamaURL   string
	OllamaModel string
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
}

// Service turns uploaded files into text. PDFs use their text layer, images
// go to a vision model, plain text passes through.
type Service struct {
	pdf      providers.Provider
	text     providers.Provider
	vision   map[string]providers.Provider
	provider string
	retries  int
	timeout  time.Duration
	delay    time.Duration
	logger   *slog.Logger
}

// NewService creates a new OCR service. Vision providers are built on first use.
func NewService(cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		pdf:      pdftext.New(),
		text:     providers.PlainText{},
		provider: cfg.Provider,
		retries:  max(cfg.Retries, 1),
		timeout:  cfg.Timeout,
		delay:    cfg.RetryDelay,
		logger:   logger,
	}
	if s.provider == "" {
		s.provider = "ollama"
	}
	if s.delay == 0 {
		s.delay = time.Second
	}

	s.vision = map[string]providers.Provider{
		"ollama": providers.NewLazy("ollama", func() (providers.Provider, error) {
			return ollama.New(cfg.OllamaURL, defaultModel("ollama", cfg.OllamaModel)), nil
		}),
		"openai": providers.NewLazy("openai", func() (providers.Provider, error) {
			return openai.New(cfg.OpenAIKey, defaultModel("openai", cfg.OpenAIModel))
		}),
		"gemini": providers.NewLazy("gemini", func() (providers.Provider, error) {
			return gemini.New(cfg.GeminiKey, defaultModel("gemini", cfg.GeminiModel))
		}),
	}
	return s
}

// Providers lists the vision provider names.
func Providers() []string {
	return []string{"ollama", "openai", "gemini"}
}

func defaultModel(provider, model string) string {
	if model != "" {
		return model
	}
	switch provider {
	case "openai":
		return "gpt-4o"
	case "ollama":
		return "mistral-small3.2:24b"
	case "gemini":
		return "gemini-1.5-flash"
	default:
		return ""
	}
}

// Register replaces or adds a vision provider.
func (s *Service) Register(name string, p providers.Provider) {
	s.vision[name] = p
}

// ExtractText reads the text of req. provider overrides the configured
// vision provider for images.
func (s *Service) ExtractText(ctx context.Context, req providers.Request, provider string) (string, error) {
	switch kind := Detect(req); kind {
	case KindPDF:
		text, err := s.pdf.ExtractText(ctx, req)
		if err != nil {
			return "", fmt.Errorf("failed to read PDF %s: %w", req.Filename, err)
		}
		return text, nil
	case KindText:
		return s.text.ExtractText(ctx, req)
	case KindImage:
		return s.extractImage(ctx, req, provider)
	default:
		return "", fmt.Errorf("%w: %s (%s)", ErrUnsupported, req.Filename, req.ContentType)
	}
}

func (s *Service) extractImage(ctx context.Context, req providers.Request, provider string) (string, error) {
	if provider == "" {
		provider = s.provider
	}
	p, ok := s.vision[provider]
	if !ok {
		return "", fmt.Errorf("unsupported OCR provider: %s", provider)
	}
	if req.ContentType == "" || req.ImageFormat() == "" {
		req.ContentType = http.DetectContentType(req.Data)
	}

	start := time.Now()
	text, err := retry.DoWithData(
		func() (string, error) {
			attemptCtx, cancel := s.attemptContext(ctx)
			defer cancel()
			text, err := p.ExtractText(attemptCtx, req)
			if errors.Is(err, providers.ErrNotConfigured) {
				return "", retry.Unrecoverable(err)
			}
			return text, err
		},
		retry.Context(ctx),
		retry.Attempts(uint(s.retries)),
		retry.Delay(s.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn("OCR attempt failed", "provider", provider, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to OCR %s with %s: %w", req.Filename, provider, err)
	}

	s.logger.Info("Extracted OCR text", "provider", provider, "file", req.Filename, "length", len(text), "duration", time.Since(start))
	return text, nil
}

func (s *Service) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Detect classifies a file by content type, then extension, then content sniffing.
func Detect(req providers.Request) Kind {
	if kind := kindOf(req.ContentType); kind != "" {
		return kind
	}
	switch strings.ToLower(filepath.Ext(req.Filename)) {
	case ".pdf":
		return KindPDF
	case ".png", ".jpg", ".jpeg", ".webp", ".gif", ".heic":
		return KindImage
	case ".txt", ".text", ".md":
		return KindText
	}
	if len(req.Data) == 0 {
		return ""
	}
	return kindOf(http.DetectContentType(req.Data))
}

func kindOf(contentType string) Kind {
	contentType = strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(contentType, "application/pdf"):
		return KindPDF
	case strings.HasPrefix(contentType, "image/"):
		return KindImage
	case strings.HasPrefix(contentType, "text/plain"):
		return KindText
	default:
		return ""
	}
}
