package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/crewdocs/docmeta/internal/providers"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		req      providers.Request
		expected Kind
	}{
		{"pdf content type", providers.Request{ContentType: "application/pdf"}, KindPDF},
		{"image content type", providers.Request{ContentType: "image/jpeg"}, KindImage},
		{"text with charset", providers.Request{ContentType: "text/plain; charset=utf-8"}, KindText},
		{"pdf extension", providers.Request{Filename: "coc.PDF"}, KindPDF},
		{"image extension", providers.Request{Filename: "scan.jpeg", ContentType: "application/octet-stream"}, KindImage},
		{"sniffed pdf", providers.Request{Data: []byte("%PDF-1.7\n...")}, KindPDF},
		{"sniffed png", providers.Request{Data: []byte("\x89PNG\r\n\x1a\n0000")}, KindImage},
		{"unknown", providers.Request{Filename: "a.docx"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.req); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtractTextRetriesVisionProvider(t *testing.T) {
	s := NewService(Config{Provider: "stub", Retries: 3, RetryDelay: time.Millisecond}, quietLogger())
	calls := 0
	s.Register("stub", providers.Func(func(_ context.Context, req providers.Request) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("model busy")
		}
		return "ELEMENTARY FIRST AID", nil
	}))

	text, err := s.ExtractText(context.Background(), providers.Request{Filename: "efa.png", ContentType: "image/png"}, "")
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != "ELEMENTARY FIRST AID" {
		t.Errorf("Expected OCR text, got %q", text)
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
}

func TestExtractTextDoesNotRetryConfigErrors(t *testing.T) {
	s := NewService(Config{Provider: "openai", Retries: 5, RetryDelay: time.Millisecond}, quietLogger())

	_, err := s.ExtractText(context.Background(), providers.Request{Filename: "a.jpg", ContentType: "image/jpeg"}, "")
	if err == nil {
		t.Fatal("Expected error without an API key")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("Expected missing key error, got %v", err)
	}
}

func TestExtractTextRetryDependsOnSentinel(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedCalls int
	}{
		{
			name:          "not configured stops at once",
			err:           fmt.Errorf("token missing: %w", providers.ErrNotConfigured),
			expectedCalls: 1,
		},
		{
			name:          "wording alone is retried",
			err:           errors.New("failed to initialize session: header not set"),
			expectedCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(Config{Provider: "stub", Retries: 3, RetryDelay: time.Millisecond}, quietLogger())
			calls := 0
			s.Register("stub", providers.Func(func(_ context.Context, _ providers.Request) (string, error) {
				calls++
				return "", tt.err
			}))

			_, err := s.ExtractText(context.Background(), providers.Request{Filename: "a.png", ContentType: "image/png"}, "")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if calls != tt.expectedCalls {
				t.Errorf("Expected %d attempts, got %d", tt.expectedCalls, calls)
			}
		})
	}
}

func TestExtractTextPlainAndUnsupported(t *testing.T) {
	s := NewService(Config{}, quietLogger())

	text, err := s.ExtractText(context.Background(), providers.Request{Filename: "notes.txt", Data: []byte("Passport")}, "")
	if err != nil || text != "Passport" {
		t.Errorf("Expected plain text passthrough, got %q (%v)", text, err)
	}

	_, err = s.ExtractText(context.Background(), providers.Request{Filename: "cv.docx"}, "")
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}

	_, err = s.ExtractText(context.Background(), providers.Request{Filename: "a.png", ContentType: "image/png"}, "tesseract")
	if err == nil || !strings.Contains(err.Error(), "unsupported OCR provider") {
		t.Errorf("Expected unsupported provider error, got %v", err)
	}
}
