// Package worker consumes crew document text from Kafka, extracts the
// certificate metadata and indexes the result into Elasticsearch.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/crewdocs/docmeta/internal/extraction"
	"github.com/crewdocs/docmeta/internal/search"
)

// documentNamespace seeds IDs for messages that carry no document_id, so a
// resent text maps to the same ID.
var documentNamespace = uuid.MustParse("6f1c8f5e-3c1a-4d57-9a43-0b9e7c2d7a10")

// Message is the JSON payload on the input topic.
type Message struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Text       string `json:"text"`
}

// Indexer stores extraction results.
type Indexer interface {
	Index(ctx context.Context, doc search.Document) error
}

// Reader is the subset of *kafka.Reader the worker needs.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Writer is the subset of *kafka.Writer used for the dead-letter topic.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Config holds the worker's Kafka settings.
type Config struct {
	Brokers        []string
	Topic          string
	ConsumerGroup  string
	DedupeCapacity int
	DedupeTTL      time.Duration
}

// DLQTopic is the dead-letter topic for failed messages.
func (c Config) DLQTopic() string {
	return c.Topic + "_dlq"
}

// Worker processes one message at a time and commits it only after it was
// indexed, skipped as a duplicate, or written to the dead-letter topic.
type Worker struct {
	reader   Reader
	dlq      Writer
	indexer  Indexer
	engine   *extraction.Engine
	cache    *Cache
	log      *slog.Logger
	dlqTries uint
	dlqDelay time.Duration
}

// New wires a worker from its parts. A nil logger discards output.
func New(reader Reader, dlq Writer, indexer Indexer, engine *extraction.Engine, cache *Cache, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if engine == nil {
		engine = extraction.New(nil, extraction.WithLogger(log))
	}
	return &Worker{
		reader:   reader,
		dlq:      dlq,
		indexer:  indexer,
		engine:   engine,
		cache:    cache,
		log:      log,
		dlqTries: 5,
		dlqDelay: time.Second,
	}
}

// NewKafka builds a worker on a kafka-go consumer group reader and a DLQ
// writer. The returned closer releases both.
func NewKafka(cfg Config, indexer Indexer, engine *extraction.Engine, log *slog.Logger) (*Worker, io.Closer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, errors.New("no kafka brokers configured")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.ConsumerGroup,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.DLQTopic(),
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireAll,
	}

	w := New(reader, writer, indexer, engine, NewCache(cfg.DedupeCapacity, cfg.DedupeTTL), log)
	return w, closers{reader, writer}, nil
}

type closers []io.Closer

func (c closers) Close() error {
	var errs []error
	for _, cl := range c {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}

// Run fetches messages until ctx is cancelled. It returns an error when a
// failed message cannot be written to the DLQ, leaving it uncommitted.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Worker started")

	for {
		msg, err := w.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.log.Info("Worker stopping")
				return nil
			}
			w.log.Error("Failed to fetch message", "err", err)
			continue
		}

		if err := w.Process(ctx, msg); err != nil {
			w.log.Warn("Processing failed, sending to DLQ",
				"err", err,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			if dlqErr := w.sendToDLQ(ctx, msg, err); dlqErr != nil {
				if ctx.Err() != nil {
					return nil
				}
				// Stop without committing. A later commit on the partition
				// would move the group offset past this message.
				w.log.Error("DLQ write exhausted retries", "err", dlqErr, "partition", msg.Partition, "offset", msg.Offset)
				return fmt.Errorf("failed to write message to DLQ: %w", dlqErr)
			}
		}

		if err := w.reader.CommitMessages(ctx, msg); err != nil {
			w.log.Error("Failed to commit message", "err", err)
		}
	}
}

// Process extracts and indexes one message. Duplicates are skipped.
func (w *Worker) Process(ctx context.Context, msg kafka.Message) error {
	var payload Message
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	if strings.TrimSpace(payload.Text) == "" && strings.TrimSpace(payload.Filename) == "" {
		return errors.New("empty payload")
	}

	id := strings.TrimSpace(payload.DocumentID)
	if id == "" {
		id = uuid.NewSHA1(documentNamespace, []byte(payload.Filename+"\x00"+payload.Text)).String()
	}

	if w.cache.IsSeen(id) {
		w.log.Debug("Duplicate document", "id", id)
		return nil
	}

	ex := w.engine.Explain(extraction.Input{Text: payload.Text, Filename: payload.Filename})
	if err := extraction.Validate(ex.Result); err != nil {
		return err
	}

	doc := search.NewDocument(id, payload.Filename, ex.Canonical.Category, ex.Result)
	if err := w.indexer.Index(ctx, doc); err != nil {
		return err
	}

	w.cache.MarkSeen(id)
	w.log.Info("Indexed document", "id", id, "title", doc.Title, "expires_on", doc.ExpiresOn)
	return nil
}

func (w *Worker) sendToDLQ(ctx context.Context, msg kafka.Message, cause error) error {
	headers := make([]kafka.Header, 0, len(msg.Headers)+4)
	headers = append(headers, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: "original_partition", Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: "original_offset", Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: "error", Value: []byte(cause.Error())},
		kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
	)
	dlqMsg := kafka.Message{Key: msg.Key, Value: msg.Value, Headers: headers}

	return retry.Do(
		func() error { return w.dlq.WriteMessages(ctx, dlqMsg) },
		retry.Context(ctx),
		retry.Attempts(w.dlqTries),
		retry.Delay(w.dlqDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			w.log.Warn("DLQ write failed, retrying", "err", err, "attempt", n+1)
		}),
	)
}
