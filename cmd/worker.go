package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/crewdocs/docmeta/internal/extraction"
	"github.com/crewdocs/docmeta/internal/search"
	"github.com/crewdocs/docmeta/internal/worker"
)

func newWorkerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume document text from Kafka and index the results",
		Long: `Runs the Kafka worker.

Each message is a JSON object {document_id, filename, text}. The worker runs
the engine, validates the result and indexes it into Elasticsearch. Messages
that fail go to the <topic>_dlq topic with the error in a header. Repeats of a
document seen within WORKER_DEDUPE_TTL are skipped.`,
		Example: `  KAFKA_BROKERS=kafka:9092 ELASTICSEARCH_ADDR=http://es:9200 docmeta worker`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config()
			if cfg.Elasticsearch.Addr == "" {
				return fmt.Errorf("ELASTICSEARCH_ADDR is required for the worker")
			}

			cat, err := a.catalog()
			if err != nil {
				return err
			}

			log := slog.Default().With("component", "worker")
			indexer, err := search.New(cfg.Elasticsearch.Addr, cfg.Elasticsearch.Index, log)
			if err != nil {
				return err
			}
			if err := indexer.Ping(cmd.Context()); err != nil {
				return err
			}

			engine := extraction.New(cat, extraction.WithLogger(log))
			w, closer, err := worker.NewKafka(worker.Config{
				Brokers:        cfg.Kafka.Brokers,
				Topic:          cfg.Kafka.Topic,
				ConsumerGroup:  cfg.Kafka.ConsumerGroup,
				DedupeCapacity: cfg.Worker.DedupeCapacity,
				DedupeTTL:      cfg.Worker.DedupeTTL,
			}, indexer, engine, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := closer.Close(); err != nil {
					log.Error("Failed to close kafka clients", "err", err)
				}
			}()

			log.Info("Consuming", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic, "group", cfg.Kafka.ConsumerGroup)
			return w.Run(cmd.Context())
		},
	}

	return cmd
}
