package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verseprint/backend/internal/storage"
	"github.com/verseprint/backend/internal/util"
	"github.com/verseprint/backend/pkg/ai"
	"github.com/verseprint/backend/pkg/graph"
	"github.com/verseprint/backend/pkg/leaselock"
	"github.com/verseprint/backend/pkg/logger"
	stylestore "github.com/verseprint/backend/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
)

// ProcessIngestMessage rebuilds an author's style graph from a queued
// corpus. The author lease keeps concurrent workers from interleaving
// writes into the same partition; a busy lease fails the message so the
// retry queue redelivers it after the TTL.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	aiClient ai.StyleAIClient,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(IngestMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.AuthorID == "" {
		return fmt.Errorf("ingest message missing author_id")
	}

	docs := make([]graph.DocumentInput, 0, len(data.Documents))
	for _, doc := range data.Documents {
		text := doc.Text
		if text == "" && doc.ObjectKey != "" {
			raw, err := storage.GetFile(ctx, s3Client, doc.ObjectKey)
			if err != nil {
				return fmt.Errorf("failed to fetch corpus object %s: %w", doc.ObjectKey, err)
			}
			text = string(raw)
		}
		docs = append(docs, graph.DocumentInput{
			Title:        doc.Title,
			CollectionID: doc.CollectionID,
			Text:         text,
		})
	}

	pipeline := graph.NewPipeline(graph.NewPipelineParams{
		Store:        stylestore.NewStyleDBStorage(conn),
		AIClient:     aiClient,
		ParallelDocs: int(util.GetEnvNumeric("INGEST_PARALLEL_DOCS", 4)),
	})

	locks := leaselock.New(conn)
	lockKey := fmt.Sprintf("author:%s", data.AuthorID)

	return locks.WithLease(ctx, lockKey, leaselock.Options{
		TTL:        2 * time.Minute,
		RenewEvery: 30 * time.Second,
	}, func(ctx context.Context) error {
		report, err := pipeline.Ingest(ctx, data.AuthorID, data.AuthorName, docs)
		if err != nil {
			return err
		}

		logger.Info("[Queue] Ingestion complete",
			"author_id", data.AuthorID,
			"graph_version", report.GraphVersion,
			"warnings", len(report.Warnings),
		)

		eventBytes, err := json.Marshal(report)
		if err != nil {
			return nil
		}
		topic := fmt.Sprintf("author.%s.ingested", data.AuthorID)
		if err := PublishTopic(ch, topic, eventBytes); err != nil {
			logger.Warn("[Queue] Failed to publish ingest event", "author_id", data.AuthorID, "err", err)
		}
		return nil
	})
}
