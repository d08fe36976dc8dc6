package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/verseprint/backend/internal/storage"
	"github.com/verseprint/backend/pkg/leaselock"
	"github.com/verseprint/backend/pkg/logger"
	stylestore "github.com/verseprint/backend/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
)

// ProcessDeleteMessage removes an author and everything derived from
// their corpus. It waits behind an in-flight ingestion for the same
// author via the shared lease key.
func ProcessDeleteMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(DeleteMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}
	if data.AuthorID == "" {
		return fmt.Errorf("delete message missing author_id")
	}

	st := stylestore.NewStyleDBStorage(conn)
	locks := leaselock.New(conn)
	lockKey := fmt.Sprintf("author:%s", data.AuthorID)

	return locks.WithLease(ctx, lockKey, leaselock.Options{
		TTL:          time.Minute,
		RenewEvery:   20 * time.Second,
		Wait:         true,
		WaitInterval: 2 * time.Second,
	}, func(ctx context.Context) error {
		if err := st.DeleteAuthor(ctx, data.AuthorID); err != nil {
			return err
		}

		// Corpus objects live under a per-author prefix.
		prefix := fmt.Sprintf("authors/%s/", data.AuthorID)
		if err := storage.DeleteFolder(ctx, s3Client, prefix); err != nil {
			logger.Warn("[Queue] Failed to delete corpus objects", "author_id", data.AuthorID, "err", err)
		}

		logger.Info("[Queue] Author deleted", "author_id", data.AuthorID)

		topic := fmt.Sprintf("author.%s.deleted", data.AuthorID)
		eventBytes, _ := json.Marshal(data)
		if err := PublishTopic(ch, topic, eventBytes); err != nil {
			logger.Warn("[Queue] Failed to publish delete event", "author_id", data.AuthorID, "err", err)
		}
		return nil
	})
}
