package worker

import (
	"context"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cradoe/nationalid/internal/repository"
	"github.com/cradoe/nationalid/internal/smtp"
	"github.com/cradoe/nationalid/internal/stream"
)

const (
	// notificationGroupID is used by the worker that emails officers about
	// their account and about applications they submitted
	notificationGroupID = "notification-group"

	pollTimeoutMs = 100
)

// Our workers need the database, the event stream and the mailer.
// Anything worker-specific is passed as an argument.
type Worker struct {
	KafkaStream *stream.KafkaStream
	DB          repository.Database
	Mailer      smtp.MailerInterface
	Logger      *slog.Logger
	BaseURL     string
}

func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		DB:          wk.DB,
		Mailer:      wk.Mailer,
		Logger:      wk.Logger,
		BaseURL:     wk.BaseURL,
	}
}

type messageHandler func(ctx context.Context, value []byte) error

// consume polls topics until ctx is cancelled, dispatching each message by topic.
func (wk *Worker) consume(ctx context.Context, groupID string, handlers map[string]messageHandler) error {
	topics := make([]string, 0, len(handlers))
	for topic := range handlers {
		topics = append(topics, topic)
	}

	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: groupID,
		Topics:  topics,
	})
	if err != nil {
		return err
	}
	defer consumer.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		event := consumer.Poll(pollTimeoutMs)
		switch e := event.(type) {
		case *kafka.Message:
			topic := *e.TopicPartition.Topic

			handle, ok := handlers[topic]
			if !ok {
				continue
			}

			if err := handle(ctx, e.Value); err != nil {
				wk.Logger.Error("event handling failed", "topic", topic, "offset", e.TopicPartition.Offset.String(), "error", err)
			}
		case kafka.Error:
			wk.Logger.Error("kafka consumer error", "error", e)
		}
	}
}
