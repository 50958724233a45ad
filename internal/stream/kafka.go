package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// Publisher is how request handlers hand events to the stream.
type Publisher interface {
	Publish(topic, key string, event any) error
}

type KafkaStream struct {
	kafkaServers string
	producer     *kafka.Producer
	logger       *slog.Logger
}

// New connects a producer. Delivery reports are drained in the background
// and failures logged; callers never block on delivery.
func New(kafkaServers string, logger *slog.Logger) (*KafkaStream, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": kafkaServers,
		"acks":              "all",
	})
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	st := &KafkaStream{
		kafkaServers: kafkaServers,
		producer:     producer,
		logger:       logger,
	}

	go st.deliveryReports()

	return st, nil
}

func (st *KafkaStream) deliveryReports() {
	for e := range st.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				st.logger.Error("event delivery failed", "topic", *ev.TopicPartition.Topic, "error", ev.TopicPartition.Error)
			}
		case kafka.Error:
			st.logger.Error("kafka producer error", "error", ev)
		}
	}
}

func (st *KafkaStream) Publish(topic, key string, event any) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = st.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}, nil)
	if err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}

	return nil
}

type StreamConsumer struct {
	GroupId string
	Topics  []string
}

func (st *KafkaStream) CreateConsumer(consumerStruct *StreamConsumer) (*kafka.Consumer, error) {
	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": st.kafkaServers,
		"group.id":          consumerStruct.GroupId,
		"auto.offset.reset": "earliest",
	})
	if err != nil {
		return nil, err
	}

	if err := consumer.SubscribeTopics(consumerStruct.Topics, nil); err != nil {
		consumer.Close()
		return nil, err
	}

	return consumer, nil
}

// Close waits up to five seconds for queued events, then shuts the producer down.
func (st *KafkaStream) Close() {
	st.producer.Flush(5000)
	st.producer.Close()
}
