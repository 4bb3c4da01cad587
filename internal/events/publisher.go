package events

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Event 领域事件
type Event struct {
	Type           string                 `json:"type"`
	VerificationID uint                   `json:"verification_id"`
	UserID         string                 `json:"user_id"`
	OccurredAt     time.Time              `json:"occurred_at"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

// Publisher 事件投递接口
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NewPublisher 按配置创建投递器，未启用时返回空实现
func NewPublisher(cfg config.KafkaConfig) Publisher {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, broker := range cfg.Brokers {
		if trimmed := strings.TrimSpace(broker); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	if !cfg.Enabled || len(brokers) == 0 || strings.TrimSpace(cfg.Topic) == "" {
		return NopPublisher{}
	}
	timeout := time.Duration(cfg.WriteTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        strings.TrimSpace(cfg.Topic),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: timeout,
		},
		timeout: timeout,
	}
}

// KafkaPublisher 基于 kafka-go 的同步投递
type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
	once    sync.Once
}

// Publish 以用户 ID 作为分区键，保证同一用户事件有序
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if p == nil || p.writer == nil {
		return nil
	}
	msg, err := encodeMessage(event)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logger.Warnw("event_publish_failed", "type", event.Type, "verification_id", event.VerificationID, "error", err)
		return err
	}
	return nil
}

// Close 关闭写入器
func (p *KafkaPublisher) Close() error {
	var err error
	p.once.Do(func() {
		err = p.writer.Close()
	})
	return err
}

// NopPublisher 空实现
type NopPublisher struct{}

// Publish 丢弃事件
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close 空操作
func (NopPublisher) Close() error { return nil }

func encodeMessage(event Event) (kafka.Message, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.UserID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}
