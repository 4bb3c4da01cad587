package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/buildlab-academy/internal/provider"
	"github.com/buildlab-academy/internal/service"

	"github.com/hibiken/asynq"
)

func TestFinishEmailTask(t *testing.T) {
	if err := finishEmailTask("test", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := finishEmailTask("test", service.ErrEmailServiceDisabled, "id", 1); err != nil {
		t.Fatalf("disabled email should not retry, got %v", err)
	}
	err := finishEmailTask("test", service.ErrEmailRecipientRejected, "id", 1)
	if !errors.Is(err, asynq.SkipRetry) || !errors.Is(err, service.ErrEmailRecipientRejected) {
		t.Fatalf("rejected recipient should skip retry, got %v", err)
	}
	transient := errors.New("dial tcp timeout")
	if err := finishEmailTask("test", transient); !errors.Is(err, transient) || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("transient error should be retried, got %v", err)
	}
}

func TestHandlersRejectMalformedPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask("any", []byte("{not json"))
	handlers := []func(context.Context, *asynq.Task) error{
		consumer.handleVerificationApprovedEmail,
		consumer.handleNewsletterWelcomeEmail,
		consumer.handleNewsletterBroadcastBatch,
	}
	for _, handle := range handlers {
		if err := handle(context.Background(), task); !errors.Is(err, asynq.SkipRetry) {
			t.Fatalf("expected SkipRetry, got %v", err)
		}
	}
}

func TestHandlersSkipEmptyPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask("any", []byte(`{}`))
	if err := consumer.handleVerificationApprovedEmail(context.Background(), task); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := consumer.handleNewsletterWelcomeEmail(context.Background(), task); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := consumer.handleNewsletterBroadcastBatch(context.Background(), task); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
