package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/models"
	"github.com/buildlab-academy/internal/queue"
	"github.com/buildlab-academy/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupNewsletterServiceTest(t *testing.T) (*NewsletterService, *repository.GormNewsletterRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:newsletter_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.NewsletterSubscription{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	repo := repository.NewNewsletterRepository(db)
	svc := NewNewsletterService(repo, NewEmailService(&config.EmailConfig{}), nil, "https://buildlab.example.com/", "", 2)
	return svc, repo
}

func TestNewsletterSubscribeLifecycle(t *testing.T) {
	svc, repo := setupNewsletterServiceTest(t)

	if _, err := svc.Subscribe("bad-email", "", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	result, err := svc.Subscribe(" Reader@Example.com ", "", "")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if result.Email != "reader@example.com" || result.Reactivated {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, err := svc.Subscribe("reader@example.com", "", ""); !errors.Is(err, ErrNewsletterAlreadySubscribed) {
		t.Fatalf("expected ErrNewsletterAlreadySubscribed, got %v", err)
	}

	sub, err := repo.GetByEmail("reader@example.com")
	if err != nil || sub == nil {
		t.Fatalf("load subscription failed: %v", err)
	}
	if sub.Source != "website" || sub.UnsubscribeToken == "" {
		t.Fatalf("unexpected subscription: %+v", sub)
	}

	email, err := svc.Unsubscribe(strings.ToUpper(sub.UnsubscribeToken), "")
	if err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}
	if email != "reader@example.com" {
		t.Fatalf("unexpected email: %s", email)
	}
	if _, err := svc.Unsubscribe(sub.UnsubscribeToken, ""); !errors.Is(err, ErrNewsletterSubscriptionNotFound) {
		t.Fatalf("second unsubscribe: expected ErrNewsletterSubscriptionNotFound, got %v", err)
	}

	again, err := svc.Subscribe("reader@example.com", "admin", "")
	if err != nil {
		t.Fatalf("resubscribe failed: %v", err)
	}
	if !again.Reactivated {
		t.Fatalf("expected reactivation: %+v", again)
	}
	reloaded, _ := repo.GetByEmail("reader@example.com")
	if !reloaded.IsActive || reloaded.UnsubscribedAt != nil || reloaded.Source != "admin" {
		t.Fatalf("unexpected reactivated row: %+v", reloaded)
	}
}

func TestNewsletterUnsubscribeByEmail(t *testing.T) {
	svc, _ := setupNewsletterServiceTest(t)

	if _, err := svc.Unsubscribe("", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.Unsubscribe("", "ghost@example.com"); !errors.Is(err, ErrNewsletterSubscriptionNotFound) {
		t.Fatalf("expected ErrNewsletterSubscriptionNotFound, got %v", err)
	}
	if _, err := svc.Subscribe("fan@example.com", "", ""); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if _, err := svc.Unsubscribe("", "FAN@example.com"); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}
}

func TestNewsletterStatistics(t *testing.T) {
	svc, _ := setupNewsletterServiceTest(t)
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if _, err := svc.Subscribe(email, "", ""); err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}
	}
	if _, err := svc.Unsubscribe("", "b@example.com"); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}

	stats, err := svc.Statistics()
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.ActiveSubscribers != 2 || stats.TotalSubscribers != 3 || stats.UnsubscribedSubscribers != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(stats.RecentSubscribers) != 2 {
		t.Fatalf("unexpected recent subscribers: %+v", stats.RecentSubscribers)
	}
}

func TestNewsletterBroadcastRequiresQueue(t *testing.T) {
	svc, _ := setupNewsletterServiceTest(t)

	if _, err := svc.Broadcast(" ", "body"); !errors.Is(err, ErrNewsletterContentRequired) {
		t.Fatalf("expected ErrNewsletterContentRequired, got %v", err)
	}
	if _, err := svc.Broadcast("Hello", "body"); !errors.Is(err, ErrQueueUnavailable) {
		t.Fatalf("expected ErrQueueUnavailable, got %v", err)
	}
}

func TestNewsletterSendBroadcastBatchCountsFailures(t *testing.T) {
	svc, _ := setupNewsletterServiceTest(t)

	sent, failed := svc.SendBroadcastBatch(context.Background(), queue.NewsletterBroadcastBatchPayload{
		BroadcastID: "b1",
		Subject:     "Hello",
		Content:     "body",
		Recipients:  []string{"a@example.com", "b@example.com"},
	})
	if sent != 0 || failed != 2 {
		t.Fatalf("disabled email should fail every recipient, sent=%d failed=%d", sent, failed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sent, failed = svc.SendBroadcastBatch(ctx, queue.NewsletterBroadcastBatchPayload{Recipients: []string{"a@example.com", "b@example.com", "c@example.com"}})
	if sent != 0 || failed != 3 {
		t.Fatalf("cancelled batch should count all as failed, sent=%d failed=%d", sent, failed)
	}
}

func TestNewsletterSendWelcomeSkipsInactive(t *testing.T) {
	svc, repo := setupNewsletterServiceTest(t)
	if _, err := svc.Subscribe("w@example.com", "", ""); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	sub, _ := repo.GetByEmail("w@example.com")

	if err := svc.SendWelcome(sub.ID, ""); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("active subscription should attempt delivery, got %v", err)
	}
	if _, err := svc.Unsubscribe(sub.UnsubscribeToken, ""); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}
	if err := svc.SendWelcome(sub.ID, ""); err != nil {
		t.Fatalf("inactive subscription should be skipped, got %v", err)
	}
}

func TestNewsletterUnsubscribeURL(t *testing.T) {
	svc, _ := setupNewsletterServiceTest(t)
	got := svc.UnsubscribeURL("01hx y")
	want := "https://buildlab.example.com/api/v1/public/newsletter/unsubscribe?token=01hx+y"
	if got != want {
		t.Fatalf("unexpected url: %s", got)
	}
}
