package queue

import (
	"encoding/json"
	"testing"

	"github.com/buildlab-academy/internal/config"

	"github.com/stretchr/testify/require"
)

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	require.NoError(t, err)
	require.False(t, client.Enabled())
	require.NoError(t, client.EnqueueVerificationApprovedEmail(VerificationApprovedEmailPayload{VerificationID: 1}))
	require.NoError(t, client.EnqueueNewsletterBroadcastBatch(NewsletterBroadcastBatchPayload{}))
	require.NoError(t, client.Close())
}

func TestBroadcastTaskPayload(t *testing.T) {
	task, err := NewNewsletterBroadcastBatchTask(NewsletterBroadcastBatchPayload{
		BroadcastID: "01J0000000000000000000000",
		Subject:     "Spring cohort",
		Content:     "Enrollment opens Monday",
		Recipients:  []string{"a@college.edu", "b@college.edu"},
	})
	require.NoError(t, err)
	require.Equal(t, TaskNewsletterBroadcastBatch, task.Type())

	var decoded NewsletterBroadcastBatchPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &decoded))
	require.Len(t, decoded.Recipients, 2)
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: " redis ", Port: 6380, DB: 2})
	require.Equal(t, "redis:6380", opt.Addr)
	require.Equal(t, 2, opt.DB)
	require.Equal(t, 10, cfg.Concurrency)
	require.Equal(t, map[string]int{"default": 1}, cfg.Queues)
}
