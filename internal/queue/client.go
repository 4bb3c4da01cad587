package queue

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/constants"
	"github.com/buildlab-academy/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	defaultConcurrency = 10
	mailTaskTimeout    = 30 * time.Second
	bulkTaskTimeout    = 5 * time.Minute
)

// Client 队列客户端封装，未启用时所有投递为空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(buildRedisOpt(cfg))}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueVerificationApprovedEmail 投递认证通过邮件
func (c *Client) EnqueueVerificationApprovedEmail(payload VerificationApprovedEmailPayload) error {
	return c.enqueue(func() (*asynq.Task, error) { return NewVerificationApprovedEmailTask(payload) },
		asynq.Queue(constants.QueueMail), asynq.MaxRetry(5), asynq.Timeout(mailTaskTimeout))
}

// EnqueueNewsletterWelcomeEmail 投递欢迎邮件
func (c *Client) EnqueueNewsletterWelcomeEmail(payload NewsletterWelcomeEmailPayload) error {
	return c.enqueue(func() (*asynq.Task, error) { return NewNewsletterWelcomeEmailTask(payload) },
		asynq.Queue(constants.QueueMail), asynq.MaxRetry(3), asynq.Timeout(mailTaskTimeout))
}

// EnqueueNewsletterBroadcastBatch 投递群发批次；批次内失败的收件人由 worker 记录，不整体重试
func (c *Client) EnqueueNewsletterBroadcastBatch(payload NewsletterBroadcastBatchPayload) error {
	return c.enqueue(func() (*asynq.Task, error) { return NewNewsletterBroadcastBatchTask(payload) },
		asynq.Queue(constants.QueueBulk), asynq.MaxRetry(0), asynq.Timeout(bulkTaskTimeout))
}

func (c *Client) enqueue(build func() (*asynq.Task, error), opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := build()
	if err != nil {
		return err
	}
	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return err
	}
	logger.Debugw("queue_task_enqueued", "type", task.Type(), "task_id", info.ID, "queue", info.Queue)
	return nil
}

// BuildServerConfig 生成 worker 配置，asynq 内部日志与任务失败统一走 zap
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := defaultConcurrency
	queues := map[string]int{constants.QueueDefault: 1}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			queues = cfg.Queues
		}
	}
	return buildRedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
		Logger:      logger.SW("component", "asynq"),
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Warnw("queue_task_failed", "type", task.Type(), "error", err)
		}),
	}
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: net.JoinHostPort("127.0.0.1", "6379")}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := 6379
	if cfg.Port > 0 {
		port = cfg.Port
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
