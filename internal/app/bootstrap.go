package app

import (
	"errors"
	"net"

	"github.com/buildlab-academy/internal/config"
	"github.com/buildlab-academy/internal/logger"
	"github.com/buildlab-academy/internal/provider"
	"github.com/buildlab-academy/internal/router"
	"github.com/buildlab-academy/internal/worker"
)

// BuildRunner 按模式组装 HTTP 与 worker 服务，容器随 Runner 关闭
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	container := provider.NewContainer(cfg)
	services, err := buildServices(cfg, mode, container)
	if err != nil {
		container.Close()
		return nil, err
	}
	runner := NewRunner(services...)
	runner.closers = append(runner.closers, container.Close)
	return runner, nil
}

func buildServices(cfg *config.Config, mode string, container *provider.Container) ([]Service, error) {
	var services []Service
	if mode == ModeAll || mode == ModeAPI {
		services = append(services, NewHTTPService(listenAddr(cfg), router.SetupRouter(cfg, container)))
	}

	switch {
	case mode == ModeAll && !cfg.Queue.Enabled:
		// 队列未启用时邮件任务静默丢弃，只跑 HTTP
		logger.Warnw("worker_skipped_queue_disabled")
	case mode == ModeAll || mode == ModeWorker:
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return services, nil
}

func listenAddr(cfg *config.Config) string {
	return net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = opts.withDefaults()
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	mode, err := ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	opts.Mode = mode

	runner, err := BuildRunner(opts.Config, mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config), "mode", mode)
	return RunWithOptions(runner, opts)
}
