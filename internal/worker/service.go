package worker

import (
	"context"
	"errors"
	"time"

	"github.com/verone-next/internal/config"
	"github.com/verone-next/internal/logger"
	"github.com/verone-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	reservationSweepInterval = time.Minute
	defaultReconcileInterval = 30 * time.Minute
	commissionAuditInterval  = 24 * time.Hour
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.StockService != nil {
		go s.runReservationSweepLoop(ctx)
		go s.runReconcileLoop(ctx)
	}
	if s.consumer != nil && s.consumer.CommissionService != nil {
		go s.runCommissionAuditLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runReservationSweepLoop(ctx context.Context) {
	runOnce := func() {
		released, err := s.consumer.StockService.ExpireReservations(time.Now().UTC())
		if err != nil {
			logger.Warnw("worker_reservation_sweep_failed", "error", err)
			return
		}
		if released > 0 {
			logger.Infow("worker_reservation_sweep_done", "released", released)
		}
	}
	runOnce()

	ticker := time.NewTicker(reservationSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) runReconcileLoop(ctx context.Context) {
	interval := defaultReconcileInterval
	if s.consumer.Config != nil && s.consumer.Config.Stock.ReconcileIntervalMinutes > 0 {
		interval = time.Duration(s.consumer.Config.Stock.ReconcileIntervalMinutes) * time.Minute
	}
	runOnce := func() {
		if err := s.consumer.QueueClient.EnqueueStockReconcile(queue.StockReconcilePayload{}); err != nil {
			logger.Warnw("worker_reconcile_enqueue_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) runCommissionAuditLoop(ctx context.Context) {
	runOnce := func() {
		if err := s.consumer.QueueClient.EnqueueCommissionZeroAudit(queue.CommissionZeroAuditPayload{}); err != nil {
			logger.Warnw("worker_commission_audit_enqueue_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(commissionAuditInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
