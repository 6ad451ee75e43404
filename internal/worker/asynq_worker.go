package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/verone-next/internal/logger"
	"github.com/verone-next/internal/provider"
	"github.com/verone-next/internal/queue"
	"github.com/verone-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskStockReconcile, c.handleStockReconcile)
	mux.HandleFunc(queue.TaskStockForecastRecalc, c.handleStockForecastRecalc)
	mux.HandleFunc(queue.TaskReservationExpire, c.handleReservationExpire)
	mux.HandleFunc(queue.TaskCommissionZeroAudit, c.handleCommissionZeroAudit)
}

func (c *Consumer) handleStockReconcile(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_stock_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StockReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_stock_reconcile_unmarshal_failed", "error", err)
		return err
	}
	if payload.ProductID == 0 {
		reports, err := c.StockService.ReconcileAll()
		if err != nil {
			logger.Warnw("worker_stock_reconcile_all_failed", "error", err)
			return err
		}
		drifted := 0
		for _, report := range reports {
			if !report.IsCoherent {
				drifted++
				logger.Warnw("worker_stock_drift_detected",
					"product_id", report.ProductID,
					"sku", report.SKU,
					"calculated", report.Calculated,
					"stored", report.Stored,
					"difference", report.Difference,
				)
			}
		}
		logger.Infow("worker_stock_reconcile_done", "products", len(reports), "drifted", drifted)
		return nil
	}

	report, err := c.StockService.Reconcile(payload.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			logger.Debugw("worker_stock_reconcile_skip_product_not_found", "product_id", payload.ProductID)
			return nil
		}
		logger.Warnw("worker_stock_reconcile_failed", "product_id", payload.ProductID, "error", err)
		return err
	}
	if !report.IsCoherent {
		logger.Warnw("worker_stock_drift_detected",
			"product_id", report.ProductID,
			"sku", report.SKU,
			"difference", report.Difference,
		)
	}
	return nil
}

func (c *Consumer) handleStockForecastRecalc(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_forecast_recalc_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StockForecastRecalcPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_forecast_recalc_unmarshal_failed", "error", err)
		return err
	}
	if payload.ProductID == 0 {
		logger.Debugw("worker_forecast_recalc_skip_invalid_payload", "product_id", payload.ProductID)
		return nil
	}
	if _, err := c.StockService.RecalculateStock(payload.ProductID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			logger.Debugw("worker_forecast_recalc_skip_product_not_found", "product_id", payload.ProductID)
			return nil
		}
		logger.Warnw("worker_forecast_recalc_failed", "product_id", payload.ProductID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleReservationExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_reservation_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ReservationExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_reservation_expire_unmarshal_failed", "error", err)
		return err
	}
	now := payload.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	released, err := c.StockService.ExpireReservations(now)
	if err != nil {
		logger.Warnw("worker_reservation_expire_failed", "error", err)
		return err
	}
	if released > 0 {
		logger.Infow("worker_reservation_expire_done", "released", released)
	}
	return nil
}

func (c *Consumer) handleCommissionZeroAudit(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_commission_audit_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CommissionZeroAuditPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_commission_audit_unmarshal_failed", "error", err)
		return err
	}
	since := payload.Since
	if since.IsZero() {
		windowDays := c.Config.Commission.AuditWindowDays
		if windowDays <= 0 {
			windowDays = 30
		}
		since = time.Now().UTC().AddDate(0, 0, -windowDays)
	}
	report, err := c.CommissionService.AuditZeroCommissions(since)
	if err != nil {
		logger.Warnw("worker_commission_audit_failed", "error", err)
		return err
	}
	if report.Total > 0 {
		logger.Warnw("worker_commission_zero_entries_found", "since", since, "total", report.Total)
	} else {
		logger.Infow("worker_commission_audit_clean", "since", since)
	}
	return nil
}
