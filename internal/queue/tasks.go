package queue

import (
	"encoding/json"
	"time"

	"github.com/verone-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskStockReconcile 库存一致性巡检任务
	TaskStockReconcile = constants.TaskStockReconcile
	// TaskStockForecastRecalc 预测库存重算任务
	TaskStockForecastRecalc = constants.TaskStockForecastRecalc
	// TaskReservationExpire 预约过期释放任务
	TaskReservationExpire = constants.TaskReservationExpire
	// TaskCommissionZeroAudit 零佣金审计任务
	TaskCommissionZeroAudit = constants.TaskCommissionZeroAudit
)

// StockReconcilePayload 库存巡检任务载荷（ProductID 为 0 表示全量巡检）
type StockReconcilePayload struct {
	ProductID uint `json:"product_id"`
}

// StockForecastRecalcPayload 预测库存重算任务载荷
type StockForecastRecalcPayload struct {
	ProductID uint `json:"product_id"`
}

// ReservationExpirePayload 预约过期释放任务载荷
type ReservationExpirePayload struct {
	Now time.Time `json:"now"`
}

// CommissionZeroAuditPayload 零佣金审计任务载荷
type CommissionZeroAuditPayload struct {
	Since time.Time `json:"since"`
}

// NewStockReconcileTask 创建库存巡检任务
func NewStockReconcileTask(payload StockReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockReconcile, body), nil
}

// NewStockForecastRecalcTask 创建预测库存重算任务
func NewStockForecastRecalcTask(payload StockForecastRecalcPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockForecastRecalc, body), nil
}

// NewReservationExpireTask 创建预约过期释放任务
func NewReservationExpireTask(payload ReservationExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReservationExpire, body), nil
}

// NewCommissionZeroAuditTask 创建零佣金审计任务
func NewCommissionZeroAuditTask(payload CommissionZeroAuditPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommissionZeroAudit, body), nil
}
