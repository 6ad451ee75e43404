package service

import (
	"errors"
	"strings"
	"time"

	"github.com/verone-next/internal/logger"
	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"

	"gorm.io/gorm"
)

// 链尾与期望值不一致时触发重试
var errStaleChain = errors.New("stale movement chain")

const defaultAppendMaxRetries = 3

// StockOptions 库存服务配置
type StockOptions struct {
	AppendMaxRetries int
	ReservationTTL   time.Duration
}

// StockService 库存账本业务服务
type StockService struct {
	movementRepo    repository.StockMovementRepository
	reservationRepo repository.StockReservationRepository
	productRepo     repository.ProductRepository
	options         StockOptions
}

// NewStockService 创建库存服务
func NewStockService(
	movementRepo repository.StockMovementRepository,
	reservationRepo repository.StockReservationRepository,
	productRepo repository.ProductRepository,
	options StockOptions,
) *StockService {
	if options.AppendMaxRetries <= 0 {
		options.AppendMaxRetries = defaultAppendMaxRetries
	}
	return &StockService{
		movementRepo:    movementRepo,
		reservationRepo: reservationRepo,
		productRepo:     productRepo,
		options:         options,
	}
}

// ApplyMovementInput 追加库存移动输入
type ApplyMovementInput struct {
	ProductID       uint
	MovementType    models.MovementType
	QuantityChange  int // 带符号：实际移动作用于实际库存，预测移动作用于对应预测计数器
	ReasonCode      models.ReasonCode
	AffectsForecast bool
	ForecastType    models.ForecastType
	ReferenceID     string
	ReferenceType   string
	WarehouseID     *uint
	ChannelID       *uint
	UnitCost        *models.Money
	Notes           string
	PerformedBy     string
	PerformedAt     time.Time
}

// StockCoherenceReport 库存一致性报告
type StockCoherenceReport struct {
	ProductID  uint   `json:"product_id"`
	SKU        string `json:"sku"`
	Calculated int    `json:"calculated_stock"`
	Stored     int    `json:"stock_real"`
	Difference int    `json:"difference"`
	IsCoherent bool   `json:"is_coherent"`
}

// StockSnapshot 单品库存汇总
type StockSnapshot struct {
	ProductID          uint `json:"product_id"`
	RealStock          int  `json:"real_stock"`
	ForecastedIn       int  `json:"forecasted_in"`
	ForecastedOut      int  `json:"forecasted_out"`
	Reserved           int  `json:"reserved"`
	AvailableToPromise int  `json:"available_to_promise"`
}

func (s *StockService) validateMovement(input ApplyMovementInput) error {
	if input.ProductID == 0 || input.QuantityChange == 0 {
		return ErrInvalidMovement
	}
	if !input.MovementType.Valid() {
		return ErrInvalidMovement
	}
	if !input.ReasonCode.Valid() {
		return ErrInvalidReasonCode
	}
	if input.AffectsForecast {
		if !input.ForecastType.Valid() {
			return ErrInvalidMovement
		}
		return nil
	}
	if input.ForecastType != "" {
		return ErrInvalidMovement
	}
	// 实际移动的符号必须与移动类型一致
	switch input.MovementType {
	case models.MovementIn:
		if input.QuantityChange < 0 {
			return ErrInvalidMovement
		}
	case models.MovementOut:
		if input.QuantityChange > 0 {
			return ErrInvalidMovement
		}
	}
	return nil
}

// ApplyMovement 乐观追加一条库存移动并回写商品投影计数
func (s *StockService) ApplyMovement(input ApplyMovementInput) (*models.StockMovement, error) {
	if err := s.validateMovement(input); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Archived() {
		return nil, ErrProductArchived
	}

	performedAt := input.PerformedAt
	if performedAt.IsZero() {
		performedAt = time.Now().UTC()
	}

	var movement *models.StockMovement
	for attempt := 0; attempt < s.options.AppendMaxRetries; attempt++ {
		movement, err = s.tryAppend(input, performedAt)
		if err == nil {
			break
		}
		if !errors.Is(err, errStaleChain) {
			return nil, err
		}
		logger.Debugw("stock_append_retry",
			"product_id", input.ProductID,
			"attempt", attempt+1,
		)
	}
	if err != nil {
		if errors.Is(err, errStaleChain) {
			return nil, ErrConcurrencyConflict
		}
		return nil, err
	}

	s.refreshAutoStatus(input.ProductID)
	return movement, nil
}

func (s *StockService) tryAppend(input ApplyMovementInput, performedAt time.Time) (*models.StockMovement, error) {
	last, err := s.movementRepo.LastInChain(input.ProductID, input.AffectsForecast, input.ForecastType)
	if err != nil {
		return nil, err
	}
	before := 0
	if last != nil {
		before = last.QuantityAfter
	}
	after := before + input.QuantityChange
	if after < 0 {
		if input.AffectsForecast {
			return nil, ErrInvalidMovement
		}
		return nil, ErrStockInsufficient
	}

	movement := &models.StockMovement{
		ProductID:       input.ProductID,
		MovementType:    input.MovementType,
		QuantityChange:  input.QuantityChange,
		QuantityBefore:  before,
		QuantityAfter:   after,
		ReasonCode:      input.ReasonCode,
		AffectsForecast: input.AffectsForecast,
		ForecastType:    input.ForecastType,
		ReferenceID:     strings.TrimSpace(input.ReferenceID),
		ReferenceType:   strings.TrimSpace(input.ReferenceType),
		WarehouseID:     input.WarehouseID,
		ChannelID:       input.ChannelID,
		UnitCost:        input.UnitCost,
		Notes:           input.Notes,
		PerformedBy:     strings.TrimSpace(input.PerformedBy),
		PerformedAt:     performedAt,
	}

	err = s.movementRepo.Transaction(func(tx *gorm.DB) error {
		movementRepo := s.movementRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		appended, err := movementRepo.AppendToChain(movement, before)
		if err != nil {
			return err
		}
		if !appended {
			return errStaleChain
		}

		// 投影计数与账本追加同事务更新
		realDelta, forecastInDelta, forecastOutDelta := 0, 0, 0
		switch {
		case !input.AffectsForecast:
			realDelta = input.QuantityChange
		case input.ForecastType == models.ForecastIn:
			forecastInDelta = input.QuantityChange
		default:
			forecastOutDelta = input.QuantityChange
		}
		return productRepo.ShiftStockCounters(input.ProductID, realDelta, forecastInDelta, forecastOutDelta)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func (s *StockService) refreshAutoStatus(productID uint) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil || product == nil || !product.StatusAuto {
		return
	}
	status := automaticStatus(product.StockReal, product.StockForecastedIn)
	if status == product.AvailabilityStatus {
		return
	}
	if err := s.productRepo.SetAvailabilityStatus(productID, status); err != nil {
		logger.Warnw("stock_auto_status_update_failed", "product_id", productID, "error", err)
	}
}

// RealStock 从账本聚合实际库存
func (s *StockService) RealStock(productID uint) (int, error) {
	return s.movementRepo.SumRealChange(productID)
}

// ForecastedStock 从账本聚合预测库存（排除已消费的预测移动）
func (s *StockService) ForecastedStock(productID uint) (repository.ForecastSums, error) {
	return s.movementRepo.SumForecast(productID)
}

// Snapshot 汇总单品库存视图
func (s *StockService) Snapshot(productID uint) (*StockSnapshot, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	real, err := s.movementRepo.SumRealChange(productID)
	if err != nil {
		return nil, err
	}
	forecast, err := s.movementRepo.SumForecast(productID)
	if err != nil {
		return nil, err
	}
	reserved, err := s.reservationRepo.SumActiveQuantity(productID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &StockSnapshot{
		ProductID:          productID,
		RealStock:          real,
		ForecastedIn:       forecast.In,
		ForecastedOut:      forecast.Out,
		Reserved:           reserved,
		AvailableToPromise: real - reserved,
	}, nil
}

// AvailableToPromise 可承诺库存 = 实际库存 − 有效预约（预测出库仅供参考，不参与扣减）
func (s *StockService) AvailableToPromise(productID uint) (int, error) {
	real, err := s.movementRepo.SumRealChange(productID)
	if err != nil {
		return 0, err
	}
	reserved, err := s.reservationRepo.SumActiveQuantity(productID, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return real - reserved, nil
}

// ReserveInput 创建库存预约输入
type ReserveInput struct {
	ProductID     uint
	Quantity      int
	ReferenceID   string
	ReferenceType string
	ExpiresAt     *time.Time
}

// Reserve 预约库存，数量超过可承诺库存时拒绝
func (s *StockService) Reserve(input ReserveInput) (*models.StockReservation, error) {
	if input.ProductID == 0 || input.Quantity <= 0 {
		return nil, ErrInvalidInput
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Archived() {
		return nil, ErrProductArchived
	}

	now := time.Now().UTC()
	expiresAt := input.ExpiresAt
	if expiresAt == nil && s.options.ReservationTTL > 0 {
		expiry := now.Add(s.options.ReservationTTL)
		expiresAt = &expiry
	}

	var reservation *models.StockReservation
	err = s.reservationRepo.Transaction(func(tx *gorm.DB) error {
		movementRepo := s.movementRepo.WithTx(tx)
		reservationRepo := s.reservationRepo.WithTx(tx)

		real, err := movementRepo.SumRealChange(input.ProductID)
		if err != nil {
			return err
		}
		reserved, err := reservationRepo.SumActiveQuantity(input.ProductID, now)
		if err != nil {
			return err
		}
		if input.Quantity > real-reserved {
			return ErrStockInsufficient
		}

		reservation = &models.StockReservation{
			ProductID:        input.ProductID,
			ReservedQuantity: input.Quantity,
			ReferenceID:      strings.TrimSpace(input.ReferenceID),
			ReferenceType:    strings.TrimSpace(input.ReferenceType),
			ExpiresAt:        expiresAt,
		}
		return reservationRepo.Create(reservation)
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// Release 释放预约（重复释放为幂等空操作）
func (s *StockService) Release(reservationID uint) error {
	reservation, err := s.reservationRepo.GetByID(reservationID)
	if err != nil {
		return err
	}
	if reservation == nil {
		return ErrReservationNotFound
	}
	_, err = s.reservationRepo.Release(reservationID, time.Now().UTC())
	return err
}

// Reconcile 对比账本聚合值与缓存计数，只报告不修复
func (s *StockService) Reconcile(productID uint) (*StockCoherenceReport, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	calculated, err := s.movementRepo.SumRealChange(productID)
	if err != nil {
		return nil, err
	}
	difference := calculated - product.StockReal
	return &StockCoherenceReport{
		ProductID:  productID,
		SKU:        product.SKU,
		Calculated: calculated,
		Stored:     product.StockReal,
		Difference: difference,
		IsCoherent: difference == 0,
	}, nil
}

// ReconcileAll 批量一致性巡检，单品失败不阻断其余商品
func (s *StockService) ReconcileAll() ([]StockCoherenceReport, error) {
	ids, err := s.productRepo.ListUnarchivedIDs()
	if err != nil {
		return nil, err
	}
	reports := make([]StockCoherenceReport, 0, len(ids))
	for _, id := range ids {
		report, err := s.Reconcile(id)
		if err != nil {
			logger.Warnw("stock_reconcile_product_failed", "product_id", id, "error", err)
			continue
		}
		reports = append(reports, *report)
	}
	return reports, nil
}

// RecalculateStock 从账本重算并回写商品的全部库存投影计数
func (s *StockService) RecalculateStock(productID uint) (*StockSnapshot, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	real, err := s.movementRepo.SumRealChange(productID)
	if err != nil {
		return nil, err
	}
	forecast, err := s.movementRepo.SumForecast(productID)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.SetStockCounters(productID, real, forecast.In, forecast.Out); err != nil {
		return nil, err
	}
	s.refreshAutoStatus(productID)
	return &StockSnapshot{
		ProductID:     productID,
		RealStock:     real,
		ForecastedIn:  forecast.In,
		ForecastedOut: forecast.Out,
	}, nil
}

// ExpireReservations 释放已过期的预约
func (s *StockService) ExpireReservations(now time.Time) (int64, error) {
	return s.reservationRepo.ReleaseExpired(now)
}

// ListMovements 移动记录查询
func (s *StockService) ListMovements(filter repository.MovementListFilter) ([]models.StockMovement, int64, error) {
	return s.movementRepo.List(filter)
}

// ListReservations 预约查询
func (s *StockService) ListReservations(filter repository.ReservationListFilter) ([]models.StockReservation, int64, error) {
	return s.reservationRepo.List(filter, time.Now().UTC())
}
