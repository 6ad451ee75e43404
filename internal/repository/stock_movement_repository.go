package repository

import (
	"errors"
	"strings"

	"github.com/verone-next/internal/models"

	"gorm.io/gorm"
)

// StockMovementRepository 库存移动账本数据访问接口（只追加）
type StockMovementRepository interface {
	AppendToChain(movement *models.StockMovement, expectedBefore int) (bool, error)
	LastInChain(productID uint, affectsForecast bool, forecastType models.ForecastType) (*models.StockMovement, error)
	List(filter MovementListFilter) ([]models.StockMovement, int64, error)
	ListByReference(productID uint, referenceID string) ([]models.StockMovement, error)
	SumRealChange(productID uint) (int, error)
	SumForecast(productID uint) (ForecastSums, error)
	HasRealByReference(productID uint, referenceID string) (bool, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) StockMovementRepository
}

// GormStockMovementRepository GORM 实现
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewStockMovementRepository 创建库存移动仓库
func NewStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockMovementRepository) WithTx(tx *gorm.DB) StockMovementRepository {
	if tx == nil {
		return r
	}
	return &GormStockMovementRepository{db: tx}
}

// Transaction 执行事务
func (r *GormStockMovementRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func chainQuery(db *gorm.DB, productID uint, affectsForecast bool, forecastType models.ForecastType) *gorm.DB {
	query := db.Model(&models.StockMovement{}).
		Where("product_id = ? AND affects_forecast = ?", productID, affectsForecast)
	if affectsForecast {
		query = query.Where("forecast_type = ?", forecastType)
	}
	return query
}

// AppendToChain 乐观追加：链尾 quantity_after 与期望值一致时才写入
func (r *GormStockMovementRepository) AppendToChain(movement *models.StockMovement, expectedBefore int) (bool, error) {
	if movement == nil {
		return false, errors.New("nil movement")
	}
	appended := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var last models.StockMovement
		err := chainQuery(tx, movement.ProductID, movement.AffectsForecast, movement.ForecastType).
			Order("id DESC").
			First(&last).Error
		lastAfter := 0
		switch {
		case err == nil:
			lastAfter = last.QuantityAfter
		case errors.Is(err, gorm.ErrRecordNotFound):
			lastAfter = 0
		default:
			return err
		}
		if lastAfter != expectedBefore {
			return nil
		}
		if err := tx.Create(movement).Error; err != nil {
			return err
		}
		appended = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return appended, nil
}

// LastInChain 返回链尾移动记录（链为空时返回 nil）
func (r *GormStockMovementRepository) LastInChain(productID uint, affectsForecast bool, forecastType models.ForecastType) (*models.StockMovement, error) {
	var movement models.StockMovement
	err := chainQuery(r.db, productID, affectsForecast, forecastType).
		Order("id DESC").
		First(&movement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movement, nil
}

// List 移动记录列表
func (r *GormStockMovementRepository) List(filter MovementListFilter) ([]models.StockMovement, int64, error) {
	var movements []models.StockMovement

	query := r.db.Model(&models.StockMovement{})
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if movementType := strings.TrimSpace(filter.MovementType); movementType != "" {
		query = query.Where("movement_type = ?", movementType)
	}
	if reason := strings.TrimSpace(filter.ReasonCode); reason != "" {
		query = query.Where("reason_code = ?", reason)
	}
	if reference := strings.TrimSpace(filter.ReferenceID); reference != "" {
		query = query.Where("reference_id = ?", reference)
	}
	if filter.AffectsForecast != nil {
		query = query.Where("affects_forecast = ?", *filter.AffectsForecast)
	}
	if filter.PerformedFrom != nil {
		query = query.Where("performed_at >= ?", *filter.PerformedFrom)
	}
	if filter.PerformedTo != nil {
		query = query.Where("performed_at < ?", *filter.PerformedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("performed_at DESC, id DESC").Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}

// ListByReference 根据业务引用列出移动记录
func (r *GormStockMovementRepository) ListByReference(productID uint, referenceID string) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	query := r.db.Where("reference_id = ?", referenceID)
	if productID != 0 {
		query = query.Where("product_id = ?", productID)
	}
	if err := query.Order("id ASC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// SumRealChange 实际库存 = 所有非预测移动的数量变化之和
func (r *GormStockMovementRepository) SumRealChange(productID uint) (int, error) {
	var sum *int
	err := r.db.Model(&models.StockMovement{}).
		Where("product_id = ? AND affects_forecast = ?", productID, false).
		Select("SUM(quantity_change)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// SumForecast 预测库存聚合：排除已被同引用实际移动消费的预测移动
func (r *GormStockMovementRepository) SumForecast(productID uint) (ForecastSums, error) {
	var rows []struct {
		ForecastType string
		Total        int
	}
	consumedSub := r.db.Model(&models.StockMovement{}).
		Select("reference_id").
		Where("product_id = ? AND affects_forecast = ? AND reference_id <> ''", productID, false)
	err := r.db.Model(&models.StockMovement{}).
		Select("forecast_type, SUM(quantity_change) AS total").
		Where("product_id = ? AND affects_forecast = ?", productID, true).
		Where("reference_id = '' OR reference_id NOT IN (?)", consumedSub).
		Group("forecast_type").
		Scan(&rows).Error
	if err != nil {
		return ForecastSums{}, err
	}
	// 预测移动的 quantity_change 为对应预测计数器的带符号增量
	sums := ForecastSums{}
	for _, row := range rows {
		switch models.ForecastType(row.ForecastType) {
		case models.ForecastIn:
			sums.In = row.Total
		case models.ForecastOut:
			sums.Out = row.Total
		}
	}
	return sums, nil
}

// HasRealByReference 判断某业务引用下是否已有实际移动
func (r *GormStockMovementRepository) HasRealByReference(productID uint, referenceID string) (bool, error) {
	if strings.TrimSpace(referenceID) == "" {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.StockMovement{}).
		Where("product_id = ? AND affects_forecast = ? AND reference_id = ?", productID, false, referenceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
