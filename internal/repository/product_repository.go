package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/verone-next/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
	GetBySKU(sku string) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	ListUnarchivedIDs() ([]uint, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Archive(id uint, at time.Time) (int64, error)
	Unarchive(id uint) (int64, error)
	SetStockCounters(id uint, real, forecastedIn, forecastedOut int) error
	ShiftStockCounters(id uint, realDelta, forecastInDelta, forecastOutDelta int) error
	SetAvailabilityStatus(id uint, status models.AvailabilityStatus) error
	CountBySKU(sku string, excludeID *uint) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	var products []models.Product

	query := r.db.Model(&models.Product{})
	if filter.OnlyUnarchived {
		query = query.Where("archived_at IS NULL")
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("availability_status = ?", status)
	}
	if filter.OnlyBelowMin {
		query = query.Where("stock_real < min_stock")
	}
	if filter.CreatedByAffili != nil {
		query = query.Where("created_by_affiliate = ?", *filter.CreatedByAffili)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("sku LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetBySKU 根据货号获取商品
func (r *GormProductRepository) GetBySKU(sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Where("sku = ?", sku).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListByIDs 批量获取商品
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListUnarchivedIDs 列出所有未归档商品 ID
func (r *GormProductRepository) ListUnarchivedIDs() ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.Product{}).
		Where("archived_at IS NULL").
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Archive 归档商品
func (r *GormProductRepository) Archive(id uint, at time.Time) (int64, error) {
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND archived_at IS NULL", id).
		Update("archived_at", at)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Unarchive 取消归档
func (r *GormProductRepository) Unarchive(id uint) (int64, error) {
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND archived_at IS NOT NULL", id).
		Update("archived_at", nil)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SetStockCounters 回写库存投影计数
func (r *GormProductRepository) SetStockCounters(id uint, real, forecastedIn, forecastedOut int) error {
	return r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_real":           real,
			"stock_forecasted_in":  forecastedIn,
			"stock_forecasted_out": forecastedOut,
		}).Error
}

// ShiftStockCounters 按增量调整库存投影计数
func (r *GormProductRepository) ShiftStockCounters(id uint, realDelta, forecastInDelta, forecastOutDelta int) error {
	updates := map[string]interface{}{}
	if realDelta != 0 {
		updates["stock_real"] = gorm.Expr("stock_real + ?", realDelta)
	}
	if forecastInDelta != 0 {
		updates["stock_forecasted_in"] = gorm.Expr("stock_forecasted_in + ?", forecastInDelta)
	}
	if forecastOutDelta != 0 {
		updates["stock_forecasted_out"] = gorm.Expr("stock_forecasted_out + ?", forecastOutDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error
}

// SetAvailabilityStatus 回写可售状态
func (r *GormProductRepository) SetAvailabilityStatus(id uint, status models.AvailabilityStatus) error {
	return r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Update("availability_status", status).Error
}

// CountBySKU 统计货号数量
func (r *GormProductRepository) CountBySKU(sku string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Product{}).Where("sku = ?", sku)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
