package repository

import (
	"errors"
	"time"

	"github.com/verone-next/internal/models"

	"gorm.io/gorm"
)

// CommissionRepository 佣金记录数据访问接口
type CommissionRepository interface {
	Create(record *models.CommissionRecord) error
	GetByOrderItem(orderItemID uint) (*models.CommissionRecord, error)
	ListByOrder(orderID uint) ([]models.CommissionRecord, error)
	ListZeroAmountSince(since time.Time) ([]models.CommissionRecord, error)
	WithTx(tx *gorm.DB) CommissionRepository
}

// GormCommissionRepository GORM 实现
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金仓库
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) CommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Create 创建佣金记录
func (r *GormCommissionRepository) Create(record *models.CommissionRecord) error {
	return r.db.Create(record).Error
}

// GetByOrderItem 根据订单明细获取佣金记录
func (r *GormCommissionRepository) GetByOrderItem(orderItemID uint) (*models.CommissionRecord, error) {
	var record models.CommissionRecord
	if err := r.db.Where("order_item_id = ?", orderItemID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// ListByOrder 列出订单的全部佣金记录
func (r *GormCommissionRepository) ListByOrder(orderID uint) ([]models.CommissionRecord, error) {
	var records []models.CommissionRecord
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListZeroAmountSince 列出窗口内金额为零的佣金记录
func (r *GormCommissionRepository) ListZeroAmountSince(since time.Time) ([]models.CommissionRecord, error) {
	var records []models.CommissionRecord
	if err := r.db.Where("amount = 0 AND created_at >= ?", since).
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
