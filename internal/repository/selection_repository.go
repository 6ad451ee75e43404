package repository

import (
	"errors"

	"github.com/verone-next/internal/models"

	"gorm.io/gorm"
)

// SelectionRepository 渠道选品数据访问接口
type SelectionRepository interface {
	GetByID(id uint) (*models.SelectionItem, error)
	ListByChannel(channelID uint, onlyActive bool) ([]models.SelectionItem, error)
	Create(item *models.SelectionItem) error
	Update(item *models.SelectionItem) error
	Delete(id uint) error
	WithTx(tx *gorm.DB) SelectionRepository
}

// GormSelectionRepository GORM 实现
type GormSelectionRepository struct {
	db *gorm.DB
}

// NewSelectionRepository 创建选品仓库
func NewSelectionRepository(db *gorm.DB) *GormSelectionRepository {
	return &GormSelectionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSelectionRepository) WithTx(tx *gorm.DB) SelectionRepository {
	if tx == nil {
		return r
	}
	return &GormSelectionRepository{db: tx}
}

// GetByID 根据 ID 获取选品条目
func (r *GormSelectionRepository) GetByID(id uint) (*models.SelectionItem, error) {
	var item models.SelectionItem
	if err := r.db.Preload("Product").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListByChannel 列出渠道的选品条目（含商品）
func (r *GormSelectionRepository) ListByChannel(channelID uint, onlyActive bool) ([]models.SelectionItem, error) {
	query := r.db.Preload("Product").Where("channel_id = ?", channelID)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var items []models.SelectionItem
	if err := query.Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 创建选品条目
func (r *GormSelectionRepository) Create(item *models.SelectionItem) error {
	return r.db.Create(item).Error
}

// Update 更新选品条目
func (r *GormSelectionRepository) Update(item *models.SelectionItem) error {
	return r.db.Save(item).Error
}

// Delete 删除选品条目
func (r *GormSelectionRepository) Delete(id uint) error {
	return r.db.Delete(&models.SelectionItem{}, id).Error
}
