package repository

import (
	"errors"

	"github.com/verone-next/internal/models"

	"gorm.io/gorm"
)

// SalesChannelRepository 销售渠道数据访问接口
type SalesChannelRepository interface {
	GetByID(id uint) (*models.SalesChannel, error)
	ListActive() ([]models.SalesChannel, error)
	Create(channel *models.SalesChannel) error
	Update(channel *models.SalesChannel) error
}

// GormSalesChannelRepository GORM 实现
type GormSalesChannelRepository struct {
	db *gorm.DB
}

// NewSalesChannelRepository 创建销售渠道仓库
func NewSalesChannelRepository(db *gorm.DB) *GormSalesChannelRepository {
	return &GormSalesChannelRepository{db: db}
}

// GetByID 根据 ID 获取渠道
func (r *GormSalesChannelRepository) GetByID(id uint) (*models.SalesChannel, error) {
	var channel models.SalesChannel
	if err := r.db.First(&channel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

// ListActive 列出启用中的渠道
func (r *GormSalesChannelRepository) ListActive() ([]models.SalesChannel, error) {
	var channels []models.SalesChannel
	if err := r.db.Where("is_active = ?", true).Order("id ASC").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// Create 创建渠道
func (r *GormSalesChannelRepository) Create(channel *models.SalesChannel) error {
	return r.db.Create(channel).Error
}

// Update 更新渠道
func (r *GormSalesChannelRepository) Update(channel *models.SalesChannel) error {
	return r.db.Save(channel).Error
}
