package repository

import (
	"errors"

	"github.com/verone-next/internal/models"

	"gorm.io/gorm"
)

// OrganisationRepository 组织数据访问接口
type OrganisationRepository interface {
	GetByID(id uint) (*models.Organisation, error)
	Create(org *models.Organisation) error
	Update(org *models.Organisation) error
}

// GormOrganisationRepository GORM 实现
type GormOrganisationRepository struct {
	db *gorm.DB
}

// NewOrganisationRepository 创建组织仓库
func NewOrganisationRepository(db *gorm.DB) *GormOrganisationRepository {
	return &GormOrganisationRepository{db: db}
}

// GetByID 根据 ID 获取组织（含客户组）
func (r *GormOrganisationRepository) GetByID(id uint) (*models.Organisation, error) {
	var org models.Organisation
	if err := r.db.Preload("CustomerGroup").First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

// Create 创建组织
func (r *GormOrganisationRepository) Create(org *models.Organisation) error {
	return r.db.Create(org).Error
}

// Update 更新组织
func (r *GormOrganisationRepository) Update(org *models.Organisation) error {
	return r.db.Save(org).Error
}
