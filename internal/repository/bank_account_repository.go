package repository

import (
	"github.com/verone-next/internal/models"

	"gorm.io/gorm"
)

// BankAccountRepository 银行账户数据访问接口
type BankAccountRepository interface {
	ListAll() ([]models.BankAccount, error)
	Create(account *models.BankAccount) error
	Update(account *models.BankAccount) error
}

// GormBankAccountRepository GORM 实现
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewBankAccountRepository 创建银行账户仓库
func NewBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// ListAll 列出全部银行账户
func (r *GormBankAccountRepository) ListAll() ([]models.BankAccount, error) {
	var accounts []models.BankAccount
	if err := r.db.Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Create 创建银行账户
func (r *GormBankAccountRepository) Create(account *models.BankAccount) error {
	return r.db.Create(account).Error
}

// Update 更新银行账户
func (r *GormBankAccountRepository) Update(account *models.BankAccount) error {
	return r.db.Save(account).Error
}
