package models

import (
	"time"

	"gorm.io/gorm"
)

// BankAccount 银行账户表（余额快照）
type BankAccount struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                  // 主键
	Name              string         `gorm:"not null;type:varchar(255)" json:"name"`                // 账户名称
	BankName          string         `gorm:"type:varchar(255)" json:"bank_name,omitempty"`          // 银行名称
	IBAN              string         `gorm:"type:varchar(64)" json:"iban,omitempty"`                // IBAN
	Balance           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"balance"`  // 账面余额
	AuthorizedBalance Money          `gorm:"type:decimal(20,2);not null;default:0" json:"authorized_balance"` // 授权余额
	Currency          string         `gorm:"type:varchar(8);not null;default:'EUR'" json:"currency"` // 币种
	SyncedAt          *time.Time     `json:"synced_at,omitempty"`                                   // 最近同步时间
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt         time.Time      `json:"updated_at"`                                            // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间
}

// TableName 指定表名
func (BankAccount) TableName() string {
	return "bank_accounts"
}
