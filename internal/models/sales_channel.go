package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesChannel 销售渠道表
type SalesChannel struct {
	ID             uint             `gorm:"primarykey" json:"id"`                              // 主键
	Code           string           `gorm:"uniqueIndex;not null;type:varchar(64)" json:"code"` // 唯一编码
	Name           string           `gorm:"not null;type:varchar(255)" json:"name"`            // 名称
	CommissionRate *decimal.Decimal `gorm:"type:decimal(8,4)" json:"commission_rate,omitempty"` // 渠道佣金率（百分比）
	IsActive       bool             `gorm:"not null;default:true;index" json:"is_active"`      // 是否启用
	CreatedAt      time.Time        `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt      time.Time        `json:"updated_at"`                                        // 更新时间
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (SalesChannel) TableName() string {
	return "sales_channels"
}
