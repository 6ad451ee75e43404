package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SelectionItem 渠道选品表（联盟伙伴在渠道上的上架条目）
type SelectionItem struct {
	ID         uint             `gorm:"primarykey" json:"id"`                         // 主键
	ChannelID  uint             `gorm:"index:idx_selection_channel_product;not null" json:"channel_id"` // 渠道ID
	ProductID  uint             `gorm:"index:idx_selection_channel_product;not null" json:"product_id"` // 商品ID
	MarginRate *decimal.Decimal `gorm:"type:decimal(8,4)" json:"margin_rate,omitempty"` // 选品加价率（百分比）
	IsActive   bool             `gorm:"not null;default:true;index" json:"is_active"` // 是否上架
	CreatedAt  time.Time        `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt  time.Time        `json:"updated_at"`                                   // 更新时间
	DeletedAt  gorm.DeletedAt   `gorm:"index" json:"-"`                               // 软删除时间

	// 关联
	Product Product      `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 商品信息
	Channel SalesChannel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"` // 渠道信息
}

// TableName 指定表名
func (SelectionItem) TableName() string {
	return "selection_items"
}
