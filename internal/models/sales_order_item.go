package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesOrderItem 销售订单明细表
type SalesOrderItem struct {
	ID            uint             `gorm:"primarykey" json:"id"`                                      // 主键
	OrderID       uint             `gorm:"index;not null" json:"order_id"`                            // 订单ID
	ProductID     uint             `gorm:"index;not null" json:"product_id"`                          // 商品ID
	SKU           string           `gorm:"type:varchar(64);not null" json:"sku"`                      // 货号快照
	Quantity      int              `gorm:"not null" json:"quantity"`                                  // 数量
	UnitPriceHT   Money            `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price_ht"` // 单价（HT）
	DiscountRate  *decimal.Decimal `gorm:"type:decimal(8,4)" json:"discount_rate,omitempty"`          // 折扣率（百分比）
	TotalHT       Money            `gorm:"type:decimal(20,2);not null;default:0" json:"total_ht"`     // 小计（HT）
	PriceSource   string           `gorm:"type:varchar(32)" json:"price_source,omitempty"`            // 价格来源快照
	PriceListID   *uint            `gorm:"index" json:"price_list_id,omitempty"`                      // 命中价目表ID
	PriceMetaJSON JSON             `gorm:"type:json" json:"price_meta,omitempty"`                     // 价格解析快照
	CreatedAt     time.Time        `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt     time.Time        `json:"updated_at"`                                                // 更新时间
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (SalesOrderItem) TableName() string {
	return "sales_order_items"
}
