package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceListItem 价目表明细（按商品与数量梯度定价）
type PriceListItem struct {
	ID           uint             `gorm:"primarykey" json:"id"`                                      // 主键
	PriceListID  uint             `gorm:"index:idx_items_list_product;not null" json:"price_list_id"` // 价目表ID
	ProductID    uint             `gorm:"index:idx_items_list_product;not null" json:"product_id"`    // 商品ID
	UnitPriceHT  Money            `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price_ht"` // 单价（HT）
	CostPrice    *Money           `gorm:"type:decimal(20,2)" json:"cost_price,omitempty"`            // 成本价快照
	DiscountRate *decimal.Decimal `gorm:"type:decimal(8,4)" json:"discount_rate,omitempty"`          // 折扣率（百分比）
	MarginRate   *decimal.Decimal `gorm:"type:decimal(8,4)" json:"margin_rate,omitempty"`            // 加价率（百分比）
	MinQuantity  int              `gorm:"not null;default:1" json:"min_quantity"`                    // 梯度下限（含）
	MaxQuantity  *int             `json:"max_quantity,omitempty"`                                    // 梯度上限（含，空为不设上限）
	ValidFrom    *time.Time       `json:"valid_from,omitempty"`                                      // 生效时间
	ValidUntil   *time.Time       `json:"valid_until,omitempty"`                                     // 失效时间
	IsActive     bool             `gorm:"not null;default:true;index" json:"is_active"`              // 是否启用
	CreatedAt    time.Time        `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt    time.Time        `json:"updated_at"`                                                // 更新时间
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`                                            // 软删除时间

	// 关联
	PriceList PriceList `gorm:"foreignKey:PriceListID" json:"price_list,omitempty"` // 所属价目表
}

// TableName 指定表名
func (PriceListItem) TableName() string {
	return "price_list_items"
}

// CoversQuantity 判断明细的数量梯度是否覆盖指定数量
func (i *PriceListItem) CoversQuantity(quantity int) bool {
	if quantity < i.MinQuantity {
		return false
	}
	if i.MaxQuantity != nil && quantity > *i.MaxQuantity {
		return false
	}
	return true
}

// ValidAt 判断明细在指定时间是否生效
func (i *PriceListItem) ValidAt(at time.Time) bool {
	if !i.IsActive {
		return false
	}
	if i.ValidFrom != nil && at.Before(*i.ValidFrom) {
		return false
	}
	if i.ValidUntil != nil && !at.Before(*i.ValidUntil) {
		return false
	}
	return true
}

// Overlaps 判断两条明细的数量梯度是否重叠
func (i *PriceListItem) Overlaps(other *PriceListItem) bool {
	if other == nil {
		return false
	}
	if i.MaxQuantity != nil && other.MinQuantity > *i.MaxQuantity {
		return false
	}
	if other.MaxQuantity != nil && i.MinQuantity > *other.MaxQuantity {
		return false
	}
	return true
}
