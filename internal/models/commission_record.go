package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionRecord 联盟佣金记录表
type CommissionRecord struct {
	ID          uint            `gorm:"primarykey" json:"id"`                                  // 主键
	OrderID     uint            `gorm:"index;not null" json:"order_id"`                        // 订单ID
	OrderItemID uint            `gorm:"uniqueIndex;not null" json:"order_item_id"`             // 订单明细ID
	ProductID   uint            `gorm:"index;not null" json:"product_id"`                      // 商品ID
	AffiliateID uint            `gorm:"index;not null" json:"affiliate_id"`                    // 联盟伙伴组织ID
	Rate        decimal.Decimal `gorm:"type:decimal(8,4);not null" json:"rate"`                // 佣金率快照（百分比）
	Amount      Money           `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`   // 佣金金额
	Status      string          `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"` // 状态
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt   time.Time       `json:"updated_at"`                                            // 更新时间
}

// TableName 指定表名
func (CommissionRecord) TableName() string {
	return "commission_records"
}
