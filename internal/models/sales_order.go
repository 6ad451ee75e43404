package models

import (
	"time"

	"gorm.io/gorm"
)

// SalesOrder 销售订单表
type SalesOrder struct {
	ID          uint             `gorm:"primarykey" json:"id"`                             // 主键
	OrderNo     string           `gorm:"uniqueIndex;not null;type:varchar(64)" json:"order_no"` // 订单号
	CustomerID  uint             `gorm:"index;not null" json:"customer_id"`                // 客户组织ID
	ChannelID   *uint            `gorm:"index" json:"channel_id,omitempty"`                // 销售渠道ID
	Status      SalesOrderStatus `gorm:"type:varchar(32);not null;default:'draft';index" json:"status"` // 订单状态
	Currency    string           `gorm:"type:varchar(8);not null;default:'EUR'" json:"currency"` // 币种
	TotalHT     Money            `gorm:"type:decimal(20,2);not null;default:0" json:"total_ht"` // 订单总额（HT）
	ConfirmedAt *time.Time       `json:"confirmed_at,omitempty"`                           // 确认时间
	ShippedAt   *time.Time       `json:"shipped_at,omitempty"`                             // 发货时间
	DeliveredAt *time.Time       `json:"delivered_at,omitempty"`                           // 交付时间
	CancelledAt *time.Time       `json:"cancelled_at,omitempty"`                           // 取消时间
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt   time.Time        `json:"updated_at"`                                       // 更新时间
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`                                   // 软删除时间

	// 关联
	Customer Organisation     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"` // 客户信息
	Items    []SalesOrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`       // 订单明细
}

// TableName 指定表名
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// Terminal 订单是否处于终态
func (o *SalesOrder) Terminal() bool {
	return o.Status.Terminal()
}
