package models

import (
	"time"
)

// StockReservation 库存预约表
type StockReservation struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                 // 主键
	ProductID        uint       `gorm:"index;not null" json:"product_id"`                     // 商品ID
	ReservedQuantity int        `gorm:"not null" json:"reserved_quantity"`                    // 预约数量
	ReferenceID      string     `gorm:"type:varchar(64);index" json:"reference_id,omitempty"` // 业务引用ID
	ReferenceType    string     `gorm:"type:varchar(32)" json:"reference_type,omitempty"`     // 业务引用类型
	ExpiresAt        *time.Time `gorm:"index" json:"expires_at,omitempty"`                    // 过期时间
	ReleasedAt       *time.Time `gorm:"index" json:"released_at,omitempty"`                   // 释放时间
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt        time.Time  `json:"updated_at"`                                           // 更新时间
}

// TableName 指定表名
func (StockReservation) TableName() string {
	return "stock_reservations"
}

// Active 预约是否仍占用可承诺库存
func (r *StockReservation) Active(now time.Time) bool {
	if r.ReleasedAt != nil {
		return false
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
		return false
	}
	return true
}
