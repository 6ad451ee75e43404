package models

import (
	"time"

	"gorm.io/gorm"
)

// PriceListAssignment 价目表绑定（客户 / 客户组 / 渠道三选一）
type PriceListAssignment struct {
	ID              uint           `gorm:"primarykey" json:"id"`                        // 主键
	PriceListID     uint           `gorm:"index;not null" json:"price_list_id"`         // 价目表ID
	CustomerID      *uint          `gorm:"index" json:"customer_id,omitempty"`          // 客户组织ID
	CustomerGroupID *uint          `gorm:"index" json:"customer_group_id,omitempty"`    // 客户组ID
	ChannelID       *uint          `gorm:"index" json:"channel_id,omitempty"`           // 渠道ID
	ValidFrom       *time.Time     `json:"valid_from,omitempty"`                        // 生效时间
	ValidUntil      *time.Time     `json:"valid_until,omitempty"`                       // 失效时间
	IsActive        bool           `gorm:"not null;default:true;index" json:"is_active"` // 是否启用
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                     // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                  // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                              // 软删除时间

	// 关联
	PriceList PriceList `gorm:"foreignKey:PriceListID" json:"price_list,omitempty"` // 所属价目表
}

// TableName 指定表名
func (PriceListAssignment) TableName() string {
	return "price_list_assignments"
}

// TargetCount 绑定目标数量（合法绑定必须恰好为 1）
func (a *PriceListAssignment) TargetCount() int {
	count := 0
	if a.CustomerID != nil {
		count++
	}
	if a.CustomerGroupID != nil {
		count++
	}
	if a.ChannelID != nil {
		count++
	}
	return count
}

// ValidAt 判断绑定在指定时间是否生效
func (a *PriceListAssignment) ValidAt(at time.Time) bool {
	if !a.IsActive {
		return false
	}
	if a.ValidFrom != nil && at.Before(*a.ValidFrom) {
		return false
	}
	if a.ValidUntil != nil && !at.Before(*a.ValidUntil) {
		return false
	}
	return true
}
