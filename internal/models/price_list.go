package models

import (
	"time"

	"gorm.io/gorm"
)

// PriceList 价目表
type PriceList struct {
	ID         uint           `gorm:"primarykey" json:"id"`                              // 主键
	Code       string         `gorm:"uniqueIndex;not null;type:varchar(64)" json:"code"` // 唯一编码
	Name       string         `gorm:"not null;type:varchar(255)" json:"name"`            // 名称
	ListType   PriceListType  `gorm:"type:varchar(32);not null" json:"list_type"`        // 价目表类型
	Priority   int            `gorm:"not null;default:100;index" json:"priority"`        // 优先级（数值越小越优先）
	Currency   string         `gorm:"type:varchar(8);not null;default:'EUR'" json:"currency"` // 币种
	ValidFrom  *time.Time     `json:"valid_from,omitempty"`                              // 生效时间
	ValidUntil *time.Time     `json:"valid_until,omitempty"`                             // 失效时间
	IsDefault  bool           `gorm:"not null;default:false;index" json:"is_default"`    // 是否默认价目表
	IsActive   bool           `gorm:"not null;default:true;index" json:"is_active"`      // 是否启用
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt  time.Time      `json:"updated_at"`                                        // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间

	// 关联
	Items []PriceListItem `gorm:"foreignKey:PriceListID" json:"items,omitempty"` // 价目表明细
}

// TableName 指定表名
func (PriceList) TableName() string {
	return "price_lists"
}

// ValidAt 判断价目表在指定时间是否生效
func (l *PriceList) ValidAt(at time.Time) bool {
	if !l.IsActive {
		return false
	}
	if l.ValidFrom != nil && at.Before(*l.ValidFrom) {
		return false
	}
	if l.ValidUntil != nil && !at.Before(*l.ValidUntil) {
		return false
	}
	return true
}
