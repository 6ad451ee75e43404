package models

import (
	"time"

	"gorm.io/gorm"
)

// CustomerGroup 客户组表
type CustomerGroup struct {
	ID        uint           `gorm:"primarykey" json:"id"`                              // 主键
	Code      string         `gorm:"uniqueIndex;not null;type:varchar(64)" json:"code"` // 唯一编码
	Name      string         `gorm:"not null;type:varchar(255)" json:"name"`            // 名称
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                                        // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间
}

// TableName 指定表名
func (CustomerGroup) TableName() string {
	return "customer_groups"
}
