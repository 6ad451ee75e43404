package models

import (
	"time"

	"gorm.io/gorm"
)

// Organisation 组织表（内部 / 供应商 / 客户 / 合作伙伴）
type Organisation struct {
	ID              uint             `gorm:"primarykey" json:"id"`                           // 主键
	Name            string           `gorm:"not null;type:varchar(255)" json:"name"`         // 组织名称
	Type            OrganisationType `gorm:"type:varchar(16);not null;index" json:"type"`    // 组织类型
	CustomerGroupID *uint            `gorm:"index" json:"customer_group_id,omitempty"`       // 所属客户组
	Email           string           `gorm:"type:varchar(255)" json:"email,omitempty"`       // 联系邮箱
	IsActive        bool             `gorm:"not null;default:true;index" json:"is_active"`   // 是否启用
	CreatedAt       time.Time        `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt       time.Time        `json:"updated_at"`                                     // 更新时间
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`                                 // 软删除时间

	// 关联
	CustomerGroup *CustomerGroup `gorm:"foreignKey:CustomerGroupID" json:"customer_group,omitempty"` // 客户组信息
}

// TableName 指定表名
func (Organisation) TableName() string {
	return "organisations"
}
