package models

import (
	"time"
)

// StockMovement 库存移动账本（只追加，不更新不删除）
type StockMovement struct {
	ID              uint         `gorm:"primarykey" json:"id"`                                            // 主键
	ProductID       uint         `gorm:"index:idx_movements_product;not null" json:"product_id"`          // 商品ID
	MovementType    MovementType `gorm:"type:varchar(16);not null" json:"movement_type"`                  // 移动类型（IN/OUT/ADJUST/TRANSFER）
	QuantityChange  int          `gorm:"not null" json:"quantity_change"`                                 // 带符号的数量变化
	QuantityBefore  int          `gorm:"not null" json:"quantity_before"`                                 // 移动前数量
	QuantityAfter   int          `gorm:"not null" json:"quantity_after"`                                  // 移动后数量
	ReasonCode      ReasonCode   `gorm:"type:varchar(32);not null" json:"reason_code"`                    // 原因码
	AffectsForecast bool         `gorm:"not null;default:false;index" json:"affects_forecast"`            // 是否为预测移动
	ForecastType    ForecastType `gorm:"type:varchar(8)" json:"forecast_type,omitempty"`                  // 预测流向（in/out）
	ReferenceID     string       `gorm:"type:varchar(64);index" json:"reference_id,omitempty"`            // 业务引用ID
	ReferenceType   string       `gorm:"type:varchar(32)" json:"reference_type,omitempty"`                // 业务引用类型
	WarehouseID     *uint        `gorm:"index" json:"warehouse_id,omitempty"`                             // 仓库ID
	ChannelID       *uint        `gorm:"index" json:"channel_id,omitempty"`                               // 渠道ID
	UnitCost        *Money       `gorm:"type:decimal(20,2)" json:"unit_cost,omitempty"`                   // 单位成本
	Notes           string       `gorm:"type:text" json:"notes,omitempty"`                                // 备注
	PerformedBy     string       `gorm:"type:varchar(64)" json:"performed_by,omitempty"`                  // 执行人
	PerformedAt     time.Time    `gorm:"index:idx_movements_product;not null" json:"performed_at"`        // 执行时间
	CreatedAt       time.Time    `gorm:"index" json:"created_at"`                                         // 创建时间
}

// TableName 指定表名
func (StockMovement) TableName() string {
	return "stock_movements"
}

// Real 是否为实际库存移动
func (m *StockMovement) Real() bool {
	return !m.AffectsForecast
}
