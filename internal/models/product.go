package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 商品表
type Product struct {
	ID                      uint               `gorm:"primarykey" json:"id"`                                                    // 主键
	SKU                     string             `gorm:"uniqueIndex;not null;type:varchar(64)" json:"sku"`                        // 唯一货号
	Name                    string             `gorm:"not null;type:varchar(255)" json:"name"`                                  // 商品名称
	Description             string             `gorm:"type:text" json:"description,omitempty"`                                  // 商品描述
	CostPrice               Money              `gorm:"type:decimal(20,2);not null;default:0" json:"cost_price"`                 // 成本价（HT）
	PriceHT                 Money              `gorm:"type:decimal(20,2);not null;default:0" json:"price_ht"`                   // 基础售价（HT）
	TaxRate                 decimal.Decimal    `gorm:"type:decimal(8,4);not null;default:20" json:"tax_rate"`                   // 增值税率（百分比）
	StockReal               int                `gorm:"not null;default:0" json:"stock_real"`                                    // 实际库存（账本投影）
	StockForecastedIn       int                `gorm:"not null;default:0" json:"stock_forecasted_in"`                           // 预测入库量（账本投影）
	StockForecastedOut      int                `gorm:"not null;default:0" json:"stock_forecasted_out"`                          // 预测出库量（账本投影）
	MinStock                int                `gorm:"not null;default:0" json:"min_stock"`                                     // 最低库存阈值
	AvailabilityStatus      AvailabilityStatus `gorm:"type:varchar(32);not null;default:'out_of_stock'" json:"availability_status"` // 可售状态
	StatusAuto              bool               `gorm:"not null;default:true" json:"status_auto"`                                // 是否自动推导可售状态
	CreatedByAffiliate      *uint              `gorm:"index" json:"created_by_affiliate,omitempty"`                             // 创建该商品的联盟伙伴组织ID
	AffiliateCommissionRate *decimal.Decimal   `gorm:"type:decimal(8,4)" json:"affiliate_commission_rate,omitempty"`            // 联盟佣金率（百分比）
	MinMarginRate           *decimal.Decimal   `gorm:"type:decimal(8,4)" json:"min_margin_rate,omitempty"`                      // 最低加价率（百分比）
	MaxMarginRate           *decimal.Decimal   `gorm:"type:decimal(8,4)" json:"max_margin_rate,omitempty"`                      // 最高加价率（百分比）
	SuggestedMarginRate     *decimal.Decimal   `gorm:"type:decimal(8,4)" json:"suggested_margin_rate,omitempty"`                // 建议加价率（百分比）
	ArchivedAt              *time.Time         `gorm:"index" json:"archived_at,omitempty"`                                      // 归档时间
	CreatedAt               time.Time          `gorm:"index" json:"created_at"`                                                 // 创建时间
	UpdatedAt               time.Time          `json:"updated_at"`                                                              // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// Archived 是否已归档
func (p *Product) Archived() bool {
	return p.ArchivedAt != nil
}

// AffiliateCreated 是否为联盟伙伴创建的商品
func (p *Product) AffiliateCreated() bool {
	return p.CreatedByAffiliate != nil
}
