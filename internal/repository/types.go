package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page            int
	PageSize        int
	Search          string
	Status          string
	OnlyUnarchived  bool
	OnlyBelowMin    bool
	CreatedByAffili *uint
}

// MovementListFilter 查询库存移动列表的过滤条件
type MovementListFilter struct {
	Page            int
	PageSize        int
	ProductID       uint
	MovementType    string
	ReasonCode      string
	ReferenceID     string
	AffectsForecast *bool
	PerformedFrom   *time.Time
	PerformedTo     *time.Time
}

// ReservationListFilter 查询库存预约列表的过滤条件
type ReservationListFilter struct {
	Page       int
	PageSize   int
	ProductID  uint
	OnlyActive bool
}

// PriceListListFilter 查询价目表列表的过滤条件
type PriceListListFilter struct {
	Page       int
	PageSize   int
	ListType   string
	Search     string
	OnlyActive bool
}

// OrderListFilter 查询销售订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	CustomerID  uint
	ChannelID   uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ForecastSums 预测库存聚合结果
type ForecastSums struct {
	In  int
	Out int
}
