package constants

// 库存移动业务引用类型常量
const (
	ReferenceTypeSalesOrder    = "sales_order"
	ReferenceTypePurchaseOrder = "purchase_order"
	ReferenceTypeReservation   = "reservation"
	ReferenceTypeManual        = "manual"
)

// 价格来源常量
const (
	PriceSourceCustomer      = "customer"
	PriceSourceCustomerGroup = "customer_group"
	PriceSourceChannel       = "channel"
	PriceSourceDefaultList   = "default_list"
	PriceSourceBase          = "base"
)

// 佣金记录状态常量
const (
	CommissionStatusPending   = "pending"
	CommissionStatusConfirmed = "confirmed"
	CommissionStatusRejected  = "rejected"
)

// 队列常量
const (
	QueueDefault            = "default"
	QueueCritical           = "critical"
	TaskStockReconcile      = "stock:reconcile"
	TaskStockForecastRecalc = "stock:forecast_recalc"
	TaskReservationExpire   = "stock:reservation_expire"
	TaskCommissionZeroAudit = "commission:zero_audit"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "vr"
)

// 币种常量
const (
	CurrencyDefault = "EUR"
)
