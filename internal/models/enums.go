package models

// MovementType 库存移动类型
type MovementType string

// 库存移动类型取值
const (
	MovementIn       MovementType = "IN"
	MovementOut      MovementType = "OUT"
	MovementAdjust   MovementType = "ADJUST"
	MovementTransfer MovementType = "TRANSFER"
)

// Valid 判断移动类型是否合法
func (m MovementType) Valid() bool {
	switch m {
	case MovementIn, MovementOut, MovementAdjust, MovementTransfer:
		return true
	}
	return false
}

// ForecastType 预测流向
type ForecastType string

// 预测流向取值
const (
	ForecastIn  ForecastType = "in"
	ForecastOut ForecastType = "out"
)

// Valid 判断预测流向是否合法
func (f ForecastType) Valid() bool {
	return f == ForecastIn || f == ForecastOut
}

// ReasonCode 库存移动原因码
type ReasonCode string

// 库存移动原因码取值
const (
	ReasonSale                = ReasonCode("sale")
	ReasonTransferOut         = ReasonCode("transfer_out")
	ReasonDamageTransport     = ReasonCode("damage_transport")
	ReasonDamageHandling      = ReasonCode("damage_handling")
	ReasonDamageStorage       = ReasonCode("damage_storage")
	ReasonTheft               = ReasonCode("theft")
	ReasonLossUnknown         = ReasonCode("loss_unknown")
	ReasonSampleClient        = ReasonCode("sample_client")
	ReasonSampleShowroom      = ReasonCode("sample_showroom")
	ReasonMarketingEvent      = ReasonCode("marketing_event")
	ReasonPhotography         = ReasonCode("photography")
	ReasonRDTesting           = ReasonCode("rd_testing")
	ReasonPrototype           = ReasonCode("prototype")
	ReasonQualityControl      = ReasonCode("quality_control")
	ReasonReturnSupplier      = ReasonCode("return_supplier")
	ReasonReturnCustomer      = ReasonCode("return_customer")
	ReasonWarrantyReplacement = ReasonCode("warranty_replacement")
	ReasonInventoryCorrection = ReasonCode("inventory_correction")
	ReasonWriteOff            = ReasonCode("write_off")
	ReasonObsolete            = ReasonCode("obsolete")
	ReasonPurchaseReception   = ReasonCode("purchase_reception")
	ReasonReturnFromClient    = ReasonCode("return_from_client")
	ReasonFoundInventory      = ReasonCode("found_inventory")
	ReasonManualAdjustment    = ReasonCode("manual_adjustment")
)

var validReasonCodes = map[ReasonCode]struct{}{
	ReasonSale: {}, ReasonTransferOut: {}, ReasonDamageTransport: {},
	ReasonDamageHandling: {}, ReasonDamageStorage: {}, ReasonTheft: {},
	ReasonLossUnknown: {}, ReasonSampleClient: {}, ReasonSampleShowroom: {},
	ReasonMarketingEvent: {}, ReasonPhotography: {}, ReasonRDTesting: {},
	ReasonPrototype: {}, ReasonQualityControl: {}, ReasonReturnSupplier: {},
	ReasonReturnCustomer: {}, ReasonWarrantyReplacement: {}, ReasonInventoryCorrection: {},
	ReasonWriteOff: {}, ReasonObsolete: {}, ReasonPurchaseReception: {},
	ReasonReturnFromClient: {}, ReasonFoundInventory: {}, ReasonManualAdjustment: {},
}

// Valid 判断原因码是否合法
func (r ReasonCode) Valid() bool {
	_, ok := validReasonCodes[r]
	return ok
}

// PriceListType 价目表类型
type PriceListType string

// 价目表类型取值
const (
	PriceListBase          PriceListType = "base"
	PriceListCustomerGroup PriceListType = "customer_group"
	PriceListChannel       PriceListType = "channel"
	PriceListPromotional   PriceListType = "promotional"
	PriceListContract      PriceListType = "contract"
)

// Valid 判断价目表类型是否合法
func (p PriceListType) Valid() bool {
	switch p {
	case PriceListBase, PriceListCustomerGroup, PriceListChannel, PriceListPromotional, PriceListContract:
		return true
	}
	return false
}

// AvailabilityStatus 商品可售状态
type AvailabilityStatus string

// 商品可售状态取值
const (
	AvailabilityInStock        AvailabilityStatus = "in_stock"
	AvailabilityOutOfStock     AvailabilityStatus = "out_of_stock"
	AvailabilityPreorder       AvailabilityStatus = "preorder"
	AvailabilityComingSoon     AvailabilityStatus = "coming_soon"
	AvailabilityDiscontinued   AvailabilityStatus = "discontinued"
	AvailabilitySourcing       AvailabilityStatus = "sourcing"
	AvailabilityPretACommander AvailabilityStatus = "pret_a_commander"
	AvailabilitySampleToOrder  AvailabilityStatus = "echantillon_a_commander"
)

// Valid 判断可售状态是否合法
func (a AvailabilityStatus) Valid() bool {
	switch a {
	case AvailabilityInStock, AvailabilityOutOfStock, AvailabilityPreorder,
		AvailabilityComingSoon, AvailabilityDiscontinued, AvailabilitySourcing,
		AvailabilityPretACommander, AvailabilitySampleToOrder:
		return true
	}
	return false
}

// SalesOrderStatus 销售订单状态
type SalesOrderStatus string

// 销售订单状态取值
const (
	SalesOrderDraft            SalesOrderStatus = "draft"
	SalesOrderConfirmed        SalesOrderStatus = "confirmed"
	SalesOrderPartiallyShipped SalesOrderStatus = "partially_shipped"
	SalesOrderShipped          SalesOrderStatus = "shipped"
	SalesOrderDelivered        SalesOrderStatus = "delivered"
	SalesOrderCancelled        SalesOrderStatus = "cancelled"
)

// Valid 判断订单状态是否合法
func (s SalesOrderStatus) Valid() bool {
	switch s {
	case SalesOrderDraft, SalesOrderConfirmed, SalesOrderPartiallyShipped,
		SalesOrderShipped, SalesOrderDelivered, SalesOrderCancelled:
		return true
	}
	return false
}

// Terminal 终态订单不可再变更
func (s SalesOrderStatus) Terminal() bool {
	return s == SalesOrderDelivered || s == SalesOrderCancelled
}

// OrganisationType 组织类型
type OrganisationType string

// 组织类型取值
const (
	OrganisationInternal OrganisationType = "internal"
	OrganisationSupplier OrganisationType = "supplier"
	OrganisationCustomer OrganisationType = "customer"
	OrganisationPartner  OrganisationType = "partner"
)

// Valid 判断组织类型是否合法
func (o OrganisationType) Valid() bool {
	switch o {
	case OrganisationInternal, OrganisationSupplier, OrganisationCustomer, OrganisationPartner:
		return true
	}
	return false
}
