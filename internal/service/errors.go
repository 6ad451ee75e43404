package service

import "errors"

// 业务哨兵错误，HTTP 层通过 errors.Is 映射为响应码
var (
	ErrNotFound            = errors.New("record not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductArchived     = errors.New("product archived")
	ErrSKUExists           = errors.New("sku already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidMovement     = errors.New("invalid stock movement")
	ErrInvalidReasonCode   = errors.New("invalid reason code")
	ErrStockInsufficient   = errors.New("insufficient stock")
	ErrConcurrencyConflict = errors.New("stock chain concurrency conflict")
	ErrReservationNotFound = errors.New("reservation not found")

	ErrPriceListNotFound   = errors.New("price list not found")
	ErrPriceListCodeExists = errors.New("price list code already exists")
	ErrInvalidAssignment   = errors.New("assignment must target exactly one of customer, group or channel")
	ErrTierOverlap         = errors.New("quantity tiers overlap")
	ErrNoPriceFound        = errors.New("no applicable price found")
	ErrAmbiguousTier       = errors.New("ambiguous quantity tier")

	ErrMissingCommissionRate = errors.New("affiliate commission rate missing")

	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderItemNotFound  = errors.New("order item not found")
	ErrOrderImmutable     = errors.New("order is in a terminal status")
	ErrOrderStatusInvalid = errors.New("invalid order status transition")
	ErrChannelNotFound    = errors.New("sales channel not found")
	ErrCustomerNotFound   = errors.New("customer not found")
)
