package api

import (
	"errors"

	"github.com/verone-next/internal/http/handlers/shared"
	"github.com/verone-next/internal/http/response"
	"github.com/verone-next/internal/service"

	"github.com/gin-gonic/gin"
)

type errorRule struct {
	target error
	code   int
	msg    string
}

// 业务哨兵错误到响应码的映射表
var serviceErrorRules = []errorRule{
	{service.ErrProductNotFound, response.CodeNotFound, "product not found"},
	{service.ErrProductArchived, response.CodeBadRequest, "product archived"},
	{service.ErrSKUExists, response.CodeConflict, "sku already exists"},
	{service.ErrInvalidMovement, response.CodeBadRequest, "invalid stock movement"},
	{service.ErrInvalidReasonCode, response.CodeBadRequest, "invalid reason code"},
	{service.ErrStockInsufficient, response.CodeConflict, "insufficient stock"},
	{service.ErrConcurrencyConflict, response.CodeConflict, "stock chain conflict, retry"},
	{service.ErrReservationNotFound, response.CodeNotFound, "reservation not found"},
	{service.ErrPriceListNotFound, response.CodeNotFound, "price list not found"},
	{service.ErrPriceListCodeExists, response.CodeConflict, "price list code already exists"},
	{service.ErrInvalidAssignment, response.CodeBadRequest, "assignment must target exactly one of customer, group or channel"},
	{service.ErrTierOverlap, response.CodeConflict, "quantity tiers overlap"},
	{service.ErrNoPriceFound, response.CodeNotFound, "no applicable price"},
	{service.ErrAmbiguousTier, response.CodeConflict, "ambiguous quantity tier"},
	{service.ErrMissingCommissionRate, response.CodeConflict, "affiliate commission rate missing"},
	{service.ErrOrderNotFound, response.CodeNotFound, "order not found"},
	{service.ErrOrderItemNotFound, response.CodeNotFound, "order item not found"},
	{service.ErrOrderImmutable, response.CodeConflict, "order is in a terminal status"},
	{service.ErrOrderStatusInvalid, response.CodeConflict, "invalid order status transition"},
	{service.ErrChannelNotFound, response.CodeNotFound, "sales channel not found"},
	{service.ErrCustomerNotFound, response.CodeNotFound, "customer not found"},
	{service.ErrNotFound, response.CodeNotFound, "record not found"},
	{service.ErrInvalidInput, response.CodeBadRequest, "invalid input"},
}

// respondServiceError 将业务错误翻译为统一响应
func respondServiceError(c *gin.Context, err error) {
	for _, rule := range serviceErrorRules {
		if errors.Is(err, rule.target) {
			shared.RespondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	shared.RespondError(c, response.CodeInternal, "internal error", err)
}
