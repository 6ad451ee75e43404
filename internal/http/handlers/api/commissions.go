package api

import (
	"time"

	"github.com/verone-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ComputeLineCommission 试算订单明细佣金（不落库）
func (h *Handler) ComputeLineCommission(c *gin.Context) {
	itemID, ok := paramUint(c, "item_id")
	if !ok {
		return
	}
	item, err := h.OrderRepo.GetItem(itemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if item == nil {
		response.NotFound(c, "order item not found")
		return
	}
	line, err := h.CommissionService.ComputeLineCommission(item)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, line)
}

// ChannelMarginViolations 渠道选品的加价率违规报告
func (h *Handler) ChannelMarginViolations(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	violations, err := h.CommissionService.ValidateMargins(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, violations)
}

// AuditZeroCommissions 零佣金审计报告
func (h *Handler) AuditZeroCommissions(c *gin.Context) {
	since := time.Now().UTC().AddDate(0, 0, -30)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.BadRequest(c, "invalid since")
			return
		}
		since = parsed
	}
	report, err := h.CommissionService.AuditZeroCommissions(since)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}
