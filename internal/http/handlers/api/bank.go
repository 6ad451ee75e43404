package api

import (
	"github.com/verone-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// BankBalances 银行账户余额汇总
func (h *Handler) BankBalances(c *gin.Context) {
	summary, err := h.BankService.Balances()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, summary)
}
