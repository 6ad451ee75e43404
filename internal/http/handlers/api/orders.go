package api

import (
	"github.com/verone-next/internal/http/handlers/shared"
	"github.com/verone-next/internal/http/response"
	"github.com/verone-next/internal/repository"
	"github.com/verone-next/internal/service"

	"github.com/gin-gonic/gin"
)

type orderPayload struct {
	CustomerID uint   `json:"customer_id"`
	ChannelID  *uint  `json:"channel_id"`
	Currency   string `json:"currency"`
}

// CreateOrder 创建草稿订单
func (h *Handler) CreateOrder(c *gin.Context) {
	var payload orderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	order, err := h.OrderService.Create(service.CreateOrderInput{
		CustomerID: payload.CustomerID,
		ChannelID:  payload.ChannelID,
		Currency:   payload.Currency,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		OrderNo:  c.Query("order_no"),
	}
	if customerID := queryUintPtr(c, "customer_id"); customerID != nil {
		filter.CustomerID = *customerID
	}
	if channelID := queryUintPtr(c, "channel_id"); channelID != nil {
		filter.ChannelID = *channelID
	}
	orders, total, err := h.OrderService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, buildPagination(page, pageSize, total))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

type orderLinePayload struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// AddOrderLine 添加订单明细
func (h *Handler) AddOrderLine(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var payload orderLinePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	item, err := h.OrderService.AddLine(id, service.AddLineInput{
		ProductID: payload.ProductID,
		Quantity:  payload.Quantity,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

type lineQuantityPayload struct {
	Quantity int `json:"quantity"`
}

// UpdateOrderLineQuantity 调整订单明细数量
func (h *Handler) UpdateOrderLineQuantity(c *gin.Context) {
	itemID, ok := paramUint(c, "item_id")
	if !ok {
		return
	}
	var payload lineQuantityPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	item, err := h.OrderService.UpdateLineQuantity(itemID, payload.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// ConfirmOrder 确认订单
func (h *Handler) ConfirmOrder(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Confirm(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ShipOrder 订单发货
func (h *Handler) ShipOrder(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Ship(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// DeliverOrder 订单交付
func (h *Handler) DeliverOrder(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Deliver(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Cancel(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrderCommissions 订单的佣金记录
func (h *Handler) ListOrderCommissions(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	records, err := h.CommissionService.ListByOrder(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, records)
}
