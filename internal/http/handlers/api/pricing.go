package api

import (
	"time"

	"github.com/verone-next/internal/http/handlers/shared"
	"github.com/verone-next/internal/http/response"
	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"
	"github.com/verone-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// resolveInputFromQuery 从查询参数构造价格解析上下文
func resolveInputFromQuery(c *gin.Context) service.ResolvePriceInput {
	input := service.ResolvePriceInput{
		Quantity:        queryInt(c, "quantity", 1),
		CustomerID:      queryUintPtr(c, "customer_id"),
		CustomerGroupID: queryUintPtr(c, "customer_group_id"),
		ChannelID:       queryUintPtr(c, "channel_id"),
	}
	if productID := queryUintPtr(c, "product_id"); productID != nil {
		input.ProductID = *productID
	}
	if raw := c.Query("at"); raw != "" {
		if at, err := time.Parse(time.RFC3339, raw); err == nil {
			input.At = at
		}
	}
	return input
}

// ResolvePrice 解析商品在给定客户/渠道上下文下的价格
func (h *Handler) ResolvePrice(c *gin.Context) {
	input := resolveInputFromQuery(c)
	quote, err := h.PricingService.ResolvePrice(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, quote)
}

// QuantityBreaks 商品的数量梯度报价
func (h *Handler) QuantityBreaks(c *gin.Context) {
	input := resolveInputFromQuery(c)
	breaks, err := h.PricingService.QuantityBreaks(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, breaks)
}

// ListPriceLists 价目表列表
func (h *Handler) ListPriceLists(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	filter := repository.PriceListListFilter{
		Page:       page,
		PageSize:   pageSize,
		ListType:   c.Query("list_type"),
		Search:     c.Query("search"),
		OnlyActive: c.Query("only_active") == "true",
	}
	lists, total, err := h.PricingService.ListPriceLists(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, lists, buildPagination(page, pageSize, total))
}

// GetPriceList 价目表详情（含明细与绑定）
func (h *Handler) GetPriceList(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	list, assignments, err := h.PricingService.GetPriceList(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"price_list": list, "assignments": assignments})
}

type priceListPayload struct {
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	ListType   string     `json:"list_type"`
	Priority   *int       `json:"priority"`
	Currency   string     `json:"currency"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	IsDefault  bool       `json:"is_default"`
	IsActive   *bool      `json:"is_active"`
}

func (p priceListPayload) toInput() service.CreatePriceListInput {
	return service.CreatePriceListInput{
		Code:       p.Code,
		Name:       p.Name,
		ListType:   models.PriceListType(p.ListType),
		Priority:   p.Priority,
		Currency:   p.Currency,
		ValidFrom:  p.ValidFrom,
		ValidUntil: p.ValidUntil,
		IsDefault:  p.IsDefault,
		IsActive:   p.IsActive,
	}
}

// CreatePriceList 创建价目表
func (h *Handler) CreatePriceList(c *gin.Context) {
	var payload priceListPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	list, err := h.PricingService.CreatePriceList(payload.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, list)
}

// UpdatePriceList 更新价目表
func (h *Handler) UpdatePriceList(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var payload priceListPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	list, err := h.PricingService.UpdatePriceList(id, payload.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, list)
}

// DeletePriceList 删除价目表
func (h *Handler) DeletePriceList(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.PricingService.DeletePriceList(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

type priceListItemPayload struct {
	ProductID    uint             `json:"product_id"`
	UnitPriceHT  models.Money     `json:"unit_price_ht"`
	CostPrice    *models.Money    `json:"cost_price"`
	DiscountRate *decimal.Decimal `json:"discount_rate"`
	MarginRate   *decimal.Decimal `json:"margin_rate"`
	MinQuantity  int              `json:"min_quantity"`
	MaxQuantity  *int             `json:"max_quantity"`
	ValidFrom    *time.Time       `json:"valid_from"`
	ValidUntil   *time.Time       `json:"valid_until"`
	IsActive     *bool            `json:"is_active"`
}

func (p priceListItemPayload) toInput() service.PriceListItemInput {
	return service.PriceListItemInput{
		ProductID:    p.ProductID,
		UnitPriceHT:  p.UnitPriceHT,
		CostPrice:    p.CostPrice,
		DiscountRate: p.DiscountRate,
		MarginRate:   p.MarginRate,
		MinQuantity:  p.MinQuantity,
		MaxQuantity:  p.MaxQuantity,
		ValidFrom:    p.ValidFrom,
		ValidUntil:   p.ValidUntil,
		IsActive:     p.IsActive,
	}
}

// AddPriceListItem 向价目表添加梯度明细
func (h *Handler) AddPriceListItem(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var payload priceListItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	item, err := h.PricingService.AddItem(id, payload.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// UpdatePriceListItem 更新价目表明细
func (h *Handler) UpdatePriceListItem(c *gin.Context) {
	itemID, ok := paramUint(c, "item_id")
	if !ok {
		return
	}
	var payload priceListItemPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	item, err := h.PricingService.UpdateItem(itemID, payload.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// DeletePriceListItem 删除价目表明细
func (h *Handler) DeletePriceListItem(c *gin.Context) {
	itemID, ok := paramUint(c, "item_id")
	if !ok {
		return
	}
	if err := h.PricingService.DeleteItem(itemID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

type assignPayload struct {
	CustomerID      *uint      `json:"customer_id"`
	CustomerGroupID *uint      `json:"customer_group_id"`
	ChannelID       *uint      `json:"channel_id"`
	ValidFrom       *time.Time `json:"valid_from"`
	ValidUntil      *time.Time `json:"valid_until"`
}

// AssignPriceList 将价目表绑定到客户、客户组或渠道
func (h *Handler) AssignPriceList(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var payload assignPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	assignment, err := h.PricingService.Assign(id, service.AssignInput{
		CustomerID:      payload.CustomerID,
		CustomerGroupID: payload.CustomerGroupID,
		ChannelID:       payload.ChannelID,
		ValidFrom:       payload.ValidFrom,
		ValidUntil:      payload.ValidUntil,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, assignment)
}

// UnassignPriceList 删除价目表绑定
func (h *Handler) UnassignPriceList(c *gin.Context) {
	assignmentID, ok := paramUint(c, "assignment_id")
	if !ok {
		return
	}
	if err := h.PricingService.Unassign(assignmentID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
