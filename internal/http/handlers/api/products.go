package api

import (
	"github.com/verone-next/internal/http/handlers/shared"
	"github.com/verone-next/internal/http/response"
	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"
	"github.com/verone-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListProducts 商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	filter := repository.ProductListFilter{
		Page:           page,
		PageSize:       pageSize,
		Search:         c.Query("search"),
		Status:         c.Query("status"),
		OnlyUnarchived: c.Query("include_archived") != "true",
		OnlyBelowMin:   c.Query("below_min") == "true",
	}
	products, total, err := h.ProductService.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, products, buildPagination(page, pageSize, total))
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

type productPayload struct {
	SKU                     string           `json:"sku"`
	Name                    string           `json:"name"`
	Description             string           `json:"description"`
	CostPrice               models.Money     `json:"cost_price"`
	PriceHT                 models.Money     `json:"price_ht"`
	TaxRate                 *decimal.Decimal `json:"tax_rate"`
	MinStock                int              `json:"min_stock"`
	StatusAuto              bool             `json:"status_auto"`
	AvailabilityStatus      string           `json:"availability_status"`
	CreatedByAffiliate      *uint            `json:"created_by_affiliate"`
	AffiliateCommissionRate *decimal.Decimal `json:"affiliate_commission_rate"`
	MinMarginRate           *decimal.Decimal `json:"min_margin_rate"`
	MaxMarginRate           *decimal.Decimal `json:"max_margin_rate"`
	SuggestedMarginRate     *decimal.Decimal `json:"suggested_margin_rate"`
}

func (p productPayload) toInput() service.CreateProductInput {
	return service.CreateProductInput{
		SKU:                     p.SKU,
		Name:                    p.Name,
		Description:             p.Description,
		CostPrice:               p.CostPrice,
		PriceHT:                 p.PriceHT,
		TaxRate:                 p.TaxRate,
		MinStock:                p.MinStock,
		StatusAuto:              p.StatusAuto,
		AvailabilityStatus:      models.AvailabilityStatus(p.AvailabilityStatus),
		CreatedByAffiliate:      p.CreatedByAffiliate,
		AffiliateCommissionRate: p.AffiliateCommissionRate,
		MinMarginRate:           p.MinMarginRate,
		MaxMarginRate:           p.MaxMarginRate,
		SuggestedMarginRate:     p.SuggestedMarginRate,
	}
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	product, err := h.ProductService.Create(payload.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	product, err := h.ProductService.Update(id, payload.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

// ArchiveProduct 归档商品
func (h *Handler) ArchiveProduct(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.Archive(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// UnarchiveProduct 取消归档
func (h *Handler) UnarchiveProduct(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.ProductService.Unarchive(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// RefreshProductStatus 重新推导商品可售状态
func (h *Handler) RefreshProductStatus(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	product, err := h.ProductService.RefreshStatus(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}
