package service

import (
	"strings"
	"time"

	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// automaticStatus 根据库存投影推导可售状态
func automaticStatus(stockReal, forecastedIn int) models.AvailabilityStatus {
	switch {
	case stockReal > 0:
		return models.AvailabilityInStock
	case forecastedIn > 0:
		return models.AvailabilityPreorder
	default:
		return models.AvailabilityOutOfStock
	}
}

// AutomaticStatus 可售状态推导（导出供查询接口复用）
func (s *ProductService) AutomaticStatus(stockReal, forecastedIn int) models.AvailabilityStatus {
	return automaticStatus(stockReal, forecastedIn)
}

// CreateProductInput 创建/更新商品输入
type CreateProductInput struct {
	SKU                     string
	Name                    string
	Description             string
	CostPrice               models.Money
	PriceHT                 models.Money
	TaxRate                 *decimal.Decimal
	MinStock                int
	StatusAuto              bool
	AvailabilityStatus      models.AvailabilityStatus
	CreatedByAffiliate      *uint
	AffiliateCommissionRate *decimal.Decimal
	MinMarginRate           *decimal.Decimal
	MaxMarginRate           *decimal.Decimal
	SuggestedMarginRate     *decimal.Decimal
}

// List 商品列表
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.repo.List(filter)
}

// Get 获取商品
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" || strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidInput
	}
	count, err := s.repo.CountBySKU(sku, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrSKUExists
	}

	status := input.AvailabilityStatus
	if input.StatusAuto || status == "" {
		status = automaticStatus(0, 0)
	} else if !status.Valid() {
		return nil, ErrInvalidInput
	}

	product := models.Product{
		SKU:                     sku,
		Name:                    strings.TrimSpace(input.Name),
		Description:             input.Description,
		CostPrice:               input.CostPrice,
		PriceHT:                 input.PriceHT,
		MinStock:                input.MinStock,
		AvailabilityStatus:      status,
		StatusAuto:              input.StatusAuto,
		CreatedByAffiliate:      input.CreatedByAffiliate,
		AffiliateCommissionRate: input.AffiliateCommissionRate,
		MinMarginRate:           input.MinMarginRate,
		MaxMarginRate:           input.MaxMarginRate,
		SuggestedMarginRate:     input.SuggestedMarginRate,
	}
	if input.TaxRate != nil {
		product.TaxRate = *input.TaxRate
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input CreateProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	sku := strings.TrimSpace(input.SKU)
	if sku != "" && sku != product.SKU {
		count, err := s.repo.CountBySKU(sku, &id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSKUExists
		}
		product.SKU = sku
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		product.Name = name
	}
	product.Description = input.Description
	product.CostPrice = input.CostPrice
	product.PriceHT = input.PriceHT
	if input.TaxRate != nil {
		product.TaxRate = *input.TaxRate
	}
	product.MinStock = input.MinStock
	product.StatusAuto = input.StatusAuto
	if !input.StatusAuto && input.AvailabilityStatus != "" {
		if !input.AvailabilityStatus.Valid() {
			return nil, ErrInvalidInput
		}
		product.AvailabilityStatus = input.AvailabilityStatus
	}
	if input.StatusAuto {
		product.AvailabilityStatus = automaticStatus(product.StockReal, product.StockForecastedIn)
	}
	product.AffiliateCommissionRate = input.AffiliateCommissionRate
	product.MinMarginRate = input.MinMarginRate
	product.MaxMarginRate = input.MaxMarginRate
	product.SuggestedMarginRate = input.SuggestedMarginRate

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Archive 归档商品（账本历史保留可读，重复归档幂等）
func (s *ProductService) Archive(id uint) error {
	affected, err := s.repo.Archive(id, time.Now().UTC())
	if err != nil {
		return err
	}
	if affected == 0 {
		product, err := s.repo.GetByID(id)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}
	}
	return nil
}

// Unarchive 取消归档
func (s *ProductService) Unarchive(id uint) error {
	affected, err := s.repo.Unarchive(id)
	if err != nil {
		return err
	}
	if affected == 0 {
		product, err := s.repo.GetByID(id)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}
	}
	return nil
}

// RefreshStatus 按投影计数重新推导可售状态（仅自动模式生效）
func (s *ProductService) RefreshStatus(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.StatusAuto {
		return product, nil
	}
	status := automaticStatus(product.StockReal, product.StockForecastedIn)
	if status != product.AvailabilityStatus {
		if err := s.repo.SetAvailabilityStatus(id, status); err != nil {
			return nil, err
		}
		product.AvailabilityStatus = status
	}
	return product, nil
}
