package service

import (
	"errors"
	"strings"
	"time"

	"github.com/verone-next/internal/constants"
	"github.com/verone-next/internal/logger"
	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 订单状态机：仅允许表内列出的迁移
var allowedTransitions = map[models.SalesOrderStatus][]models.SalesOrderStatus{
	models.SalesOrderDraft:            {models.SalesOrderConfirmed, models.SalesOrderCancelled},
	models.SalesOrderConfirmed:        {models.SalesOrderPartiallyShipped, models.SalesOrderShipped, models.SalesOrderCancelled},
	models.SalesOrderPartiallyShipped: {models.SalesOrderShipped},
	models.SalesOrderShipped:          {models.SalesOrderDelivered},
}

func transitionAllowed(from, to models.SalesOrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderService 销售订单业务服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	orgRepo     repository.OrganisationRepository
	productRepo repository.ProductRepository
	pricing     *PricingService
	stock       *StockService
	commission  *CommissionService
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	orgRepo repository.OrganisationRepository,
	productRepo repository.ProductRepository,
	pricing *PricingService,
	stock *StockService,
	commission *CommissionService,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		orgRepo:     orgRepo,
		productRepo: productRepo,
		pricing:     pricing,
		stock:       stock,
		commission:  commission,
	}
}

func newOrderNo() string {
	return "SO-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:18]
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	CustomerID uint
	ChannelID  *uint
	Currency   string
}

// Create 创建草稿订单
func (s *OrderService) Create(input CreateOrderInput) (*models.SalesOrder, error) {
	if input.CustomerID == 0 {
		return nil, ErrInvalidInput
	}
	customer, err := s.orgRepo.GetByID(input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrCustomerNotFound
	}

	order := models.SalesOrder{
		OrderNo:    newOrderNo(),
		CustomerID: input.CustomerID,
		ChannelID:  input.ChannelID,
		Status:     models.SalesOrderDraft,
		Currency:   constants.CurrencyDefault,
	}
	if currency := strings.TrimSpace(input.Currency); currency != "" {
		order.Currency = currency
	}
	if err := s.orderRepo.Create(&order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Get 获取订单（含明细）
func (s *OrderService) Get(id uint) (*models.SalesOrder, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List 订单列表
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.SalesOrder, int64, error) {
	return s.orderRepo.List(filter)
}

// AddLineInput 添加订单明细输入
type AddLineInput struct {
	ProductID uint
	Quantity  int
}

// AddLine 添加订单明细，单价经价格解析后快照到行上
func (s *OrderService) AddLine(orderID uint, input AddLineInput) (*models.SalesOrderItem, error) {
	if input.ProductID == 0 || input.Quantity <= 0 {
		return nil, ErrInvalidInput
	}
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	if order.Terminal() {
		return nil, ErrOrderImmutable
	}
	if order.Status != models.SalesOrderDraft {
		return nil, ErrOrderStatusInvalid
	}

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Archived() {
		return nil, ErrProductArchived
	}

	customerID := order.CustomerID
	quote, err := s.pricing.ResolvePrice(ResolvePriceInput{
		ProductID:  input.ProductID,
		Quantity:   input.Quantity,
		CustomerID: &customerID,
		ChannelID:  order.ChannelID,
	})
	if err != nil {
		return nil, err
	}

	item := models.SalesOrderItem{
		OrderID:      orderID,
		ProductID:    product.ID,
		SKU:          product.SKU,
		Quantity:     input.Quantity,
		UnitPriceHT:  quote.UnitPriceHT,
		DiscountRate: quote.DiscountRate,
		TotalHT:      lineTotal(quote.UnitPriceHT, input.Quantity),
		PriceSource:  quote.PriceSource,
		PriceListID:  quote.PriceListID,
		PriceMetaJSON: models.JSON{
			"price_source":    quote.PriceSource,
			"price_list_code": quote.PriceListCode,
			"currency":        quote.Currency,
			"min_quantity":    quote.MinQuantity,
		},
	}
	if err := s.orderRepo.CreateItem(&item); err != nil {
		return nil, err
	}
	if err := s.recomputeTotal(orderID); err != nil {
		return nil, err
	}
	return &item, nil
}

// 明细单价已是解析后的生效价，行小计即单价乘数量
func lineTotal(unit models.Money, quantity int) models.Money {
	return models.NewMoneyFromDecimal(unit.Decimal.Mul(decimal.NewFromInt(int64(quantity))))
}

// UpdateLineQuantity 调整订单明细数量
// 终态订单拒绝；已确认订单同步追加预测出库的差额移动
func (s *OrderService) UpdateLineQuantity(itemID uint, quantity int) (*models.SalesOrderItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidInput
	}
	item, err := s.orderRepo.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrOrderItemNotFound
	}
	order, err := s.Get(item.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Terminal() {
		return nil, ErrOrderImmutable
	}

	delta := quantity - item.Quantity
	if delta == 0 {
		return item, nil
	}
	if order.Status != models.SalesOrderDraft {
		if _, err := s.stock.ApplyMovement(ApplyMovementInput{
			ProductID:       item.ProductID,
			MovementType:    models.MovementOut,
			QuantityChange:  delta,
			ReasonCode:      models.ReasonSale,
			AffectsForecast: true,
			ForecastType:    models.ForecastOut,
			ReferenceID:     order.OrderNo,
			ReferenceType:   constants.ReferenceTypeSalesOrder,
		}); err != nil {
			return nil, err
		}
	}

	item.Quantity = quantity
	item.TotalHT = lineTotal(item.UnitPriceHT, quantity)
	if err := s.orderRepo.UpdateItem(item); err != nil {
		return nil, err
	}
	if err := s.recomputeTotal(item.OrderID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *OrderService) recomputeTotal(orderID uint) error {
	items, err := s.orderRepo.ListItems(orderID)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalHT.Decimal)
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	order.TotalHT = models.NewMoneyFromDecimal(total)
	return s.orderRepo.Update(order)
}

// transition 条件迁移订单状态，竞争失败时返回状态错误
func (s *OrderService) transition(order *models.SalesOrder, to models.SalesOrderStatus) error {
	if order.Terminal() {
		return ErrOrderImmutable
	}
	if !transitionAllowed(order.Status, to) {
		return ErrOrderStatusInvalid
	}
	affected, err := s.orderRepo.UpdateStatus(order.ID, order.Status, to)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderStatusInvalid
	}
	order.Status = to
	return nil
}

// Confirm 确认订单：每行追加一条预测出库移动
func (s *OrderService) Confirm(orderID uint) (*models.SalesOrder, error) {
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return nil, ErrInvalidInput
	}
	if err := s.transition(order, models.SalesOrderConfirmed); err != nil {
		return nil, err
	}

	for i := range order.Items {
		item := &order.Items[i]
		if _, err := s.stock.ApplyMovement(ApplyMovementInput{
			ProductID:       item.ProductID,
			MovementType:    models.MovementOut,
			QuantityChange:  item.Quantity,
			ReasonCode:      models.ReasonSale,
			AffectsForecast: true,
			ForecastType:    models.ForecastOut,
			ReferenceID:     order.OrderNo,
			ReferenceType:   constants.ReferenceTypeSalesOrder,
		}); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	order.ConfirmedAt = &now
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

// Ship 发货：每行追加一条实际出库移动
// 实际移动与确认时的预测移动共享订单号引用，预测聚合随之视为已消费
func (s *OrderService) Ship(orderID uint) (*models.SalesOrder, error) {
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(order, models.SalesOrderShipped); err != nil {
		return nil, err
	}

	for i := range order.Items {
		item := &order.Items[i]
		if _, err := s.stock.ApplyMovement(ApplyMovementInput{
			ProductID:       item.ProductID,
			MovementType:    models.MovementOut,
			QuantityChange:  -item.Quantity,
			ReasonCode:      models.ReasonSale,
			ReferenceID:     order.OrderNo,
			ReferenceType:   constants.ReferenceTypeSalesOrder,
		}); err != nil {
			return nil, err
		}
		if _, err := s.commission.RecordLineCommission(item); err != nil {
			// 佣金配置问题不阻断发货，零佣金审计会再次暴露
			logger.Warnw("order_commission_record_failed",
				"order_no", order.OrderNo,
				"order_item_id", item.ID,
				"error", err,
			)
		}
	}

	now := time.Now().UTC()
	order.ShippedAt = &now
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

// Deliver 交付订单（终态）
func (s *OrderService) Deliver(orderID uint) (*models.SalesOrder, error) {
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(order, models.SalesOrderDelivered); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	order.DeliveredAt = &now
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel 取消订单：已确认的订单按行追加反向预测移动冲销
func (s *OrderService) Cancel(orderID uint) (*models.SalesOrder, error) {
	order, err := s.Get(orderID)
	if err != nil {
		return nil, err
	}
	wasConfirmed := order.Status == models.SalesOrderConfirmed
	if err := s.transition(order, models.SalesOrderCancelled); err != nil {
		return nil, err
	}

	if wasConfirmed {
		for i := range order.Items {
			item := &order.Items[i]
			if _, err := s.stock.ApplyMovement(ApplyMovementInput{
				ProductID:       item.ProductID,
				MovementType:    models.MovementOut,
				QuantityChange:  -item.Quantity,
				ReasonCode:      models.ReasonSale,
				AffectsForecast: true,
				ForecastType:    models.ForecastOut,
				ReferenceID:     order.OrderNo,
				ReferenceType:   constants.ReferenceTypeSalesOrder,
			}); err != nil {
				if errors.Is(err, ErrInvalidMovement) {
					// 预测链已被消费或冲销过，无需重复冲销
					continue
				}
				return nil, err
			}
		}
	}

	now := time.Now().UTC()
	order.CancelledAt = &now
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}
