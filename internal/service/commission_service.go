package service

import (
	"time"

	"github.com/verone-next/internal/constants"
	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CommissionService 联盟佣金与利润率业务服务
type CommissionService struct {
	commissionRepo repository.CommissionRepository
	selectionRepo  repository.SelectionRepository
	productRepo    repository.ProductRepository
	orderRepo      repository.OrderRepository
	channelRepo    repository.SalesChannelRepository
}

// NewCommissionService 创建佣金服务
func NewCommissionService(
	commissionRepo repository.CommissionRepository,
	selectionRepo repository.SelectionRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	channelRepo repository.SalesChannelRepository,
) *CommissionService {
	return &CommissionService{
		commissionRepo: commissionRepo,
		selectionRepo:  selectionRepo,
		productRepo:    productRepo,
		orderRepo:      orderRepo,
		channelRepo:    channelRepo,
	}
}

// LineCommission 单行佣金计算结果
type LineCommission struct {
	OrderItemID uint            `json:"order_item_id"`
	ProductID   uint            `json:"product_id"`
	AffiliateID *uint           `json:"affiliate_id,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      models.Money    `json:"amount"`
	Affiliate   bool            `json:"affiliate"`
}

// ComputeLineCommission 计算订单明细的联盟佣金
// 联盟商品佣金率缺失视为配置错误；佣金率为 0 是合法配置，结果为零佣金
func (s *CommissionService) ComputeLineCommission(item *models.SalesOrderItem) (*LineCommission, error) {
	if item == nil {
		return nil, ErrInvalidInput
	}
	product, err := s.productRepo.GetByID(item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	result := LineCommission{
		OrderItemID: item.ID,
		ProductID:   product.ID,
	}
	if !product.AffiliateCreated() {
		return &result, nil
	}
	if product.AffiliateCommissionRate == nil {
		return nil, ErrMissingCommissionRate
	}
	result.Affiliate = true
	result.AffiliateID = product.CreatedByAffiliate
	result.Rate = *product.AffiliateCommissionRate
	result.Amount = item.TotalHT.MulPercent(result.Rate)
	return &result, nil
}

// RecordLineCommission 计算并落库订单明细佣金（同明细幂等）
func (s *CommissionService) RecordLineCommission(item *models.SalesOrderItem) (*models.CommissionRecord, error) {
	line, err := s.ComputeLineCommission(item)
	if err != nil {
		return nil, err
	}
	if !line.Affiliate {
		return nil, nil
	}
	existing, err := s.commissionRepo.GetByOrderItem(item.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	record := models.CommissionRecord{
		OrderID:     item.OrderID,
		OrderItemID: item.ID,
		ProductID:   line.ProductID,
		AffiliateID: *line.AffiliateID,
		Rate:        line.Rate,
		Amount:      line.Amount,
		Status:      constants.CommissionStatusPending,
	}
	if err := s.commissionRepo.Create(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

// MarginViolation 渠道选品的利润率违规
type MarginViolation struct {
	SelectionItemID uint             `json:"selection_item_id"`
	ProductID       uint             `json:"product_id"`
	SKU             string           `json:"sku"`
	MarginRate      *decimal.Decimal `json:"margin_rate,omitempty"`
	MinMarginRate   *decimal.Decimal `json:"min_margin_rate,omitempty"`
	Reason          string           `json:"reason"`
}

// ValidateMargins 校验渠道选品的加价率约束
// 低于商品最低加价率、或联盟商品零加价上架均视为违规
func (s *CommissionService) ValidateMargins(channelID uint) ([]MarginViolation, error) {
	channel, err := s.channelRepo.GetByID(channelID)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrChannelNotFound
	}

	items, err := s.selectionRepo.ListByChannel(channelID, true)
	if err != nil {
		return nil, err
	}

	violations := make([]MarginViolation, 0)
	for i := range items {
		item := &items[i]
		product := item.Product
		if product.MinMarginRate != nil {
			if item.MarginRate == nil || item.MarginRate.LessThan(*product.MinMarginRate) {
				violations = append(violations, MarginViolation{
					SelectionItemID: item.ID,
					ProductID:       product.ID,
					SKU:             product.SKU,
					MarginRate:      item.MarginRate,
					MinMarginRate:   product.MinMarginRate,
					Reason:          "margin below product minimum",
				})
				continue
			}
		}
		if product.AffiliateCreated() && (item.MarginRate == nil || item.MarginRate.IsZero()) {
			violations = append(violations, MarginViolation{
				SelectionItemID: item.ID,
				ProductID:       product.ID,
				SKU:             product.SKU,
				MarginRate:      item.MarginRate,
				MinMarginRate:   product.MinMarginRate,
				Reason:          "affiliate product listed with zero margin",
			})
		}
	}
	return violations, nil
}

// ZeroCommissionEntry 零佣金审计条目
type ZeroCommissionEntry struct {
	RecordID    uint      `json:"record_id,omitempty"`
	OrderID     uint      `json:"order_id"`
	OrderItemID uint      `json:"order_item_id"`
	ProductID   uint      `json:"product_id"`
	AffiliateID uint      `json:"affiliate_id,omitempty"`
	RateIsZero  bool      `json:"rate_is_zero"`
	Missing     bool      `json:"missing"` // 联盟商品明细缺少佣金记录
	CreatedAt   time.Time `json:"created_at"`
}

// ZeroCommissionReport 零佣金审计报告
type ZeroCommissionReport struct {
	Since   time.Time             `json:"since"`
	Total   int                   `json:"total"`
	Entries []ZeroCommissionEntry `json:"entries"`
}

// AuditZeroCommissions 审计窗口内金额为零或缺失的佣金记录；只报告，不阻断
func (s *CommissionService) AuditZeroCommissions(since time.Time) (*ZeroCommissionReport, error) {
	records, err := s.commissionRepo.ListZeroAmountSince(since)
	if err != nil {
		return nil, err
	}
	report := ZeroCommissionReport{
		Since:   since,
		Entries: make([]ZeroCommissionEntry, 0, len(records)),
	}
	for _, record := range records {
		report.Entries = append(report.Entries, ZeroCommissionEntry{
			RecordID:    record.ID,
			OrderID:     record.OrderID,
			OrderItemID: record.OrderItemID,
			ProductID:   record.ProductID,
			AffiliateID: record.AffiliateID,
			RateIsZero:  record.Rate.IsZero(),
			CreatedAt:   record.CreatedAt,
		})
	}

	// 窗口内联盟商品的订单明细如无对应佣金记录，同样列入报告
	items, err := s.orderRepo.ListItemsCreatedSince(since)
	if err != nil {
		return nil, err
	}
	for i := range items {
		item := &items[i]
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.AffiliateCreated() {
			continue
		}
		record, err := s.commissionRepo.GetByOrderItem(item.ID)
		if err != nil {
			return nil, err
		}
		if record != nil {
			continue
		}
		entry := ZeroCommissionEntry{
			OrderID:     item.OrderID,
			OrderItemID: item.ID,
			ProductID:   item.ProductID,
			Missing:     true,
			CreatedAt:   item.CreatedAt,
		}
		if product.CreatedByAffiliate != nil {
			entry.AffiliateID = *product.CreatedByAffiliate
		}
		report.Entries = append(report.Entries, entry)
	}

	report.Total = len(report.Entries)
	return &report, nil
}

// ListByOrder 列出订单的佣金记录
func (s *CommissionService) ListByOrder(orderID uint) ([]models.CommissionRecord, error) {
	return s.commissionRepo.ListByOrder(orderID)
}
