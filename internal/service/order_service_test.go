package service

import (
	"errors"
	"testing"
	"time"

	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type orderServiceFixture struct {
	db         *gorm.DB
	orders     *OrderService
	stock      *StockService
	commission *CommissionService
}

func setupOrderServiceTest(t *testing.T) *orderServiceFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.CustomerGroup{}, &models.Organisation{}, &models.SalesChannel{},
		&models.Product{}, &models.StockMovement{}, &models.StockReservation{},
		&models.PriceList{}, &models.PriceListItem{}, &models.PriceListAssignment{},
		&models.SalesOrder{}, &models.SalesOrderItem{}, &models.SelectionItem{}, &models.CommissionRecord{},
	); err != nil {
		t.Fatalf("migrate order models failed: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orgRepo := repository.NewOrganisationRepository(db)

	stock := NewStockService(
		repository.NewStockMovementRepository(db),
		repository.NewStockReservationRepository(db),
		productRepo,
		StockOptions{},
	)
	pricing := NewPricingService(repository.NewPriceListRepository(db), productRepo, orgRepo)
	commission := NewCommissionService(
		repository.NewCommissionRepository(db),
		repository.NewSelectionRepository(db),
		productRepo,
		orderRepo,
		repository.NewSalesChannelRepository(db),
	)
	orders := NewOrderService(orderRepo, orgRepo, productRepo, pricing, stock, commission)
	return &orderServiceFixture{db: db, orders: orders, stock: stock, commission: commission}
}

func (f *orderServiceFixture) createCustomer(t *testing.T, name string) *models.Organisation {
	t.Helper()
	customer := &models.Organisation{Name: name, Type: models.OrganisationCustomer, IsActive: true}
	if err := f.db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return customer
}

func (f *orderServiceFixture) createProduct(t *testing.T, sku, priceHT string, initialStock int) *models.Product {
	t.Helper()
	price, err := models.NewMoneyFromString(priceHT)
	if err != nil {
		t.Fatalf("parse price failed: %v", err)
	}
	product := &models.Product{
		SKU:        sku,
		Name:       "Buffet " + sku,
		PriceHT:    price,
		TaxRate:    decimal.NewFromInt(20),
		StatusAuto: true,
	}
	if err := f.db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if initialStock > 0 {
		if _, err := f.stock.ApplyMovement(ApplyMovementInput{
			ProductID:      product.ID,
			MovementType:   models.MovementIn,
			QuantityChange: initialStock,
			ReasonCode:     models.ReasonPurchaseReception,
		}); err != nil {
			t.Fatalf("seed stock failed: %v", err)
		}
	}
	return product
}

func TestOrderForecastLifecycle(t *testing.T) {
	f := setupOrderServiceTest(t)
	customer := f.createCustomer(t, "Galerie Sud")
	product := f.createProduct(t, "ORD-LIFE-01", "100.00", 10)

	order, err := f.orders.Create(CreateOrderInput{CustomerID: customer.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item, err := f.orders.AddLine(order.ID, AddLineInput{ProductID: product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	if item.PriceSource == "" || item.TotalHT.String() != "300.00" {
		t.Fatalf("line snapshot mismatch: %+v", item)
	}

	order, err = f.orders.Confirm(order.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	forecast, err := f.stock.ForecastedStock(product.ID)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	if forecast.Out != 3 {
		t.Fatalf("forecast out after confirm want 3 got %d", forecast.Out)
	}

	order, err = f.orders.Ship(order.ID)
	if err != nil {
		t.Fatalf("ship failed: %v", err)
	}
	real, err := f.stock.RealStock(product.ID)
	if err != nil {
		t.Fatalf("real stock failed: %v", err)
	}
	if real != 7 {
		t.Fatalf("real stock after ship want 7 got %d", real)
	}
	forecast, err = f.stock.ForecastedStock(product.ID)
	if err != nil {
		t.Fatalf("forecast after ship failed: %v", err)
	}
	if forecast.Out != 0 {
		t.Fatalf("forecast out should be consumed by shipment, got %d", forecast.Out)
	}

	order, err = f.orders.Deliver(order.ID)
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if !order.Terminal() {
		t.Fatalf("delivered order should be terminal")
	}
	if _, err := f.orders.UpdateLineQuantity(item.ID, 5); !errors.Is(err, ErrOrderImmutable) {
		t.Fatalf("terminal order line edit want ErrOrderImmutable got %v", err)
	}
}

func TestOrderCancelCompensatesForecast(t *testing.T) {
	f := setupOrderServiceTest(t)
	customer := f.createCustomer(t, "Atelier Nord")
	product := f.createProduct(t, "ORD-CANCEL-01", "50.00", 5)

	order, err := f.orders.Create(CreateOrderInput{CustomerID: customer.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.orders.AddLine(order.ID, AddLineInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	if _, err := f.orders.Confirm(order.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	forecast, err := f.stock.ForecastedStock(product.ID)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	if forecast.Out != 2 {
		t.Fatalf("forecast out want 2 got %d", forecast.Out)
	}

	order, err = f.orders.Cancel(order.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if order.Status != models.SalesOrderCancelled {
		t.Fatalf("status want cancelled got %s", order.Status)
	}
	forecast, err = f.stock.ForecastedStock(product.ID)
	if err != nil {
		t.Fatalf("forecast after cancel failed: %v", err)
	}
	if forecast.Out != 0 {
		t.Fatalf("forecast out after cancel want 0 got %d", forecast.Out)
	}
	real, err := f.stock.RealStock(product.ID)
	if err != nil {
		t.Fatalf("real stock failed: %v", err)
	}
	if real != 5 {
		t.Fatalf("cancel must not touch real stock, got %d", real)
	}
}

func TestOrderTransitionGuards(t *testing.T) {
	f := setupOrderServiceTest(t)
	customer := f.createCustomer(t, "Comptoir Est")
	product := f.createProduct(t, "ORD-GUARD-01", "40.00", 4)

	order, err := f.orders.Create(CreateOrderInput{CustomerID: customer.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.orders.Ship(order.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("ship from draft want ErrOrderStatusInvalid got %v", err)
	}
	if _, err := f.orders.Confirm(order.ID); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("confirm empty order want ErrInvalidInput got %v", err)
	}

	if _, err := f.orders.AddLine(order.ID, AddLineInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	if _, err := f.orders.Confirm(order.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := f.orders.AddLine(order.ID, AddLineInput{ProductID: product.ID, Quantity: 1}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("add line after confirm want ErrOrderStatusInvalid got %v", err)
	}
	if _, err := f.orders.Deliver(order.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("deliver from confirmed want ErrOrderStatusInvalid got %v", err)
	}
}

func TestConfirmedOrderQuantityChangeAdjustsForecast(t *testing.T) {
	f := setupOrderServiceTest(t)
	customer := f.createCustomer(t, "Loft Ouest")
	product := f.createProduct(t, "ORD-QTY-01", "25.00", 10)

	order, err := f.orders.Create(CreateOrderInput{CustomerID: customer.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item, err := f.orders.AddLine(order.ID, AddLineInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	if _, err := f.orders.Confirm(order.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if _, err := f.orders.UpdateLineQuantity(item.ID, 5); err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}
	forecast, err := f.stock.ForecastedStock(product.ID)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	if forecast.Out != 5 {
		t.Fatalf("forecast out want 5 got %d", forecast.Out)
	}

	updated, err := f.orders.Get(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if updated.TotalHT.String() != "125.00" {
		t.Fatalf("order total want 125.00 got %s", updated.TotalHT)
	}
}

func TestCommissionOnAffiliateProduct(t *testing.T) {
	f := setupOrderServiceTest(t)
	customer := f.createCustomer(t, "Studio Centre")
	affiliate := f.createCustomer(t, "Partenaire Déco")
	rate := decimal.NewFromInt(5)
	product := f.createProduct(t, "ORD-COMM-01", "200.00", 10)
	if err := f.db.Model(&models.Product{}).Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"created_by_affiliate":      affiliate.ID,
			"affiliate_commission_rate": rate,
		}).Error; err != nil {
		t.Fatalf("mark affiliate product failed: %v", err)
	}

	order, err := f.orders.Create(CreateOrderInput{CustomerID: customer.ID})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := f.orders.AddLine(order.ID, AddLineInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	if _, err := f.orders.Confirm(order.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if _, err := f.orders.Ship(order.ID); err != nil {
		t.Fatalf("ship failed: %v", err)
	}

	records, err := f.commission.ListByOrder(order.ID)
	if err != nil {
		t.Fatalf("list commissions failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("commission records want 1 got %d", len(records))
	}
	if records[0].Amount.String() != "10.00" {
		t.Fatalf("commission amount want 10.00 got %s", records[0].Amount)
	}
	if records[0].AffiliateID != affiliate.ID {
		t.Fatalf("affiliate id mismatch: %d", records[0].AffiliateID)
	}
}

func TestComputeLineCommissionEdgeCases(t *testing.T) {
	f := setupOrderServiceTest(t)
	affiliate := f.createCustomer(t, "Partenaire Brut")

	noRate := f.createProduct(t, "COMM-NORATE-01", "100.00", 0)
	if err := f.db.Model(&models.Product{}).Where("id = ?", noRate.ID).
		Update("created_by_affiliate", affiliate.ID).Error; err != nil {
		t.Fatalf("mark affiliate product failed: %v", err)
	}
	item := &models.SalesOrderItem{ID: 1, ProductID: noRate.ID, TotalHT: noRate.PriceHT}
	if _, err := f.commission.ComputeLineCommission(item); !errors.Is(err, ErrMissingCommissionRate) {
		t.Fatalf("missing rate want ErrMissingCommissionRate got %v", err)
	}

	// 佣金率为 0 是合法配置
	zero := decimal.Zero
	zeroRate := f.createProduct(t, "COMM-ZERO-01", "100.00", 0)
	if err := f.db.Model(&models.Product{}).Where("id = ?", zeroRate.ID).
		Updates(map[string]interface{}{
			"created_by_affiliate":      affiliate.ID,
			"affiliate_commission_rate": zero,
		}).Error; err != nil {
		t.Fatalf("mark zero-rate product failed: %v", err)
	}
	line, err := f.commission.ComputeLineCommission(&models.SalesOrderItem{ID: 2, ProductID: zeroRate.ID, TotalHT: zeroRate.PriceHT})
	if err != nil {
		t.Fatalf("zero rate should be valid: %v", err)
	}
	if !line.Affiliate || !line.Amount.IsZero() {
		t.Fatalf("zero rate line mismatch: %+v", line)
	}

	// 非联盟商品不产生佣金也不报错
	plain := f.createProduct(t, "COMM-PLAIN-01", "100.00", 0)
	line, err = f.commission.ComputeLineCommission(&models.SalesOrderItem{ID: 3, ProductID: plain.ID, TotalHT: plain.PriceHT})
	if err != nil {
		t.Fatalf("plain product commission failed: %v", err)
	}
	if line.Affiliate || !line.Amount.IsZero() {
		t.Fatalf("plain product should yield zero commission: %+v", line)
	}
}

func TestValidateMargins(t *testing.T) {
	f := setupOrderServiceTest(t)
	affiliate := f.createCustomer(t, "Partenaire Marges")

	channel := &models.SalesChannel{Code: "MARGIN-CH", Name: "Marketplace", IsActive: true}
	if err := f.db.Create(channel).Error; err != nil {
		t.Fatalf("create channel failed: %v", err)
	}

	minMargin := decimal.NewFromInt(10)
	lowMargin := decimal.NewFromInt(5)
	constrained := f.createProduct(t, "MARGIN-LOW-01", "100.00", 0)
	if err := f.db.Model(&models.Product{}).Where("id = ?", constrained.ID).
		Update("min_margin_rate", minMargin).Error; err != nil {
		t.Fatalf("set min margin failed: %v", err)
	}
	affiliated := f.createProduct(t, "MARGIN-AFF-01", "100.00", 0)
	if err := f.db.Model(&models.Product{}).Where("id = ?", affiliated.ID).
		Updates(map[string]interface{}{
			"created_by_affiliate":      affiliate.ID,
			"affiliate_commission_rate": decimal.NewFromInt(5),
		}).Error; err != nil {
		t.Fatalf("mark affiliate product failed: %v", err)
	}

	selections := []*models.SelectionItem{
		{ChannelID: channel.ID, ProductID: constrained.ID, MarginRate: &lowMargin, IsActive: true},
		{ChannelID: channel.ID, ProductID: affiliated.ID, IsActive: true},
	}
	for _, selection := range selections {
		if err := f.db.Create(selection).Error; err != nil {
			t.Fatalf("create selection failed: %v", err)
		}
	}

	violations, err := f.commission.ValidateMargins(channel.ID)
	if err != nil {
		t.Fatalf("validate margins failed: %v", err)
	}
	if len(violations) != 2 {
		t.Fatalf("violations want 2 got %d: %+v", len(violations), violations)
	}

	if _, err := f.commission.ValidateMargins(99999); !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("unknown channel want ErrChannelNotFound got %v", err)
	}
}

func TestAuditZeroCommissions(t *testing.T) {
	f := setupOrderServiceTest(t)
	affiliate := f.createCustomer(t, "Partenaire Audit")
	since := time.Now().UTC().Add(-time.Hour)

	record := &models.CommissionRecord{
		OrderID:     501,
		OrderItemID: 601,
		ProductID:   701,
		AffiliateID: affiliate.ID,
		Rate:        decimal.Zero,
		Amount:      models.Money{},
		Status:      "pending",
	}
	if err := f.db.Create(record).Error; err != nil {
		t.Fatalf("create commission record failed: %v", err)
	}

	// 联盟商品明细但没有任何佣金记录
	missing := f.createProduct(t, "AUDIT-MISS-01", "100.00", 0)
	if err := f.db.Model(&models.Product{}).Where("id = ?", missing.ID).
		Updates(map[string]interface{}{
			"created_by_affiliate":      affiliate.ID,
			"affiliate_commission_rate": decimal.NewFromInt(5),
		}).Error; err != nil {
		t.Fatalf("mark affiliate product failed: %v", err)
	}
	orphan := &models.SalesOrderItem{OrderID: 502, ProductID: missing.ID, SKU: missing.SKU, Quantity: 1, TotalHT: missing.PriceHT}
	if err := f.db.Create(orphan).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}

	report, err := f.commission.AuditZeroCommissions(since)
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	var zeroSeen, missingSeen bool
	for _, entry := range report.Entries {
		if entry.RecordID == record.ID && entry.RateIsZero {
			zeroSeen = true
		}
		if entry.OrderItemID == orphan.ID && entry.Missing {
			missingSeen = true
		}
	}
	if !zeroSeen {
		t.Fatalf("zero-amount record should be reported: %+v", report.Entries)
	}
	if !missingSeen {
		t.Fatalf("missing commission should be reported: %+v", report.Entries)
	}
}
