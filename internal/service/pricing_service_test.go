package service

import (
	"errors"
	"testing"
	"time"

	"github.com/verone-next/internal/constants"
	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPricingServiceTest(t *testing.T) (*PricingService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.CustomerGroup{}, &models.Organisation{}, &models.SalesChannel{},
		&models.Product{}, &models.PriceList{}, &models.PriceListItem{}, &models.PriceListAssignment{},
	); err != nil {
		t.Fatalf("migrate pricing models failed: %v", err)
	}
	svc := NewPricingService(
		repository.NewPriceListRepository(db),
		repository.NewProductRepository(db),
		repository.NewOrganisationRepository(db),
	)
	return svc, db
}

func createPricedProduct(t *testing.T, db *gorm.DB, sku, priceHT string) *models.Product {
	t.Helper()
	price, err := models.NewMoneyFromString(priceHT)
	if err != nil {
		t.Fatalf("parse price failed: %v", err)
	}
	product := &models.Product{
		SKU:     sku,
		Name:    "Table " + sku,
		PriceHT: price,
		TaxRate: decimal.NewFromInt(20),
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createListWithItem(t *testing.T, db *gorm.DB, code string, priority int, isDefault bool, productID uint, unitPrice string, createdAt time.Time) *models.PriceList {
	t.Helper()
	list := &models.PriceList{
		Code:      code,
		Name:      code,
		ListType:  models.PriceListBase,
		Priority:  priority,
		Currency:  "EUR",
		IsDefault: isDefault,
		IsActive:  true,
		CreatedAt: createdAt,
	}
	if err := db.Create(list).Error; err != nil {
		t.Fatalf("create price list failed: %v", err)
	}
	price, err := models.NewMoneyFromString(unitPrice)
	if err != nil {
		t.Fatalf("parse unit price failed: %v", err)
	}
	item := &models.PriceListItem{
		PriceListID: list.ID,
		ProductID:   productID,
		UnitPriceHT: price,
		MinQuantity: 1,
		IsActive:    true,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create price list item failed: %v", err)
	}
	return list
}

func TestResolvePriceFallsBackToBase(t *testing.T) {
	svc, db := setupPricingServiceTest(t)
	product := createPricedProduct(t, db, "PRICE-BASE-01", "100.00")

	quote, err := svc.ResolvePrice(ResolvePriceInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if quote.PriceSource != constants.PriceSourceBase {
		t.Fatalf("source want base got %s", quote.PriceSource)
	}
	if quote.UnitPriceHT.String() != "100.00" {
		t.Fatalf("unit ht want 100.00 got %s", quote.UnitPriceHT)
	}
	if quote.UnitPriceTTC.String() != "120.00" {
		t.Fatalf("unit ttc want 120.00 got %s", quote.UnitPriceTTC)
	}
}

func TestResolvePriceNoPriceFound(t *testing.T) {
	svc, db := setupPricingServiceTest(t)
	product := createPricedProduct(t, db, "PRICE-NONE-01", "0")

	_, err := svc.ResolvePrice(ResolvePriceInput{ProductID: product.ID, Quantity: 1})
	if !errors.Is(err, ErrNoPriceFound) {
		t.Fatalf("want ErrNoPriceFound got %v", err)
	}
}

func TestResolvePricePrecedence(t *testing.T) {
	svc, db := setupPricingServiceTest(t)
	product := createPricedProduct(t, db, "PRICE-PREC-01", "100.00")
	now := time.Now().UTC()

	customer := &models.Organisation{Name: "Hôtel Lutetia", Type: models.OrganisationCustomer, IsActive: true}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	channel := &models.SalesChannel{Code: "PREC-CH", Name: "Site B2B", IsActive: true}
	if err := db.Create(channel).Error; err != nil {
		t.Fatalf("create channel failed: %v", err)
	}

	createListWithItem(t, db, "PREC-DEFAULT", 100, true, product.ID, "90.00", now)
	channelList := createListWithItem(t, db, "PREC-CHANNEL", 100, false, product.ID, "80.00", now)
	customerList := createListWithItem(t, db, "PREC-CUSTOMER", 100, false, product.ID, "70.00", now)

	for _, assignment := range []*models.PriceListAssignment{
		{PriceListID: channelList.ID, ChannelID: &channel.ID, IsActive: true},
		{PriceListID: customerList.ID, CustomerID: &customer.ID, IsActive: true},
	} {
		if err := db.Create(assignment).Error; err != nil {
			t.Fatalf("create assignment failed: %v", err)
		}
	}

	quote, err := svc.ResolvePrice(ResolvePriceInput{
		ProductID:  product.ID,
		Quantity:   1,
		CustomerID: &customer.ID,
		ChannelID:  &channel.ID,
	})
	if err != nil {
		t.Fatalf("resolve with customer failed: %v", err)
	}
	if quote.PriceSource != constants.PriceSourceCustomer || quote.UnitPriceHT.String() != "70.00" {
		t.Fatalf("customer price should win, got %s %s", quote.PriceSource, quote.UnitPriceHT)
	}

	quote, err = svc.ResolvePrice(ResolvePriceInput{
		ProductID: product.ID,
		Quantity:  1,
		ChannelID: &channel.ID,
	})
	if err != nil {
		t.Fatalf("resolve with channel failed: %v", err)
	}
	if quote.PriceSource != constants.PriceSourceChannel || quote.UnitPriceHT.String() != "80.00" {
		t.Fatalf("channel price should win, got %s %s", quote.PriceSource, quote.UnitPriceHT)
	}

	quote, err = svc.ResolvePrice(ResolvePriceInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("resolve default failed: %v", err)
	}
	if quote.PriceSource != constants.PriceSourceDefaultList || quote.UnitPriceHT.String() != "90.00" {
		t.Fatalf("default price should win, got %s %s", quote.PriceSource, quote.UnitPriceHT)
	}
}

func TestResolvePricePriorityAndRecencyTieBreak(t *testing.T) {
	svc, db := setupPricingServiceTest(t)
	product := createPricedProduct(t, db, "PRICE-TIE-01", "100.00")
	now := time.Now().UTC()

	// priority 小者胜
	createListWithItem(t, db, "TIE-LOW", 10, true, product.ID, "60.00", now.Add(-2*time.Hour))
	createListWithItem(t, db, "TIE-HIGH", 50, true, product.ID, "55.00", now)

	quote, err := svc.ResolvePrice(ResolvePriceInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if quote.PriceListCode != "TIE-LOW" {
		t.Fatalf("lower priority value should win, got %s", quote.PriceListCode)
	}

	// priority 相同时较新的价目表胜
	product2 := createPricedProduct(t, db, "PRICE-TIE-02", "100.00")
	createListWithItem(t, db, "TIE-OLD", 5, true, product2.ID, "85.00", now.Add(-time.Hour))
	createListWithItem(t, db, "TIE-NEW", 5, true, product2.ID, "75.00", now)

	quote, err = svc.ResolvePrice(ResolvePriceInput{ProductID: product2.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("resolve tie failed: %v", err)
	}
	if quote.PriceListCode != "TIE-NEW" {
		t.Fatalf("newer list should break the tie, got %s", quote.PriceListCode)
	}
}

func TestResolvePriceAmbiguousTier(t *testing.T) {
	svc, db := setupPricingServiceTest(t)
	product := createPricedProduct(t, db, "PRICE-AMB-01", "100.00")
	now := time.Now().UTC()

	list := createListWithItem(t, db, "AMB-LIST", 10, true, product.ID, "90.00", now)
	ten := 10
	overlap := &models.PriceListItem{
		PriceListID: list.ID,
		ProductID:   product.ID,
		UnitPriceHT: models.NewMoneyFromDecimal(decimal.NewFromInt(85)),
		MinQuantity: 1,
		MaxQuantity: &ten,
		IsActive:    true,
	}
	if err := db.Create(overlap).Error; err != nil {
		t.Fatalf("create overlapping item failed: %v", err)
	}

	_, err := svc.ResolvePrice(ResolvePriceInput{ProductID: product.ID, Quantity: 5})
	if !errors.Is(err, ErrAmbiguousTier) {
		t.Fatalf("want ErrAmbiguousTier got %v", err)
	}
}

func TestAddItemRejectsOverlappingTier(t *testing.T) {
	svc, db := setupPricingServiceTest(t)
	product := createPricedProduct(t, db, "PRICE-OVL-01", "100.00")

	list, err := svc.CreatePriceList(CreatePriceListInput{Code: "OVL-LIST", Name: "Grille", ListType: models.PriceListBase})
	if err != nil {
		t.Fatalf("create list failed: %v", err)
	}

	ten := 10
	if _, err := svc.AddItem(list.ID, PriceListItemInput{
		ProductID:   product.ID,
		UnitPriceHT: models.NewMoneyFromDecimal(decimal.NewFromInt(90)),
		MinQuantity: 1,
		MaxQuantity: &ten,
	}); err != nil {
		t.Fatalf("first tier failed: %v", err)
	}
	if _, err := svc.AddItem(list.ID, PriceListItemInput{
		ProductID:   product.ID,
		UnitPriceHT: models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		MinQuantity: 5,
	}); !errors.Is(err, ErrTierOverlap) {
		t.Fatalf("want ErrTierOverlap got %v", err)
	}
	if _, err := svc.AddItem(list.ID, PriceListItemInput{
		ProductID:   product.ID,
		UnitPriceHT: models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		MinQuantity: 11,
	}); err != nil {
		t.Fatalf("adjacent tier should pass: %v", err)
	}
}

func TestAssignRequiresExactlyOneTarget(t *testing.T) {
	svc, _ := setupPricingServiceTest(t)

	list, err := svc.CreatePriceList(CreatePriceListInput{Code: "ASSIGN-LIST", Name: "Grille", ListType: models.PriceListChannel})
	if err != nil {
		t.Fatalf("create list failed: %v", err)
	}

	one := uint(1)
	two := uint(2)
	if _, err := svc.Assign(list.ID, AssignInput{CustomerID: &one, ChannelID: &two}); !errors.Is(err, ErrInvalidAssignment) {
		t.Fatalf("two targets want ErrInvalidAssignment got %v", err)
	}
	if _, err := svc.Assign(list.ID, AssignInput{}); !errors.Is(err, ErrInvalidAssignment) {
		t.Fatalf("no target want ErrInvalidAssignment got %v", err)
	}
	if _, err := svc.Assign(list.ID, AssignInput{ChannelID: &two}); err != nil {
		t.Fatalf("single target should pass: %v", err)
	}
}

func TestQuantityBreaks(t *testing.T) {
	svc, db := setupPricingServiceTest(t)
	product := createPricedProduct(t, db, "PRICE-QTY-01", "100.00")
	now := time.Now().UTC()

	list := createListWithItem(t, db, "QTY-LIST", 10, true, product.ID, "100.00", now)
	nine := 9
	if err := db.Model(&models.PriceListItem{}).
		Where("price_list_id = ?", list.ID).
		Update("max_quantity", nine).Error; err != nil {
		t.Fatalf("bound first tier failed: %v", err)
	}
	bulk := &models.PriceListItem{
		PriceListID: list.ID,
		ProductID:   product.ID,
		UnitPriceHT: models.NewMoneyFromDecimal(decimal.NewFromInt(80)),
		MinQuantity: 10,
		IsActive:    true,
	}
	if err := db.Create(bulk).Error; err != nil {
		t.Fatalf("create bulk tier failed: %v", err)
	}

	breaks, err := svc.QuantityBreaks(ResolvePriceInput{ProductID: product.ID})
	if err != nil {
		t.Fatalf("quantity breaks failed: %v", err)
	}
	if len(breaks) != 2 {
		t.Fatalf("breaks want 2 got %d", len(breaks))
	}
	if breaks[0].SavingsRate != nil {
		t.Fatalf("first tier should have no savings")
	}
	if breaks[1].SavingsRate == nil || breaks[1].SavingsRate.String() != "20" {
		t.Fatalf("bulk tier savings want 20 got %v", breaks[1].SavingsRate)
	}
}

func TestCustomerGroupDerivedFromOrganisation(t *testing.T) {
	svc, db := setupPricingServiceTest(t)
	product := createPricedProduct(t, db, "PRICE-GRP-01", "100.00")
	now := time.Now().UTC()

	group := &models.CustomerGroup{Code: "GRANDS-COMPTES", Name: "Grands comptes"}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("create group failed: %v", err)
	}
	customer := &models.Organisation{Name: "Maison Aubert", Type: models.OrganisationCustomer, CustomerGroupID: &group.ID, IsActive: true}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}

	groupList := createListWithItem(t, db, "GRP-LIST", 10, false, product.ID, "65.00", now)
	assignment := &models.PriceListAssignment{PriceListID: groupList.ID, CustomerGroupID: &group.ID, IsActive: true}
	if err := db.Create(assignment).Error; err != nil {
		t.Fatalf("create assignment failed: %v", err)
	}

	quote, err := svc.ResolvePrice(ResolvePriceInput{ProductID: product.ID, Quantity: 1, CustomerID: &customer.ID})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if quote.PriceSource != constants.PriceSourceCustomerGroup || quote.UnitPriceHT.String() != "65.00" {
		t.Fatalf("group price should apply, got %s %s", quote.PriceSource, quote.UnitPriceHT)
	}
}
