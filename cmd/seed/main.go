package main

import (
	"fmt"
	"time"

	"github.com/verone-next/internal/config"
	"github.com/verone-next/internal/constants"
	"github.com/verone-next/internal/logger"
	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"
	"github.com/verone-next/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.DB

	// 客户组
	groups := []models.CustomerGroup{
		{Code: "PARTICULIERS", Name: "Particuliers"},
		{Code: "PROFESSIONNELS", Name: "Professionnels"},
		{Code: "GRANDS-COMPTES", Name: "Grands comptes"},
	}
	groupIDs := map[string]uint{}
	for _, group := range groups {
		var existing models.CustomerGroup
		if err := db.Where("code = ?", group.Code).First(&existing).Error; err != nil {
			if err := db.Create(&group).Error; err != nil {
				stdLog.Printf("Failed to create customer group %s: %v", group.Code, err)
				continue
			}
			existing = group
			stdLog.Printf("Created customer group: %s", group.Code)
		}
		groupIDs[existing.Code] = existing.ID
	}

	// 组织（客户与联盟伙伴）
	proGroupID := groupIDs["PROFESSIONNELS"]
	keyGroupID := groupIDs["GRANDS-COMPTES"]
	organisations := []models.Organisation{
		{Name: "Maison Lefèvre", Type: models.OrganisationCustomer, CustomerGroupID: &proGroupID, Email: "contact@maison-lefevre.fr", IsActive: true},
		{Name: "Hôtel Rivoli", Type: models.OrganisationCustomer, CustomerGroupID: &keyGroupID, Email: "achats@hotel-rivoli.fr", IsActive: true},
		{Name: "Studio Balzac", Type: models.OrganisationPartner, Email: "hello@studio-balzac.fr", IsActive: true},
	}
	orgIDs := map[string]uint{}
	for _, org := range organisations {
		var existing models.Organisation
		if err := db.Where("name = ?", org.Name).First(&existing).Error; err != nil {
			if err := db.Create(&org).Error; err != nil {
				stdLog.Printf("Failed to create organisation %s: %v", org.Name, err)
				continue
			}
			existing = org
			stdLog.Printf("Created organisation: %s", org.Name)
		}
		orgIDs[existing.Name] = existing.ID
	}

	// 销售渠道
	channelRate := decimal.NewFromInt(12)
	channels := []models.SalesChannel{
		{Code: "showroom", Name: "Showroom Paris", IsActive: true},
		{Code: "web-b2b", Name: "Site B2B", IsActive: true},
		{Code: "marketplace", Name: "Marketplace partenaires", CommissionRate: &channelRate, IsActive: true},
	}
	channelIDs := map[string]uint{}
	for _, channel := range channels {
		var existing models.SalesChannel
		if err := db.Where("code = ?", channel.Code).First(&existing).Error; err != nil {
			if err := db.Create(&channel).Error; err != nil {
				stdLog.Printf("Failed to create channel %s: %v", channel.Code, err)
				continue
			}
			existing = channel
			stdLog.Printf("Created channel: %s", channel.Code)
		}
		channelIDs[existing.Code] = existing.ID
	}

	// 商品（含一件联盟伙伴商品）
	affiliateID := orgIDs["Studio Balzac"]
	affiliateRate := decimal.NewFromInt(5)
	minMargin := decimal.NewFromInt(20)
	products := []models.Product{
		{
			SKU:         "CANAPE-OSLO-3P",
			Name:        "Canapé Oslo 3 places",
			Description: "Canapé scandinave en tissu bouclé, structure hêtre massif.",
			CostPrice:   models.NewMoneyFromDecimal(decimal.NewFromInt(420)),
			PriceHT:     models.NewMoneyFromDecimal(decimal.NewFromInt(890)),
			TaxRate:     decimal.NewFromInt(20),
			MinStock:    2,
			StatusAuto:  true,
		},
		{
			SKU:         "TABLE-RIVE-180",
			Name:        "Table Rive 180cm",
			Description: "Table de salle à manger en chêne, finition huilée.",
			CostPrice:   models.NewMoneyFromDecimal(decimal.NewFromInt(310)),
			PriceHT:     models.NewMoneyFromDecimal(decimal.NewFromInt(650)),
			TaxRate:     decimal.NewFromInt(20),
			MinStock:    3,
			StatusAuto:  true,
		},
		{
			SKU:                     "LAMPE-ATELIER",
			Name:                    "Lampe Atelier laiton",
			Description:             "Lampe de bureau articulée, sélection Studio Balzac.",
			CostPrice:               models.NewMoneyFromDecimal(decimal.NewFromInt(38)),
			PriceHT:                 models.NewMoneyFromDecimal(decimal.NewFromInt(95)),
			TaxRate:                 decimal.NewFromInt(20),
			MinStock:                10,
			StatusAuto:              true,
			CreatedByAffiliate:      &affiliateID,
			AffiliateCommissionRate: &affiliateRate,
			MinMarginRate:           &minMargin,
		},
	}
	productIDs := map[string]uint{}
	for _, product := range products {
		var existing models.Product
		if err := db.Where("sku = ?", product.SKU).First(&existing).Error; err != nil {
			if err := db.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.SKU, err)
				continue
			}
			existing = product
			stdLog.Printf("Created product: %s", product.SKU)
		}
		productIDs[existing.SKU] = existing.ID
	}

	// 初始库存通过账本服务写入，保持移动链与投影一致
	stockService := service.NewStockService(
		repository.NewStockMovementRepository(db),
		repository.NewStockReservationRepository(db),
		repository.NewProductRepository(db),
		service.StockOptions{
			AppendMaxRetries: cfg.Stock.AppendMaxRetries,
			ReservationTTL:   time.Duration(cfg.Stock.ReservationTTLMinutes) * time.Minute,
		},
	)
	receptions := []struct {
		SKU      string
		Quantity int
	}{
		{SKU: "CANAPE-OSLO-3P", Quantity: 8},
		{SKU: "TABLE-RIVE-180", Quantity: 12},
		{SKU: "LAMPE-ATELIER", Quantity: 40},
	}
	for _, reception := range receptions {
		productID := productIDs[reception.SKU]
		if productID == 0 {
			continue
		}
		var count int64
		db.Model(&models.StockMovement{}).Where("product_id = ?", productID).Count(&count)
		if count > 0 {
			stdLog.Printf("Stock already seeded for %s", reception.SKU)
			continue
		}
		if _, err := stockService.ApplyMovement(service.ApplyMovementInput{
			ProductID:      productID,
			MovementType:   models.MovementIn,
			QuantityChange: reception.Quantity,
			ReasonCode:     models.ReasonPurchaseReception,
			ReferenceID:    "seed-" + reception.SKU,
			ReferenceType:  constants.ReferenceTypeManual,
			PerformedBy:    "seed",
		}); err != nil {
			stdLog.Printf("Failed to seed stock for %s: %v", reception.SKU, err)
		} else {
			stdLog.Printf("Seeded stock for %s: %d", reception.SKU, reception.Quantity)
		}
	}

	// 价目表：默认表 + 专业客户组表（含数量梯度）
	pricingService := service.NewPricingService(
		repository.NewPriceListRepository(db),
		repository.NewProductRepository(db),
		repository.NewOrganisationRepository(db),
	)
	priority := 100
	defaultList, err := seedPriceList(db, pricingService, service.CreatePriceListInput{
		Code:      "TARIF-GENERAL",
		Name:      "Tarif général",
		ListType:  models.PriceListBase,
		Priority:  &priority,
		IsDefault: true,
	})
	if err != nil {
		stdLog.Printf("Failed to seed default price list: %v", err)
	}
	proPriority := 50
	proList, err := seedPriceList(db, pricingService, service.CreatePriceListInput{
		Code:     "TARIF-PRO",
		Name:     "Tarif professionnels",
		ListType: models.PriceListCustomerGroup,
		Priority: &proPriority,
	})
	if err != nil {
		stdLog.Printf("Failed to seed pro price list: %v", err)
	}

	if defaultList != nil && len(defaultList.Items) == 0 {
		for sku, price := range map[string]int64{
			"CANAPE-OSLO-3P": 890,
			"TABLE-RIVE-180": 650,
			"LAMPE-ATELIER":  95,
		} {
			if _, err := pricingService.AddItem(defaultList.ID, service.PriceListItemInput{
				ProductID:   productIDs[sku],
				UnitPriceHT: models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
				MinQuantity: 1,
			}); err != nil {
				stdLog.Printf("Failed to seed default price for %s: %v", sku, err)
			}
		}
	}
	if proList != nil && len(proList.Items) == 0 {
		maxSingle := 4
		tiers := []service.PriceListItemInput{
			{ProductID: productIDs["CANAPE-OSLO-3P"], UnitPriceHT: models.NewMoneyFromDecimal(decimal.NewFromInt(820)), MinQuantity: 1, MaxQuantity: &maxSingle},
			{ProductID: productIDs["CANAPE-OSLO-3P"], UnitPriceHT: models.NewMoneyFromDecimal(decimal.NewFromInt(760)), MinQuantity: 5},
			{ProductID: productIDs["TABLE-RIVE-180"], UnitPriceHT: models.NewMoneyFromDecimal(decimal.NewFromInt(590)), MinQuantity: 1},
		}
		for _, tier := range tiers {
			if _, err := pricingService.AddItem(proList.ID, tier); err != nil {
				stdLog.Printf("Failed to seed pro tier: %v", err)
			}
		}
		proGroup := groupIDs["PROFESSIONNELS"]
		if _, err := pricingService.Assign(proList.ID, service.AssignInput{CustomerGroupID: &proGroup}); err != nil {
			stdLog.Printf("Failed to assign pro price list: %v", err)
		}
	}

	// 渠道选品（联盟商品上架到 marketplace）
	marketplaceID := channelIDs["marketplace"]
	lampID := productIDs["LAMPE-ATELIER"]
	if marketplaceID != 0 && lampID != 0 {
		var existing models.SelectionItem
		if err := db.Where("channel_id = ? AND product_id = ?", marketplaceID, lampID).First(&existing).Error; err != nil {
			margin := decimal.NewFromInt(25)
			item := models.SelectionItem{
				ChannelID:  marketplaceID,
				ProductID:  lampID,
				MarginRate: &margin,
				IsActive:   true,
			}
			if err := db.Create(&item).Error; err != nil {
				stdLog.Printf("Failed to seed selection item: %v", err)
			} else {
				stdLog.Printf("Seeded selection item for marketplace")
			}
		}
	}

	// 银行账户余额快照
	now := time.Now().UTC()
	accounts := []models.BankAccount{
		{
			Name:              "Compte courant",
			BankName:          "Qonto",
			IBAN:              "FR7616798000010000012345678",
			Balance:           models.NewMoneyFromDecimal(decimal.NewFromInt(48250)),
			AuthorizedBalance: models.NewMoneyFromDecimal(decimal.NewFromInt(45100)),
			Currency:          constants.CurrencyDefault,
			SyncedAt:          &now,
		},
		{
			Name:              "Compte épargne",
			BankName:          "Qonto",
			IBAN:              "FR7616798000010000087654321",
			Balance:           models.NewMoneyFromDecimal(decimal.NewFromInt(120000)),
			AuthorizedBalance: models.NewMoneyFromDecimal(decimal.NewFromInt(120000)),
			Currency:          constants.CurrencyDefault,
			SyncedAt:          &now,
		},
	}
	for _, account := range accounts {
		var existing models.BankAccount
		if err := db.Where("iban = ?", account.IBAN).First(&existing).Error; err != nil {
			if err := db.Create(&account).Error; err != nil {
				stdLog.Printf("Failed to create bank account %s: %v", account.Name, err)
			} else {
				stdLog.Printf("Created bank account: %s", account.Name)
			}
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Customer groups")
	fmt.Println("- 3 Organisations (2 customers + 1 affiliate partner)")
	fmt.Println("- 3 Sales channels")
	fmt.Println("- 3 Products (1 affiliate-created)")
	fmt.Println("- Stock ledger receptions for each product")
	fmt.Println("- 2 Price lists (default + professional tiers)")
	fmt.Println("- 1 Selection item + 2 bank accounts")
}

// seedPriceList 幂等创建价目表，已存在时返回现有记录（含明细）
func seedPriceList(db *gorm.DB, svc *service.PricingService, input service.CreatePriceListInput) (*models.PriceList, error) {
	var existing models.PriceList
	if err := db.Preload("Items").Where("code = ?", input.Code).First(&existing).Error; err == nil {
		return &existing, nil
	}
	return svc.CreatePriceList(input)
}
