package repository

import (
	"testing"
	"time"

	"github.com/verone-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupStockRepositoryTest(t *testing.T) (*GormStockMovementRepository, *GormStockReservationRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.StockMovement{}, &models.StockReservation{}); err != nil {
		t.Fatalf("migrate stock models failed: %v", err)
	}
	return NewStockMovementRepository(db), NewStockReservationRepository(db), db
}

func createLedgerProduct(t *testing.T, db *gorm.DB, sku string) *models.Product {
	t.Helper()
	product := &models.Product{SKU: sku, Name: "Canapé " + sku}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestAppendToChainRejectsStaleBefore(t *testing.T) {
	movementRepo, _, db := setupStockRepositoryTest(t)
	product := createLedgerProduct(t, db, "CHAIN-01")
	now := time.Now().UTC()

	appended, err := movementRepo.AppendToChain(&models.StockMovement{
		ProductID:      product.ID,
		MovementType:   models.MovementIn,
		QuantityChange: 8,
		QuantityBefore: 0,
		QuantityAfter:  8,
		ReasonCode:     models.ReasonPurchaseReception,
		PerformedAt:    now,
	}, 0)
	if err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if !appended {
		t.Fatalf("first append should succeed")
	}

	appended, err = movementRepo.AppendToChain(&models.StockMovement{
		ProductID:      product.ID,
		MovementType:   models.MovementOut,
		QuantityChange: -2,
		QuantityBefore: 5,
		QuantityAfter:  3,
		ReasonCode:     models.ReasonSale,
		PerformedAt:    now,
	}, 5)
	if err != nil {
		t.Fatalf("stale append errored: %v", err)
	}
	if appended {
		t.Fatalf("stale append should be rejected")
	}

	last, err := movementRepo.LastInChain(product.ID, false, "")
	if err != nil {
		t.Fatalf("last in chain failed: %v", err)
	}
	if last == nil || last.QuantityAfter != 8 {
		t.Fatalf("chain tail should stay at 8, got %+v", last)
	}
}

func TestForecastSumsExcludeConsumedReferences(t *testing.T) {
	movementRepo, _, db := setupStockRepositoryTest(t)
	product := createLedgerProduct(t, db, "CHAIN-02")
	now := time.Now().UTC()

	// 两条预测入库，其中一条随后被同引用的实际入库消费
	forecasts := []models.StockMovement{
		{
			ProductID:       product.ID,
			MovementType:    models.MovementIn,
			QuantityChange:  5,
			QuantityAfter:   5,
			ReasonCode:      models.ReasonPurchaseReception,
			AffectsForecast: true,
			ForecastType:    models.ForecastIn,
			ReferenceID:     "po-1001",
			PerformedAt:     now,
		},
		{
			ProductID:       product.ID,
			MovementType:    models.MovementIn,
			QuantityChange:  7,
			QuantityBefore:  5,
			QuantityAfter:   12,
			ReasonCode:      models.ReasonPurchaseReception,
			AffectsForecast: true,
			ForecastType:    models.ForecastIn,
			ReferenceID:     "po-1002",
			PerformedAt:     now,
		},
	}
	for i := range forecasts {
		if err := db.Create(&forecasts[i]).Error; err != nil {
			t.Fatalf("create forecast movement failed: %v", err)
		}
	}
	received := models.StockMovement{
		ProductID:      product.ID,
		MovementType:   models.MovementIn,
		QuantityChange: 5,
		QuantityAfter:  5,
		ReasonCode:     models.ReasonPurchaseReception,
		ReferenceID:    "po-1001",
		PerformedAt:    now,
	}
	if err := db.Create(&received).Error; err != nil {
		t.Fatalf("create real movement failed: %v", err)
	}

	sums, err := movementRepo.SumForecast(product.ID)
	if err != nil {
		t.Fatalf("sum forecast failed: %v", err)
	}
	if sums.In != 7 {
		t.Fatalf("forecast in want 7 got %d", sums.In)
	}
	if sums.Out != 0 {
		t.Fatalf("forecast out want 0 got %d", sums.Out)
	}

	consumed, err := movementRepo.HasRealByReference(product.ID, "po-1001")
	if err != nil {
		t.Fatalf("has real by reference failed: %v", err)
	}
	if !consumed {
		t.Fatalf("po-1001 should be consumed")
	}
}

func TestReservationLifecycle(t *testing.T) {
	_, reservationRepo, db := setupStockRepositoryTest(t)
	product := createLedgerProduct(t, db, "CHAIN-03")
	now := time.Now().UTC()
	expired := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	active := &models.StockReservation{ProductID: product.ID, ReservedQuantity: 3, ExpiresAt: &future}
	stale := &models.StockReservation{ProductID: product.ID, ReservedQuantity: 4, ExpiresAt: &expired}
	open := &models.StockReservation{ProductID: product.ID, ReservedQuantity: 2}
	for _, reservation := range []*models.StockReservation{active, stale, open} {
		if err := reservationRepo.Create(reservation); err != nil {
			t.Fatalf("create reservation failed: %v", err)
		}
	}

	sum, err := reservationRepo.SumActiveQuantity(product.ID, now)
	if err != nil {
		t.Fatalf("sum active failed: %v", err)
	}
	if sum != 5 {
		t.Fatalf("active reservation sum want 5 got %d", sum)
	}

	released, err := reservationRepo.ReleaseExpired(now)
	if err != nil {
		t.Fatalf("release expired failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("release expired want 1 got %d", released)
	}

	// 释放幂等
	affected, err := reservationRepo.Release(active.ID, now)
	if err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("first release want 1 got %d", affected)
	}
	affected, err = reservationRepo.Release(active.ID, now)
	if err != nil {
		t.Fatalf("second release failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("second release want 0 got %d", affected)
	}
}
