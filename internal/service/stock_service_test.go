package service

import (
	"errors"
	"testing"
	"time"

	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupStockServiceTest(t *testing.T) (*StockService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.StockMovement{}, &models.StockReservation{}); err != nil {
		t.Fatalf("migrate stock models failed: %v", err)
	}
	svc := NewStockService(
		repository.NewStockMovementRepository(db),
		repository.NewStockReservationRepository(db),
		repository.NewProductRepository(db),
		StockOptions{ReservationTTL: 2 * time.Hour},
	)
	return svc, db
}

func createStockProduct(t *testing.T, db *gorm.DB, sku string) *models.Product {
	t.Helper()
	product := &models.Product{
		SKU:                sku,
		Name:               "Fauteuil " + sku,
		StatusAuto:         true,
		AvailabilityStatus: models.AvailabilityOutOfStock,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func mustApply(t *testing.T, svc *StockService, input ApplyMovementInput) *models.StockMovement {
	t.Helper()
	movement, err := svc.ApplyMovement(input)
	if err != nil {
		t.Fatalf("apply movement failed: %v", err)
	}
	return movement
}

func TestApplyMovementUpdatesLedgerAndProjection(t *testing.T) {
	svc, db := setupStockServiceTest(t)
	product := createStockProduct(t, db, "SVC-STOCK-01")

	movement := mustApply(t, svc, ApplyMovementInput{
		ProductID:      product.ID,
		MovementType:   models.MovementIn,
		QuantityChange: 10,
		ReasonCode:     models.ReasonPurchaseReception,
	})
	if movement.QuantityBefore != 0 || movement.QuantityAfter != 10 {
		t.Fatalf("chain values want 0/10 got %d/%d", movement.QuantityBefore, movement.QuantityAfter)
	}

	mustApply(t, svc, ApplyMovementInput{
		ProductID:      product.ID,
		MovementType:   models.MovementOut,
		QuantityChange: -4,
		ReasonCode:     models.ReasonSale,
	})

	real, err := svc.RealStock(product.ID)
	if err != nil {
		t.Fatalf("real stock failed: %v", err)
	}
	if real != 6 {
		t.Fatalf("real stock want 6 got %d", real)
	}

	var stored models.Product
	if err := db.First(&stored, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if stored.StockReal != 6 {
		t.Fatalf("projection want 6 got %d", stored.StockReal)
	}
	if stored.AvailabilityStatus != models.AvailabilityInStock {
		t.Fatalf("status want in_stock got %s", stored.AvailabilityStatus)
	}

	_, err = svc.ApplyMovement(ApplyMovementInput{
		ProductID:      product.ID,
		MovementType:   models.MovementOut,
		QuantityChange: -10,
		ReasonCode:     models.ReasonSale,
	})
	if !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("oversell want ErrStockInsufficient got %v", err)
	}
}

func TestApplyMovementValidation(t *testing.T) {
	svc, db := setupStockServiceTest(t)
	product := createStockProduct(t, db, "SVC-STOCK-02")

	_, err := svc.ApplyMovement(ApplyMovementInput{
		ProductID:      product.ID,
		MovementType:   models.MovementIn,
		QuantityChange: -5,
		ReasonCode:     models.ReasonPurchaseReception,
	})
	if !errors.Is(err, ErrInvalidMovement) {
		t.Fatalf("negative IN want ErrInvalidMovement got %v", err)
	}

	_, err = svc.ApplyMovement(ApplyMovementInput{
		ProductID:      product.ID,
		MovementType:   models.MovementIn,
		QuantityChange: 5,
		ReasonCode:     "mystery",
	})
	if !errors.Is(err, ErrInvalidReasonCode) {
		t.Fatalf("bad reason want ErrInvalidReasonCode got %v", err)
	}

	archivedAt := time.Now().UTC()
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("archived_at", archivedAt).Error; err != nil {
		t.Fatalf("archive product failed: %v", err)
	}
	_, err = svc.ApplyMovement(ApplyMovementInput{
		ProductID:      product.ID,
		MovementType:   models.MovementIn,
		QuantityChange: 5,
		ReasonCode:     models.ReasonPurchaseReception,
	})
	if !errors.Is(err, ErrProductArchived) {
		t.Fatalf("archived product want ErrProductArchived got %v", err)
	}
}

func TestForecastConsumptionThroughService(t *testing.T) {
	svc, db := setupStockServiceTest(t)
	product := createStockProduct(t, db, "SVC-STOCK-03")

	mustApply(t, svc, ApplyMovementInput{
		ProductID:       product.ID,
		MovementType:    models.MovementIn,
		QuantityChange:  5,
		ReasonCode:      models.ReasonPurchaseReception,
		AffectsForecast: true,
		ForecastType:    models.ForecastIn,
		ReferenceID:     "po-2001",
	})

	forecast, err := svc.ForecastedStock(product.ID)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	if forecast.In != 5 {
		t.Fatalf("forecast in want 5 got %d", forecast.In)
	}

	var stored models.Product
	if err := db.First(&stored, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if stored.AvailabilityStatus != models.AvailabilityPreorder {
		t.Fatalf("status want preorder got %s", stored.AvailabilityStatus)
	}

	// 同引用的实际入库消费掉预测
	mustApply(t, svc, ApplyMovementInput{
		ProductID:      product.ID,
		MovementType:   models.MovementIn,
		QuantityChange: 5,
		ReasonCode:     models.ReasonPurchaseReception,
		ReferenceID:    "po-2001",
	})

	forecast, err = svc.ForecastedStock(product.ID)
	if err != nil {
		t.Fatalf("forecast after reception failed: %v", err)
	}
	if forecast.In != 0 {
		t.Fatalf("forecast in after reception want 0 got %d", forecast.In)
	}
	real, err := svc.RealStock(product.ID)
	if err != nil {
		t.Fatalf("real stock failed: %v", err)
	}
	if real != 5 {
		t.Fatalf("real stock want 5 got %d", real)
	}
}

func TestReserveReleaseAndATP(t *testing.T) {
	svc, db := setupStockServiceTest(t)
	product := createStockProduct(t, db, "SVC-STOCK-04")

	mustApply(t, svc, ApplyMovementInput{
		ProductID:      product.ID,
		MovementType:   models.MovementIn,
		QuantityChange: 10,
		ReasonCode:     models.ReasonPurchaseReception,
	})

	reservation, err := svc.Reserve(ReserveInput{ProductID: product.ID, Quantity: 4, ReferenceID: "quote-1"})
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if reservation.ExpiresAt == nil {
		t.Fatalf("reservation should carry default expiry")
	}

	atp, err := svc.AvailableToPromise(product.ID)
	if err != nil {
		t.Fatalf("atp failed: %v", err)
	}
	if atp != 6 {
		t.Fatalf("atp want 6 got %d", atp)
	}

	if _, err := svc.Reserve(ReserveInput{ProductID: product.ID, Quantity: 7}); !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("over-reserve want ErrStockInsufficient got %v", err)
	}

	if err := svc.Release(reservation.ID); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := svc.Release(reservation.ID); err != nil {
		t.Fatalf("second release should be idempotent: %v", err)
	}
	atp, err = svc.AvailableToPromise(product.ID)
	if err != nil {
		t.Fatalf("atp after release failed: %v", err)
	}
	if atp != 10 {
		t.Fatalf("atp after release want 10 got %d", atp)
	}

	if err := svc.Release(99999); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("unknown reservation want ErrReservationNotFound got %v", err)
	}
}

func TestReconcileReportsDrift(t *testing.T) {
	svc, db := setupStockServiceTest(t)
	product := createStockProduct(t, db, "SVC-STOCK-05")

	mustApply(t, svc, ApplyMovementInput{
		ProductID:      product.ID,
		MovementType:   models.MovementIn,
		QuantityChange: 8,
		ReasonCode:     models.ReasonPurchaseReception,
	})

	// 人为制造投影漂移
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("stock_real", 3).Error; err != nil {
		t.Fatalf("corrupt projection failed: %v", err)
	}

	report, err := svc.Reconcile(product.ID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if report.IsCoherent {
		t.Fatalf("drifted product should not be coherent")
	}
	if report.Calculated != 8 || report.Stored != 3 || report.Difference != 5 {
		t.Fatalf("report mismatch: %+v", report)
	}

	if _, err := svc.RecalculateStock(product.ID); err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}
	report, err = svc.Reconcile(product.ID)
	if err != nil {
		t.Fatalf("reconcile after recalc failed: %v", err)
	}
	if !report.IsCoherent {
		t.Fatalf("recalculated product should be coherent: %+v", report)
	}
}

func TestExpireReservations(t *testing.T) {
	svc, db := setupStockServiceTest(t)
	product := createStockProduct(t, db, "SVC-STOCK-06")

	mustApply(t, svc, ApplyMovementInput{
		ProductID:      product.ID,
		MovementType:   models.MovementIn,
		QuantityChange: 5,
		ReasonCode:     models.ReasonPurchaseReception,
	})

	past := time.Now().UTC().Add(-time.Minute)
	stale := &models.StockReservation{ProductID: product.ID, ReservedQuantity: 2, ExpiresAt: &past}
	if err := db.Create(stale).Error; err != nil {
		t.Fatalf("create stale reservation failed: %v", err)
	}

	released, err := svc.ExpireReservations(time.Now().UTC())
	if err != nil {
		t.Fatalf("expire reservations failed: %v", err)
	}
	if released != 1 {
		t.Fatalf("released want 1 got %d", released)
	}
}
