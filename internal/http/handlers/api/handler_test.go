package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/provider"
	"github.com/verone-next/internal/repository"
	"github.com/verone-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupAPIHandlerTest(t *testing.T) (*Handler, *gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:api_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.CustomerGroup{},
		&models.Organisation{},
		&models.SalesChannel{},
		&models.Product{},
		&models.StockMovement{},
		&models.StockReservation{},
		&models.PriceList{},
		&models.PriceListItem{},
		&models.PriceListAssignment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	reservationRepo := repository.NewStockReservationRepository(db)
	priceListRepo := repository.NewPriceListRepository(db)
	orgRepo := repository.NewOrganisationRepository(db)

	stockService := service.NewStockService(movementRepo, reservationRepo, productRepo, service.StockOptions{})
	pricingService := service.NewPricingService(priceListRepo, productRepo, orgRepo)
	productService := service.NewProductService(productRepo)

	h := &Handler{Container: &provider.Container{
		ProductRepo:    productRepo,
		StockService:   stockService,
		PricingService: pricingService,
		ProductService: productService,
	}}

	r := gin.New()
	r.POST("/stock/movements", h.ApplyMovement)
	r.GET("/stock/products/:id/snapshot", h.StockSnapshot)
	r.GET("/pricing/resolve", h.ResolvePrice)
	return h, r, db
}

func seedAPIProduct(t *testing.T, db *gorm.DB, sku string) *models.Product {
	t.Helper()
	product := &models.Product{
		SKU:        sku,
		Name:       "Bureau " + sku,
		PriceHT:    models.NewMoneyFromDecimal(decimal.NewFromInt(150)),
		TaxRate:    decimal.NewFromInt(20),
		StatusAuto: true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (int, map[string]interface{}) {
	t.Helper()
	var resp struct {
		StatusCode int                    `json:"status_code"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v, body=%s", err, w.Body.String())
	}
	return resp.StatusCode, resp.Data
}

func TestApplyMovementEndpoint(t *testing.T) {
	_, r, db := setupAPIHandlerTest(t)
	product := seedAPIProduct(t, db, "API-STOCK-01")

	payload := map[string]interface{}{
		"product_id":      product.ID,
		"movement_type":   "IN",
		"quantity_change": 6,
		"reason_code":     "purchase_reception",
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock/movements", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	code, _ := decodeEnvelope(t, w)
	if code != 0 {
		t.Fatalf("status_code want 0 got %d, body=%s", code, w.Body.String())
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/stock/products/%d/snapshot", product.ID), nil)
	r.ServeHTTP(w2, req2)
	code2, data := decodeEnvelope(t, w2)
	if code2 != 0 {
		t.Fatalf("snapshot status_code want 0 got %d", code2)
	}
	if data["real_stock"] != float64(6) {
		t.Fatalf("real_stock want 6 got %v", data["real_stock"])
	}
}

func TestApplyMovementEndpointRejectsInvalidReason(t *testing.T) {
	_, r, db := setupAPIHandlerTest(t)
	product := seedAPIProduct(t, db, "API-STOCK-02")

	payload := map[string]interface{}{
		"product_id":      product.ID,
		"movement_type":   "IN",
		"quantity_change": 3,
		"reason_code":     "mystery",
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock/movements", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	code, _ := decodeEnvelope(t, w)
	if code != 400 {
		t.Fatalf("status_code want 400 got %d, body=%s", code, w.Body.String())
	}
}

func TestResolvePriceEndpointFallsBackToBase(t *testing.T) {
	_, r, db := setupAPIHandlerTest(t)
	product := seedAPIProduct(t, db, "API-PRICE-01")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/pricing/resolve?product_id=%d&quantity=2", product.ID), nil)
	r.ServeHTTP(w, req)

	code, data := decodeEnvelope(t, w)
	if code != 0 {
		t.Fatalf("status_code want 0 got %d, body=%s", code, w.Body.String())
	}
	if data["price_source"] != "base" {
		t.Fatalf("price_source want base got %v", data["price_source"])
	}
	if data["unit_price_ht"] != "150.00" {
		t.Fatalf("unit_price_ht want 150.00 got %v", data["unit_price_ht"])
	}
}

func TestResolvePriceEndpointUnknownProduct(t *testing.T) {
	_, r, _ := setupAPIHandlerTest(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pricing/resolve?product_id=987654&quantity=1", nil)
	r.ServeHTTP(w, req)

	code, _ := decodeEnvelope(t, w)
	if code != 404 {
		t.Fatalf("status_code want 404 got %d, body=%s", code, w.Body.String())
	}
}
