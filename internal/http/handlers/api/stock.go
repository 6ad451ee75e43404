package api

import (
	"time"

	"github.com/verone-next/internal/http/handlers/shared"
	"github.com/verone-next/internal/http/response"
	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"
	"github.com/verone-next/internal/service"

	"github.com/gin-gonic/gin"
)

type movementPayload struct {
	ProductID       uint          `json:"product_id"`
	MovementType    string        `json:"movement_type"`
	QuantityChange  int           `json:"quantity_change"`
	ReasonCode      string        `json:"reason_code"`
	AffectsForecast bool          `json:"affects_forecast"`
	ForecastType    string        `json:"forecast_type"`
	ReferenceID     string        `json:"reference_id"`
	ReferenceType   string        `json:"reference_type"`
	WarehouseID     *uint         `json:"warehouse_id"`
	ChannelID       *uint         `json:"channel_id"`
	UnitCost        *models.Money `json:"unit_cost"`
	Notes           string        `json:"notes"`
	PerformedBy     string        `json:"performed_by"`
}

// ApplyMovement 追加库存移动
func (h *Handler) ApplyMovement(c *gin.Context) {
	var payload movementPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	movement, err := h.StockService.ApplyMovement(service.ApplyMovementInput{
		ProductID:       payload.ProductID,
		MovementType:    models.MovementType(payload.MovementType),
		QuantityChange:  payload.QuantityChange,
		ReasonCode:      models.ReasonCode(payload.ReasonCode),
		AffectsForecast: payload.AffectsForecast,
		ForecastType:    models.ForecastType(payload.ForecastType),
		ReferenceID:     payload.ReferenceID,
		ReferenceType:   payload.ReferenceType,
		WarehouseID:     payload.WarehouseID,
		ChannelID:       payload.ChannelID,
		UnitCost:        payload.UnitCost,
		Notes:           payload.Notes,
		PerformedBy:     payload.PerformedBy,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, movement)
}

// ListMovements 移动记录列表
func (h *Handler) ListMovements(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	filter := repository.MovementListFilter{
		Page:         page,
		PageSize:     pageSize,
		MovementType: c.Query("movement_type"),
		ReasonCode:   c.Query("reason_code"),
		ReferenceID:  c.Query("reference_id"),
	}
	if productID := queryUintPtr(c, "product_id"); productID != nil {
		filter.ProductID = *productID
	}
	if raw := c.Query("affects_forecast"); raw != "" {
		affects := raw == "true"
		filter.AffectsForecast = &affects
	}
	movements, total, err := h.StockService.ListMovements(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, movements, buildPagination(page, pageSize, total))
}

// StockSnapshot 单品库存汇总视图
func (h *Handler) StockSnapshot(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	snapshot, err := h.StockService.Snapshot(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, snapshot)
}

// AvailableToPromise 可承诺库存
func (h *Handler) AvailableToPromise(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	atp, err := h.StockService.AvailableToPromise(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"product_id": id, "available_to_promise": atp})
}

// ReconcileProduct 单品一致性报告
func (h *Handler) ReconcileProduct(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	report, err := h.StockService.Reconcile(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}

// ReconcileAll 全量一致性报告
func (h *Handler) ReconcileAll(c *gin.Context) {
	reports, err := h.StockService.ReconcileAll()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, reports)
}

// RecalculateStock 从账本重算投影计数
func (h *Handler) RecalculateStock(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	snapshot, err := h.StockService.RecalculateStock(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, snapshot)
}

type reservePayload struct {
	ProductID     uint       `json:"product_id"`
	Quantity      int        `json:"quantity"`
	ReferenceID   string     `json:"reference_id"`
	ReferenceType string     `json:"reference_type"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// CreateReservation 预约库存
func (h *Handler) CreateReservation(c *gin.Context) {
	var payload reservePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.BadRequest(c, "invalid payload")
		return
	}
	reservation, err := h.StockService.Reserve(service.ReserveInput{
		ProductID:     payload.ProductID,
		Quantity:      payload.Quantity,
		ReferenceID:   payload.ReferenceID,
		ReferenceType: payload.ReferenceType,
		ExpiresAt:     payload.ExpiresAt,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, reservation)
}

// ReleaseReservation 释放预约
func (h *Handler) ReleaseReservation(c *gin.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := h.StockService.Release(id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}

// ListReservations 预约列表
func (h *Handler) ListReservations(c *gin.Context) {
	page, pageSize := shared.NormalizePagination(queryInt(c, "page", 1), queryInt(c, "page_size", 20))
	filter := repository.ReservationListFilter{
		Page:       page,
		PageSize:   pageSize,
		OnlyActive: c.Query("only_active") == "true",
	}
	if productID := queryUintPtr(c, "product_id"); productID != nil {
		filter.ProductID = *productID
	}
	reservations, total, err := h.StockService.ListReservations(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, reservations, buildPagination(page, pageSize, total))
}
