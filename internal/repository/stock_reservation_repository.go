package repository

import (
	"errors"
	"time"

	"github.com/verone-next/internal/models"

	"gorm.io/gorm"
)

// StockReservationRepository 库存预约数据访问接口
type StockReservationRepository interface {
	Create(reservation *models.StockReservation) error
	GetByID(id uint) (*models.StockReservation, error)
	List(filter ReservationListFilter, now time.Time) ([]models.StockReservation, int64, error)
	Release(id uint, at time.Time) (int64, error)
	SumActiveQuantity(productID uint, now time.Time) (int, error)
	ReleaseExpired(now time.Time) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) StockReservationRepository
}

// GormStockReservationRepository GORM 实现
type GormStockReservationRepository struct {
	db *gorm.DB
}

// NewStockReservationRepository 创建库存预约仓库
func NewStockReservationRepository(db *gorm.DB) *GormStockReservationRepository {
	return &GormStockReservationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockReservationRepository) WithTx(tx *gorm.DB) StockReservationRepository {
	if tx == nil {
		return r
	}
	return &GormStockReservationRepository{db: tx}
}

// Transaction 执行事务
func (r *GormStockReservationRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 创建预约
func (r *GormStockReservationRepository) Create(reservation *models.StockReservation) error {
	return r.db.Create(reservation).Error
}

// GetByID 根据 ID 获取预约
func (r *GormStockReservationRepository) GetByID(id uint) (*models.StockReservation, error) {
	var reservation models.StockReservation
	if err := r.db.First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

func activeReservationQuery(db *gorm.DB, now time.Time) *gorm.DB {
	return db.Where("released_at IS NULL").
		Where("expires_at IS NULL OR expires_at > ?", now)
}

// List 预约列表
func (r *GormStockReservationRepository) List(filter ReservationListFilter, now time.Time) ([]models.StockReservation, int64, error) {
	var reservations []models.StockReservation

	query := r.db.Model(&models.StockReservation{})
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.OnlyActive {
		query = activeReservationQuery(query, now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("created_at DESC, id DESC").Find(&reservations).Error; err != nil {
		return nil, 0, err
	}

	return reservations, total, nil
}

// Release 释放预约（幂等：已释放时影响行数为 0）
func (r *GormStockReservationRepository) Release(id uint, at time.Time) (int64, error) {
	result := r.db.Model(&models.StockReservation{}).
		Where("id = ? AND released_at IS NULL", id).
		Update("released_at", at)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SumActiveQuantity 统计有效预约数量之和
func (r *GormStockReservationRepository) SumActiveQuantity(productID uint, now time.Time) (int, error) {
	var sum *int
	err := activeReservationQuery(
		r.db.Model(&models.StockReservation{}).Where("product_id = ?", productID),
		now,
	).Select("SUM(reserved_quantity)").Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// ReleaseExpired 将已过期的未释放预约标记为已释放
func (r *GormStockReservationRepository) ReleaseExpired(now time.Time) (int64, error) {
	result := r.db.Model(&models.StockReservation{}).
		Where("released_at IS NULL AND expires_at IS NOT NULL AND expires_at <= ?", now).
		Update("released_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
