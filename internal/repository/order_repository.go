package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/verone-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 销售订单数据访问接口
type OrderRepository interface {
	List(filter OrderListFilter) ([]models.SalesOrder, int64, error)
	GetByID(id uint) (*models.SalesOrder, error)
	GetByOrderNo(orderNo string) (*models.SalesOrder, error)
	Create(order *models.SalesOrder) error
	Update(order *models.SalesOrder) error
	UpdateStatus(id uint, from, to models.SalesOrderStatus) (int64, error)
	CreateItem(item *models.SalesOrderItem) error
	UpdateItem(item *models.SalesOrderItem) error
	GetItem(id uint) (*models.SalesOrderItem, error)
	ListItems(orderID uint) ([]models.SalesOrderItem, error)
	ListItemsCreatedSince(since time.Time) ([]models.SalesOrderItem, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Transaction 执行事务
func (r *GormOrderRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.SalesOrder, int64, error) {
	var orders []models.SalesOrder

	query := r.db.Model(&models.SalesOrder{})
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.ChannelID != 0 {
		query = query.Where("channel_id = ?", filter.ChannelID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Where("order_no = ?", orderNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at < ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("created_at DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetByID 根据 ID 获取订单（含明细）
func (r *GormOrderRepository) GetByID(id uint) (*models.SalesOrder, error) {
	var order models.SalesOrder
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单号获取订单（含明细）
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.SalesOrder, error) {
	var order models.SalesOrder
	if err := r.db.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Create 创建订单
func (r *GormOrderRepository) Create(order *models.SalesOrder) error {
	return r.db.Create(order).Error
}

// Update 更新订单
func (r *GormOrderRepository) Update(order *models.SalesOrder) error {
	return r.db.Save(order).Error
}

// UpdateStatus 条件更新订单状态（from 不匹配时影响行数为 0）
func (r *GormOrderRepository) UpdateStatus(id uint, from, to models.SalesOrderStatus) (int64, error) {
	result := r.db.Model(&models.SalesOrder{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CreateItem 创建订单明细
func (r *GormOrderRepository) CreateItem(item *models.SalesOrderItem) error {
	return r.db.Create(item).Error
}

// UpdateItem 更新订单明细
func (r *GormOrderRepository) UpdateItem(item *models.SalesOrderItem) error {
	return r.db.Save(item).Error
}

// GetItem 根据 ID 获取订单明细
func (r *GormOrderRepository) GetItem(id uint) (*models.SalesOrderItem, error) {
	var item models.SalesOrderItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListItems 列出订单全部明细
func (r *GormOrderRepository) ListItems(orderID uint) ([]models.SalesOrderItem, error) {
	var items []models.SalesOrderItem
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListItemsCreatedSince 列出指定时间之后创建的订单明细
func (r *GormOrderRepository) ListItemsCreatedSince(since time.Time) ([]models.SalesOrderItem, error) {
	var items []models.SalesOrderItem
	if err := r.db.Where("created_at >= ?", since).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
