package repository

import (
	"errors"
	"strings"

	"github.com/verone-next/internal/models"

	"gorm.io/gorm"
)

// PriceListRepository 价目表数据访问接口
type PriceListRepository interface {
	List(filter PriceListListFilter) ([]models.PriceList, int64, error)
	GetByID(id uint) (*models.PriceList, error)
	GetByCode(code string) (*models.PriceList, error)
	Create(list *models.PriceList) error
	Update(list *models.PriceList) error
	Delete(id uint) error
	CountByCode(code string, excludeID *uint) (int64, error)

	CreateItem(item *models.PriceListItem) error
	UpdateItem(item *models.PriceListItem) error
	DeleteItem(id uint) error
	GetItem(id uint) (*models.PriceListItem, error)
	ListItems(listID uint) ([]models.PriceListItem, error)
	ListItemsForProduct(listIDs []uint, productID uint) ([]models.PriceListItem, error)

	CreateAssignment(assignment *models.PriceListAssignment) error
	DeleteAssignment(id uint) error
	ListAssignmentsByList(listID uint) ([]models.PriceListAssignment, error)
	ListAssignmentsForTargets(customerID, customerGroupID, channelID *uint) ([]models.PriceListAssignment, error)
	ListDefaultLists() ([]models.PriceList, error)

	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) PriceListRepository
}

// GormPriceListRepository GORM 实现
type GormPriceListRepository struct {
	db *gorm.DB
}

// NewPriceListRepository 创建价目表仓库
func NewPriceListRepository(db *gorm.DB) *GormPriceListRepository {
	return &GormPriceListRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPriceListRepository) WithTx(tx *gorm.DB) PriceListRepository {
	if tx == nil {
		return r
	}
	return &GormPriceListRepository{db: tx}
}

// Transaction 执行事务
func (r *GormPriceListRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 价目表列表
func (r *GormPriceListRepository) List(filter PriceListListFilter) ([]models.PriceList, int64, error) {
	var lists []models.PriceList

	query := r.db.Model(&models.PriceList{})
	if listType := strings.TrimSpace(filter.ListType); listType != "" {
		query = query.Where("list_type = ?", listType)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Order("priority ASC, created_at DESC").Find(&lists).Error; err != nil {
		return nil, 0, err
	}

	return lists, total, nil
}

// GetByID 根据 ID 获取价目表
func (r *GormPriceListRepository) GetByID(id uint) (*models.PriceList, error) {
	var list models.PriceList
	if err := r.db.First(&list, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &list, nil
}

// GetByCode 根据编码获取价目表
func (r *GormPriceListRepository) GetByCode(code string) (*models.PriceList, error) {
	var list models.PriceList
	if err := r.db.Where("code = ?", code).First(&list).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &list, nil
}

// Create 创建价目表
func (r *GormPriceListRepository) Create(list *models.PriceList) error {
	return r.db.Create(list).Error
}

// Update 更新价目表
func (r *GormPriceListRepository) Update(list *models.PriceList) error {
	return r.db.Save(list).Error
}

// Delete 删除价目表（软删除，同时删除其明细与绑定）
func (r *GormPriceListRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("price_list_id = ?", id).Delete(&models.PriceListItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("price_list_id = ?", id).Delete(&models.PriceListAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PriceList{}, id).Error
	})
}

// CountByCode 统计编码数量
func (r *GormPriceListRepository) CountByCode(code string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.PriceList{}).Where("code = ?", code)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateItem 创建价目表明细
func (r *GormPriceListRepository) CreateItem(item *models.PriceListItem) error {
	return r.db.Create(item).Error
}

// UpdateItem 更新价目表明细
func (r *GormPriceListRepository) UpdateItem(item *models.PriceListItem) error {
	return r.db.Save(item).Error
}

// DeleteItem 删除价目表明细
func (r *GormPriceListRepository) DeleteItem(id uint) error {
	return r.db.Delete(&models.PriceListItem{}, id).Error
}

// GetItem 根据 ID 获取明细
func (r *GormPriceListRepository) GetItem(id uint) (*models.PriceListItem, error) {
	var item models.PriceListItem
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// ListItems 列出价目表全部明细
func (r *GormPriceListRepository) ListItems(listID uint) ([]models.PriceListItem, error) {
	var items []models.PriceListItem
	if err := r.db.Where("price_list_id = ?", listID).
		Order("product_id ASC, min_quantity ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListItemsForProduct 在一组价目表内列出某商品的明细
func (r *GormPriceListRepository) ListItemsForProduct(listIDs []uint, productID uint) ([]models.PriceListItem, error) {
	if len(listIDs) == 0 {
		return []models.PriceListItem{}, nil
	}
	var items []models.PriceListItem
	if err := r.db.Where("price_list_id IN ? AND product_id = ?", listIDs, productID).
		Order("min_quantity ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateAssignment 创建价目表绑定
func (r *GormPriceListRepository) CreateAssignment(assignment *models.PriceListAssignment) error {
	return r.db.Create(assignment).Error
}

// DeleteAssignment 删除价目表绑定
func (r *GormPriceListRepository) DeleteAssignment(id uint) error {
	return r.db.Delete(&models.PriceListAssignment{}, id).Error
}

// ListAssignmentsByList 列出价目表的全部绑定
func (r *GormPriceListRepository) ListAssignmentsByList(listID uint) ([]models.PriceListAssignment, error) {
	var assignments []models.PriceListAssignment
	if err := r.db.Where("price_list_id = ?", listID).
		Order("id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListAssignmentsForTargets 列出命中任一目标（客户/客户组/渠道）的绑定，附带价目表
func (r *GormPriceListRepository) ListAssignmentsForTargets(customerID, customerGroupID, channelID *uint) ([]models.PriceListAssignment, error) {
	conditions := r.db.Where("1 = 0")
	if customerID != nil {
		conditions = conditions.Or("customer_id = ?", *customerID)
	}
	if customerGroupID != nil {
		conditions = conditions.Or("customer_group_id = ?", *customerGroupID)
	}
	if channelID != nil {
		conditions = conditions.Or("channel_id = ?", *channelID)
	}

	var assignments []models.PriceListAssignment
	if err := r.db.Preload("PriceList").
		Where(conditions).
		Order("id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListDefaultLists 列出默认价目表
func (r *GormPriceListRepository) ListDefaultLists() ([]models.PriceList, error) {
	var lists []models.PriceList
	if err := r.db.Where("is_default = ?", true).
		Order("priority ASC, created_at DESC").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}
