package service

import (
	"sort"
	"strings"
	"time"

	"github.com/verone-next/internal/constants"
	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/repository"

	"github.com/shopspring/decimal"
)

// 绑定来源的特异性等级，数字越小越优先
const (
	sourceRankCustomer = iota
	sourceRankCustomerGroup
	sourceRankChannel
	sourceRankDefault
)

// PricingService 价格解析业务服务
type PricingService struct {
	priceListRepo repository.PriceListRepository
	productRepo   repository.ProductRepository
	orgRepo       repository.OrganisationRepository
}

// NewPricingService 创建价格解析服务
func NewPricingService(
	priceListRepo repository.PriceListRepository,
	productRepo repository.ProductRepository,
	orgRepo repository.OrganisationRepository,
) *PricingService {
	return &PricingService{
		priceListRepo: priceListRepo,
		productRepo:   productRepo,
		orgRepo:       orgRepo,
	}
}

// ResolvePriceInput 价格解析输入
type ResolvePriceInput struct {
	ProductID       uint
	Quantity        int
	CustomerID      *uint
	CustomerGroupID *uint
	ChannelID       *uint
	At              time.Time
}

// PriceQuote 价格解析结果
type PriceQuote struct {
	ProductID     uint             `json:"product_id"`
	Quantity      int              `json:"quantity"`
	UnitPriceHT   models.Money     `json:"unit_price_ht"`
	UnitPriceTTC  models.Money     `json:"unit_price_ttc"`
	DiscountRate  *decimal.Decimal `json:"discount_rate,omitempty"`
	MarginRate    *decimal.Decimal `json:"margin_rate,omitempty"`
	PriceSource   string           `json:"price_source"`
	PriceListID   *uint            `json:"price_list_id,omitempty"`
	PriceListCode string           `json:"price_list_code,omitempty"`
	Currency      string           `json:"currency"`
	MinQuantity   int              `json:"min_quantity"`
}

// QuantityBreak 数量梯度报价
type QuantityBreak struct {
	MinQuantity int              `json:"min_quantity"`
	MaxQuantity *int             `json:"max_quantity,omitempty"`
	UnitPriceHT models.Money     `json:"unit_price_ht"`
	SavingsRate *decimal.Decimal `json:"savings_rate,omitempty"` // 相对首梯度的节省百分比
}

type candidateList struct {
	list models.PriceList
	rank int
}

// PriceTTC 由 HT 价与税率（百分比）计算 TTC 价
func PriceTTC(ht models.Money, taxRate decimal.Decimal) models.Money {
	factor := decimal.NewFromInt(1).Add(taxRate.Div(decimal.NewFromInt(100)))
	return models.NewMoneyFromDecimal(ht.Decimal.Mul(factor))
}

func sourceName(rank int) string {
	switch rank {
	case sourceRankCustomer:
		return constants.PriceSourceCustomer
	case sourceRankCustomerGroup:
		return constants.PriceSourceCustomerGroup
	case sourceRankChannel:
		return constants.PriceSourceChannel
	default:
		return constants.PriceSourceDefaultList
	}
}

// resolveCustomerGroup 客户组未显式给出时从客户组织推导
func (s *PricingService) resolveCustomerGroup(input ResolvePriceInput) (*uint, error) {
	if input.CustomerGroupID != nil || input.CustomerID == nil {
		return input.CustomerGroupID, nil
	}
	org, err := s.orgRepo.GetByID(*input.CustomerID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, nil
	}
	return org.CustomerGroupID, nil
}

// candidateLists 收集指定上下文下生效的价目表，按特异性去重
func (s *PricingService) candidateLists(input ResolvePriceInput, at time.Time) ([]candidateList, error) {
	groupID, err := s.resolveCustomerGroup(input)
	if err != nil {
		return nil, err
	}

	byListID := make(map[uint]candidateList)
	add := func(list models.PriceList, rank int) {
		if !list.ValidAt(at) {
			return
		}
		existing, ok := byListID[list.ID]
		if !ok || rank < existing.rank {
			byListID[list.ID] = candidateList{list: list, rank: rank}
		}
	}

	if input.CustomerID != nil || groupID != nil || input.ChannelID != nil {
		assignments, err := s.priceListRepo.ListAssignmentsForTargets(input.CustomerID, groupID, input.ChannelID)
		if err != nil {
			return nil, err
		}
		for _, assignment := range assignments {
			if !assignment.ValidAt(at) {
				continue
			}
			switch {
			case assignment.CustomerID != nil:
				add(assignment.PriceList, sourceRankCustomer)
			case assignment.CustomerGroupID != nil:
				add(assignment.PriceList, sourceRankCustomerGroup)
			case assignment.ChannelID != nil:
				add(assignment.PriceList, sourceRankChannel)
			}
		}
	}

	defaults, err := s.priceListRepo.ListDefaultLists()
	if err != nil {
		return nil, err
	}
	for _, list := range defaults {
		add(list, sourceRankDefault)
	}

	candidates := make([]candidateList, 0, len(byListID))
	for _, candidate := range byListID {
		candidates = append(candidates, candidate)
	}
	// 特异性优先，再按 priority 小者优先，平手时取更新的价目表
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.list.Priority != b.list.Priority {
			return a.list.Priority < b.list.Priority
		}
		if !a.list.CreatedAt.Equal(b.list.CreatedAt) {
			return a.list.CreatedAt.After(b.list.CreatedAt)
		}
		return a.list.ID > b.list.ID
	})
	return candidates, nil
}

// ResolvePrice 解析商品在给定上下文下的单价；纯读操作，同输入必得同结果
func (s *PricingService) ResolvePrice(input ResolvePriceInput) (*PriceQuote, error) {
	if input.ProductID == 0 || input.Quantity <= 0 {
		return nil, ErrInvalidInput
	}
	at := input.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Archived() {
		return nil, ErrProductArchived
	}

	candidates, err := s.candidateLists(input, at)
	if err != nil {
		return nil, err
	}

	listIDs := make([]uint, 0, len(candidates))
	for _, candidate := range candidates {
		listIDs = append(listIDs, candidate.list.ID)
	}
	items, err := s.priceListRepo.ListItemsForProduct(listIDs, input.ProductID)
	if err != nil {
		return nil, err
	}

	itemsByList := make(map[uint][]models.PriceListItem)
	for _, item := range items {
		if !item.ValidAt(at) || !item.CoversQuantity(input.Quantity) {
			continue
		}
		itemsByList[item.PriceListID] = append(itemsByList[item.PriceListID], item)
	}

	for _, candidate := range candidates {
		applicable := itemsByList[candidate.list.ID]
		if len(applicable) == 0 {
			continue
		}
		if len(applicable) > 1 {
			// 同一价目表内多个梯度覆盖同一数量：显式报错而不是静默挑选
			return nil, ErrAmbiguousTier
		}
		return s.quoteFromItem(product, candidate, applicable[0], input.Quantity), nil
	}

	// 任何价目表都未命中时回退到商品基础价
	if product.PriceHT.IsZero() {
		return nil, ErrNoPriceFound
	}
	return &PriceQuote{
		ProductID:    product.ID,
		Quantity:     input.Quantity,
		UnitPriceHT:  product.PriceHT,
		UnitPriceTTC: PriceTTC(product.PriceHT, product.TaxRate),
		PriceSource:  constants.PriceSourceBase,
		Currency:     constants.CurrencyDefault,
		MinQuantity:  1,
	}, nil
}

func (s *PricingService) quoteFromItem(product *models.Product, candidate candidateList, item models.PriceListItem, quantity int) *PriceQuote {
	unit := item.UnitPriceHT
	if unit.IsZero() && item.DiscountRate != nil {
		// 仅配置折扣率的明细按商品基础价折算
		discounted := product.PriceHT.Decimal.Mul(
			decimal.NewFromInt(1).Sub(item.DiscountRate.Div(decimal.NewFromInt(100))),
		)
		unit = models.NewMoneyFromDecimal(discounted)
	}
	listID := item.PriceListID
	return &PriceQuote{
		ProductID:     product.ID,
		Quantity:      quantity,
		UnitPriceHT:   unit,
		UnitPriceTTC:  PriceTTC(unit, product.TaxRate),
		DiscountRate:  item.DiscountRate,
		MarginRate:    item.MarginRate,
		PriceSource:   sourceName(candidate.rank),
		PriceListID:   &listID,
		PriceListCode: candidate.list.Code,
		Currency:      candidate.list.Currency,
		MinQuantity:   item.MinQuantity,
	}
}

// QuantityBreaks 返回命中价目表的全部数量梯度及相对首梯度的节省率
func (s *PricingService) QuantityBreaks(input ResolvePriceInput) ([]QuantityBreak, error) {
	if input.ProductID == 0 {
		return nil, ErrInvalidInput
	}
	at := input.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	candidates, err := s.candidateLists(input, at)
	if err != nil {
		return nil, err
	}
	listIDs := make([]uint, 0, len(candidates))
	for _, candidate := range candidates {
		listIDs = append(listIDs, candidate.list.ID)
	}
	items, err := s.priceListRepo.ListItemsForProduct(listIDs, input.ProductID)
	if err != nil {
		return nil, err
	}
	itemsByList := make(map[uint][]models.PriceListItem)
	for _, item := range items {
		if !item.ValidAt(at) {
			continue
		}
		itemsByList[item.PriceListID] = append(itemsByList[item.PriceListID], item)
	}

	for _, candidate := range candidates {
		tiers := itemsByList[candidate.list.ID]
		if len(tiers) == 0 {
			continue
		}
		sort.Slice(tiers, func(i, j int) bool {
			return tiers[i].MinQuantity < tiers[j].MinQuantity
		})
		breaks := make([]QuantityBreak, 0, len(tiers))
		baseline := tiers[0].UnitPriceHT.Decimal
		for _, tier := range tiers {
			entry := QuantityBreak{
				MinQuantity: tier.MinQuantity,
				MaxQuantity: tier.MaxQuantity,
				UnitPriceHT: tier.UnitPriceHT,
			}
			if baseline.IsPositive() && tier.UnitPriceHT.Decimal.LessThan(baseline) {
				savings := baseline.Sub(tier.UnitPriceHT.Decimal).
					Div(baseline).
					Mul(decimal.NewFromInt(100)).
					Round(2)
				entry.SavingsRate = &savings
			}
			breaks = append(breaks, entry)
		}
		return breaks, nil
	}
	return []QuantityBreak{}, nil
}

// CreatePriceListInput 创建/更新价目表输入
type CreatePriceListInput struct {
	Code       string
	Name       string
	ListType   models.PriceListType
	Priority   *int
	Currency   string
	ValidFrom  *time.Time
	ValidUntil *time.Time
	IsDefault  bool
	IsActive   *bool
}

// ListPriceLists 价目表列表
func (s *PricingService) ListPriceLists(filter repository.PriceListListFilter) ([]models.PriceList, int64, error) {
	return s.priceListRepo.List(filter)
}

// GetPriceList 获取价目表（含明细与绑定）
func (s *PricingService) GetPriceList(id uint) (*models.PriceList, []models.PriceListAssignment, error) {
	list, err := s.priceListRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if list == nil {
		return nil, nil, ErrPriceListNotFound
	}
	items, err := s.priceListRepo.ListItems(id)
	if err != nil {
		return nil, nil, err
	}
	list.Items = items
	assignments, err := s.priceListRepo.ListAssignmentsByList(id)
	if err != nil {
		return nil, nil, err
	}
	return list, assignments, nil
}

// CreatePriceList 创建价目表
func (s *PricingService) CreatePriceList(input CreatePriceListInput) (*models.PriceList, error) {
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" || !input.ListType.Valid() {
		return nil, ErrInvalidInput
	}
	count, err := s.priceListRepo.CountByCode(code, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrPriceListCodeExists
	}

	list := models.PriceList{
		Code:       code,
		Name:       name,
		ListType:   input.ListType,
		Priority:   100,
		Currency:   constants.CurrencyDefault,
		ValidFrom:  input.ValidFrom,
		ValidUntil: input.ValidUntil,
		IsDefault:  input.IsDefault,
		IsActive:   true,
	}
	if input.Priority != nil {
		list.Priority = *input.Priority
	}
	if currency := strings.TrimSpace(input.Currency); currency != "" {
		list.Currency = currency
	}
	if input.IsActive != nil {
		list.IsActive = *input.IsActive
	}
	if err := s.priceListRepo.Create(&list); err != nil {
		return nil, err
	}
	return &list, nil
}

// UpdatePriceList 更新价目表
func (s *PricingService) UpdatePriceList(id uint, input CreatePriceListInput) (*models.PriceList, error) {
	list, err := s.priceListRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrPriceListNotFound
	}

	if code := strings.TrimSpace(input.Code); code != "" && code != list.Code {
		count, err := s.priceListRepo.CountByCode(code, &id)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrPriceListCodeExists
		}
		list.Code = code
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		list.Name = name
	}
	if input.ListType != "" {
		if !input.ListType.Valid() {
			return nil, ErrInvalidInput
		}
		list.ListType = input.ListType
	}
	if input.Priority != nil {
		list.Priority = *input.Priority
	}
	if currency := strings.TrimSpace(input.Currency); currency != "" {
		list.Currency = currency
	}
	list.ValidFrom = input.ValidFrom
	list.ValidUntil = input.ValidUntil
	list.IsDefault = input.IsDefault
	if input.IsActive != nil {
		list.IsActive = *input.IsActive
	}
	if err := s.priceListRepo.Update(list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeletePriceList 删除价目表及其明细与绑定
func (s *PricingService) DeletePriceList(id uint) error {
	list, err := s.priceListRepo.GetByID(id)
	if err != nil {
		return err
	}
	if list == nil {
		return ErrPriceListNotFound
	}
	return s.priceListRepo.Delete(id)
}

// PriceListItemInput 创建/更新价目表明细输入
type PriceListItemInput struct {
	ProductID    uint
	UnitPriceHT  models.Money
	CostPrice    *models.Money
	DiscountRate *decimal.Decimal
	MarginRate   *decimal.Decimal
	MinQuantity  int
	MaxQuantity  *int
	ValidFrom    *time.Time
	ValidUntil   *time.Time
	IsActive     *bool
}

// validateTier 校验梯度定义及与同表同商品现有梯度的重叠
func (s *PricingService) validateTier(listID uint, item *models.PriceListItem, excludeID uint) error {
	if item.MinQuantity < 1 {
		return ErrInvalidInput
	}
	if item.MaxQuantity != nil && *item.MaxQuantity < item.MinQuantity {
		return ErrInvalidInput
	}
	existing, err := s.priceListRepo.ListItemsForProduct([]uint{listID}, item.ProductID)
	if err != nil {
		return err
	}
	for i := range existing {
		other := &existing[i]
		if other.ID == excludeID || !other.IsActive {
			continue
		}
		if item.Overlaps(other) {
			return ErrTierOverlap
		}
	}
	return nil
}

// AddItem 向价目表添加明细（写入时即校验梯度不重叠）
func (s *PricingService) AddItem(listID uint, input PriceListItemInput) (*models.PriceListItem, error) {
	list, err := s.priceListRepo.GetByID(listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrPriceListNotFound
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	item := models.PriceListItem{
		PriceListID:  listID,
		ProductID:    input.ProductID,
		UnitPriceHT:  input.UnitPriceHT,
		CostPrice:    input.CostPrice,
		DiscountRate: input.DiscountRate,
		MarginRate:   input.MarginRate,
		MinQuantity:  input.MinQuantity,
		MaxQuantity:  input.MaxQuantity,
		ValidFrom:    input.ValidFrom,
		ValidUntil:   input.ValidUntil,
		IsActive:     true,
	}
	if item.MinQuantity == 0 {
		item.MinQuantity = 1
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if err := s.validateTier(listID, &item, 0); err != nil {
		return nil, err
	}
	if err := s.priceListRepo.CreateItem(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem 更新价目表明细
func (s *PricingService) UpdateItem(itemID uint, input PriceListItemInput) (*models.PriceListItem, error) {
	item, err := s.priceListRepo.GetItem(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	item.UnitPriceHT = input.UnitPriceHT
	item.CostPrice = input.CostPrice
	item.DiscountRate = input.DiscountRate
	item.MarginRate = input.MarginRate
	if input.MinQuantity > 0 {
		item.MinQuantity = input.MinQuantity
	}
	item.MaxQuantity = input.MaxQuantity
	item.ValidFrom = input.ValidFrom
	item.ValidUntil = input.ValidUntil
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}
	if err := s.validateTier(item.PriceListID, item, item.ID); err != nil {
		return nil, err
	}
	if err := s.priceListRepo.UpdateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem 删除价目表明细
func (s *PricingService) DeleteItem(itemID uint) error {
	item, err := s.priceListRepo.GetItem(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}
	return s.priceListRepo.DeleteItem(itemID)
}

// AssignInput 价目表绑定输入
type AssignInput struct {
	CustomerID      *uint
	CustomerGroupID *uint
	ChannelID       *uint
	ValidFrom       *time.Time
	ValidUntil      *time.Time
}

// Assign 将价目表绑定到客户、客户组或渠道（三者有且仅有其一）
func (s *PricingService) Assign(listID uint, input AssignInput) (*models.PriceListAssignment, error) {
	list, err := s.priceListRepo.GetByID(listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrPriceListNotFound
	}

	assignment := models.PriceListAssignment{
		PriceListID:     listID,
		CustomerID:      input.CustomerID,
		CustomerGroupID: input.CustomerGroupID,
		ChannelID:       input.ChannelID,
		ValidFrom:       input.ValidFrom,
		ValidUntil:      input.ValidUntil,
		IsActive:        true,
	}
	if assignment.TargetCount() != 1 {
		return nil, ErrInvalidAssignment
	}
	if err := s.priceListRepo.CreateAssignment(&assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Unassign 删除价目表绑定
func (s *PricingService) Unassign(assignmentID uint) error {
	return s.priceListRepo.DeleteAssignment(assignmentID)
}
