package provider

import (
	"time"

	"github.com/verone-next/internal/cache"
	"github.com/verone-next/internal/config"
	"github.com/verone-next/internal/logger"
	"github.com/verone-next/internal/models"
	"github.com/verone-next/internal/queue"
	"github.com/verone-next/internal/repository"
	"github.com/verone-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	ProductRepo      repository.ProductRepository
	MovementRepo     repository.StockMovementRepository
	ReservationRepo  repository.StockReservationRepository
	PriceListRepo    repository.PriceListRepository
	OrderRepo        repository.OrderRepository
	OrganisationRepo repository.OrganisationRepository
	ChannelRepo      repository.SalesChannelRepository
	SelectionRepo    repository.SelectionRepository
	CommissionRepo   repository.CommissionRepository
	BankAccountRepo  repository.BankAccountRepository

	// Services
	ProductService    *service.ProductService
	StockService      *service.StockService
	PricingService    *service.PricingService
	OrderService      *service.OrderService
	CommissionService *service.CommissionService
	BankService       *service.BankService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ProductRepo = repository.NewProductRepository(db)
	c.MovementRepo = repository.NewStockMovementRepository(db)
	c.ReservationRepo = repository.NewStockReservationRepository(db)
	c.PriceListRepo = repository.NewPriceListRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.OrganisationRepo = repository.NewOrganisationRepository(db)
	c.ChannelRepo = repository.NewSalesChannelRepository(db)
	c.SelectionRepo = repository.NewSelectionRepository(db)
	c.CommissionRepo = repository.NewCommissionRepository(db)
	c.BankAccountRepo = repository.NewBankAccountRepository(db)
}

func (c *Container) initServices() {
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.StockService = service.NewStockService(c.MovementRepo, c.ReservationRepo, c.ProductRepo, service.StockOptions{
		AppendMaxRetries: c.Config.Stock.AppendMaxRetries,
		ReservationTTL:   time.Duration(c.Config.Stock.ReservationTTLMinutes) * time.Minute,
	})
	c.PricingService = service.NewPricingService(c.PriceListRepo, c.ProductRepo, c.OrganisationRepo)
	c.CommissionService = service.NewCommissionService(c.CommissionRepo, c.SelectionRepo, c.ProductRepo, c.OrderRepo, c.ChannelRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.OrganisationRepo, c.ProductRepo, c.PricingService, c.StockService, c.CommissionService)
	c.BankService = service.NewBankService(c.BankAccountRepo)
}
