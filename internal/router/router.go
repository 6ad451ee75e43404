package router

import (
	"fmt"
	"strings"

	"github.com/verone-next/internal/cache"
	"github.com/verone-next/internal/config"
	"github.com/verone-next/internal/http/handlers/api"
	"github.com/verone-next/internal/logger"
	"github.com/verone-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := api.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "vr"
	}
	writeRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:write", redisPrefix),
		WindowSeconds: cfg.RateLimit.WindowSeconds,
		MaxRequests:   cfg.RateLimit.MaxRequests,
	}
	writeLimit := RateLimitMiddleware(cache.Client(), writeRule, KeyByIP)

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 商品
		apiV1.GET("/products", handler.ListProducts)
		apiV1.GET("/products/:id", handler.GetProduct)
		apiV1.POST("/products", writeLimit, handler.CreateProduct)
		apiV1.PUT("/products/:id", writeLimit, handler.UpdateProduct)
		apiV1.POST("/products/:id/archive", writeLimit, handler.ArchiveProduct)
		apiV1.POST("/products/:id/unarchive", writeLimit, handler.UnarchiveProduct)
		apiV1.POST("/products/:id/refresh-status", writeLimit, handler.RefreshProductStatus)

		// 库存账本与投影
		apiV1.POST("/stock/movements", writeLimit, handler.ApplyMovement)
		apiV1.GET("/stock/movements", handler.ListMovements)
		apiV1.GET("/stock/products/:id/snapshot", handler.StockSnapshot)
		apiV1.GET("/stock/products/:id/atp", handler.AvailableToPromise)
		apiV1.GET("/stock/products/:id/reconcile", handler.ReconcileProduct)
		apiV1.GET("/stock/reconcile", handler.ReconcileAll)
		apiV1.POST("/stock/products/:id/recalculate", writeLimit, handler.RecalculateStock)
		apiV1.POST("/stock/reservations", writeLimit, handler.CreateReservation)
		apiV1.DELETE("/stock/reservations/:id", writeLimit, handler.ReleaseReservation)
		apiV1.GET("/stock/reservations", handler.ListReservations)

		// 价格解析与价目表
		apiV1.GET("/pricing/resolve", handler.ResolvePrice)
		apiV1.GET("/pricing/quantity-breaks", handler.QuantityBreaks)
		apiV1.GET("/price-lists", handler.ListPriceLists)
		apiV1.GET("/price-lists/:id", handler.GetPriceList)
		apiV1.POST("/price-lists", writeLimit, handler.CreatePriceList)
		apiV1.PUT("/price-lists/:id", writeLimit, handler.UpdatePriceList)
		apiV1.DELETE("/price-lists/:id", writeLimit, handler.DeletePriceList)
		apiV1.POST("/price-lists/:id/items", writeLimit, handler.AddPriceListItem)
		apiV1.PUT("/price-list-items/:item_id", writeLimit, handler.UpdatePriceListItem)
		apiV1.DELETE("/price-list-items/:item_id", writeLimit, handler.DeletePriceListItem)
		apiV1.POST("/price-lists/:id/assignments", writeLimit, handler.AssignPriceList)
		apiV1.DELETE("/price-list-assignments/:assignment_id", writeLimit, handler.UnassignPriceList)

		// 销售订单
		apiV1.POST("/orders", writeLimit, handler.CreateOrder)
		apiV1.GET("/orders", handler.ListOrders)
		apiV1.GET("/orders/:id", handler.GetOrder)
		apiV1.POST("/orders/:id/lines", writeLimit, handler.AddOrderLine)
		apiV1.PUT("/order-lines/:item_id/quantity", writeLimit, handler.UpdateOrderLineQuantity)
		apiV1.POST("/orders/:id/confirm", writeLimit, handler.ConfirmOrder)
		apiV1.POST("/orders/:id/ship", writeLimit, handler.ShipOrder)
		apiV1.POST("/orders/:id/deliver", writeLimit, handler.DeliverOrder)
		apiV1.POST("/orders/:id/cancel", writeLimit, handler.CancelOrder)
		apiV1.GET("/orders/:id/commissions", handler.ListOrderCommissions)

		// 佣金与利润率
		apiV1.GET("/commissions/order-lines/:item_id", handler.ComputeLineCommission)
		apiV1.GET("/channels/:id/margin-violations", handler.ChannelMarginViolations)
		apiV1.GET("/commissions/zero-audit", handler.AuditZeroCommissions)

		// 银行余额
		apiV1.GET("/bank/balances", handler.BankBalances)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
