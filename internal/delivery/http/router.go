package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LavaJover/festival-order-service/internal/delivery/http/handlers"
	"github.com/LavaJover/festival-order-service/internal/delivery/http/middleware"
	"github.com/LavaJover/festival-order-service/internal/infrastructure/metrics"
	"github.com/LavaJover/festival-order-service/internal/logging"
)

type RouterDeps struct {
	Orders        *handlers.OrderHandler
	Payments      *handlers.PaymentHandler
	Games         *handlers.GameHandler
	AdminPassword string
	Metrics       *metrics.OrderMetrics
	Gatherer      prometheus.Gatherer
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(deps.Metrics))
	r.Use(middleware.Logging(logging.New("http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	admin := middleware.AdminAuth(deps.AdminPassword)

	api := r.Group("/api")
	{
		api.POST("/orders", deps.Orders.CreateOrder)
		api.GET("/orders", admin, deps.Orders.ListOrders)
		api.DELETE("/orders", admin, deps.Orders.DeleteAllOrders)
		api.PATCH("/orders/:code", admin, deps.Orders.UpdateOrder)
		api.DELETE("/orders/:code", admin, deps.Orders.DeleteOrder)
		api.POST("/orders/cleanup", admin, deps.Orders.CleanupExpiredOrders)
		api.POST("/orders/auto-check", deps.Payments.AutoCheck)
		api.GET("/check-payment", deps.Payments.CheckPayment)

		api.GET("/minigame", deps.Games.GetGameState)
		api.POST("/minigame/wheel", deps.Games.PlayWheel)
		api.POST("/minigame/flip", deps.Games.PlayCardFlip)
	}

	adm := api.Group("/admin", admin)
	{
		adm.GET("/minigame-stats", deps.Games.ListGameStats)
		adm.POST("/add-tickets", deps.Games.AddTickets)
		adm.DELETE("/minigame/:phone", deps.Games.DeleteGameState)
		adm.GET("/transactions", deps.Payments.RecentTransactions)
	}

	return r
}
