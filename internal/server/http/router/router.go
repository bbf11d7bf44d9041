package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/gopherfood/internal/adapter/notify"
	"github.com/polkiloo/gopherfood/internal/domain/model"
	"github.com/polkiloo/gopherfood/internal/metrics"
	"github.com/polkiloo/gopherfood/internal/server/http/handlers"
	"github.com/polkiloo/gopherfood/internal/server/http/middleware"
)

const (
	maxRequestBytes = 1 << 20
	kitchenFeedPath = "/api/kitchen/ws"
	metricsPath     = "/metrics"
)

// Params lists router dependencies.
type Params struct {
	fx.In

	Facade  handlers.FoodFacade
	Hub     *notify.Hub             `optional:"true"`
	Metrics *metrics.Recorder       `optional:"true"`
	Limiter *middleware.RateLimiter `optional:"true"`
	Logger  *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.DecompressRequest(maxRequestBytes))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{kitchenFeedPath, metricsPath})))

	var feed http.Handler
	if p.Hub != nil {
		feed = p.Hub
	}

	orderHandler := handlers.NewOrderHandler(p.Facade)
	kitchenHandler := handlers.NewKitchenHandler(p.Facade, feed)
	paymentHandler := handlers.NewPaymentHandler(p.Facade)
	promotionHandler := handlers.NewPromotionHandler(p.Facade)
	shippingHandler := handlers.NewShippingHandler(p.Facade)

	engine.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	if p.Metrics != nil {
		engine.GET(metricsPath, gin.WrapH(p.Metrics.Handler()))
	}

	api := engine.Group("/api")
	api.POST("/payments/webhook", paymentHandler.Webhook)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(p.Facade))
	if p.Limiter != nil {
		authed.Use(middleware.RateLimit(p.Limiter))
	}

	authed.POST("/orders", orderHandler.Place)
	authed.GET("/orders/my", orderHandler.ListMine)
	authed.GET("/orders/:id", orderHandler.Get)
	authed.PUT("/orders/:id/cancel", orderHandler.Cancel)
	authed.POST("/promotions/preview", promotionHandler.Preview)
	authed.GET("/shipping/me", shippingHandler.Get)
	authed.PUT("/shipping/me", shippingHandler.Put)
	authed.POST("/payments/:orderId/link", paymentHandler.Link)

	admin := authed.Group("")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/orders", orderHandler.ListAll)
	admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
	admin.GET("/admin/promotions", promotionHandler.List)
	admin.POST("/admin/promotions", promotionHandler.Create)
	admin.GET("/admin/promotions/:id", promotionHandler.Get)
	admin.PATCH("/admin/promotions/:id", promotionHandler.Update)
	admin.DELETE("/admin/promotions/:id", promotionHandler.Delete)

	kitchen := authed.Group("/kitchen")
	kitchen.Use(middleware.RequireRole(model.RoleKitchen, model.RoleAdmin))
	kitchen.GET("/orders", kitchenHandler.Queue)
	kitchen.GET("/aggregated", kitchenHandler.Aggregated)
	kitchen.PUT("/items/:itemId/status", kitchenHandler.UpdateItem)
	kitchen.POST("/orders/:id/claim", kitchenHandler.Claim)
	kitchen.POST("/orders/:id/finish", kitchenHandler.Finish)
	kitchen.GET("/ws", kitchenHandler.Feed)

	return engine
}
