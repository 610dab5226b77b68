// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/api/handlers"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/api/middleware"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/metrics"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Data        *service.DataService
	Anomaly     *service.AnomalyService
	Inventory   *service.InventoryService
	Procurement *service.ProcurementService
	Forecast    *service.ForecastService
	Dashboard   *service.DashboardService
	Metrics     *metrics.Registry
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	if services != nil && services.Metrics != nil {
		router.Use(middleware.Metrics(services.Metrics))
	}
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}

	if services.Metrics != nil {
		router.GET("/metrics", gin.WrapH(services.Metrics.Handler()))
	}

	apiGroup := router.Group("/api/v1")

	if services.Data != nil {
		dataHandler := handlers.NewDataHandler(services.Data)
		apiGroup.GET("/products", dataHandler.GetProducts)
		apiGroup.GET("/demand", dataHandler.GetDemand)
		apiGroup.GET("/suppliers", dataHandler.GetSuppliers)
		apiGroup.GET("/inventory", dataHandler.GetInventory)

		dataGroup := apiGroup.Group("/data")
		{
			dataGroup.POST("/synthetic", dataHandler.LoadSynthetic)
			dataGroup.POST("/sync/products", dataHandler.SyncProducts)
			dataGroup.POST("/sync/demand", dataHandler.SyncDemand)
			dataGroup.POST("/sales", dataHandler.InsertSales)
			dataGroup.POST("/upload", dataHandler.Upload)
			dataGroup.POST("/import", dataHandler.Import)
		}
	}

	if services.Anomaly != nil {
		anomalyHandler := handlers.NewAnomalyHandler(services.Anomaly)
		anomalyGroup := apiGroup.Group("/anomalies")
		{
			anomalyGroup.GET("", anomalyHandler.List)
			anomalyGroup.GET("/status", anomalyHandler.Status)
			anomalyGroup.GET("/raw", anomalyHandler.RawRows)
			anomalyGroup.POST("/detect", anomalyHandler.Detect)
			anomalyGroup.POST("/detect/model", anomalyHandler.DetectWithModel)
		}
	}

	if services.Inventory != nil {
		inventoryHandler := handlers.NewInventoryHandler(services.Inventory)
		inventoryGroup := apiGroup.Group("/inventory")
		{
			inventoryGroup.GET("/status", inventoryHandler.Status)
			inventoryGroup.POST("/optimize", inventoryHandler.Optimize)
			inventoryGroup.GET("/optimize/remote", inventoryHandler.OptimizeRemote)
			inventoryGroup.PUT("/:product_id", inventoryHandler.UpdateStock)
		}
	}

	if services.Procurement != nil {
		procurementHandler := handlers.NewProcurementHandler(services.Procurement)
		procurementGroup := apiGroup.Group("/procurement")
		{
			procurementGroup.GET("/suggestions", procurementHandler.List)
			procurementGroup.POST("/suggestions/generate", procurementHandler.Generate)
			procurementGroup.GET("/suggestions/remote", procurementHandler.RemoteSuggestions)
			procurementGroup.POST("/recommend", procurementHandler.Recommend)
		}
	}

	if services.Forecast != nil {
		forecastHandler := handlers.NewForecastHandler(services.Forecast)
		forecastGroup := apiGroup.Group("/forecasts/:product_id")
		{
			forecastGroup.GET("", forecastHandler.List)
			forecastGroup.POST("/generate", forecastHandler.Generate)
			forecastGroup.GET("/history", forecastHandler.History)
		}
	}

	if services.Dashboard != nil {
		dashboardHandler := handlers.NewDashboardHandler(services.Dashboard)
		apiGroup.GET("/dashboard/summary", dashboardHandler.Summary)
		apiGroup.POST("/dashboard/summary/refresh", dashboardHandler.Refresh)
		apiGroup.POST("/chatbot/ask", dashboardHandler.Ask)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
