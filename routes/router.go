package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agroconnect/agroconnect/config"
	"github.com/agroconnect/agroconnect/controllers"
	"github.com/agroconnect/agroconnect/middleware"
	"github.com/agroconnect/agroconnect/models"
	"github.com/agroconnect/agroconnect/repository"
	"github.com/agroconnect/agroconnect/utils"
)

// SetupRouter wires routes, middlewares, and controllers. The forum runs on
// whichever store was selected at startup; the generic resource collections
// need the database and are only registered when it is available.
func SetupRouter(db *gorm.DB, forum repository.ForumStore) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.Identity())

	r.Static("/static/uploads", cfg.UploadDir)
	r.Static("/static/placeholder", "./static/placeholder")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{
			"status":      "ok",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"environment": cfg.Environment,
		})
	})

	api := r.Group("/api")
	api.Use(middleware.RateLimitMiddleware())

	controllers.NewForumController(forum).Register(api.Group("/forum"))

	if db != nil {
		controllers.NewEquipmentController(db).Register(api.Group("/equipment"))

		controllers.NewResourceController[models.BulkDeal](db, controllers.ResourceOptions{
			Name:          "bulk deal",
			Filters:       map[string]string{"status": "status", "product": "product", "location": "location"},
			SearchColumns: []string{"title", "product", "description"},
		}).Register(api.Group("/bulk-deals"))

		controllers.NewResourceController[models.LendingCircle](db, controllers.ResourceOptions{
			Name:          "lending circle",
			Filters:       map[string]string{"status": "status", "location": "location"},
			SearchColumns: []string{"name", "location"},
		}).Register(api.Group("/lending/circles"))

		controllers.NewResourceController[models.Loan](db, controllers.ResourceOptions{
			Name:    "loan",
			Filters: map[string]string{"status": "status", "circle_id": "circle_id", "borrower_id": "borrower_id"},
		}).Register(api.Group("/lending/loans"))

		controllers.NewResourceController[models.Expense](db, controllers.ResourceOptions{
			Name:      "expense",
			Filters:   map[string]string{"category": "category", "farmer_id": "farmer_id"},
			Deletable: true,
		}).Register(api.Group("/expenses"))

		controllers.NewResourceController[models.MarketTrend](db, controllers.ResourceOptions{
			Name:          "market trend",
			Filters:       map[string]string{"crop": "crop", "market": "market", "trend": "trend"},
			SearchColumns: []string{"crop", "market"},
			CachePrefix:   "cache:market:trends",
		}).Register(api.Group("/market/trends"))

		controllers.NewResourceController[models.MarketAlert](db, controllers.ResourceOptions{
			Name:        "market alert",
			Filters:     map[string]string{"severity": "severity", "crop": "crop"},
			CachePrefix: "cache:market:alerts",
		}).Register(api.Group("/market/alerts"))

		controllers.NewResourceController[models.Scheme](db, controllers.ResourceOptions{
			Name:          "scheme",
			Filters:       map[string]string{"status": "status"},
			SearchColumns: []string{"name", "description", "benefit"},
		}).Register(api.Group("/schemes"))
	}

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
