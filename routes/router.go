package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rentreward/rentreward/config"
	"github.com/rentreward/rentreward/controllers"
	"github.com/rentreward/rentreward/middleware"
	"github.com/rentreward/rentreward/models"
	"github.com/rentreward/rentreward/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
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
		// fallback to default recovery if logger failed to init
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

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	tenantController := controllers.NewTenantController(db)
	ownerController := controllers.NewOwnerController(db)
	notificationController := controllers.NewNotificationController(db)
	rewardController := controllers.NewRewardController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/signup", authController.Signup)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/verify/:token", authController.Verify)
	authGroup.POST("/resend-verification", authController.ResendVerification)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Catalog is public so prospects can browse before signing up
	api.GET("/rewards", rewardController.List)

	tenantGroup := api.Group("/tenant")
	tenantGroup.Use(middleware.AuthRequired(), middleware.RequireUserType(models.UserTypeTenant))
	tenantGroup.GET("/profile", tenantController.Profile)
	tenantGroup.GET("/rent", tenantController.RentHistory)
	tenantGroup.POST("/rent", tenantController.SubmitRent)
	tenantGroup.GET("/referrals", tenantController.ListReferrals)
	tenantGroup.POST("/referrals", tenantController.CreateReferral)
	tenantGroup.POST("/rewards/redeem", rewardController.Redeem)
	tenantGroup.GET("/rewards/redemptions", rewardController.Redemptions)

	ownerGroup := api.Group("/owner")
	ownerGroup.Use(middleware.AuthRequired(), middleware.RequireUserType(models.UserTypeOwner))
	ownerGroup.GET("/dashboard", ownerController.Dashboard)
	ownerGroup.GET("/properties", ownerController.ListProperties)
	ownerGroup.POST("/properties", ownerController.CreateProperty)
	ownerGroup.PUT("/properties/:id", ownerController.UpdateProperty)
	ownerGroup.DELETE("/properties/:id", ownerController.DeleteProperty)
	ownerGroup.GET("/tenants", ownerController.ListTenants)
	ownerGroup.GET("/tenants/:id", ownerController.GetTenant)
	ownerGroup.POST("/tenants", ownerController.CreateTenant)
	ownerGroup.PUT("/tenants/:id", ownerController.UpdateTenant)
	ownerGroup.DELETE("/tenants/:id", ownerController.DeleteTenant)
	ownerGroup.POST("/tenants/:id/rent/:rentId/acknowledge", ownerController.AcknowledgeRent)
	ownerGroup.GET("/referrals", ownerController.ListReferrals)
	ownerGroup.POST("/referrals", ownerController.CreateReferral)

	notificationGroup := api.Group("/notifications")
	notificationGroup.Use(middleware.AuthRequired())
	notificationGroup.GET("", notificationController.List)
	notificationGroup.PATCH("", notificationController.MarkAllRead)
	notificationGroup.PATCH("/:id/read", notificationController.MarkRead)
	notificationGroup.DELETE("/:id", notificationController.Delete)

	return r
}
