package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/morpheus-mall/mall-backend/config"
	_ "github.com/morpheus-mall/mall-backend/docs"
	"github.com/morpheus-mall/mall-backend/internal/approval"
	"github.com/morpheus-mall/mall-backend/internal/auditlog"
	"github.com/morpheus-mall/mall-backend/internal/auth"
	"github.com/morpheus-mall/mall-backend/internal/cache"
	"github.com/morpheus-mall/mall-backend/internal/designer"
	"github.com/morpheus-mall/mall-backend/internal/event"
	"github.com/morpheus-mall/mall-backend/internal/metrics"
	"github.com/morpheus-mall/mall-backend/internal/notification"
	"github.com/morpheus-mall/mall-backend/internal/reports"
	"github.com/morpheus-mall/mall-backend/internal/store"
	"github.com/morpheus-mall/mall-backend/middleware"
)

// Deps are the shared clients the routes are built on. Redis, Cache and
// Publisher may be nil; the service then runs without them.
type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Redis     *redis.Client
	Cache     *cache.Cache
	Publisher notification.Publisher
}

// Setup registers middleware and every API route on r.
func Setup(r *gin.Engine, d Deps) {
	cfg := d.Config
	publisher := d.Publisher
	if publisher == nil {
		publisher = notification.NopPublisher{}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger())
	r.Use(metrics.Middleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", metrics.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, d.Redis))
	api.Use(middleware.AuditMiddleware())

	// ===========================
	// Services

	auditSvc := auditlog.NewService(auditlog.NewRepository(d.DB))
	auditHandler := auditlog.NewHandler(auditSvc)

	authSvc := auth.NewService(auth.NewRepository(d.DB), auditSvc, cfg)
	authHandler := auth.NewHandler(authSvc)

	designerSvc := designer.NewService(designer.NewRepository(d.DB))
	designerHandler := designer.NewHandler(designerSvc)

	storeSvc := store.NewService(store.NewRepository(d.DB), designerSvc, d.Cache)
	storeHandler := store.NewHandler(storeSvc)

	eventSvc := event.NewService(event.NewRepository(d.DB), auditSvc, publisher, d.Cache)
	eventSvc.InvalidateOps = append(eventSvc.InvalidateOps, store.OpListStores)
	eventHandler := event.NewHandler(eventSvc)

	approvalSvc := approval.NewService(approval.NewRepository(d.DB), eventSvc, auditSvc, publisher, d.Cache)
	approvalHandler := approval.NewHandler(approvalSvc)

	reportsSvc := reports.NewReportService(eventSvc, reports.NewReportExporter(), auditSvc)
	reportsHandler := reports.NewHandler(reportsSvc)

	// ===========================
	// Public

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.GET("/public-roles", authHandler.GetPublicRoles)
		authGroup.POST("/logout", middleware.AuthMiddleware(authSvc), authHandler.Logout)
	}

	// ===========================
	// Authenticated

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(authSvc))

	admins := middleware.RBACMiddleware(middleware.RoleAdmin)
	staff := middleware.RBACMiddleware(middleware.RoleAdmin, middleware.RoleStoreAdmin)

	events := protected.Group("/events")
	{
		events.GET("", staff, eventHandler.ListEvents)
		events.GET("/:id", staff, eventHandler.GetEvent)
		events.GET("/:id/validate", staff, eventHandler.ValidateRegistration)

		events.POST("", admins, middleware.RequireWriteAccess(), eventHandler.CreateEvent)
		events.PUT("/:id", admins, middleware.RequireWriteAccess(), eventHandler.UpdateEvent)
		events.DELETE("/:id", admins, middleware.RequireWriteAccess(), eventHandler.DeleteEvent)
		events.POST("/:id/registrations", admins, middleware.RequireWriteAccess(), eventHandler.Register)
		events.DELETE("/:id/registrations", admins, middleware.RequireWriteAccess(), eventHandler.Unregister)
	}

	// store listing filters by role itself, every authenticated caller may ask
	protected.GET("/stores", storeHandler.ListStores)
	protected.GET("/malls", storeHandler.ListMalls)

	designers := protected.Group("/designers")
	{
		designers.GET("", staff, designerHandler.ListDesigners)
		designers.GET("/me", middleware.RBACMiddleware(middleware.RoleDesigner, middleware.RoleStoreAdmin), designerHandler.GetMe)
		designers.PUT("/me/palette", middleware.RBACMiddleware(middleware.RoleDesigner, middleware.RoleStoreAdmin), designerHandler.UpdateMyPalette)
		designers.GET("/:id", staff, designerHandler.GetDesigner)
	}

	approvals := protected.Group("/approvals")
	approvals.Use(admins)
	{
		approvals.POST("", middleware.RequireWriteAccess(), approvalHandler.ApproveAssignment)
		approvals.GET("/pending", approvalHandler.ListPending)
		approvals.POST("/products/:id/reject", middleware.RequireWriteAccess(), approvalHandler.Reject)
	}

	users := protected.Group("/users")
	users.Use(admins)
	{
		users.GET("", authHandler.ListUsers)
		users.PUT("/:id/role", middleware.RequireWriteAccess(), authHandler.AssignRole)
	}

	auditRoutes := protected.Group("/auditlogs")
	auditRoutes.Use(admins)
	{
		auditRoutes.GET("", auditHandler.GetAuditLogs)
		auditRoutes.GET("/stats", auditHandler.GetAuditLogStats)
		auditRoutes.GET("/:id", auditHandler.GetAuditLogByID)
	}

	reportRoutes := protected.Group("/reports")
	{
		reportRoutes.GET("/events", staff, reportsHandler.EventsReport)
		reportRoutes.GET("/audit-logs", admins, reportsHandler.AuditLogsReport)
	}
}
