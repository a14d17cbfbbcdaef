// Package api wires the HTTP surface: public routes, authenticated routes
// and the admin group, plus the private service API on its own port.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/api/handlers"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/api/middleware"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/config"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/notify"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/services"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/storage"
)

// SetupRouter builds the main API router with all routes registered.
func SetupRouter(cfg *config.Config, database *mongo.Database, notifier notify.Notifier, media storage.IMediaStorage, taskClient *asynq.Client) *gin.Engine {
	userService := services.NewUserService(database, cfg)
	propertyService := services.NewPropertyService(database, cfg)
	tourService := services.NewTourService(database, cfg)
	bookingService := services.NewBookingService(database, cfg, notifier)
	tourBookingService := services.NewTourBookingService(database, cfg, notifier)
	inquiryService := services.NewInquiryService(database, cfg, notifier)
	contactService := services.NewContactService(database, cfg, notifier)

	authHandler := handlers.NewAuthHandler(userService)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	tourHandler := handlers.NewTourHandler(tourService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	tourBookingHandler := handlers.NewTourBookingHandler(tourBookingService)
	inquiryHandler := handlers.NewInquiryHandler(inquiryService)
	contactHandler := handlers.NewContactHandler(contactService)
	mediaHandler := handlers.NewMediaHandler(media, taskClient, cfg.ImageMaxSizeMB)

	soft := middleware.NewRateLimiter(cfg.RateLimitSoftRefillRate, cfg.RateLimitSoftBucketSize)
	hard := middleware.NewRateLimiter(cfg.RateLimitHardRefillRate, cfg.RateLimitHardBucketSize)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.CORS(), soft.Middleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")

	// Public surface. OptionalAuth lets authenticated callers get their
	// records linked; anonymous callers fall through.
	v1.POST("/auth/register", hard.Middleware(), authHandler.Register)
	v1.POST("/auth/login", hard.Middleware(), authHandler.Login)

	v1.GET("/properties", middleware.OptionalAuth(cfg.JwtSecret), propertyHandler.List)
	v1.GET("/properties/:id", middleware.OptionalAuth(cfg.JwtSecret), propertyHandler.Get)
	v1.GET("/properties/:id/related", middleware.OptionalAuth(cfg.JwtSecret), propertyHandler.Related)
	v1.GET("/tours", middleware.OptionalAuth(cfg.JwtSecret), tourHandler.List)
	v1.GET("/tours/:id", middleware.OptionalAuth(cfg.JwtSecret), tourHandler.Get)

	v1.POST("/bookings", hard.Middleware(), middleware.OptionalAuth(cfg.JwtSecret), bookingHandler.Create)
	v1.POST("/inquiries/simple", hard.Middleware(), middleware.OptionalAuth(cfg.JwtSecret), inquiryHandler.CreateSimple)
	v1.POST("/contact", hard.Middleware(), middleware.OptionalAuth(cfg.JwtSecret), contactHandler.Create)

	// Authenticated surface.
	authed := v1.Group("", middleware.RequireAuth(cfg.JwtSecret))
	{
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/bookings", bookingHandler.List)
		authed.GET("/bookings/:id", bookingHandler.Get)
		authed.DELETE("/bookings/:id", bookingHandler.Cancel)

		authed.POST("/tours/:id/bookings", hard.Middleware(), tourBookingHandler.Create)
		authed.GET("/tour-bookings", tourBookingHandler.List)
		authed.GET("/tour-bookings/:id", tourBookingHandler.Get)
		authed.DELETE("/tour-bookings/:id", tourBookingHandler.Cancel)

		authed.POST("/inquiries", hard.Middleware(), inquiryHandler.Create)
		authed.GET("/inquiries", inquiryHandler.List)
		authed.GET("/inquiries/:id", inquiryHandler.Get)
		authed.DELETE("/inquiries/:id", inquiryHandler.Delete)
	}

	// Admin surface.
	admin := v1.Group("/admin", middleware.RequireAuth(cfg.JwtSecret), middleware.RequireAdmin())
	{
		admin.POST("/properties", propertyHandler.Create)
		admin.PATCH("/properties/:id", propertyHandler.Update)
		admin.DELETE("/properties/:id", propertyHandler.Delete)

		admin.POST("/tours", tourHandler.Create)
		admin.PATCH("/tours/:id", tourHandler.Update)
		admin.DELETE("/tours/:id", tourHandler.Delete)

		admin.PATCH("/bookings/:id/status", bookingHandler.UpdateStatus)
		admin.PATCH("/tour-bookings/:id/status", tourBookingHandler.UpdateStatus)
		admin.PATCH("/inquiries/:id", inquiryHandler.UpdateStatus)

		admin.GET("/contact", contactHandler.List)
		admin.GET("/contact/:id", contactHandler.Get)
		admin.PATCH("/contact/:id", contactHandler.UpdateStatus)
		admin.DELETE("/contact/:id", contactHandler.Delete)

		admin.POST("/media", mediaHandler.Upload)
		admin.DELETE("/media", mediaHandler.Delete)
	}

	return router
}

// SetupServiceRouter builds the private service API bound to its own port.
func SetupServiceRouter(rdb *redis.Client, shutdownChan chan<- struct{}) *gin.Engine {
	serviceHandler := handlers.NewServiceHandler(rdb, shutdownChan)

	router := gin.New()
	router.Use(gin.Recovery())
	router.POST("/shutdown", serviceHandler.Shutdown)
	router.GET("/getTestEmail", serviceHandler.GetTestEmail)
	return router
}
