package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"decor-agenda-backend/config"
	"decor-agenda-backend/internal/booking"
	"decor-agenda-backend/internal/mw"
	"decor-agenda-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, svc *booking.Service, webpushOptions *webpush.Options, serverCfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, svc, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(serverCfg.RateLimitPerSec), serverCfg.RateLimitBurst)

	cacheTTL := time.Duration(serverCfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// The VAPID key is static per deployment, so it is the one
		// response worth caching.
		api.GET("/vapid_public_key", caching, handler.GetVAPIDPublicKey)

		tenants := api.Group("/tenants/:tenant_id")
		{
			tenants.GET("/overview", handler.GetOverview)

			tenants.POST("/appointments", handler.CreateAppointment)
			tenants.PATCH("/appointments/:id", handler.UpdateAppointment)
			tenants.DELETE("/appointments/:id", handler.DeleteAppointment)

			tenants.GET("/notifications", handler.GetNotifications)
			tenants.POST("/notifications/read", handler.MarkNotificationRead)
			tenants.POST("/notifications/read_all", handler.MarkAllNotificationsRead)
			tenants.PUT("/notifications/preference", handler.SetNotificationPreference)

			tenants.GET("/subscriptions", handler.GetSubscriptions)
			tenants.PUT("/subscriptions", handler.PutSubscription)
			tenants.DELETE("/subscriptions", handler.DeleteSubscription)
		}
	}

	return r
}
