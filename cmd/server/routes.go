package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"

	"propdesk.backend/internal/interfaces/http/handlers"
	"propdesk.backend/internal/interfaces/http/middleware"
)

const (
	serviceName    = "propdesk-backend"
	serviceVersion = "1.0.0"
)

type routeDeps struct {
	webhookHandler *handlers.WebhookHandler
	priceHandler   *handlers.PriceHandler
	orderHandler   *handlers.OrderHandler
	profileHandler *handlers.ProfileHandler
	adminHandler   *handlers.AdminHandler

	authMiddleware        gin.HandlerFunc
	optionalAuth          gin.HandlerFunc
	resolveUser           gin.HandlerFunc
	idempotencyMiddleware gin.HandlerFunc
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine, h http.Handler) {
	r.GET("/metrics", gin.WrapH(h))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Payment processor callbacks (HMAC authenticated)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/whop", d.webhookHandler.HandleWhop)
		}

		v1.GET("/prices", d.priceHandler.GetPrices)

		// Order intake (public, linked to the profile when signed in)
		orders := v1.Group("/orders")
		orders.Use(d.optionalAuth)
		{
			orders.POST("/crypto/quote", d.orderHandler.CreateQuote)
			orders.POST("/crypto", d.idempotencyMiddleware, d.orderHandler.SubmitCryptoOrder)
			orders.POST("/checkout", d.idempotencyMiddleware, d.orderHandler.SubmitCheckoutOrder)
		}

		// Signup only needs a valid token; everything else needs a profile.
		v1.POST("/me", d.authMiddleware, d.profileHandler.EnsureProfile)

		me := v1.Group("/me")
		me.Use(d.authMiddleware, d.resolveUser)
		{
			me.GET("", d.profileHandler.GetMe)
			me.GET("/accounts", d.profileHandler.ListAccounts)
			me.GET("/purchases", d.profileHandler.ListPurchases)
			me.GET("/kyc", d.profileHandler.GetKYC)
			me.PUT("/kyc", d.profileHandler.SubmitKYC)
			me.GET("/withdrawals", d.profileHandler.ListWithdrawals)
			me.POST("/withdrawals", d.idempotencyMiddleware, d.profileHandler.RequestWithdrawal)
		}

		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, d.resolveUser, middleware.RequireAdmin())
		{
			admin.GET("/users", d.adminHandler.ListUsers)
			admin.PUT("/users/:id/admin", d.adminHandler.SetAdmin)

			admin.GET("/purchases", d.adminHandler.ListPurchases)

			admin.GET("/accounts", d.adminHandler.ListAccounts)
			admin.PUT("/accounts/:id/credentials", d.adminHandler.AttachCredentials)
			admin.PUT("/accounts/:id/status", d.adminHandler.UpdateAccountStatus)

			admin.GET("/kyc", d.adminHandler.ListKYC)
			admin.PUT("/kyc/:userId/review", d.adminHandler.ReviewKYC)

			admin.GET("/withdrawals", d.adminHandler.ListWithdrawals)
			admin.PUT("/withdrawals/:id", d.adminHandler.UpdateWithdrawal)

			admin.GET("/emails", d.adminHandler.ListEmailTemplates)
			admin.POST("/emails/:template", d.adminHandler.SendEmail)
		}
	}
}

// withCORS wraps the router so preflight requests are answered before routing.
func withCORS(h http.Handler, origins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyHeader, middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "X-Idempotency-Hit"},
		AllowCredentials: true,
		MaxAge:           300,
	})(h)
}
