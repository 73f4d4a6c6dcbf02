package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"pharmapool.backend/internal/interfaces/http/handlers"
	"pharmapool.backend/internal/interfaces/http/middleware"
)

const (
	serviceName    = "pharmapool-backend"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	walletHandler  *handlers.WalletHandler
	webhookHandler *handlers.WebhookHandler
	adminHandler   *handlers.AdminHandler
	authMiddleware gin.HandlerFunc
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
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

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Escrow wallet routes (protected)
		wallet := v1.Group("/wallet")
		wallet.Use(d.authMiddleware)
		{
			wallet.POST("/:kind/:conversationId", middleware.IdempotencyMiddleware(), d.walletHandler.CreateWallet)
			wallet.GET("/:kind/:conversationId", d.walletHandler.GetWalletDetails)
			wallet.POST("/payment/accept/:walletAddress", middleware.IdempotencyMiddleware(), d.walletHandler.InitializePledge)
			wallet.POST("/payment/verify/:kind/:walletAddress", d.walletHandler.VerifyPledge)
			wallet.POST("/receipt/acknowledge/:kind", d.walletHandler.AcknowledgeReceipt)
		}

		// Gateway callbacks (signature checked in the handler)
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/paystack", d.webhookHandler.HandlePaystackWebhook)
		}

		// Admin routes (protected)
		admin := v1.Group("/admin")
		admin.Use(d.authMiddleware, middleware.RequireAdmin())
		{
			admin.GET("/wallets", d.adminHandler.ListWallets)
			admin.GET("/wallets/:id", d.adminHandler.GetWallet)
			admin.GET("/wallets/:id/events", d.adminHandler.ListWalletEvents)
		}
	}
}
