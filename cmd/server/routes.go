package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-payments.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	authHandler     *handlers.AuthHandler
	userHandler     *handlers.UserHandler
	templateHandler *handlers.TemplateHandler
	assetHandler    *handlers.AssetHandler
	authMiddleware  gin.HandlerFunc
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	r.POST("/generate-token", d.authHandler.GenerateToken)
	r.GET("/assets", d.assetHandler.ListAssets)

	// Session-authenticated routes
	authed := r.Group("/")
	authed.Use(d.authMiddleware)
	{
		authed.GET("/users/:userAddress", d.userHandler.GetUser)
		authed.GET("/templates/:userAddress", d.templateHandler.ListTemplates)
		authed.POST("/templates/:userAddress", d.templateHandler.CreateTemplate)
		authed.DELETE("/templates/:id", d.templateHandler.DeleteTemplate)
	}
}
