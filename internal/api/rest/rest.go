package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler) {
	// Operational endpoints (no version prefix)
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Marketplace facing metadata document
		v1.GET("/metadata/:contract/:token_id", handler.GetMetadata)

		// Post-upload propagation check across gateways
		v1.GET("/gateways/validate/*ref", handler.ValidateGateways)
	}
}
