package main

import (
	"ccc-bridge/internal/auth"
	"ccc-bridge/internal/httpapi"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	Handlers httpapi.Handlers
	Webhooks httpapi.WebhookHandlers

	// AuthManager is nil when the management surface runs open.
	AuthManager *auth.Manager
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, deps routeDeps) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Platform webhooks (public).
	// NOTE: These endpoints should be protected by platform signature
	// validation in production.
	r.POST("/servicenow/webhook", deps.Webhooks.ServiceNow)
	r.POST("/flex/webhook", deps.Webhooks.Flex)
	r.POST("/genesys/webhook", deps.Webhooks.Genesys)

	// Management surface consumed by the gateway.
	v1 := r.Group("/contactCenter/v1")
	v1.POST("/auth/token", deps.Handlers.IssueToken)
	if deps.AuthManager != nil {
		v1.Use(auth.RequireAccessToken(deps.AuthManager))
	}
	{
		v1.PUT("/settings", deps.Handlers.PutSettings)
		v1.GET("/settings", deps.Handlers.GetSettings)

		v1.GET("/agents/availability", deps.Handlers.Availability)
		v1.GET("/agents/waitTime", deps.Handlers.WaitTime)

		v1.POST("/conversations/:conversationId/escalate", deps.Handlers.Escalate)
		v1.POST("/conversations/:conversationId/type", deps.Handlers.Type)
		v1.PUT("/conversations/:conversationId/messages/:messageId", deps.Handlers.Message)
		v1.POST("/conversations/:conversationId/end", deps.Handlers.End)
	}
}
