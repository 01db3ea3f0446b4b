package httpapi

import (
	"net/http"

	"ccc-bridge/internal/agentfactory"
	"ccc-bridge/internal/audit"
	"ccc-bridge/internal/dispatch"
	"ccc-bridge/internal/flex"
	"ccc-bridge/internal/genesys"
	"ccc-bridge/internal/servicenow"
	"ccc-bridge/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WebhookHandlers receives inbound platform webhooks and runs the
// dispatch orchestrator over them. Binding enforces the structural
// contract (required top-level fields); anything past binding is the
// orchestrator's job, and its per-event failures still answer 200 with
// a failed entry rather than dropping the batch.

type WebhookHandlers struct {
	Factory *agentfactory.Factory
	Audit   *audit.Service
}

func (h WebhookHandlers) ServiceNow(c *gin.Context) {
	var body servicenow.WebhookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid webhook payload"})
		return
	}
	run(h, c, dispatch.Orchestrator[servicenow.WebhookBody]{
		Source:      "servicenow",
		Interpreter: servicenow.Interpreter{},
		Audit:       h.Audit,
		Log:         logger.FromGin(c),
	}, body)
}

func (h WebhookHandlers) Flex(c *gin.Context) {
	var body flex.WebhookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid webhook payload"})
		return
	}
	run(h, c, dispatch.Orchestrator[flex.WebhookBody]{
		Source:      "flex",
		Interpreter: flex.Interpreter{},
		Audit:       h.Audit,
		Log:         logger.FromGin(c),
	}, body)
}

func (h WebhookHandlers) Genesys(c *gin.Context) {
	var body genesys.WebhookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid webhook payload"})
		return
	}
	run(h, c, dispatch.Orchestrator[genesys.WebhookBody]{
		Source:      "genesys",
		Interpreter: genesys.Interpreter{},
		Audit:       h.Audit,
		Log:         logger.FromGin(c),
	}, body)
}

func run[B any](h WebhookHandlers, c *gin.Context, orch dispatch.Orchestrator[B], body B) {
	svc, err := h.Factory.AgentService(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("agent service resolution failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orch.Dispatch(c.Request.Context(), svc, body))
}
