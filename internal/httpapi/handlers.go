package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"ccc-bridge/internal/agentfactory"
	"ccc-bridge/internal/auth"
	"ccc-bridge/internal/ccc"
	"ccc-bridge/internal/middlewareapi"
	"ccc-bridge/internal/settings"
	"ccc-bridge/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handlers groups the management-surface handlers for dependency
// injection. Keep these thin: parse/validate input, resolve the active
// adapter, call it, map the error taxonomy to a status.

type Handlers struct {
	Factory    *agentfactory.Factory
	Store      settings.Store
	Middleware *middlewareapi.Client

	// Auth is nil when the surface runs open (local/dev).
	Auth         *auth.Manager
	ServiceToken string

	Policy ccc.StaticAvailability
}

// --- Auth ---

type tokenRequest struct {
	ServiceToken string `json:"serviceToken"`
	Subject      string `json:"subject"`
}

// IssueToken exchanges the configured service token for a short-lived
// access token.
func (h Handlers) IssueToken(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"message": "auth not configured"})
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid json"})
		return
	}
	if req.ServiceToken == "" || req.ServiceToken != h.ServiceToken {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid service token"})
		return
	}
	subject := req.Subject
	if subject == "" {
		subject = "gateway"
	}
	token, err := h.Auth.Issue(time.Now(), subject, "service")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// --- Settings ---

type putSettingsRequest struct {
	CallbackToken     string            `json:"callbackToken" binding:"required"`
	CallbackURL       string            `json:"callbackURL" binding:"required"`
	IntegrationName   string            `json:"integrationName" binding:"required"`
	IntegrationFields map[string]string `json:"integrationFields"`
}

func (h Handlers) PutSettings(c *gin.Context) {
	log := logger.FromGin(c)

	var req putSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid settings payload"})
		return
	}

	s := settings.Settings{
		CallbackToken:     req.CallbackToken,
		CallbackURL:       req.CallbackURL,
		IntegrationName:   req.IntegrationName,
		IntegrationFields: req.IntegrationFields,
	}
	if err := h.Store.Put(c.Request.Context(), s); err != nil {
		log.Error("settings store failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "settings store failed"})
		return
	}

	// The gateway keeps its own copy; losing that sync is logged, not fatal.
	if h.Middleware != nil {
		if _, err := h.Middleware.PutSettings(c.Request.Context(), s); err != nil {
			log.Warn("settings forward to gateway failed", "err", err)
		}
	}

	c.JSON(http.StatusOK, s)
}

func (h Handlers) GetSettings(c *gin.Context) {
	s, err := h.Store.Get(c.Request.Context())
	if err != nil {
		// Empty object on read failure, matching the gateway contract.
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, s)
}

// --- Agents ---

func (h Handlers) Availability(c *gin.Context) {
	skill := strings.TrimSpace(c.Query("skill"))
	if skill == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Skill param is required parameter"})
		return
	}

	svc, err := h.Factory.AgentService(c.Request.Context())
	if err != nil {
		h.abortResolveFailed(c, err)
		return
	}

	available := svc.IsAvailable(skill)
	status := "unavailable"
	if available {
		status = "available"
	}
	c.JSON(http.StatusOK, gin.H{
		"available":         available,
		"estimatedWaitTime": h.Policy.EstimatedWaitSeconds(),
		"status":            status,
		"hoursOfOperation":  true,
		"queueDepth":        h.Policy.QueueDepth(),
	})
}

func (h Handlers) WaitTime(c *gin.Context) {
	skill := strings.TrimSpace(c.Query("skill"))
	if skill == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Skill param is required parameter"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"estimatedWaitTime": h.Policy.QueueWaitSeconds()})
}

// --- Conversations ---

type escalateRequest struct {
	Skill  string `json:"skill"`
	UserID string `json:"userId"`
}

// Escalate hands the conversation to a live agent: the transcript is
// fetched best-effort and seeded as the opening message of the started
// conversation.
func (h Handlers) Escalate(c *gin.Context) {
	log := logger.FromGin(c)
	conversationID := c.Param("conversationId")

	var req escalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid escalate payload"})
		return
	}

	history := ""
	if h.Middleware != nil {
		messages, err := h.Middleware.History(c.Request.Context(), conversationID)
		if err != nil {
			log.Warn("history fetch failed, escalating without transcript", "conversation_id", conversationID, "err", err)
		} else {
			history = formatHistory(messages)
		}
	}

	svc, err := h.Factory.AgentService(c.Request.Context())
	if err != nil {
		h.abortResolveFailed(c, err)
		return
	}

	msg := ccc.Message{
		ConversationID: conversationID,
		Skill:          req.Skill,
		Content: ccc.Content{
			ID:    uuid.NewString(),
			Value: history,
			Type:  ccc.MessageTypeText,
		},
		Sender: ccc.Sender{Username: req.UserID},
	}
	if _, err := svc.StartConversation(c.Request.Context(), msg); err != nil {
		log.Error("start conversation failed", "conversation_id", conversationID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"errors":  []string{err.Error()},
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"agentId":           svc.Name() + "-agent",
		"escalationId":      conversationID,
		"estimatedWaitTime": 0,
		"queuePosition":     0,
		"status":            "queued",
	})
}

type typingRequest struct {
	Typing *bool `json:"typing" binding:"required"`
}

func (h Handlers) Type(c *gin.Context) {
	log := logger.FromGin(c)
	conversationID := c.Param("conversationId")

	var req typingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "typing field is required"})
		return
	}

	svc, err := h.Factory.AgentService(c.Request.Context())
	if err != nil {
		h.abortResolveFailed(c, err)
		return
	}

	if !svc.SupportsTypingSync() {
		log.Info("typing sync not supported, skipping", "platform", svc.Name())
		c.Status(http.StatusNoContent)
		return
	}
	if _, err := svc.SendTyping(c.Request.Context(), conversationID, *req.Typing); err != nil {
		log.Error("typing sync failed", "conversation_id", conversationID, "err", err)
	}
	c.Status(http.StatusNoContent)
}

type putMessageRequest struct {
	Content  string `json:"content" binding:"required"`
	SenderID string `json:"senderId"`
}

func (h Handlers) Message(c *gin.Context) {
	log := logger.FromGin(c)
	conversationID := c.Param("conversationId")
	messageID := c.Param("messageId")

	var req putMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "content field is required"})
		return
	}

	svc, err := h.Factory.AgentService(c.Request.Context())
	if err != nil {
		h.abortResolveFailed(c, err)
		return
	}

	// Inbound end-user message means the user is done typing.
	if svc.SupportsTypingSync() {
		if _, err := svc.SendTyping(c.Request.Context(), conversationID, false); err != nil {
			log.Warn("typing reset failed", "conversation_id", conversationID, "err", err)
		}
	}

	msg := middlewareapi.MapToMessage(req.Content, req.SenderID, conversationID, messageID)
	if _, err := svc.SendMessage(c.Request.Context(), msg); err != nil {
		log.Error("send message to agent failed", "conversation_id", conversationID, "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) End(c *gin.Context) {
	log := logger.FromGin(c)
	conversationID := c.Param("conversationId")

	svc, err := h.Factory.AgentService(c.Request.Context())
	if err != nil {
		h.abortResolveFailed(c, err)
		return
	}

	if svc.SupportsTypingSync() {
		if _, err := svc.SendTyping(c.Request.Context(), conversationID, false); err != nil {
			log.Warn("typing reset failed", "conversation_id", conversationID, "err", err)
		}
	}
	if _, err := svc.EndConversation(c.Request.Context(), conversationID); err != nil {
		log.Error("end conversation failed", "conversation_id", conversationID, "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) abortResolveFailed(c *gin.Context, err error) {
	if errors.Is(err, ccc.ErrNotConfigured) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "agent service resolution failed"})
}

// formatHistory renders a transcript oldest-first, one line per message.
func formatHistory(messages []middlewareapi.HistoryMessage) string {
	lines := make([]string, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		lines = append(lines, "["+m.Side+"] "+m.Content)
	}
	return strings.Join(lines, "\r\n")
}
