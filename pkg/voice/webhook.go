package voice

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/widescopeindustries/ai-receptionist/internal/models"
	"github.com/widescopeindustries/ai-receptionist/pkg/logger"
)

// errorTwiML is served when rendering fails so the caller hears
// something instead of a dropped call
const errorTwiML = `<?xml version="1.0" encoding="UTF-8"?>
<Response>
  <Say>I'm sorry, something went wrong on our end. Please call back in a moment.</Say>
  <Hangup></Hangup>
</Response>`

// Integrations reports which external collaborators are configured,
// surfaced on the health endpoint
type Integrations struct {
	Calendar bool `json:"calendar"`
	Mail     bool `json:"mail"`
	Webhook  bool `json:"webhook"`
}

// WebhookHandler binds the telephony webhook endpoints to the turn
// processor. No business logic here.
type WebhookHandler struct {
	processor    *Processor
	resolver     *ProfileResolver
	store        *Store
	db           *gorm.DB
	integrations Integrations
}

// NewWebhookHandler wires the webhook layer
func NewWebhookHandler(processor *Processor, resolver *ProfileResolver, store *Store, db *gorm.DB, integrations Integrations) *WebhookHandler {
	return &WebhookHandler{
		processor:    processor,
		resolver:     resolver,
		store:        store,
		db:           db,
		integrations: integrations,
	}
}

// RegisterRoutes mounts the webhook and ops endpoints
func (h *WebhookHandler) RegisterRoutes(router *gin.Engine) {
	router.POST(RouteIncoming, h.HandleIncoming)
	router.POST(RouteProcessSpeech, h.HandleSpeech)
	router.POST(RouteNoInput, h.HandleNoInput)
	router.POST("/voice/status", h.HandleStatus)

	router.GET("/health", h.HandleHealth)
	router.GET("/api/stats", h.HandleStats)
	router.GET("/api/leads", h.HandleLeads)
	router.PUT("/api/leads/:id/status", h.HandleUpdateLeadStatus)
	router.GET("/api/calls", h.HandleCalls)
}

// HandleIncoming answers a new inbound call
func (h *WebhookHandler) HandleIncoming(c *gin.Context) {
	callID := c.PostForm("CallSid")
	from := c.PostForm("From")
	to := c.PostForm("To")
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing CallSid"})
		return
	}

	profile := h.resolveProfile(to)
	directives := h.processor.HandleIncoming(c.Request.Context(), callID, from, to, profile)
	h.writeTwiML(c, directives)
}

// HandleSpeech processes one transcribed caller utterance
func (h *WebhookHandler) HandleSpeech(c *gin.Context) {
	callID := c.PostForm("CallSid")
	from := c.PostForm("From")
	to := c.PostForm("To")
	utterance := c.PostForm("SpeechResult")
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing CallSid"})
		return
	}

	profile := h.resolveProfile(to)
	directives := h.processor.HandleSpeech(c.Request.Context(), callID, from, to, profile, utterance)
	h.writeTwiML(c, directives)
}

// HandleNoInput handles a speech gather that timed out with silence
func (h *WebhookHandler) HandleNoInput(c *gin.Context) {
	callID := c.PostForm("CallSid")
	from := c.PostForm("From")
	to := c.PostForm("To")
	if callID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing CallSid"})
		return
	}

	profile := h.resolveProfile(to)
	directives := h.processor.HandleNoInput(c.Request.Context(), callID, from, to, profile)
	h.writeTwiML(c, directives)
}

// HandleStatus processes call lifecycle notifications. Always 200: the
// platform retries non-2xx responses and there is nothing to retry.
func (h *WebhookHandler) HandleStatus(c *gin.Context) {
	callID := c.PostForm("CallSid")
	status := c.PostForm("CallStatus")
	duration, _ := strconv.Atoi(c.PostForm("CallDuration"))

	logger.Info("call status received",
		zap.String("callId", callID),
		zap.String("status", status),
		zap.Int("durationSeconds", duration))

	if callID != "" {
		h.processor.HandleStatus(c.Request.Context(), callID, status, duration)
	}
	c.Status(http.StatusOK)
}

// HandleHealth liveness check with integration flags
func (h *WebhookHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"activeCalls":  h.store.ActiveCount(),
		"integrations": h.integrations,
	})
}

// HandleStats lead and call counters for the dashboard
func (h *WebhookHandler) HandleStats(c *gin.Context) {
	totalLeads, err := models.CountLeads(h.db, "")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "stats query failed"})
		return
	}
	newLeads, _ := models.CountLeads(h.db, models.LeadStatusNew)
	totalCalls, _ := models.CountCallRecords(h.db)

	c.JSON(http.StatusOK, gin.H{
		"totalLeads":  totalLeads,
		"newLeads":    newLeads,
		"totalCalls":  totalCalls,
		"activeCalls": h.store.ActiveCount(),
	})
}

// HandleLeads lists leads, optionally filtered by status
func (h *WebhookHandler) HandleLeads(c *gin.Context) {
	status := models.LeadStatus(c.Query("status"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	leads, err := models.GetLeads(h.db, status, limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lead query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": leads, "count": len(leads)})
}

// HandleUpdateLeadStatus moves a lead through the pipeline
func (h *WebhookHandler) HandleUpdateLeadStatus(c *gin.Context) {
	var payload struct {
		Status models.LeadStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing status"})
		return
	}
	switch payload.Status {
	case models.LeadStatusNew, models.LeadStatusContacted, models.LeadStatusConverted:
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	id := c.Param("id")
	if _, err := models.GetLeadByID(h.db, id); err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "lead not found"})
		return
	}
	if err := models.UpdateLeadStatus(h.db, id, payload.Status); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": payload.Status})
}

// HandleCalls lists the most recent call records
func (h *WebhookHandler) HandleCalls(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, err := models.GetRecentCallRecords(h.db, limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "call query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": records, "count": len(records)})
}

func (h *WebhookHandler) resolveProfile(to string) *models.ReceptionistProfile {
	if h.resolver == nil {
		return nil
	}
	return h.resolver.Resolve(to)
}

func (h *WebhookHandler) writeTwiML(c *gin.Context, directives []any) {
	body, err := RenderTwiML(directives)
	if err != nil {
		logger.Error("twiml render failed", zap.Error(err))
		c.Header("Content-Type", "text/xml")
		c.String(http.StatusOK, errorTwiML)
		return
	}
	c.Header("Content-Type", "text/xml")
	c.String(http.StatusOK, body)
}
