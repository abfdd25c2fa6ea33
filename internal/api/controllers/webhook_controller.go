package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flyttman/internal/services"
)

// maxWebhookBodyBytes caps the webhook payload read into memory.
const maxWebhookBodyBytes = int64(65536)

type WebhookController struct {
	webhookService services.WebhookService
	log            *zap.Logger
}

func NewWebhookController(webhookService services.WebhookService, log *zap.Logger) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
		log:            log.Named("webhook_controller"),
	}
}

// HandleStripeWebhook godoc
// @Summary Stripe webhook receiver
// @Description Verifies the Stripe-Signature header and applies payment_intent events to tips
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {string} string "Webhook Error: <reason>"
// @Failure 500 {object} map[string]string
// @Router /webhook [post]
func (w *WebhookController) HandleStripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
		return
	}

	event, err := w.webhookService.VerifyEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		w.log.Warn("webhook signature verification failed",
			zap.String("trace_id", c.GetString("trace_id")), zap.Error(err))
		c.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
		return
	}

	if err := w.webhookService.HandleEvent(c.Request.Context(), event, payload); err != nil {
		w.log.Error("webhook handling failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("trace_id", c.GetString("trace_id")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
