package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/models"
	"github.com/bookedbarber/bookedbarber-api/internal/payment"
)

// WebhookHandler receives provider payment notifications. It is a public
// endpoint; authenticity is checked per provider (Stripe signature,
// Mercado Pago status re-fetch).
type WebhookHandler struct {
	db      *gorm.DB
	factory *payment.Factory
	log     *zap.Logger
}

func NewWebhookHandler(db *gorm.DB, factory *payment.Factory, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{db: db, factory: factory, log: log}
}

func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	providerName := c.Param("provider")

	provider, err := h.factory.GetProvider(providerName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Unknown provider"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unreadable payload"})
		return
	}

	event, err := provider.HandleWebhook(c.Request.Context(), body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Warn("webhook rejected",
			zap.String("provider", providerName),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid notification"})
		return
	}

	// Some notifications carry no state change we care about.
	if event == nil {
		c.Status(http.StatusOK)
		return
	}

	var pay models.Payment
	query := h.db.Where("provider = ?", provider.Name())
	switch {
	case event.Reference != "":
		query = query.Where("idempotency_key = ?", event.Reference)
	case event.ExternalID != "":
		query = query.Where("external_id = ?", event.ExternalID)
	default:
		c.Status(http.StatusOK)
		return
	}

	if err := query.First(&pay).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Unknown reference: acknowledge so the provider stops retrying.
			h.log.Warn("webhook for unknown payment",
				zap.String("provider", providerName),
				zap.String("reference", event.Reference),
				zap.String("external_id", event.ExternalID))
			c.Status(http.StatusOK)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Lookup failed"})
		return
	}

	updates := map[string]any{"status": event.Status}
	if pay.ExternalID == "" && event.ExternalID != "" {
		updates["external_id"] = event.ExternalID
	}

	if err := h.db.Model(&pay).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Update failed"})
		return
	}

	h.log.Info("payment status updated",
		zap.Uint("payment_id", pay.ID),
		zap.String("status", event.Status))

	c.Status(http.StatusOK)
}
