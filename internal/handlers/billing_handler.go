package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/audit"
	"github.com/bookedbarber/bookedbarber-api/internal/httperr"
	"github.com/bookedbarber/bookedbarber-api/internal/httpresp"
	"github.com/bookedbarber/bookedbarber-api/internal/middleware"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
	"github.com/bookedbarber/bookedbarber-api/internal/payment"
)

// BillingHandler creates provider checkouts for appointments and lists
// payments. Routes are gated by the can_manage_billing flag.
type BillingHandler struct {
	db      *gorm.DB
	factory *payment.Factory
	audit   *audit.Dispatcher
}

func NewBillingHandler(db *gorm.DB, factory *payment.Factory, auditor *audit.Dispatcher) *BillingHandler {
	return &BillingHandler{db: db, factory: factory, audit: auditor}
}

type createCheckoutRequest struct {
	AppointmentID uint   `json:"appointment_id" binding:"required"`
	Provider      string `json:"provider"`
}

func (h *BillingHandler) CreateCheckout(c *gin.Context) {
	orgID := middleware.OrgID(c)
	user := middleware.CurrentUser(c)

	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "appointment_id is required.")
		return
	}

	var appt models.Appointment
	err := h.db.Preload("Service").
		Where("id = ? AND organization_id = ?", req.AppointmentID, orgID).
		First(&appt).Error
	if err == gorm.ErrRecordNotFound {
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
		return
	}
	if err != nil {
		httperr.Internal(c, "checkout_failed", "Could not load appointment.")
		return
	}

	// Reuse a pending checkout instead of opening a second one.
	var existing models.Payment
	err = h.db.Where("appointment_id = ? AND status = 'pending'", appt.ID).First(&existing).Error
	if err == nil {
		httpresp.OK(c, paymentResponse(&existing))
		return
	}
	if err != gorm.ErrRecordNotFound {
		httperr.Internal(c, "checkout_failed", "Could not check existing payments.")
		return
	}

	var org models.Organization
	if err := h.db.First(&org, orgID).Error; err != nil {
		httperr.Internal(c, "checkout_failed", "Could not load organization.")
		return
	}

	provider, err := h.factory.GetProvider(req.Provider)
	if err != nil {
		httperr.BadRequest(c, "unsupported_provider", err.Error())
		return
	}

	amount := decimal.NewFromFloat(appt.Service.Price).Round(2)
	fee, net := payment.Split(amount, org.PlatformFeePercent)

	pay := models.Payment{
		OrganizationID: orgID,
		AppointmentID:  appt.ID,
		Provider:       provider.Name(),
		IdempotencyKey: uuid.NewString(),
		Status:         models.PaymentPending,
		Currency:       "USD",
		Amount:         amount,
		PlatformFee:    fee,
		NetAmount:      net,
	}

	checkout, err := provider.CreateCheckout(c.Request.Context(), payment.CheckoutInput{
		Reference:   pay.IdempotencyKey,
		Title:       appt.Service.Name,
		Description: fmt.Sprintf("Appointment #%d", appt.ID),
		Amount:      amount,
		Currency:    pay.Currency,
	})
	if err != nil {
		httperr.Internal(c, "checkout_failed", "Payment provider rejected the checkout.")
		return
	}

	pay.ExternalID = checkout.ExternalID
	pay.CheckoutURL = checkout.URL

	if err := h.db.Create(&pay).Error; err != nil {
		httperr.Internal(c, "checkout_failed", "Could not persist payment.")
		return
	}

	h.audit.Dispatch(audit.Event{
		OrganizationID: orgID,
		UserID:         &user.ID,
		Action:         "checkout_created",
		Entity:         "payment",
		EntityID:       &pay.ID,
		Metadata: map[string]any{
			"provider": pay.Provider,
			"amount":   pay.Amount.String(),
		},
	})

	httpresp.Created(c, paymentResponse(&pay))
}

func (h *BillingHandler) ListPayments(c *gin.Context) {
	orgID := middleware.OrgID(c)

	var payments []models.Payment
	if err := h.db.Where("organization_id = ?", orgID).
		Order("created_at DESC").
		Limit(100).
		Find(&payments).Error; err != nil {

		httperr.Internal(c, "list_failed", "Could not list payments.")
		return
	}

	out := make([]gin.H, 0, len(payments))
	for i := range payments {
		out = append(out, paymentResponse(&payments[i]))
	}
	httpresp.List(c, out)
}

func paymentResponse(p *models.Payment) gin.H {
	return gin.H{
		"id":             p.ID,
		"appointment_id": p.AppointmentID,
		"provider":       p.Provider,
		"status":         p.Status,
		"currency":       p.Currency,
		"amount":         p.Amount,
		"platform_fee":   p.PlatformFee,
		"net_amount":     p.NetAmount,
		"checkout_url":   p.CheckoutURL,
	}
}
