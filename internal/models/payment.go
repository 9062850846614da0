package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentPending  = "pending"
	PaymentApproved = "approved"
	PaymentRejected = "rejected"
)

// Payment records a checkout against an appointment and the gross/fee/net
// split between platform and shop.
type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OrganizationID uint `json:"organization_id"`
	AppointmentID  uint `gorm:"index" json:"appointment_id"`

	Provider       string `gorm:"size:20;not null" json:"provider"`
	ExternalID     string `gorm:"size:100;index" json:"external_id"`
	IdempotencyKey string `gorm:"size:36;uniqueIndex" json:"idempotency_key"`

	Status   string `gorm:"size:20;default:'pending'" json:"status"`
	Currency string `gorm:"size:3;default:'USD'" json:"currency"`

	Amount      decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	PlatformFee decimal.Decimal `gorm:"type:numeric(10,2)" json:"platform_fee"`
	NetAmount   decimal.Decimal `gorm:"type:numeric(10,2)" json:"net_amount"`

	CheckoutURL string `gorm:"size:500" json:"checkout_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
