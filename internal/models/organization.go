package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Organization types form a tree: a headquarters or franchise node can own
// location nodes; independent shops have no parent.
const (
	OrgTypeIndependent  = "independent"
	OrgTypeLocation     = "location"
	OrgTypeHeadquarters = "headquarters"
	OrgTypeFranchise    = "franchise"
)

const (
	PaymentStatusTrialing = "trialing"
	PaymentStatusActive   = "active"
	PaymentStatusPastDue  = "past_due"
	PaymentStatusCanceled = "canceled"
)

type Organization struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;not null" json:"name"`
	Slug string `gorm:"size:100;uniqueIndex;not null" json:"slug"`

	OrganizationType     string        `gorm:"size:20;default:'independent'" json:"organization_type"`
	ParentOrganizationID *uint         `json:"parent_organization_id"`
	Parent               *Organization `gorm:"foreignKey:ParentOrganizationID" json:"-"`

	Phone    string `gorm:"size:20" json:"phone"`
	Address  string `gorm:"size:255" json:"address"`
	Timezone string `gorm:"size:50" json:"timezone"`

	// Minimum lead time a client must give when booking.
	MinAdvanceMinutes int `gorm:"default:120" json:"min_advance_minutes"`

	PaymentStatus      string          `gorm:"size:20;default:'trialing'" json:"payment_status"`
	BillingPlan        string          `gorm:"size:50" json:"billing_plan"`
	PlatformFeePercent decimal.Decimal `gorm:"type:numeric(5,2);default:0" json:"platform_fee_percent"`
	LogoURL            string          `gorm:"size:255" json:"logo_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidOrganizationType(t string) bool {
	switch t {
	case OrgTypeIndependent, OrgTypeLocation, OrgTypeHeadquarters, OrgTypeFranchise:
		return true
	}
	return false
}
