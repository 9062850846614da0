package models

import "time"

// Client is a CRM record of the organization, no login of its own.
type Client struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	OrganizationID uint `json:"organization_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:100" json:"email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoyaltyEntry is one line of a client's points ledger. Balance is the sum
// over the ledger, never a stored counter.
type LoyaltyEntry struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	OrganizationID uint `json:"organization_id"`
	ClientID       uint `gorm:"index" json:"client_id"`

	AppointmentID *uint  `json:"appointment_id"`
	Points        int    `json:"points"`
	Reason        string `gorm:"size:50" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}
