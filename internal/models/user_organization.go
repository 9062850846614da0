package models

import "time"

// UserOrganization links a user to an organization. Its presence is the sole
// authority for organization-scoped access; the flags grant the fine-grained
// capabilities on top of that.
type UserOrganization struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID         uint `gorm:"not null;uniqueIndex:idx_user_org" json:"user_id"`
	OrganizationID uint `gorm:"not null;uniqueIndex:idx_user_org" json:"organization_id"`

	Organization Organization `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"organization,omitempty"`

	CanManageBilling bool `gorm:"default:false" json:"can_manage_billing"`
	CanManageStaff   bool `gorm:"default:false" json:"can_manage_staff"`
	CanViewAnalytics bool `gorm:"default:false" json:"can_view_analytics"`

	// Stamped only by the explicit org-switch endpoint, never by read-path
	// authorization checks.
	LastAccessedAt *time.Time `json:"last_accessed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Permission names one of the fine-grained membership flags.
type Permission string

const (
	PermManageBilling Permission = "can_manage_billing"
	PermManageStaff   Permission = "can_manage_staff"
	PermViewAnalytics Permission = "can_view_analytics"
)

// Has evaluates a single permission flag on the membership row.
func (m *UserOrganization) Has(p Permission) bool {
	switch p {
	case PermManageBilling:
		return m.CanManageBilling
	case PermManageStaff:
		return m.CanManageStaff
	case PermViewAnalytics:
		return m.CanViewAnalytics
	}
	return false
}
