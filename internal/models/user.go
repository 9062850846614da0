package models

import (
	"fmt"
	"time"
)

// Role is the coarse capability label carried by every user. The set is
// closed; anything else is rejected at the model boundary.
type Role string

const (
	RoleClient     Role = "client"
	RoleBarber     Role = "barber"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
	RoleUser       Role = "user"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleBarber, RoleAdmin, RoleSuperAdmin, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// In returns whether the role is a member of the allow-list. Comparison is
// exact and case-sensitive.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Phone        string `gorm:"size:20" json:"phone"`
	Role         Role   `gorm:"size:20;default:'user'" json:"role"`

	Active    bool   `gorm:"default:true" json:"active"`
	AvatarURL string `gorm:"size:255" json:"avatar_url"`
	Timezone  string `gorm:"size:50" json:"timezone"`

	DeactivatedAt       *time.Time `json:"deactivated_at"`
	DeletionScheduledAt *time.Time `json:"deletion_scheduled_at"`
	DeletedAt           *time.Time `json:"deleted_at"`

	Memberships []UserOrganization `gorm:"foreignKey:UserID" json:"memberships,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
