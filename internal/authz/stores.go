package authz

import (
	"context"

	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

// UserStore resolves a token subject to a user record. A missing user is
// (nil, nil); an error means the store itself failed.
type UserStore interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// MembershipStore looks up the user/organization join row. A missing row is
// (nil, nil); an error means the store itself failed.
type MembershipStore interface {
	GetMembership(ctx context.Context, userID, organizationID uint) (*models.UserOrganization, error)
}

// MembershipCache is an optional short-lived cache in front of the
// MembershipStore. Implementations must treat their own failures as misses.
type MembershipCache interface {
	Get(ctx context.Context, userID, organizationID uint) (*models.UserOrganization, bool)
	Set(ctx context.Context, m *models.UserOrganization)
	Invalidate(ctx context.Context, userID, organizationID uint)
}
