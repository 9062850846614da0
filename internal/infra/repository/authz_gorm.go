package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/authz"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

// AuthzGormStore backs the authorization gates with point queries against
// the users and user_organizations tables. Absence is (nil, nil) so the
// gates can tell "no row" apart from "store down".
type AuthzGormStore struct {
	db *gorm.DB
}

func NewAuthzGormStore(db *gorm.DB) *AuthzGormStore {
	return &AuthzGormStore{db: db}
}

func (s *AuthzGormStore) GetUserByID(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthzGormStore) GetMembership(
	ctx context.Context,
	userID uint,
	organizationID uint,
) (*models.UserOrganization, error) {

	var m models.UserOrganization
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND organization_id = ?", userID, organizationID).
		First(&m).Error; err != nil {

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// Compile-time checks
var (
	_ authz.UserStore       = (*AuthzGormStore)(nil)
	_ authz.MembershipStore = (*AuthzGormStore)(nil)
)
