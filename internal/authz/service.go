// Package authz implements the per-request authorization chain:
// identity resolution, the active-user gate, the role allow-list gate and the
// organization-scope/permission gates. Each gate is a stateless predicate
// returning a Verdict; the chain order is fixed as
// identity -> active -> role -> organization permission.
package authz

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

type Service struct {
	tokens  *TokenCodec
	users   UserStore
	members MembershipStore
	cache   MembershipCache
	log     *zap.Logger
}

// New wires the gate chain. cache may be nil to disable membership caching.
func New(tokens *TokenCodec, users UserStore, members MembershipStore, cache MembershipCache, log *zap.Logger) *Service {
	return &Service{
		tokens:  tokens,
		users:   users,
		members: members,
		cache:   cache,
		log:     log,
	}
}

func (s *Service) Tokens() *TokenCodec {
	return s.tokens
}

// ResolveUser runs identity resolution and the active-user gate. The token is
// validated before any database access; an unknown subject is reported the
// same way as a bad token.
func (s *Service) ResolveUser(ctx context.Context, tokenString string) (*models.User, Verdict) {
	userID, v := s.tokens.Subject(tokenString)
	if !v.Allowed() {
		return nil, v
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		s.log.Error("user lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		return nil, storeError()
	}
	if user == nil || user.DeletedAt != nil {
		return nil, unauthenticated()
	}

	if !user.Active {
		return nil, inactive()
	}

	return user, allow()
}

// RequireRole is the coarse gate: the user's role must be an exact,
// case-sensitive member of the allow-list.
func (s *Service) RequireRole(user *models.User, allowed ...models.Role) Verdict {
	if user.Role.In(allowed...) {
		return allow()
	}
	return forbidden("Operation not permitted")
}

// RequireMembership is the bare organization-scope gate: existence of the
// join row is sufficient, no flag is consulted.
func (s *Service) RequireMembership(ctx context.Context, userID, organizationID uint) (*models.UserOrganization, Verdict) {
	m, err := s.lookupMembership(ctx, userID, organizationID)
	if err != nil {
		s.log.Error("membership lookup failed",
			zap.Uint("user_id", userID),
			zap.Uint("organization_id", organizationID),
			zap.Error(err))
		return nil, storeError()
	}
	if m == nil {
		return nil, forbidden("No organization access")
	}
	return m, allow()
}

// RequirePermission is the fine-grained gate: the membership row must exist
// and the named flag must be true.
func (s *Service) RequirePermission(ctx context.Context, userID, organizationID uint, perm models.Permission) (*models.UserOrganization, Verdict) {
	m, v := s.RequireMembership(ctx, userID, organizationID)
	if !v.Allowed() {
		return nil, v
	}
	if !m.Has(perm) {
		return nil, forbidden("Insufficient permission")
	}
	return m, allow()
}

// InvalidateMembership drops the cached row after a membership mutation.
func (s *Service) InvalidateMembership(ctx context.Context, userID, organizationID uint) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID, organizationID)
	}
}

func (s *Service) lookupMembership(ctx context.Context, userID, organizationID uint) (*models.UserOrganization, error) {
	if s.cache != nil {
		if m, ok := s.cache.Get(ctx, userID, organizationID); ok {
			return m, nil
		}
	}

	m, err := s.members.GetMembership(ctx, userID, organizationID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && m != nil {
		s.cache.Set(ctx, m)
	}

	return m, nil
}
