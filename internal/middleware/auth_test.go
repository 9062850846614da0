package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/bookedbarber/bookedbarber-api/internal/authz"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStore serves a fixed user and membership table; errors can be forced
// to exercise the unavailable path.
type fakeStore struct {
	users       map[uint]*models.User
	memberships map[[2]uint]*models.UserOrganization
	fail        bool
}

func (f *fakeStore) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if f.fail {
		return nil, assert.AnError
	}
	return f.users[id], nil
}

func (f *fakeStore) GetMembership(_ context.Context, userID, organizationID uint) (*models.UserOrganization, error) {
	if f.fail {
		return nil, assert.AnError
	}
	return f.memberships[[2]uint{userID, organizationID}], nil
}

func newTestRouter(store *fakeStore) (*gin.Engine, *authz.Service) {
	svc := authz.New(authz.NewTokenCodec("test-secret"), store, store, nil, zap.NewNop())

	r := gin.New()
	secured := r.Group("/")
	secured.Use(Authenticate(svc))
	{
		secured.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"id": CurrentUser(c).ID})
		})

		secured.GET(
			"/admin",
			RequireRoles(svc, models.RoleSuperAdmin),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)

		secured.GET(
			"/organizations/:orgID/members",
			RequireOrgPermission(svc, models.PermManageStaff),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)
	}

	return r, svc
}

func do(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_MissingToken(t *testing.T) {
	r, _ := newTestRouter(&fakeStore{})

	w := do(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail": "Not authenticated"}`, w.Body.String())
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	r, _ := newTestRouter(&fakeStore{})

	w := do(r, http.MethodGet, "/me", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail": "Not authenticated"}`, w.Body.String())
}

func TestAuthenticate_ValidToken(t *testing.T) {
	user := &models.User{ID: 5, Role: models.RoleBarber, Active: true}
	r, svc := newTestRouter(&fakeStore{users: map[uint]*models.User{5: user}})

	token, _ := svc.Tokens().Issue(user)

	w := do(r, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": 5}`, w.Body.String())
}

func TestAuthenticate_InactiveUser(t *testing.T) {
	user := &models.User{ID: 5, Role: models.RoleBarber, Active: false}
	r, svc := newTestRouter(&fakeStore{users: map[uint]*models.User{5: user}})

	token, _ := svc.Tokens().Issue(user)

	w := do(r, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"detail": "Inactive account"}`, w.Body.String())
}

func TestRequireRoles_Forbidden(t *testing.T) {
	user := &models.User{ID: 5, Role: models.RoleBarber, Active: true}
	r, svc := newTestRouter(&fakeStore{users: map[uint]*models.User{5: user}})

	token, _ := svc.Tokens().Issue(user)

	w := do(r, http.MethodGet, "/admin", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"detail": "Operation not permitted"}`, w.Body.String())
}

// The active gate runs before the role gate: an inactive super_admin hitting
// a super_admin route sees Inactive, not Forbidden.
func TestAuthenticate_InactiveBeforeRole(t *testing.T) {
	user := &models.User{ID: 5, Role: models.RoleSuperAdmin, Active: false}
	r, svc := newTestRouter(&fakeStore{users: map[uint]*models.User{5: user}})

	token, _ := svc.Tokens().Issue(user)

	w := do(r, http.MethodGet, "/admin", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"detail": "Inactive account"}`, w.Body.String())
}

func TestOrgGate_NonMember(t *testing.T) {
	user := &models.User{ID: 5, Role: models.RoleAdmin, Active: true}
	r, svc := newTestRouter(&fakeStore{users: map[uint]*models.User{5: user}})

	token, _ := svc.Tokens().Issue(user)

	w := do(r, http.MethodGet, "/organizations/9/members", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"detail": "No organization access"}`, w.Body.String())
}

func TestOrgGate_MemberWithoutFlag(t *testing.T) {
	user := &models.User{ID: 5, Role: models.RoleAdmin, Active: true}
	store := &fakeStore{
		users: map[uint]*models.User{5: user},
		memberships: map[[2]uint]*models.UserOrganization{
			{5, 9}: {UserID: 5, OrganizationID: 9, CanManageStaff: false},
		},
	}
	r, svc := newTestRouter(store)

	token, _ := svc.Tokens().Issue(user)

	w := do(r, http.MethodGet, "/organizations/9/members", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"detail": "Insufficient permission"}`, w.Body.String())
}

func TestOrgGate_MemberWithFlag(t *testing.T) {
	user := &models.User{ID: 5, Role: models.RoleAdmin, Active: true}
	store := &fakeStore{
		users: map[uint]*models.User{5: user},
		memberships: map[[2]uint]*models.UserOrganization{
			{5, 9}: {UserID: 5, OrganizationID: 9, CanManageStaff: true},
		},
	}
	r, svc := newTestRouter(store)

	token, _ := svc.Tokens().Issue(user)

	w := do(r, http.MethodGet, "/organizations/9/members", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

// Creating the join row flips the same request from Forbidden to Allowed,
// with the same token and unchanged role.
func TestOrgGate_MembershipCreationFlips(t *testing.T) {
	user := &models.User{ID: 5, Role: models.RoleAdmin, Active: true}
	store := &fakeStore{
		users:       map[uint]*models.User{5: user},
		memberships: map[[2]uint]*models.UserOrganization{},
	}
	r, svc := newTestRouter(store)

	token, _ := svc.Tokens().Issue(user)

	w := do(r, http.MethodGet, "/organizations/9/members", token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	store.memberships[[2]uint{5, 9}] = &models.UserOrganization{
		UserID: 5, OrganizationID: 9, CanManageStaff: true,
	}

	w = do(r, http.MethodGet, "/organizations/9/members", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

// Store failures must surface as unavailable, never as a denial.
func TestOrgGate_StoreFailure(t *testing.T) {
	user := &models.User{ID: 5, Role: models.RoleAdmin, Active: true}

	workingStore := &fakeStore{users: map[uint]*models.User{5: user}}
	_, svc := newTestRouter(workingStore)
	token, _ := svc.Tokens().Issue(user)

	// Same router, but the store starts failing after the token was minted.
	failing := &fakeStore{users: map[uint]*models.User{5: user}, fail: true}
	r, _ := newTestRouter(failing)

	w := do(r, http.MethodGet, "/organizations/9/members", token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"detail": "Authorization check unavailable"}`, w.Body.String())
}
