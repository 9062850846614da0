package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/authz"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

type orgFixture struct {
	db     *gorm.DB
	router *gin.Engine
}

func newOrgFixture(t *testing.T) *orgFixture {
	t.Helper()

	db := newTestDB(t)
	svc := authz.New(authz.NewTokenCodec("test-secret"), nil, nil, nil, zap.NewNop())
	h := NewOrganizationHandler(db, svc)

	r := gin.New()
	r.PATCH("/organizations/:orgID", h.Update)

	return &orgFixture{db: db, router: r}
}

func (f *orgFixture) seedOrg(t *testing.T, name, slug string, parentID *uint) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: name, Slug: slug, ParentOrganizationID: parentID}
	require.NoError(t, f.db.Create(org).Error)
	return org
}

func (f *orgFixture) patch(t *testing.T, orgID uint, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch,
		fmt.Sprintf("/organizations/%d", orgID), bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var parsed map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	return w, parsed
}

func TestUpdateOrganization_SelfParentRejected(t *testing.T) {
	f := newOrgFixture(t)
	hq := f.seedOrg(t, "HQ", "hq", nil)

	w, body := f.patch(t, hq.ID, fmt.Sprintf(`{"parent_organization_id": %d}`, hq.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "self_parent", body["error_code"])
	assert.Equal(t, "An organization cannot be its own parent.", body["message"])
}

func TestUpdateOrganization_CycleRejected(t *testing.T) {
	f := newOrgFixture(t)
	hq := f.seedOrg(t, "HQ", "hq", nil)
	shop := f.seedOrg(t, "Shop", "shop", &hq.ID)

	// Re-parenting HQ under its own child would close a loop.
	w, body := f.patch(t, hq.ID, fmt.Sprintf(`{"parent_organization_id": %d}`, shop.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "hierarchy_cycle", body["error_code"])
}

func TestUpdateOrganization_UnknownParentRejected(t *testing.T) {
	f := newOrgFixture(t)
	hq := f.seedOrg(t, "HQ", "hq", nil)

	w, body := f.patch(t, hq.ID, `{"parent_organization_id": 9999}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "parent_not_found", body["error_code"])
}

func TestUpdateOrganization_ValidParentAccepted(t *testing.T) {
	f := newOrgFixture(t)
	hq := f.seedOrg(t, "HQ", "hq", nil)
	shop := f.seedOrg(t, "Shop", "shop", nil)

	w, _ := f.patch(t, shop.ID, fmt.Sprintf(`{"parent_organization_id": %d}`, hq.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Organization
	require.NoError(t, f.db.First(&got, shop.ID).Error)
	require.NotNil(t, got.ParentOrganizationID)
	assert.Equal(t, hq.ID, *got.ParentOrganizationID)
}
