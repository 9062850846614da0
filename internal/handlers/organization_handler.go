package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/authz"
	"github.com/bookedbarber/bookedbarber-api/internal/httperr"
	"github.com/bookedbarber/bookedbarber-api/internal/middleware"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
	"github.com/bookedbarber/bookedbarber-api/internal/timezone"
)

// maxHierarchyDepth caps the parent walk when rejecting cycles.
const maxHierarchyDepth = 10

type OrganizationHandler struct {
	db    *gorm.DB
	authz *authz.Service
}

func NewOrganizationHandler(db *gorm.DB, authzSvc *authz.Service) *OrganizationHandler {
	return &OrganizationHandler{db: db, authz: authzSvc}
}

// ======================================================
// CREATE (admin / super_admin)
// ======================================================

type CreateOrganizationRequest struct {
	Name                 string `json:"name" binding:"required"`
	Slug                 string `json:"slug" binding:"required"`
	OrganizationType     string `json:"organization_type"`
	ParentOrganizationID *uint  `json:"parent_organization_id"`
	Phone                string `json:"phone"`
	Address              string `json:"address"`
	Timezone             string `json:"timezone"`
}

func (h *OrganizationHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))

	var count int64
	h.db.Model(&models.Organization{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		httperr.BadRequest(c, "slug_already_exists", "Slug already in use.")
		return
	}

	orgType := req.OrganizationType
	if orgType == "" {
		orgType = models.OrgTypeIndependent
	}
	if !models.ValidOrganizationType(orgType) {
		httperr.BadRequest(c, "invalid_organization_type", "Unknown organization type.")
		return
	}

	if req.Timezone != "" && !timezone.IsValid(req.Timezone) {
		httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
		return
	}

	if req.ParentOrganizationID != nil {
		// Child orgs require membership in the parent plus staff rights there.
		if _, v := h.authz.RequirePermission(
			c.Request.Context(), user.ID, *req.ParentOrganizationID, models.PermManageStaff,
		); !v.Allowed() {
			c.JSON(v.Status(), gin.H{"detail": v.Message})
			return
		}

		var parent models.Organization
		if err := h.db.First(&parent, *req.ParentOrganizationID).Error; err != nil {
			httperr.BadRequest(c, "parent_not_found", "Parent organization does not exist.")
			return
		}
	}

	org := models.Organization{
		Name:                 req.Name,
		Slug:                 slug,
		OrganizationType:     orgType,
		ParentOrganizationID: req.ParentOrganizationID,
		Phone:                req.Phone,
		Address:              req.Address,
		Timezone:             req.Timezone,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		membership := models.UserOrganization{
			UserID:           user.ID,
			OrganizationID:   org.ID,
			CanManageBilling: true,
			CanManageStaff:   true,
			CanViewAnalytics: true,
		}
		return tx.Create(&membership).Error
	})
	if err != nil {
		httperr.Internal(c, "failed_to_create_organization", "Could not create organization.")
		return
	}

	c.JSON(http.StatusCreated, org)
}

// ======================================================
// READ
// ======================================================

func (h *OrganizationHandler) Get(c *gin.Context) {
	orgID := middleware.OrgID(c)

	var org models.Organization
	if err := h.db.First(&org, orgID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "organization_not_found", "Organization not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_organization", "Could not load organization.")
		return
	}

	c.JSON(http.StatusOK, org)
}

func (h *OrganizationHandler) ListChildren(c *gin.Context) {
	orgID := middleware.OrgID(c)

	var children []models.Organization
	if err := h.db.
		Where("parent_organization_id = ?", orgID).
		Order("name ASC").
		Find(&children).Error; err != nil {

		httperr.Internal(c, "failed_to_list_children", "Could not list locations.")
		return
	}

	c.JSON(http.StatusOK, children)
}

// ======================================================
// UPDATE (general config; can_manage_staff)
// ======================================================

type UpdateOrganizationRequest struct {
	Name                 *string `json:"name"`
	Phone                *string `json:"phone"`
	Address              *string `json:"address"`
	Timezone             *string `json:"timezone"`
	MinAdvanceMinutes    *int    `json:"min_advance_minutes"`
	ParentOrganizationID *uint   `json:"parent_organization_id"`
}

func (h *OrganizationHandler) Update(c *gin.Context) {
	orgID := middleware.OrgID(c)

	var org models.Organization
	if err := h.db.First(&org, orgID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "organization_not_found", "Organization not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_organization", "Could not load organization.")
		return
	}

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.Phone != nil {
		org.Phone = *req.Phone
	}
	if req.Address != nil {
		org.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
			return
		}
		org.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Minimum advance must be zero or positive (minutes).")
			return
		}
		org.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}
	if req.ParentOrganizationID != nil {
		if err := h.assertNoCycle(org.ID, *req.ParentOrganizationID); err != nil {
			mapHierarchyErrors(c, err)
			return
		}
		org.ParentOrganizationID = req.ParentOrganizationID
	}

	if err := h.db.Save(&org).Error; err != nil {
		httperr.Internal(c, "failed_to_update_organization", "Could not save organization.")
		return
	}

	c.JSON(http.StatusOK, org)
}

// ======================================================
// UPDATE BILLING (can_manage_billing)
// ======================================================

type UpdateBillingRequest struct {
	BillingPlan        *string          `json:"billing_plan"`
	PaymentStatus      *string          `json:"payment_status"`
	PlatformFeePercent *decimal.Decimal `json:"platform_fee_percent"`
}

func (h *OrganizationHandler) UpdateBilling(c *gin.Context) {
	orgID := middleware.OrgID(c)

	var org models.Organization
	if err := h.db.First(&org, orgID).Error; err != nil {
		httperr.NotFound(c, "organization_not_found", "Organization not found.")
		return
	}

	var req UpdateBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.BillingPlan != nil {
		org.BillingPlan = *req.BillingPlan
	}
	if req.PaymentStatus != nil {
		switch *req.PaymentStatus {
		case models.PaymentStatusTrialing, models.PaymentStatusActive,
			models.PaymentStatusPastDue, models.PaymentStatusCanceled:
			org.PaymentStatus = *req.PaymentStatus
		default:
			httperr.BadRequest(c, "invalid_payment_status", "Unknown payment status.")
			return
		}
	}
	if req.PlatformFeePercent != nil {
		if req.PlatformFeePercent.IsNegative() || req.PlatformFeePercent.GreaterThan(decimal.NewFromInt(100)) {
			httperr.BadRequest(c, "invalid_fee_percent", "Fee percent must be between 0 and 100.")
			return
		}
		org.PlatformFeePercent = *req.PlatformFeePercent
	}

	if err := h.db.Save(&org).Error; err != nil {
		httperr.Internal(c, "failed_to_update_organization", "Could not save organization.")
		return
	}

	c.JSON(http.StatusOK, org)
}

// ======================================================
// SWITCH (stamps last_accessed_at; the only write on the authz path)
// ======================================================

func (h *OrganizationHandler) Switch(c *gin.Context) {
	user := middleware.CurrentUser(c)
	orgID := middleware.OrgID(c)
	membership := middleware.CurrentMembership(c)

	now := timezone.Now()
	membership.LastAccessedAt = &now

	if err := h.db.Model(&models.UserOrganization{}).
		Where("id = ?", membership.ID).
		Update("last_accessed_at", now).Error; err != nil {

		httperr.Internal(c, "failed_to_switch_organization", "Could not record access.")
		return
	}

	// The cached row now carries a stale timestamp.
	h.authz.InvalidateMembership(c.Request.Context(), user.ID, orgID)

	c.JSON(http.StatusOK, gin.H{
		"organization_id":  orgID,
		"last_accessed_at": now,
	})
}

// assertNoCycle walks from the candidate parent to the root and fails if it
// passes through org itself.
func (h *OrganizationHandler) assertNoCycle(orgID, parentID uint) error {
	if orgID == parentID {
		return httperr.ErrBusiness("self_parent")
	}

	current := parentID
	for i := 0; i < maxHierarchyDepth; i++ {
		var parent models.Organization
		if err := h.db.First(&parent, current).Error; err != nil {
			return httperr.ErrBusiness("parent_not_found")
		}
		if parent.ParentOrganizationID == nil {
			return nil
		}
		if *parent.ParentOrganizationID == orgID {
			return httperr.ErrBusiness("hierarchy_cycle")
		}
		current = *parent.ParentOrganizationID
	}

	return httperr.ErrBusiness("hierarchy_too_deep")
}

func mapHierarchyErrors(c *gin.Context, err error) {
	switch {
	case httperr.IsBusiness(err, "self_parent"):
		httperr.BadRequest(c, "self_parent", "An organization cannot be its own parent.")
	case httperr.IsBusiness(err, "parent_not_found"):
		httperr.BadRequest(c, "parent_not_found", "Parent organization does not exist.")
	case httperr.IsBusiness(err, "hierarchy_cycle"):
		httperr.BadRequest(c, "hierarchy_cycle", "Organization hierarchy cannot contain cycles.")
	case httperr.IsBusiness(err, "hierarchy_too_deep"):
		httperr.BadRequest(c, "hierarchy_too_deep", "Organization hierarchy is too deep.")
	default:
		httperr.Internal(c, "failed_to_update_organization", "Could not save organization.")
	}
}
