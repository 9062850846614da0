package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/audit"
	"github.com/bookedbarber/bookedbarber-api/internal/authz"
	"github.com/bookedbarber/bookedbarber-api/internal/httperr"
	"github.com/bookedbarber/bookedbarber-api/internal/middleware"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
	"github.com/bookedbarber/bookedbarber-api/internal/validators"
)

// MemberHandler manages the user/organization join rows. Every mutation
// invalidates the membership cache so gate decisions pick up the new state.
type MemberHandler struct {
	db    *gorm.DB
	authz *authz.Service
	audit *audit.Dispatcher
}

func NewMemberHandler(db *gorm.DB, authzSvc *authz.Service, auditDisp *audit.Dispatcher) *MemberHandler {
	return &MemberHandler{db: db, authz: authzSvc, audit: auditDisp}
}

// ======================================================
// LIST
// ======================================================

func (h *MemberHandler) List(c *gin.Context) {
	orgID := middleware.OrgID(c)

	var memberships []models.UserOrganization
	if err := h.db.
		Where("organization_id = ?", orgID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {

		httperr.Internal(c, "failed_to_list_members", "Could not list members.")
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// ======================================================
// ADD
// ======================================================

type AddMemberRequest struct {
	Email            string `json:"email" binding:"required,email"`
	CanManageBilling bool   `json:"can_manage_billing"`
	CanManageStaff   bool   `json:"can_manage_staff"`
	CanViewAnalytics bool   `json:"can_view_analytics"`
}

func (h *MemberHandler) Add(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	orgID := middleware.OrgID(c)

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	var user models.User
	if err := h.db.
		Where("email = ?", validators.NormalizeEmail(req.Email)).
		First(&user).Error; err != nil {

		httperr.NotFound(c, "user_not_found", "No account with that email.")
		return
	}

	var existing int64
	h.db.Model(&models.UserOrganization{}).
		Where("user_id = ? AND organization_id = ?", user.ID, orgID).
		Count(&existing)
	if existing > 0 {
		httperr.Conflict(c, "already_member", "User is already a member.")
		return
	}

	membership := models.UserOrganization{
		UserID:           user.ID,
		OrganizationID:   orgID,
		CanManageBilling: req.CanManageBilling,
		CanManageStaff:   req.CanManageStaff,
		CanViewAnalytics: req.CanViewAnalytics,
	}

	if err := h.db.Create(&membership).Error; err != nil {
		httperr.Internal(c, "failed_to_add_member", "Could not add member.")
		return
	}

	h.authz.InvalidateMembership(c.Request.Context(), user.ID, orgID)

	h.audit.Dispatch(audit.Event{
		OrganizationID: orgID,
		UserID:         &actor.ID,
		Action:         "member_added",
		Entity:         "user_organization",
		EntityID:       &membership.ID,
	})

	c.JSON(http.StatusCreated, membership)
}

// ======================================================
// UPDATE FLAGS
// ======================================================

type UpdateMemberRequest struct {
	CanManageBilling *bool `json:"can_manage_billing"`
	CanManageStaff   *bool `json:"can_manage_staff"`
	CanViewAnalytics *bool `json:"can_view_analytics"`
}

func (h *MemberHandler) Update(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	orgID := middleware.OrgID(c)

	userID, err := strconv.ParseUint(c.Param("userID"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_user_id", "Invalid user id.")
		return
	}

	var membership models.UserOrganization
	if err := h.db.
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		First(&membership).Error; err != nil {

		httperr.NotFound(c, "membership_not_found", "User is not a member.")
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.CanManageBilling != nil {
		membership.CanManageBilling = *req.CanManageBilling
	}
	if req.CanManageStaff != nil {
		membership.CanManageStaff = *req.CanManageStaff
	}
	if req.CanViewAnalytics != nil {
		membership.CanViewAnalytics = *req.CanViewAnalytics
	}

	if err := h.db.Save(&membership).Error; err != nil {
		httperr.Internal(c, "failed_to_update_member", "Could not save membership.")
		return
	}

	h.authz.InvalidateMembership(c.Request.Context(), membership.UserID, orgID)

	h.audit.Dispatch(audit.Event{
		OrganizationID: orgID,
		UserID:         &actor.ID,
		Action:         "member_updated",
		Entity:         "user_organization",
		EntityID:       &membership.ID,
	})

	c.JSON(http.StatusOK, membership)
}

// ======================================================
// REMOVE
// ======================================================

func (h *MemberHandler) Remove(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	orgID := middleware.OrgID(c)

	userID, err := strconv.ParseUint(c.Param("userID"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_user_id", "Invalid user id.")
		return
	}

	if uint(userID) == actor.ID {
		httperr.BadRequest(c, "cannot_remove_self", "Use another staff manager to remove yourself.")
		return
	}

	var membership models.UserOrganization
	if err := h.db.
		Where("user_id = ? AND organization_id = ?", userID, orgID).
		First(&membership).Error; err != nil {

		httperr.NotFound(c, "membership_not_found", "User is not a member.")
		return
	}

	if err := h.db.Delete(&membership).Error; err != nil {
		httperr.Internal(c, "failed_to_remove_member", "Could not remove member.")
		return
	}

	h.authz.InvalidateMembership(c.Request.Context(), membership.UserID, orgID)

	h.audit.Dispatch(audit.Event{
		OrganizationID: orgID,
		UserID:         &actor.ID,
		Action:         "member_removed",
		Entity:         "user_organization",
		EntityID:       &membership.ID,
	})

	c.Status(http.StatusNoContent)
}
