package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/audit"
	"github.com/bookedbarber/bookedbarber-api/internal/httperr"
	"github.com/bookedbarber/bookedbarber-api/internal/httpresp"
	"github.com/bookedbarber/bookedbarber-api/internal/middleware"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

const deletionGraceDays = 30

// AdminHandler covers platform-wide user management. Every route requires
// the super_admin role.
type AdminHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
}

func NewAdminHandler(db *gorm.DB, auditor *audit.Dispatcher) *AdminHandler {
	return &AdminHandler{db: db, audit: auditor}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	query := h.db.Order("id ASC").Limit(200)

	if s := c.Query("email"); s != "" {
		query = query.Where("email ILIKE ?", "%"+s+"%")
	}
	if s := c.Query("active"); s == "true" || s == "false" {
		query = query.Where("active = ?", s == "true")
	}

	if err := query.Find(&users).Error; err != nil {
		httperr.Internal(c, "list_failed", "Could not list users.")
		return
	}

	httpresp.List(c, users)
}

func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	if actor.ID == user.ID {
		httperr.BadRequest(c, "self_target", "You cannot deactivate your own account.")
		return
	}

	now := time.Now()
	if err := h.db.Model(user).Updates(map[string]any{
		"active":         false,
		"deactivated_at": now,
	}).Error; err != nil {
		httperr.Internal(c, "update_failed", "Could not deactivate user.")
		return
	}

	h.dispatch(c, "user_deactivated", user.ID)
	httpresp.OK(c, gin.H{"id": user.ID, "active": false, "deactivated_at": now})
}

func (h *AdminHandler) ReactivateUser(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	if err := h.db.Model(user).Updates(map[string]any{
		"active":                true,
		"deactivated_at":        nil,
		"deletion_scheduled_at": nil,
	}).Error; err != nil {
		httperr.Internal(c, "update_failed", "Could not reactivate user.")
		return
	}

	h.dispatch(c, "user_reactivated", user.ID)
	httpresp.OK(c, gin.H{"id": user.ID, "active": true})
}

func (h *AdminHandler) ScheduleDeletion(c *gin.Context) {
	user, ok := h.loadUser(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	if actor.ID == user.ID {
		httperr.BadRequest(c, "self_target", "You cannot schedule your own deletion.")
		return
	}

	now := time.Now()
	scheduled := now.AddDate(0, 0, deletionGraceDays)

	if err := h.db.Model(user).Updates(map[string]any{
		"active":                false,
		"deactivated_at":        now,
		"deletion_scheduled_at": scheduled,
	}).Error; err != nil {
		httperr.Internal(c, "update_failed", "Could not schedule deletion.")
		return
	}

	h.dispatch(c, "user_deletion_scheduled", user.ID)
	httpresp.OK(c, gin.H{
		"id":                    user.ID,
		"active":                false,
		"deletion_scheduled_at": scheduled,
	})
}

func (h *AdminHandler) loadUser(c *gin.Context) (*models.User, bool) {
	id, err := strconv.ParseUint(c.Param("userID"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid user id.")
		return nil, false
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "user_not_found", "User not found.")
		} else {
			httperr.Internal(c, "lookup_failed", "Could not load user.")
		}
		return nil, false
	}

	return &user, true
}

func (h *AdminHandler) dispatch(c *gin.Context, action string, targetID uint) {
	actor := middleware.CurrentUser(c)
	h.audit.Dispatch(audit.Event{
		UserID:   &actor.ID,
		Action:   action,
		Entity:   "user",
		EntityID: &targetID,
	})
}
