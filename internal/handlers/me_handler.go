package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/httperr"
	"github.com/bookedbarber/bookedbarber-api/internal/media"
	"github.com/bookedbarber/bookedbarber-api/internal/middleware"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
	"github.com/bookedbarber/bookedbarber-api/internal/timezone"
)

type MeHandler struct {
	db       *gorm.DB
	uploader *media.Uploader
}

func NewMeHandler(db *gorm.DB, uploader *media.Uploader) *MeHandler {
	return &MeHandler{db: db, uploader: uploader}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var memberships []models.UserOrganization
	h.db.Preload("Organization").Where("user_id = ?", user.ID).Find(&memberships)

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"phone":      user.Phone,
			"role":       user.Role,
			"avatar_url": user.AvatarURL,
			"timezone":   user.Timezone,
		},
		"memberships": memberships,
	})
}

type UpdateMeRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Timezone *string `json:"timezone"`
}

func (h *MeHandler) UpdateMe(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
			return
		}
		user.Timezone = *req.Timezone
	}

	if err := h.db.Save(user).Error; err != nil {
		httperr.Internal(c, "failed_to_update_profile", "Could not save profile.")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UploadAvatar accepts a multipart image, converts it to WebP and stores it.
func (h *MeHandler) UploadAvatar(c *gin.Context) {
	user := middleware.CurrentUser(c)

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		httperr.BadRequest(c, "missing_file", "Multipart field 'file' is required.")
		return
	}
	defer file.Close()

	key := fmt.Sprintf("avatars/%d.webp", user.ID)
	url, err := h.uploader.UploadImage(c.Request.Context(), key, file)
	if err != nil {
		httperr.Internal(c, "avatar_upload_failed", "Could not process the image.")
		return
	}

	user.AvatarURL = url
	if err := h.db.Save(user).Error; err != nil {
		httperr.Internal(c, "failed_to_update_profile", "Could not save profile.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}
