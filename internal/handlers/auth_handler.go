package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/authz"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
	"github.com/bookedbarber/bookedbarber-api/internal/validators"
)

type AuthHandler struct {
	db     *gorm.DB
	tokens *authz.TokenCodec
}

func NewAuthHandler(db *gorm.DB, tokens *authz.TokenCodec) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens}
}

// --------- Requests ---------

type RegisterRequest struct {
	OrganizationName string `json:"organization_name" binding:"required"`
	OrganizationSlug string `json:"organization_slug" binding:"required"`
	OrganizationType string `json:"organization_type"`
	Phone            string `json:"organization_phone"`
	Address          string `json:"organization_address"`
	Timezone         string `json:"timezone"`

	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	UserPhone string `json:"user_phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	slug := strings.ToLower(strings.TrimSpace(req.OrganizationSlug))

	var count int64
	h.db.Model(&models.Organization{}).Where("slug = ?", slug).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug_already_exists"})
		return
	}

	orgType := req.OrganizationType
	if orgType == "" {
		orgType = models.OrgTypeIndependent
	}
	if !models.ValidOrganizationType(orgType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_organization_type"})
		return
	}

	email := validators.NormalizeEmail(req.Email)
	if !validators.IsEmailDomainValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_email_domain",
			"message": "The email domain does not appear to be valid.",
		})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_hash_password"})
		return
	}

	var (
		org  models.Organization
		user models.User
	)

	err = h.db.Transaction(func(tx *gorm.DB) error {
		org = models.Organization{
			Name:             req.OrganizationName,
			Slug:             slug,
			OrganizationType: orgType,
			Phone:            req.Phone,
			Address:          req.Address,
			Timezone:         req.Timezone,
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		user = models.User{
			Name:         req.Name,
			Email:        email,
			PasswordHash: string(hashed),
			Phone:        req.UserPhone,
			Role:         models.RoleAdmin,
			Active:       true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		// The founding member gets every permission flag.
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
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_register"})
		return
	}

	token, err := h.tokens.Issue(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"phone": user.Phone,
			"role":  user.Role,
		},
		"organization": gin.H{
			"id":                org.ID,
			"name":              org.Name,
			"slug":              org.Slug,
			"organization_type": org.OrganizationType,
			"phone":             org.Phone,
			"address":           org.Address,
		},
		"token": token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := validators.NormalizeEmail(req.Email)

	var user models.User
	if err := h.db.
		Where("email = ?", email).
		First(&user).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Inactive account"})
		return
	}

	token, err := h.tokens.Issue(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	var memberships []models.UserOrganization
	h.db.Preload("Organization").Where("user_id = ?", user.ID).Find(&memberships)

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"phone": user.Phone,
			"role":  user.Role,
		},
		"memberships": memberships,
		"token":       token,
	})
}
