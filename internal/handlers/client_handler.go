package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/httperr"
	"github.com/bookedbarber/bookedbarber-api/internal/middleware"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// ======================================================
// LIST CLIENTS (CRM)
// ======================================================

func (h *ClientHandler) List(c *gin.Context) {
	orgID := middleware.OrgID(c)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("organization_id = ?", orgID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var clients []models.Client
	if err := q.
		Order("created_at DESC").
		Find(&clients).Error; err != nil {

		httperr.Internal(c, "failed_to_list_clients", "Could not list clients.")
		return
	}

	c.JSON(http.StatusOK, clients)
}

// ======================================================
// LOYALTY BALANCE
// ======================================================

func (h *ClientHandler) LoyaltyBalance(c *gin.Context) {
	orgID := middleware.OrgID(c)
	clientID := c.Param("clientID")

	var client models.Client
	if err := h.db.
		Where("id = ? AND organization_id = ?", clientID, orgID).
		First(&client).Error; err != nil {

		httperr.NotFound(c, "client_not_found", "Client not found.")
		return
	}

	var balance int64
	if err := h.db.Model(&models.LoyaltyEntry{}).
		Where("client_id = ? AND organization_id = ?", client.ID, orgID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&balance).Error; err != nil {

		httperr.Internal(c, "failed_to_get_balance", "Could not compute loyalty balance.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client_id": client.ID,
		"points":    balance,
	})
}
