package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bookedbarber/bookedbarber-api/internal/httperr"
	"github.com/bookedbarber/bookedbarber-api/internal/middleware"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

// AnalyticsHandler serves org-level aggregates. Route is gated by the
// can_view_analytics flag.
type AnalyticsHandler struct {
	db *gorm.DB
}

func NewAnalyticsHandler(db *gorm.DB) *AnalyticsHandler {
	return &AnalyticsHandler{db: db}
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type topService struct {
	ServiceID uint   `json:"service_id"`
	Name      string `json:"name"`
	Count     int64  `json:"count"`
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	orgID := middleware.OrgID(c)

	from, to, err := parseRange(c)
	if err != nil {
		httperr.BadRequest(c, "invalid_range", "Invalid from/to date.")
		return
	}

	base := h.db.Model(&models.Appointment{}).
		Where("organization_id = ? AND start_time >= ? AND start_time < ?", orgID, from, to)

	var byStatus []statusCount
	if err := base.Session(&gorm.Session{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&byStatus).Error; err != nil {

		httperr.Internal(c, "analytics_failed", "Could not compute appointment counts.")
		return
	}

	// Revenue: completed appointments valued at the service price.
	var revenue decimal.NullDecimal
	if err := h.db.Model(&models.Appointment{}).
		Select("SUM(services.price)").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where(
			"appointments.organization_id = ? AND appointments.status = 'completed' AND appointments.start_time >= ? AND appointments.start_time < ?",
			orgID, from, to,
		).
		Scan(&revenue).Error; err != nil {

		httperr.Internal(c, "analytics_failed", "Could not compute revenue.")
		return
	}

	var top []topService
	if err := h.db.Model(&models.Appointment{}).
		Select("appointments.service_id, services.name, COUNT(*) as count").
		Joins("JOIN services ON services.id = appointments.service_id").
		Where(
			"appointments.organization_id = ? AND appointments.start_time >= ? AND appointments.start_time < ?",
			orgID, from, to,
		).
		Group("appointments.service_id, services.name").
		Order("count DESC").
		Limit(5).
		Scan(&top).Error; err != nil {

		httperr.Internal(c, "analytics_failed", "Could not compute top services.")
		return
	}

	total := decimal.Zero
	if revenue.Valid {
		total = revenue.Decimal
	}

	c.JSON(http.StatusOK, gin.H{
		"from":                 from.Format("2006-01-02"),
		"to":                   to.Format("2006-01-02"),
		"appointments_by_status": byStatus,
		"revenue":              total,
		"top_services":         top,
	})
}

// parseRange defaults to the trailing 30 days.
func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now.Add(24 * time.Hour)

	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t.Add(24 * time.Hour)
	}

	return from, to, nil
}
