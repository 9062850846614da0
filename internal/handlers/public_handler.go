package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/bookedbarber/bookedbarber-api/internal/domain/appointment"
	"github.com/bookedbarber/bookedbarber-api/internal/httperr"
	"github.com/bookedbarber/bookedbarber-api/internal/httpresp"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
	ucAppointment "github.com/bookedbarber/bookedbarber-api/internal/usecase/appointment"
)

// ======================================================
// Public booking API, addressed by organization slug.
// No authentication; everything is scoped to the slug.
// ======================================================

type PublicHandler struct {
	db             *gorm.DB
	createUC       *ucAppointment.CreateAppointment
	availabilityUC *ucAppointment.GetAvailability
}

func NewPublicHandler(
	db *gorm.DB,
	createUC *ucAppointment.CreateAppointment,
	availabilityUC *ucAppointment.GetAvailability,
) *PublicHandler {
	return &PublicHandler{
		db:             db,
		createUC:       createUC,
		availabilityUC: availabilityUC,
	}
}

func (h *PublicHandler) GetOrganization(c *gin.Context) {
	org, ok := h.loadOrg(c)
	if !ok {
		return
	}

	httpresp.OK(c, gin.H{
		"id":       org.ID,
		"name":     org.Name,
		"slug":     org.Slug,
		"phone":    org.Phone,
		"address":  org.Address,
		"timezone": org.Timezone,
		"logo_url": org.LogoURL,
	})
}

func (h *PublicHandler) ListServices(c *gin.Context) {
	org, ok := h.loadOrg(c)
	if !ok {
		return
	}

	var services []models.Service
	if err := h.db.
		Where("organization_id = ? AND active = true", org.ID).
		Order("name ASC").
		Find(&services).Error; err != nil {

		httperr.Internal(c, "list_failed", "Could not list services.")
		return
	}

	httpresp.List(c, services)
}

// ListBarbers exposes the bookable staff of a shop: members whose account
// role is barber or admin.
func (h *PublicHandler) ListBarbers(c *gin.Context) {
	org, ok := h.loadOrg(c)
	if !ok {
		return
	}

	type barber struct {
		ID        uint   `json:"id"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}

	var barbers []barber
	if err := h.db.Model(&models.User{}).
		Select("users.id, users.name, users.avatar_url").
		Joins("JOIN user_organizations ON user_organizations.user_id = users.id").
		Where(
			"user_organizations.organization_id = ? AND users.active = true AND users.role IN ?",
			org.ID, []string{string(models.RoleBarber), string(models.RoleAdmin)},
		).
		Order("users.name ASC").
		Scan(&barbers).Error; err != nil {

		httperr.Internal(c, "list_failed", "Could not list barbers.")
		return
	}

	httpresp.List(c, barbers)
}

func (h *PublicHandler) GetAvailability(c *gin.Context) {
	org, ok := h.loadOrg(c)
	if !ok {
		return
	}

	barberID, err := strconv.ParseUint(c.Query("barber_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_barber", "barber_id is required.")
		return
	}
	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service", "service_id is required.")
		return
	}

	if ok, err := h.barberBelongsToOrg(uint(barberID), org.ID); err != nil {
		httperr.Internal(c, "lookup_failed", "Could not verify barber.")
		return
	} else if !ok {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}

	date, err := parseDateInOrg(org, c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "date must be YYYY-MM-DD.")
		return
	}

	slots, err := h.availabilityUC.Execute(c.Request.Context(), domain.AvailabilityInput{
		OrganizationID: org.ID,
		BarberID:       uint(barberID),
		ServiceID:      uint(serviceID),
		Date:           date,
	})
	if err != nil {
		if httperr.IsBusiness(err, "service_not_found") {
			httperr.NotFound(c, "service_not_found", "Service not found.")
			return
		}
		httperr.Internal(c, "availability_failed", "Could not compute availability.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"date": c.Query("date"), "slots": slots})
}

type publicBookingRequest struct {
	BarberID    uint   `json:"barber_id" binding:"required"`
	ServiceID   uint   `json:"service_id" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`
	Notes       string `json:"notes"`
}

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	org, ok := h.loadOrg(c)
	if !ok {
		return
	}

	var req publicBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_payload", "Missing required booking fields.")
		return
	}

	if ok, err := h.barberBelongsToOrg(req.BarberID, org.ID); err != nil {
		httperr.Internal(c, "lookup_failed", "Could not verify barber.")
		return
	} else if !ok {
		httperr.NotFound(c, "barber_not_found", "Barber not found.")
		return
	}

	ap, err := h.createUC.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		OrganizationID: org.ID,
		BarberID:       req.BarberID,
		ServiceID:      req.ServiceID,
		Date:           req.Date,
		Time:           req.Time,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		ClientEmail:    req.ClientEmail,
		Notes:          req.Notes,
	})
	if err != nil {
		mapCreateErrors(c, err)
		return
	}

	httpresp.Created(c, gin.H{
		"id":         ap.ID,
		"start_time": ap.StartTime,
		"end_time":   ap.EndTime,
		"status":     ap.Status,
	})
}

func (h *PublicHandler) loadOrg(c *gin.Context) (*models.Organization, bool) {
	slug := c.Param("slug")

	var org models.Organization
	err := h.db.Where("slug = ?", slug).First(&org).Error
	if err == gorm.ErrRecordNotFound {
		httperr.NotFound(c, "organization_not_found", "Organization not found.")
		return nil, false
	}
	if err != nil {
		httperr.Internal(c, "lookup_failed", "Could not load organization.")
		return nil, false
	}

	return &org, true
}

func (h *PublicHandler) barberBelongsToOrg(barberID, orgID uint) (bool, error) {
	var count int64
	err := h.db.Model(&models.UserOrganization{}).
		Where("user_id = ? AND organization_id = ?", barberID, orgID).
		Count(&count).Error
	return count > 0, err
}
