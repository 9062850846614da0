package handlers

import (
	"time"

	"github.com/bookedbarber/bookedbarber-api/internal/models"
	"github.com/bookedbarber/bookedbarber-api/internal/timezone"
)

// Booking timestamps are always interpreted in the organization's timezone.

func locationFromOrg(org *models.Organization) *time.Location {
	if org != nil {
		return timezone.Location(org.Timezone)
	}
	return timezone.Location("")
}

func parseDateInOrg(org *models.Organization, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		locationFromOrg(org),
	)
}
