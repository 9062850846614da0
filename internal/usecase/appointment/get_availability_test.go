package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bookedbarber/bookedbarber-api/internal/domain/appointment"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
	"github.com/bookedbarber/bookedbarber-api/internal/timezone"
)

func availabilityDate(tz string) time.Time {
	loc := timezone.Location(tz)
	return time.Date(2026, 9, 14, 0, 0, 0, 0, loc)
}

func slotStarts(slots []domain.TimeSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start)
	}
	return out
}

func TestGetAvailability_FullDay(t *testing.T) {
	repo := newFakeRepo()
	repo.workingHours = &models.WorkingHours{
		BarberID: 5, StartTime: "09:00", EndTime: "11:00", Active: true,
	}
	uc := NewGetAvailability(repo)

	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		OrganizationID: 1,
		BarberID:       5,
		ServiceID:      10,
		Date:           availabilityDate(repo.org.Timezone),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, slotStarts(slots))
}

func TestGetAvailability_SkipsLunch(t *testing.T) {
	repo := newFakeRepo()
	repo.workingHours = &models.WorkingHours{
		BarberID:  5,
		StartTime: "09:00", EndTime: "12:00",
		LunchStart: "10:00", LunchEnd: "11:00",
		Active: true,
	}
	uc := NewGetAvailability(repo)

	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		OrganizationID: 1,
		BarberID:       5,
		ServiceID:      10,
		Date:           availabilityDate(repo.org.Timezone),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "09:30", "11:00", "11:30"}, slotStarts(slots))
}

func TestGetAvailability_SkipsBookedSlots(t *testing.T) {
	repo := newFakeRepo()
	repo.workingHours = &models.WorkingHours{
		BarberID: 5, StartTime: "09:00", EndTime: "11:00", Active: true,
	}

	date := availabilityDate(repo.org.Timezone)
	loc := date.Location()
	repo.booked = []models.Appointment{{
		StartTime: time.Date(2026, 9, 14, 9, 30, 0, 0, loc),
		EndTime:   time.Date(2026, 9, 14, 10, 0, 0, 0, loc),
	}}

	uc := NewGetAvailability(repo)

	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		OrganizationID: 1,
		BarberID:       5,
		ServiceID:      10,
		Date:           date,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"09:00", "10:00", "10:30"}, slotStarts(slots))
}

func TestGetAvailability_DayOff(t *testing.T) {
	repo := newFakeRepo()
	repo.workingHours = &models.WorkingHours{
		BarberID: 5, StartTime: "09:00", EndTime: "18:00", Active: false,
	}
	uc := NewGetAvailability(repo)

	slots, err := uc.Execute(context.Background(), domain.AvailabilityInput{
		OrganizationID: 1,
		BarberID:       5,
		ServiceID:      10,
		Date:           availabilityDate(repo.org.Timezone),
	})
	require.NoError(t, err)
	assert.Empty(t, slots)
}
