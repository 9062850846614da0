package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bookedbarber/bookedbarber-api/internal/httperr"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
)

func TestStateTransitions(t *testing.T) {
	assert.NoError(t, CanCancel(StatusScheduled))
	assert.NoError(t, CanComplete(StatusScheduled))

	for _, terminal := range []Status{StatusCancelled, StatusCompleted} {
		assert.True(t, httperr.IsBusiness(CanCancel(terminal), "invalid_state"))
		assert.True(t, httperr.IsBusiness(CanComplete(terminal), "invalid_state"))
	}
}

func TestCancel(t *testing.T) {
	now := time.Now()
	ap := &models.Appointment{Status: string(StatusScheduled)}

	assert.NoError(t, Cancel(ap, now))
	assert.Equal(t, string(StatusCancelled), ap.Status)
	assert.Equal(t, now, *ap.CancelledAt)

	// second cancel is rejected and leaves the row untouched
	err := Cancel(ap, now.Add(time.Hour))
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
	assert.Equal(t, now, *ap.CancelledAt)
}

func TestComplete(t *testing.T) {
	now := time.Now()
	ap := &models.Appointment{Status: string(StatusScheduled)}

	assert.NoError(t, Complete(ap, now))
	assert.Equal(t, string(StatusCompleted), ap.Status)
	assert.Equal(t, now, *ap.CompletedAt)

	assert.True(t, httperr.IsBusiness(Complete(ap, now), "invalid_state"))
}
