package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bookedbarber/bookedbarber-api/internal/audit"
	domain "github.com/bookedbarber/bookedbarber-api/internal/domain/appointment"
	"github.com/bookedbarber/bookedbarber-api/internal/httperr"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
	"github.com/bookedbarber/bookedbarber-api/internal/timezone"
)

// fakeRepo is an in-memory domain.Repository good enough for the booking
// rules: one org, one service, configurable working hours and conflicts.
type fakeRepo struct {
	org     *models.Organization
	service *models.Service

	withinHours  bool
	hasConflict  bool
	workingHours *models.WorkingHours
	booked       []models.Appointment
	created      []*models.Appointment
	loyalty      []*models.LoyaltyEntry
	appointments map[uint]*models.Appointment

	serviceErr error
	loyaltyErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		org: &models.Organization{
			ID:                1,
			Name:              "Fade Factory",
			Timezone:          "America/New_York",
			MinAdvanceMinutes: 120,
		},
		service: &models.Service{
			ID:             10,
			OrganizationID: 1,
			Name:           "Haircut",
			DurationMin:    30,
			Price:          40,
		},
		withinHours:  true,
		appointments: map[uint]*models.Appointment{},
	}
}

func (f *fakeRepo) GetOrganizationByID(_ context.Context, id uint) (*models.Organization, error) {
	return f.org, nil
}

func (f *fakeRepo) GetService(_ context.Context, organizationID, serviceID uint) (*models.Service, error) {
	if f.serviceErr != nil {
		return nil, f.serviceErr
	}
	if f.service == nil || serviceID != f.service.ID {
		return nil, httperr.ErrBusiness("service_not_found")
	}
	return f.service, nil
}

func (f *fakeRepo) GetOrCreateClient(_ context.Context, organizationID uint, name, phone, email string) (*models.Client, error) {
	return &models.Client{ID: 77, OrganizationID: organizationID, Name: name, Phone: phone, Email: email}, nil
}

func (f *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	ap.ID = uint(len(f.created) + 1)
	f.created = append(f.created, ap)
	return nil
}

func (f *fakeRepo) AssertNoTimeConflict(_ context.Context, barberID uint, start, end time.Time) error {
	if f.hasConflict {
		return httperr.ErrBusiness("time_conflict")
	}
	return nil
}

func (f *fakeRepo) GetAppointmentForBarber(_ context.Context, appointmentID, barberID uint) (*models.Appointment, error) {
	ap, ok := f.appointments[appointmentID]
	if !ok || ap.BarberID != barberID {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	return ap, nil
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	f.appointments[ap.ID] = ap
	return nil
}

func (f *fakeRepo) GetWorkingHours(_ context.Context, barberID uint, weekday int) (*models.WorkingHours, error) {
	if f.workingHours != nil {
		return f.workingHours, nil
	}
	return &models.WorkingHours{BarberID: barberID, Weekday: weekday, StartTime: "09:00", EndTime: "18:00", Active: true}, nil
}

func (f *fakeRepo) ListAppointmentsForDay(_ context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error) {
	return f.booked, nil
}

func (f *fakeRepo) IsWithinWorkingHours(_ context.Context, barberID uint, start, end time.Time) (bool, error) {
	return f.withinHours, nil
}

func (f *fakeRepo) ListAppointmentsForPeriod(_ context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error) {
	return nil, nil
}

func (f *fakeRepo) AwardLoyaltyPoints(_ context.Context, entry *models.LoyaltyEntry) error {
	if f.loyaltyErr != nil {
		return f.loyaltyErr
	}
	f.loyalty = append(f.loyalty, entry)
	return nil
}

var _ domain.Repository = (*fakeRepo)(nil)

func nopAudit() *audit.Dispatcher {
	return audit.NewDispatcher(nil, zap.NewNop())
}

// tomorrowAt returns a date/time pair safely beyond the advance window.
func tomorrowAt(tz, hm string) (string, string) {
	d := timezone.NowIn(tz).Add(26 * time.Hour)
	return d.Format("2006-01-02"), hm
}

func validInput(repo *fakeRepo) CreateAppointmentInput {
	date, hm := tomorrowAt(repo.org.Timezone, "10:00")
	return CreateAppointmentInput{
		OrganizationID: 1,
		BarberID:       5,
		ClientName:     "Sam Jones",
		ClientPhone:    "+15550100",
		ServiceID:      10,
		Date:           date,
		Time:           hm,
	}
}

func TestCreateAppointment_Success(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCreateAppointment(repo, nopAudit())

	ap, err := uc.Execute(context.Background(), validInput(repo))
	require.NoError(t, err)

	assert.Equal(t, uint(1), ap.OrganizationID)
	assert.Equal(t, uint(5), ap.BarberID)
	assert.Equal(t, uint(77), ap.ClientID)
	assert.Equal(t, string(domain.StatusScheduled), ap.Status)
	assert.Equal(t, 30*time.Minute, ap.EndTime.Sub(ap.StartTime))
	assert.Len(t, repo.created, 1)
}

func TestCreateAppointment_InvalidTime(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCreateAppointment(repo, nopAudit())

	in := validInput(repo)
	in.Time = "25:99"

	_, err := uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "invalid_date_or_time"))
}

func TestCreateAppointment_TooSoon(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCreateAppointment(repo, nopAudit())

	in := validInput(repo)
	soon := timezone.NowIn(repo.org.Timezone).Add(30 * time.Minute)
	in.Date = soon.Format("2006-01-02")
	in.Time = soon.Format("15:04")

	_, err := uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "too_soon"))
}

func TestCreateAppointment_UnknownService(t *testing.T) {
	repo := newFakeRepo()
	uc := NewCreateAppointment(repo, nopAudit())

	in := validInput(repo)
	in.ServiceID = 999

	_, err := uc.Execute(context.Background(), in)
	assert.True(t, httperr.IsBusiness(err, "service_not_found"))
}

func TestCreateAppointment_OutsideWorkingHours(t *testing.T) {
	repo := newFakeRepo()
	repo.withinHours = false
	uc := NewCreateAppointment(repo, nopAudit())

	_, err := uc.Execute(context.Background(), validInput(repo))
	assert.True(t, httperr.IsBusiness(err, "outside_working_hours"))
}

func TestCreateAppointment_Conflict(t *testing.T) {
	repo := newFakeRepo()
	repo.hasConflict = true
	uc := NewCreateAppointment(repo, nopAudit())

	_, err := uc.Execute(context.Background(), validInput(repo))
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))
	assert.Empty(t, repo.created)
}

func TestCompleteAppointment_AwardsLoyalty(t *testing.T) {
	repo := newFakeRepo()
	repo.appointments[3] = &models.Appointment{
		ID:        3,
		BarberID:  5,
		ClientID:  77,
		ServiceID: 10,
		Status:    string(domain.StatusScheduled),
	}
	uc := NewCompleteAppointment(repo, nopAudit(), zap.NewNop())

	ap, err := uc.Execute(context.Background(), 1, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), ap.Status)

	require.Len(t, repo.loyalty, 1)
	assert.Equal(t, 40, repo.loyalty[0].Points)
	assert.Equal(t, "appointment_completed", repo.loyalty[0].Reason)
}

// A failed loyalty write must not undo the completion, but it must leave a
// trace: an error log entry and no silent success.
func TestCompleteAppointment_LoyaltyWriteFailureLogged(t *testing.T) {
	repo := newFakeRepo()
	repo.loyaltyErr = assert.AnError
	repo.appointments[3] = &models.Appointment{
		ID:        3,
		BarberID:  5,
		ClientID:  77,
		ServiceID: 10,
		Status:    string(domain.StatusScheduled),
	}

	core, logs := observer.New(zap.ErrorLevel)
	uc := NewCompleteAppointment(repo, nopAudit(), zap.New(core))

	ap, err := uc.Execute(context.Background(), 1, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), ap.Status)
	assert.Empty(t, repo.loyalty)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "loyalty award write failed", logs.All()[0].Message)
}

func TestCompleteAppointment_ServiceLookupFailureLogged(t *testing.T) {
	repo := newFakeRepo()
	repo.serviceErr = assert.AnError
	repo.appointments[3] = &models.Appointment{
		ID:        3,
		BarberID:  5,
		ClientID:  77,
		ServiceID: 10,
		Status:    string(domain.StatusScheduled),
	}

	core, logs := observer.New(zap.ErrorLevel)
	uc := NewCompleteAppointment(repo, nopAudit(), zap.New(core))

	_, err := uc.Execute(context.Background(), 1, 5, 3)
	require.NoError(t, err)
	assert.Empty(t, repo.loyalty)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "loyalty award skipped, service lookup failed", logs.All()[0].Message)
}

func TestCompleteAppointment_Terminal(t *testing.T) {
	repo := newFakeRepo()
	repo.appointments[3] = &models.Appointment{
		ID:       3,
		BarberID: 5,
		Status:   string(domain.StatusCancelled),
	}
	uc := NewCompleteAppointment(repo, nopAudit(), zap.NewNop())

	_, err := uc.Execute(context.Background(), 1, 5, 3)
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestCancelAppointment_WrongBarber(t *testing.T) {
	repo := newFakeRepo()
	repo.appointments[3] = &models.Appointment{
		ID:       3,
		BarberID: 6,
		Status:   string(domain.StatusScheduled),
	}
	uc := NewCancelAppointment(repo, nopAudit())

	_, err := uc.Execute(context.Background(), 1, 5, 3)
	assert.True(t, httperr.IsBusiness(err, "appointment_not_found"))
}
