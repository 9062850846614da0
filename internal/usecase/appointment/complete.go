package appointment

import (
	"context"

	"go.uber.org/zap"

	"github.com/bookedbarber/bookedbarber-api/internal/audit"
	domain "github.com/bookedbarber/bookedbarber-api/internal/domain/appointment"
	"github.com/bookedbarber/bookedbarber-api/internal/httperr"
	"github.com/bookedbarber/bookedbarber-api/internal/models"
	"github.com/bookedbarber/bookedbarber-api/internal/timezone"
)

type CompleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	log   *zap.Logger
}

func NewCompleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	log *zap.Logger,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:  repo,
		audit: audit,
		log:   log,
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	organizationID uint,
	barberID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	org, err := uc.repo.GetOrganizationByID(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentForBarber(ctx, appointmentID, barberID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	now := timezone.NowIn(org.Timezone)
	if err := domain.Complete(ap, now); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	// Loyalty: one point per whole currency unit of the service price.
	// The completion is already committed at this point, so a failed award
	// must not undo it; it is logged and audited for manual repair.
	uc.awardLoyalty(ctx, organizationID, ap)

	uc.audit.Dispatch(audit.Event{
		OrganizationID: organizationID,
		UserID:         &barberID,
		Action:         "appointment_completed",
		Entity:         "appointment",
		EntityID:       &ap.ID,
	})

	return ap, nil
}

func (uc *CompleteAppointment) awardLoyalty(
	ctx context.Context,
	organizationID uint,
	ap *models.Appointment,
) {
	service, err := uc.repo.GetService(ctx, organizationID, ap.ServiceID)
	if err != nil {
		uc.log.Error("loyalty award skipped, service lookup failed",
			zap.Uint("appointment_id", ap.ID),
			zap.Uint("service_id", ap.ServiceID),
			zap.Error(err))
		uc.dispatchLoyaltyFailure(organizationID, ap)
		return
	}

	points := int(service.Price)
	if points <= 0 {
		return
	}

	entry := &models.LoyaltyEntry{
		OrganizationID: organizationID,
		ClientID:       ap.ClientID,
		AppointmentID:  &ap.ID,
		Points:         points,
		Reason:         "appointment_completed",
	}
	if err := uc.repo.AwardLoyaltyPoints(ctx, entry); err != nil {
		uc.log.Error("loyalty award write failed",
			zap.Uint("appointment_id", ap.ID),
			zap.Uint("client_id", ap.ClientID),
			zap.Int("points", points),
			zap.Error(err))
		uc.dispatchLoyaltyFailure(organizationID, ap)
	}
}

func (uc *CompleteAppointment) dispatchLoyaltyFailure(organizationID uint, ap *models.Appointment) {
	uc.audit.Dispatch(audit.Event{
		OrganizationID: organizationID,
		Action:         "loyalty_award_failed",
		Entity:         "appointment",
		EntityID:       &ap.ID,
	})
}
