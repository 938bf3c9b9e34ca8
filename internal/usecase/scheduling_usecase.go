package usecase

import (
	"context"
	"time"

	"appointment-scheduler/internal/converter"
	"appointment-scheduler/internal/delivery/dto"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/domain/repository"
	"appointment-scheduler/internal/service"
	"appointment-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound      = apperror.New(apperror.KindNotFound, "Doctor not found. Please select a valid doctor.")
	ErrInvalidDate         = apperror.New(apperror.KindInvalidInput, "Invalid date format. Please select a valid date (YYYY-MM-DD).")
	ErrPastDate            = apperror.New(apperror.KindInvalidInput, "Cannot book appointments for past dates. Please select a future date.")
	ErrMissingFields       = apperror.New(apperror.KindInvalidInput, "All fields are required: doctor, date, and time slot.")
	ErrSlotNotOffered      = apperror.New(apperror.KindInvalidInput, "This time slot is not offered by the doctor on the selected date")
	ErrInvalidStatus       = apperror.New(apperror.KindInvalidInput, "Invalid status, use one of PENDING, APPROVED, COMPLETED, CANCELLED")
	ErrPatientsOnly        = apperror.New(apperror.KindForbidden, "Forbidden: Only patients can book appointments.")
	ErrAppointmentNotOwned = apperror.New(apperror.KindForbidden, "You can only access your own appointments")
)

// Clock returns the current time
type Clock func() time.Time

type SchedulingUsecase interface {
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error)
	BookAppointment(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, date, timeSlot string) (*dto.AppointmentResponse, error)
	ListAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	GetAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, status string) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	GetAppointmentHistory(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AuditLogListResponse, error)
}

type schedulingUsecase struct {
	db       *gorm.DB
	log      *logrus.Logger
	userRepo repository.UserRepository
	ledger   *service.BookingLedger
	cache    service.AvailabilityCache
	location *time.Location
	now      Clock
}

func NewSchedulingUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	ledger *service.BookingLedger,
	cache service.AvailabilityCache,
	location *time.Location,
	now Clock,
) SchedulingUsecase {
	if cache == nil {
		cache = service.NoopAvailabilityCache{}
	}
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &schedulingUsecase{
		db:       db,
		log:      log,
		userRepo: userRepo,
		ledger:   ledger,
		cache:    cache,
		location: location,
		now:      now,
	}
}

// GetAvailableSlots returns the doctor's bookable slots for a date.
//
// Flow:
// 1. Validate date is well-formed and not in the past
// 2. Resolve the doctor and their working hours
// 3. Generate the day's grid and remove PENDING/APPROVED slots (cached per doctor/date)
func (u *schedulingUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, date string) (*dto.AvailableSlotsResponse, error) {
	day, err := u.parseBookableDate(date)
	if err != nil {
		return nil, err
	}

	doctor, err := u.findDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	slots, err := u.cache.GetOrLoad(ctx, doctorID, date, func(ctx context.Context) ([]string, error) {
		candidates, err := service.GenerateSlots(doctor.WorkingHours(), day)
		if err != nil {
			u.log.Warnf("Failed to generate slots for doctor %s: %+v", doctorID, err)
			return nil, err
		}

		booked, err := u.ledger.BookedSlots(ctx, doctorID, date)
		if err != nil {
			return nil, err
		}

		return service.ResolveAvailability(candidates, booked), nil
	})
	if err != nil {
		return nil, err
	}

	return &dto.AvailableSlotsResponse{
		DoctorID: doctorID,
		Date:     date,
		Slots:    slots,
		Total:    len(slots),
	}, nil
}

// BookAppointment creates a PENDING appointment for the calling patient.
//
// Flow:
// 1. Only patients may book, and every field is required
// 2. Validate date and doctor
// 3. The time slot must be on the doctor's grid for that date
// 4. Ledger insert (rejects slots already APPROVED)
// 5. Invalidate cached availability
func (u *schedulingUsecase) BookAppointment(ctx context.Context, actor entity.Actor, doctorID uuid.UUID, date, timeSlot string) (*dto.AppointmentResponse, error) {
	if !actor.IsPatient() {
		return nil, ErrPatientsOnly
	}
	if doctorID == uuid.Nil || date == "" || timeSlot == "" {
		return nil, ErrMissingFields
	}

	day, err := u.parseBookableDate(date)
	if err != nil {
		return nil, err
	}

	doctor, err := u.findDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	grid, err := service.GenerateSlots(doctor.WorkingHours(), day)
	if err != nil {
		u.log.Warnf("Failed to generate slots for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if !service.ContainsSlot(grid, timeSlot) {
		return nil, ErrSlotNotOffered
	}

	appointment := &entity.Appointment{
		PatientID: actor.ID,
		DoctorID:  doctorID,
		Date:      date,
		TimeSlot:  timeSlot,
	}
	if err := u.ledger.Create(ctx, appointment); err != nil {
		return nil, err
	}

	u.cache.Invalidate(ctx, doctorID, date)

	return u.reload(ctx, appointment), nil
}

// ListAppointments returns the doctor's schedule or the patient's bookings
func (u *schedulingUsecase) ListAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	appointments, err := u.ledger.FindByActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *schedulingUsecase) GetAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.findOwnedAppointment(ctx, actor, appointmentID)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

// UpdateStatus applies a status change requested by a participant.
// Role, ownership and the approval guard are re-checked on every call.
func (u *schedulingUsecase) UpdateStatus(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, status string) (*dto.AppointmentResponse, error) {
	to, ok := entity.ParseAppointmentStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	updated, err := u.ledger.Transition(ctx, actor, appointmentID, to)
	if err != nil {
		return nil, err
	}

	u.cache.Invalidate(ctx, updated.DoctorID, updated.Date)

	return u.reload(ctx, updated), nil
}

// CancelAppointment cancels on behalf of either participant; the transition
// rules decide whether this actor may cancel in the current status
func (u *schedulingUsecase) CancelAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	return u.UpdateStatus(ctx, actor, appointmentID, string(entity.AppointmentStatusCancelled))
}

func (u *schedulingUsecase) GetAppointmentHistory(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AuditLogListResponse, error) {
	if _, err := u.findOwnedAppointment(ctx, actor, appointmentID); err != nil {
		return nil, err
	}

	logs, err := u.ledger.History(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

// parseBookableDate parses YYYY-MM-DD in the application time zone and rejects past days
func (u *schedulingUsecase) parseBookableDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(service.DateLayout, date, u.location)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	now := u.now().In(u.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, u.location)
	if day.Before(today) {
		return time.Time{}, ErrPastDate
	}
	return day, nil
}

func (u *schedulingUsecase) findDoctor(ctx context.Context, doctorID uuid.UUID) (*entity.User, error) {
	doctor, err := u.userRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, apperror.Unavailable(err)
	}
	if doctor == nil || !doctor.IsDoctor() || !doctor.IsActive {
		return nil, ErrDoctorNotFound
	}
	return doctor, nil
}

func (u *schedulingUsecase) findOwnedAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.ledger.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !appointment.IsParticipant(actor.ID) {
		return nil, ErrAppointmentNotOwned
	}
	return appointment, nil
}

// reload fetches the appointment with participants for the response,
// falling back to what the caller already has
func (u *schedulingUsecase) reload(ctx context.Context, appointment *entity.Appointment) *dto.AppointmentResponse {
	full, err := u.ledger.FindByID(ctx, appointment.ID)
	if err != nil {
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment)
	}
	return converter.AppointmentToResponse(full)
}
