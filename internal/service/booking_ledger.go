package service

import (
	"context"
	"errors"

	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/domain/repository"
	"appointment-scheduler/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound = apperror.New(apperror.KindNotFound, "Appointment not found")
	ErrSlotConflict        = apperror.New(apperror.KindConflict, "This time slot is already approved and booked. Please select another time.")
	ErrDuplicateBooking    = apperror.New(apperror.KindConflict, "You already have an active booking for this time slot")
	ErrConcurrentUpdate    = apperror.New(apperror.KindConflict, "Appointment was changed by another request, please reload and try again")
	ErrInvalidRole         = apperror.New(apperror.KindForbidden, "Forbidden: Invalid role.")
)

const appointmentEntity = "appointment"

// BookingLedger is the authoritative record of appointments.
// Every write runs in its own transaction so the slot checks and the write
// it guards are atomic with respect to concurrent requests.
type BookingLedger struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	auditService    AuditService
	engine          *StatusTransitionEngine
}

func NewBookingLedger(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	auditService AuditService,
	engine *StatusTransitionEngine,
) *BookingLedger {
	return &BookingLedger{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
		engine:          engine,
	}
}

// Create inserts a PENDING appointment.
//
// Flow (single transaction):
// 1. Reject if the slot is already APPROVED for another booking
// 2. Reject if this patient already holds an active booking for the slot
// 3. Insert the appointment
// 4. Record the audit entry
//
// Competing PENDING requests from different patients are accepted; exclusivity
// is enforced when the doctor approves one of them.
func (l *BookingLedger) Create(ctx context.Context, appointment *entity.Appointment) error {
	appointment.Status = entity.AppointmentStatusPending

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		approved, err := l.appointmentRepo.ExistsApproved(tx, appointment.DoctorID, appointment.Date, appointment.TimeSlot, uuid.Nil)
		if err != nil {
			l.log.Warnf("Failed to check approved slot: %+v", err)
			return err
		}
		if approved {
			return ErrSlotConflict
		}

		duplicate, err := l.appointmentRepo.ExistsActiveForPatient(tx, appointment.PatientID, appointment.DoctorID, appointment.Date, appointment.TimeSlot)
		if err != nil {
			l.log.Warnf("Failed to check existing booking: %+v", err)
			return err
		}
		if duplicate {
			return ErrDuplicateBooking
		}

		if err := l.appointmentRepo.Create(tx, appointment); err != nil {
			l.log.Warnf("Failed to insert appointment: %+v", err)
			return err
		}

		return l.auditService.LogCreate(ctx, tx, appointment.PatientID, entity.AuditActionAppointmentCreate,
			appointmentEntity, appointment.ID.String(), appointmentSnapshot(appointment))
	})
	if err != nil {
		return apperror.EnsureKind(err)
	}

	l.log.Infof("Appointment created: id=%s, doctor=%s, date=%s, slot=%s", appointment.ID, appointment.DoctorID, appointment.Date, appointment.TimeSlot)
	return nil
}

// Transition moves an appointment to status `to` on behalf of actor.
//
// Flow (single transaction):
// 1. Lock the appointment row
// 2. Authorize the change (ownership, state table, actor party)
// 3. For approvals, check no other appointment holds the slot
// 4. Update guarded by the observed status
// 5. Record the audit entry
//
// Two approvals racing for one slot under READ COMMITTED can both pass step 3;
// the partial unique index then rejects the second update, which is reported
// as the same approval conflict.
func (l *BookingLedger) Transition(ctx context.Context, actor entity.Actor, id uuid.UUID, to entity.AppointmentStatus) (*entity.Appointment, error) {
	var updated *entity.Appointment

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appointment, err := l.appointmentRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			l.log.Warnf("Failed to lock appointment %s: %+v", id, err)
			return err
		}
		if appointment == nil {
			return ErrAppointmentNotFound
		}

		if err := l.engine.Authorize(actor, appointment, to); err != nil {
			return err
		}

		if l.engine.RequiresApprovalGuard(to) {
			conflict, err := l.appointmentRepo.ExistsApproved(tx, appointment.DoctorID, appointment.Date, appointment.TimeSlot, appointment.ID)
			if err != nil {
				l.log.Warnf("Failed to check approval conflict for %s: %+v", id, err)
				return err
			}
			if conflict {
				return ErrApprovalConflict
			}
		}

		from := appointment.Status
		affected, err := l.appointmentRepo.UpdateStatus(tx, appointment.ID, from, to)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrConcurrentUpdate
		}

		if err := l.auditService.LogUpdate(ctx, tx, actor.ID, entity.AuditActionForStatus(to),
			appointmentEntity, appointment.ID.String(), string(from), string(to)); err != nil {
			return err
		}

		appointment.Status = to
		updated = appointment
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrApprovalConflict
		}
		if apperror.KindOf(err) == apperror.KindUnknown {
			l.log.Warnf("Failed to update appointment %s to %s: %+v", id, to, err)
		}
		return nil, apperror.EnsureKind(err)
	}

	l.log.Infof("Appointment status updated: id=%s, status=%s, actor=%s", id, to, actor.ID)
	return updated, nil
}

// FindByID returns the appointment with both participants loaded
func (l *BookingLedger) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := l.appointmentRepo.FindByID(l.db.WithContext(ctx), id)
	if err != nil {
		l.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, apperror.Unavailable(err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

// FindByActor returns the doctor's schedule or the patient's bookings
func (l *BookingLedger) FindByActor(ctx context.Context, actor entity.Actor) ([]entity.Appointment, error) {
	var (
		appointments []entity.Appointment
		err          error
	)

	switch actor.Role {
	case entity.RoleDoctor:
		appointments, err = l.appointmentRepo.FindByDoctorID(l.db.WithContext(ctx), actor.ID)
	case entity.RolePatient:
		appointments, err = l.appointmentRepo.FindByPatientID(l.db.WithContext(ctx), actor.ID)
	default:
		return nil, ErrInvalidRole
	}
	if err != nil {
		l.log.Warnf("Failed to find appointments for %s %s: %+v", actor.Role, actor.ID, err)
		return nil, apperror.Unavailable(err)
	}
	return appointments, nil
}

// BookedSlots returns the labels taken out of availability for a doctor's day
func (l *BookingLedger) BookedSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	slots, err := l.appointmentRepo.FindBookedSlots(l.db.WithContext(ctx), doctorID, date, entity.BlockingStatuses)
	if err != nil {
		l.log.Warnf("Failed to find booked slots for doctor %s on %s: %+v", doctorID, date, err)
		return nil, apperror.Unavailable(err)
	}
	return slots, nil
}

// History returns the audit entries of an appointment
func (l *BookingLedger) History(ctx context.Context, id uuid.UUID) ([]entity.AuditLog, error) {
	logs, err := l.auditService.History(ctx, l.db, id.String())
	if err != nil {
		return nil, apperror.Unavailable(err)
	}
	return logs, nil
}

func appointmentSnapshot(a *entity.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"patient_id": a.PatientID.String(),
		"doctor_id":  a.DoctorID.String(),
		"date":       a.Date,
		"time_slot":  a.TimeSlot,
		"status":     string(a.Status),
	}
}

// isUniqueViolation checks for a unique index violation, either already
// translated by gorm or as a raw PostgreSQL error (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
