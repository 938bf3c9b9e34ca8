package service

import (
	"fmt"

	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/pkg/apperror"
)

var (
	ErrNotParticipant        = apperror.New(apperror.KindForbidden, "You are not authorized to update this appointment. Only the assigned doctor or the booking patient can make changes.")
	ErrDoctorOnlyTransition  = apperror.New(apperror.KindForbidden, "Only the assigned doctor can make this status change")
	ErrPatientCancelApproved = apperror.New(apperror.KindForbidden, "Cannot cancel an approved appointment. Please contact the doctor directly.")
	ErrAppointmentCompleted  = apperror.New(apperror.KindConflict, "Cannot change a completed appointment")
	ErrAppointmentCancelled  = apperror.New(apperror.KindConflict, "Appointment is already cancelled")
	ErrIllegalTransition     = apperror.New(apperror.KindConflict, "This status change is not allowed")
	ErrApprovalConflict      = apperror.New(apperror.KindConflict, "Cannot approve this appointment as it conflicts with another approved appointment at the same time")
)

// party is the relation of an actor to one appointment
type party int

const (
	partyNone party = iota
	partyDoctor
	partyPatient
)

type transition struct {
	from entity.AppointmentStatus
	to   entity.AppointmentStatus
}

// transitions lists every legal status change and who may request it.
// Terminal statuses have no outgoing entries.
var transitions = map[transition][]party{
	{entity.AppointmentStatusPending, entity.AppointmentStatusApproved}:   {partyDoctor},
	{entity.AppointmentStatusPending, entity.AppointmentStatusCompleted}:  {partyDoctor},
	{entity.AppointmentStatusPending, entity.AppointmentStatusCancelled}:  {partyDoctor, partyPatient},
	{entity.AppointmentStatusApproved, entity.AppointmentStatusCompleted}: {partyDoctor},
	{entity.AppointmentStatusApproved, entity.AppointmentStatusCancelled}: {partyDoctor},
}

// StatusTransitionEngine decides whether an actor may move an appointment to a new status.
// It never touches storage; the approval guard is evaluated by the BookingLedger
// in the same transaction that applies the change.
type StatusTransitionEngine struct{}

func NewStatusTransitionEngine() *StatusTransitionEngine {
	return &StatusTransitionEngine{}
}

// Authorize checks ownership first, then the state table, then the actor's party
func (e *StatusTransitionEngine) Authorize(actor entity.Actor, appointment *entity.Appointment, to entity.AppointmentStatus) error {
	p := partyOf(actor, appointment)
	if p == partyNone {
		return ErrNotParticipant
	}

	if appointment.Status.IsTerminal() {
		if appointment.Status == entity.AppointmentStatusCompleted {
			return ErrAppointmentCompleted
		}
		return ErrAppointmentCancelled
	}

	allowed, ok := transitions[transition{from: appointment.Status, to: to}]
	if !ok {
		return fmt.Errorf("%w: %s to %s", ErrIllegalTransition, appointment.Status, to)
	}

	for _, a := range allowed {
		if a == p {
			return nil
		}
	}

	if p == partyPatient && appointment.IsApproved() && to == entity.AppointmentStatusCancelled {
		return ErrPatientCancelApproved
	}
	return ErrDoctorOnlyTransition
}

// RequiresApprovalGuard reports whether moving to status needs the slot exclusivity check
func (e *StatusTransitionEngine) RequiresApprovalGuard(to entity.AppointmentStatus) bool {
	return to == entity.AppointmentStatusApproved
}

func partyOf(actor entity.Actor, appointment *entity.Appointment) party {
	switch {
	case actor.IsDoctor() && appointment.DoctorID == actor.ID:
		return partyDoctor
	case actor.IsPatient() && appointment.PatientID == actor.ID:
		return partyPatient
	default:
		return partyNone
	}
}
