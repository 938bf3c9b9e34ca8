package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID string `json:"doctor_id" validate:"required,uuid"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot string `json:"time_slot" validate:"required,timeslot"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED COMPLETED CANCELLED"`
}

// Response DTOs

// ParticipantResponse is the counterpart shown on an appointment
type ParticipantResponse struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
}

type AppointmentResponse struct {
	ID        uuid.UUID            `json:"id"`
	PatientID uuid.UUID            `json:"patient_id"`
	DoctorID  uuid.UUID            `json:"doctor_id"`
	Date      string               `json:"date"`
	TimeSlot  string               `json:"time_slot"`
	Status    string               `json:"status"`
	Patient   *ParticipantResponse `json:"patient,omitempty"`
	Doctor    *ParticipantResponse `json:"doctor,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type AvailableSlotsResponse struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Slots    []string  `json:"slots"`
	Total    int       `json:"total"`
}
