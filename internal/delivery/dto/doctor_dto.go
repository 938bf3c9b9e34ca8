package dto

import (
	"github.com/google/uuid"
)

// Response DTOs

type WorkingHoursResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DoctorResponse struct {
	ID             uuid.UUID            `json:"id"`
	Email          string               `json:"email"`
	FullName       string               `json:"full_name"`
	Specialization string               `json:"specialization,omitempty"`
	WorkingHours   WorkingHoursResponse `json:"working_hours"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
