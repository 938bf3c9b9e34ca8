package converter

import (
	"appointment-scheduler/internal/delivery/dto"
	"appointment-scheduler/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:        appointment.ID,
		PatientID: appointment.PatientID,
		DoctorID:  appointment.DoctorID,
		Date:      appointment.Date,
		TimeSlot:  appointment.TimeSlot,
		Status:    string(appointment.Status),
		Patient:   participantToResponse(appointment.Patient),
		Doctor:    participantToResponse(appointment.Doctor),
		CreatedAt: appointment.CreatedAt,
		UpdatedAt: appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

func participantToResponse(user *entity.User) *dto.ParticipantResponse {
	if user == nil {
		return nil
	}
	return &dto.ParticipantResponse{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	}
}
