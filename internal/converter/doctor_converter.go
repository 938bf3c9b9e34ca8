package converter

import (
	"appointment-scheduler/internal/delivery/dto"
	"appointment-scheduler/internal/domain/entity"
)

// DoctorToResponse converts a doctor User entity to DoctorResponse DTO
func DoctorToResponse(user *entity.User) *dto.DoctorResponse {
	if user == nil {
		return nil
	}

	hours := user.WorkingHours()
	response := &dto.DoctorResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		WorkingHours: dto.WorkingHoursResponse{
			Start: hours.Start,
			End:   hours.End,
		},
	}
	if user.DoctorProfile != nil {
		response.Specialization = user.DoctorProfile.Specialization
	}
	return response
}

// DoctorsToResponses converts a slice of doctor User entities to slice of DoctorResponse DTOs
func DoctorsToResponses(users []entity.User) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(users))
	for i := range users {
		responses[i] = *DoctorToResponse(&users[i])
	}
	return responses
}
