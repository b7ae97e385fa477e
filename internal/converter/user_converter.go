package converter

import (
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO. The credential hash is never exposed.
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Role:          string(user.Role),
		Email:         user.Email,
		ContactNumber: user.ContactNumber,
		FirstLogin:    user.FirstLogin,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}

	if user.Doctor != nil {
		response.Doctor = &dto.DoctorInfoResponse{
			Specialization: user.Doctor.Specialization,
			AvailableSlots: len(user.Doctor.Schedule.Available),
			PatientIDs:     nonNil(user.Doctor.PatientIDs),
		}
	}
	if user.Patient != nil {
		response.Patient = &dto.PatientInfoResponse{
			MedicalRecordID: user.Patient.MedicalRecordID,
			AppointmentIDs:  nonNil(user.Patient.AppointmentIDs),
		}
	}

	return response
}

// UsersToResponses converts a slice of User entities to slice of UserResponse DTOs
func UsersToResponses(users []*entity.User) []dto.UserResponse {
	responses := make([]dto.UserResponse, len(users))
	for i, user := range users {
		responses[i] = *UserToResponse(user)
	}
	return responses
}

// nonNil keeps empty lists rendered as [] instead of null
func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
