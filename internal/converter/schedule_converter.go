package converter

import (
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/service"
)

// ScheduleToResponse converts a doctor's Schedule to ScheduleResponse DTO
func ScheduleToResponse(doctorID string, schedule *entity.Schedule) *dto.ScheduleResponse {
	if schedule == nil {
		return nil
	}

	return &dto.ScheduleResponse{
		DoctorID:       doctorID,
		Available:      nonNil(schedule.Available),
		Booked:         nonNil(schedule.Booked),
		AppointmentIDs: nonNil(schedule.AppointmentIDs),
	}
}

// AvailabilityToResponses converts doctor availability to DoctorSlotsResponse DTOs
func AvailabilityToResponses(availability []service.DoctorAvailability) []dto.DoctorSlotsResponse {
	responses := make([]dto.DoctorSlotsResponse, len(availability))
	for i, a := range availability {
		responses[i] = dto.DoctorSlotsResponse{
			DoctorID:       a.DoctorID,
			DoctorName:     a.DoctorName,
			Specialization: a.Specialization,
			Slots:          nonNil(a.Slots),
		}
	}
	return responses
}

// DoctorSchedulesToResponses converts full doctor schedules to DoctorScheduleResponse DTOs
func DoctorSchedulesToResponses(schedules []service.DoctorSchedule) []dto.DoctorScheduleResponse {
	responses := make([]dto.DoctorScheduleResponse, len(schedules))
	for i, s := range schedules {
		responses[i] = dto.DoctorScheduleResponse{
			DoctorID:       s.DoctorID,
			DoctorName:     s.DoctorName,
			Specialization: s.Specialization,
			Available:      nonNil(s.Schedule.Available),
			Booked:         nonNil(s.Schedule.Booked),
			AppointmentIDs: nonNil(s.Schedule.AppointmentIDs),
		}
	}
	return responses
}
