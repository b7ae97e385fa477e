package converter

import (
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/service"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appt *entity.Appointment) *dto.AppointmentResponse {
	if appt == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:          appt.ID,
		PatientID:   appt.PatientID,
		DoctorID:    appt.DoctorID,
		DoctorName:  appt.DoctorName,
		Slot:        appt.Slot,
		ScheduledAt: appt.ScheduledAt,
		Status:      string(appt.Status),
		CreatedAt:   appt.CreatedAt,
		UpdatedAt:   appt.UpdatedAt,
	}

	if appt.Outcome != nil {
		prescriptions := make([]dto.PrescriptionResponse, len(appt.Outcome.Prescriptions))
		for i, p := range appt.Outcome.Prescriptions {
			prescriptions[i] = PrescriptionToResponse(p)
		}
		response.Outcome = &dto.OutcomeResponse{
			AppointmentTime:   appt.Outcome.AppointmentTime,
			ServiceType:       appt.Outcome.ServiceType,
			ConsultationNotes: appt.Outcome.ConsultationNotes,
			Prescriptions:     prescriptions,
			RecordedAt:        appt.Outcome.RecordedAt,
		}
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appts []*entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appts))
	for i, appt := range appts {
		responses[i] = *AppointmentToResponse(appt)
	}
	return responses
}

func PrescriptionToResponse(p entity.Prescription) dto.PrescriptionResponse {
	return dto.PrescriptionResponse{
		ID:             p.ID,
		MedicationName: p.MedicationName,
		Quantity:       p.Quantity,
		Status:         string(p.Status),
		DispensedBy:    p.DispensedBy,
		DispensedAt:    p.DispensedAt,
	}
}

// PrescriptionViewToResponse includes the owning appointment of the prescription
func PrescriptionViewToResponse(view *service.PrescriptionView) *dto.PrescriptionResponse {
	if view == nil {
		return nil
	}

	response := PrescriptionToResponse(view.Prescription)
	response.AppointmentID = view.AppointmentID
	response.PatientID = view.PatientID
	response.DoctorID = view.DoctorID
	response.DoctorName = view.DoctorName
	return &response
}

func PrescriptionViewsToResponses(views []service.PrescriptionView) []dto.PrescriptionResponse {
	responses := make([]dto.PrescriptionResponse, len(views))
	for i := range views {
		responses[i] = *PrescriptionViewToResponse(&views[i])
	}
	return responses
}

// DispenseResultToResponse converts a dispense result to DispenseResponse DTO
func DispenseResultToResponse(result *service.DispenseResult) *dto.DispenseResponse {
	if result == nil {
		return nil
	}

	prescription := PrescriptionToResponse(result.Prescription)
	prescription.AppointmentID = result.Appointment.ID
	prescription.PatientID = result.Appointment.PatientID
	prescription.DoctorID = result.Appointment.DoctorID
	prescription.DoctorName = result.Appointment.DoctorName

	return &dto.DispenseResponse{
		Prescription: prescription,
		Inventory:    *InventoryItemToResponse(result.Item),
	}
}
