package converter

import (
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
)

// MedicalRecordToResponse converts a MedicalRecord entity to MedicalRecordResponse DTO
func MedicalRecordToResponse(record *entity.MedicalRecord) *dto.MedicalRecordResponse {
	if record == nil {
		return nil
	}

	return &dto.MedicalRecordResponse{
		PatientID:      record.PatientID,
		Name:           record.Name,
		DateOfBirth:    record.DateOfBirth,
		Gender:         record.Gender,
		BloodType:      record.BloodType,
		Email:          record.Email,
		ContactNumber:  record.ContactNumber,
		PastDiagnoses:  nonNil(record.PastDiagnoses),
		PastTreatments: nonNil(record.PastTreatments),
		UpdatedAt:      record.UpdatedAt,
	}
}
