package dto

import "time"

// Request DTOs

type UpdateContactRequest struct {
	Email         string `json:"email" validate:"omitempty,email"`
	ContactNumber string `json:"contact_number" validate:"omitempty,max=20"`
}

// AppendMedicalRecordRequest needs at least one of the two entries
type AppendMedicalRecordRequest struct {
	Diagnosis string `json:"diagnosis" validate:"required_without=Treatment"`
	Treatment string `json:"treatment" validate:"required_without=Diagnosis"`
}

// Response DTOs

type MedicalRecordResponse struct {
	PatientID      string    `json:"patient_id"`
	Name           string    `json:"name"`
	DateOfBirth    string    `json:"date_of_birth,omitempty"`
	Gender         string    `json:"gender,omitempty"`
	BloodType      string    `json:"blood_type,omitempty"`
	Email          string    `json:"email,omitempty"`
	ContactNumber  string    `json:"contact_number,omitempty"`
	PastDiagnoses  []string  `json:"past_diagnoses"`
	PastTreatments []string  `json:"past_treatments"`
	UpdatedAt      time.Time `json:"updated_at"`
}
