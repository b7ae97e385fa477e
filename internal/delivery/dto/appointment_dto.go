package dto

import "time"

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID string `json:"doctor_id" validate:"required"`
	Slot     string `json:"slot" validate:"required,slot"`
}

type RescheduleAppointmentRequest struct {
	DoctorID string `json:"doctor_id" validate:"omitempty"`
	Slot     string `json:"slot" validate:"required,slot"`
}

type AppointmentDecisionRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

type CompleteAppointmentRequest struct {
	ServiceType       string                `json:"service_type" validate:"required,max=100"`
	ConsultationNotes string                `json:"consultation_notes" validate:"omitempty"`
	Prescriptions     []PrescriptionRequest `json:"prescriptions" validate:"omitempty,dive"`
}

type PrescriptionRequest struct {
	MedicationName string `json:"medication_name" validate:"required"`
	Quantity       int    `json:"quantity" validate:"gt=0"`
}

// Response DTOs

type AppointmentResponse struct {
	ID          string           `json:"id"`
	PatientID   string           `json:"patient_id"`
	DoctorID    string           `json:"doctor_id"`
	DoctorName  string           `json:"doctor_name"`
	Slot        string           `json:"slot"`
	ScheduledAt time.Time        `json:"scheduled_at"`
	Status      string           `json:"status"`
	Outcome     *OutcomeResponse `json:"outcome,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type OutcomeResponse struct {
	AppointmentTime   time.Time              `json:"appointment_time"`
	ServiceType       string                 `json:"service_type"`
	ConsultationNotes string                 `json:"consultation_notes"`
	Prescriptions     []PrescriptionResponse `json:"prescriptions"`
	RecordedAt        time.Time              `json:"recorded_at"`
}

type PrescriptionResponse struct {
	ID             string     `json:"id"`
	MedicationName string     `json:"medication_name"`
	Quantity       int        `json:"quantity"`
	Status         string     `json:"status"`
	DispensedBy    string     `json:"dispensed_by,omitempty"`
	DispensedAt    *time.Time `json:"dispensed_at,omitempty"`
	AppointmentID  string     `json:"appointment_id,omitempty"`
	PatientID      string     `json:"patient_id,omitempty"`
	DoctorID       string     `json:"doctor_id,omitempty"`
	DoctorName     string     `json:"doctor_name,omitempty"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Total         int                    `json:"total"`
}

// DispenseResponse reports the prescription and the stock it was taken from
type DispenseResponse struct {
	Prescription PrescriptionResponse  `json:"prescription"`
	Inventory    InventoryItemResponse `json:"inventory"`
}
