package dto

// Request DTOs

type SlotRequest struct {
	Slot string `json:"slot" validate:"required,slot"`
}

// Response DTOs

type ScheduleResponse struct {
	DoctorID       string   `json:"doctor_id"`
	Available      []string `json:"available"`
	Booked         []string `json:"booked"`
	AppointmentIDs []string `json:"appointment_ids"`
}

type DoctorSlotsResponse struct {
	DoctorID       string   `json:"doctor_id"`
	DoctorName     string   `json:"doctor_name"`
	Specialization string   `json:"specialization,omitempty"`
	Slots          []string `json:"slots"`
}

type DoctorSlotsListResponse struct {
	Doctors []DoctorSlotsResponse `json:"doctors"`
	Total   int                   `json:"total"`
}

type DoctorScheduleResponse struct {
	DoctorID       string   `json:"doctor_id"`
	DoctorName     string   `json:"doctor_name"`
	Specialization string   `json:"specialization,omitempty"`
	Available      []string `json:"available"`
	Booked         []string `json:"booked"`
	AppointmentIDs []string `json:"appointment_ids"`
}

type DoctorScheduleListResponse struct {
	Doctors []DoctorScheduleResponse `json:"doctors"`
	Total   int                      `json:"total"`
}
