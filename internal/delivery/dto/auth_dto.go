package dto

import "time"

// Request DTOs

type LoginRequest struct {
	UserID   string `json:"user_id" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// RegisterPatientRequest is the public self-registration form
type RegisterPatientRequest struct {
	ID            string `json:"id" validate:"required,min=3,max=64"`
	Name          string `json:"name" validate:"required,min=2"`
	Password      string `json:"password" validate:"required,min=6"`
	Email         string `json:"email" validate:"omitempty,email"`
	ContactNumber string `json:"contact_number" validate:"omitempty,max=20"`
	DateOfBirth   string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Gender        string `json:"gender" validate:"omitempty,max=20"`
	BloodType     string `json:"blood_type" validate:"omitempty,max=5"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken        string `json:"access_token"`
	RefreshToken       string `json:"refresh_token"`
	ExpiresIn          int64  `json:"expires_in"`
	MustChangePassword bool   `json:"must_change_password"`
}

type UserResponse struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Role          string               `json:"role"`
	Email         string               `json:"email,omitempty"`
	ContactNumber string               `json:"contact_number,omitempty"`
	FirstLogin    bool                 `json:"first_login"`
	Doctor        *DoctorInfoResponse  `json:"doctor,omitempty"`
	Patient       *PatientInfoResponse `json:"patient,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type DoctorInfoResponse struct {
	Specialization string   `json:"specialization,omitempty"`
	AvailableSlots int      `json:"available_slots"`
	PatientIDs     []string `json:"patient_ids"`
}

type PatientInfoResponse struct {
	MedicalRecordID string   `json:"medical_record_id"`
	AppointmentIDs  []string `json:"appointment_ids"`
}
