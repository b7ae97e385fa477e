package dto

// Request DTOs

// CreateStaffRequest adds a doctor, pharmacist or admin. Staff must change the
// initial password on first login.
type CreateStaffRequest struct {
	ID             string `json:"id" validate:"required,min=3,max=64"`
	Name           string `json:"name" validate:"required,min=2"`
	Role           string `json:"role" validate:"required,oneof=admin doctor pharmacist"`
	Password       string `json:"password" validate:"required,min=6"`
	Email          string `json:"email" validate:"omitempty,email"`
	ContactNumber  string `json:"contact_number" validate:"omitempty,max=20"`
	Specialization string `json:"specialization" validate:"omitempty,max=100"`
}

// UpdateStaffRequest edits a staff profile; omitted fields keep their value
type UpdateStaffRequest struct {
	Name           string `json:"name" validate:"omitempty,min=2"`
	Email          string `json:"email" validate:"omitempty,email"`
	ContactNumber  string `json:"contact_number" validate:"omitempty,max=20"`
	Specialization string `json:"specialization" validate:"omitempty,max=100"`
}

// Response DTOs

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Total int            `json:"total"`
}
