package entity

import "time"

// User is the base profile shared by every role. Role-specific data lives in
// exactly one of Doctor or Patient, selected by Role; admins and pharmacists
// carry no extra fields.
type User struct {
	Versioned
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Role          Role      `json:"role"`
	Email         string    `json:"email,omitempty"`
	ContactNumber string    `json:"contact_number,omitempty"`
	PasswordHash  string    `json:"password_hash"`
	FirstLogin    bool      `json:"first_login"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Doctor  *DoctorDetails  `json:"doctor,omitempty"`
	Patient *PatientDetails `json:"patient,omitempty"`
}

func (u *User) EntityKind() Kind { return KindUser }
func (u *User) EntityID() string { return u.ID }

// IsDoctor checks the role tag and the presence of the doctor variant
func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor && u.Doctor != nil
}

// IsPatient checks the role tag and the presence of the patient variant
func (u *User) IsPatient() bool {
	return u.Role == RolePatient && u.Patient != nil
}

// DoctorDetails is the doctor variant of a User
type DoctorDetails struct {
	Specialization string   `json:"specialization,omitempty"`
	Schedule       Schedule `json:"schedule"`
	PatientIDs     []string `json:"patient_ids"`
}

// AddPatient records a patient in the doctor's patient set
func (d *DoctorDetails) AddPatient(patientID string) {
	if d.HasPatient(patientID) {
		return
	}
	d.PatientIDs = append(d.PatientIDs, patientID)
}

// HasPatient reports whether the patient has ever booked with this doctor
func (d *DoctorDetails) HasPatient(patientID string) bool {
	for _, id := range d.PatientIDs {
		if id == patientID {
			return true
		}
	}
	return false
}

// PatientDetails is the patient variant of a User
type PatientDetails struct {
	MedicalRecordID string   `json:"medical_record_id"`
	AppointmentIDs  []string `json:"appointment_ids"`
}

// AddAppointment appends an appointment back-reference
func (p *PatientDetails) AddAppointment(appointmentID string) {
	if indexOf(p.AppointmentIDs, appointmentID) >= 0 {
		return
	}
	p.AppointmentIDs = append(p.AppointmentIDs, appointmentID)
}
