package entity

import (
	"fmt"
	"strings"
	"time"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusRequested AppointmentStatus = "requested"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// ParseAppointmentStatus validates a status name
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	status := AppointmentStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case AppointmentStatusRequested, AppointmentStatusConfirmed, AppointmentStatusRejected,
		AppointmentStatusCancelled, AppointmentStatusCompleted:
		return status, true
	}
	return "", false
}

// IsTerminal reports whether no transition leaves this state
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusRejected || s == AppointmentStatusCancelled || s == AppointmentStatusCompleted
}

// Appointment is a patient's booking of one doctor slot
type Appointment struct {
	Versioned
	ID          string              `json:"id"`
	PatientID   string              `json:"patient_id"`
	DoctorID    string              `json:"doctor_id"`
	DoctorName  string              `json:"doctor_name"`
	Slot        string              `json:"slot"`
	ScheduledAt time.Time           `json:"scheduled_at"`
	Status      AppointmentStatus   `json:"status"`
	Outcome     *AppointmentOutcome `json:"outcome,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (a *Appointment) EntityKind() Kind { return KindAppointment }
func (a *Appointment) EntityID() string { return a.ID }

// IsRequested checks if the appointment awaits the doctor's decision
func (a *Appointment) IsRequested() bool {
	return a.Status == AppointmentStatusRequested
}

// IsConfirmed checks if the doctor accepted the appointment
func (a *Appointment) IsConfirmed() bool {
	return a.Status == AppointmentStatusConfirmed
}

// IsActive checks if the appointment still holds its slot for a future visit
func (a *Appointment) IsActive() bool {
	return a.IsRequested() || a.IsConfirmed()
}

// Confirm moves a requested appointment to confirmed
func (a *Appointment) Confirm() bool {
	if !a.IsRequested() {
		return false
	}
	a.Status = AppointmentStatusConfirmed
	return true
}

// Reject moves a requested appointment to rejected
func (a *Appointment) Reject() bool {
	if !a.IsRequested() {
		return false
	}
	a.Status = AppointmentStatusRejected
	return true
}

// Cancel moves an active appointment to cancelled
func (a *Appointment) Cancel() bool {
	if !a.IsActive() {
		return false
	}
	a.Status = AppointmentStatusCancelled
	return true
}

// Complete attaches the outcome to a confirmed appointment. The outcome is set once.
func (a *Appointment) Complete(outcome *AppointmentOutcome) bool {
	if !a.IsConfirmed() || a.Outcome != nil {
		return false
	}
	a.Outcome = outcome
	a.Status = AppointmentStatusCompleted
	return true
}

// FindPrescription returns the prescription with the given ID, if the appointment has one
func (a *Appointment) FindPrescription(prescriptionID string) *Prescription {
	if a.Outcome == nil {
		return nil
	}
	for i := range a.Outcome.Prescriptions {
		if a.Outcome.Prescriptions[i].ID == prescriptionID {
			return &a.Outcome.Prescriptions[i]
		}
	}
	return nil
}

// AppointmentOutcome is the clinical summary recorded at completion
type AppointmentOutcome struct {
	AppointmentTime   time.Time      `json:"appointment_time"`
	ServiceType       string         `json:"service_type"`
	ConsultationNotes string         `json:"consultation_notes"`
	Prescriptions     []Prescription `json:"prescriptions"`
	RecordedAt        time.Time      `json:"recorded_at"`
}

// PrescriptionStatus is Pending until dispensed
type PrescriptionStatus string

const (
	PrescriptionStatusPending   PrescriptionStatus = "pending"
	PrescriptionStatusDispensed PrescriptionStatus = "dispensed"
)

// Prescription is owned by the outcome of one appointment
type Prescription struct {
	ID             string             `json:"id"`
	MedicationName string             `json:"medication_name"`
	Quantity       int                `json:"quantity"`
	Status         PrescriptionStatus `json:"status"`
	DispensedBy    string             `json:"dispensed_by,omitempty"`
	DispensedAt    *time.Time         `json:"dispensed_at,omitempty"`
}

// IsPending checks if the prescription still awaits dispensing
func (p *Prescription) IsPending() bool {
	return p.Status == PrescriptionStatusPending
}

// prescriptionIDSeparator joins the owning appointment ID and the line number
const prescriptionIDSeparator = "-RX"

// PrescriptionID builds the identifier of the n-th (1-based) prescription of an appointment
func PrescriptionID(appointmentID string, n int) string {
	return fmt.Sprintf("%s%s%d", appointmentID, prescriptionIDSeparator, n)
}

// AppointmentIDFromPrescription recovers the owning appointment of a prescription ID
func AppointmentIDFromPrescription(prescriptionID string) (string, bool) {
	i := strings.LastIndex(prescriptionID, prescriptionIDSeparator)
	if i <= 0 {
		return "", false
	}
	return prescriptionID[:i], true
}

// AppointmentFilter narrows appointment listings
type AppointmentFilter struct {
	PatientID string
	DoctorID  string
	Status    AppointmentStatus
}

// Matches reports whether the appointment satisfies every non-empty field
func (f AppointmentFilter) Matches(a *Appointment) bool {
	if f.PatientID != "" && a.PatientID != f.PatientID {
		return false
	}
	if f.DoctorID != "" && a.DoctorID != f.DoctorID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	return true
}
