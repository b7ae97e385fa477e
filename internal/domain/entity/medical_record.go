package entity

import "time"

// MedicalRecord belongs 1:1 to a patient and shares the patient's ID.
// Diagnoses and treatments are append-only.
type MedicalRecord struct {
	Versioned
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

func (m *MedicalRecord) EntityKind() Kind { return KindMedicalRecord }
func (m *MedicalRecord) EntityID() string { return m.PatientID }

func (m *MedicalRecord) AddDiagnosis(diagnosis string) {
	m.PastDiagnoses = append(m.PastDiagnoses, diagnosis)
}

func (m *MedicalRecord) AddTreatment(treatment string) {
	m.PastTreatments = append(m.PastTreatments, treatment)
}
