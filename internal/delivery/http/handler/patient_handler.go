package handler

import (
	"net/http"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/response"
	"go-clinic-management/pkg/validator"

	"github.com/gorilla/mux"
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

// GetMedicalRecord returns the patient's own medical record
// @Summary Get own medical record
// @Tags Patient
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /patient/medical-record [get]
func (h *PatientHandler) GetMedicalRecord(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	record, err := h.patientUsecase.GetMedicalRecord(r.Context(), session)
	if err != nil {
		writeError(w, err, "Failed to get medical record")
		return
	}

	response.Success(w, http.StatusOK, "Medical record retrieved successfully", record)
}

// UpdateContact changes the patient's email and contact number
// @Summary Update contact details
// @Tags Patient
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateContactRequest true "Update Contact Request"
// @Success 200 {object} response.Response
// @Router /patient/contact [put]
func (h *PatientHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.UpdateContactRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	user, err := h.patientUsecase.UpdateContact(r.Context(), session, &req)
	if err != nil {
		writeError(w, err, "Failed to update contact")
		return
	}

	response.Success(w, http.StatusOK, "Contact updated successfully", user)
}

// ListSlots lists every doctor with open slots
// @Summary List available slots
// @Tags Patient
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /patient/slots [get]
func (h *PatientHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	slots, err := h.patientUsecase.ListAvailableSlots(r.Context(), session)
	if err != nil {
		writeError(w, err, "Failed to get available slots")
		return
	}

	response.List(w, "Available slots retrieved successfully", slots.Doctors, slots.Total)
}

// ListAppointments lists the patient's appointments, optionally by status
// @Summary List own appointments
// @Tags Patient
// @Security BearerAuth
// @Produce json
// @Param status query string false "Appointment status"
// @Success 200 {object} response.Response
// @Router /patient/appointments [get]
func (h *PatientHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	appts, err := h.patientUsecase.ListAppointments(r.Context(), session, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.List(w, "Appointments retrieved successfully", appts.Appointments, appts.Total)
}

// RequestAppointment books a slot with a doctor
// @Summary Request an appointment
// @Tags Patient
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateAppointmentRequest true "Create Appointment Request"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /patient/appointments [post]
func (h *PatientHandler) RequestAppointment(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.CreateAppointmentRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	appt, err := h.patientUsecase.RequestAppointment(r.Context(), session, &req)
	if err != nil {
		writeError(w, err, "Failed to request appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment requested successfully", appt)
}

// CancelAppointment cancels one of the patient's appointments
// @Summary Cancel an appointment
// @Tags Patient
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Router /patient/appointments/{id}/cancel [post]
func (h *PatientHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	appt, err := h.patientUsecase.CancelAppointment(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appt)
}

// RescheduleAppointment moves an appointment to another slot
// @Summary Reschedule an appointment
// @Tags Patient
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.RescheduleAppointmentRequest true "Reschedule Appointment Request"
// @Success 200 {object} response.Response
// @Router /patient/appointments/{id}/reschedule [post]
func (h *PatientHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.RescheduleAppointmentRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	appt, err := h.patientUsecase.RescheduleAppointment(r.Context(), session, mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err, "Failed to reschedule appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", appt)
}

// ListOutcomes lists completed appointments with their outcome
// @Summary List past appointment outcomes
// @Tags Patient
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /patient/outcomes [get]
func (h *PatientHandler) ListOutcomes(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	appts, err := h.patientUsecase.ListOutcomes(r.Context(), session)
	if err != nil {
		writeError(w, err, "Failed to get outcomes")
		return
	}

	response.List(w, "Outcomes retrieved successfully", appts.Appointments, appts.Total)
}
