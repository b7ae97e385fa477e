package handler

import (
	"net/http"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/response"
	"go-clinic-management/pkg/validator"

	"github.com/gorilla/mux"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

// GetSchedule returns the doctor's own schedule
// @Summary Get own schedule
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /doctor/schedule [get]
func (h *DoctorHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	schedule, err := h.doctorUsecase.GetSchedule(r.Context(), session)
	if err != nil {
		writeError(w, err, "Failed to get schedule")
		return
	}

	response.Success(w, http.StatusOK, "Schedule retrieved successfully", schedule)
}

// AddSlot opens a slot on the doctor's schedule
// @Summary Add an available slot
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SlotRequest true "Slot Request"
// @Success 201 {object} response.Response
// @Router /doctor/schedule/slots [post]
func (h *DoctorHandler) AddSlot(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.SlotRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	schedule, err := h.doctorUsecase.AddSlot(r.Context(), session, &req)
	if err != nil {
		writeError(w, err, "Failed to add slot")
		return
	}

	response.Success(w, http.StatusCreated, "Slot added successfully", schedule)
}

// RemoveSlot marks an available slot unavailable
// @Summary Remove an available slot
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SlotRequest true "Slot Request"
// @Success 200 {object} response.Response
// @Router /doctor/schedule/slots [delete]
func (h *DoctorHandler) RemoveSlot(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.SlotRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	schedule, err := h.doctorUsecase.RemoveSlot(r.Context(), session, &req)
	if err != nil {
		writeError(w, err, "Failed to remove slot")
		return
	}

	response.Success(w, http.StatusOK, "Slot removed successfully", schedule)
}

// ListAppointments lists the doctor's appointments; status=requested gives pending
// requests and status=confirmed the upcoming ones
// @Summary List own appointments
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Param status query string false "Appointment status"
// @Success 200 {object} response.Response
// @Router /doctor/appointments [get]
func (h *DoctorHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	appts, err := h.doctorUsecase.ListAppointments(r.Context(), session, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.List(w, "Appointments retrieved successfully", appts.Appointments, appts.Total)
}

// DecideAppointment accepts or rejects a requested appointment
// @Summary Accept or reject an appointment
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.AppointmentDecisionRequest true "Decision Request"
// @Success 200 {object} response.Response
// @Router /doctor/appointments/{id}/decision [post]
func (h *DoctorHandler) DecideAppointment(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.AppointmentDecisionRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	appt, err := h.doctorUsecase.DecideAppointment(r.Context(), session, mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err, "Failed to decide appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment "+appt.Status, appt)
}

// CompleteAppointment records the outcome of a confirmed appointment
// @Summary Record appointment outcome
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param request body dto.CompleteAppointmentRequest true "Complete Appointment Request"
// @Success 200 {object} response.Response
// @Router /doctor/appointments/{id}/complete [post]
func (h *DoctorHandler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.CompleteAppointmentRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	appt, err := h.doctorUsecase.CompleteAppointment(r.Context(), session, mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err, "Failed to complete appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment completed successfully", appt)
}

// CancelAppointment cancels one of the doctor's appointments
// @Summary Cancel an appointment
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Response
// @Router /doctor/appointments/{id}/cancel [post]
func (h *DoctorHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	appt, err := h.doctorUsecase.CancelAppointment(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "Failed to cancel appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", appt)
}

// GetPatientRecord returns the record of a patient in the doctor's patient set
// @Summary Get a patient's medical record
// @Tags Doctor
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Response
// @Router /doctor/patients/{id}/medical-record [get]
func (h *DoctorHandler) GetPatientRecord(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	record, err := h.doctorUsecase.GetPatientRecord(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "Failed to get medical record")
		return
	}

	response.Success(w, http.StatusOK, "Medical record retrieved successfully", record)
}

// AppendPatientRecord adds a diagnosis and/or treatment
// @Summary Append to a patient's medical record
// @Tags Doctor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Param request body dto.AppendMedicalRecordRequest true "Append Medical Record Request"
// @Success 200 {object} response.Response
// @Router /doctor/patients/{id}/medical-record [post]
func (h *DoctorHandler) AppendPatientRecord(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.AppendMedicalRecordRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	record, err := h.doctorUsecase.AppendPatientRecord(r.Context(), session, mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err, "Failed to update medical record")
		return
	}

	response.Success(w, http.StatusOK, "Medical record updated successfully", record)
}
