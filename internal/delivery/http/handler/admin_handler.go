package handler

import (
	"net/http"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/response"
	"go-clinic-management/pkg/validator"

	"github.com/gorilla/mux"
)

type AdminHandler struct {
	adminUsecase usecase.AdminUsecase
	validator    *validator.CustomValidator
}

func NewAdminHandler(adminUsecase usecase.AdminUsecase, validator *validator.CustomValidator) *AdminHandler {
	return &AdminHandler{
		adminUsecase: adminUsecase,
		validator:    validator,
	}
}

// CreateStaff adds a doctor, pharmacist or admin account
// @Summary Create staff account
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateStaffRequest true "Create Staff Request"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/staff [post]
func (h *AdminHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.CreateStaffRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	user, err := h.adminUsecase.CreateStaff(r.Context(), session, &req)
	if err != nil {
		writeError(w, err, "Failed to create staff")
		return
	}

	response.Success(w, http.StatusCreated, "Staff created successfully", user)
}

// ListStaff lists staff accounts, optionally by role
// @Summary List staff
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param role query string false "admin, doctor or pharmacist"
// @Success 200 {object} response.Response
// @Router /admin/staff [get]
func (h *AdminHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	staff, err := h.adminUsecase.ListStaff(r.Context(), session, r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, err, "Failed to get staff")
		return
	}

	response.List(w, "Staff retrieved successfully", staff.Users, staff.Total)
}

// UpdateStaff edits a staff profile
// @Summary Update staff account
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateStaffRequest true "Update Staff Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/staff/{id} [put]
func (h *AdminHandler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.UpdateStaffRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	user, err := h.adminUsecase.UpdateStaff(r.Context(), session, mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err, "Failed to update staff")
		return
	}

	response.Success(w, http.StatusOK, "Staff updated successfully", user)
}

// RemoveStaff deletes a staff account
// @Summary Remove staff account
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/staff/{id} [delete]
func (h *AdminHandler) RemoveStaff(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	if err := h.adminUsecase.RemoveStaff(r.Context(), session, mux.Vars(r)["id"]); err != nil {
		writeError(w, err, "Failed to remove staff")
		return
	}

	response.Success(w, http.StatusOK, "Staff removed successfully", nil)
}

// ListDoctorSchedules shows every doctor's schedule
// @Summary List doctor schedules
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/doctors/schedules [get]
func (h *AdminHandler) ListDoctorSchedules(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	schedules, err := h.adminUsecase.ListDoctorSchedules(r.Context(), session)
	if err != nil {
		writeError(w, err, "Failed to get doctor schedules")
		return
	}

	response.List(w, "Doctor schedules retrieved successfully", schedules.Doctors, schedules.Total)
}

// GetDoctorSchedule shows one doctor's schedule
// @Summary Get doctor schedule
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/doctors/{id}/schedule [get]
func (h *AdminHandler) GetDoctorSchedule(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	schedule, err := h.adminUsecase.GetDoctorSchedule(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "Failed to get doctor schedule")
		return
	}

	response.Success(w, http.StatusOK, "Doctor schedule retrieved successfully", schedule)
}

// ListAppointments lists every appointment, optionally by status
// @Summary List all appointments
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "Appointment status"
// @Success 200 {object} response.Response
// @Router /admin/appointments [get]
func (h *AdminHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	appts, err := h.adminUsecase.ListAppointments(r.Context(), session, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.List(w, "Appointments retrieved successfully", appts.Appointments, appts.Total)
}

// ListInventory lists items with their low-stock flag and stock value
// @Summary List inventory
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/inventory [get]
func (h *AdminHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	inventory, err := h.adminUsecase.ListInventory(r.Context(), session)
	if err != nil {
		writeError(w, err, "Failed to get inventory")
		return
	}

	response.Success(w, http.StatusOK, "Inventory retrieved successfully", inventory)
}

// AddInventoryItem adds a medication to inventory
// @Summary Add inventory item
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateInventoryItemRequest true "Create Inventory Item Request"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/inventory [post]
func (h *AdminHandler) AddInventoryItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.CreateInventoryItemRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	item, err := h.adminUsecase.AddInventoryItem(r.Context(), session, &req)
	if err != nil {
		writeError(w, err, "Failed to add inventory item")
		return
	}

	response.Success(w, http.StatusCreated, "Inventory item added successfully", item)
}

// UpdateInventoryItem changes the alert level or unit price
// @Summary Update inventory item
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param name path string true "Medication name"
// @Param request body dto.UpdateInventoryItemRequest true "Update Inventory Item Request"
// @Success 200 {object} response.Response
// @Router /admin/inventory/{name} [put]
func (h *AdminHandler) UpdateInventoryItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.UpdateInventoryItemRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	item, err := h.adminUsecase.UpdateInventoryItem(r.Context(), session, mux.Vars(r)["name"], &req)
	if err != nil {
		writeError(w, err, "Failed to update inventory item")
		return
	}

	response.Success(w, http.StatusOK, "Inventory item updated successfully", item)
}

// RemoveInventoryItem deletes a medication from inventory
// @Summary Remove inventory item
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param name path string true "Medication name"
// @Success 200 {object} response.Response
// @Router /admin/inventory/{name} [delete]
func (h *AdminHandler) RemoveInventoryItem(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	if err := h.adminUsecase.RemoveInventoryItem(r.Context(), session, mux.Vars(r)["name"]); err != nil {
		writeError(w, err, "Failed to remove inventory item")
		return
	}

	response.Success(w, http.StatusOK, "Inventory item removed successfully", nil)
}

// ListReplenishments lists items with an outstanding replenishment request
// @Summary List replenishment requests
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /admin/replenishments [get]
func (h *AdminHandler) ListReplenishments(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	pending, err := h.adminUsecase.ListReplenishments(r.Context(), session)
	if err != nil {
		writeError(w, err, "Failed to get replenishment requests")
		return
	}

	response.List(w, "Replenishment requests retrieved successfully", pending.Items, pending.Total)
}

// ResolveReplenishment approves or rejects the pending request of an item
// @Summary Approve or reject replenishment
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param name path string true "Medication name"
// @Param request body dto.ReplenishmentDecisionRequest true "Replenishment Decision Request"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/inventory/{name}/replenishment/decision [post]
func (h *AdminHandler) ResolveReplenishment(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.ReplenishmentDecisionRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	item, err := h.adminUsecase.ResolveReplenishment(r.Context(), session, mux.Vars(r)["name"], &req)
	if err != nil {
		writeError(w, err, "Failed to resolve replenishment")
		return
	}

	message := "Replenishment rejected"
	if *req.Approve {
		message = "Replenishment approved"
	}
	response.Success(w, http.StatusOK, message, item)
}
