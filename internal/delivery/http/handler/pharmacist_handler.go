package handler

import (
	"net/http"
	"strconv"

	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/response"
	"go-clinic-management/pkg/validator"

	"github.com/gorilla/mux"
)

type PharmacistHandler struct {
	pharmacistUsecase usecase.PharmacistUsecase
	validator         *validator.CustomValidator
}

func NewPharmacistHandler(pharmacistUsecase usecase.PharmacistUsecase, validator *validator.CustomValidator) *PharmacistHandler {
	return &PharmacistHandler{
		pharmacistUsecase: pharmacistUsecase,
		validator:         validator,
	}
}

// ListPrescriptions lists prescriptions across completed appointments
// @Summary List prescriptions
// @Tags Pharmacist
// @Security BearerAuth
// @Produce json
// @Param pending query bool false "Only pending prescriptions"
// @Success 200 {object} response.Response
// @Router /pharmacist/prescriptions [get]
func (h *PharmacistHandler) ListPrescriptions(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	pendingOnly := false
	if raw := r.URL.Query().Get("pending"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "pending must be true or false")
			return
		}
		pendingOnly = parsed
	}

	list, err := h.pharmacistUsecase.ListPrescriptions(r.Context(), session, pendingOnly)
	if err != nil {
		writeError(w, err, "Failed to get prescriptions")
		return
	}

	response.List(w, "Prescriptions retrieved successfully", list.Prescriptions, list.Total)
}

// DispensePrescription takes the prescribed quantity out of stock
// @Summary Dispense a prescription
// @Tags Pharmacist
// @Security BearerAuth
// @Produce json
// @Param id path string true "Prescription ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /pharmacist/prescriptions/{id}/dispense [post]
func (h *PharmacistHandler) DispensePrescription(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	result, err := h.pharmacistUsecase.DispensePrescription(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, "Failed to dispense prescription")
		return
	}

	response.Success(w, http.StatusOK, "Prescription dispensed successfully", result)
}

// ListInventory lists every inventory item
// @Summary List inventory
// @Tags Pharmacist
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Response
// @Router /pharmacist/inventory [get]
func (h *PharmacistHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	inventory, err := h.pharmacistUsecase.ListInventory(r.Context(), session)
	if err != nil {
		writeError(w, err, "Failed to get inventory")
		return
	}

	response.Success(w, http.StatusOK, "Inventory retrieved successfully", inventory)
}

// RequestReplenishment files a replenishment request for a medication
// @Summary Request replenishment
// @Tags Pharmacist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param name path string true "Medication name"
// @Param request body dto.ReplenishmentRequest true "Replenishment Request"
// @Success 200 {object} response.Response
// @Router /pharmacist/inventory/{name}/replenishment [post]
func (h *PharmacistHandler) RequestReplenishment(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req dto.ReplenishmentRequest
	if !bind(w, r, h.validator, &req) {
		return
	}

	item, err := h.pharmacistUsecase.RequestReplenishment(r.Context(), session, mux.Vars(r)["name"], &req)
	if err != nil {
		writeError(w, err, "Failed to request replenishment")
		return
	}

	response.Success(w, http.StatusOK, "Replenishment requested successfully", item)
}
