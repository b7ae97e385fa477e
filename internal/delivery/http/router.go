package http

import (
	"net/http"

	"go-clinic-management/internal/delivery/http/handler"
	"go-clinic-management/internal/delivery/http/middleware"
	"go-clinic-management/pkg/response"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	authHandler       *handler.AuthHandler
	patientHandler    *handler.PatientHandler
	doctorHandler     *handler.DoctorHandler
	pharmacistHandler *handler.PharmacistHandler
	adminHandler      *handler.AdminHandler
	auditLogHandler   *handler.AuditLogHandler
	authMiddleware    *middleware.AuthMiddleware
	corsMiddleware    *middleware.CORSMiddleware
	loginRateLimit    int
}

func NewRouter(
	authHandler *handler.AuthHandler,
	patientHandler *handler.PatientHandler,
	doctorHandler *handler.DoctorHandler,
	pharmacistHandler *handler.PharmacistHandler,
	adminHandler *handler.AdminHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loginRateLimit int,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		authHandler:       authHandler,
		patientHandler:    patientHandler,
		doctorHandler:     doctorHandler,
		pharmacistHandler: pharmacistHandler,
		adminHandler:      adminHandler,
		auditLogHandler:   auditLogHandler,
		authMiddleware:    authMiddleware,
		corsMiddleware:    corsMiddleware,
		loginRateLimit:    loginRateLimit,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Handle("/login", middleware.LoginRateLimit(r.loginRateLimit)(http.HandlerFunc(r.authHandler.Login))).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", r.authHandler.RefreshToken).Methods(http.MethodPost)
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/change-password", r.authHandler.ChangePassword).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Patient routes
	patient := api.PathPrefix("/patient").Subrouter()
	patient.Use(r.authMiddleware.Authenticate)
	patient.Use(middleware.RequirePatient)
	patient.HandleFunc("/medical-record", r.patientHandler.GetMedicalRecord).Methods(http.MethodGet)
	patient.HandleFunc("/contact", r.patientHandler.UpdateContact).Methods(http.MethodPut)
	patient.HandleFunc("/slots", r.patientHandler.ListSlots).Methods(http.MethodGet)
	patient.HandleFunc("/appointments", r.patientHandler.ListAppointments).Methods(http.MethodGet)
	patient.HandleFunc("/appointments", r.patientHandler.RequestAppointment).Methods(http.MethodPost)
	patient.HandleFunc("/appointments/{id}/cancel", r.patientHandler.CancelAppointment).Methods(http.MethodPost)
	patient.HandleFunc("/appointments/{id}/reschedule", r.patientHandler.RescheduleAppointment).Methods(http.MethodPost)
	patient.HandleFunc("/outcomes", r.patientHandler.ListOutcomes).Methods(http.MethodGet)

	// Doctor routes
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/schedule", r.doctorHandler.GetSchedule).Methods(http.MethodGet)
	doctor.HandleFunc("/schedule/slots", r.doctorHandler.AddSlot).Methods(http.MethodPost)
	doctor.HandleFunc("/schedule/slots", r.doctorHandler.RemoveSlot).Methods(http.MethodDelete)
	doctor.HandleFunc("/appointments", r.doctorHandler.ListAppointments).Methods(http.MethodGet)
	doctor.HandleFunc("/appointments/{id}/decision", r.doctorHandler.DecideAppointment).Methods(http.MethodPost)
	doctor.HandleFunc("/appointments/{id}/complete", r.doctorHandler.CompleteAppointment).Methods(http.MethodPost)
	doctor.HandleFunc("/appointments/{id}/cancel", r.doctorHandler.CancelAppointment).Methods(http.MethodPost)
	doctor.HandleFunc("/patients/{id}/medical-record", r.doctorHandler.GetPatientRecord).Methods(http.MethodGet)
	doctor.HandleFunc("/patients/{id}/medical-record", r.doctorHandler.AppendPatientRecord).Methods(http.MethodPost)

	// Pharmacist routes
	pharmacist := api.PathPrefix("/pharmacist").Subrouter()
	pharmacist.Use(r.authMiddleware.Authenticate)
	pharmacist.Use(middleware.RequirePharmacist)
	pharmacist.HandleFunc("/prescriptions", r.pharmacistHandler.ListPrescriptions).Methods(http.MethodGet)
	pharmacist.HandleFunc("/prescriptions/{id}/dispense", r.pharmacistHandler.DispensePrescription).Methods(http.MethodPost)
	pharmacist.HandleFunc("/inventory", r.pharmacistHandler.ListInventory).Methods(http.MethodGet)
	pharmacist.HandleFunc("/inventory/{name}/replenishment", r.pharmacistHandler.RequestReplenishment).Methods(http.MethodPost)

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/staff", r.adminHandler.CreateStaff).Methods(http.MethodPost)
	admin.HandleFunc("/staff", r.adminHandler.ListStaff).Methods(http.MethodGet)
	admin.HandleFunc("/staff/{id}", r.adminHandler.UpdateStaff).Methods(http.MethodPut)
	admin.HandleFunc("/staff/{id}", r.adminHandler.RemoveStaff).Methods(http.MethodDelete)
	admin.HandleFunc("/doctors/schedules", r.adminHandler.ListDoctorSchedules).Methods(http.MethodGet)
	admin.HandleFunc("/doctors/{id}/schedule", r.adminHandler.GetDoctorSchedule).Methods(http.MethodGet)
	admin.HandleFunc("/appointments", r.adminHandler.ListAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/inventory", r.adminHandler.ListInventory).Methods(http.MethodGet)
	admin.HandleFunc("/inventory", r.adminHandler.AddInventoryItem).Methods(http.MethodPost)
	admin.HandleFunc("/inventory/{name}", r.adminHandler.UpdateInventoryItem).Methods(http.MethodPut)
	admin.HandleFunc("/inventory/{name}", r.adminHandler.RemoveInventoryItem).Methods(http.MethodDelete)
	admin.HandleFunc("/inventory/{name}/replenishment/decision", r.adminHandler.ResolveReplenishment).Methods(http.MethodPost)
	admin.HandleFunc("/replenishments", r.adminHandler.ListReplenishments).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Preflight requests only need to match a route for the CORS middleware to answer
	r.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {})

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
