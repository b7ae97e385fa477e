package usecase

import (
	"context"
	"errors"
	"time"

	"go-clinic-management/internal/converter"
	"go-clinic-management/internal/delivery/dto"
	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"
	"go-clinic-management/internal/service"

	"github.com/sirupsen/logrus"
)

// AdminUsecase manages staff accounts and inventory, and resolves replenishment requests
type AdminUsecase interface {
	CreateStaff(ctx context.Context, session *entity.Session, req *dto.CreateStaffRequest) (*dto.UserResponse, error)
	ListStaff(ctx context.Context, session *entity.Session, role string) (*dto.UserListResponse, error)
	UpdateStaff(ctx context.Context, session *entity.Session, userID string, req *dto.UpdateStaffRequest) (*dto.UserResponse, error)
	RemoveStaff(ctx context.Context, session *entity.Session, userID string) error
	ListDoctorSchedules(ctx context.Context, session *entity.Session) (*dto.DoctorScheduleListResponse, error)
	GetDoctorSchedule(ctx context.Context, session *entity.Session, doctorID string) (*dto.ScheduleResponse, error)
	ListAppointments(ctx context.Context, session *entity.Session, status string) (*dto.AppointmentListResponse, error)
	ListInventory(ctx context.Context, session *entity.Session) (*dto.InventoryListResponse, error)
	AddInventoryItem(ctx context.Context, session *entity.Session, req *dto.CreateInventoryItemRequest) (*dto.InventoryItemResponse, error)
	UpdateInventoryItem(ctx context.Context, session *entity.Session, medicationName string, req *dto.UpdateInventoryItemRequest) (*dto.InventoryItemResponse, error)
	RemoveInventoryItem(ctx context.Context, session *entity.Session, medicationName string) error
	ListReplenishments(ctx context.Context, session *entity.Session) (*dto.InventoryListResponse, error)
	ResolveReplenishment(ctx context.Context, session *entity.Session, medicationName string, req *dto.ReplenishmentDecisionRequest) (*dto.InventoryItemResponse, error)
}

type adminUsecase struct {
	log          *logrus.Logger
	users        service.UserService
	schedules    service.ScheduleService
	appointments service.AppointmentService
	inventory    service.InventoryService
	tokenRepo    repository.TokenRepository
}

func NewAdminUsecase(
	log *logrus.Logger,
	users service.UserService,
	schedules service.ScheduleService,
	appointments service.AppointmentService,
	inventory service.InventoryService,
	tokenRepo repository.TokenRepository,
) AdminUsecase {
	return &adminUsecase{
		log:          log,
		users:        users,
		schedules:    schedules,
		appointments: appointments,
		inventory:    inventory,
		tokenRepo:    tokenRepo,
	}
}

// CreateStaff adds a staff account with the first-login flag set. A new doctor
// gets the default schedule opened from today.
func (u *adminUsecase) CreateStaff(ctx context.Context, session *entity.Session, req *dto.CreateStaffRequest) (*dto.UserResponse, error) {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return nil, err
	}
	role, ok := entity.ParseRole(req.Role)
	if !ok || !role.IsStaff() {
		return nil, ErrInvalidRole
	}

	user, err := u.users.Create(ctx, session.UserID, service.NewUserInput{
		ID:             req.ID,
		Name:           req.Name,
		Role:           role,
		Email:          req.Email,
		ContactNumber:  req.ContactNumber,
		Password:       req.Password,
		FirstLogin:     true,
		Specialization: req.Specialization,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			return nil, ErrUserAlreadyExists
		}
		u.log.Warnf("Failed to create staff: %+v", err)
		return nil, err
	}

	if user.IsDoctor() {
		if _, err := u.schedules.InitializeSchedule(ctx, session.UserID, user.ID, time.Now().UTC()); err != nil {
			// the doctor exists; slots can still be added by hand
			u.log.Warnf("Failed to initialize schedule of %s: %+v", user.ID, err)
		} else if refreshed, err := u.users.Get(ctx, user.ID); err == nil {
			user = refreshed
		}
	}

	return converter.UserToResponse(user), nil
}

// ListStaff lists every staff account, or only those of the given role
func (u *adminUsecase) ListStaff(ctx context.Context, session *entity.Session, role string) (*dto.UserListResponse, error) {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return nil, err
	}

	var filter entity.Role
	if role != "" {
		r, ok := entity.ParseRole(role)
		if !ok || !r.IsStaff() {
			return nil, ErrInvalidRole
		}
		filter = r
	}

	users, err := u.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	staff := make([]*entity.User, 0, len(users))
	for _, user := range users {
		if user.Role.IsStaff() {
			staff = append(staff, user)
		}
	}
	return &dto.UserListResponse{
		Users: converter.UsersToResponses(staff),
		Total: len(staff),
	}, nil
}

// UpdateStaff edits the name, contact fields and, for doctors, the specialization
func (u *adminUsecase) UpdateStaff(ctx context.Context, session *entity.Session, userID string, req *dto.UpdateStaffRequest) (*dto.UserResponse, error) {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return nil, err
	}

	user, err := u.staffMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Specialization != "" && !user.IsDoctor() {
		return nil, ErrInvalidRole
	}

	updated, err := u.users.Update(ctx, session.UserID, userID, service.UpdateUserInput{
		Name:           req.Name,
		Email:          req.Email,
		ContactNumber:  req.ContactNumber,
		Specialization: req.Specialization,
	})
	if err != nil {
		return nil, err
	}
	return converter.UserToResponse(updated), nil
}

// RemoveStaff deletes a staff account and revokes its sessions. Admins cannot remove themselves.
func (u *adminUsecase) RemoveStaff(ctx context.Context, session *entity.Session, userID string) error {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return err
	}
	if userID == session.UserID {
		return ErrForbidden
	}

	if _, err := u.staffMember(ctx, userID); err != nil {
		return err
	}

	if err := u.users.Remove(ctx, session.UserID, userID); err != nil {
		return err
	}

	if err := u.tokenRepo.DeleteAll(ctx, userID); err != nil {
		u.log.Warnf("Failed to revoke tokens of removed user %s: %+v", userID, err)
	}
	return nil
}

func (u *adminUsecase) staffMember(ctx context.Context, userID string) (*entity.User, error) {
	user, err := u.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownParty) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.Role.IsStaff() {
		return nil, ErrInvalidRole
	}
	return user, nil
}

// ListDoctorSchedules shows every doctor's open and booked slots
func (u *adminUsecase) ListDoctorSchedules(ctx context.Context, session *entity.Session) (*dto.DoctorScheduleListResponse, error) {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return nil, err
	}

	schedules, err := u.schedules.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.DoctorScheduleListResponse{
		Doctors: converter.DoctorSchedulesToResponses(schedules),
		Total:   len(schedules),
	}, nil
}

func (u *adminUsecase) GetDoctorSchedule(ctx context.Context, session *entity.Session, doctorID string) (*dto.ScheduleResponse, error) {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return nil, err
	}

	schedule, err := u.schedules.GetSchedule(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return converter.ScheduleToResponse(doctorID, schedule), nil
}

func (u *adminUsecase) ListAppointments(ctx context.Context, session *entity.Session, status string) (*dto.AppointmentListResponse, error) {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return nil, err
	}
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}

	appts, err := u.appointments.List(ctx, entity.AppointmentFilter{Status: st})
	if err != nil {
		return nil, err
	}
	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appts),
		Total:        len(appts),
	}, nil
}

func (u *adminUsecase) ListInventory(ctx context.Context, session *entity.Session) (*dto.InventoryListResponse, error) {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return nil, err
	}

	items, err := u.inventory.List(ctx)
	if err != nil {
		return nil, err
	}
	return converter.InventoryItemsToListResponse(items), nil
}

func (u *adminUsecase) AddInventoryItem(ctx context.Context, session *entity.Session, req *dto.CreateInventoryItemRequest) (*dto.InventoryItemResponse, error) {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return nil, err
	}

	item, err := u.inventory.AddItem(ctx, session.UserID, service.NewItemInput{
		MedicationName:     req.MedicationName,
		StockLevel:         req.StockLevel,
		LowStockAlertLevel: req.LowStockAlertLevel,
		UnitPrice:          req.UnitPrice,
	})
	if err != nil {
		return nil, err
	}
	return converter.InventoryItemToResponse(item), nil
}

func (u *adminUsecase) UpdateInventoryItem(ctx context.Context, session *entity.Session, medicationName string, req *dto.UpdateInventoryItemRequest) (*dto.InventoryItemResponse, error) {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return nil, err
	}

	item, err := u.inventory.UpdateItem(ctx, session.UserID, medicationName, service.UpdateItemInput{
		LowStockAlertLevel: req.LowStockAlertLevel,
		UnitPrice:          req.UnitPrice,
	})
	if err != nil {
		return nil, err
	}
	return converter.InventoryItemToResponse(item), nil
}

func (u *adminUsecase) RemoveInventoryItem(ctx context.Context, session *entity.Session, medicationName string) error {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return err
	}
	return u.inventory.RemoveItem(ctx, session.UserID, medicationName)
}

// ListReplenishments returns the items with an outstanding request
func (u *adminUsecase) ListReplenishments(ctx context.Context, session *entity.Session) (*dto.InventoryListResponse, error) {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return nil, err
	}

	items, err := u.inventory.PendingRequests(ctx)
	if err != nil {
		return nil, err
	}
	return converter.InventoryItemsToListResponse(items), nil
}

func (u *adminUsecase) ResolveReplenishment(ctx context.Context, session *entity.Session, medicationName string, req *dto.ReplenishmentDecisionRequest) (*dto.InventoryItemResponse, error) {
	if err := authorize(session, entity.RoleAdmin); err != nil {
		return nil, err
	}

	item, err := u.inventory.ResolveReplenishment(ctx, session.UserID, medicationName, *req.Approve)
	if err != nil {
		return nil, err
	}
	return converter.InventoryItemToResponse(item), nil
}
