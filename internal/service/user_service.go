package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt work factor for stored credentials
var passwordCost = bcrypt.DefaultCost

// NewUserInput creates a user of any role. Doctor and patient fields are
// ignored for other roles.
type NewUserInput struct {
	ID             string
	Name           string
	Role           entity.Role
	Email          string
	ContactNumber  string
	Password       string
	FirstLogin     bool
	Specialization string
	DateOfBirth    string
	Gender         string
	BloodType      string
}

// UpdateUserInput edits a profile. Empty fields are left unchanged;
// Specialization is ignored for non-doctors.
type UpdateUserInput struct {
	Name           string
	Email          string
	ContactNumber  string
	Specialization string
}

// UserService manages user profiles and their role variants. A patient is
// always created together with its medical record.
type UserService interface {
	Create(ctx context.Context, actorID string, input NewUserInput) (*entity.User, error)
	Get(ctx context.Context, userID string) (*entity.User, error)
	List(ctx context.Context, role entity.Role) ([]*entity.User, error)
	Update(ctx context.Context, actorID, userID string, input UpdateUserInput) (*entity.User, error)
	Remove(ctx context.Context, actorID, userID string) error
	ChangePassword(ctx context.Context, userID, newPassword string) (*entity.User, error)
	UpdateContact(ctx context.Context, patientID, email, contactNumber string) (*entity.User, error)
}

type userService struct {
	store    repository.Store
	locker   *KeyLocker
	log      *logrus.Logger
	recorder *activityRecorder
}

func NewUserService(
	store repository.Store,
	locker *KeyLocker,
	log *logrus.Logger,
	audit AuditService,
	events EventPublisher,
) UserService {
	return &userService{
		store:    store,
		locker:   locker,
		log:      log,
		recorder: &activityRecorder{log: log, audit: audit, events: events},
	}
}

func (s *userService) Create(ctx context.Context, actorID string, input NewUserInput) (*entity.User, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" || strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: id and name are required", ErrInvalidInput)
	}
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), passwordCost)
	if err != nil {
		s.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	now := timeNow()
	user := &entity.User{
		ID:            id,
		Name:          strings.TrimSpace(input.Name),
		Role:          input.Role,
		Email:         input.Email,
		ContactNumber: input.ContactNumber,
		PasswordHash:  string(hashedPassword),
		FirstLogin:    input.FirstLogin,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	toSave := []entity.Entity{user}

	switch input.Role {
	case entity.RoleDoctor:
		user.Doctor = &entity.DoctorDetails{Specialization: input.Specialization}
	case entity.RolePatient:
		user.Patient = &entity.PatientDetails{MedicalRecordID: id}
		toSave = append(toSave, &entity.MedicalRecord{
			PatientID:     id,
			Name:          user.Name,
			DateOfBirth:   input.DateOfBirth,
			Gender:        input.Gender,
			BloodType:     input.BloodType,
			Email:         input.Email,
			ContactNumber: input.ContactNumber,
			UpdatedAt:     now,
		})
	case entity.RoleAdmin, entity.RolePharmacist:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, input.Role)
	}

	unlock := s.locker.Lock(lockKey("user", id))
	defer unlock()

	if err := s.store.Save(ctx, toSave...); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, id)
		}
		s.log.Warnf("Failed to save user: %+v", err)
		return nil, err
	}

	s.log.Infof("User created: id=%s, role=%s", id, input.Role)
	action := entity.AuditActionStaffCreate
	if input.Role == entity.RolePatient {
		action = entity.AuditActionUserRegister
	}
	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   action,
		kind:     entity.KindUser,
		entityID: id,
		newValue: map[string]interface{}{"name": user.Name, "role": user.Role},
	})
	return user, nil
}

func (s *userService) Get(ctx context.Context, userID string) (*entity.User, error) {
	var user entity.User
	if err := s.store.Load(ctx, entity.KindUser, userID, &user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParty, userID)
		}
		return nil, err
	}
	return &user, nil
}

// List returns users ordered by id; an empty role lists everyone
func (s *userService) List(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	users, err := repository.LoadAll[entity.User](ctx, s.store, entity.KindUser)
	if err != nil {
		s.log.Warnf("Failed to list users: %+v", err)
		return nil, err
	}
	if role == "" {
		return users, nil
	}

	out := make([]*entity.User, 0, len(users))
	for _, u := range users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// Remove deletes a user. A doctor holding active appointments cannot be removed.
func (s *userService) Update(ctx context.Context, actorID, userID string, input UpdateUserInput) (*entity.User, error) {
	unlock := s.locker.Lock(lockKey("user", userID))
	defer unlock()

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	old := profileSnapshot(user)
	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.ContactNumber != "" {
		user.ContactNumber = input.ContactNumber
	}
	if input.Specialization != "" && user.IsDoctor() {
		user.Doctor.Specialization = input.Specialization
	}
	user.UpdatedAt = timeNow()

	if err := s.store.Save(ctx, user); err != nil {
		s.log.Warnf("Failed to save user update: %+v", err)
		return nil, err
	}

	s.log.Infof("User updated: id=%s, role=%s", userID, user.Role)
	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   entity.AuditActionStaffUpdate,
		kind:     entity.KindUser,
		entityID: userID,
		oldValue: old,
		newValue: profileSnapshot(user),
	})
	return user, nil
}

func profileSnapshot(u *entity.User) map[string]interface{} {
	snapshot := map[string]interface{}{
		"name":           u.Name,
		"email":          u.Email,
		"contact_number": u.ContactNumber,
	}
	if u.IsDoctor() {
		snapshot["specialization"] = u.Doctor.Specialization
	}
	return snapshot
}

func (s *userService) Remove(ctx context.Context, actorID, userID string) error {
	unlock := s.locker.Lock(lockKey("user", userID))
	defer unlock()

	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	if user.IsDoctor() {
		for _, id := range user.Doctor.Schedule.AppointmentIDs {
			appt, err := loadAppointment(ctx, s.store, id)
			if err != nil {
				return err
			}
			if appt.IsActive() {
				return fmt.Errorf("%w: doctor %s has active appointment %s", ErrInvalidState, userID, id)
			}
		}
	}

	// deleted at the loaded version: a booking since the check above conflicts
	toDelete := []entity.Entity{user}
	if user.IsPatient() {
		record, err := loadMedicalRecord(ctx, s.store, user.Patient.MedicalRecordID)
		switch {
		case err == nil:
			toDelete = append(toDelete, record)
		case !errors.Is(err, ErrUnknownParty):
			return err
		}
	}
	if err := s.store.Delete(ctx, toDelete...); err != nil {
		s.log.Warnf("Failed to delete user: %+v", err)
		return err
	}

	s.log.Infof("User removed: id=%s, role=%s", userID, user.Role)
	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   entity.AuditActionStaffDelete,
		kind:     entity.KindUser,
		entityID: userID,
		oldValue: map[string]interface{}{"name": user.Name, "role": user.Role},
	})
	return nil
}

// ChangePassword stores a new hash and clears the first-login flag
func (s *userService) ChangePassword(ctx context.Context, userID, newPassword string) (*entity.User, error) {
	unlock := s.locker.Lock(lockKey("user", userID))
	defer unlock()

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), passwordCost)
	if err != nil {
		s.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}
	user.PasswordHash = string(hashedPassword)
	user.FirstLogin = false
	user.UpdatedAt = timeNow()

	if err := s.store.Save(ctx, user); err != nil {
		s.log.Warnf("Failed to save password change: %+v", err)
		return nil, err
	}

	s.recorder.record(ctx, activity{
		actorID:  userID,
		action:   entity.AuditActionPasswordChange,
		kind:     entity.KindUser,
		entityID: userID,
		oldValue: map[string]interface{}{"first_login": true},
		newValue: map[string]interface{}{"first_login": false},
	})
	return user, nil
}

// UpdateContact keeps the patient's profile and medical record in sync
func (s *userService) UpdateContact(ctx context.Context, patientID, email, contactNumber string) (*entity.User, error) {
	unlock := s.locker.Lock(lockKey("user", patientID), lockKey("medical_record", patientID))
	defer unlock()

	patient, err := loadUser(ctx, s.store, patientID, entity.RolePatient)
	if err != nil {
		return nil, err
	}
	record, err := loadMedicalRecord(ctx, s.store, patient.Patient.MedicalRecordID)
	if err != nil {
		return nil, err
	}

	old := map[string]interface{}{"email": patient.Email, "contact_number": patient.ContactNumber}
	now := timeNow()
	if email != "" {
		patient.Email = email
		record.Email = email
	}
	if contactNumber != "" {
		patient.ContactNumber = contactNumber
		record.ContactNumber = contactNumber
	}
	patient.UpdatedAt = now
	record.UpdatedAt = now

	if err := s.store.Save(ctx, patient, record); err != nil {
		s.log.Warnf("Failed to save contact update: %+v", err)
		return nil, err
	}

	s.recorder.record(ctx, activity{
		actorID:  patientID,
		action:   entity.AuditActionContactUpdate,
		kind:     entity.KindUser,
		entityID: patientID,
		oldValue: old,
		newValue: map[string]interface{}{"email": patient.Email, "contact_number": patient.ContactNumber},
	})
	return patient, nil
}
