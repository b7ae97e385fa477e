package service

import (
	"context"
	"fmt"
	"time"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// ScheduleTemplate generates a doctor's default availability
type ScheduleTemplate struct {
	Days      int
	SlotTimes []string // "15:04"
}

// DoctorAvailability lists the open slots of one doctor
type DoctorAvailability struct {
	DoctorID       string
	DoctorName     string
	Specialization string
	Slots          []string
}

// DoctorSchedule is a doctor's full schedule, booked slots included
type DoctorSchedule struct {
	DoctorID       string
	DoctorName     string
	Specialization string
	Schedule       entity.Schedule
}

type ScheduleService interface {
	InitializeSchedule(ctx context.Context, actorID, doctorID string, from time.Time) (*entity.Schedule, error)
	AddSlot(ctx context.Context, actorID, doctorID, slot string) (*entity.Schedule, error)
	RemoveSlot(ctx context.Context, actorID, doctorID, slot string) (*entity.Schedule, error)
	GetSchedule(ctx context.Context, doctorID string) (*entity.Schedule, error)
	AvailableSlots(ctx context.Context, doctorID string) ([]string, error)
	ListAvailability(ctx context.Context) ([]DoctorAvailability, error)
	ListSchedules(ctx context.Context) ([]DoctorSchedule, error)
}

type scheduleService struct {
	store    repository.Store
	locker   *KeyLocker
	log      *logrus.Logger
	recorder *activityRecorder
	template ScheduleTemplate
}

func NewScheduleService(
	store repository.Store,
	locker *KeyLocker,
	log *logrus.Logger,
	audit AuditService,
	events EventPublisher,
	template ScheduleTemplate,
) ScheduleService {
	return &scheduleService{
		store:    store,
		locker:   locker,
		log:      log,
		recorder: &activityRecorder{log: log, audit: audit, events: events},
		template: template,
	}
}

// DefaultSlots expands the template into slot labels starting at the day of from
func (t ScheduleTemplate) DefaultSlots(from time.Time) ([]string, error) {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	slots := make([]string, 0, t.Days*len(t.SlotTimes))
	for d := 0; d < t.Days; d++ {
		date := day.AddDate(0, 0, d).Format("2006-01-02")
		for _, clock := range t.SlotTimes {
			slot := date + "T" + clock
			if _, err := entity.ParseSlot(slot); err != nil {
				return nil, fmt.Errorf("%w: bad slot time %q: %v", ErrInvalidSlot, clock, err)
			}
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

// InitializeSchedule opens the default slots, skipping any already known
func (s *scheduleService) InitializeSchedule(ctx context.Context, actorID, doctorID string, from time.Time) (*entity.Schedule, error) {
	slots, err := s.template.DefaultSlots(from)
	if err != nil {
		return nil, err
	}

	unlock := s.locker.Lock(lockKey("user", doctorID))
	defer unlock()

	doctor, err := loadUser(ctx, s.store, doctorID, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}

	opened := 0
	for _, slot := range slots {
		if doctor.Doctor.Schedule.Open(slot) {
			opened++
		}
	}
	if opened == 0 {
		return &doctor.Doctor.Schedule, nil
	}
	doctor.UpdatedAt = timeNow()

	if err := s.store.Save(ctx, doctor); err != nil {
		s.log.Warnf("Failed to save schedule of %s: %+v", doctorID, err)
		return nil, err
	}

	s.log.Infof("Schedule initialized: doctor=%s, opened=%d", doctorID, opened)
	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   entity.AuditActionScheduleInitialize,
		kind:     entity.KindUser,
		entityID: doctorID,
		newValue: map[string]interface{}{"opened": opened},
	})
	return &doctor.Doctor.Schedule, nil
}

func (s *scheduleService) AddSlot(ctx context.Context, actorID, doctorID, slot string) (*entity.Schedule, error) {
	return s.changeSlot(ctx, actorID, doctorID, slot, entity.AuditActionScheduleSlotAdd, (*entity.Schedule).Open)
}

// RemoveSlot withdraws an available slot; booked slots stay with their appointment
func (s *scheduleService) RemoveSlot(ctx context.Context, actorID, doctorID, slot string) (*entity.Schedule, error) {
	return s.changeSlot(ctx, actorID, doctorID, slot, entity.AuditActionScheduleSlotRemove, (*entity.Schedule).Close)
}

func (s *scheduleService) changeSlot(ctx context.Context, actorID, doctorID, slot, action string, apply func(*entity.Schedule, string) bool) (*entity.Schedule, error) {
	if _, err := entity.ParseSlot(slot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}

	unlock := s.locker.Lock(lockKey("user", doctorID))
	defer unlock()

	doctor, err := loadUser(ctx, s.store, doctorID, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}
	if !apply(&doctor.Doctor.Schedule, slot) {
		return nil, fmt.Errorf("%w: %s on the schedule of %s", ErrInvalidSlot, slot, doctorID)
	}
	doctor.UpdatedAt = timeNow()

	if err := s.store.Save(ctx, doctor); err != nil {
		s.log.Warnf("Failed to save schedule of %s: %+v", doctorID, err)
		return nil, err
	}

	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   action,
		kind:     entity.KindUser,
		entityID: doctorID,
		newValue: map[string]interface{}{"slot": slot},
	})
	return &doctor.Doctor.Schedule, nil
}

func (s *scheduleService) GetSchedule(ctx context.Context, doctorID string) (*entity.Schedule, error) {
	doctor, err := loadUser(ctx, s.store, doctorID, entity.RoleDoctor)
	if err != nil {
		return nil, err
	}
	return &doctor.Doctor.Schedule, nil
}

func (s *scheduleService) AvailableSlots(ctx context.Context, doctorID string) ([]string, error) {
	schedule, err := s.GetSchedule(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return schedule.Available, nil
}

// ListAvailability returns every doctor that has at least one open slot
func (s *scheduleService) ListAvailability(ctx context.Context) ([]DoctorAvailability, error) {
	doctors, err := s.loadDoctors(ctx)
	if err != nil {
		return nil, err
	}

	var out []DoctorAvailability
	for _, u := range doctors {
		if len(u.Doctor.Schedule.Available) == 0 {
			continue
		}
		out = append(out, DoctorAvailability{
			DoctorID:       u.ID,
			DoctorName:     u.Name,
			Specialization: u.Doctor.Specialization,
			Slots:          u.Doctor.Schedule.Available,
		})
	}
	return out, nil
}

// ListSchedules returns the schedule of every doctor, ordered by doctor ID
func (s *scheduleService) ListSchedules(ctx context.Context) ([]DoctorSchedule, error) {
	doctors, err := s.loadDoctors(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]DoctorSchedule, 0, len(doctors))
	for _, u := range doctors {
		out = append(out, DoctorSchedule{
			DoctorID:       u.ID,
			DoctorName:     u.Name,
			Specialization: u.Doctor.Specialization,
			Schedule:       u.Doctor.Schedule,
		})
	}
	return out, nil
}

func (s *scheduleService) loadDoctors(ctx context.Context) ([]*entity.User, error) {
	users, err := repository.LoadAll[entity.User](ctx, s.store, entity.KindUser)
	if err != nil {
		s.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}

	doctors := users[:0]
	for _, u := range users {
		if u.IsDoctor() {
			doctors = append(doctors, u)
		}
	}
	return doctors, nil
}
