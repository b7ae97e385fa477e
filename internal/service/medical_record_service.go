package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-clinic-management/internal/domain/entity"
	"go-clinic-management/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// MedicalRecordService appends to a patient's diagnoses and treatments
type MedicalRecordService interface {
	Get(ctx context.Context, patientID string) (*entity.MedicalRecord, error)
	Append(ctx context.Context, actorID, patientID, diagnosis, treatment string) (*entity.MedicalRecord, error)
}

type medicalRecordService struct {
	store    repository.Store
	locker   *KeyLocker
	log      *logrus.Logger
	recorder *activityRecorder
}

func NewMedicalRecordService(
	store repository.Store,
	locker *KeyLocker,
	log *logrus.Logger,
	audit AuditService,
	events EventPublisher,
) MedicalRecordService {
	return &medicalRecordService{
		store:    store,
		locker:   locker,
		log:      log,
		recorder: &activityRecorder{log: log, audit: audit, events: events},
	}
}

func (s *medicalRecordService) Get(ctx context.Context, patientID string) (*entity.MedicalRecord, error) {
	patient, err := loadUser(ctx, s.store, patientID, entity.RolePatient)
	if err != nil {
		return nil, err
	}
	return loadMedicalRecord(ctx, s.store, patient.Patient.MedicalRecordID)
}

// Append adds a diagnosis, a treatment or both; blank values are skipped
func (s *medicalRecordService) Append(ctx context.Context, actorID, patientID, diagnosis, treatment string) (*entity.MedicalRecord, error) {
	diagnosis, treatment = strings.TrimSpace(diagnosis), strings.TrimSpace(treatment)
	if diagnosis == "" && treatment == "" {
		return nil, fmt.Errorf("%w: diagnosis or treatment is required", ErrInvalidInput)
	}

	unlock := s.locker.Lock(lockKey("medical_record", patientID))
	defer unlock()

	record, err := s.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if diagnosis != "" {
		record.AddDiagnosis(diagnosis)
	}
	if treatment != "" {
		record.AddTreatment(treatment)
	}
	record.UpdatedAt = timeNow()

	if err := s.store.Save(ctx, record); err != nil {
		s.log.Warnf("Failed to save medical record of %s: %+v", patientID, err)
		return nil, err
	}

	s.recorder.record(ctx, activity{
		actorID:  actorID,
		action:   entity.AuditActionMedicalRecordUpdate,
		kind:     entity.KindMedicalRecord,
		entityID: record.PatientID,
		oldValue: map[string]interface{}{},
		newValue: map[string]interface{}{"diagnosis": diagnosis, "treatment": treatment},
	})
	return record, nil
}

func loadMedicalRecord(ctx context.Context, store repository.Store, recordID string) (*entity.MedicalRecord, error) {
	var record entity.MedicalRecord
	if err := store.Load(ctx, entity.KindMedicalRecord, recordID, &record); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: no medical record %q", ErrUnknownParty, recordID)
		}
		return nil, err
	}
	return &record, nil
}
