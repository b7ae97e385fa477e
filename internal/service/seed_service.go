package service

import (
	"context"
	"errors"

	"go-clinic-management/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const seedActor = "system"

// DefaultPassword is given to every seeded account; first login forces a change
const DefaultPassword = "password"

// SeedService creates the demo accounts and inventory when they are absent
type SeedService struct {
	log       *logrus.Logger
	users     UserService
	inventory InventoryService
	schedules ScheduleService
}

func NewSeedService(log *logrus.Logger, users UserService, inventory InventoryService, schedules ScheduleService) *SeedService {
	return &SeedService{
		log:       log,
		users:     users,
		inventory: inventory,
		schedules: schedules,
	}
}

func seedUsers() []NewUserInput {
	return []NewUserInput{
		{ID: "admin", Name: "Administrator", Role: entity.RoleAdmin},
		{ID: "doc1", Name: "Dr. Smith", Role: entity.RoleDoctor, Specialization: "General Practice"},
		{ID: "doc2", Name: "Dr. Johnson", Role: entity.RoleDoctor, Specialization: "Cardiology"},
		{ID: "pharm1", Name: "Pharmacist One", Role: entity.RolePharmacist},
		{ID: "patient1", Name: "Jane Doe", Role: entity.RolePatient, Email: "jane.doe@example.com", ContactNumber: "555-0101", DateOfBirth: "1990-05-14", Gender: "Female", BloodType: "A+"},
		{ID: "patient2", Name: "John Smith", Role: entity.RolePatient, Email: "john.smith@example.com", ContactNumber: "555-0102", DateOfBirth: "1985-11-02", Gender: "Male", BloodType: "O-"},
	}
}

func seedInventory() []NewItemInput {
	return []NewItemInput{
		{MedicationName: "Aspirin", StockLevel: 100, LowStockAlertLevel: 20, UnitPrice: decimal.RequireFromString("0.25")},
		{MedicationName: "Paracetamol", StockLevel: 150, LowStockAlertLevel: 30, UnitPrice: decimal.RequireFromString("0.15")},
		{MedicationName: "Ibuprofen", StockLevel: 80, LowStockAlertLevel: 15, UnitPrice: decimal.RequireFromString("0.3")},
	}
}

// Seed is idempotent: existing users and items are left untouched
func (s *SeedService) Seed(ctx context.Context) error {
	created := 0
	for _, input := range seedUsers() {
		input.Password = DefaultPassword
		input.FirstLogin = true

		user, err := s.users.Create(ctx, seedActor, input)
		if err != nil {
			if errors.Is(err, ErrUserExists) {
				continue
			}
			s.log.Warnf("Failed to seed user %s: %+v", input.ID, err)
			return err
		}
		created++

		if user.IsDoctor() {
			if _, err := s.schedules.InitializeSchedule(ctx, seedActor, user.ID, timeNow()); err != nil {
				s.log.Warnf("Failed to seed schedule of %s: %+v", user.ID, err)
				return err
			}
		}
	}

	for _, input := range seedInventory() {
		if _, err := s.inventory.AddItem(ctx, seedActor, input); err != nil {
			if errors.Is(err, ErrMedicationExists) {
				continue
			}
			s.log.Warnf("Failed to seed inventory item %s: %+v", input.MedicationName, err)
			return err
		}
		created++
	}

	s.log.Infof("Seed completed: %d records created", created)
	return nil
}
