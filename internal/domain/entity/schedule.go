package entity

import (
	"fmt"
	"sort"
	"time"
)

// SlotLayout is the label format of a bookable slot, e.g. 2024-01-10T09:00
const SlotLayout = "2006-01-02T15:04"

// ParseSlot converts a slot label into its timestamp. Only the canonical
// zero-padded form is accepted, so one instant has exactly one label.
func ParseSlot(slot string) (time.Time, error) {
	t, err := time.Parse(SlotLayout, slot)
	if err != nil {
		return time.Time{}, err
	}
	if canonical := FormatSlot(t); canonical != slot {
		return time.Time{}, fmt.Errorf("slot %q must be written as %q", slot, canonical)
	}
	return t, nil
}

// FormatSlot renders a timestamp as a slot label
func FormatSlot(t time.Time) string {
	return t.Format(SlotLayout)
}

// Schedule tracks a doctor's slots. A label is in at most one of Available and
// Booked: booking moves it to Booked, release moves it back.
type Schedule struct {
	Available      []string `json:"available"`
	Booked         []string `json:"booked"`
	AppointmentIDs []string `json:"appointment_ids"`
}

// IsAvailable reports whether the slot can be booked
func (s *Schedule) IsAvailable(slot string) bool {
	return indexOf(s.Available, slot) >= 0
}

// IsBooked reports whether the slot is consumed by an appointment
func (s *Schedule) IsBooked(slot string) bool {
	return indexOf(s.Booked, slot) >= 0
}

// Book consumes an available slot. Returns false if the slot is not available.
func (s *Schedule) Book(slot string) bool {
	i := indexOf(s.Available, slot)
	if i < 0 {
		return false
	}
	s.Available = append(s.Available[:i], s.Available[i+1:]...)
	s.Booked = insertSorted(s.Booked, slot)
	return true
}

// Release returns a booked slot to availability. Returns false if the slot was not booked.
func (s *Schedule) Release(slot string) bool {
	i := indexOf(s.Booked, slot)
	if i < 0 {
		return false
	}
	s.Booked = append(s.Booked[:i], s.Booked[i+1:]...)
	s.Available = insertSorted(s.Available, slot)
	return true
}

// Open adds a new available slot. Returns false if the slot is already known.
func (s *Schedule) Open(slot string) bool {
	if s.IsAvailable(slot) || s.IsBooked(slot) {
		return false
	}
	s.Available = insertSorted(s.Available, slot)
	return true
}

// Close withdraws an available slot. Booked slots cannot be closed.
func (s *Schedule) Close(slot string) bool {
	i := indexOf(s.Available, slot)
	if i < 0 {
		return false
	}
	s.Available = append(s.Available[:i], s.Available[i+1:]...)
	return true
}

// AddAppointment appends an appointment back-reference
func (s *Schedule) AddAppointment(appointmentID string) {
	if indexOf(s.AppointmentIDs, appointmentID) >= 0 {
		return
	}
	s.AppointmentIDs = append(s.AppointmentIDs, appointmentID)
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

// slot labels sort chronologically as strings
func insertSorted(list []string, v string) []string {
	i := sort.SearchStrings(list, v)
	list = append(list, "")
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}
