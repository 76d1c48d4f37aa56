package service

import (
	"context"
	"fmt"
	"sync"

	"campus_parking/internal/gateway"
	"campus_parking/internal/logger"
	"campus_parking/internal/models"
)

// ScheduleService holds the time-slot preferences picked right after login
// and writes them out through the gateway, one call per slot. Saving is
// best-effort across slots: there is no atomicity and partial success is not
// reconciled.
type ScheduleService struct {
	gw  gateway.Gateway
	log *logger.Logger

	mu       sync.Mutex
	selected map[string]bool // keyed by slot label
}

func NewScheduleService(gw gateway.Gateway, log *logger.Logger) *ScheduleService {
	return &ScheduleService{gw: gw, log: log, selected: make(map[string]bool)}
}

var _ Schedule = (*ScheduleService)(nil)

// Toggle flips one slot in or out of the selection.
func (s *ScheduleService) Toggle(label string) error {
	if !knownLabel(label) {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, label)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[label] {
		delete(s.selected, label)
	} else {
		s.selected[label] = true
	}
	return nil
}

// Replace sets the whole selection at once.
func (s *ScheduleService) Replace(labels []string) error {
	next := make(map[string]bool, len(labels))
	for _, l := range labels {
		if !knownLabel(l) {
			return fmt.Errorf("%w: %q", ErrUnknownSlot, l)
		}
		next[l] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = next
	return nil
}

// Selected returns the picked slots in catalog order.
func (s *ScheduleService) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.selected))
	for _, w := range models.SlotCatalog() {
		if s.selected[w.Label] {
			out = append(out, w.Label)
		}
	}
	return out
}

// Save writes the current selection through the gateway and clears it. Slot
// writes go out concurrently with no ordering guarantee; failures are logged
// by the gateway and never surfaced here.
func (s *ScheduleService) Save(ctx context.Context, userID string) error {
	labels := s.Selected()
	if len(labels) == 0 {
		return nil
	}
	if err := s.gw.SaveSchedule(ctx, userID, labels); err != nil {
		return err
	}
	s.mu.Lock()
	s.selected = make(map[string]bool)
	s.mu.Unlock()
	if s.log != nil {
		s.log.Infow("schedule_saved", "user_id", userID, "slots", len(labels))
	}
	return nil
}

func knownLabel(label string) bool {
	for _, w := range models.SlotCatalog() {
		if w.Label == label {
			return true
		}
	}
	return false
}
