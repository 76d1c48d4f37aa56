package service

import (
	"context"
	"errors"
	"testing"
)

func TestScheduleService_ToggleAndSelectedOrder(t *testing.T) {
	s := NewScheduleService(&fakeGateway{}, nil)

	if err := s.Toggle("9:00 AM - 11:00 AM"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := s.Toggle("7:00 AM - 9:00 AM"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	got := s.Selected()
	if len(got) != 2 || got[0] != "7:00 AM - 9:00 AM" || got[1] != "9:00 AM - 11:00 AM" {
		t.Fatalf("selection must follow catalog order, got %v", got)
	}

	// Toggling again removes.
	if err := s.Toggle("7:00 AM - 9:00 AM"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := s.Selected(); len(got) != 1 || got[0] != "9:00 AM - 11:00 AM" {
		t.Fatalf("unexpected selection after untoggle: %v", got)
	}

	if err := s.Toggle("8:00 AM - 10:00 AM"); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}
}

func TestScheduleService_SaveWritesAndClears(t *testing.T) {
	gw := &fakeGateway{}
	s := NewScheduleService(gw, nil)

	if err := s.Replace([]string{"7:00 AM - 9:00 AM", "1:00 PM - 3:00 PM"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := s.Save(context.Background(), "u-1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	if len(gw.scheduleCalls) != 1 {
		t.Fatalf("expected one schedule write batch, got %d", len(gw.scheduleCalls))
	}
	batch := gw.scheduleCalls[0]
	if len(batch) != 2 || batch[0] != "7:00 AM - 9:00 AM" || batch[1] != "1:00 PM - 3:00 PM" {
		t.Fatalf("unexpected batch: %v", batch)
	}

	if got := s.Selected(); len(got) != 0 {
		t.Fatalf("selection must clear after save, got %v", got)
	}
}

func TestScheduleService_SaveWithEmptySelectionIsSkip(t *testing.T) {
	gw := &fakeGateway{}
	s := NewScheduleService(gw, nil)

	if err := s.Save(context.Background(), "u-1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(gw.scheduleCalls) != 0 {
		t.Fatalf("empty selection must not hit the gateway")
	}
}

func TestScheduleService_ReplaceRejectsUnknownLabels(t *testing.T) {
	s := NewScheduleService(&fakeGateway{}, nil)
	err := s.Replace([]string{"7:00 AM - 9:00 AM", "midnight special"})
	if !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}
	if got := s.Selected(); len(got) != 0 {
		t.Fatalf("rejected replace must not change selection, got %v", got)
	}
}
