package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"campus_parking/internal/models"
	"campus_parking/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var _ EventLog = (*EventLogService)(nil)

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeOp trims spaces and uppercases the operation filter.
func normalizeOp(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}
	return from, to, normalizeOp(f.Op), nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.GatewayEvent, error) {
	from, to, op, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, from, to, op)
}
