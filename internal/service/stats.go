package service

import (
	"context"

	"campus_parking/internal/gateway"
	"campus_parking/internal/models"
)

// StatsService serves the operator console aggregate. The gateway has no
// failure path for this operation, so neither does the service.
type StatsService struct {
	gw gateway.Gateway
}

func NewStatsService(gw gateway.Gateway) *StatsService {
	return &StatsService{gw: gw}
}

var _ Stats = (*StatsService)(nil)

func (s *StatsService) Overview(ctx context.Context) (models.AdminStats, error) {
	return s.gw.AdminStats(ctx)
}
