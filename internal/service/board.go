package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"campus_parking/internal/gateway"
	"campus_parking/internal/logger"
	"campus_parking/internal/models"
)

const (
	defaultPollInterval = 5 * time.Second

	// The dashboard forces a fixed layout: after sorting by spot ID, the
	// first four spots render on level 1 and the next four on level 2.
	spotsPerBoardLevel = 4
	boardLevelCount    = 2
)

// ErrLevelHidden is returned when a level is requested that the current user
// is not offered (accessible-flagged users are restricted to level 1).
var ErrLevelHidden = fmt.Errorf("level not offered to this user")

// BoardService polls the gateway on a fixed interval while active and keeps
// the latest occupancy snapshot. Each activation owns its own cancellable
// poll task; a generation counter guards against a late response from a dead
// activation being applied to a later one.
type BoardService struct {
	gw       gateway.Gateway
	log      *logger.Logger
	interval time.Duration

	mu     sync.Mutex
	spots  []models.ParkingSpot
	user   models.User
	active bool
	gen    uint64
	cancel context.CancelFunc
}

func NewBoardService(gw gateway.Gateway, log *logger.Logger, interval time.Duration) *BoardService {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &BoardService{gw: gw, log: log, interval: interval}
}

var _ Board = (*BoardService)(nil)

// Activate starts polling for the given user. A prior activation, if any, is
// torn down first so at most one poll task runs.
func (b *BoardService) Activate(user models.User) {
	b.mu.Lock()
	b.teardownLocked()
	b.gen++
	b.active = true
	b.user = user
	gen := b.gen
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.mu.Unlock()

	go b.poll(ctx, gen, user)
}

// Deactivate cancels the poll task and discards the snapshot. Responses still
// in flight are dropped by the generation guard.
func (b *BoardService) Deactivate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.teardownLocked()
}

func (b *BoardService) teardownLocked() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.active = false
	b.gen++
	b.spots = nil
}

// poll fetches immediately, then on every tick, until ctx is canceled.
func (b *BoardService) poll(ctx context.Context, gen uint64, user models.User) {
	b.fetchOnce(ctx, gen, user)

	t := time.NewTicker(b.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			b.fetchOnce(ctx, gen, user)
		}
	}
}

func (b *BoardService) fetchOnce(ctx context.Context, gen uint64, user models.User) {
	spots, err := b.gw.ListSpots(ctx, user.NeedsAccessibleSpot)
	if err != nil {
		// The gateway's fallback contract makes this unreachable in
		// practice; keep the prior snapshot if it ever happens.
		if b.log != nil {
			b.log.Errorw("board_fetch_failed", "err", err)
		}
		return
	}
	b.apply(gen, spots)
}

// apply replaces the snapshot wholesale, but only if the response belongs to
// the current activation.
func (b *BoardService) apply(gen uint64, spots []models.ParkingSpot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active || b.gen != gen {
		if b.log != nil {
			b.log.Infow("board_stale_response_dropped", "gen", gen, "current", b.gen)
		}
		return
	}
	sort.Slice(spots, func(i, j int) bool { return spots[i].SpotID < spots[j].SpotID })
	b.spots = spots
}

// Refresh performs one immediate guarded fetch outside the timer, used after
// a booking completes. It is a no-op while the board is inactive.
func (b *BoardService) Refresh(ctx context.Context) error {
	b.mu.Lock()
	if !b.active {
		b.mu.Unlock()
		return nil
	}
	gen, user := b.gen, b.user
	b.mu.Unlock()

	b.fetchOnce(ctx, gen, user)
	return nil
}

// Snapshot returns a copy of the current spot snapshot.
func (b *BoardService) Snapshot() []models.ParkingSpot {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.ParkingSpot, len(b.spots))
	copy(out, b.spots)
	return out
}

// Levels lists the selectable levels. Accessible-flagged users only ever see
// level 1; other levels are hidden, not merely disabled.
func (b *BoardService) Levels() []int {
	b.mu.Lock()
	accessible := b.user.NeedsAccessibleSpot
	b.mu.Unlock()
	if accessible {
		return []int{1}
	}
	levels := make([]int, 0, boardLevelCount)
	for l := 1; l <= boardLevelCount; l++ {
		levels = append(levels, l)
	}
	return levels
}

// SpotsOnLevel returns the positional slice of the sorted snapshot for one
// level: spots [0,4) for level 1, [4,8) for level 2.
func (b *BoardService) SpotsOnLevel(level int) ([]models.ParkingSpot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if level < 1 || level > boardLevelCount {
		return nil, ErrLevelHidden
	}
	if b.user.NeedsAccessibleSpot && level != 1 {
		return nil, ErrLevelHidden
	}

	lo := (level - 1) * spotsPerBoardLevel
	hi := lo + spotsPerBoardLevel
	if lo >= len(b.spots) {
		return []models.ParkingSpot{}, nil
	}
	if hi > len(b.spots) {
		hi = len(b.spots)
	}
	out := make([]models.ParkingSpot, hi-lo)
	copy(out, b.spots[lo:hi])
	return out, nil
}

// Select returns the current snapshot of one spot for the booking flow.
// A stale read is acceptable: the modal re-fetches reservation state itself.
func (b *BoardService) Select(spotID int) (models.ParkingSpot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.spots {
		if s.SpotID == spotID {
			return s, true
		}
	}
	return models.ParkingSpot{}, false
}
