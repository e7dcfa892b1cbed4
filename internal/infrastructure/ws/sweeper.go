package ws

import (
	"time"

	"github.com/hilthontt/huddle/internal/domain"
	"github.com/hilthontt/huddle/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const (
	DefaultSweepInterval = 5 * time.Minute
	DefaultIdleExpiry    = 10 * time.Minute
)

// Sweeper periodically reclaims rooms that sit empty past the idle threshold.
// It goes through the same registry lock as every connection-triggered
// operation, so a sweep cannot interleave with a create or join on the same
// code.
type Sweeper struct {
	registry   *Registry
	interval   time.Duration
	idleExpiry time.Duration
	logger     *zap.SugaredLogger
	done       chan struct{}
}

func NewSweeper(registry *Registry, interval, idleExpiry time.Duration, logger *zap.SugaredLogger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if idleExpiry <= 0 {
		idleExpiry = DefaultIdleExpiry
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Sweeper{
		registry:   registry,
		interval:   interval,
		idleExpiry: idleExpiry,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Run blocks until Stop is called. Call it from its own goroutine.
func (s *Sweeper) Run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			expired := s.registry.expireIdle(s.idleExpiry)
			if len(expired) > 0 {
				s.logger.Infow("expired idle rooms", "count", len(expired))
			}
		case <-s.done:
			return
		}
	}
}

func (s *Sweeper) Stop() {
	close(s.done)
}

// expireIdle deletes every room whose membership set is absent or empty and
// whose last activity is at least idleFor in the past. Occupied rooms are
// never touched, regardless of age.
func (r *Registry) expireIdle(idleFor time.Duration) []domain.Room {
	cutoff := r.now().Add(-idleFor)

	r.mu.Lock()

	var expired []domain.Room
	for code, m := range r.meta {
		if len(r.members[code]) > 0 {
			continue
		}
		if m.lastActivity.After(cutoff) {
			continue
		}

		expired = append(expired, domain.Room{
			Code:           code,
			CreatedAt:      m.createdAt,
			LastActivityAt: m.lastActivity,
		})
		delete(r.meta, code)
		delete(r.members, code)
	}

	if len(expired) > 0 {
		metrics.RoomsExpired.Add(float64(len(expired)))
		metrics.RoomsActive.Set(float64(len(r.meta)))
	}

	r.mu.Unlock()

	for _, room := range expired {
		r.sink.RoomExpired(room)
	}

	return expired
}
