package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// renewLead is how long before access-token expiry the renewal fires.
	renewLead = 30 * time.Second

	// renewFloor is the soonest a renewal may be scheduled, so a token
	// that is already near expiry cannot trigger a renewal storm.
	renewFloor = 5 * time.Second
)

// Scheduler arms a single timer that fires shortly before the access token
// expires. It never re-arms itself; the manager re-arms after each
// successful renewal produces a new access token.
type Scheduler struct {
	lead  time.Duration
	floor time.Duration
	now   func() time.Time

	mu    sync.Mutex
	timer *time.Timer
}

// NewScheduler creates a scheduler with the standard lead time and floor.
func NewScheduler() *Scheduler {
	return &Scheduler{lead: renewLead, floor: renewFloor, now: time.Now}
}

// Arm schedules onDue against the token's exp claim, replacing any pending
// timer. A token without a decodable expiry leaves nothing armed; the
// caller falls back to reactive renewal on the next authorization failure.
func (s *Scheduler) Arm(accessToken string, onDue func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	expiry, ok := AccessExpiry(accessToken)
	if !ok {
		return
	}

	delay := s.renewDelay(expiry)
	s.timer = time.AfterFunc(delay, onDue)

	log.Debug().
		Dur("delay", delay).
		Time("expiry", expiry).
		Msg("armed refresh timer")
}

// Disarm cancels any pending timer. Idempotent.
func (s *Scheduler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// renewDelay fires lead ahead of expiry but never sooner than the floor.
func (s *Scheduler) renewDelay(expiry time.Time) time.Duration {
	delay := expiry.Sub(s.now()) - s.lead
	if delay < s.floor {
		delay = s.floor
	}
	return delay
}

// armed reports whether a timer is pending.
func (s *Scheduler) armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
