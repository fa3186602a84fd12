package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_renewDelay(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	s := &Scheduler{lead: renewLead, floor: renewFloor, now: func() time.Time { return now }}

	t.Run("fires lead ahead of expiry", func(t *testing.T) {
		expiry := now.Add(10 * time.Minute)
		assert.Equal(t, 10*time.Minute-renewLead, s.renewDelay(expiry))
	})

	t.Run("never sooner than the floor", func(t *testing.T) {
		// A token expiring in 3s would otherwise schedule in the past.
		assert.Equal(t, renewFloor, s.renewDelay(now.Add(3*time.Second)))
		assert.Equal(t, renewFloor, s.renewDelay(now.Add(-time.Minute)))
		assert.Equal(t, renewFloor, s.renewDelay(now.Add(renewLead+renewFloor)))
	})
}

func TestScheduler_Arm(t *testing.T) {
	t.Run("arms a timer for a token with an expiry", func(t *testing.T) {
		s := NewScheduler()
		defer s.Disarm()

		token := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
		s.Arm(token, func() {})

		assert.True(t, s.armed())
	})

	t.Run("no timer for a token without a decodable expiry", func(t *testing.T) {
		s := NewScheduler()

		s.Arm(signToken(t, jwt.MapClaims{"sub": "42"}), func() {})
		assert.False(t, s.armed())

		s.Arm("garbage", func() {})
		assert.False(t, s.armed())
	})

	t.Run("re-arming replaces the pending timer", func(t *testing.T) {
		s := &Scheduler{lead: time.Millisecond, floor: 20 * time.Millisecond, now: time.Now}
		defer s.Disarm()

		var first, second atomic.Int32
		token := signToken(t, jwt.MapClaims{"exp": time.Now().Add(30 * time.Millisecond).Unix()})

		s.Arm(token, func() { first.Add(1) })
		s.Arm(token, func() { second.Add(1) })

		time.Sleep(150 * time.Millisecond)
		assert.Equal(t, int32(0), first.Load(), "replaced timer must not fire")
		assert.Equal(t, int32(1), second.Load())
	})

	t.Run("fires exactly once and does not re-arm itself", func(t *testing.T) {
		s := &Scheduler{lead: time.Millisecond, floor: 10 * time.Millisecond, now: time.Now}
		defer s.Disarm()

		var fired atomic.Int32
		token := signToken(t, jwt.MapClaims{"exp": time.Now().Add(20 * time.Millisecond).Unix()})
		s.Arm(token, func() { fired.Add(1) })

		require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int32(1), fired.Load())
	})
}

func TestScheduler_Disarm(t *testing.T) {
	t.Run("cancels the pending timer", func(t *testing.T) {
		s := &Scheduler{lead: time.Millisecond, floor: 20 * time.Millisecond, now: time.Now}

		var fired atomic.Int32
		token := signToken(t, jwt.MapClaims{"exp": time.Now().Add(30 * time.Millisecond).Unix()})
		s.Arm(token, func() { fired.Add(1) })
		s.Disarm()

		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, int32(0), fired.Load())
		assert.False(t, s.armed())
	})

	t.Run("idempotent", func(t *testing.T) {
		s := NewScheduler()
		s.Disarm()
		s.Disarm()
	})
}
