// Package countdown implements the resend cooldown and the short redirect
// countdown shown after registration.
package countdown

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gaia-console/gaia/internal/session"
)

// ResendCooldown is the default wait between two verification-code requests.
const ResendCooldown = 60 * time.Second

// Gate is a cooldown whose expiry survives restarts. The stored value is the
// expiry as Unix milliseconds. It is advisory: the server still decides.
type Gate struct {
	Store    session.Store
	Key      string
	Duration time.Duration
	Now      func() time.Time
}

// NewResendGate returns the gate guarding verification-code requests.
func NewResendGate(s session.Store, d time.Duration) *Gate {
	if d <= 0 {
		d = ResendCooldown
	}
	return &Gate{Store: s, Key: session.KeyCountdown, Duration: d, Now: time.Now}
}

func (g *Gate) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// Start begins a new cooldown, replacing any running one, and returns its expiry.
func (g *Gate) Start() (time.Time, error) {
	target := g.now().Add(g.Duration)
	if err := g.Store.Set(g.Key, strconv.FormatInt(target.UnixMilli(), 10)); err != nil {
		return time.Time{}, fmt.Errorf("countdown.Start: %w", err)
	}
	return target, nil
}

// Remaining returns the time left before the gate opens. Absent, expired and
// unreadable values count as zero; the latter two are cleared.
func (g *Gate) Remaining() (time.Duration, error) {
	raw, ok, err := g.Store.Get(g.Key)
	if err != nil {
		return 0, fmt.Errorf("countdown.Remaining: %w", err)
	}
	if !ok {
		return 0, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err == nil {
		if left := time.UnixMilli(ms).Sub(g.now()); left > 0 {
			return left, nil
		}
	}
	if err := g.Store.Clear(g.Key); err != nil {
		return 0, fmt.Errorf("countdown.Remaining: %w", err)
	}
	return 0, nil
}

// Active reports whether the cooldown is still running. A store failure
// leaves the gate open.
func (g *Gate) Active() bool {
	left, err := g.Remaining()
	return err == nil && left > 0
}

// Timer counts down to a fixed instant held in memory.
type Timer struct {
	Target time.Time
	Now    func() time.Time
}

// NewTimer returns a Timer due d after now().
func NewTimer(d time.Duration, now func() time.Time) Timer {
	if now == nil {
		now = time.Now
	}
	return Timer{Target: now().Add(d), Now: now}
}

// Remaining returns the time left, never negative.
func (t Timer) Remaining() time.Duration {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	if left := t.Target.Sub(now()); left > 0 {
		return left
	}
	return 0
}

// Done reports whether the target has been reached.
func (t Timer) Done() bool {
	return t.Remaining() == 0
}

// Seconds rounds d up to whole seconds for display, so "1s" shows until the
// very end.
func Seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
