package gesture

import "time"

// DefaultCooldown is the window for live single-frame detection.
const DefaultCooldown = 5 * time.Second

// CooldownTracker converts a raw per-frame detection stream into a
// rate-limited event stream. It is owned by a single session and holds
// the only mutable state in the detection path: the per-gesture
// last-fired timestamps. One writer, no I/O, no failure modes.
//
// Re-arm policy: elapsed time alone suffices. A gesture that stays
// geometrically true re-fires once per cooldown window; it does not need
// to go false and true again.
type CooldownTracker struct {
	window    time.Duration
	lastFired map[string]time.Time
}

// NewCooldownTracker creates an empty tracker with the given window.
// A non-positive window disables debouncing (every detection fires).
func NewCooldownTracker(window time.Duration) *CooldownTracker {
	return &CooldownTracker{
		window:    window,
		lastFired: make(map[string]time.Time),
	}
}

// Filter returns the subset of names firing at the given instant: those
// never fired before, or whose cooldown window has elapsed since their
// last firing. Fired names have their timestamp updated; suppressed
// names do not reset the clock, which runs from the last firing rather
// than the last true observation.
func (c *CooldownTracker) Filter(now time.Time, names []string) []string {
	var fired []string
	for _, name := range names {
		last, seen := c.lastFired[name]
		if seen && c.window > 0 && now.Sub(last) < c.window {
			continue
		}
		c.lastFired[name] = now
		fired = append(fired, name)
	}
	return fired
}

// SetWindow updates the cooldown window. Existing firing history keeps
// its timestamps and is re-judged against the new window.
func (c *CooldownTracker) SetWindow(window time.Duration) {
	c.window = window
}

// LastFired reports when the named gesture last fired.
func (c *CooldownTracker) LastFired(name string) (time.Time, bool) {
	t, ok := c.lastFired[name]
	return t, ok
}

// Reset clears all firing history, as on session restart.
func (c *CooldownTracker) Reset() {
	c.lastFired = make(map[string]time.Time)
}
