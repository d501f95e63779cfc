// Package scan turns raw decoder output into discrete scan events.
package scan

import "time"

// DefaultCooldown is how long a repeat of the last accepted code is ignored.
const DefaultCooldown = 2000 * time.Millisecond

// Debouncer suppresses immediate repeats of the same code. A camera holding a
// barcode in view decodes it many times per second; only the first decode of a
// pass is accepted. Re-presenting the same item after the cooldown is accepted
// again and counts as another unit.
//
// The zero value is ready to use with DefaultCooldown. A Debouncer is not safe
// for concurrent use; callers serialize Observe.
type Debouncer struct {
	Cooldown time.Duration

	last       string
	acceptedAt time.Time
	seen       bool
}

// Observe reports whether code should be emitted as a logical scan at now.
func (d *Debouncer) Observe(code string, now time.Time) bool {
	if d.seen && code == d.last && now.Sub(d.acceptedAt) < d.cooldown() {
		return false
	}
	d.last = code
	d.acceptedAt = now
	d.seen = true
	return true
}

func (d *Debouncer) cooldown() time.Duration {
	if d.Cooldown <= 0 {
		return DefaultCooldown
	}
	return d.Cooldown
}
