package audio

import (
	"sync"
	"time"
)

// DefaultPeakHoldDuration is how long a peak is held before it may drop.
const DefaultPeakHoldDuration = 3 * time.Second

// PeakHolder tracks the peak-hold state of a meter.
// It is safe for concurrent use.
type PeakHolder struct {
	mu           sync.Mutex
	held         uint8
	heldAt       time.Time
	holdDuration time.Duration
}

// NewPeakHolder creates a peak holder with the default duration.
func NewPeakHolder() *PeakHolder {
	return &PeakHolder{holdDuration: DefaultPeakHoldDuration}
}

// Update raises the hold when value exceeds it, or replaces it once the hold
// duration has passed since it was last set. It returns the held value.
func (p *PeakHolder) Update(value uint8, now time.Time) uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if value > p.held || now.Sub(p.heldAt) >= p.holdDuration {
		p.held = value
		p.heldAt = now
	}
	return p.held
}

// Held returns the current held value.
func (p *PeakHolder) Held() uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.held
}

// SetHoldDuration updates the peak hold duration.
func (p *PeakHolder) SetHoldDuration(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.holdDuration = d
}

// Reset clears the held value.
func (p *PeakHolder) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.held = 0
	p.heldAt = time.Time{}
}
