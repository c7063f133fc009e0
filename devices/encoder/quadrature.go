package encoder

import (
	"sync/atomic"

	"github.com/itohio/omnibase/devices"
)

// Quadrature state transition lookup table.
// Maps 4-bit state transition (oldAB << 2 | newAB) to delta: -1, 0, or 1.
var states = [16]int8{0, -1, 1, 0, 1, 0, 0, -1, -1, 0, 0, 1, 0, 1, -1, 0}

// Quadrature tracks position of a two-channel incremental encoder using pin
// interrupts with 4x decoding (every edge counts).
type Quadrature struct {
	pinA, pinB devices.Pin

	// position is read from the control loop while the interrupt handler
	// writes it, so access is atomic.
	position int64

	// oldAB stores the last 4 bits of state transitions (2 bits per transition).
	// Only touched from the interrupt handler.
	oldAB uint32
}

// NewQuadrature creates a quadrature decoder on pins A and B.
// The pins must support interrupts.
func NewQuadrature(pinA, pinB devices.Pin) *Quadrature {
	return &Quadrature{pinA: pinA, pinB: pinB}
}

// Configure reads the initial pin state and enables edge interrupts on both
// channels.
func (q *Quadrature) Configure() error {
	initialAB := uint32(0)
	if q.pinA.Get() {
		initialAB |= 0x02
	}
	if q.pinB.Get() {
		initialAB |= 0x01
	}
	// Seed as if this state has been seen twice so the first real
	// transition decodes correctly.
	q.oldAB = initialAB | (initialAB << 2)

	if err := q.pinA.SetInterrupt(devices.PinToggle, q.interrupt); err != nil {
		return err
	}
	return q.pinB.SetInterrupt(devices.PinToggle, q.interrupt)
}

func (q *Quadrature) interrupt(devices.Pin) {
	q.oldAB <<= 2
	if q.pinA.Get() {
		q.oldAB |= 0x02
	}
	if q.pinB.Get() {
		q.oldAB |= 0x01
	}

	if delta := int64(states[q.oldAB&0x0f]); delta != 0 {
		atomic.AddInt64(&q.position, delta)
	}
}

// Read returns the current step count.
func (q *Quadrature) Read() int64 {
	return atomic.LoadInt64(&q.position)
}

// Reset zeroes the step counter.
func (q *Quadrature) Reset() {
	atomic.StoreInt64(&q.position, 0)
}
