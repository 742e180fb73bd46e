// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/relabs-tech/view_motion/internal/sensors"
)

// Handler receives normalized angle changes, each component in [-1, 1].
type Handler func(AngleChange)

// Tracker turns rotation-vector samples into normalized angle changes
// relative to the orientation seen first after a (re)subscription.
//
// Samples arrive from a single delivery goroutine. Reset may be called from
// another goroutine; the calibration flag is atomic so the next sample sees
// it, while the reference matrix itself is only touched by the delivery
// goroutine.
type Tracker struct {
	initialized atomic.Bool
	reference   Matrix
	truncated   [RotationVectorSize]float64

	mu       sync.Mutex
	handlers []Handler
}

// NewTracker returns an uncalibrated tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// OnChange registers h to receive every computed angle change.
func (t *Tracker) OnChange(h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers = append(t.handlers, h)
}

// Calibrated reports whether a reference orientation is held.
func (t *Tracker) Calibrated() bool {
	return t.initialized.Load()
}

// Reset discards the reference orientation; the next sample recalibrates.
func (t *Tracker) Reset() {
	t.initialized.Store(false)
}

// OnSensorChanged implements sensors.Listener.
func (t *Tracker) OnSensorChanged(ev *sensors.Event) {
	if ev == nil {
		return
	}

	v := t.rotationVector(ev.Values)
	if !finite(v) {
		return
	}
	m, ok := RotationMatrixFromVector(v)
	if !ok {
		return
	}

	if !t.initialized.Load() {
		t.reference = m
		t.initialized.Store(true)
		return
	}

	change := AngleChangeBetween(&m, &t.reference)
	for i, v := range change {
		change[i] = RadianToFraction(v)
	}

	t.mu.Lock()
	handlers := t.handlers
	t.mu.Unlock()
	for _, h := range handlers {
		h(change)
	}
}

// OnAccuracyChanged implements sensors.Listener. Accuracy is not used.
func (t *Tracker) OnAccuracyChanged(sensors.Type, sensors.Accuracy) {}

// finite reports whether no component is NaN or infinite.
func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// rotationVector copies oversized vectors into the tracker's own buffer.
// Some devices report five or more values, which the matrix conversion must
// not see, and the event buffer may be reused by the producer.
func (t *Tracker) rotationVector(values []float64) []float64 {
	if len(values) > RotationVectorSize {
		copy(t.truncated[:], values[:RotationVectorSize])
		return t.truncated[:]
	}
	return values
}
