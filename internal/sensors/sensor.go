// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"time"
)

// Type identifies a kind of sensor stream. Values follow the Android sensor
// type numbering so payloads recorded on phones can be replayed as-is.
type Type int

const (
	TypeRotationVector     Type = 11
	TypeGameRotationVector Type = 15
)

func (t Type) String() string {
	switch t {
	case TypeRotationVector:
		return "rotation_vector"
	case TypeGameRotationVector:
		return "game_rotation_vector"
	}
	return fmt.Sprintf("sensor(%d)", int(t))
}

// Accuracy is the status reported alongside samples.
type Accuracy int

const (
	AccuracyUnreliable Accuracy = iota
	AccuracyLow
	AccuracyMedium
	AccuracyHigh
)

// DefaultSamplingPeriod is the sampling hint used when a subscriber passes
// a non-positive period.
const DefaultSamplingPeriod = 100 * time.Millisecond

// ErrSensorUnavailable is returned by Subscribe when the manager cannot
// provide the requested sensor type.
var ErrSensorUnavailable = errors.New("sensor unavailable")

// ErrClosed is returned when subscribing to a manager that was closed.
var ErrClosed = errors.New("manager closed")

// Event is a single sensor sample.
//
// Values is only valid for the duration of the OnSensorChanged call: managers
// may reuse the backing array for the next sample.
type Event struct {
	Sensor    Type
	Values    []float64
	Accuracy  Accuracy
	Timestamp time.Time
}

// Listener receives sensor samples. A manager never calls the same listener
// concurrently with itself. Listeners are used as map keys and must be
// comparable (pointer receivers are the norm).
type Listener interface {
	OnSensorChanged(ev *Event)
	OnAccuracyChanged(t Type, accuracy Accuracy)
}

// Manager is the sensor subsystem seen by the motion core.
//
// Unsubscribe waits for any in-flight delivery to that listener to return,
// so it must not be called from inside the listener's own callback.
type Manager interface {
	Subscribe(t Type, samplingPeriod time.Duration, l Listener) error
	Unsubscribe(l Listener)
}

func provides(t Type) bool {
	return t == TypeRotationVector || t == TypeGameRotationVector
}
