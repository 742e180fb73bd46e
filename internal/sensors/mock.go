// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
)

// MockReader generates a smoothly swaying orientation, like a phone held in
// a slightly unsteady hand.
type MockReader struct {
	start time.Time
	now   func() time.Time
}

// NewMockReader creates a mock rotation-vector source.
func NewMockReader() *MockReader {
	return &MockReader{start: time.Now(), now: time.Now}
}

// ReadRotation returns [x, y, z, w, headingAccuracy]. The trailing element
// mirrors the five-value rotation vectors some phones emit.
func (m *MockReader) ReadRotation() ([]float64, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	roll := 20 * math.Sin(elapsed) * math.Pi / 180
	pitch := 15 * math.Cos(elapsed*0.7) * math.Pi / 180
	yaw := 5 * math.Sin(elapsed*0.3) * math.Pi / 180

	q := EulerToQuaternion(roll, pitch, yaw)
	return []float64{q.Imag, q.Jmag, q.Kmag, q.Real, 0}, nil
}

// EulerToQuaternion composes rotations about x (roll), y (pitch) and
// z (yaw), applied in that order, into a unit quaternion.
func EulerToQuaternion(roll, pitch, yaw float64) quat.Number {
	qx := quat.Number{Real: math.Cos(roll / 2), Imag: math.Sin(roll / 2)}
	qy := quat.Number{Real: math.Cos(pitch / 2), Jmag: math.Sin(pitch / 2)}
	qz := quat.Number{Real: math.Cos(yaw / 2), Kmag: math.Sin(yaw / 2)}
	return quat.Mul(qz, quat.Mul(qy, qx))
}
