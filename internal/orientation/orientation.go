// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RotationVectorSize is the number of rotation-vector components used for
// matrix conversion. Longer vectors are truncated.
const RotationVectorSize = 4

// Matrix is a 4x4 row-major rotation matrix. Only the upper-left 3x3 block
// carries rotation; the last row and column are identity.
type Matrix [16]float64

// AngleChange holds per-axis rotation relative to the reference orientation:
//
//	[0] about z, [1] about x (pitch), [2] about y (roll)
//
// Values are radians until normalized by the Tracker.
type AngleChange [3]float64

// RotationMatrixFromVector converts a rotation vector [x, y, z, (w)] into a
// rotation matrix. When w is missing it is derived from the unit-norm
// constraint. Vectors with fewer than three components are rejected.
func RotationMatrixFromVector(v []float64) (Matrix, bool) {
	var m Matrix
	if len(v) < 3 {
		return m, false
	}

	q1, q2, q3 := v[0], v[1], v[2]
	var q0 float64
	if len(v) >= 4 {
		q0 = v[3]
	} else {
		q0 = 1 - q1*q1 - q2*q2 - q3*q3
		if q0 > 0 {
			q0 = math.Sqrt(q0)
		} else {
			q0 = 0
		}
	}

	sqQ1 := 2 * q1 * q1
	sqQ2 := 2 * q2 * q2
	sqQ3 := 2 * q3 * q3
	q1q2 := 2 * q1 * q2
	q3q0 := 2 * q3 * q0
	q1q3 := 2 * q1 * q3
	q2q0 := 2 * q2 * q0
	q2q3 := 2 * q2 * q3
	q1q0 := 2 * q1 * q0

	m[0] = 1 - sqQ2 - sqQ3
	m[1] = q1q2 - q3q0
	m[2] = q1q3 + q2q0

	m[4] = q1q2 + q3q0
	m[5] = 1 - sqQ1 - sqQ3
	m[6] = q2q3 - q1q0

	m[8] = q1q3 - q2q0
	m[9] = q2q3 + q1q0
	m[10] = 1 - sqQ1 - sqQ2

	m[15] = 1
	return m, true
}

// rotation3 extracts the 3x3 rotation block.
func (m *Matrix) rotation3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	})
}

// AngleChangeBetween computes the rotation of cur relative to ref, in
// radians, from the difference matrix refᵀ·cur.
func AngleChangeBetween(cur, ref *Matrix) AngleChange {
	var rd mat.Dense
	rd.Mul(ref.rotation3().T(), cur.rotation3())

	// non-orthonormal input can push this past ±1
	sinPitch := math.Max(-1, math.Min(1, -rd.At(2, 1)))

	return AngleChange{
		math.Atan2(rd.At(0, 1), rd.At(1, 1)),
		math.Asin(sinPitch),
		math.Atan2(-rd.At(2, 0), rd.At(2, 2)),
	}
}

// RadianToFraction maps an angle from (-π, π) to a fraction in [-1, 1].
// NaN maps to 0.
func RadianToFraction(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	f := v / math.Pi
	if f < -1 {
		return -1
	}
	if f > 1 {
		return 1
	}
	return f
}
