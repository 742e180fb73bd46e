// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package animation

import "math"

// Interpolator maps animation progress t ∈ [0, 1] to eased progress.
type Interpolator func(t float64) float64

// Decelerate starts fast and slows towards the end:
//
//	f(t) = 1 - (1-t)^(2·factor)
//
// factor 1 gives the quadratic ease-out.
func Decelerate(factor float64) Interpolator {
	if factor == 1 {
		return func(t float64) float64 {
			return 1 - (1-t)*(1-t)
		}
	}
	return func(t float64) float64 {
		return 1 - math.Pow(1-t, 2*factor)
	}
}

// Lerp interpolates between a and b; t=0 gives a, t=1 gives b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
