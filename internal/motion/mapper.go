// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import "github.com/relabs-tech/view_motion/internal/orientation"

// Offset is a translation target in device pixels.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Map turns a normalized angle change into a translation target for an
// element allowed to move up to maxTranslation pixels. Roll drives the
// horizontal axis (inverted) and pitch the vertical one; the z component is
// not used. The axis assignment matches the rotation-vector convention of
// handheld devices and is kept as tuned.
func Map(change orientation.AngleChange, maxTranslation int) Offset {
	m := float64(maxTranslation)
	return Offset{
		X: -change[2] * m,
		Y: change[1] * m,
	}
}
