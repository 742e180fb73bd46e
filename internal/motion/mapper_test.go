// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/view_motion/internal/orientation"
)

func TestMap(t *testing.T) {
	tests := []struct {
		name   string
		change orientation.AngleChange
		max    int
		want   Offset
	}{
		{"reference example", orientation.AngleChange{0, 0.5, -0.25}, 280, Offset{X: 70, Y: 140}},
		{"at rest", orientation.AngleChange{0, 0, 0}, 280, Offset{}},
		{"z axis ignored", orientation.AngleChange{1, 0, 0}, 100, Offset{}},
		{"full tilt", orientation.AngleChange{0, -1, 1}, 100, Offset{X: -100, Y: -100}},
		{"zero magnitude", orientation.AngleChange{0.3, 0.4, 0.5}, 0, Offset{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Map(tt.change, tt.max)
			assert.InDelta(t, tt.want.X, got.X, 1e-12)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-12)
		})
	}
}

func TestMapIsPure(t *testing.T) {
	change := orientation.AngleChange{0.1, -0.2, 0.3}
	first := Map(change, 50)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Map(change, 50))
	}
	assert.Equal(t, orientation.AngleChange{0.1, -0.2, 0.3}, change)
}
