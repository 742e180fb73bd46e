// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"
)

func TestEulerToQuaternion(t *testing.T) {
	assert.Equal(t, quat.Number{Real: 1}, EulerToQuaternion(0, 0, 0))

	q := EulerToQuaternion(0, 0, math.Pi/2)
	want := quat.Number{Real: math.Cos(math.Pi / 4), Kmag: math.Sin(math.Pi / 4)}
	if diff := cmp.Diff(want, q, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("yaw quaternion mismatch (-want +got):\n%s", diff)
	}
}

func TestMockReaderProducesUnitQuaternions(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	m := &MockReader{start: start, now: func() time.Time { return now }}

	for i := 0; i < 50; i++ {
		now = start.Add(time.Duration(i) * 137 * time.Millisecond)
		v, err := m.ReadRotation()
		require.NoError(t, err)
		require.Len(t, v, 5)

		norm := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2] + v[3]*v[3])
		assert.InDelta(t, 1.0, norm, 1e-9)
	}
}
