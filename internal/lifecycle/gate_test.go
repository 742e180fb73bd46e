// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lifecycle

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/view_motion/internal/sensors"
)

type fakeManager struct {
	err          error
	subscribed   map[sensors.Listener]time.Duration
	types        []sensors.Type
	unsubscribes int
}

func newFakeManager() *fakeManager {
	return &fakeManager{subscribed: make(map[sensors.Listener]time.Duration)}
}

func (m *fakeManager) Subscribe(t sensors.Type, period time.Duration, l sensors.Listener) error {
	if m.err != nil {
		return m.err
	}
	m.types = append(m.types, t)
	m.subscribed[l] = period
	return nil
}

func (m *fakeManager) Unsubscribe(l sensors.Listener) {
	m.unsubscribes++
	delete(m.subscribed, l)
}

type fakeTracker struct{ resets int }

func (t *fakeTracker) OnSensorChanged(*sensors.Event)                   {}
func (t *fakeTracker) OnAccuracyChanged(sensors.Type, sensors.Accuracy) {}
func (t *fakeTracker) Reset()                                           { t.resets++ }

type fakeRegistry struct{ clears int }

func (r *fakeRegistry) Clear() { r.clears++ }

func TestGateActivateDeactivate(t *testing.T) {
	m, tr, reg := newFakeManager(), &fakeTracker{}, &fakeRegistry{}
	g := NewGate(m, tr, reg, 0)
	assert.Equal(t, Inactive, g.State())

	g.OnActivate()
	assert.Equal(t, Active, g.State())
	assert.True(t, g.Subscribed())
	assert.Equal(t, sensors.DefaultSamplingPeriod, m.subscribed[tr])
	assert.Equal(t, []sensors.Type{sensors.TypeRotationVector}, m.types)

	// repeated activation does not resubscribe
	g.OnActivate()
	assert.Len(t, m.types, 1)

	g.OnDeactivate()
	assert.Equal(t, Inactive, g.State())
	assert.False(t, g.Subscribed())
	assert.Empty(t, m.subscribed)
	assert.Equal(t, 1, tr.resets)

	g.OnDeactivate()
	assert.Equal(t, 1, m.unsubscribes, "deactivate while inactive is a no-op")
}

func TestGateReactivationResubscribes(t *testing.T) {
	m, tr := newFakeManager(), &fakeTracker{}
	g := NewGate(m, tr, &fakeRegistry{}, 50*time.Millisecond)

	g.OnActivate()
	g.OnDeactivate()
	g.OnActivate()

	assert.Len(t, m.types, 2)
	assert.Equal(t, 50*time.Millisecond, m.subscribed[tr])
	assert.Equal(t, 1, tr.resets)
}

func TestGateWithoutSensor(t *testing.T) {
	tests := []struct {
		name    string
		manager sensors.Manager
	}{
		{"no manager", nil},
		{"sensor unavailable", &fakeManager{err: fmt.Errorf("bno055: %w", sensors.ErrSensorUnavailable)}},
		{"subscribe failure", &fakeManager{err: errors.New("broker down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, reg := &fakeTracker{}, &fakeRegistry{}
			g := NewGate(tt.manager, tr, reg, 0)

			g.OnActivate()
			assert.Equal(t, Active, g.State())
			assert.False(t, g.Subscribed())

			g.OnDeactivate()
			assert.Equal(t, Inactive, g.State())
			assert.Equal(t, 1, tr.resets)

			g.OnDestroy()
			assert.Equal(t, 1, reg.clears)
		})
	}
}

func TestGateDestroyIsTerminal(t *testing.T) {
	m, tr, reg := newFakeManager(), &fakeTracker{}, &fakeRegistry{}
	g := NewGate(m, tr, reg, 0)

	g.OnActivate()
	g.OnDestroy()
	require.Equal(t, Destroyed, g.State())
	assert.Equal(t, 1, m.unsubscribes, "destroy while active unsubscribes first")
	assert.Equal(t, 1, tr.resets)
	assert.Equal(t, 1, reg.clears)

	g.OnDestroy()
	g.OnActivate()
	g.OnDeactivate()
	assert.Equal(t, Destroyed, g.State())
	assert.Equal(t, 1, reg.clears, "elements cleared exactly once")
	assert.Empty(t, m.subscribed)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "inactive", Inactive.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "destroyed", Destroyed.String())
	assert.Equal(t, "unknown", State(9).String())
}
