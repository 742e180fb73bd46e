// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package lifecycle

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/view_motion/internal/sensors"
)

// State of the host as seen by the gate.
type State int

const (
	Inactive State = iota
	Active
	Destroyed
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

// Tracker is the sensor listener the gate subscribes while active.
type Tracker interface {
	sensors.Listener
	Reset()
}

// Registry holds references to host elements, released on teardown.
type Registry interface {
	Clear()
}

// Gate subscribes the tracker to the sensor subsystem only while the host
// is active, and releases registered elements when the host is destroyed.
// Hosts drive it through OnActivate, OnDeactivate and OnDestroy.
type Gate struct {
	manager        sensors.Manager
	tracker        Tracker
	registry       Registry
	sensorType     sensors.Type
	samplingPeriod time.Duration

	mu         sync.Mutex
	state      State
	subscribed bool
}

// NewGate returns an inactive gate. A nil manager means the device has no
// sensor subsystem; the gate then never subscribes.
func NewGate(manager sensors.Manager, tracker Tracker, registry Registry, samplingPeriod time.Duration) *Gate {
	if samplingPeriod <= 0 {
		samplingPeriod = sensors.DefaultSamplingPeriod
	}
	return &Gate{
		manager:        manager,
		tracker:        tracker,
		registry:       registry,
		sensorType:     sensors.TypeRotationVector,
		samplingPeriod: samplingPeriod,
	}
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Subscribed reports whether the tracker currently receives samples.
func (g *Gate) Subscribed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.subscribed
}

// OnActivate subscribes the tracker. A missing or unavailable sensor is not
// an error: the host stays active and elements simply never move.
func (g *Gate) OnActivate() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Inactive {
		return
	}
	g.state = Active

	if g.manager == nil {
		log.Println("gate: no sensor manager, motion disabled")
		return
	}

	err := g.manager.Subscribe(g.sensorType, g.samplingPeriod, g.tracker)
	switch {
	case errors.Is(err, sensors.ErrSensorUnavailable):
		log.Printf("gate: %v not available, motion disabled", g.sensorType)
		return
	case err != nil:
		log.Printf("gate: subscribe %v: %v", g.sensorType, err)
		return
	}
	g.subscribed = true
}

// OnDeactivate unsubscribes the tracker and drops its calibration so the
// next activation starts from a fresh reference.
func (g *Gate) OnDeactivate() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != Active {
		return
	}
	g.deactivateLocked()
}

func (g *Gate) deactivateLocked() {
	if g.subscribed {
		g.manager.Unsubscribe(g.tracker)
		g.subscribed = false
	}
	g.tracker.Reset()
	g.state = Inactive
}

// OnDestroy releases every registered element. It is terminal: later
// transitions are ignored.
func (g *Gate) OnDestroy() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Destroyed {
		return
	}
	if g.state == Active {
		g.deactivateLocked()
	}
	g.registry.Clear()
	g.state = Destroyed
	log.Println("gate: destroyed, elements released")
}
