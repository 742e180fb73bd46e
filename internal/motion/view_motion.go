// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import (
	"sync"
	"time"

	"github.com/relabs-tech/view_motion/internal/animation"
	"github.com/relabs-tech/view_motion/internal/lifecycle"
	"github.com/relabs-tech/view_motion/internal/orientation"
	"github.com/relabs-tech/view_motion/internal/sensors"
)

// Animator starts translation animations on host elements.
type Animator interface {
	Animate(el animation.Element, targetX, targetY float64)
}

// Spec pairs a registered element with its maximum translation in pixels.
type Spec struct {
	Element        animation.Element
	MaxTranslation int
}

// ViewMotion moves registered elements with device orientation. Samples
// flow tracker → Map → animator; the lifecycle gate decides when the
// tracker is subscribed.
type ViewMotion struct {
	tracker  *orientation.Tracker
	animator Animator
	gate     *lifecycle.Gate

	mu    sync.Mutex
	specs []Spec
}

// New wires a ViewMotion to a sensor manager (nil if the device has none)
// and an animator. samplingPeriod is the hint passed on subscription.
func New(manager sensors.Manager, animator Animator, samplingPeriod time.Duration) *ViewMotion {
	v := &ViewMotion{
		tracker:  orientation.NewTracker(),
		animator: animator,
	}
	v.tracker.OnChange(v.animate)
	v.gate = lifecycle.NewGate(manager, v.tracker, v, samplingPeriod)
	return v
}

// Register adds el; it moves at most maxTranslation pixels on each axis.
func (v *ViewMotion) Register(el animation.Element, maxTranslation int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.specs = append(v.specs, Spec{Element: el, MaxTranslation: maxTranslation})
}

// Specs returns a copy of the registered elements in registration order.
func (v *ViewMotion) Specs() []Spec {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Spec(nil), v.specs...)
}

// Clear releases every registered element. Called by the gate on teardown.
func (v *ViewMotion) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.specs = nil
}

// Tracker exposes the orientation tracker, e.g. to attach extra handlers.
func (v *ViewMotion) Tracker() *orientation.Tracker { return v.tracker }

// Gate exposes the lifecycle handlers for the host to call.
func (v *ViewMotion) Gate() *lifecycle.Gate { return v.gate }

func (v *ViewMotion) animate(change orientation.AngleChange) {
	for _, s := range v.Specs() {
		off := Map(change, s.MaxTranslation)
		v.animator.Animate(s.Element, off.X, off.Y)
	}
}
