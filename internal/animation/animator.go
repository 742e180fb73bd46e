// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package animation

import (
	"context"
	"sync"
	"time"
)

// Property names an animatable element value.
type Property int

const (
	TranslationX Property = iota
	TranslationY
)

func (p Property) String() string {
	switch p {
	case TranslationX:
		return "translationX"
	case TranslationY:
		return "translationY"
	}
	return "unknown"
}

// Element is a visual element owned by a host. Implementations must be
// comparable (typically a pointer) and safe for use from the frame loop.
type Element interface {
	Value(p Property) float64
	SetValue(p Property, v float64)
}

// DefaultDuration is the length of one translation animation.
const DefaultDuration = 300 * time.Millisecond

// DefaultFrameInterval is the frame loop tick used by Run when none is set.
const DefaultFrameInterval = 16 * time.Millisecond

type animationKey struct {
	el   Element
	prop Property
}

type propertyAnimation struct {
	from, to float64
	start    time.Time
}

// Animator runs property animations on elements. Starting an animation on
// an element property that is already animating replaces it, continuing
// from the element's current value; nothing is queued.
type Animator struct {
	duration     time.Duration
	interpolator Interpolator
	now          func() time.Time

	mu      sync.Mutex
	running map[animationKey]*propertyAnimation
}

// NewAnimator returns an animator with the given duration and easing.
func NewAnimator(duration time.Duration, interpolator Interpolator) *Animator {
	if interpolator == nil {
		interpolator = Decelerate(1)
	}
	return &Animator{
		duration:     duration,
		interpolator: interpolator,
		now:          time.Now,
		running:      make(map[animationKey]*propertyAnimation),
	}
}

// Animate starts independent translation X and Y animations on el.
func (a *Animator) Animate(el Element, targetX, targetY float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	a.startLocked(el, TranslationX, targetX, now)
	a.startLocked(el, TranslationY, targetY, now)
}

func (a *Animator) startLocked(el Element, p Property, target float64, now time.Time) {
	if a.duration <= 0 {
		el.SetValue(p, target)
		delete(a.running, animationKey{el, p})
		return
	}
	a.running[animationKey{el, p}] = &propertyAnimation{
		from:  el.Value(p),
		to:    target,
		start: now,
	}
}

// Step advances every running animation to now and drops the finished ones.
// It returns the number still running.
func (a *Animator) Step(now time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	for key, anim := range a.running {
		t := float64(now.Sub(anim.start)) / float64(a.duration)
		if t >= 1 {
			key.el.SetValue(key.prop, anim.to)
			delete(a.running, key)
			continue
		}
		if t < 0 {
			t = 0
		}
		key.el.SetValue(key.prop, Lerp(anim.from, anim.to, a.interpolator(t)))
	}
	return len(a.running)
}

// Running returns the number of property animations in flight.
func (a *Animator) Running() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.running)
}

// Run drives Step on every frame until ctx is done.
func (a *Animator) Run(ctx context.Context, frameInterval time.Duration) error {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.Step(a.now())
		}
	}
}
