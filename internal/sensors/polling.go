// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Reader is a pollable rotation-vector source, returning [x, y, z, w, ...].
type Reader interface {
	ReadRotation() ([]float64, error)
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// PollingManager turns a Reader into a Manager. Every subscription gets its
// own ticker goroutine at the requested period, so one listener is only ever
// called from one goroutine.
type PollingManager struct {
	name   string
	reader Reader

	readMu sync.Mutex

	mu     sync.Mutex
	subs   map[Listener]*subscription
	closed bool
}

// NewPollingManager returns a manager polling r. name is used in logs.
func NewPollingManager(name string, r Reader) *PollingManager {
	return &PollingManager{
		name:   name,
		reader: r,
		subs:   make(map[Listener]*subscription),
	}
}

// Subscribe starts polling for l. Subscribing an already subscribed
// listener is a no-op.
func (m *PollingManager) Subscribe(t Type, samplingPeriod time.Duration, l Listener) error {
	if !provides(t) {
		return fmt.Errorf("%s: %v: %w", m.name, t, ErrSensorUnavailable)
	}
	if samplingPeriod <= 0 {
		samplingPeriod = DefaultSamplingPeriod
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("%s: %w", m.name, ErrClosed)
	}
	if _, ok := m.subs[l]; ok {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	m.subs[l] = sub

	go m.poll(ctx, sub.done, t, samplingPeriod, l)
	log.Printf("sensors: %s: %v subscribed every %v", m.name, t, samplingPeriod)
	return nil
}

// Unsubscribe stops polling for l and waits for its goroutine to exit.
func (m *PollingManager) Unsubscribe(l Listener) {
	m.mu.Lock()
	sub, ok := m.subs[l]
	delete(m.subs, l)
	m.mu.Unlock()

	if !ok {
		return
	}
	sub.cancel()
	<-sub.done
	log.Printf("sensors: %s: listener unsubscribed", m.name)
}

// Close stops every subscription. The manager cannot be reused.
func (m *PollingManager) Close() error {
	m.mu.Lock()
	m.closed = true
	subs := m.subs
	m.subs = make(map[Listener]*subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.cancel()
		<-sub.done
	}
	return nil
}

func (m *PollingManager) poll(ctx context.Context, done chan<- struct{}, t Type, period time.Duration, l Listener) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	reported := false
	for {
		select {
		case <-ctx.Done():
			return
		case ts := <-ticker.C:
			m.readMu.Lock()
			values, err := m.reader.ReadRotation()
			m.readMu.Unlock()
			if err != nil {
				log.Printf("sensors: %s read error: %v", m.name, err)
				continue
			}
			if ctx.Err() != nil {
				return
			}
			if !reported {
				l.OnAccuracyChanged(t, AccuracyHigh)
				reported = true
			}
			l.OnSensorChanged(&Event{
				Sensor:    t,
				Values:    values,
				Accuracy:  AccuracyHigh,
				Timestamp: ts,
			})
		}
	}
}
