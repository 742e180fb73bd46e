// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"sync"
	"time"
)

// dispatcher fans samples from a push source (serial link, MQTT topic) out
// to the subscribed listeners. Deliveries are serialized by deliverMu, which
// also lets remove fence off a listener before returning.
type dispatcher struct {
	mu        sync.Mutex
	listeners map[Listener]Type
	accuracy  map[Listener]Accuracy

	deliverMu sync.Mutex
}

// add registers l and reports whether it is the first listener.
func (d *dispatcher) add(l Listener, t Type) (first, added bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.listeners == nil {
		d.listeners = make(map[Listener]Type)
		d.accuracy = make(map[Listener]Accuracy)
	}
	if _, ok := d.listeners[l]; ok {
		return false, false
	}
	d.listeners[l] = t
	d.accuracy[l] = -1
	return len(d.listeners) == 1, true
}

// remove unregisters l and reports whether no listeners remain. Once it
// returns, l will not be called again.
func (d *dispatcher) remove(l Listener) (last, removed bool) {
	d.mu.Lock()
	if _, ok := d.listeners[l]; !ok {
		d.mu.Unlock()
		return false, false
	}
	delete(d.listeners, l)
	delete(d.accuracy, l)
	last = len(d.listeners) == 0
	d.mu.Unlock()

	// wait out a delivery that may have snapshotted l
	d.deliverMu.Lock()
	d.deliverMu.Unlock()
	return last, true
}

func (d *dispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

type delivery struct {
	l          Listener
	t          Type
	accChanged bool
}

func (d *dispatcher) dispatch(values []float64, accuracy Accuracy, ts time.Time) {
	d.deliverMu.Lock()
	defer d.deliverMu.Unlock()

	d.mu.Lock()
	targets := make([]delivery, 0, len(d.listeners))
	for l, t := range d.listeners {
		changed := d.accuracy[l] != accuracy
		d.accuracy[l] = accuracy
		targets = append(targets, delivery{l: l, t: t, accChanged: changed})
	}
	d.mu.Unlock()

	for _, tg := range targets {
		if tg.accChanged {
			tg.l.OnAccuracyChanged(tg.t, accuracy)
		}
		tg.l.OnSensorChanged(&Event{
			Sensor:    tg.t,
			Values:    values,
			Accuracy:  accuracy,
			Timestamp: ts,
		})
	}
}
