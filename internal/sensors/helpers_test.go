// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// recordingListener keeps a copy of every sample it receives.
type recordingListener struct {
	mu         sync.Mutex
	samples    [][]float64
	types      []Type
	accuracies []Accuracy
}

func (r *recordingListener) OnSensorChanged(ev *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, append([]float64(nil), ev.Values...))
	r.types = append(r.types, ev.Sensor)
}

func (r *recordingListener) OnAccuracyChanged(_ Type, a Accuracy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accuracies = append(r.accuracies, a)
}

func (r *recordingListener) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.samples)
}

func (r *recordingListener) last() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.samples) == 0 {
		return nil
	}
	return r.samples[len(r.samples)-1]
}

// sentence frames an NMEA body with its checksum.
func sentence(body string) string {
	var cs byte
	for i := 0; i < len(body); i++ {
		cs ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, cs)
}

type doneToken struct{ err error }

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Error() error                   { return t.err }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

// fakeClient records topic subscriptions; unimplemented methods panic via
// the nil embedded interface.
type fakeClient struct {
	mqtt.Client

	mu           sync.Mutex
	handlers     map[string]mqtt.MessageHandler
	subscribes   int
	unsubscribes int
	subErr       error
	published    []published
}

func newFakeClient() *fakeClient {
	return &fakeClient{handlers: make(map[string]mqtt.MessageHandler)}
}

func (c *fakeClient) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribes++
	if c.subErr != nil {
		return &doneToken{err: c.subErr}
	}
	c.handlers[topic] = cb
	return &doneToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unsubscribes++
	for _, t := range topics {
		delete(c.handlers, t)
	}
	return &doneToken{}
}

// deliver routes a payload like the broker would.
func (c *fakeClient) deliver(topic string, payload []byte) bool {
	c.mu.Lock()
	cb, ok := c.handlers[topic]
	c.mu.Unlock()
	if !ok {
		return false
	}
	cb(c, &fakeMessage{topic: topic, payload: payload})
	return true
}

type published struct {
	topic    string
	retained bool
	payload  []byte
}

// Publish records the message and routes it to any subscriber.
func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	b, _ := payload.([]byte)
	c.mu.Lock()
	c.published = append(c.published, published{topic: topic, retained: retained, payload: b})
	c.mu.Unlock()
	c.deliver(topic, b)
	return &doneToken{}
}
