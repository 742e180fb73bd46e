// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// RotationMessage is the MQTT payload for one rotation-vector sample.
type RotationMessage struct {
	Values   []float64 `json:"values"`
	Accuracy Accuracy  `json:"accuracy"`
	Time     string    `json:"time,omitempty"` // RFC3339Nano
}

// DecodeRotationMessage parses a RotationMessage payload. The timestamp
// falls back to now when absent or malformed.
func DecodeRotationMessage(payload []byte, now time.Time) ([]float64, Accuracy, time.Time, error) {
	var msg RotationMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, 0, now, fmt.Errorf("rotation payload: %w", err)
	}
	ts := now
	if msg.Time != "" {
		if t, err := time.Parse(time.RFC3339Nano, msg.Time); err == nil {
			ts = t
		}
	}
	return msg.Values, msg.Accuracy, ts, nil
}

// MQTTManager receives rotation vectors published on an MQTT topic, e.g. by
// cmd/producer on the device that carries the IMU. The topic subscription
// follows the listener set: first in subscribes, last out unsubscribes.
type MQTTManager struct {
	client mqtt.Client
	topic  string
	qos    byte

	d dispatcher

	mu sync.Mutex
}

// NewMQTTManager uses an already connected client.
func NewMQTTManager(client mqtt.Client, topic string) *MQTTManager {
	return &MQTTManager{client: client, topic: topic}
}

// Subscribe registers l, subscribing to the topic if l is the first
// listener. The sampling period is up to the publisher.
func (m *MQTTManager) Subscribe(t Type, _ time.Duration, l Listener) error {
	if !provides(t) {
		return fmt.Errorf("mqtt %s: %v: %w", m.topic, t, ErrSensorUnavailable)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	first, added := m.d.add(l, t)
	if !added || !first {
		return nil
	}

	token := m.client.Subscribe(m.topic, m.qos, m.handle)
	if token.Wait() && token.Error() != nil {
		m.d.remove(l)
		return fmt.Errorf("mqtt subscribe %s: %w", m.topic, token.Error())
	}
	log.Printf("sensors: subscribed to MQTT topic %s", m.topic)
	return nil
}

// Unsubscribe removes l, dropping the topic subscription with the last one.
func (m *MQTTManager) Unsubscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()

	last, removed := m.d.remove(l)
	if !removed || !last {
		return
	}

	token := m.client.Unsubscribe(m.topic)
	if token.Wait() && token.Error() != nil {
		log.Printf("sensors: MQTT unsubscribe %s error: %v", m.topic, token.Error())
		return
	}
	log.Printf("sensors: unsubscribed from MQTT topic %s", m.topic)
}

func (m *MQTTManager) handle(_ mqtt.Client, msg mqtt.Message) {
	values, accuracy, ts, err := DecodeRotationMessage(msg.Payload(), time.Now())
	if err != nil {
		log.Printf("sensors: %s: %v", msg.Topic(), err)
		return
	}
	m.d.dispatch(values, accuracy, ts)
}
