// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// AngleMessage is the MQTT payload for one normalized angle change:
// azimuth, pitch and roll fractions in [-1, 1].
type AngleMessage struct {
	Values [3]float64 `json:"values"`
	Time   string     `json:"time"` // RFC3339Nano
}

// DecodeAngleMessage parses an AngleMessage payload.
func DecodeAngleMessage(payload []byte) (AngleMessage, error) {
	var msg AngleMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, fmt.Errorf("angle payload: %w", err)
	}
	return msg, nil
}

// Publisher forwards samples to MQTT. As a Listener it republishes raw
// rotation vectors on the rotation topic; PublishAngleChange reports what a
// tracker derived from them. Messages are not retained: a stale sample must
// never become a new calibration reference.
type Publisher struct {
	client        mqtt.Client
	rotationTopic string
	angleTopic    string
	qos           byte
	now           func() time.Time
}

// NewPublisher uses an already connected client. Either topic may be empty
// to disable that stream.
func NewPublisher(client mqtt.Client, rotationTopic, angleTopic string) *Publisher {
	return &Publisher{
		client:        client,
		rotationTopic: rotationTopic,
		angleTopic:    angleTopic,
		now:           time.Now,
	}
}

func (p *Publisher) OnSensorChanged(ev *Event) {
	if p.rotationTopic == "" {
		return
	}
	msg := RotationMessage{
		Values:   ev.Values,
		Accuracy: ev.Accuracy,
		Time:     ev.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if err := p.publish(p.rotationTopic, msg); err != nil {
		log.Printf("sensors: %v", err)
	}
}

func (p *Publisher) OnAccuracyChanged(t Type, a Accuracy) {
	log.Printf("sensors: %v accuracy now %d", t, a)
}

// PublishAngleChange sends one normalized angle change.
func (p *Publisher) PublishAngleChange(change [3]float64) error {
	if p.angleTopic == "" {
		return nil
	}
	return p.publish(p.angleTopic, AngleMessage{
		Values: change,
		Time:   p.now().UTC().Format(time.RFC3339Nano),
	})
}

func (p *Publisher) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}
	if token := p.client.Publish(topic, p.qos, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish %s: %w", topic, token.Error())
	}
	return nil
}
