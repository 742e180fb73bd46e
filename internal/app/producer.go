// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"

	"github.com/relabs-tech/view_motion/internal/config"
	"github.com/relabs-tech/view_motion/internal/sensors"
)

// RunProducer publishes the local rotation vector to MQTT until ctx is
// done, for viewers running with the mqtt backend.
func RunProducer(ctx context.Context) error {
	cfg := config.Get()

	if cfg.SensorBackend == config.BackendMQTT || cfg.SensorBackend == config.BackendNone {
		return fmt.Errorf("producer needs a local sensor backend, got %q", cfg.SensorBackend)
	}

	manager, closeManager, err := openSensorManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to open sensor: %w", err)
	}
	defer closeManager()

	client, err := dialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	pub := sensors.NewPublisher(client, cfg.TopicRotationVector, "")
	if err := manager.Subscribe(sensors.TypeRotationVector, cfg.SamplingPeriod(), pub); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer manager.Unsubscribe(pub)

	log.Printf("producer: publishing %s rotation vectors to %s every %v",
		cfg.SensorBackend, cfg.TopicRotationVector, cfg.SamplingPeriod())

	<-ctx.Done()
	log.Println("producer: stopping")
	return nil
}
