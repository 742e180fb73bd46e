// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/view_motion/internal/config"
	"github.com/relabs-tech/view_motion/internal/sensors"
)

// dialMQTT is swapped out in tests.
var dialMQTT = connectMQTT

// connectMQTT connects a client to broker.
func connectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	log.Printf("connected to MQTT broker at %s as %s", broker, clientID)
	return client, nil
}

// openSensorManager returns the manager for cfg.SensorBackend and a function
// releasing whatever it opened. The manager is nil for the "none" backend.
func openSensorManager(cfg *config.Config) (sensors.Manager, func(), error) {
	switch cfg.SensorBackend {
	case config.BackendNone:
		return nil, func() {}, nil

	case config.BackendMock:
		m := sensors.NewPollingManager("mock", sensors.NewMockReader())
		return m, func() { m.Close() }, nil

	case config.BackendBNO055:
		dev, bus, err := sensors.OpenBNO055(cfg.BNO055I2CBus, cfg.BNO055I2CAddr)
		if err != nil {
			return nil, nil, err
		}
		m := sensors.NewPollingManager("bno055", dev)
		return m, func() {
			m.Close()
			bus.Close()
		}, nil

	case config.BackendSerial:
		// The port opens on first subscription and closes with the last one.
		return sensors.NewSerialManager(cfg.SerialPort, cfg.SerialBaudRate), func() {}, nil

	case config.BackendMQTT:
		client, err := dialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDViewer)
		if err != nil {
			return nil, nil, err
		}
		return sensors.NewMQTTManager(client, cfg.TopicRotationVector), func() { client.Disconnect(250) }, nil
	}
	return nil, nil, fmt.Errorf("unknown sensor backend %q", cfg.SensorBackend)
}
