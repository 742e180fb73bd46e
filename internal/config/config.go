// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sensor backends selectable with SENSOR_BACKEND.
const (
	BackendMock   = "mock"
	BackendMQTT   = "mqtt"
	BackendBNO055 = "bno055"
	BackendSerial = "serial"
	BackendNone   = "none"
)

// Config holds all application configuration values.
type Config struct {
	// Sensor
	SensorBackend          string
	SensorSamplingPeriodUS int // microseconds

	// Animation
	AnimationDurationMS      int
	AnimationFrameIntervalMS int
	DecelerateFactor         float64

	// MQTT
	MQTTBroker           string
	MQTTClientIDViewer   string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string

	// Topics
	TopicRotationVector string
	TopicAngleChange    string
	PublishAngles       bool // viewer publishes angle changes on TopicAngleChange

	// BNO055 Hardware
	BNO055I2CBus  string
	BNO055I2CAddr uint16

	// Serial IMU link
	SerialPort     string
	SerialBaudRate int

	// Hosts
	WebServerPort int
	SceneFile     string
}

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	return &Config{
		SensorBackend:          BackendMock,
		SensorSamplingPeriodUS: 100000,

		AnimationDurationMS:      300,
		AnimationFrameIntervalMS: 16,
		DecelerateFactor:         1.0,

		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDViewer:   "view-motion-viewer",
		MQTTClientIDProducer: "view-motion-producer",
		MQTTClientIDConsole:  "view-motion-console",

		TopicRotationVector: "view_motion/rotation_vector",
		TopicAngleChange:    "view_motion/angle_change",

		BNO055I2CAddr: 0x28,

		SerialPort:     "/dev/ttyUSB0",
		SerialBaudRate: 115200,

		WebServerPort: 8080,
		SceneFile:     "scene.yaml",
	}
}

// SamplingPeriod returns the sensor sampling hint.
func (c *Config) SamplingPeriod() time.Duration {
	return time.Duration(c.SensorSamplingPeriodUS) * time.Microsecond
}

// AnimationDuration returns the length of one translation animation.
func (c *Config) AnimationDuration() time.Duration {
	return time.Duration(c.AnimationDurationMS) * time.Millisecond
}

// FrameInterval returns the animator frame tick.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.AnimationFrameIntervalMS) * time.Millisecond
}

// Process-wide configuration. Set it with InitGlobal and read it with Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct. Keys not
// present keep their Default values.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func positiveInt(key, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, v)
	}
	return v, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// Sensor
	case "SENSOR_BACKEND":
		switch value {
		case BackendMock, BackendMQTT, BackendBNO055, BackendSerial, BackendNone:
			c.SensorBackend = value
		default:
			return fmt.Errorf("SENSOR_BACKEND must be one of mock, mqtt, bno055, serial, none, got %q", value)
		}
	case "SENSOR_SAMPLING_PERIOD_US":
		c.SensorSamplingPeriodUS, err = positiveInt(key, value)

	// Animation
	case "ANIMATION_DURATION_MS":
		v, convErr := strconv.Atoi(value)
		if convErr != nil {
			return fmt.Errorf("invalid ANIMATION_DURATION_MS %q: %w", value, convErr)
		}
		if v < 0 {
			return fmt.Errorf("ANIMATION_DURATION_MS must not be negative, got %d", v)
		}
		c.AnimationDurationMS = v
	case "ANIMATION_FRAME_INTERVAL_MS":
		c.AnimationFrameIntervalMS, err = positiveInt(key, value)
	case "DECELERATE_FACTOR":
		f, convErr := strconv.ParseFloat(value, 64)
		if convErr != nil {
			return fmt.Errorf("invalid DECELERATE_FACTOR %q: %w", value, convErr)
		}
		if f <= 0 {
			return fmt.Errorf("DECELERATE_FACTOR must be positive, got %v", f)
		}
		c.DecelerateFactor = f

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_VIEWER":
		c.MQTTClientIDViewer = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value

	// Topics
	case "TOPIC_ROTATION_VECTOR":
		c.TopicRotationVector = value
	case "TOPIC_ANGLE_CHANGE":
		c.TopicAngleChange = value
	case "PUBLISH_ANGLES":
		b, convErr := strconv.ParseBool(value)
		if convErr != nil {
			return fmt.Errorf("invalid PUBLISH_ANGLES %q: %w", value, convErr)
		}
		c.PublishAngles = b

	// BNO055 Hardware
	case "BNO055_I2C_BUS":
		c.BNO055I2CBus = value
	case "BNO055_I2C_ADDR":
		addr, convErr := strconv.ParseUint(value, 0, 16)
		if convErr != nil {
			return fmt.Errorf("invalid BNO055_I2C_ADDR %q: %w", value, convErr)
		}
		if addr != 0x28 && addr != 0x29 {
			return fmt.Errorf("BNO055_I2C_ADDR must be 0x28 or 0x29, got 0x%02X", addr)
		}
		c.BNO055I2CAddr = uint16(addr)

	// Serial IMU link
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		c.SerialBaudRate, err = positiveInt(key, value)

	// Hosts
	case "WEB_SERVER_PORT":
		port, convErr := strconv.Atoi(value)
		if convErr != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, convErr)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("WEB_SERVER_PORT must be 1-65535, got %d", port)
		}
		c.WebServerPort = port
	case "SCENE_FILE":
		c.SceneFile = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return err
}

// validate checks that the fields the selected backend needs are set.
func (c *Config) validate() error {
	switch c.SensorBackend {
	case BackendMQTT:
		if c.MQTTBroker == "" {
			return fmt.Errorf("MQTT_BROKER is required for the mqtt backend")
		}
		if c.TopicRotationVector == "" {
			return fmt.Errorf("TOPIC_ROTATION_VECTOR is required for the mqtt backend")
		}
	case BackendSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required for the serial backend")
		}
	}
	if c.PublishAngles && (c.MQTTBroker == "" || c.TopicAngleChange == "") {
		return fmt.Errorf("PUBLISH_ANGLES needs MQTT_BROKER and TOPIC_ANGLE_CHANGE")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
