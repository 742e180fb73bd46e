// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/view_motion/internal/config"
	"github.com/relabs-tech/view_motion/internal/motion"
	"github.com/relabs-tech/view_motion/internal/orientation"
	"github.com/relabs-tech/view_motion/internal/sensors"
)

// RunConsole prints the angle changes published by a viewer, with the
// offset each scene layer gets from them, until ctx is done.
func RunConsole(ctx context.Context) error {
	cfg := config.Get()

	scene, err := loadScene(cfg.SceneFile)
	if err != nil {
		return err
	}

	client, err := dialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	token := client.Subscribe(cfg.TopicAngleChange, 0, func(_ mqtt.Client, msg mqtt.Message) {
		m, err := sensors.DecodeAngleMessage(msg.Payload())
		if err != nil {
			log.Printf("console: %v", err)
			return
		}
		printAngle(os.Stdout, m, scene)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicAngleChange)

	<-ctx.Done()
	return nil
}

func printAngle(w io.Writer, m sensors.AngleMessage, scene *config.Scene) {
	fmt.Fprintf(w, "[ANGLE] AZIMUTH=%6.3f  PITCH=%6.3f  ROLL=%6.3f\n",
		m.Values[0], m.Values[1], m.Values[2])
	for _, e := range scene.Elements {
		off := motion.Map(orientation.AngleChange(m.Values), scene.Px(e.MaxTranslationDP))
		fmt.Fprintf(w, "        %-12s X=%8.2f  Y=%8.2f\n", e.ID, off.X, off.Y)
	}
}
