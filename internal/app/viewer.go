// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/relabs-tech/view_motion/internal/animation"
	"github.com/relabs-tech/view_motion/internal/config"
	"github.com/relabs-tech/view_motion/internal/motion"
	"github.com/relabs-tech/view_motion/internal/orientation"
	"github.com/relabs-tech/view_motion/internal/render"
	"github.com/relabs-tech/view_motion/internal/sensors"
	"github.com/relabs-tech/view_motion/internal/term"
	"github.com/relabs-tech/view_motion/internal/web"
)

// viewer is a scene wired to a sensor: layers registered with a
// ViewMotion, animated by a shared animator.
type viewer struct {
	vm       *motion.ViewMotion
	layers   []*render.Layer
	animator *animation.Animator
	closers  []func()
}

func (v *viewer) close() {
	for i := len(v.closers) - 1; i >= 0; i-- {
		v.closers[i]()
	}
}

// loadScene reads the scene file, falling back to the default scene when
// the file does not exist.
func loadScene(path string) (*config.Scene, error) {
	s, err := config.LoadScene(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("scene file %s not found, using default scene", path)
		return config.DefaultScene(), nil
	}
	return s, err
}

func newViewer(cfg *config.Config) (*viewer, error) {
	scene, err := loadScene(cfg.SceneFile)
	if err != nil {
		return nil, err
	}
	layers, err := render.NewLayers(scene)
	if err != nil {
		return nil, err
	}

	v := &viewer{layers: layers}

	manager, closeManager, err := openSensorManager(cfg)
	if err != nil {
		// Elements stay still without a sensor; the host still runs.
		log.Printf("sensor backend %s unavailable: %v", cfg.SensorBackend, err)
		manager = nil
	} else {
		v.closers = append(v.closers, closeManager)
	}

	v.animator = animation.NewAnimator(cfg.AnimationDuration(), animation.Decelerate(cfg.DecelerateFactor))
	v.vm = motion.New(manager, v.animator, cfg.SamplingPeriod())
	for _, l := range layers {
		v.vm.Register(l, l.MaxTranslation)
	}
	log.Printf("registered %d layers", len(layers))

	v.publishAngles(cfg)
	return v, nil
}

// publishAngles forwards angle changes to MQTT when PUBLISH_ANGLES is set.
// An unreachable broker only disables publishing.
func (v *viewer) publishAngles(cfg *config.Config) {
	if !cfg.PublishAngles {
		return
	}
	client, err := dialMQTT(cfg.MQTTBroker, cfg.MQTTClientIDViewer+"-angles")
	if err != nil {
		log.Printf("angle publishing disabled: %v", err)
		return
	}
	v.closers = append(v.closers, func() { client.Disconnect(250) })

	pub := sensors.NewPublisher(client, "", cfg.TopicAngleChange)
	v.vm.Tracker().OnChange(func(change orientation.AngleChange) {
		if err := pub.PublishAngleChange(change); err != nil {
			log.Printf("angle publish error: %v", err)
		}
	})
}

// RunWeb serves the scene to browsers until ctx is done.
func RunWeb(ctx context.Context) error {
	cfg := config.Get()

	v, err := newViewer(cfg)
	if err != nil {
		return err
	}
	defer v.close()

	go v.animator.Run(ctx, cfg.FrameInterval())

	srv := web.NewServer(v.layers, v.vm.Gate())
	err = srv.Run(ctx, fmt.Sprintf(":%d", cfg.WebServerPort), cfg.FrameInterval())
	v.vm.Gate().OnDestroy()
	return err
}

// RunTerm shows the scene in the terminal until the user quits or ctx is
// done.
func RunTerm(ctx context.Context) error {
	cfg := config.Get()

	v, err := newViewer(cfg)
	if err != nil {
		return err
	}
	defer v.close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go v.animator.Run(ctx, cfg.FrameInterval())

	return term.NewHost(screen, v.layers, v.vm.Gate()).Run(ctx, cfg.FrameInterval())
}
