// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SceneElement describes one moving layer. Geometry and translation are in
// density-independent units.
type SceneElement struct {
	ID               string  `yaml:"id"`
	Label            string  `yaml:"label"`
	X                float64 `yaml:"x"`
	Y                float64 `yaml:"y"`
	Width            float64 `yaml:"width"`
	Height           float64 `yaml:"height"`
	Color            string  `yaml:"color"`
	MaxTranslationDP float64 `yaml:"max_translation_dp"`
}

// Scene is the set of elements a host registers, in registration order.
type Scene struct {
	Density  float64        `yaml:"density"`
	Elements []SceneElement `yaml:"elements"`
}

// Px converts density-independent units to device pixels.
func (s *Scene) Px(dp float64) int {
	return int(dp * s.Density)
}

// DefaultScene is a background layer that travels far and a foreground layer
// that barely moves.
func DefaultScene() *Scene {
	return &Scene{
		Density: 1,
		Elements: []SceneElement{
			{ID: "background", Label: "background", X: 40, Y: 40, Width: 560, Height: 360, Color: "#3f51b5", MaxTranslationDP: 280},
			{ID: "foreground", Label: "foreground", X: 220, Y: 160, Width: 200, Height: 120, Color: "#ff9800", MaxTranslationDP: 100},
		},
	}
}

// LoadScene reads a YAML scene file. A missing density defaults to 1.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scene file: %w", err)
	}
	if s.Density == 0 {
		s.Density = 1
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) validate() error {
	if s.Density < 0 {
		return fmt.Errorf("scene density must be positive, got %v", s.Density)
	}
	if len(s.Elements) == 0 {
		return fmt.Errorf("scene has no elements")
	}
	seen := make(map[string]bool, len(s.Elements))
	for i, e := range s.Elements {
		if e.ID == "" {
			return fmt.Errorf("scene element %d has no id", i)
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate scene element id %q", e.ID)
		}
		seen[e.ID] = true
		if e.Width <= 0 || e.Height <= 0 {
			return fmt.Errorf("scene element %q must have a positive size", e.ID)
		}
		if e.MaxTranslationDP < 0 {
			return fmt.Errorf("scene element %q has negative max_translation_dp", e.ID)
		}
	}
	return nil
}
