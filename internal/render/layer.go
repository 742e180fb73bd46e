// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/relabs-tech/view_motion/internal/animation"
	"github.com/relabs-tech/view_motion/internal/config"
)

// Layer is a rectangular element of a scene, in device pixels. Its
// translation is written by the animator and read by hosts.
type Layer struct {
	ID             string
	Label          string
	Rect           image.Rectangle
	Color          color.RGBA
	MaxTranslation int

	mu     sync.RWMutex
	tx, ty float64
}

var _ animation.Element = (*Layer)(nil)

func (l *Layer) Value(p animation.Property) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if p == animation.TranslationX {
		return l.tx
	}
	return l.ty
}

func (l *Layer) SetValue(p animation.Property, v float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p == animation.TranslationX {
		l.tx = v
	} else {
		l.ty = v
	}
}

// Translation returns the current offset from the layer's rest position.
func (l *Layer) Translation() (x, y float64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tx, l.ty
}

// Bounds returns the rectangle the layer currently covers.
func (l *Layer) Bounds() image.Rectangle {
	x, y := l.Translation()
	return l.Rect.Add(image.Pt(round(x), round(y)))
}

// LayerState is the JSON view of a layer sent to browser clients.
type LayerState struct {
	ID             string  `json:"id"`
	Label          string  `json:"label"`
	X              int     `json:"x"`
	Y              int     `json:"y"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Color          string  `json:"color"`
	MaxTranslation int     `json:"max_translation"`
	TX             float64 `json:"tx"`
	TY             float64 `json:"ty"`
}

// State snapshots the layer.
func (l *Layer) State() LayerState {
	tx, ty := l.Translation()
	return LayerState{
		ID:             l.ID,
		Label:          l.Label,
		X:              l.Rect.Min.X,
		Y:              l.Rect.Min.Y,
		Width:          l.Rect.Dx(),
		Height:         l.Rect.Dy(),
		Color:          fmt.Sprintf("#%02x%02x%02x", l.Color.R, l.Color.G, l.Color.B),
		MaxTranslation: l.MaxTranslation,
		TX:             tx,
		TY:             ty,
	}
}

// DefaultColor is used for scene elements without a color.
var DefaultColor = color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}

// NewLayers builds pixel layers from a scene, converting every
// density-independent value with the scene density.
func NewLayers(s *config.Scene) ([]*Layer, error) {
	layers := make([]*Layer, 0, len(s.Elements))
	for _, e := range s.Elements {
		c := DefaultColor
		if e.Color != "" {
			cf, err := colorful.Hex(e.Color)
			if err != nil {
				return nil, fmt.Errorf("layer %q: invalid color %q: %w", e.ID, e.Color, err)
			}
			r, g, b := cf.RGB255()
			c = color.RGBA{R: r, G: g, B: b, A: 0xff}
		}
		label := e.Label
		if label == "" {
			label = e.ID
		}
		origin := image.Pt(s.Px(e.X), s.Px(e.Y))
		layers = append(layers, &Layer{
			ID:             e.ID,
			Label:          label,
			Rect:           image.Rectangle{Min: origin, Max: origin.Add(image.Pt(s.Px(e.Width), s.Px(e.Height)))},
			Color:          c,
			MaxTranslation: s.Px(e.MaxTranslationDP),
		})
	}
	return layers, nil
}

// Canvas returns the smallest rectangle that holds every layer at any
// translation within its limit.
func Canvas(layers []*Layer) image.Rectangle {
	var r image.Rectangle
	for _, l := range layers {
		r = r.Union(l.Rect.Inset(-l.MaxTranslation))
	}
	return r
}

func round(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}
