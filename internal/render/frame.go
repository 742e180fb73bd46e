// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	Background = color.RGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xff}
	LabelColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Frame rasterizes layers in order onto a canvas of the given bounds. Later
// layers are drawn on top.
func Frame(bounds image.Rectangle, layers []*Layer) *image.RGBA {
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, &image.Uniform{Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{LabelColor},
		Face: basicfont.Face7x13,
	}

	for _, l := range layers {
		r := l.Bounds()
		draw.Draw(img, r, &image.Uniform{l.Color}, image.Point{}, draw.Src)

		// Label in the top-left corner
		drawer.Dot = fixed.P(r.Min.X+4, r.Min.Y+basicfont.Face7x13.Ascent+2)
		drawer.DrawString(l.Label)
	}
	return img
}
