// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package term

import (
	"context"
	"image"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/relabs-tech/view_motion/internal/render"
)

// Lifecycle receives the terminal's focus transitions and teardown.
type Lifecycle interface {
	OnActivate()
	OnDeactivate()
	OnDestroy()
}

// Host draws scene layers as colored boxes, scaling the scene canvas to the
// terminal size. Terminal focus stands in for visibility.
type Host struct {
	screen tcell.Screen
	layers []*render.Layer
	canvas image.Rectangle
	lc     Lifecycle
}

// NewHost uses an initialized screen; the caller owns Fini.
func NewHost(screen tcell.Screen, layers []*render.Layer, lc Lifecycle) *Host {
	return &Host{
		screen: screen,
		layers: layers,
		canvas: render.Canvas(layers),
		lc:     lc,
	}
}

// Run activates the scene and redraws every frameInterval until the user
// quits (q, Esc, Ctrl-C) or ctx is done. The scene is destroyed on return.
func (h *Host) Run(ctx context.Context, frameInterval time.Duration) error {
	h.screen.EnableFocus()
	defer h.lc.OnDestroy()

	h.lc.OnActivate()
	h.draw()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !h.handle(ev) {
				return nil
			}
		case <-ticker.C:
			h.draw()
		}
	}
}

// handle returns false when the user asked to quit.
func (h *Host) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			log.Println("term: quit requested")
			return false
		}
	case *tcell.EventFocus:
		if ev.Focused {
			h.lc.OnActivate()
		} else {
			h.lc.OnDeactivate()
		}
	case *tcell.EventResize:
		h.screen.Sync()
		h.draw()
	}
	return true
}

func (h *Host) draw() {
	h.screen.Clear()
	w, ht := h.screen.Size()
	if w == 0 || ht == 0 || h.canvas.Empty() {
		h.screen.Show()
		return
	}

	for _, l := range h.layers {
		r := h.toCells(l.Bounds(), w, ht)
		style := tcell.StyleDefault.
			Background(tcell.NewRGBColor(int32(l.Color.R), int32(l.Color.G), int32(l.Color.B))).
			Foreground(tcell.ColorWhite)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				h.screen.SetContent(x, y, ' ', nil, style)
			}
		}
		if r.Empty() {
			continue
		}
		x := r.Min.X
		for _, ch := range l.Label {
			if x >= r.Max.X {
				break
			}
			h.screen.SetContent(x, r.Min.Y, ch, nil, style)
			x++
		}
	}
	h.screen.Show()
}

// toCells maps a canvas rectangle in pixels to terminal cells.
func (h *Host) toCells(b image.Rectangle, w, ht int) image.Rectangle {
	c := h.canvas
	r := image.Rect(
		(b.Min.X-c.Min.X)*w/c.Dx(),
		(b.Min.Y-c.Min.Y)*ht/c.Dy(),
		(b.Max.X-c.Min.X)*w/c.Dx(),
		(b.Max.Y-c.Min.Y)*ht/c.Dy(),
	)
	return r.Intersect(image.Rect(0, 0, w, ht))
}
