// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package term

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/view_motion/internal/animation"
	"github.com/relabs-tech/view_motion/internal/render"
)

type fakeLifecycle struct {
	mu          sync.Mutex
	activates   int
	deactivates int
	destroys    int
}

func (f *fakeLifecycle) OnActivate()   { f.inc(&f.activates) }
func (f *fakeLifecycle) OnDeactivate() { f.inc(&f.deactivates) }
func (f *fakeLifecycle) OnDestroy()    { f.inc(&f.destroys) }

func (f *fakeLifecycle) inc(n *int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*n++
}

func (f *fakeLifecycle) counts() [3]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return [3]int{f.activates, f.deactivates, f.destroys}
}

func newTestHost(t *testing.T) (*Host, tcell.SimulationScreen, *fakeLifecycle) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 20)
	t.Cleanup(screen.Fini)

	layers := []*render.Layer{
		{ID: "back", Label: "back", Rect: image.Rect(0, 0, 80, 40), Color: color.RGBA{R: 0x20, A: 0xff}},
		{ID: "front", Label: "front", Rect: image.Rect(40, 20, 60, 30), Color: color.RGBA{G: 0x80, A: 0xff}},
	}
	lc := &fakeLifecycle{}
	return NewHost(screen, layers, lc), screen, lc
}

func runeAt(s tcell.Screen, x, y int) rune {
	r, _, _, _ := s.GetContent(x, y)
	return r
}

func TestDrawScalesLayers(t *testing.T) {
	h, screen, _ := newTestHost(t)
	h.draw()

	assert.Equal(t, 'b', runeAt(screen, 0, 0))
	assert.Equal(t, 'k', runeAt(screen, 3, 0))
	assert.Equal(t, 'f', runeAt(screen, 20, 10))
	assert.Equal(t, 't', runeAt(screen, 24, 10))

	_, _, back, _ := screen.GetContent(5, 5)
	_, _, front, _ := screen.GetContent(22, 12)
	assert.NotEqual(t, back, front)

	h.layers[1].SetValue(animation.TranslationX, 10)
	h.draw()
	assert.Equal(t, ' ', runeAt(screen, 20, 10))
	assert.Equal(t, 'f', runeAt(screen, 25, 10))
}

func TestRunFocusAndQuit(t *testing.T) {
	h, screen, lc := newTestHost(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- h.Run(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool { return lc.counts() == [3]int{1, 0, 0} }, time.Second, 5*time.Millisecond)

	require.NoError(t, screen.PostEvent(tcell.NewEventFocus(false)))
	require.Eventually(t, func() bool { return lc.counts() == [3]int{1, 1, 0} }, time.Second, 5*time.Millisecond)

	require.NoError(t, screen.PostEvent(tcell.NewEventFocus(true)))
	require.Eventually(t, func() bool { return lc.counts() == [3]int{2, 1, 0} }, time.Second, 5*time.Millisecond)

	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after q")
	}
	assert.Equal(t, [3]int{2, 1, 1}, lc.counts())
}

func TestRunStopsOnContext(t *testing.T) {
	h, _, lc := newTestHost(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.Run(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool { return lc.counts()[0] == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)
	assert.Equal(t, 1, lc.counts()[2])
}
