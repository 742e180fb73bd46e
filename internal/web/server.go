// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/view_motion/internal/render"
)

//go:embed static
var staticFiles embed.FS

const writeTimeout = time.Second

// Lifecycle receives the host's visibility transitions.
type Lifecycle interface {
	OnActivate()
	OnDeactivate()
}

// ClientMessage is sent by the page.
type ClientMessage struct {
	Action  string `json:"action"` // visibility
	Visible bool   `json:"visible"`
}

// FrameLayer is the per-frame position of one layer.
type FrameLayer struct {
	ID string  `json:"id"`
	TX float64 `json:"tx"`
	TY float64 `json:"ty"`
}

// ServerMessage is sent to the page: "hello" once with the full scene,
// then "frame" whenever a layer moved.
type ServerMessage struct {
	Type   string              `json:"type"`
	ID     string              `json:"id,omitempty"`
	Scene  []render.LayerState `json:"scene,omitempty"`
	Layers []FrameLayer        `json:"layers,omitempty"`
}

type client struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
	visible bool
}

func (c *client) send(msg ServerMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.sendLocked(msg)
}

func (c *client) sendLocked(msg ServerMessage) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(msg)
}

// Server hosts the scene layers for browsers. The scene counts as visible
// while at least one connected page reports itself visible.
type Server struct {
	layers []*render.Layer
	canvas image.Rectangle
	lc     Lifecycle

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
	visible int
	last    []FrameLayer
}

// NewServer serves layers and reports visibility to lc.
func NewServer(layers []*render.Layer, lc Lifecycle) *Server {
	return &Server{
		layers: layers,
		canvas: render.Canvas(layers),
		lc:     lc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for local development
			},
		},
		clients: make(map[string]*client),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/layers", s.handleLayers)
	mux.HandleFunc("/api/frame.png", s.handleFrame)

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("/", http.FileServer(http.FS(static)))
	return mux
}

// Run serves on addr and broadcasts frames every frameInterval until ctx
// is done.
func (s *Server) Run(ctx context.Context, addr string, frameInterval time.Duration) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("web: server listening on %s", addr)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeClients()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("web server shutdown: %w", err)
			}
			log.Println("web: server stopped")
			return nil
		case err := <-errCh:
			return fmt.Errorf("web server: %w", err)
		case <-ticker.C:
			s.Broadcast()
		}
	}
}

// Broadcast sends the current layer positions to every client if any layer
// moved since the last broadcast.
func (s *Server) Broadcast() {
	s.mu.Lock()
	frame := s.frame()
	if slices.Equal(frame, s.last) {
		s.mu.Unlock()
		return
	}
	s.last = frame
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	msg := ServerMessage{Type: "frame", Layers: frame}
	for _, c := range clients {
		if err := c.send(msg); err != nil {
			log.Printf("web: client %s write error: %v", c.id, err)
			c.conn.Close()
		}
	}
}

// Visible reports whether any connected page is visible.
func (s *Server) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible > 0
}

func (s *Server) frame() []FrameLayer {
	out := make([]FrameLayer, len(s.layers))
	for i, l := range s.layers {
		tx, ty := l.Translation()
		out[i] = FrameLayer{ID: l.ID, TX: tx, TY: ty}
	}
	return out
}

func (s *Server) scene() []render.LayerState {
	out := make([]render.LayerState, len(s.layers))
	for i, l := range s.layers {
		out[i] = l.State()
	}
	return out
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn}
	defer conn.Close()

	// Holding the write lock across registration keeps any frame queued
	// behind hello.
	c.writeMu.Lock()
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	err = c.sendLocked(ServerMessage{Type: "hello", ID: c.id, Scene: s.scene()})
	c.writeMu.Unlock()
	log.Printf("web: client %s connected", c.id)

	defer func() {
		s.setVisible(c, false)
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		log.Printf("web: client %s disconnected", c.id)
	}()
	if err != nil {
		log.Printf("web: client %s write error: %v", c.id, err)
		return
	}

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("web: client %s read error: %v", c.id, err)
			}
			return
		}

		switch msg.Action {
		case "visibility":
			s.setVisible(c, msg.Visible)
		default:
			log.Printf("web: client %s sent unknown action %q", c.id, msg.Action)
		}
	}
}

// setVisible updates one client's visibility, activating the scene on the
// first visible page and deactivating it when the last one goes away.
func (s *Server) setVisible(c *client, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.visible == visible {
		return
	}
	c.visible = visible

	if visible {
		s.visible++
		if s.visible == 1 {
			s.lc.OnActivate()
		}
		return
	}
	s.visible--
	if s.visible == 0 {
		s.lc.OnDeactivate()
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		c.conn.Close()
	}
}

func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.scene()); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	img := render.Frame(s.canvas, s.layers)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, img); err != nil {
		log.Printf("web: png encode error: %v", err)
	}
}
