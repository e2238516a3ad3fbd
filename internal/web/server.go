package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Skyy-Development/launcher-backdrop/internal/analyzer"
	"github.com/Skyy-Development/launcher-backdrop/internal/effects"
	"github.com/Skyy-Development/launcher-backdrop/internal/render"
)

// Controller is the surface the host exposes to remote control.
type Controller interface {
	Status() Status
	Features() *analyzer.Data
	SetQuality(name string) error
	SetAccent(hex string) error
	SetAnimations(enabled bool)
	SetForce(force bool)
	SetAudioEnabled(enabled bool) error
}

// Status is the live state pushed to clients.
type Status struct {
	Effect     string  `json:"effect"`
	Quality    string  `json:"quality"`
	State      string  `json:"state"`
	FPS        float64 `json:"fps"`
	Animations bool    `json:"animations"`
	Audio      bool    `json:"audio"`
	Reactive   bool    `json:"reactive"`
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Quality    *string `json:"quality,omitempty"`
	Accent     *string `json:"accent,omitempty"`
	Animations *bool   `json:"animations,omitempty"`
	Force      *bool   `json:"force,omitempty"`
	Audio      *bool   `json:"audio,omitempty"`
}

type statusMessage struct {
	Status   Status         `json:"status"`
	Features *analyzer.Data `json:"features,omitempty"`
}

type Server struct {
	ctrl     Controller
	log      *log.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocketClient]bool

	broadcast chan []byte
	httpSrv   *http.Server
	done      chan struct{}
}

type websocketClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

func NewServer(ctrl Controller, logger *log.Logger) *Server {
	return &Server{
		ctrl:      ctrl,
		log:       logger,
		clients:   make(map[*websocketClient]bool),
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start serves the control API on addr in a background goroutine.
func (s *Server) Start(addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/update", s.handleUpdate)
	mux.HandleFunc("/api/effects", s.handleEffects)
	mux.HandleFunc("/api/palettes", s.handlePalettes)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	s.log.Printf("[web] control server on http://%s", addr)

	go s.broadcastLoop()
	go s.statusLoop()
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Printf("[web] server: %v", err)
		}
	}()
}

// Close stops the server and drops all clients.
func (s *Server) Close() error {
	close(s.done)
	if s.httpSrv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statusMessage{
		Status:   s.ctrl.Status(),
		Features: s.ctrl.Features(),
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Quality != nil {
		if err := s.ctrl.SetQuality(*req.Quality); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Accent != nil {
		if err := s.ctrl.SetAccent(*req.Accent); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if req.Animations != nil {
		s.ctrl.SetAnimations(*req.Animations)
	}
	if req.Force != nil {
		s.ctrl.SetForce(*req.Force)
	}
	if req.Audio != nil {
		if err := s.ctrl.SetAudioEnabled(*req.Audio); err != nil {
			http.Error(w, fmt.Sprintf("audio: %v", err), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleEffects(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(effects.Names())
}

func (s *Server) handlePalettes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(render.PaletteNames())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("[web] websocket upgrade: %v", err)
		return
	}

	client := &websocketClient{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()

	go client.writePump()
	go client.readPump()
}

func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.done:
			return
		case message := <-s.broadcast:
			s.mu.Lock()
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(s.clients, client)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Server) statusLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			data, err := json.Marshal(statusMessage{
				Status:   s.ctrl.Status(),
				Features: s.ctrl.Features(),
			})
			if err != nil {
				continue
			}
			select {
			case s.broadcast <- data:
			default:
				// drop if channel full
			}
		}
	}
}

func (c *websocketClient) readPump() {
	defer func() {
		c.server.mu.Lock()
		delete(c.server.clients, c)
		c.server.mu.Unlock()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *websocketClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
