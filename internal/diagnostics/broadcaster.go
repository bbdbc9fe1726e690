// SPDX-License-Identifier: MIT

// Package diagnostics implements an optional, read-only websocket
// broadcast of an FFT subgraph's live magnitude spectrum. It sits
// entirely off the graph's data path: nothing in internal/graph or
// internal/fftgraph depends on it, and a caller polls a subgraph's
// Magnitudes and hands them to Publish from outside the render loop.
package diagnostics

import (
	"net/http"
	"sync"

	"dspgraph/internal/log"

	"github.com/gorilla/websocket"
)

// Broadcaster runs a small websocket server and fans out magnitude
// frames published to it to every connected client.
type Broadcaster struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan []float64
	server    *http.Server
}

// NewBroadcaster starts a websocket server listening on addr (e.g.
// ":8080") with a single "/spectrum" endpoint.
func NewBroadcaster(addr string) *Broadcaster {
	b := &Broadcaster{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []float64, 256),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/spectrum", b.handleConn)
	b.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := b.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("diagnostics: server error: %v", err)
		}
	}()
	go b.pump()

	return b
}

func (b *Broadcaster) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("diagnostics: upgrade error: %v", err)
		return
	}

	b.clientsMu.Lock()
	b.clients[conn] = true
	b.clientsMu.Unlock()

	go func() {
		_, _, err := conn.ReadMessage()
		if err != nil {
			b.clientsMu.Lock()
			delete(b.clients, conn)
			b.clientsMu.Unlock()
			conn.Close()
		}
	}()
}

func (b *Broadcaster) pump() {
	for mags := range b.broadcast {
		b.clientsMu.Lock()
		for client := range b.clients {
			if err := client.WriteJSON(mags); err != nil {
				client.Close()
				delete(b.clients, client)
			}
		}
		b.clientsMu.Unlock()
	}
}

// Publish hands a magnitude spectrum frame to every connected client.
// It is non-blocking: a full queue drops the frame rather than stall
// the caller.
func (b *Broadcaster) Publish(magnitudes []float64) {
	select {
	case b.broadcast <- magnitudes:
	default:
	}
}

// Close shuts down the server and disconnects every client.
func (b *Broadcaster) Close() error {
	b.clientsMu.Lock()
	for client := range b.clients {
		client.Close()
	}
	b.clients = make(map[*websocket.Conn]bool)
	b.clientsMu.Unlock()

	if b.server != nil {
		return b.server.Close()
	}
	return nil
}
