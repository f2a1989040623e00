// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

// Package websocket broadcasts the pipeline's result queues (transcript,
// translation, and proofread Pair updates) to subscribed clients. The
// server has no client-initiated recording workflow: capture, transcribe,
// and translate run continuously once the engine is started, and a
// consumer UI is an external collaborator (spec.md §1) that only
// observes the broadcast surface (spec.md §6.4).
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/AshBuk/streamcast-engine/config"
	"github.com/AshBuk/streamcast-engine/internal/logger"
	"github.com/AshBuk/streamcast-engine/pipeline"
	"github.com/gorilla/websocket"
)

// WebSocket server configuration constants
const (
	readBufferSize  = 1024
	writeBufferSize = 1024

	maxMessageSize = 1024 * 1024

	readTimeout        = 60 * time.Second
	writeTimeout       = 10 * time.Second
	pingInterval       = 20 * time.Second
	serverReadTimeout  = 15 * time.Second
	serverWriteTimeout = 15 * time.Second
	serverIdleTimeout  = 60 * time.Second
	shutdownTimeout    = 5 * time.Second
)

// ResultQueues is the subset of the pipeline's result queues the server
// broadcasts from. PrResQ is nil outside LLM proofread+translate mode.
type ResultQueues struct {
	TsResQ *pipeline.MergeQueue[pipeline.Pair] // raw transcript (source language)
	TlResQ *pipeline.MergeQueue[pipeline.Pair] // translated text
	PrResQ *pipeline.MergeQueue[pipeline.Pair] // proofread source text (LLM mode only)
}

// WebSocketServer broadcasts pipeline result updates to subscribed clients.
type WebSocketServer struct {
	config      *config.Config
	queues      ResultQueues
	clients     map[*websocket.Conn]bool
	clientsLock sync.Mutex
	upgrader    websocket.Upgrader
	server      *http.Server
	started     bool
	retryCount  map[*websocket.Conn]int
	logger      logger.Logger
	wg          sync.WaitGroup
}

// Message is the protocol structure for server->client broadcasts and
// the handful of client->server control messages (ping).
type Message struct {
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload,omitempty"`
	APIVersion string      `json:"api_version,omitempty"`
	RequestID  string      `json:"request_id,omitempty"`
	Timestamp  int64       `json:"timestamp,omitempty"`
	Error      string      `json:"error,omitempty"`
}

func checkOriginFunc(cfg *config.Config) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if cfg.WebServer.CORSOrigins == "*" {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return origin == cfg.WebServer.CORSOrigins
	}
}

// NewWebSocketServer constructs a server that will broadcast from queues
// once Start is called.
func NewWebSocketServer(cfg *config.Config, queues ResultQueues, log logger.Logger) *WebSocketServer {
	return &WebSocketServer{
		config: cfg,
		queues: queues,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin:     checkOriginFunc(cfg),
		},
		retryCount: make(map[*websocket.Conn]int),
		logger:     log,
	}
}

// Start begins accepting client connections and, for each configured
// result queue, begins broadcasting its updates.
func (s *WebSocketServer) Start() error {
	if !s.config.WebServer.Enabled {
		return nil
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)

	apiVersion := s.config.WebServer.APIVersion
	if apiVersion != "" {
		mux.HandleFunc(fmt.Sprintf("/api/%s/ws", apiVersion), s.handleWebSocket)
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			s.logger.Debug("health write error: %v", err)
		}
	})

	addr := fmt.Sprintf("%s:%d", s.config.WebServer.Host, s.config.WebServer.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Info("Starting WebSocket server on %s", addr)
		s.started = true
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("WebSocket server error: %v", err)
		}
	}()

	if s.queues.TsResQ != nil {
		go s.broadcastQueue("transcript", s.queues.TsResQ)
	}
	if s.queues.TlResQ != nil {
		go s.broadcastQueue("translation", s.queues.TlResQ)
	}
	if s.queues.PrResQ != nil {
		go s.broadcastQueue("proofread", s.queues.PrResQ)
	}

	return nil
}

// broadcastQueue drains queue until the end-of-stream sentinel and
// broadcasts each Pair under messageType.
func (s *WebSocketServer) broadcastQueue(messageType string, queue *pipeline.MergeQueue[pipeline.Pair]) {
	for {
		pair, isEnd := queue.Get()
		if isEnd {
			return
		}
		s.BroadcastMessage(messageType, map[string]string{
			"confirmed": pair.Confirmed,
			"draft":     pair.Draft,
		})
	}
}

// Stop closes all client connections and shuts down the HTTP server.
func (s *WebSocketServer) Stop() {
	if s.server != nil && s.started {
		s.logger.Info("Stopping WebSocket server...")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.clientsLock.Lock()
		for client := range s.clients {
			_ = client.Close()
		}
		s.clients = make(map[*websocket.Conn]bool)
		s.clientsLock.Unlock()
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Error("Error shutting down WebSocket server: %v", err)
		} else {
			s.logger.Info("WebSocket server stopped")
		}
		s.wg.Wait()
		s.started = false
	}
}

func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.authenticate(r) {
		s.logger.Warning("Unauthorized WebSocket connection attempt from %s", r.RemoteAddr)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	s.clientsLock.Lock()
	clientCount := len(s.clients)
	s.clientsLock.Unlock()

	if s.config.WebServer.MaxClients > 0 && clientCount >= s.config.WebServer.MaxClients {
		s.logger.Warning("Max clients limit reached, rejecting connection from %s", r.RemoteAddr)
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Error upgrading to WebSocket: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		s.logger.Debug("SetReadDeadline error: %v", err)
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	s.clientsLock.Lock()
	s.clients[conn] = true
	s.clientsLock.Unlock()

	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Debug("conn close error: %v", err)
		}
		s.clientsLock.Lock()
		delete(s.clients, conn)
		delete(s.retryCount, conn)
		s.clientsLock.Unlock()
	}()

	s.sendMessage(conn, "connected", map[string]string{
		"server":      "streamcast-engine",
		"api_version": s.config.WebServer.APIVersion,
	})
	go func() { s.pingClient(conn) }()
	s.processMessages(conn)
}

func (s *WebSocketServer) pingClient(conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeTimeout)); err != nil {
			s.logger.Debug("Ping error: %v", err)
			return
		}
	}
}

func (s *WebSocketServer) sendMessage(conn *websocket.Conn, messageType string, payload interface{}, requestID ...string) {
	msg := Message{
		Type:       messageType,
		Payload:    payload,
		APIVersion: s.config.WebServer.APIVersion,
		Timestamp:  time.Now().Unix(),
	}
	if len(requestID) > 0 && requestID[0] != "" {
		msg.RequestID = requestID[0]
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Error marshaling message: %v", err)
		return
	}
	if s.config.WebServer.LogRequests {
		s.logger.Debug("Sending WebSocket message: %s", string(data))
	}
	err = s.executeWithRetry(func() error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, data)
	}, conn)
	if err != nil {
		s.logger.Error("Error sending message: %v", err)
	}
}

// BroadcastMessage sends a message to every connected client.
func (s *WebSocketServer) BroadcastMessage(messageType string, payload interface{}) {
	s.clientsLock.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.clientsLock.Unlock()

	for _, conn := range conns {
		s.sendMessage(conn, messageType, payload)
	}
}
