// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// processMessages handles client control messages. The pipeline has no
// client-initiated recording workflow (spec.md §1's UI is a read-only
// broadcast subscriber), so "ping" is the only message a client sends.
func (s *WebSocketServer) processMessages(conn *websocket.Conn) {
	for {
		_, rawMessage, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Debug("WebSocket error: %v", err)
			}
			break
		}
		if s.config.WebServer.LogRequests {
			s.logger.Debug("Received WebSocket message: %s", string(rawMessage))
		}

		var msg Message
		if err := json.Unmarshal(rawMessage, &msg); err != nil {
			s.logger.Error("Error parsing WebSocket message: %v", err)
			s.sendError(conn, "invalid_message", "Could not parse message", msg.RequestID)
			continue
		}
		switch msg.Type {
		case "ping":
			s.sendMessage(conn, "pong", nil)
		default:
			s.logger.Warning("Unknown message type: %s", msg.Type)
			s.sendError(conn, "unknown_type", fmt.Sprintf("Unknown message type: %s", msg.Type), msg.RequestID)
		}
	}
}

// sendError delivers a structured error response for client debugging.
func (s *WebSocketServer) sendError(conn *websocket.Conn, errorType string, errorMsg string, requestID string) {
	msg := Message{
		Type:       "error",
		Error:      errorType,
		Payload:    errorMsg,
		APIVersion: s.config.WebServer.APIVersion,
		RequestID:  requestID,
		Timestamp:  time.Now().Unix(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("Error marshaling error message: %v", err)
		return
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		s.logger.Error("SetWriteDeadline error: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error("Error sending error message: %v", err)
	}
}
