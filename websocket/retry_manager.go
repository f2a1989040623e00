// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Handle transient failures with exponential backoff strategy
func (s *WebSocketServer) executeWithRetry(fn func() error, conn *websocket.Conn) error {
	// Get current retry count for this connection
	s.clientsLock.Lock()
	currentRetries := s.retryCount[conn]
	s.clientsLock.Unlock()

	// Maximum number of retries
	maxRetries := 3

	// Execute the function
	err := fn()

	// If successful or reached max retries, reset counter and return
	if err == nil || currentRetries >= maxRetries {
		s.clientsLock.Lock()
		s.retryCount[conn] = 0
		s.clientsLock.Unlock()
		return err
	}

	// Increment retry counter
	s.clientsLock.Lock()
	s.retryCount[conn] = currentRetries + 1
	s.clientsLock.Unlock()

	// Retry with exponential backoff
	backoff := time.Duration(1<<currentRetries) * 500 * time.Millisecond
	time.Sleep(backoff)

	s.logger.Debug("Retrying operation, attempt %d/%d", currentRetries+1, maxRetries)
	return s.executeWithRetry(fn, conn)
}
