// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package websocket

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// authenticate verifies an inbound connection against WebServer.AuthToken.
// An empty configured token means the server is running open (no auth).
func (s *WebSocketServer) authenticate(r *http.Request) bool {
	if s.config.WebServer.AuthToken == "" {
		return true
	}

	queryToken := r.URL.Query().Get("token")
	headerToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	want := []byte(s.config.WebServer.AuthToken)
	queryMatch := subtle.ConstantTimeCompare([]byte(queryToken), want) == 1
	headerMatch := subtle.ConstantTimeCompare([]byte(headerToken), want) == 1

	return queryMatch || headerMatch
}

// Confirm token matches configured authentication secret
func (s *WebSocketServer) validateToken(token string) bool { // nolint:unused // used in tests
	// If auth token is not set, all tokens are invalid
	if s.config.WebServer.AuthToken == "" {
		return false
	}

	// Trim whitespace
	token = strings.TrimSpace(token)

	// Compare with configured token using constant-time comparison
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.config.WebServer.AuthToken)) == 1
}

// Extract real client IP considering proxy headers
func getClientIP(r *http.Request) string { // nolint:unused // used in tests
	// Check for X-Forwarded-For header
	forwardedFor := r.Header.Get("X-Forwarded-For")
	if forwardedFor != "" {
		// Take the first IP in the list
		return strings.Split(forwardedFor, ",")[0]
	}

	// Check for X-Real-IP header
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	// Fall back to RemoteAddr
	return strings.Split(r.RemoteAddr, ":")[0]
}
