// Package api implements the HTTP REST API for HomeGuardian Core.
//
// This package provides:
//   - REST endpoints for devices, commands, activity and notifications
//   - JWT authentication against the configured users (Argon2id passwords)
//   - the WebSocket entry point to the command channel
//   - Prometheus metrics at /api/v1/metrics
//   - Middleware stack (request ID, logging, recovery, CORS, metrics)
//
// # Architecture
//
// Every request acts as the username in its token. The controller decides
// what that user may see and control, so guests only reach the devices
// they were granted. A successful command sent over HTTP is announced to
// command-channel clients exactly like one sent over TCP or WebSocket.
//
// # Security
//
// WebSocket clients authenticate with a single-use ticket from
// POST /auth/ws-ticket, or with their access token as ?token=.
package api
