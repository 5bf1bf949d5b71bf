// Package main is the entry point for the SnapUI backend server.
//
// The server turns screenshots into frontend code via a remote vision
// model, stores the results as sessions, and builds isolated preview
// documents for the host UI.
//
// Architecture:
//
//	Frontend (host UI) → Go Backend → Generation gateway (vision LLM)
//	                               → Preview pipeline (sandbox documents)
//
// The server provides:
//   - REST API for generation, sessions, and previews
//   - WebSocket streaming with generation lifecycle events
//   - Prometheus metrics
//   - Rate limiting and CORS
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
