/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the backend
service, tracking HTTP requests, preview renders, generation calls, and
system metrics.

# Features

- HTTP request metrics (latency, throughput, size)
- Preview pipeline metrics (renders by framework and mode, preflight findings)
- Generation metrics (call duration, status, fallbacks served)
- Session management metrics
- WebSocket connection metrics
- System metrics (uptime)

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record custom metrics
	metrics.RecordRender("react", "executed", duration)
	metrics.IncGenerationFallbacks()

	// Time operations
	timer := monitoring.NewTimer(metrics, "create")
	// ... perform operation ...
	timer.Stop("success")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
