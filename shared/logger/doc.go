// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

/*
Package logger provides structured JSON logging for registry components.

# Overview

The logger outputs single-line JSON to stdout, making logs easily
consumable by CloudWatch, ELK, or other log aggregation systems.

Each log entry includes:
  - Timestamp (RFC3339Nano format)
  - Log level (DEBUG, INFO, WARN, ERROR)
  - Component name (registry, search-proxy, etc.)
  - Instance ID and container name (for distributed tracing)
  - Agent ID (the registry entry a request targets, when known)
  - Request ID (for request correlation)
  - Custom fields

# Usage

Create a logger for your component:

	log := logger.New("registry")

Log messages with agent and request context:

	log.Info("translator-1", "req-456", "Agent registered", map[string]interface{}{
	    "tags": []string{"nlp"},
	})

Log errors with status codes:

	log.ErrorWithCode("translator-1", "req-456", "Lookup failed", 404, err, nil)

# Environment Variables

  - INSTANCE_ID: Deployment instance identifier
  - HOSTNAME: Container hostname (auto-detected)

# Thread Safety

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
