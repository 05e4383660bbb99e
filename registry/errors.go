// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import "errors"

// Registry errors
var (
	// ErrAgentNotFound is returned when an operation targets an agent ID
	// with no matching row in the store.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrAgentExists is returned when registering an agent ID that is
	// already present. Registration never upserts.
	ErrAgentExists = errors.New("agent already exists")

	// ErrValidation is returned when a request body fails the boundary
	// validation checks (missing required card fields, too many tags).
	ErrValidation = errors.New("validation failed")

	// ErrSearchUnavailable is returned when the semantic search service
	// is not configured or not reachable.
	ErrSearchUnavailable = errors.New("semantic search unavailable")
)
