// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"regexp"
)

// MaxTags bounds the number of tags on a single entry.
const MaxTags = 10

// defaultProtocolVersion is applied when the card carries no version.
const defaultProtocolVersion = "0.3"

var protocolVersionPattern = regexp.MustCompile(`^\d+(\.\d+)*$`)

// validateRegisterRequest enforces the boundary contract before a
// request reaches the core: the card must carry the two required
// fields, the protocol version must be well-formed, and tags are
// bounded. The card is otherwise opaque.
func validateRegisterRequest(req *RegisterRequest) error {
	if req.AgentCard.Name == "" {
		return fmt.Errorf("%w: agentCard.name is required", ErrValidation)
	}
	if req.AgentCard.Endpoint == "" {
		return fmt.Errorf("%w: agentCard.endpoint is required", ErrValidation)
	}

	if req.AgentCard.ProtocolVersion == "" {
		req.AgentCard.ProtocolVersion = defaultProtocolVersion
	} else if !protocolVersionPattern.MatchString(req.AgentCard.ProtocolVersion) {
		return fmt.Errorf("%w: agentCard.protocolVersion %q is malformed", ErrValidation, req.AgentCard.ProtocolVersion)
	}

	if len(req.Tags) > MaxTags {
		return fmt.Errorf("%w: at most %d tags allowed, got %d", ErrValidation, MaxTags, len(req.Tags))
	}

	return nil
}
