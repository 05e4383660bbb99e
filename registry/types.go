// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/json"
	"time"
)

// Skill describes a single capability advertised by an agent.
type Skill struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	InputSchema  json.RawMessage `json:"inputSchema,omitempty"`
	OutputSchema json.RawMessage `json:"outputSchema,omitempty"`
}

// Capabilities describes protocol-level capabilities of an agent.
type Capabilities struct {
	Streaming         bool `json:"streaming"`
	PushNotifications bool `json:"pushNotifications"`
}

// AgentCard is the descriptor document registered for an agent.
//
// The card is stored verbatim as JSONB; the registry only interprets
// the name (to derive the agent ID), the skills list (for filtering),
// and the two required fields checked at the validation boundary.
type AgentCard struct {
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Endpoint        string          `json:"endpoint"`
	ProtocolVersion string          `json:"protocolVersion,omitempty"`
	Capabilities    *Capabilities   `json:"capabilities,omitempty"`
	Skills          []Skill         `json:"skills,omitempty"`
	Security        json.RawMessage `json:"security,omitempty"`
}

// RegistryEntry is one registered agent record.
type RegistryEntry struct {
	ID            string                 `json:"id"`
	AgentID       string                 `json:"agent_id"`
	AgentCard     AgentCard              `json:"agent_card"`
	Owner         string                 `json:"owner"`
	Tags          []string               `json:"tags"`
	Verified      bool                   `json:"verified"`
	RegisteredAt  time.Time              `json:"registered_at"`
	LastUpdated   time.Time              `json:"last_updated"`
	LastHeartbeat *time.Time             `json:"last_heartbeat,omitempty"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// RegisterRequest is the request body for POST /api/v1/agents
// and PUT /api/v1/agents/{agentId}.
type RegisterRequest struct {
	AgentCard AgentCard              `json:"agentCard"`
	Tags      []string               `json:"tags"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// RegisterResponse is the minimal projection returned after registration.
type RegisterResponse struct {
	ID           string    `json:"id"`
	AgentID      string    `json:"agent_id"`
	AgentCard    AgentCard `json:"agent_card"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ListFilters holds the optional filters recognized by List.
// A nil pointer / empty slice means the filter is absent.
type ListFilters struct {
	Tags     []string
	Skill    string
	Verified *bool
}

// ListResponse is the paginated response for GET /api/v1/agents.
//
// Total is the count of rows in the current page, not a full-table
// count.
type ListResponse struct {
	Agents []RegistryEntry `json:"agents"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// HeartbeatResponse is returned by POST /api/v1/agents/{agentId}/heartbeat.
type HeartbeatResponse struct {
	AgentID       string    `json:"agent_id"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// SemanticSearchRequest is forwarded verbatim to the search service.
type SemanticSearchRequest struct {
	Query    string                 `json:"query"`
	TopK     int                    `json:"top_k,omitempty"`
	MinScore float64                `json:"min_score,omitempty"`
	Filters  map[string]interface{} `json:"filters,omitempty"`
}

// SemanticSearchResult is a single ranked match from the search service.
type SemanticSearchResult struct {
	AgentID         string    `json:"agent_id"`
	AgentCard       AgentCard `json:"agent_card"`
	Tags            []string  `json:"tags"`
	Verified        bool      `json:"verified"`
	SimilarityScore float64   `json:"similarity_score"`
	MatchedOn       string    `json:"matched_on"`
}

// SemanticSearchResponse is the search service response, relayed verbatim.
type SemanticSearchResponse struct {
	Query            string                 `json:"query"`
	Results          []SemanticSearchResult `json:"results"`
	Total            int                    `json:"total"`
	ProcessingTimeMs float64                `json:"processing_time_ms"`
}
