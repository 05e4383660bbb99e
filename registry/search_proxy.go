// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SearchProxy forwards natural-language queries to the semantic search
// microservice. The registry does not produce or consume embeddings;
// this is a pure pass-through boundary.
type SearchProxy struct {
	baseURL string
	client  *http.Client
}

// NewSearchProxy creates a proxy for the search service at baseURL.
// An empty baseURL yields a proxy that reports ErrSearchUnavailable.
func NewSearchProxy(baseURL string) *SearchProxy {
	return &SearchProxy{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Search forwards the request and relays the ranked results verbatim.
func (p *SearchProxy) Search(ctx context.Context, req *SemanticSearchRequest) (*SemanticSearchResponse, error) {
	if p.baseURL == "" {
		return nil, ErrSearchUnavailable
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/api/v1/semantic/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search service returned status %d: %s", resp.StatusCode, string(payload))
	}

	var result SemanticSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	return &result, nil
}
