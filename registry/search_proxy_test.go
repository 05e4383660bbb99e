// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSearchProxyForwardsVerbatim tests that the request body and the
// ranked results pass through unchanged.
func TestSearchProxyForwardsVerbatim(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/semantic/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		writeJSON(w, http.StatusOK, SemanticSearchResponse{
			Query: "summarize contracts",
			Results: []SemanticSearchResult{
				{AgentID: "summarizer-1", SimilarityScore: 0.87, MatchedOn: "skills"},
				{AgentID: "translator-1", SimilarityScore: 0.61, MatchedOn: "description"},
			},
			Total:            2,
			ProcessingTimeMs: 12.5,
		})
	}))
	defer svc.Close()

	proxy := NewSearchProxy(svc.URL)
	resp, err := proxy.Search(context.Background(), &SemanticSearchRequest{
		Query: "summarize contracts",
		TopK:  5,
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "summarizer-1", resp.Results[0].AgentID)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 12.5, resp.ProcessingTimeMs)
}

// TestSearchProxyNoBaseURL tests the unconfigured proxy.
func TestSearchProxyNoBaseURL(t *testing.T) {
	proxy := NewSearchProxy("")

	_, err := proxy.Search(context.Background(), &SemanticSearchRequest{Query: "anything"})
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

// TestSearchProxyUnreachable tests that a connection failure is
// reported as unavailability.
func TestSearchProxyUnreachable(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	svc.Close() // nothing is listening anymore

	proxy := NewSearchProxy(svc.URL)
	_, err := proxy.Search(context.Background(), &SemanticSearchRequest{Query: "anything"})
	assert.ErrorIs(t, err, ErrSearchUnavailable)
}

// TestSearchProxyUpstreamError tests that a non-200 upstream status is
// surfaced with its code.
func TestSearchProxyUpstreamError(t *testing.T) {
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "embedding model loading", http.StatusServiceUnavailable)
	}))
	defer svc.Close()

	proxy := NewSearchProxy(svc.URL)
	_, err := proxy.Search(context.Background(), &SemanticSearchRequest{Query: "anything"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
	assert.Contains(t, err.Error(), "embedding model loading")
}
