// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"a2aregistry/server/shared/logger"
)

// Default pagination when the caller supplies none. No server-side cap
// is enforced on limit.
const (
	DefaultListLimit  = 50
	DefaultListOffset = 0
)

// RegistryService orchestrates the store and cache to implement the
// register / get / update / delete / list / heartbeat operations.
//
// Caching discipline: reads are read-through (cache first, store on
// miss, populate on the way back); writes go to the store and then
// populate or invalidate the exact cache keys they can affect. The
// cache is optional - with a nil cache every read falls through to the
// store.
type RegistryService struct {
	store *EntryStore
	cache *EntryCache
	log   *logger.Logger
}

// NewRegistryService creates the orchestration service. cache may be
// nil when Redis is not configured.
func NewRegistryService(store *EntryStore, cache *EntryCache, log *logger.Logger) *RegistryService {
	if log == nil {
		log = logger.New("registry")
	}
	return &RegistryService{store: store, cache: cache, log: log}
}

// Register persists a new agent and caches it.
//
// The agent ID is derived from the card name; a card without a name
// gets a generated UUID. A duplicate agent ID fails with ErrAgentExists
// - registration never overwrites.
func (s *RegistryService) Register(ctx context.Context, card AgentCard, tags []string, metadata map[string]interface{}) (*RegistryEntry, error) {
	agentID := card.Name
	if agentID == "" {
		agentID = uuid.New().String()
	}

	// Reject duplicates before inserting; the unique constraint is the
	// backstop for concurrent registrations.
	_, err := s.store.GetByAgentID(ctx, agentID)
	if err == nil {
		return nil, ErrAgentExists
	}
	if !errors.Is(err, ErrAgentNotFound) {
		return nil, err
	}

	if tags == nil {
		tags = []string{}
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	entry := &RegistryEntry{
		AgentID:   agentID,
		AgentCard: card,
		Tags:      tags,
		Metadata:  metadata,
	}
	if err := s.store.Insert(ctx, entry); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, entry); err != nil {
			return nil, err
		}
	}

	s.log.Info(agentID, "", "Agent registered", map[string]interface{}{
		"id":   entry.ID,
		"tags": tags,
	})
	return entry, nil
}

// Get returns the entry for agentID, serving from the cache when
// possible.
//
// A cache hit is not existence-revalidated: an entry deleted out from
// under a live cache record is still returned until the TTL expires or
// a write invalidates the key. This staleness window is accepted.
func (s *RegistryService) Get(ctx context.Context, agentID string) (*RegistryEntry, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, agentID)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			promCacheHits.WithLabelValues("hit").Inc()
			return cached, nil
		}
		promCacheHits.WithLabelValues("miss").Inc()
	}

	entry, err := s.store.GetByAgentID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, entry); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// Update overwrites the card, tags and metadata of an existing agent,
// refreshes its cache record, and invalidates the list marker.
func (s *RegistryService) Update(ctx context.Context, agentID string, card AgentCard, tags []string, metadata map[string]interface{}) (*RegistryEntry, error) {
	if tags == nil {
		tags = []string{}
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	entry, err := s.store.Update(ctx, agentID, card, tags, metadata)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, entry); err != nil {
			return nil, err
		}
		if err := s.cache.InvalidateList(ctx); err != nil {
			return nil, err
		}
	}

	s.log.Info(agentID, "", "Agent updated", nil)
	return entry, nil
}

// Delete removes the agent row and the cache keys it can affect.
func (s *RegistryService) Delete(ctx context.Context, agentID string) error {
	if err := s.store.Delete(ctx, agentID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, agentID); err != nil {
			return err
		}
		if err := s.cache.InvalidateList(ctx); err != nil {
			return err
		}
	}

	s.log.Info(agentID, "", "Agent deleted", nil)
	return nil
}

// List returns a page of entries matching the filters, always read
// directly from the store. Total is the size of the returned page.
func (s *RegistryService) List(ctx context.Context, filters ListFilters, limit, offset int) (*ListResponse, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = DefaultListOffset
	}

	entries, err := s.store.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	return &ListResponse{
		Agents: entries,
		Total:  len(entries),
		Limit:  limit,
		Offset: offset,
	}, nil
}

// Heartbeat refreshes only last_heartbeat. The cached projection is not
// touched, so cached heartbeat data can lag the store until the next
// refill.
func (s *RegistryService) Heartbeat(ctx context.Context, agentID string) (time.Time, error) {
	ts, err := s.store.Heartbeat(ctx, agentID)
	if err != nil {
		return time.Time{}, err
	}

	s.log.Debug(agentID, "", "Heartbeat recorded", nil)
	return ts, nil
}
