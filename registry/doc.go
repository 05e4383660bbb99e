// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

/*
Package registry implements the A2A Agent Registry service: a
centralized directory where agents register their descriptors (agent
cards) and other clients discover them via filtered lookups.

# Architecture

The package is organized around four components:

  - EntryStore: PostgreSQL table owning canonical agent state
  - EntryCache: fixed-TTL Redis mirror of individual entries
  - listQuery: positional-parameter filter/paginate query builder
  - RegistryService: orchestration implementing register / get /
    update / delete / list / heartbeat with read-through reads and
    write-invalidate caching

Single-entry reads are served from the cache when possible and
repopulate it on a miss. Writes go to the store first, then refresh or
delete the exact cache keys they affect, plus a single list-view
invalidation marker. Multi-row listings always bypass the cache.

Semantic search is a pass-through proxy to a separate search service;
the registry neither produces nor consumes embeddings.

# Consistency

The cache is disposable: on any disagreement the store wins. A cache
hit is not existence-revalidated, so a deleted entry can be served from
cache until its TTL expires. Concurrent updates are last-write-wins;
there is no optimistic locking.
*/
package registry
