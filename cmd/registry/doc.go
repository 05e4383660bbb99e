// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

/*
Command registry runs the A2A Agent Registry service.

The registry is a centralized directory: agents register their cards
(name, endpoint, protocol version, skills) and clients discover them
via filtered listing or semantic search.

# Usage

	registry

# Environment Variables

Required:
  - DATABASE_URL: PostgreSQL connection string (or the separate
    DATABASE_HOST / DATABASE_PORT / DATABASE_NAME / DATABASE_USER /
    DATABASE_PASSWORD / DATABASE_SSLMODE variables)

Optional:
  - PORT: HTTP server port (default: 3000)
  - REDIS_URL: Redis URL for the entry cache (caching disabled when unset)
  - CACHE_TTL: entry cache TTL as a Go duration (default: 1h)
  - SEARCH_URL: semantic search service base URL
  - INSTANCE_ID: deployment instance identifier for log correlation
*/
package main
