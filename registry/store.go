// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint
// violations, used to map duplicate agent IDs to ErrAgentExists.
const pqUniqueViolation = "23505"

// schemaSQL is the idempotent schema bootstrap, applied at startup.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS agents (
	id UUID PRIMARY KEY,
	agent_id TEXT UNIQUE NOT NULL,
	agent_card JSONB NOT NULL,
	owner TEXT NOT NULL DEFAULT '',
	tags TEXT[] NOT NULL DEFAULT '{}',
	verified BOOLEAN NOT NULL DEFAULT FALSE,
	registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_heartbeat TIMESTAMPTZ,
	metadata JSONB NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_agents_last_updated ON agents (last_updated DESC);
CREATE INDEX IF NOT EXISTS idx_agents_tags ON agents USING GIN (tags);
CREATE INDEX IF NOT EXISTS idx_agents_skills ON agents USING GIN ((agent_card->'skills'));
`

// EntryStore owns canonical agent state in PostgreSQL.
//
// All statements use positional $n parameters; caller-supplied values
// are never concatenated into query text.
type EntryStore struct {
	db *sql.DB
}

// NewEntryStore creates a store over an existing connection pool.
func NewEntryStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db}
}

// OpenStore opens a PostgreSQL connection pool, configures it, and
// verifies connectivity with a ping.
func OpenStore(ctx context.Context, databaseURL string) (*EntryStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewEntryStore(db), nil
}

// Migrate applies the schema bootstrap. Safe to run on every startup.
func (s *EntryStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *EntryStore) Close() error {
	return s.db.Close()
}

// Insert persists a new entry. The id, registered_at and last_updated
// fields of the returned entry are assigned here.
func (s *EntryStore) Insert(ctx context.Context, entry *RegistryEntry) error {
	cardJSON, err := json.Marshal(entry.AgentCard)
	if err != nil {
		return fmt.Errorf("failed to serialize agent card: %w", err)
	}
	metaJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}

	entry.ID = uuid.New().String()

	query := `
		INSERT INTO agents (id, agent_id, agent_card, owner, tags, verified, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING registered_at, last_updated
	`

	err = s.db.QueryRowContext(ctx, query,
		entry.ID, entry.AgentID, cardJSON, entry.Owner,
		pq.Array(entry.Tags), entry.Verified, metaJSON,
	).Scan(&entry.RegisteredAt, &entry.LastUpdated)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
			return ErrAgentExists
		}
		return fmt.Errorf("failed to insert agent: %w", err)
	}

	return nil
}

// GetByAgentID returns the entry for agentID, or ErrAgentNotFound.
func (s *EntryStore) GetByAgentID(ctx context.Context, agentID string) (*RegistryEntry, error) {
	query := `
		SELECT ` + listColumns + `
		FROM agents
		WHERE agent_id = $1
	`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, agentID))
	if err == sql.ErrNoRows {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return entry, nil
}

// Update unconditionally overwrites the card, tags and metadata of the
// matching row and refreshes last_updated. No merge, no version check:
// last write wins.
func (s *EntryStore) Update(ctx context.Context, agentID string, card AgentCard, tags []string, metadata map[string]interface{}) (*RegistryEntry, error) {
	cardJSON, err := json.Marshal(card)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize agent card: %w", err)
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}

	query := `
		UPDATE agents
		SET agent_card = $1, tags = $2, metadata = $3, last_updated = NOW()
		WHERE agent_id = $4
		RETURNING ` + listColumns + `
	`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, cardJSON, pq.Array(tags), metaJSON, agentID))
	if err == sql.ErrNoRows {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update agent: %w", err)
	}
	return entry, nil
}

// Delete removes the matching row. Immediate and unconditional; there is
// no soft delete.
func (s *EntryStore) Delete(ctx context.Context, agentID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM agents WHERE agent_id = $1`, agentID)
	if err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrAgentNotFound
	}
	return nil
}

// Heartbeat refreshes only last_heartbeat on the matching row.
func (s *EntryStore) Heartbeat(ctx context.Context, agentID string) (time.Time, error) {
	var ts time.Time
	query := `
		UPDATE agents
		SET last_heartbeat = NOW()
		WHERE agent_id = $1
		RETURNING last_heartbeat
	`

	err := s.db.QueryRowContext(ctx, query, agentID).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, ErrAgentNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to record heartbeat: %w", err)
	}
	return ts, nil
}

// List returns entries matching the filters, ordered by last_updated
// descending, paginated by limit/offset.
func (s *EntryStore) List(ctx context.Context, filters ListFilters, limit, offset int) ([]RegistryEntry, error) {
	q := &listQuery{}
	q.withFilters(filters)
	query, args := q.build(limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]RegistryEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent row: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return entries, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*RegistryEntry, error) {
	var (
		entry     RegistryEntry
		cardJSON  []byte
		metaJSON  []byte
		tags      pq.StringArray
		heartbeat sql.NullTime
	)

	err := row.Scan(
		&entry.ID, &entry.AgentID, &cardJSON, &entry.Owner, &tags,
		&entry.Verified, &entry.RegisteredAt, &entry.LastUpdated,
		&heartbeat, &metaJSON,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cardJSON, &entry.AgentCard); err != nil {
		return nil, fmt.Errorf("failed to parse agent card: %w", err)
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]interface{}{}
	}

	entry.Tags = []string(tags)
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	if heartbeat.Valid {
		t := heartbeat.Time
		entry.LastHeartbeat = &t
	}

	return &entry, nil
}
