// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryColumns = []string{
	"id", "agent_id", "agent_card", "owner", "tags", "verified",
	"registered_at", "last_updated", "last_heartbeat", "metadata",
}

func addEntryRow(rows *sqlmock.Rows, agentID string, updated time.Time) *sqlmock.Rows {
	card := []byte(`{"name":"` + agentID + `","endpoint":"https://example.com","protocolVersion":"0.3","skills":[{"name":"translate"}]}`)
	return rows.AddRow(
		"00000000-0000-0000-0000-000000000001", agentID, card, "owner-1",
		[]byte("{nlp,translation}"), false, updated, updated, nil, []byte(`{}`),
	)
}

func newTestStore(t *testing.T) (*EntryStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewEntryStore(db), mock
}

// TestStoreInsert tests persisting a new entry.
func TestStoreInsert(t *testing.T) {
	store, mock := newTestStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO agents").
		WithArgs(sqlmock.AnyArg(), "translator-1", sqlmock.AnyArg(), "",
			pq.Array([]string{"nlp"}), false, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"registered_at", "last_updated"}).AddRow(now, now))

	entry := &RegistryEntry{
		AgentID:   "translator-1",
		AgentCard: AgentCard{Name: "translator-1", Endpoint: "https://example.com"},
		Tags:      []string{"nlp"},
		Metadata:  map[string]interface{}{},
	}

	require.NoError(t, store.Insert(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, now, entry.RegisteredAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestStoreInsertDuplicate tests the unique-violation mapping.
func TestStoreInsertDuplicate(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("INSERT INTO agents").
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	entry := &RegistryEntry{
		AgentID:   "translator-1",
		AgentCard: AgentCard{Name: "translator-1", Endpoint: "https://example.com"},
	}

	err := store.Insert(context.Background(), entry)
	assert.ErrorIs(t, err, ErrAgentExists)
}

// TestStoreGetByAgentID tests lookup and the not-found mapping.
func TestStoreGetByAgentID(t *testing.T) {
	store, mock := newTestStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("FROM agents WHERE agent_id").
		WithArgs("translator-1").
		WillReturnRows(addEntryRow(sqlmock.NewRows(entryColumns), "translator-1", now))

	entry, err := store.GetByAgentID(context.Background(), "translator-1")
	require.NoError(t, err)
	assert.Equal(t, "translator-1", entry.AgentID)
	assert.Equal(t, "translator-1", entry.AgentCard.Name)
	assert.Equal(t, []string{"nlp", "translation"}, entry.Tags)
	assert.Nil(t, entry.LastHeartbeat)
	assert.NotNil(t, entry.Metadata)

	mock.ExpectQuery("FROM agents WHERE agent_id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = store.GetByAgentID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

// TestStoreUpdate tests the unconditional overwrite.
func TestStoreUpdate(t *testing.T) {
	store, mock := newTestStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE agents").
		WithArgs(sqlmock.AnyArg(), pq.Array([]string{"nlp"}), sqlmock.AnyArg(), "translator-1").
		WillReturnRows(addEntryRow(sqlmock.NewRows(entryColumns), "translator-1", now))

	entry, err := store.Update(context.Background(), "translator-1",
		AgentCard{Name: "translator-1", Endpoint: "https://example.com/v2"},
		[]string{"nlp"}, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "translator-1", entry.AgentID)

	mock.ExpectQuery("UPDATE agents").
		WillReturnError(sql.ErrNoRows)

	_, err = store.Update(context.Background(), "missing", AgentCard{}, nil, nil)
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

// TestStoreDelete tests delete semantics including not-found.
func TestStoreDelete(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("DELETE FROM agents").
		WithArgs("translator-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "translator-1"))

	mock.ExpectExec("DELETE FROM agents").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

// TestStoreHeartbeat tests that only last_heartbeat is touched.
func TestStoreHeartbeat(t *testing.T) {
	store, mock := newTestStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE agents").
		WithArgs("translator-1").
		WillReturnRows(sqlmock.NewRows([]string{"last_heartbeat"}).AddRow(now))

	ts, err := store.Heartbeat(context.Background(), "translator-1")
	require.NoError(t, err)
	assert.Equal(t, now, ts)

	mock.ExpectQuery("UPDATE agents").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = store.Heartbeat(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

// TestStoreList tests filter pass-through and row scanning.
func TestStoreList(t *testing.T) {
	store, mock := newTestStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(entryColumns)
	addEntryRow(rows, "translator-1", now)
	addEntryRow(rows, "summarizer-1", now.Add(-time.Minute))

	mock.ExpectQuery("FROM agents WHERE TRUE AND tags").
		WithArgs(pq.Array([]string{"nlp"}), 50, 0).
		WillReturnRows(rows)

	entries, err := store.List(context.Background(), ListFilters{Tags: []string{"nlp"}}, 50, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "translator-1", entries[0].AgentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestStoreListEmpty tests that no matches yields an empty slice.
func TestStoreListEmpty(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("FROM agents WHERE TRUE").
		WillReturnRows(sqlmock.NewRows(entryColumns))

	entries, err := store.List(context.Background(), ListFilters{}, 50, 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
