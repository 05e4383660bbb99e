// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestListQueryNoFilters tests the degenerate all-rows query.
func TestListQueryNoFilters(t *testing.T) {
	q := &listQuery{}
	q.withFilters(ListFilters{})
	query, args := q.build(50, 0)

	assert.Contains(t, query, "FROM agents WHERE TRUE")
	assert.Contains(t, query, "ORDER BY last_updated DESC")
	assert.Contains(t, query, "LIMIT $1 OFFSET $2")
	require.Len(t, args, 2)
	assert.Equal(t, 50, args[0])
	assert.Equal(t, 0, args[1])
}

// TestListQueryPlaceholderPositions tests that pagination placeholders
// always follow the filter placeholders, whatever subset is present.
func TestListQueryPlaceholderPositions(t *testing.T) {
	verified := true

	tests := []struct {
		name       string
		filters    ListFilters
		wantClause []string
		wantLimit  string
		wantArgs   int
	}{
		{
			name:       "tags only",
			filters:    ListFilters{Tags: []string{"nlp"}},
			wantClause: []string{"tags && $1"},
			wantLimit:  "LIMIT $2 OFFSET $3",
			wantArgs:   3,
		},
		{
			name:       "skill only",
			filters:    ListFilters{Skill: "translate"},
			wantClause: []string{"agent_card->'skills' @> $1"},
			wantLimit:  "LIMIT $2 OFFSET $3",
			wantArgs:   3,
		},
		{
			name:       "verified only",
			filters:    ListFilters{Verified: &verified},
			wantClause: []string{"verified = $1"},
			wantLimit:  "LIMIT $2 OFFSET $3",
			wantArgs:   3,
		},
		{
			name: "all filters combined",
			filters: ListFilters{
				Tags:     []string{"nlp", "translation"},
				Skill:    "translate",
				Verified: &verified,
			},
			wantClause: []string{
				"tags && $1",
				"agent_card->'skills' @> $2",
				"verified = $3",
			},
			wantLimit: "LIMIT $4 OFFSET $5",
			wantArgs:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &listQuery{}
			q.withFilters(tt.filters)
			query, args := q.build(10, 20)

			for _, clause := range tt.wantClause {
				assert.Contains(t, query, clause)
			}
			assert.Contains(t, query, tt.wantLimit)
			require.Len(t, args, tt.wantArgs)
			assert.Equal(t, 10, args[len(args)-2])
			assert.Equal(t, 20, args[len(args)-1])
		})
	}
}

// TestListQueryFiltersAreConjunctive tests that every present filter
// appears as an AND clause.
func TestListQueryFiltersAreConjunctive(t *testing.T) {
	verified := false
	q := &listQuery{}
	q.withFilters(ListFilters{Tags: []string{"x"}, Verified: &verified})
	query, _ := q.build(5, 0)

	assert.Equal(t, 2, strings.Count(query, " AND "))
	assert.Equal(t, false, q.args[1])
}

// TestListQuerySkillEncoding tests the JSONB containment document for
// the skill filter.
func TestListQuerySkillEncoding(t *testing.T) {
	q := &listQuery{}
	q.withFilters(ListFilters{Skill: "summarize"})
	_, args := q.build(1, 0)

	require.Len(t, args, 3)
	assert.JSONEq(t, `[{"name":"summarize"}]`, args[0].(string))
}
