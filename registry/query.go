// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// listQuery builds the filter-and-paginate query for List.
//
// Filters are tracked as (fragment, bound value) pairs; each appended
// filter allocates the next positional parameter, and the pagination
// placeholders are rendered from the final argument count. This keeps
// LIMIT/OFFSET positions correct regardless of how many filters are set.
type listQuery struct {
	frags []string
	args  []interface{}
}

const listColumns = `id, agent_id, agent_card, owner, tags, verified,
		registered_at, last_updated, last_heartbeat, metadata`

// where appends a predicate whose single placeholder is written as %d
// in frag and is bound to arg.
func (q *listQuery) where(frag string, arg interface{}) {
	q.args = append(q.args, arg)
	q.frags = append(q.frags, fmt.Sprintf(frag, len(q.args)))
}

// withFilters appends the recognized filters. All filters are optional
// and AND-combined.
func (q *listQuery) withFilters(f ListFilters) {
	if len(f.Tags) > 0 {
		// Entry matches when its tag set intersects the supplied set.
		q.where("tags && $%d", pq.Array(f.Tags))
	}
	if f.Skill != "" {
		// JSONB containment over the skills list: at least one skill
		// object whose name matches exactly.
		skill, _ := json.Marshal([]map[string]string{{"name": f.Skill}})
		q.where("agent_card->'skills' @> $%d", string(skill))
	}
	if f.Verified != nil {
		q.where("verified = $%d", *f.Verified)
	}
}

// build renders the final SQL and argument slice. LIMIT and OFFSET are
// appended last so their placeholder positions follow every filter.
func (q *listQuery) build(limit, offset int) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(listColumns)
	sb.WriteString(" FROM agents WHERE TRUE")
	for _, frag := range q.frags {
		sb.WriteString(" AND ")
		sb.WriteString(frag)
	}
	sb.WriteString(" ORDER BY last_updated DESC")

	args := append(q.args, limit, offset)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	return sb.String(), args
}
