// Copyright 2025 A2A Registry
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"a2aregistry/server/shared/logger"
)

// Handlers exposes the registry over HTTP. Routing, parsing and status
// code mapping live here; the semantics live in RegistryService.
type Handlers struct {
	service *RegistryService
	search  *SearchProxy
	log     *logger.Logger
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(service *RegistryService, search *SearchProxy, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.New("registry-api")
	}
	return &Handlers{service: service, search: search, log: log}
}

// RegisterRoutes attaches all agent endpoints to the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/v1/agents", h.registerAgent).Methods("POST")
	r.HandleFunc("/api/v1/agents", h.listAgents).Methods("GET")
	r.HandleFunc("/api/v1/agents/semantic/search", h.semanticSearch).Methods("POST")
	r.HandleFunc("/api/v1/agents/{agentId}", h.getAgent).Methods("GET")
	r.HandleFunc("/api/v1/agents/{agentId}", h.updateAgent).Methods("PUT")
	r.HandleFunc("/api/v1/agents/{agentId}", h.deleteAgent).Methods("DELETE")
	r.HandleFunc("/api/v1/agents/{agentId}/heartbeat", h.heartbeat).Methods("POST")
}

// errorResponse is the stable error body. Clients map on status code;
// agent_id is included when the operation targeted one.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	AgentID string `json:"agent_id,omitempty"`
}

func (h *Handlers) registerAgent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := getRequestID(r)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "register", "", requestID, errors.Join(ErrValidation, err))
		return
	}
	if err := validateRegisterRequest(&req); err != nil {
		h.writeError(w, "register", req.AgentCard.Name, requestID, err)
		return
	}

	entry, err := h.service.Register(r.Context(), req.AgentCard, req.Tags, req.Metadata)
	if err != nil {
		h.writeError(w, "register", req.AgentCard.Name, requestID, err)
		return
	}

	h.observe("register", http.StatusCreated, start)
	writeJSON(w, http.StatusCreated, RegisterResponse{
		ID:           entry.ID,
		AgentID:      entry.AgentID,
		AgentCard:    entry.AgentCard,
		RegisteredAt: entry.RegisteredAt,
	})
}

func (h *Handlers) getAgent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	agentID := mux.Vars(r)["agentId"]
	requestID := getRequestID(r)

	entry, err := h.service.Get(r.Context(), agentID)
	if err != nil {
		h.writeError(w, "get", agentID, requestID, err)
		return
	}

	h.observe("get", http.StatusOK, start)
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handlers) updateAgent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	agentID := mux.Vars(r)["agentId"]
	requestID := getRequestID(r)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "update", agentID, requestID, errors.Join(ErrValidation, err))
		return
	}
	if err := validateRegisterRequest(&req); err != nil {
		h.writeError(w, "update", agentID, requestID, err)
		return
	}

	entry, err := h.service.Update(r.Context(), agentID, req.AgentCard, req.Tags, req.Metadata)
	if err != nil {
		h.writeError(w, "update", agentID, requestID, err)
		return
	}

	h.observe("update", http.StatusOK, start)
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handlers) deleteAgent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	agentID := mux.Vars(r)["agentId"]
	requestID := getRequestID(r)

	if err := h.service.Delete(r.Context(), agentID); err != nil {
		h.writeError(w, "delete", agentID, requestID, err)
		return
	}

	h.observe("delete", http.StatusNoContent, start)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) heartbeat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	agentID := mux.Vars(r)["agentId"]
	requestID := getRequestID(r)

	ts, err := h.service.Heartbeat(r.Context(), agentID)
	if err != nil {
		h.writeError(w, "heartbeat", agentID, requestID, err)
		return
	}

	h.observe("heartbeat", http.StatusOK, start)
	writeJSON(w, http.StatusOK, HeartbeatResponse{AgentID: agentID, LastHeartbeat: ts})
}

func (h *Handlers) listAgents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := getRequestID(r)
	params := r.URL.Query()

	limit := DefaultListLimit
	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, "list", "", requestID, errors.Join(ErrValidation, errors.New("limit must be a non-negative integer")))
			return
		}
		limit = n
	}

	offset := DefaultListOffset
	if v := params.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, "list", "", requestID, errors.Join(ErrValidation, errors.New("offset must be a non-negative integer")))
			return
		}
		offset = n
	}

	filters := ListFilters{
		Tags:  parseTagsParam(params["tags"]),
		Skill: params.Get("skill"),
	}
	if v := params.Get("verified"); v != "" {
		verified, err := strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, "list", "", requestID, errors.Join(ErrValidation, errors.New("verified must be true or false")))
			return
		}
		filters.Verified = &verified
	}

	resp, err := h.service.List(r.Context(), filters, limit, offset)
	if err != nil {
		h.writeError(w, "list", "", requestID, err)
		return
	}

	h.observe("list", http.StatusOK, start)
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) semanticSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := getRequestID(r)

	var req SemanticSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "semantic_search", "", requestID, errors.Join(ErrValidation, err))
		return
	}
	if req.Query == "" {
		h.writeError(w, "semantic_search", "", requestID, errors.Join(ErrValidation, errors.New("query is required")))
		return
	}
	if req.TopK <= 0 {
		req.TopK = 10
	}
	if req.MinScore <= 0 {
		req.MinScore = 0.5
	}

	resp, err := h.search.Search(r.Context(), &req)
	if err != nil {
		h.writeError(w, "semantic_search", "", requestID, err)
		return
	}

	h.observe("semantic_search", http.StatusOK, start)
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps core errors to stable status codes: Not-Found and
// Conflict keep their meaning, validation failures carry their message,
// everything else is reported as an opaque internal failure.
func (h *Handlers) writeError(w http.ResponseWriter, operation, agentID, requestID string, err error) {
	var status int
	var resp errorResponse

	switch {
	case errors.Is(err, ErrAgentNotFound):
		status = http.StatusNotFound
		resp = errorResponse{Error: "not_found", Message: "Agent not found", AgentID: agentID}
	case errors.Is(err, ErrAgentExists):
		status = http.StatusConflict
		resp = errorResponse{Error: "conflict", Message: "Agent already exists", AgentID: agentID}
	case errors.Is(err, ErrValidation):
		status = http.StatusBadRequest
		resp = errorResponse{Error: "validation_error", Message: err.Error(), AgentID: agentID}
	case errors.Is(err, ErrSearchUnavailable):
		status = http.StatusServiceUnavailable
		resp = errorResponse{Error: "search_unavailable", Message: "Semantic search is not available"}
	default:
		status = http.StatusInternalServerError
		resp = errorResponse{Error: "internal_error", Message: "Internal server error"}
	}

	if status >= http.StatusInternalServerError {
		h.log.ErrorWithCode(agentID, requestID, "Request failed", status, err, map[string]interface{}{
			"operation": operation,
		})
	} else {
		h.log.Warn(agentID, requestID, "Request rejected", map[string]interface{}{
			"operation": operation,
			"status":    status,
			"reason":    resp.Error,
		})
	}

	promRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	writeJSON(w, status, resp)
}

func (h *Handlers) observe(operation string, status int, start time.Time) {
	promRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	promRequestDuration.WithLabelValues(operation).Observe(float64(time.Since(start).Milliseconds()))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already written; nothing left to do but log.
		logger.New("registry-api").Error("", "", "Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// getRequestID returns the caller-supplied correlation ID or creates one.
func getRequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return "req_" + uuid.New().String()
}

// parseTagsParam accepts both repeated tags params and comma-separated
// values (?tags=a&tags=b and ?tags=a,b are equivalent).
func parseTagsParam(values []string) []string {
	var tags []string
	for _, v := range values {
		for _, tag := range strings.Split(v, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
