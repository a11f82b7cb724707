package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"transplan/internal/planner"
	"transplan/internal/scenario"
	"transplan/internal/store"
)

// maxScenarioBytes bounds uploaded scenario documents.
const maxScenarioBytes = 32 << 20

// RunsHandler handles POST/GET /v1/runs
func (s *Server) RunsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		p := s.getPrincipal(r)
		if !p.CanSubmit() {
			writeProblem(w, http.StatusForbidden, "Forbidden", "planner or admin required", r.URL.Path)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxScenarioBytes))
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Read failed", err.Error(), r.URL.Path)
			return
		}
		f, err := scenario.Parse(body)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid scenario", err.Error(), r.URL.Path)
			return
		}
		run, err := s.Planner.Submit(r.Context(), f)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Submit failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusAccepted, run)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		items, next, err := s.Store.ListRuns(r.Context(), cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List runs failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// RunByIDHandler handles GET /v1/runs/{id}, /v1/runs/{id}/results and
// /v1/runs/{id}/events/stream
func (s *Server) RunByIDHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	rest := strings.TrimPrefix(path, "/v1/runs/")
	if rest == path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", path)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]

	if len(parts) > 2 && parts[1] == "events" && parts[2] == "stream" {
		s.streamRunEvents(w, r, id)
		return
	}
	if len(parts) > 2 && parts[1] == "events" && parts[2] == "ws" {
		s.RunEventsWSHandler(w, r, id)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if len(parts) > 1 && parts[1] == "results" {
		res, err := s.Store.GetResult(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeProblem(w, http.StatusNotFound, "Results not found", "", path)
				return
			}
			writeProblem(w, http.StatusInternalServerError, "Get results failed", err.Error(), path)
			return
		}
		writeJSON(w, http.StatusOK, res)
		return
	}
	run, err := s.Store.GetRun(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Run not found", "", path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Get run failed", err.Error(), path)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// streamRunEvents serves run state changes over SSE until the client
// disconnects or the run reaches a terminal state.
func (s *Server) streamRunEvents(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	if _, err := s.Store.GetRun(r.Context(), id); err != nil {
		writeProblem(w, http.StatusNotFound, "Run not found", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case evt, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: ", evt.Type)
			writeSSEData(w, evt)
			flusher.Flush()
			if terminal(evt.Run.Status) {
				return
			}
		}
	}
}

func writeSSEData(w io.Writer, evt RunEvent) {
	data, _ := json.Marshal(evt)
	fmt.Fprintf(w, "%s\n\n", data)
}

func terminal(st store.RunStatus) bool {
	return st == store.RunDone || st == store.RunFailed || st == store.RunInfeasible
}

// ValidateHandler handles POST /v1/validate: parse, build, and assemble a
// scenario without solving, returning model size.
func (s *Server) ValidateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxScenarioBytes))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Read failed", err.Error(), r.URL.Path)
		return
	}
	f, err := scenario.Parse(body)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid scenario", err.Error(), r.URL.Path)
		return
	}
	plan, _, err := planner.BuildPlan(f, s.Cfg)
	if err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Scenario rejected", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"layout":      plan.Layout.String(),
		"vars":        plan.Stats.Vars,
		"binaries":    plan.Stats.Binaries,
		"constraints": plan.Stats.Constraints,
		"nonzeros":    plan.Stats.Nonzeros,
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if _, _, err := s.Store.ListRuns(r.Context(), "", 1); err != nil {
		writeProblem(w, http.StatusServiceUnavailable, "Store unavailable", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
