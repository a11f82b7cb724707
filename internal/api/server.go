// Package api implements the HTTP surface of the planning service.
package api

import (
	"net/http"
	"os"
	"strings"

	"transplan/internal/auth"
	"transplan/internal/config"
	"transplan/internal/notify"
	"transplan/internal/planner"
	"transplan/internal/solver"
	"transplan/internal/store"
)

type Server struct {
	Cfg     config.Planner
	Store   store.Store
	Planner *planner.Service
	Broker  EventBroker
	Auth    *auth.Verifier
}

// NewServer wires the service from the environment: in-memory store unless
// DATABASE_URL is set, in-process broker unless REDIS_URL is set.
func NewServer(cfg config.Planner) (*Server, error) {
	dsn := os.Getenv("DATABASE_URL")
	var st store.Store
	if strings.TrimSpace(dsn) == "" {
		st = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		st = sp
	}

	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	notifier := notify.FromEnv()
	notifier.Start()

	s := &Server{
		Cfg:    cfg,
		Store:  st,
		Broker: broker,
		Auth:   auth.NewVerifierFromEnv(),
	}
	s.Planner = &planner.Service{
		Cfg:      cfg,
		Store:    st,
		Solver:   solver.NewExec(cfg.Solver.Command, cfg.Solver.TimeLimitSec),
		Events:   runEventSink{broker},
		Notifier: notifier,
	}
	return s, nil
}

// runEventSink adapts the broker to the planner's event interface.
type runEventSink struct{ broker EventBroker }

func (s runEventSink) PublishRun(run store.Run) {
	s.broker.Publish(run.ID, RunEvent{Type: "run." + string(run.Status), Run: run})
}

// getPrincipal extracts the caller from a bearer token; falls back to
// headers for dev setups.
func (s *Server) getPrincipal(r *http.Request) auth.Principal {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") && s.Auth != nil {
		tok := strings.TrimSpace(authz[len("Bearer "):])
		if pr, err := s.Auth.Verify(tok); err == nil {
			return pr
		}
	}
	role := r.Header.Get("X-Role")
	if role == "" {
		role = "admin"
	}
	return auth.Principal{Subject: r.Header.Get("X-Subject"), Role: strings.ToLower(role)}
}
