// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package api exposes an Engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	logging "github.com/ipfs/go-log/v2"

	"github.com/canonical/sqlgate"
	"github.com/canonical/sqlgate/internal/config"
)

var log = logging.Logger("sqlgate/api")

// Server serves the HTTP API of one Engine.
type Server struct {
	engine   *sqlgate.Engine
	auth     config.Auth
	handler  http.Handler
	http     *http.Server
	listener net.Listener
	done     chan error
}

// NewServer returns a Server for e. auth configures the login route and,
// when auth.Required is set, bearer token checks on the data routes.
func NewServer(e *sqlgate.Engine, auth config.Auth) *Server {
	s := &Server{engine: e, auth: auth}
	r := mux.NewRouter()
	Routes(r, s)
	s.handler = requestLogging(r)
	return s
}

// Handler returns the root handler, for use with any http.Server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener
	s.http = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.done = make(chan error, 1)

	log.Infow("listening", "addr", listener.Addr().String())
	go func() {
		err := s.http.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	return nil
}

// Stop gracefully shuts down the server, waiting for in-flight requests
// until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}
	return <-s.done
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
