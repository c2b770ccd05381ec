// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// freeformPath is the route of caller supplied queries. It must be
// registered before the generic table routes, which would otherwise take it
// as a table name.
const freeformPath = "/{project}/ejecutar-consulta-parametrizada"

// Path patterns of the data routes. Segments may be empty so that blank
// names and values reach the handlers and are answered with a 400 instead of
// a routing error.
const (
	collectionPath = "/{project}/{table:[^/]*}"
	rowPath        = collectionPath + "/{column:[^/]*}/{value:[^/]*}"
)

// Routes registers the handlers of s on r. Paths are matched as sent,
// without the cleaning mux does by default, and unmatched requests get a
// JSON body like every other error.
func Routes(r *mux.Router, s *Server) {
	r.SkipClean(true)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.Methods("GET").Path("/").HandlerFunc(welcome)
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

	api := r.PathPrefix("/api").Subrouter()
	api.Methods("POST").Path("/login").HandlerFunc(s.login)

	data := api.NewRoute().Subrouter()
	if s.auth.Required {
		data.Use(s.requireToken)
	}
	data.Methods("POST").Path(freeformPath).HandlerFunc(s.runQuery)
	data.Methods("GET").Path(collectionPath).HandlerFunc(s.list)
	data.Methods("POST").Path(collectionPath).HandlerFunc(s.create)
	data.Methods("GET").Path(rowPath).HandlerFunc(s.lookup)
	data.Methods("PUT").Path(rowPath).HandlerFunc(s.update)
	data.Methods("DELETE").Path(rowPath).HandlerFunc(s.delete)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Ruta no encontrada.")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusMethodNotAllowed, "Método no permitido.")
}

func welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("sqlgate: API genérica de acceso a bases de datos.\n"))
}
