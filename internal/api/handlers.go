// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/canonical/sqlgate/internal/stmt"
)

// writeResult is the body returned by create, update and delete.
type writeResult struct {
	Mensaje        string `json:"mensaje"`
	FilasAfectadas int64  `json:"filas_afectadas"`
}

// queryRequest is the body of a free-form query.
type queryRequest struct {
	Consulta   string          `json:"consulta"`
	Parametros json.RawMessage `json:"parametros"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	recs, err := s.engine.List(r.Context(), vars["table"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	// An empty table is not an error.
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	recs, err := s.engine.Lookup(r.Context(), vars["table"], vars["column"], vars["value"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(recs) == 0 {
		writeMessage(w, http.StatusNotFound, "No se encontraron registros con el valor especificado.")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fields, ok := decodeFields(w, r, "Los datos a insertar no pueden estar vacíos.")
	if !ok {
		return
	}
	n, err := s.engine.Create(r.Context(), vars["table"], fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, writeResult{"Registro creado exitosamente.", n})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fields, ok := decodeFields(w, r, "Los datos a actualizar no pueden estar vacíos.")
	if !ok {
		return
	}
	n, err := s.engine.Update(r.Context(), vars["table"], vars["column"], vars["value"], fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, writeResult{"Registro actualizado exitosamente.", n})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, err := s.engine.Delete(r.Context(), vars["table"], vars["column"], vars["value"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, writeResult{"Registro eliminado exitosamente.", n})
}

func (s *Server) runQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "El cuerpo de la solicitud no es JSON válido.")
		return
	}
	if req.Consulta == "" {
		writeMessage(w, http.StatusBadRequest, "La consulta no puede estar vacía.")
		return
	}
	args, err := stmt.DecodeArgs(req.Parametros)
	if err != nil {
		writeError(w, r, err)
		return
	}
	recs, err := s.engine.Run(r.Context(), req.Consulta, args)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(recs) == 0 {
		writeMessage(w, http.StatusNotFound, "La consulta no devolvió resultados.")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// decodeFields reads the request body as an ordered field map. An empty
// body or an empty object is answered with emptyMsg.
func decodeFields(w http.ResponseWriter, r *http.Request, emptyMsg string) (stmt.Fields, bool) {
	fields, err := stmt.DecodeFields(r.Body)
	if err != nil {
		if r.ContentLength == 0 {
			writeMessage(w, http.StatusBadRequest, emptyMsg)
		} else {
			writeError(w, r, err)
		}
		return nil, false
	}
	if len(fields) == 0 {
		writeMessage(w, http.StatusBadRequest, emptyMsg)
		return nil, false
	}
	return fields, true
}
