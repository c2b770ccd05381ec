// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canonical/sqlgate"
)

// clientErrors gives the status and message returned for each kind of
// client error. The detail of the error follows the message.
var clientErrors = []struct {
	err    error
	status int
	msg    string
}{
	{sqlgate.ErrColumnNotFound, http.StatusNotFound, "La columna especificada no existe"},
	{sqlgate.ErrInvalidIdentifier, http.StatusBadRequest, "Nombre de tabla o columna inválido"},
	{sqlgate.ErrUnsupportedType, http.StatusBadRequest, "Tipo de dato no soportado"},
	{sqlgate.ErrInvalidValue, http.StatusBadRequest, "Valor inválido"},
	{sqlgate.ErrMalformedStatement, http.StatusBadRequest, "Consulta mal formada"},
}

const internalError = "Error interno del servidor."

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorw("cannot encode response", "err", err)
	}
}

// writeMessage answers a client error with {"mensaje": msg}.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"mensaje": msg})
}

// writeError answers with the status matching err. Server side failures are
// logged and answered with {"error": ...} without the driver's text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if sqlgate.IsClientError(err) {
		log.Debugw("request rejected", "request_id", requestID(r.Context()), "err", err)
		status, msg := http.StatusBadRequest, "Solicitud inválida"
		for _, ce := range clientErrors {
			if errors.Is(err, ce.err) {
				status, msg = ce.status, ce.msg
				break
			}
		}
		writeMessage(w, status, msg+": "+err.Error())
		return
	}
	log.Errorw("request failed", "request_id", requestID(r.Context()), "method", r.Method, "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": internalError})
}
