// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package conn

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const pre = "sqlgate_"

// Metrics groups the connection counters. Opened minus closed is the number
// of handles currently held by units of work.
var Metrics = struct {
	Opened     prometheus.Counter
	Closed     prometheus.Counter
	Statements *prometheus.CounterVec
}{
	Opened: prometheus.NewCounter(prometheus.CounterOpts{
		Name: pre + "connections_opened_total",
		Help: "Total number of connection handles opened.",
	}),
	Closed: prometheus.NewCounter(prometheus.CounterOpts{
		Name: pre + "connections_closed_total",
		Help: "Total number of connection handles closed.",
	}),
	Statements: prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: pre + "statements_total",
		Help: "Total number of statements run, by kind and outcome.",
	}, []string{"kind", "outcome"}),
}

var (
	connectionsOpened = Metrics.Opened
	connectionsClosed = Metrics.Closed
)

func countStatement(kind string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrExecution):
		outcome = "error"
	default:
		outcome = "failed"
	}
	Metrics.Statements.WithLabelValues(kind, outcome).Inc()
}

func init() {
	prometheus.MustRegister(Metrics.Opened, Metrics.Closed, Metrics.Statements)
}
