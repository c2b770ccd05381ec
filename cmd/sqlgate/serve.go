// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/canonical/sqlgate/internal/api"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP API",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "address to listen on, overrides the configuration",
		},
		&cli.DurationFlag{
			Name:  "shutdown-timeout",
			Usage: "time allowed for in-flight requests on shutdown",
			Value: 15 * time.Second,
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		listen := cfg.Listen
		if cctx.IsSet("listen") {
			listen = cctx.String("listen")
		}

		srv := api.NewServer(newEngine(cfg), cfg.Auth)
		if err := srv.Start(listen); err != nil {
			return err
		}
		log.Infow("serving", "provider", cfg.Provider, "addr", srv.Addr(), "auth", cfg.Auth.Required)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigs
		log.Infow("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cctx.Duration("shutdown-timeout"))
		defer cancel()
		return srv.Stop(ctx)
	},
}

var checkCmd = &cli.Command{
	Name:  "check",
	Usage: "Check that the configured database can be reached",
	Action: func(cctx *cli.Context) error {
		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cctx.Context, 30*time.Second)
		defer cancel()
		if err := newEngine(cfg).Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "%s: ok\n", cfg.Provider)
		return nil
	},
}
