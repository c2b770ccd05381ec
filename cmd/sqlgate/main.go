// Copyright 2026 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Command sqlgate serves a relational database over a generic REST API.
package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/canonical/sqlgate"
	"github.com/canonical/sqlgate/internal/config"
)

var log = logging.Logger("sqlgate/cmd")

func main() {
	logging.SetLogLevel("*", "INFO")

	app := &cli.App{
		Name:  "sqlgate",
		Usage: "Generic REST access to a relational database",
		Commands: []*cli.Command{
			serveCmd,
			checkCmd,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a TOML configuration file",
				EnvVars: []string{"SQLGATE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level of the sqlgate subsystems, overrides the configuration",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Errorf("%+v", err)
		os.Exit(1)
		return
	}
}

// loadConfig reads and validates the configuration named by the global
// flags, and applies its log level.
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if cctx.IsSet("log-level") {
		level = cctx.String("log-level")
	}
	if err := logging.SetLogLevelRegex("^sqlgate", level); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEngine builds the Engine described by cfg.
func newEngine(cfg *config.Config) *sqlgate.Engine {
	m := sqlgate.NewManager(cfg.Provider, cfg.ConnectionString)
	return sqlgate.New(m, sqlgate.WithSanitizer(sqlgate.NewSanitizer(cfg.PasswordFields, cfg.BcryptCost)))
}
