package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/suitebridge/netsuite-mcp/internal/config"
	"github.com/suitebridge/netsuite-mcp/internal/netsuite"
	"github.com/suitebridge/netsuite-mcp/internal/tools"
	"github.com/suitebridge/netsuite-mcp/internal/validate"
)

const (
	serverName    = "netsuite-mcp"
	serverVersion = "1.1.0"
)

func main() {
	configPath := flag.String("config", "", "config file (yaml/json); NETSUITE_* env vars take precedence")
	policyPath := flag.String("policy", "", "tool policy file (yaml/json)")
	logLevel := flag.String("log-level", "", "override configured log level")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("load config", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		fatal("parse log level", err)
	}
	// stdout carries the MCP wire; everything else goes to stderr.
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	policy, err := config.LoadPolicy(*policyPath)
	if err != nil {
		fatal("load policy", err)
	}
	gate, err := validate.New(policy)
	if err != nil {
		fatal("compile policy", err)
	}

	client := netsuite.NewClient(cfg.Credentials(), cfg.APIHost, cfg.Timeout, log)

	s := server.NewMCPServer(serverName, serverVersion)
	tools.NewRegistry(client, gate, log).Install(s)

	log.Info().
		Str("account", cfg.AccountID).
		Str("host", netsuite.AccountDomain(cfg.AccountID, cfg.APIHost)).
		Bool("policy", policy != nil).
		Msg("serving MCP on stdio")

	if err := server.ServeStdio(s); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
