package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/claude/liftlog/internal/progression"
	"github.com/claude/liftlog/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// liftlog-mcp serves the MCP tools over stdio. In local mode it opens the
// database directly; with -remote it proxies to a running LiftLog server
// over its REST API instead.
func main() {
	dbPath := flag.String("db", "liftlog.db", "path to database file (local mode)")
	catalogPath := flag.String("catalog", "", "path to exercise catalog (defaults to embedded)")
	remote := flag.String("remote", "", "base URL of a LiftLog server (remote mode, e.g. http://liftlog:8080)")
	flag.Parse()

	// Logs go to stderr so they do not corrupt the stdio transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *remote != "" {
		log.Info("remote mode", "base_url", *remote)
		ds = mcp.NewHTTPClient(*remote)
	} else {
		db, err := storage.Open(*dbPath)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}

		cat, err := catalog.Load(*catalogPath)
		if err != nil {
			log.Error("failed to load exercise catalog", "error", err)
			os.Exit(1)
		}

		prog := progression.New(db, cat, log)
		ds = mcp.NewLocalData(db, prog, cat)
		log.Info("local mode", "db", *dbPath)
	}

	s := mcp.New(ds, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
