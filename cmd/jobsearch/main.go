package main

import (
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/DrJonoG/job-search/internal/config"
	"github.com/DrJonoG/job-search/internal/httpapi"
	"github.com/DrJonoG/job-search/internal/llm"
	"github.com/DrJonoG/job-search/internal/migrate"
	"github.com/DrJonoG/job-search/internal/orchestrator"
	"github.com/DrJonoG/job-search/internal/sources"
	"github.com/DrJonoG/job-search/internal/store"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	if err := migrate.Run(cfg.Database.DSN); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open db failed: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConn)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConn)
	db.SetConnMaxLifetime(30 * time.Minute)

	st := store.New(db)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	reqLog, reqClose, err := newFileLogger("log/llm_requests.log")
	if err != nil {
		log.Fatalf("open llm request log: %v", err)
	}
	defer reqClose()
	respLog, respClose, err := newFileLogger("log/llm_responses.log")
	if err != nil {
		log.Fatalf("open llm response log: %v", err)
	}
	defer respClose()

	adapters := sources.New(cfg)
	orch := orchestrator.New(st, adapters, logger)

	llmClient := llm.NewClient(cfg.LLM)
	pipeline := llm.NewPipeline(llmClient, st, reqLog, respLog)

	srv := httpapi.NewServer(cfg, st, orch, pipeline, llmClient, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("listening", "addr", addr)
	if err := srv.Listen(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// newFileLogger opens an append-only newline-delimited log sink under
// log/, creating the directory if needed, matching the ambient log
// file convention §6 calls for (LLM request/response ledgers).
func newFileLogger(path string) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll("log", 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{})), f.Close, nil
}
