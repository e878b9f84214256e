// Package httpapi implements the §6 HTTP contract: a thin Fiber
// surface over the orchestrator, storage engine, and LLM pipeline.
// Routing itself sits outside the core module's invariants, but the
// ambient stack is carried regardless — this is the one place the
// rest of the module is wired together and exercised end-to-end.
package httpapi

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/DrJonoG/job-search/internal/config"
	"github.com/DrJonoG/job-search/internal/llm"
	"github.com/DrJonoG/job-search/internal/metrics"
	"github.com/DrJonoG/job-search/internal/orchestrator"
	"github.com/DrJonoG/job-search/internal/store"
)

// Server wires the Fiber app to the orchestrator/store/LLM pipeline
// and logs each request the way the teacher's router middleware does.
type Server struct {
	app    *fiber.App
	cfg    *config.Config
	store  *store.Store
	orch   *orchestrator.Orchestrator
	pipe   *llm.Pipeline
	client *llm.Client
	cache  *searchCache
	log    *slog.Logger
}

// newRedisClient parses cfg.Redis.URL and returns nil if it is unset
// or malformed — Redis is an optional accelerator for this instance,
// never a hard startup dependency.
func newRedisClient(cfg *config.Config) *redis.Client {
	if cfg.Redis.URL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil
	}
	return redis.NewClient(opts)
}

func NewServer(cfg *config.Config, st *store.Store, orch *orchestrator.Orchestrator, pipe *llm.Pipeline, client *llm.Client, log *slog.Logger) *Server {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	rdb := newRedisClient(cfg)
	s := &Server{app: app, cfg: cfg, store: st, orch: orch, pipe: pipe, client: client, cache: newSearchCache(rdb, st), log: log}

	app.Use(anonRateLimit(rdb, cfg.Server.AnonRateLimitPerMinute))

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals("request_id", reqID)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		metrics.RecordRequest(c.Method(), c.Path(), status, latency.Milliseconds())

		if log != nil {
			log.Info("request",
				"request_id", reqID,
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
		return err
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4")
		return c.SendString(metrics.Export())
	})

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")

	api.Post("/search", s.handleStartSearch)
	api.Get("/search/:task_id", s.handleGetSearch)
	api.Post("/search/:task_id/cancel", s.handleCancelSearch)

	api.Get("/jobs", s.handleListJobs)
	api.Get("/jobs/:job_id", s.handleGetJob)
	api.Post("/jobs/statuses", s.handleJobStatuses)

	api.Post("/favourite/:job_id", s.handleAddFavourite)
	api.Delete("/favourite/:job_id", s.handleRemoveFavourite)
	api.Post("/applied/:job_id", s.handleAddApplied)
	api.Delete("/applied/:job_id", s.handleRemoveApplied)
	api.Put("/applied/:job_id/notes", s.handleUpdateAppliedNotes)
	api.Post("/not-interested/:job_id", s.handleAddNotInterested)
	api.Delete("/not-interested/:job_id", s.handleRemoveNotInterested)

	api.Get("/notes", s.handleListNotes)
	api.Post("/notes", s.handleCreateNote)
	api.Get("/notes/:id", s.handleGetNote)
	api.Put("/notes/:id", s.handleUpdateNote)
	api.Delete("/notes/:id", s.handleDeleteNote)

	api.Get("/saved-searches", s.handleListSavedSearches)
	api.Post("/saved-searches", s.handleCreateSavedSearch)
	api.Get("/saved-searches/:id", s.handleGetSavedSearch)
	api.Put("/saved-searches/:id", s.handleUpdateSavedSearch)
	api.Delete("/saved-searches/:id", s.handleDeleteSavedSearch)

	api.Get("/saved-board-searches", s.handleListSavedBoardSearches)
	api.Post("/saved-board-searches", s.handleCreateSavedBoardSearch)
	api.Get("/saved-board-searches/:id", s.handleGetSavedBoardSearch)
	api.Put("/saved-board-searches/:id", s.handleUpdateSavedBoardSearch)
	api.Delete("/saved-board-searches/:id", s.handleDeleteSavedBoardSearch)

	api.Get("/ai-prompts", s.handleListAIPrompts)
	api.Post("/ai-prompts", s.handleCreateAIPrompt)
	api.Get("/ai-prompts/:id", s.handleGetAIPrompt)
	api.Put("/ai-prompts/:id", s.handleUpdateAIPrompt)
	api.Delete("/ai-prompts/:id", s.handleDeleteAIPrompt)
	api.Post("/ai-prompts/:id/activate", s.handleActivateAIPrompt)

	api.Get("/ollama/models", s.handleListModels)
	api.Post("/ai-analyse", s.handleAIAnalyse)
	api.Get("/ai-analyses", s.handleListAIAnalyses)
	api.Get("/ai-analyses/:job_id", s.handleGetAIAnalysesForJob)

	api.Get("/export", s.handleExportCSV)
	api.Get("/regions", s.handleRegions)
	api.Get("/sources", s.handleSources)
	api.Get("/stats", s.handleStats)
}

// Listen starts the server on the configured host:port. It blocks
// until the listener errors or is shut down.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
