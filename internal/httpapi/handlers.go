package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/DrJonoG/job-search/internal/llm"
	"github.com/DrJonoG/job-search/internal/orchestrator"
	"github.com/DrJonoG/job-search/internal/region"
	"github.com/DrJonoG/job-search/internal/store"
)

// errStatus maps a sentinel error to the §6/§7 status code.
func errStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrDatabaseUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, llm.ErrLLMUnreachable):
		return fiber.StatusBadGateway
	case errors.Is(err, llm.ErrNoJSONFound):
		return fiber.StatusUnprocessableEntity
	default:
		var verr *llm.ValidationError
		if errors.As(err, &verr) {
			return fiber.StatusUnprocessableEntity
		}
		if errors.Is(err, llm.ErrMissingInput) {
			return fiber.StatusBadRequest
		}
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(errStatus(err)).JSON(fiber.Map{"error": err.Error()})
}

// --- Search Orchestrator -----------------------------------------

type startSearchRequest struct {
	Keywords         []string `json:"keywords"`
	Location         string   `json:"location"`
	Remote           string   `json:"remote"`
	JobType          string   `json:"job_type"`
	SalaryMin        *float64 `json:"salary_min"`
	ExperienceLevel  string   `json:"experience_level"`
	Sources          []string `json:"sources"`
	MaxResultsPerSrc int      `json:"max_results_per_source"`
	PostedInLastDays int      `json:"posted_in_last_days"`
}

// keywordsFromRaw accepts Keywords as either a JSON string (split on
// commas) or a list, to match the §6 "keywords (string or list)" contract.
func (r *startSearchRequest) keywordsFromRaw(raw fiber.Map) {
	switch v := raw["keywords"].(type) {
	case string:
		for _, kw := range strings.Split(v, ",") {
			kw = strings.TrimSpace(kw)
			if kw != "" {
				r.Keywords = append(r.Keywords, kw)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				r.Keywords = append(r.Keywords, s)
			}
		}
	}
}

func (s *Server) handleStartSearch(c *fiber.Ctx) error {
	var raw fiber.Map
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var req startSearchRequest
	if err := c.BodyParser(&req); err != nil {
		// A plain-string "keywords" cannot decode into the list field;
		// the other fields are still filled and keywordsFromRaw handles it.
		if _, isString := raw["keywords"].(string); !isString {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
	}
	if len(req.Keywords) == 0 {
		req.keywordsFromRaw(raw)
	}

	taskID := s.orch.StartSearch(orchestrator.Params{
		Keywords:         req.Keywords,
		Location:         req.Location,
		Remote:           req.Remote,
		JobType:          req.JobType,
		SalaryMin:        req.SalaryMin,
		ExperienceLevel:  req.ExperienceLevel,
		Sources:          req.Sources,
		MaxResultsPerSrc: req.MaxResultsPerSrc,
		PostedInLastDays: req.PostedInLastDays,
	})

	return c.JSON(fiber.Map{"task_id": taskID, "status": "started"})
}

func (s *Server) handleGetSearch(c *fiber.Ctx) error {
	snap, ok := s.orch.GetTask(c.Params("task_id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown task"})
	}
	return c.JSON(snap)
}

func (s *Server) handleCancelSearch(c *fiber.Ctx) error {
	if !s.orch.CancelSearch(c.Params("task_id")) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "task not found or not running"})
	}
	return c.JSON(fiber.Map{"status": "cancellation requested"})
}

// --- Jobs ----------------------------------------------------------

func (s *Server) handleListJobs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 20)
	if perPage < 1 || perPage > 200 {
		perPage = 20
	}

	var salaryMin *float64
	if raw := c.Query("salary_min"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			salaryMin = &v
		}
	}

	filter := store.SearchFilter{
		Query:                c.Query("q"),
		Source:               c.Query("source"),
		Remote:               c.Query("remote"),
		JobType:              c.Query("job_type"),
		SalaryMin:            salaryMin,
		PostedInLastDays:     c.QueryInt("posted_in_last_days", 0),
		SortBy:               c.Query("sort_by", "date_scraped"),
		Ascending:            c.Query("order", "desc") == "asc",
		ExcludeNotInterested: c.Query("include_not_interested", "0") != "1",
		Region:               c.Query("region"),
	}

	rows, err := s.cache.Search(c.Context(), filter)
	if err != nil {
		return fail(c, err)
	}

	total := len(rows)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	pageRows := rows[start:end]

	return c.JSON(fiber.Map{
		"jobs": pageRows,
		"pagination": fiber.Map{
			"page": page, "per_page": perPage, "total": total, "total_pages": totalPages,
		},
	})
}

func (s *Server) handleGetJob(c *fiber.Ctx) error {
	job, err := s.store.GetJob(c.Context(), c.Params("job_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(job)
}

func (s *Server) handleJobStatuses(c *fiber.Ctx) error {
	var body struct {
		JobIDs []string `json:"job_ids"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	statuses, err := s.store.GetJobStatuses(c.Context(), body.JobIDs)
	if err != nil {
		return fail(c, err)
	}
	out := make(fiber.Map, len(statuses))
	for id, st := range statuses {
		out[id] = fiber.Map{
			"is_favourite":      st.IsFavourite,
			"is_applied":        st.IsApplied,
			"is_not_interested": st.IsNotInterested,
		}
	}
	return c.JSON(out)
}

// --- Favourites / applications / not-interested ---------------------

func (s *Server) handleAddFavourite(c *fiber.Ctx) error {
	created, err := s.store.AddFavourite(c.Context(), c.Params("job_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"created": created})
}

func (s *Server) handleRemoveFavourite(c *fiber.Ctx) error {
	if err := s.store.RemoveFavourite(c.Context(), c.Params("job_id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleAddApplied(c *fiber.Ctx) error {
	var body struct {
		Notes string `json:"notes"`
	}
	_ = c.BodyParser(&body)
	created, err := s.store.AddApplication(c.Context(), c.Params("job_id"), body.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"created": created})
}

func (s *Server) handleRemoveApplied(c *fiber.Ctx) error {
	if err := s.store.RemoveApplication(c.Context(), c.Params("job_id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleUpdateAppliedNotes(c *fiber.Ctx) error {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := s.store.UpdateApplicationNotes(c.Context(), c.Params("job_id"), body.Notes); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleAddNotInterested(c *fiber.Ctx) error {
	created, err := s.store.AddNotInterested(c.Context(), c.Params("job_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"created": created})
}

func (s *Server) handleRemoveNotInterested(c *fiber.Ctx) error {
	if err := s.store.RemoveNotInterested(c.Context(), c.Params("job_id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// --- Notes -----------------------------------------------------------

func (s *Server) handleListNotes(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	notes, err := s.store.GetNotes(c.Context(), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(notes)
}

func (s *Server) handleCreateNote(c *fiber.Ctx) error {
	var body struct{ Title, Body string }
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	id, err := s.store.CreateNote(c.Context(), body.Title, body.Body)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (s *Server) handleGetNote(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	note, err := s.store.GetNote(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(note)
}

func (s *Server) handleUpdateNote(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	var body struct{ Title, Body string }
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := s.store.UpdateNote(c.Context(), id, body.Title, body.Body); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleDeleteNote(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	if err := s.store.DeleteNote(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// --- Saved searches / saved board searches ---------------------------

type savedSearchBody struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

func (s *Server) handleListSavedSearches(c *fiber.Ctx) error {
	rows, err := s.store.GetSavedSearches(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rows)
}

func (s *Server) handleCreateSavedSearch(c *fiber.Ctx) error {
	var body savedSearchBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	id, err := s.store.CreateSavedSearch(c.Context(), body.Name, body.Params)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (s *Server) handleGetSavedSearch(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	row, err := s.store.GetSavedSearch(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(row)
}

func (s *Server) handleUpdateSavedSearch(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	var body savedSearchBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := s.store.UpdateSavedSearch(c.Context(), id, body.Name, body.Params); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleDeleteSavedSearch(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	if err := s.store.DeleteSavedSearch(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleListSavedBoardSearches(c *fiber.Ctx) error {
	rows, err := s.store.GetSavedBoardSearches(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rows)
}

func (s *Server) handleCreateSavedBoardSearch(c *fiber.Ctx) error {
	var body savedSearchBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	id, err := s.store.CreateSavedBoardSearch(c.Context(), body.Name, body.Params)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (s *Server) handleGetSavedBoardSearch(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	row, err := s.store.GetSavedBoardSearch(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(row)
}

func (s *Server) handleUpdateSavedBoardSearch(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	var body savedSearchBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := s.store.UpdateSavedBoardSearch(c.Context(), id, body.Name, body.Params); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleDeleteSavedBoardSearch(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	if err := s.store.DeleteSavedBoardSearch(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// --- AI prompts --------------------------------------------------------

type aiPromptBody struct {
	Title, Model, CV, AboutMe, Preferences, ExtraContext string
}

func (s *Server) handleListAIPrompts(c *fiber.Ctx) error {
	rows, err := s.store.GetAIPrompts(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rows)
}

func (s *Server) handleCreateAIPrompt(c *fiber.Ctx) error {
	var body aiPromptBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	id, err := s.store.CreateAIPrompt(c.Context(), body.Title, body.Model, body.CV, body.AboutMe, body.Preferences, body.ExtraContext)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (s *Server) handleGetAIPrompt(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	row, err := s.store.GetAIPrompt(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(row)
}

func (s *Server) handleUpdateAIPrompt(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	var body aiPromptBody
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := s.store.UpdateAIPrompt(c.Context(), id, body.Title, body.Model, body.CV, body.AboutMe, body.Preferences, body.ExtraContext); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleDeleteAIPrompt(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	if err := s.store.DeleteAIPrompt(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) handleActivateAIPrompt(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid id"})
	}
	if err := s.store.SetActiveAIPrompt(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// --- LLM analysis --------------------------------------------------------

func (s *Server) handleListModels(c *fiber.Ctx) error {
	return c.JSON(s.client.ListModels(c.Context()))
}

func (s *Server) handleAIAnalyse(c *fiber.Ctx) error {
	var body struct {
		JobID    string `json:"job_id"`
		PromptID int64  `json:"prompt_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := s.pipe.Analyze(c.Context(), body.JobID, body.PromptID)
	if err != nil {
		var verr *llm.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":             err.Error(),
				"validation_errors": verr.Violations,
			})
		}
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"status":         result.Status,
		"analysis_id":    result.AnalysisID,
		"match_score":    result.MatchScore,
		"recommendation": result.Recommendation,
		"job_summary":    result.JobSummary,
	})
}

func (s *Server) handleListAIAnalyses(c *fiber.Ctx) error {
	minScore, _ := strconv.ParseFloat(c.Query("min_score", "0"), 64)
	var recs []string
	if raw := c.Query("recommendation"); raw != "" {
		recs = strings.Split(raw, ",")
	}
	promptID, _ := strconv.ParseInt(c.Query("prompt_id", "0"), 10, 64)

	rows, err := s.store.GetAIAnalysesList(c.Context(), store.AIAnalysesFilter{
		MinScore:        minScore,
		Recommendations: recs,
		PromptID:        promptID,
		Query:           c.Query("query"),
		Limit:           c.QueryInt("limit", 50),
		Offset:          c.QueryInt("offset", 0),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rows)
}

func (s *Server) handleGetAIAnalysesForJob(c *fiber.Ctx) error {
	rows, err := s.store.GetAIAnalysesForJob(c.Context(), c.Params("job_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rows)
}

// --- Export / metadata --------------------------------------------------

func (s *Server) handleExportCSV(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="jobs.csv"`)
	return c.SendStream(csvStreamer(c, s.store))
}

func (s *Server) handleRegions(c *fiber.Ctx) error {
	return c.JSON(region.Labels())
}

func (s *Server) handleSources(c *fiber.Ctx) error {
	sources, err := s.store.GetSources(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(sources)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.store.GetStats(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"total":           stats.Total,
		"sources":         stats.Sources,
		"remote_count":    stats.RemoteCount,
		"job_types":       stats.JobTypes,
		"favourite_count": stats.FavouriteCount,
		"applied_count":   stats.AppliedCount,
		"notes_count":     stats.NotesCount,
		"ai_prompts_count": stats.AIPromptsCount,
	})
}
