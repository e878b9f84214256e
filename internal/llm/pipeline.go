package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/DrJonoG/job-search/internal/metrics"
	"github.com/DrJonoG/job-search/internal/store"
)

// ErrMissingInput covers a missing job_id/prompt_id or a prompt with
// no model configured — a structured, client-correctable error rather
// than a generic failure.
var ErrMissingInput = errors.New("job_id and prompt_id are required")

// Pipeline composes the analyst prompt, routes to a provider, extracts
// and validates the JSON response, and upserts the result.
type Pipeline struct {
	client  *Client
	store   *store.Store
	reqLog  *slog.Logger
	respLog *slog.Logger
}

func NewPipeline(client *Client, st *store.Store, reqLog, respLog *slog.Logger) *Pipeline {
	return &Pipeline{client: client, store: st, reqLog: reqLog, respLog: respLog}
}

// Result is the success envelope §6 specifies for POST /api/ai-analyse.
type Result struct {
	Status         string
	AnalysisID     int64
	MatchScore     int
	Recommendation string
	JobSummary     string
}

func (p *Pipeline) Analyze(ctx context.Context, jobID string, promptID int64) (Result, error) {
	if jobID == "" || promptID == 0 {
		return Result{}, ErrMissingInput
	}

	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return Result{}, fmt.Errorf("loading job: %w", err)
	}
	prompt, err := p.store.GetAIPrompt(ctx, promptID)
	if err != nil {
		return Result{}, fmt.Errorf("loading prompt: %w", err)
	}
	model, _ := prompt["model"].(string)
	if model == "" {
		return Result{}, fmt.Errorf("%w: prompt has no model configured", ErrMissingInput)
	}

	messages := composeMessages(prompt, job)

	now := time.Now().UTC()
	title, _ := prompt["title"].(string)
	if p.reqLog != nil {
		p.reqLog.Info("ai_analysis_request",
			"timestamp", now.Format(time.RFC3339),
			"job_id", jobID, "prompt_id", promptID, "prompt_title", title, "model", model,
			"messages", messages,
		)
	}

	raw, err := p.client.Call(ctx, model, messages)
	provider, _ := RouteModel(model)
	metrics.RecordLLMExtract(string(provider), model, err == nil)

	if p.respLog != nil {
		p.respLog.Info("ai_analysis_response",
			"timestamp", time.Now().UTC().Format(time.RFC3339),
			"job_id", jobID, "prompt_id", promptID, "prompt_title", title, "model", model,
			"raw_response", raw, "call_error", errString(err),
		)
	}
	if err != nil {
		return Result{}, err
	}

	parsed, err := ExtractJSON(raw)
	if err != nil {
		return Result{}, err
	}

	if violations := Validate(parsed); len(violations) > 0 {
		return Result{}, &ValidationError{Violations: violations}
	}

	if err := p.store.SaveAIAnalysis(ctx, jobID, promptID, model, parsed); err != nil {
		return Result{}, fmt.Errorf("persisting analysis: %w", err)
	}

	score, _ := coerceInt(parsed["match_score"])
	recommendation, _ := parsed["recommendation"].(string)
	summary, _ := parsed["job_description"].(string)

	var analysisID int64
	if saved, err := p.store.GetAIAnalysis(ctx, jobID, promptID); err == nil {
		analysisID, _ = toInt64(saved["id"])
	}

	return Result{
		Status:         "completed",
		AnalysisID:     analysisID,
		MatchScore:     score,
		Recommendation: recommendation,
		JobSummary:     summary,
	}, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func composeMessages(prompt, job map[string]any) []ChatMessage {
	userTurn := fmt.Sprintf(
		"CV:\n%s\n\nAbout me:\n%s\n\nPreferences:\n%s\n\nExtra context:\n%s\n\nJob listing:\nTitle: %s\nCompany: %s\nLocation: %s\nRemote: %s\nJob type: %s\nSalary: %s\nDescription:\n%s",
		orNotProvided(prompt["cv"]),
		orNotProvided(prompt["about_me"]),
		orNotProvided(prompt["preferences"]),
		orNotProvided(prompt["extra_context"]),
		stringField(job["title"]),
		stringField(job["company"]),
		stringField(job["location"]),
		stringField(job["remote"]),
		stringField(job["job_type"]),
		formatSalary(job),
		stringField(job["description"]),
	)

	return []ChatMessage{
		{Role: "system", Content: AnalysisSystemPrompt},
		{Role: "user", Content: userTurn},
	}
}

func orNotProvided(v any) string {
	s := stringField(v)
	if s == "" {
		return "(not provided)"
	}
	return s
}

// stringField renders a value pulled from a store row as a string.
// Numeric columns (salary_min/salary_max are DOUBLE PRECISION) come
// back as float64, not string, so a bare type assertion would silently
// drop them.
func stringField(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(tv, 10)
	case bool:
		if tv {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", tv)
	}
}

func formatSalary(job map[string]any) string {
	min := stringField(job["salary_min"])
	max := stringField(job["salary_max"])
	currency := stringField(job["salary_currency"])
	if min == "" && max == "" {
		return "(not stated)"
	}
	if min != "" && max != "" {
		return fmt.Sprintf("%s - %s %s", min, max, currency)
	}
	if min != "" {
		return fmt.Sprintf("%s+ %s", min, currency)
	}
	return fmt.Sprintf("up to %s %s", max, currency)
}
