// Package sources defines the shared adapter contract and the
// concrete per-board implementations that fetch job listings from
// public APIs, ATS boards, and RSS/HTML feeds.
package sources

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/DrJonoG/job-search/internal/model"
)

// Criteria is the single search request every adapter receives.
// OnBatch, when set, is invoked after each logical page/batch is
// fetched so the caller can persist results incrementally instead of
// waiting for the whole adapter to finish.
type Criteria struct {
	Keywords         []string
	Location         string
	Remote           string
	JobType          string
	SalaryMin        *float64
	ExperienceLevel  string
	MaxResults       int
	PostedInLastDays int
	OnBatch          func([]model.Job)
}

// Adapter is the interface every job source must implement.
type Adapter interface {
	Name() string
	IsAvailable() bool
	FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error)
}

// Tuning carries the operator-configurable knobs (timeout, rate limit,
// result cap) that every adapter is built with.
type Tuning struct {
	RequestTimeout  time.Duration
	RateLimitDelay  time.Duration
	MaxResultsCap   int
}

// Base is embedded by every concrete adapter. It owns the shared HTTP
// client and the keyword/HTML helpers so individual adapters only
// implement the parts specific to their API or page format.
type Base struct {
	client         *http.Client
	rateLimitDelay time.Duration
	maxResults     int
}

func NewBase(t Tuning) Base {
	timeout := t.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	delay := t.RateLimitDelay
	if delay <= 0 {
		delay = time.Second
	}
	maxResults := t.MaxResultsCap
	if maxResults <= 0 {
		maxResults = 100
	}
	return Base{
		client:         &http.Client{Timeout: timeout},
		rateLimitDelay: delay,
		maxResults:     maxResults,
	}
}

// Client returns the shared HTTP client configured with the request
// timeout. Adapters set their own headers per request.
func (b *Base) Client() *http.Client {
	return b.client
}

// MaxResults returns the configured per-source result cap.
func (b *Base) MaxResults() int {
	return b.maxResults
}

// Throttle sleeps for the configured rate-limit delay, or returns
// immediately if ctx is cancelled first.
func (b *Base) Throttle(ctx context.Context) error {
	t := time.NewTimer(b.rateLimitDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NormalizeKeywords trims and drops empty keywords, defaulting to
// ["job"] so a blank search still returns a broad result set instead
// of nothing.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}
	if len(out) == 0 {
		return []string{"job"}
	}
	return out
}

// titleWords capitalises the first letter of each whitespace-separated
// word, used for API fields like Adzuna's contract_time that come
// back as "full_time" rather than a display-ready label.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// MatchesKeywords reports whether text satisfies any of keywords: a
// full-phrase match, or a multi-word prefix (at least two words) of a
// multi-word keyword. Used by adapters whose upstream API has no
// native keyword filter (RSS feeds, board listings).
func MatchesKeywords(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		kwLower := strings.ToLower(kw)
		if strings.Contains(lower, kwLower) {
			return true
		}
		words := strings.Fields(kwLower)
		for n := 2; n <= len(words); n++ {
			phrase := strings.Join(words[:n], " ")
			if strings.Contains(lower, phrase) {
				return true
			}
		}
	}
	return false
}
