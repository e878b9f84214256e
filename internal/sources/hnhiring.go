package sources

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/DrJonoG/job-search/internal/model"
)

// HNHiring surfaces Hacker News' monthly "Who is hiring?" threads via
// the Algolia HN Search API, returning the thread itself as a single
// entry rather than parsing individual comment replies.
type HNHiring struct {
	Base
}

func NewHNHiring(t Tuning) *HNHiring {
	return &HNHiring{Base: NewBase(t)}
}

func (h *HNHiring) Name() string      { return "HN Who is hiring" }
func (h *HNHiring) IsAvailable() bool { return true }

var hnThreadTitleRe = regexp.MustCompile(`(?i)who\s+is\s+hiring\?\s*\([^)]+\)`)

type hnSearchResponse struct {
	Hits []struct {
		Title     string `json:"title"`
		ObjectID  string `json:"objectID"`
		StoryID   int64  `json:"story_id"`
		CreatedAt string `json:"created_at"`
	} `json:"hits"`
}

func (h *HNHiring) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = h.MaxResults()
	}

	q := url.Values{
		"query":       {"Who is hiring"},
		"tags":        {"story"},
		"hitsPerPage": {strconv.Itoa(50)},
	}
	var resp hnSearchResponse
	if err := h.getJSON(ctx, "https://hn.algolia.com/api/v1/search_by_date", q, nil, &resp); err != nil {
		return nil, nil
	}

	var out []model.Job
	for _, hit := range resp.Hits {
		if len(out) >= maxResults {
			break
		}
		lower := strings.ToLower(hit.Title)
		if !hnThreadTitleRe.MatchString(hit.Title) && !strings.Contains(lower, "who is hiring") {
			continue
		}
		if !strings.Contains(lower, "who is hiring?") {
			continue
		}

		storyID := hit.StoryID
		link := "https://news.ycombinator.com/item?id=" + strconv.FormatInt(storyID, 10)
		posted := hit.CreatedAt
		if len(posted) >= 10 {
			posted = posted[:10]
		}

		out = append(out, model.New(model.Job{
			Title:       hit.Title,
			Company:     "Hacker News",
			Description: "Monthly Hacker News 'Who is hiring?' thread. Click to open the thread and browse job postings in the comments.",
			URL:         link,
			Source:      h.Name(),
			Remote:      model.RemoteUnknown,
			DatePosted:  posted,
			Tags:        "hn, who is hiring, remote, tech",
		}))
	}
	if c.OnBatch != nil && len(out) > 0 {
		c.OnBatch(out)
	}
	return out, nil
}
