package sources

import (
	"context"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// Lobsters reads the lobste.rs "job" tag RSS feed, a small but
// high-signal community board.
type Lobsters struct {
	Base
}

func NewLobsters(t Tuning) *Lobsters {
	return &Lobsters{Base: NewBase(t)}
}

func (l *Lobsters) Name() string      { return "Lobsters" }
func (l *Lobsters) IsAvailable() bool { return true }

func (l *Lobsters) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = l.MaxResults()
	}

	items, err := l.fetchRSS(ctx, "https://lobste.rs/t/job.rss")
	if err != nil {
		return nil, nil
	}

	var out []model.Job
	for _, entry := range items {
		if len(out) >= maxResults {
			break
		}
		searchable := entry.Title + " " + entry.Description
		if !MatchesKeywords(searchable, keywords) {
			continue
		}
		out = append(out, model.New(model.Job{
			Title:       entry.Title,
			Description: htmlutil.SanitiseHTML(entry.Description),
			URL:         entry.Link,
			Source:      l.Name(),
			Remote:      model.RemoteUnknown,
			DatePosted:  entry.PubDate,
			Tags:        "lobsters, job",
		}))
	}
	if c.OnBatch != nil && len(out) > 0 {
		c.OnBatch(out)
	}
	return out, nil
}
