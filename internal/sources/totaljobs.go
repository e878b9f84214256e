package sources

import (
	"context"
	"net/url"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// Totaljobs queries the UK job board's RSS search feed once per
// search keyword, de-duplicating by link since the queries for
// different keywords can return the same listing.
type Totaljobs struct {
	Base
}

func NewTotaljobs(t Tuning) *Totaljobs {
	return &Totaljobs{Base: NewBase(t)}
}

func (tj *Totaljobs) Name() string      { return "Totaljobs" }
func (tj *Totaljobs) IsAvailable() bool { return true }

func (tj *Totaljobs) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = tj.MaxResults()
	}

	seen := map[string]bool{}
	var out []model.Job
	for _, kw := range keywords {
		if len(out) >= maxResults {
			break
		}
		q := url.Values{"keywords": {kw}}
		if c.Location != "" {
			q.Set("location", c.Location)
		}
		feedURL := "https://www.totaljobs.com/JobSearch/RSSLink.aspx?" + q.Encode()

		items, err := tj.fetchRSS(ctx, feedURL)
		if err != nil {
			continue
		}

		var batch []model.Job
		for _, entry := range items {
			if len(out)+len(batch) >= maxResults {
				break
			}
			if entry.Link != "" && seen[entry.Link] {
				continue
			}
			if entry.Link != "" {
				seen[entry.Link] = true
			}

			batch = append(batch, model.New(model.Job{
				Title:       entry.Title,
				Location:    c.Location,
				Description: htmlutil.SanitiseHTML(entry.Description),
				URL:         entry.Link,
				Source:      tj.Name(),
				Remote:      model.RemoteUnknown,
				DatePosted:  entry.PubDate,
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
