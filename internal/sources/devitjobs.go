package sources

import (
	"context"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// DevITjobs reads a single free UK developer-jobs RSS feed.
type DevITjobs struct {
	Base
}

func NewDevITjobs(t Tuning) *DevITjobs {
	return &DevITjobs{Base: NewBase(t)}
}

func (d *DevITjobs) Name() string      { return "DevITjobs" }
func (d *DevITjobs) IsAvailable() bool { return true }

func (d *DevITjobs) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = d.MaxResults()
	}

	items, err := d.fetchRSS(ctx, "https://devitjobs.uk/job_feed.xml")
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

		isRemote := strings.Contains(strings.ToLower(searchable), "remote")
		remote := model.RemoteNo
		if isRemote {
			remote = model.RemoteYes
		}
		if c.Remote == model.RemoteYes && !isRemote {
			continue
		}
		if c.Remote == model.RemoteNo && isRemote {
			continue
		}

		out = append(out, model.New(model.Job{
			Title:       entry.Title,
			Location:    "United Kingdom",
			Description: htmlutil.SanitiseHTML(entry.Description),
			URL:         entry.Link,
			Source:      d.Name(),
			Remote:      remote,
			DatePosted:  entry.PubDate,
		}))
	}
	if c.OnBatch != nil && len(out) > 0 {
		c.OnBatch(out)
	}
	return out, nil
}
