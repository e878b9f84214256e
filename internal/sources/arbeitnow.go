package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// Arbeitnow is a free, keyless job-board API covering mostly European
// tech roles, paginated five pages deep per search.
type Arbeitnow struct {
	Base
}

func NewArbeitnow(t Tuning) *Arbeitnow {
	return &Arbeitnow{Base: NewBase(t)}
}

func (a *Arbeitnow) Name() string      { return "Arbeitnow" }
func (a *Arbeitnow) IsAvailable() bool { return true }

type arbeitnowResponse struct {
	Data []struct {
		Title       string   `json:"title"`
		CompanyName string   `json:"company_name"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
		JobTypes    []string `json:"job_types"`
		Remote      bool     `json:"remote"`
		Slug        string   `json:"slug"`
		URL         string   `json:"url"`
		Location    string   `json:"location"`
		CreatedAt   int64    `json:"created_at"`
	} `json:"data"`
}

func (a *Arbeitnow) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = a.MaxResults()
	}

	var out []model.Job
	for page := 1; page <= 5 && len(out) < maxResults; page++ {
		var resp arbeitnowResponse
		q := url.Values{"page": {fmt.Sprintf("%d", page)}}
		if err := a.getJSON(ctx, "https://www.arbeitnow.com/api/job-board-api", q, nil, &resp); err != nil {
			break
		}
		if len(resp.Data) == 0 {
			break
		}

		var batch []model.Job
		for _, item := range resp.Data {
			if len(out)+len(batch) >= maxResults {
				break
			}
			if c.Remote == model.RemoteYes && !item.Remote {
				continue
			}
			if c.Remote == model.RemoteNo && item.Remote {
				continue
			}

			tags := strings.Join(item.Tags, ", ")
			searchable := item.Title + " " + item.CompanyName + " " + item.Description + " " + tags
			if !MatchesKeywords(searchable, keywords) {
				continue
			}

			jobURL := item.URL
			if jobURL == "" {
				jobURL = "https://www.arbeitnow.com/view/" + item.Slug
			}

			remote := model.RemoteNo
			if item.Remote {
				remote = model.RemoteYes
			}

			batch = append(batch, model.New(model.Job{
				Title:       item.Title,
				Company:     item.CompanyName,
				Location:    item.Location,
				Description: htmlutil.SanitiseHTML(item.Description),
				URL:         jobURL,
				Source:      a.Name(),
				Remote:      remote,
				JobType:     strings.Join(item.JobTypes, ", "),
				Tags:        tags,
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
