package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// Findwork requires a free token passed as an Authorization header.
type Findwork struct {
	Base
	apiKey string
}

func NewFindwork(t Tuning, apiKey string) *Findwork {
	return &Findwork{Base: NewBase(t), apiKey: apiKey}
}

func (f *Findwork) Name() string      { return "Findwork" }
func (f *Findwork) IsAvailable() bool { return f.apiKey != "" }

type findworkResponse struct {
	Results []struct {
		Role        string `json:"role"`
		CompanyName string `json:"company_name"`
		Text        string `json:"text"`
		URL         string `json:"url"`
		Location    string `json:"location"`
		Remote      bool   `json:"remote"`
		Keywords    []string `json:"keywords"`
		DatePosted  string `json:"date_posted"`
	} `json:"results"`
}

func (f *Findwork) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if !f.IsAvailable() {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = f.MaxResults()
	}
	headers := map[string]string{"Authorization": "Token " + f.apiKey}

	var out []model.Job
	for _, kw := range keywords {
		if len(out) >= maxResults {
			break
		}
		q := url.Values{"search": {kw}, "sort_by": {"relevance"}}
		if c.Location != "" {
			q.Set("location", c.Location)
		}
		if c.Remote == model.RemoteYes {
			q.Set("remote", "true")
		}

		var resp findworkResponse
		if err := f.getJSON(ctx, "https://findwork.dev/api/jobs/", q, headers, &resp); err != nil {
			continue
		}

		var batch []model.Job
		for _, item := range resp.Results {
			if len(out)+len(batch) >= maxResults {
				break
			}
			searchable := item.Role + " " + item.CompanyName + " " + item.Text
			if !MatchesKeywords(searchable, keywords) {
				continue
			}

			remote := model.RemoteNo
			if item.Remote {
				remote = model.RemoteYes
			}

			batch = append(batch, model.New(model.Job{
				Title:       item.Role,
				Company:     item.CompanyName,
				Location:    item.Location,
				Description: htmlutil.SanitiseHTML(item.Text),
				URL:         item.URL,
				Source:      f.Name(),
				Remote:      remote,
				DatePosted:  item.DatePosted,
				Tags:        strings.Join(item.Keywords, ", "),
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
