package sources

import (
	"context"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// Jooble requires a free API key embedded in the URL path and takes
// its search parameters as a JSON POST body rather than query params.
type Jooble struct {
	Base
	apiKey string
}

func NewJooble(t Tuning, apiKey string) *Jooble {
	return &Jooble{Base: NewBase(t), apiKey: apiKey}
}

func (j *Jooble) Name() string      { return "Jooble" }
func (j *Jooble) IsAvailable() bool { return j.apiKey != "" }

type joobleRequest struct {
	Keywords     string `json:"keywords"`
	Location     string `json:"location,omitempty"`
	Page         int    `json:"page"`
	ResultOnPage int    `json:"resultonpage"`
	Salary       int    `json:"salary,omitempty"`
}

type joobleResponse struct {
	Jobs []struct {
		Title    string `json:"title"`
		Company  string `json:"company"`
		Snippet  string `json:"snippet"`
		Link     string `json:"link"`
		Location string `json:"location"`
		Salary   string `json:"salary"`
		Updated  string `json:"updated"`
		Type     string `json:"type"`
	} `json:"jobs"`
}

func (j *Jooble) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if !j.IsAvailable() {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = j.MaxResults()
	}
	const resultsPerPage = 50

	var out []model.Job
	for _, kw := range keywords {
		if len(out) >= maxResults {
			break
		}
		body := joobleRequest{Keywords: kw, Page: 1, ResultOnPage: minInt(resultsPerPage, maxResults-len(out))}
		if c.Location != "" {
			body.Location = c.Location
		}
		if c.SalaryMin != nil {
			body.Salary = int(*c.SalaryMin)
		}

		var resp joobleResponse
		if err := j.postJSON(ctx, "https://jooble.org/api/"+j.apiKey, body, &resp); err != nil {
			continue
		}

		var batch []model.Job
		for _, item := range resp.Jobs {
			if len(out)+len(batch) >= maxResults {
				break
			}
			searchable := item.Title + " " + item.Snippet + " " + item.Location
			lower := strings.ToLower(searchable)
			isRemote := strings.Contains(lower, "remote")
			if c.Remote == model.RemoteYes && !isRemote {
				continue
			}
			if c.Remote == model.RemoteNo && isRemote {
				continue
			}

			sMin, sMax := htmlutil.ParseSalaryRange(item.Salary)
			if c.SalaryMin != nil && sMax != nil && *sMax < *c.SalaryMin {
				continue
			}

			remote := model.RemoteNo
			if isRemote {
				remote = model.RemoteYes
			}

			batch = append(batch, model.New(model.Job{
				Title:       item.Title,
				Company:     item.Company,
				Location:    item.Location,
				Description: htmlutil.SanitiseHTML(item.Snippet),
				URL:         item.Link,
				Source:      j.Name(),
				Remote:      remote,
				SalaryMin:   sMin,
				SalaryMax:   sMax,
				JobType:     item.Type,
				DatePosted:  item.Updated,
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
