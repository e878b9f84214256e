package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// Remotive is a free, keyless, remote-only job API with a coarse
// category filter layered on top of the keyword search.
type Remotive struct {
	Base
}

func NewRemotive(t Tuning) *Remotive {
	return &Remotive{Base: NewBase(t)}
}

func (r *Remotive) Name() string      { return "Remotive" }
func (r *Remotive) IsAvailable() bool { return true }

var remotiveCategories = map[string]string{
	"software": "software-dev", "engineer": "software-dev", "developer": "software-dev",
	"data": "data", "analyst": "data", "machine learning": "data",
	"design": "design", "marketing": "marketing", "product": "product",
	"customer": "customer-support", "sales": "sales", "devops": "devops-sysadmin",
	"finance": "finance-legal", "hr": "hr", "writing": "writing", "qa": "qa",
}

type remotiveResponse struct {
	Jobs []struct {
		Title           string `json:"title"`
		CompanyName     string `json:"company_name"`
		CandidateReqLoc string `json:"candidate_required_location"`
		JobType         string `json:"job_type"`
		Description     string `json:"description"`
		URL             string `json:"url"`
		SalaryRaw       string `json:"salary"`
		PublicationDate string `json:"publication_date"`
		Category        string `json:"category"`
		Tags            []string `json:"tags"`
	} `json:"jobs"`
}

func (r *Remotive) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if c.Remote == model.RemoteNo {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = r.MaxResults()
	}

	var out []model.Job
	for _, kw := range keywords {
		if len(out) >= maxResults {
			break
		}
		category := ""
		kwLower := strings.ToLower(kw)
		for trigger, cat := range remotiveCategories {
			if strings.Contains(kwLower, trigger) {
				category = cat
				break
			}
		}

		q := url.Values{"limit": {strconv.Itoa(maxResults)}}
		if category != "" {
			q.Set("category", category)
		}
		if kw != "" {
			q.Set("search", kw)
		}

		var resp remotiveResponse
		if err := r.getJSON(ctx, "https://remotive.com/api/remote-jobs", q, nil, &resp); err != nil {
			continue
		}

		var batch []model.Job
		for _, item := range resp.Jobs {
			if len(out)+len(batch) >= maxResults {
				break
			}
			searchable := item.Title + " " + item.CompanyName + " " + item.Description + " " + item.Category
			if !MatchesKeywords(searchable, keywords) {
				continue
			}
			min, max := htmlutil.ParseSalaryRange(item.SalaryRaw)
			if c.SalaryMin != nil && max != nil && *max < *c.SalaryMin {
				continue
			}
			batch = append(batch, model.New(model.Job{
				Title:          item.Title,
				Company:        item.CompanyName,
				Location:       item.CandidateReqLoc,
				Description:    htmlutil.SanitiseHTML(item.Description),
				URL:            item.URL,
				Source:         r.Name(),
				Remote:         model.RemoteYes,
				JobType:        item.JobType,
				SalaryMin:      min,
				SalaryMax:      max,
				DatePosted:     item.PublicationDate,
				Tags:           strings.Join(item.Tags, ", "),
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
