package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// JobsCollider is a free, keyless, remote-only job board API.
type JobsCollider struct {
	Base
}

func NewJobsCollider(t Tuning) *JobsCollider {
	return &JobsCollider{Base: NewBase(t)}
}

func (j *JobsCollider) Name() string      { return "JobsCollider" }
func (j *JobsCollider) IsAvailable() bool { return true }

var jobsColliderCategories = map[string]string{
	"software":   "software-development",
	"developer":  "software-development",
	"engineer":   "software-development",
	"data":       "data",
	"devops":     "devops-sysadmin",
	"sysadmin":   "devops-sysadmin",
	"design":     "design",
	"marketing":  "marketing",
	"sales":      "sales",
	"product":    "product",
	"qa":         "qa",
	"security":   "cybersecurity",
	"cyber":      "cybersecurity",
	"finance":    "finance-legal",
	"legal":      "finance-legal",
	"hr":         "human-resources",
	"writing":    "writing",
	"customer":   "customer-service",
	"project":    "project-management",
	"business":   "business",
}

func guessJobsColliderCategory(kw string) string {
	lower := strings.ToLower(kw)
	for word, category := range jobsColliderCategories {
		if strings.Contains(lower, word) {
			return category
		}
	}
	return ""
}

type jobsColliderListing struct {
	Title       string `json:"title"`
	Name        string `json:"name"`
	Company     string `json:"company"`
	CompanyName string `json:"companyName"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	Location    string `json:"location"`
	Description string `json:"description"`
	PostedAt    string `json:"posted_at"`
}

type jobsColliderResponse struct {
	Jobs []jobsColliderListing `json:"jobs"`
}

func (j *JobsCollider) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if c.Remote == model.RemoteNo {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = j.MaxResults()
	}

	var out []model.Job
	seen := map[string]bool{}
	for _, kw := range keywords {
		if len(out) >= maxResults {
			break
		}
		q := url.Values{"query": {kw}}
		if category := guessJobsColliderCategory(kw); category != "" {
			q.Set("category", category)
		}

		var resp jobsColliderResponse
		if err := j.getJSON(ctx, "https://jobscollider.com/api/search-jobs", q, nil, &resp); err != nil {
			continue
		}

		var batch []model.Job
		for _, item := range resp.Jobs {
			if len(out)+len(batch) >= maxResults {
				break
			}
			title := item.Title
			if title == "" {
				title = item.Name
			}
			company := item.Company
			if company == "" {
				company = item.CompanyName
			}
			jobURL := item.URL
			if jobURL == "" {
				jobURL = item.Link
			}
			loc := item.Location
			if loc == "" {
				loc = "Remote"
			}

			if jobURL != "" {
				if seen[jobURL] {
					continue
				}
				seen[jobURL] = true
			}

			searchable := title + " " + company + " " + loc
			if !MatchesKeywords(searchable, keywords) {
				continue
			}

			batch = append(batch, model.New(model.Job{
				Title:       title,
				Company:     company,
				Location:    loc,
				Description: htmlutil.SanitiseHTML(item.Description),
				URL:         jobURL,
				Source:      j.Name(),
				Remote:      model.RemoteYes,
				DatePosted:  item.PostedAt,
				Tags:        "JobsCollider",
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
