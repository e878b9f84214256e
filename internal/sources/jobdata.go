package sources

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// JobData works without an API key but is capped at 10 anonymous
// requests per hour; with a key the cap does not apply. The limiter
// here is in-process (unlike the original's disk-persisted
// timestamps) since this adapter is only ever driven by one
// long-lived process.
type JobData struct {
	Base
	apiKey string

	mu         sync.Mutex
	anonCalls  []time.Time
}

const jobDataAnonMaxPerHour = 10

func NewJobData(t Tuning, apiKey string) *JobData {
	return &JobData{Base: NewBase(t), apiKey: apiKey}
}

func (j *JobData) Name() string      { return "JobData" }
func (j *JobData) IsAvailable() bool { return true }

func (j *JobData) anonBudgetAvailable() bool {
	if j.apiKey != "" {
		return true
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	cutoff := time.Now().Add(-time.Hour)
	kept := j.anonCalls[:0]
	for _, t := range j.anonCalls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	j.anonCalls = kept
	if len(j.anonCalls) >= jobDataAnonMaxPerHour {
		return false
	}
	j.anonCalls = append(j.anonCalls, time.Now())
	return true
}

type jobDataResponse struct {
	Results []struct {
		Title       string `json:"title"`
		CompanyName string `json:"company_name"`
		Location    string `json:"location"`
		DescriptionText string `json:"description_text"`
		URL         string `json:"application_url"`
		HasRemote   bool   `json:"has_remote"`
		SalaryMin   float64 `json:"salary_min"`
		SalaryMax   float64 `json:"salary_max"`
		PostedAt    string `json:"date_posted"`
	} `json:"results"`
}

func (j *JobData) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = j.MaxResults()
	}
	headers := map[string]string{}
	if j.apiKey != "" {
		headers["Authorization"] = "Api-Key " + j.apiKey
	}

	var out []model.Job
	for _, kw := range keywords {
		if len(out) >= maxResults {
			break
		}
		if !j.anonBudgetAvailable() {
			continue
		}

		q := url.Values{
			"search":          {kw},
			"description_str": {"true"},
		}
		if c.Location != "" && len(c.Location) >= 3 {
			q.Set("location", c.Location)
		}
		if c.Remote == model.RemoteYes {
			q.Set("has_remote", "true")
		}
		if c.SalaryMin != nil {
			q.Set("min_salary", strconv.Itoa(int(*c.SalaryMin)))
		}
		if c.PostedInLastDays > 0 {
			q.Set("max_age", strconv.Itoa(minInt(c.PostedInLastDays, 999)))
		}
		if j.apiKey != "" {
			q.Set("page_size", strconv.Itoa(minInt(5000, maxResults)))
		}

		var resp jobDataResponse
		if err := j.getJSON(ctx, "https://jobdataapi.com/api/jobs/", q, headers, &resp); err != nil {
			continue
		}

		var batch []model.Job
		for _, item := range resp.Results {
			if len(out)+len(batch) >= maxResults {
				break
			}
			searchable := item.Title + " " + item.CompanyName + " " + item.DescriptionText
			if !MatchesKeywords(searchable, keywords) {
				continue
			}

			remote := model.RemoteNo
			if item.HasRemote {
				remote = model.RemoteYes
			}

			var sMin, sMax *float64
			if item.SalaryMin > 0 {
				v := item.SalaryMin
				sMin = &v
			}
			if item.SalaryMax > 0 {
				v := item.SalaryMax
				sMax = &v
			}

			batch = append(batch, model.New(model.Job{
				Title:       item.Title,
				Company:     item.CompanyName,
				Location:    item.Location,
				Description: htmlutil.SanitiseHTML(item.DescriptionText),
				URL:         item.URL,
				Source:      j.Name(),
				Remote:      remote,
				SalaryMin:   sMin,
				SalaryMax:   sMax,
				DatePosted:  item.PostedAt,
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
