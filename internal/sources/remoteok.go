package sources

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// RemoteOK is a free, keyless, remote-only API. The response is a
// JSON array whose first element is a legal/metadata notice rather
// than a job, so it is always skipped.
type RemoteOK struct {
	Base
}

func NewRemoteOK(t Tuning) *RemoteOK {
	return &RemoteOK{Base: NewBase(t)}
}

func (r *RemoteOK) Name() string      { return "RemoteOK" }
func (r *RemoteOK) IsAvailable() bool { return true }

type remoteOKListing struct {
	Position    string      `json:"position"`
	Company     string      `json:"company"`
	Description string      `json:"description"`
	Tags        []string    `json:"tags"`
	SalaryMin   json.Number `json:"salary_min"`
	SalaryMax   json.Number `json:"salary_max"`
	ApplyURL    string      `json:"apply_url"`
	URL         string      `json:"url"`
	Location    string      `json:"location"`
	Date        string      `json:"date"`
	CompanyLogo string      `json:"company_logo"`
}

func (r *RemoteOK) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if c.Remote == model.RemoteNo {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = r.MaxResults()
	}

	var raw []json.RawMessage
	if err := r.getJSON(ctx, "https://remoteok.com/api", nil, nil, &raw); err != nil {
		return nil, nil
	}
	if len(raw) <= 1 {
		return nil, nil
	}

	var out []model.Job
	for _, msg := range raw[1:] {
		if len(out) >= maxResults {
			break
		}
		var item remoteOKListing
		if err := json.Unmarshal(msg, &item); err != nil {
			continue
		}

		tags := strings.Join(item.Tags, ", ")
		searchable := item.Position + " " + item.Company + " " + item.Description + " " + tags
		if !MatchesKeywords(searchable, keywords) {
			continue
		}

		sMin := htmlutil.SafeFloat(item.SalaryMin.String())
		sMax := htmlutil.SafeFloat(item.SalaryMax.String())
		if c.SalaryMin != nil && sMax != nil && *sMax < *c.SalaryMin {
			continue
		}

		jobURL := item.ApplyURL
		if jobURL == "" {
			jobURL = item.URL
		}
		if jobURL != "" && !strings.HasPrefix(jobURL, "http") {
			jobURL = "https://remoteok.com" + jobURL
		}

		location := item.Location
		if location == "" {
			location = "Remote"
		}
		jobType := c.JobType
		if jobType == "" {
			jobType = "Full-time"
		}

		out = append(out, model.New(model.Job{
			Title:          item.Position,
			Company:        item.Company,
			Location:       location,
			Description:    htmlutil.SanitiseHTML(item.Description),
			URL:            jobURL,
			Source:         r.Name(),
			Remote:         model.RemoteYes,
			SalaryMin:      sMin,
			SalaryMax:      sMax,
			SalaryCurrency: "USD",
			JobType:        jobType,
			DatePosted:     item.Date,
			Tags:           tags,
			CompanyLogo:    item.CompanyLogo,
		}))
	}
	if c.OnBatch != nil && len(out) > 0 {
		c.OnBatch(out)
	}
	return out, nil
}
