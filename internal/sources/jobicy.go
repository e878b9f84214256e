package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// Jobicy is a free, keyless, remote-only job API queried once per
// search keyword (its "tag" parameter accepts only a single term).
type Jobicy struct {
	Base
}

func NewJobicy(t Tuning) *Jobicy {
	return &Jobicy{Base: NewBase(t)}
}

func (j *Jobicy) Name() string      { return "Jobicy" }
func (j *Jobicy) IsAvailable() bool { return true }

type jobicyResponse struct {
	Jobs []struct {
		JobTitle         string   `json:"jobTitle"`
		CompanyName      string   `json:"companyName"`
		JobDescription   string   `json:"jobDescription"`
		JobGeo           string   `json:"jobGeo"`
		JobType          string   `json:"jobType"`
		URL              string   `json:"url"`
		AnnualSalaryMin  string   `json:"annualSalaryMin"`
		AnnualSalaryMax  string   `json:"annualSalaryMax"`
		SalaryCurrency   string   `json:"salaryCurrency"`
		JobIndustry      []string `json:"jobIndustry"`
		PubDate          string   `json:"pubDate"`
	} `json:"jobs"`
}

func (j *Jobicy) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if c.Remote == model.RemoteNo {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = j.MaxResults()
	}

	var out []model.Job
	for _, kw := range keywords {
		if len(out) >= maxResults {
			break
		}
		q := url.Values{"count": {strconv.Itoa(minInt(maxResults, 50))}}
		if c.Location != "" {
			q.Set("geo", c.Location)
		}
		if kw != "" {
			q.Set("tag", kw)
		}

		var resp jobicyResponse
		if err := j.getJSON(ctx, "https://jobicy.com/api/v2/remote-jobs", q, nil, &resp); err != nil {
			continue
		}

		var batch []model.Job
		for _, item := range resp.Jobs {
			if len(out)+len(batch) >= maxResults {
				break
			}
			searchable := item.JobTitle + " " + item.CompanyName + " " + item.JobDescription + " " + item.JobGeo + " " + item.JobType
			if !MatchesKeywords(searchable, keywords) {
				continue
			}
			sMin := htmlutil.SafeFloat(item.AnnualSalaryMin)
			sMax := htmlutil.SafeFloat(item.AnnualSalaryMax)
			if c.SalaryMin != nil && sMax != nil && *sMax < *c.SalaryMin {
				continue
			}
			currency := item.SalaryCurrency
			if currency == "" {
				currency = "USD"
			}
			batch = append(batch, model.New(model.Job{
				Title:          item.JobTitle,
				Company:        item.CompanyName,
				Location:       item.JobGeo,
				Description:    htmlutil.SanitiseHTML(item.JobDescription),
				URL:            item.URL,
				Source:         j.Name(),
				Remote:         model.RemoteYes,
				JobType:        item.JobType,
				SalaryMin:      sMin,
				SalaryMax:      sMax,
				SalaryCurrency: currency,
				DatePosted:     item.PubDate,
				Tags:           strings.Join(item.JobIndustry, ", "),
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
