package sources

import (
	"context"
	"encoding/base64"
	"net/url"
	"strconv"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// Reed requires a free API key sent as HTTP Basic Auth username with
// an empty password.
type Reed struct {
	Base
	apiKey string
}

func NewReed(t Tuning, apiKey string) *Reed {
	return &Reed{Base: NewBase(t), apiKey: apiKey}
}

func (r *Reed) Name() string      { return "Reed" }
func (r *Reed) IsAvailable() bool { return r.apiKey != "" }

type reedResponse struct {
	Results []struct {
		JobTitle          string  `json:"jobTitle"`
		EmployerName      string  `json:"employerName"`
		LocationName      string  `json:"locationName"`
		JobDescription    string  `json:"jobDescription"`
		JobURL            string  `json:"jobUrl"`
		MinimumSalary     float64 `json:"minimumSalary"`
		MaximumSalary     float64 `json:"maximumSalary"`
		Date              string  `json:"date"`
		FullTime          bool    `json:"fullTime"`
		PartTime          bool    `json:"partTime"`
		Contractor        bool    `json:"contractType"`
	} `json:"results"`
}

func (r *Reed) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if !r.IsAvailable() {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = r.MaxResults()
	}
	const perRequest = 100
	headers := map[string]string{
		"Authorization": "Basic " + base64.StdEncoding.EncodeToString([]byte(r.apiKey+":")),
	}

	var out []model.Job
	for _, kw := range keywords {
		before := len(out)
		skip := 0
		for len(out)-before < maxResults {
			remaining := maxResults - (len(out) - before)
			q := url.Values{
				"keywords":       {kw},
				"resultsToTake":  {strconv.Itoa(minInt(perRequest, remaining))},
				"resultsToSkip":  {strconv.Itoa(skip)},
			}
			if c.Location != "" {
				q.Set("locationName", c.Location)
			}
			if c.SalaryMin != nil {
				q.Set("minimumSalary", strconv.Itoa(int(*c.SalaryMin)))
			}
			if c.JobType != "" {
				jt := strings.ToLower(c.JobType)
				switch {
				case strings.Contains(jt, "full"):
					q.Set("fullTime", "true")
				case strings.Contains(jt, "part"):
					q.Set("partTime", "true")
				case strings.Contains(jt, "contract"):
					q.Set("contract", "true")
				}
			}

			var resp reedResponse
			if err := r.getJSON(ctx, "https://www.reed.co.uk/api/1.0/search", q, headers, &resp); err != nil {
				break
			}
			if len(resp.Results) == 0 {
				break
			}

			var batch []model.Job
			for _, item := range resp.Results {
				if len(out)+len(batch)-before >= maxResults {
					break
				}
				searchable := item.JobTitle + " " + item.EmployerName + " " + item.JobDescription
				if !MatchesKeywords(searchable, keywords) {
					continue
				}

				var sMin, sMax *float64
				if item.MinimumSalary > 0 {
					v := item.MinimumSalary
					sMin = &v
				}
				if item.MaximumSalary > 0 {
					v := item.MaximumSalary
					sMax = &v
				}
				if c.SalaryMin != nil && sMax != nil && *sMax < *c.SalaryMin {
					continue
				}

				jt := "Full-time"
				if item.PartTime {
					jt = "Part-time"
				}
				if item.Contractor {
					jt = "Contract"
				}

				batch = append(batch, model.New(model.Job{
					Title:          item.JobTitle,
					Company:        item.EmployerName,
					Location:       item.LocationName,
					Description:    htmlutil.SanitiseHTML(item.JobDescription),
					URL:            item.JobURL,
					Source:         r.Name(),
					Remote:         model.RemoteUnknown,
					SalaryMin:      sMin,
					SalaryMax:      sMax,
					SalaryCurrency: "GBP",
					JobType:        jt,
					DatePosted:     item.Date,
				}))
			}
			out = append(out, batch...)
			if c.OnBatch != nil && len(batch) > 0 {
				c.OnBatch(batch)
			}
			if len(resp.Results) < perRequest {
				break
			}
			skip += perRequest
		}
	}
	return out, nil
}
