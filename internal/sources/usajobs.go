package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// USAJobs requires a registered API key plus the requesting email
// address, both sent as headers rather than query parameters.
type USAJobs struct {
	Base
	apiKey string
	email  string
}

func NewUSAJobs(t Tuning, apiKey, email string) *USAJobs {
	return &USAJobs{Base: NewBase(t), apiKey: apiKey, email: email}
}

func (u *USAJobs) Name() string      { return "USAJobs" }
func (u *USAJobs) IsAvailable() bool { return u.apiKey != "" && u.email != "" }

type usaJobsResponse struct {
	SearchResult struct {
		SearchResultItems []struct {
			MatchedObjectDescriptor struct {
				PositionTitle    string `json:"PositionTitle"`
				OrganizationName string `json:"OrganizationName"`
				PositionURI      string `json:"PositionURI"`
				QualificationSummary string `json:"QualificationSummary"`
				PositionLocationDisplay string `json:"PositionLocationDisplay"`
				PositionStartDate string `json:"PositionStartDate"`
				PositionRemuneration []struct {
					MinimumRange string `json:"MinimumRange"`
					MaximumRange string `json:"MaximumRange"`
				} `json:"PositionRemuneration"`
				PositionSchedule []struct {
					Name string `json:"Name"`
				} `json:"PositionSchedule"`
			} `json:"MatchedObjectDescriptor"`
		} `json:"SearchResultItems"`
	} `json:"SearchResult"`
}

func (u *USAJobs) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if !u.IsAvailable() {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = u.MaxResults()
	}
	headers := map[string]string{
		"Authorization-Key": u.apiKey,
		"User-Agent":        u.email,
		"Host":              "data.usajobs.gov",
	}

	var out []model.Job
	for _, kw := range keywords {
		if len(out) >= maxResults {
			break
		}
		q := url.Values{
			"Keyword":      {kw},
			"ResultsPerPage": {strconv.Itoa(minInt(250, maxResults-len(out)))},
		}
		if c.Location != "" {
			q.Set("LocationName", c.Location)
		}

		var resp usaJobsResponse
		if err := u.getJSON(ctx, "https://data.usajobs.gov/api/search", q, headers, &resp); err != nil {
			continue
		}

		var batch []model.Job
		for _, item := range resp.SearchResult.SearchResultItems {
			if len(out)+len(batch) >= maxResults {
				break
			}
			d := item.MatchedObjectDescriptor
			searchable := d.PositionTitle + " " + d.OrganizationName + " " + d.QualificationSummary
			if !MatchesKeywords(searchable, keywords) {
				continue
			}

			var sMin, sMax *float64
			if len(d.PositionRemuneration) > 0 {
				sMin = htmlutil.SafeFloat(d.PositionRemuneration[0].MinimumRange)
				sMax = htmlutil.SafeFloat(d.PositionRemuneration[0].MaximumRange)
			}
			if c.SalaryMin != nil && sMax != nil && *sMax < *c.SalaryMin {
				continue
			}

			jobType := ""
			if len(d.PositionSchedule) > 0 {
				jobType = d.PositionSchedule[0].Name
			}

			isRemote := strings.Contains(strings.ToLower(d.PositionLocationDisplay), "remote") ||
				strings.Contains(strings.ToLower(d.PositionLocationDisplay), "nationwide")
			remote := model.RemoteNo
			if isRemote {
				remote = model.RemoteYes
			}
			if c.Remote == model.RemoteYes && !isRemote {
				continue
			}

			batch = append(batch, model.New(model.Job{
				Title:          d.PositionTitle,
				Company:        d.OrganizationName,
				Location:       d.PositionLocationDisplay,
				Description:    htmlutil.SanitiseHTML(d.QualificationSummary),
				URL:            d.PositionURI,
				Source:         u.Name(),
				Remote:         remote,
				SalaryMin:      sMin,
				SalaryMax:      sMax,
				SalaryCurrency: "USD",
				JobType:        jobType,
				DatePosted:     d.PositionStartDate,
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
