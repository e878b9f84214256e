package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// SerpAPI proxies Google Jobs, which itself aggregates Indeed,
// LinkedIn, Glassdoor, and thousands of smaller boards behind one API.
type SerpAPI struct {
	Base
	apiKey string
}

func NewSerpAPI(t Tuning, apiKey string) *SerpAPI {
	return &SerpAPI{Base: NewBase(t), apiKey: apiKey}
}

func (s *SerpAPI) Name() string      { return "Google Jobs" }
func (s *SerpAPI) IsAvailable() bool { return s.apiKey != "" }

type serpAPIResponse struct {
	JobsResults []struct {
		Title       string `json:"title"`
		CompanyName string `json:"company_name"`
		Location    string `json:"location"`
		Description string `json:"description"`
		ShareLink   string `json:"share_link"`
		Via         string `json:"via"`
		DetectedExtensions struct {
			PostedAt   string `json:"posted_at"`
			ScheduleType string `json:"schedule_type"`
			Salary     string `json:"salary"`
		} `json:"detected_extensions"`
		ApplyOptions []struct {
			Link string `json:"link"`
		} `json:"apply_options"`
	} `json:"jobs_results"`
}

func (s *SerpAPI) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if !s.IsAvailable() {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = s.MaxResults()
	}

	var out []model.Job
	for _, kw := range keywords {
		before := len(out)
		query := kw
		if c.Location != "" {
			query += " in " + c.Location
		}
		if c.Remote == model.RemoteYes {
			query += " remote"
		}

		var chips []string
		if c.Remote == model.RemoteYes {
			chips = append(chips, "city:Anywhere")
		}
		if c.JobType != "" {
			jt := strings.ToLower(c.JobType)
			switch {
			case strings.Contains(jt, "full"):
				chips = append(chips, "employment_type:FULLTIME")
			case strings.Contains(jt, "part"):
				chips = append(chips, "employment_type:PARTTIME")
			case strings.Contains(jt, "contract"):
				chips = append(chips, "employment_type:CONTRACTOR")
			case strings.Contains(jt, "intern"):
				chips = append(chips, "employment_type:INTERN")
			}
		}

		start := 0
		for len(out)-before < maxResults {
			remaining := maxResults - (len(out) - before)
			q := url.Values{
				"engine":  {"google_jobs"},
				"q":       {query},
				"api_key": {s.apiKey},
				"num":     {strconv.Itoa(minInt(10, remaining))},
			}
			if start > 0 {
				q.Set("start", strconv.Itoa(start))
			}
			if len(chips) > 0 {
				q.Set("chips", strings.Join(chips, ","))
			}

			var resp serpAPIResponse
			if err := s.getJSON(ctx, "https://serpapi.com/search.json", q, nil, &resp); err != nil {
				break
			}
			if len(resp.JobsResults) == 0 {
				break
			}

			var batch []model.Job
			for _, item := range resp.JobsResults {
				if len(out)+len(batch)-before >= maxResults {
					break
				}
				searchable := item.Title + " " + item.CompanyName + " " + item.Description
				if !MatchesKeywords(searchable, keywords) {
					continue
				}

				sMin, sMax := htmlutil.ParseSalaryRange(item.DetectedExtensions.Salary)
				if c.SalaryMin != nil && sMax != nil && *sMax < *c.SalaryMin {
					continue
				}

				link := item.ShareLink
				if link == "" && len(item.ApplyOptions) > 0 {
					link = item.ApplyOptions[0].Link
				}

				isRemote := strings.Contains(strings.ToLower(item.Location), "anywhere") ||
					strings.Contains(strings.ToLower(item.Location), "remote")
				remote := model.RemoteUnknown
				if isRemote {
					remote = model.RemoteYes
				}

				batch = append(batch, model.New(model.Job{
					Title:       item.Title,
					Company:     item.CompanyName,
					Location:    item.Location,
					Description: htmlutil.SanitiseHTML(item.Description),
					URL:         link,
					Source:      s.Name(),
					Remote:      remote,
					SalaryMin:   sMin,
					SalaryMax:   sMax,
					JobType:     item.DetectedExtensions.ScheduleType,
					DatePosted:  item.DetectedExtensions.PostedAt,
					Tags:        item.Via,
				}))
			}
			out = append(out, batch...)
			if c.OnBatch != nil && len(batch) > 0 {
				c.OnBatch(batch)
			}
			start += 10
		}
	}
	return out, nil
}
