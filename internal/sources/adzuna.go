package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// Adzuna requires a free app_id/app_key pair. Default country is the
// operator-configured set from AdapterTuning.Countries, falling back
// to "gb" if none is configured.
type Adzuna struct {
	Base
	appID, appKey string
	countries     []string
}

func NewAdzuna(t Tuning, appID, appKey string, countries []string) *Adzuna {
	if len(countries) == 0 {
		countries = []string{"gb"}
	}
	return &Adzuna{Base: NewBase(t), appID: appID, appKey: appKey, countries: countries}
}

func (a *Adzuna) Name() string      { return "Adzuna" }
func (a *Adzuna) IsAvailable() bool { return a.appID != "" && a.appKey != "" }

type adzunaResponse struct {
	Results []struct {
		RedirectURL string `json:"redirect_url"`
		Title       string `json:"title"`
		Company     struct {
			DisplayName string `json:"display_name"`
		} `json:"company"`
		Location struct {
			Area        []string `json:"area"`
			DisplayName string   `json:"display_name"`
		} `json:"location"`
		Description  string `json:"description"`
		SalaryMin    float64 `json:"salary_min"`
		SalaryMax    float64 `json:"salary_max"`
		Category     struct {
			Label string `json:"label"`
		} `json:"category"`
		ContractTime string `json:"contract_time"`
		Created      string `json:"created"`
	} `json:"results"`
}

func (a *Adzuna) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if !a.IsAvailable() {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = a.MaxResults()
	}
	const resultsPerPage = 50
	maxPages := maxResults / resultsPerPage
	if maxPages < 1 {
		maxPages = 1
	}

	seen := map[string]bool{}
	var out []model.Job
	for _, country := range a.countries {
		for _, kw := range keywords {
			before := len(out)
			for page := 1; page <= maxPages; page++ {
				if len(out)-before >= maxResults {
					break
				}
				q := url.Values{
					"app_id":            {a.appID},
					"app_key":           {a.appKey},
					"what":              {kw},
					"results_per_page":  {strconv.Itoa(resultsPerPage)},
					"content-type":      {"application/json"},
				}
				if c.Location != "" {
					q.Set("where", c.Location)
				}
				if c.SalaryMin != nil {
					q.Set("salary_min", strconv.Itoa(int(*c.SalaryMin)))
				}

				apiURL := fmt.Sprintf("https://api.adzuna.com/v1/api/jobs/%s/search/%d", country, page)
				var resp adzunaResponse
				if err := a.getJSON(ctx, apiURL, q, nil, &resp); err != nil {
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
					if item.RedirectURL != "" && seen[item.RedirectURL] {
						continue
					}
					if item.RedirectURL != "" {
						seen[item.RedirectURL] = true
					}

					locDisplay := strings.Join(item.Location.Area, ", ")
					if locDisplay == "" {
						locDisplay = item.Location.DisplayName
					}

					lower := strings.ToLower(item.Title + " " + item.Description)
					isRemote := strings.Contains(lower, "remote")
					if c.Remote == model.RemoteYes && !isRemote {
						continue
					}
					if c.Remote == model.RemoteNo && isRemote {
						continue
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

					currency := "USD"
					if country == "gb" {
						currency = "GBP"
					}

					jt := titleWords(strings.ReplaceAll(item.ContractTime, "_", " "))

					remote := model.RemoteNo
					if isRemote {
						remote = model.RemoteYes
					}

					batch = append(batch, model.New(model.Job{
						Title:          htmlutil.StripHTML(item.Title),
						Company:        item.Company.DisplayName,
						Location:       locDisplay,
						Description:    htmlutil.SanitiseHTML(item.Description),
						URL:            item.RedirectURL,
						Source:         a.Name(),
						Remote:         remote,
						SalaryMin:      sMin,
						SalaryMax:      sMax,
						SalaryCurrency: currency,
						JobType:        jt,
						DatePosted:     item.Created,
						Tags:           item.Category.Label,
					}))
				}
				out = append(out, batch...)
				if c.OnBatch != nil && len(batch) > 0 {
					c.OnBatch(batch)
				}
			}
		}
	}
	return out, nil
}
