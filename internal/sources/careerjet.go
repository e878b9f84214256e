package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// CareerJet is a free public API keyed by an affiliate ID, aggregating
// listings from many smaller boards.
type CareerJet struct {
	Base
	affiliateID string
}

func NewCareerJet(t Tuning, affiliateID string) *CareerJet {
	return &CareerJet{Base: NewBase(t), affiliateID: affiliateID}
}

func (cj *CareerJet) Name() string      { return "CareerJet" }
func (cj *CareerJet) IsAvailable() bool { return cj.affiliateID != "" }

type careerJetResponse struct {
	Hits []struct {
		Title       string `json:"title"`
		Company     string `json:"company"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Date        string `json:"date"`
	} `json:"hits"`
}

func (cj *CareerJet) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if !cj.IsAvailable() {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = cj.MaxResults()
	}
	const pageSize = 100
	maxPages := (maxResults + pageSize - 1) / pageSize
	if maxPages < 1 {
		maxPages = 1
	}

	var out []model.Job
	seen := map[string]bool{}
	for _, kw := range keywords {
		before := len(out)
		for page := 1; len(out)-before < maxResults && page <= maxPages; page++ {
			remaining := maxResults - (len(out) - before)
			q := url.Values{
				"locale_code": {"en_GB"},
				"keywords":    {kw},
				"affid":       {cj.affiliateID},
				"format":      {"json"},
				"pagesize":    {strconv.Itoa(minInt(pageSize, remaining))},
				"page":        {strconv.Itoa(page)},
			}
			if c.Location != "" {
				q.Set("location", c.Location)
			}

			var resp careerJetResponse
			if err := cj.getJSON(ctx, "http://public.api.careerjet.net/search", q, nil, &resp); err != nil {
				break
			}
			if len(resp.Hits) == 0 {
				break
			}

			var batch []model.Job
			for _, item := range resp.Hits {
				if len(out)+len(batch)-before >= maxResults {
					break
				}
				if item.URL != "" {
					if seen[item.URL] {
						continue
					}
					seen[item.URL] = true
				}
				searchable := item.Title + " " + item.Company + " " + item.Description
				if !MatchesKeywords(searchable, keywords) {
					continue
				}

				remote := model.RemoteUnknown
				if strings.Contains(strings.ToLower(item.Description), "remote") {
					remote = model.RemoteYes
				}

				batch = append(batch, model.New(model.Job{
					Title:       item.Title,
					Company:     item.Company,
					Description: htmlutil.SanitiseHTML(item.Description),
					URL:         item.URL,
					Source:      cj.Name(),
					Remote:      remote,
					DatePosted:  item.Date,
				}))
			}
			out = append(out, batch...)
			if c.OnBatch != nil && len(batch) > 0 {
				c.OnBatch(batch)
			}
		}
	}
	return out, nil
}
