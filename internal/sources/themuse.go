package sources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// TheMuse is a free, keyless public API. Keyword filtering happens
// client-side; the API itself only filters by level and location.
type TheMuse struct {
	Base
}

func NewTheMuse(t Tuning) *TheMuse {
	return &TheMuse{Base: NewBase(t)}
}

func (m *TheMuse) Name() string      { return "The Muse" }
func (m *TheMuse) IsAvailable() bool { return true }

var museLevels = map[string]string{
	"entry": "Entry Level", "mid": "Mid Level", "senior": "Senior Level",
	"lead": "Senior Level", "executive": "Senior Level",
}

type museResponse struct {
	Results []struct {
		Name    string `json:"name"`
		Company struct {
			Name string `json:"name"`
		} `json:"company"`
		Locations []struct {
			Name string `json:"name"`
		} `json:"locations"`
		Contents   string `json:"contents"`
		Refs       struct {
			LandingPage string `json:"landing_page"`
		} `json:"refs"`
		PublicationDate string   `json:"publication_date"`
		Levels          []struct {
			Name string `json:"name"`
		} `json:"levels"`
	} `json:"results"`
}

func (m *TheMuse) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = m.MaxResults()
	}

	q := url.Values{}
	if lvl, ok := museLevels[strings.ToLower(c.ExperienceLevel)]; ok {
		q.Set("level", lvl)
	}
	if c.Location != "" {
		q.Set("location", c.Location)
	}

	var out []model.Job
	for page := 0; page < 5 && len(out) < maxResults; page++ {
		q.Set("page", strconv.Itoa(page))
		var resp museResponse
		if err := m.getJSON(ctx, "https://www.themuse.com/api/public/jobs", q, nil, &resp); err != nil {
			break
		}
		if len(resp.Results) == 0 {
			break
		}

		var batch []model.Job
		for _, item := range resp.Results {
			if len(out)+len(batch) >= maxResults {
				break
			}
			var locNames []string
			for _, l := range item.Locations {
				locNames = append(locNames, l.Name)
			}
			locationStr := strings.Join(locNames, "; ")
			isRemote := strings.Contains(strings.ToLower(locationStr), "flexible") ||
				strings.Contains(strings.ToLower(locationStr), "remote")
			if c.Remote == model.RemoteYes && !isRemote {
				continue
			}
			if c.Remote == model.RemoteNo && isRemote {
				continue
			}

			searchable := item.Name + " " + item.Company.Name + " " + item.Contents
			if !MatchesKeywords(searchable, keywords) {
				continue
			}

			remote := model.RemoteUnknown
			if isRemote {
				remote = model.RemoteYes
			}
			level := ""
			if len(item.Levels) > 0 {
				level = item.Levels[0].Name
			}

			batch = append(batch, model.New(model.Job{
				Title:           item.Name,
				Company:         item.Company.Name,
				Location:        locationStr,
				Description:     htmlutil.SanitiseHTML(item.Contents),
				URL:             item.Refs.LandingPage,
				Source:          m.Name(),
				Remote:          remote,
				ExperienceLevel: level,
				DatePosted:      item.PublicationDate,
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
