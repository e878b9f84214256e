package sources

import (
	"context"
	"strings"

	"github.com/DrJonoG/job-search/internal/model"
)

// Lever queries the public postings API for a configured set of
// company board slugs, no key required. When no board tokens are
// configured via LEVER_BOARD_TOKENS, it falls back to the seeded
// default list (see boardseed.yaml).
type Lever struct {
	Base
	boards []string
}

func NewLever(t Tuning, boards []string) *Lever {
	if len(boards) == 0 {
		boards = defaultBoardSeed.Lever
	}
	return &Lever{Base: NewBase(t), boards: boards}
}

func (l *Lever) Name() string      { return "Lever" }
func (l *Lever) IsAvailable() bool { return len(l.boards) > 0 }

type leverPosting struct {
	Text       string `json:"text"`
	Categories struct {
		Location       string   `json:"location"`
		AllLocations   []string `json:"allLocations"`
		Team           string   `json:"team"`
		Department     string   `json:"department"`
		Commitment     string   `json:"commitment"`
	} `json:"categories"`
	WorkplaceType string `json:"workplaceType"`
	SalaryRange   struct {
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		Currency string  `json:"currency"`
	} `json:"salaryRange"`
	HostedURL string `json:"hostedUrl"`
	CreatedAt int64  `json:"createdAt"`
}

func leverJobType(commitment string) string {
	cl := strings.ToLower(commitment)
	switch {
	case strings.Contains(cl, "full"):
		return "Full-time"
	case strings.Contains(cl, "part"):
		return "Part-time"
	case strings.Contains(cl, "contract"), strings.Contains(cl, "freelance"):
		return "Contract"
	case strings.Contains(cl, "intern"):
		return "Internship"
	default:
		return commitment
	}
}

func leverRemote(workplaceType, locName string) string {
	switch workplaceType {
	case "remote":
		return model.RemoteYes
	case "hybrid":
		return model.RemoteHybrid
	case "on-site":
		return model.RemoteNo
	}
	if strings.Contains(strings.ToLower(locName), "remote") {
		return model.RemoteYes
	}
	return model.RemoteUnknown
}

func (l *Lever) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = l.MaxResults()
	}

	var out []model.Job
	for _, board := range l.boards {
		if len(out) >= maxResults {
			break
		}
		var postings []leverPosting
		url := "https://api.lever.co/v0/postings/" + board + "?mode=json"
		if err := l.getJSON(ctx, url, nil, nil, &postings); err != nil {
			continue
		}

		var batch []model.Job
		for _, item := range postings {
			if len(out)+len(batch) >= maxResults {
				break
			}
			locName := item.Categories.Location
			if locName == "" && len(item.Categories.AllLocations) > 0 {
				locName = strings.Join(item.Categories.AllLocations, ", ")
			}

			searchable := item.Text + " " + board + " " + locName + " " + item.Categories.Team + " " + item.Categories.Department
			if !MatchesKeywords(searchable, keywords) {
				continue
			}

			remote := leverRemote(item.WorkplaceType, locName)
			if c.Remote == model.RemoteNo && remote == model.RemoteYes {
				continue
			}
			if c.Remote == model.RemoteYes && remote != model.RemoteYes && remote != model.RemoteUnknown {
				continue
			}

			var sMin, sMax *float64
			if item.SalaryRange.Max > 0 {
				min, max := item.SalaryRange.Min, item.SalaryRange.Max
				sMin, sMax = &min, &max
			}
			if c.SalaryMin != nil && sMax != nil && *sMax < *c.SalaryMin {
				continue
			}

			batch = append(batch, model.New(model.Job{
				Title:          item.Text,
				Company:        board,
				Location:       locName,
				URL:            item.HostedURL,
				Source:         l.Name(),
				Remote:         remote,
				JobType:        leverJobType(item.Categories.Commitment),
				SalaryMin:      sMin,
				SalaryMax:      sMax,
				SalaryCurrency: item.SalaryRange.Currency,
				Tags:           item.Categories.Team,
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
