package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/DrJonoG/job-search/internal/model"
)

// Ashby queries the public job-board posting API for a configured set
// of company board names, no key required.
type Ashby struct {
	Base
	boards []string
}

func NewAshby(t Tuning, boards []string) *Ashby {
	if len(boards) == 0 {
		boards = defaultBoardSeed.Ashby
	}
	return &Ashby{Base: NewBase(t), boards: boards}
}

func (a *Ashby) Name() string      { return "Ashby" }
func (a *Ashby) IsAvailable() bool { return len(a.boards) > 0 }

type ashbyResponse struct {
	Jobs []struct {
		Title          string `json:"title"`
		Department     string `json:"department"`
		Location       string `json:"location"`
		IsRemote       bool   `json:"isRemote"`
		EmploymentType string `json:"employmentType"`
		JobURL         string `json:"jobUrl"`
		CompensationTierSummary string `json:"compensationTierSummary"`
		PublishedAt    string `json:"publishedAt"`
	} `json:"jobs"`
}

func ashbyJobType(empType string) string {
	el := strings.ToLower(empType)
	switch {
	case strings.Contains(el, "full"):
		return "Full-time"
	case strings.Contains(el, "part"):
		return "Part-time"
	case strings.Contains(el, "contract"), strings.Contains(el, "freelance"):
		return "Contract"
	case strings.Contains(el, "intern"):
		return "Internship"
	default:
		return empType
	}
}

func (a *Ashby) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = a.MaxResults()
	}

	var out []model.Job
	for _, board := range a.boards {
		if len(out) >= maxResults {
			break
		}
		var resp ashbyResponse
		q := url.Values{"includeCompensation": {"true"}}
		apiURL := "https://api.ashbyhq.com/posting-api/job-board/" + board
		if err := a.getJSON(ctx, apiURL, q, nil, &resp); err != nil {
			continue
		}

		var batch []model.Job
		for _, item := range resp.Jobs {
			if len(out)+len(batch) >= maxResults {
				break
			}
			searchable := item.Title + " " + board + " " + item.Location + " " + item.Department
			if !MatchesKeywords(searchable, keywords) {
				continue
			}

			remote := model.RemoteUnknown
			if item.IsRemote {
				remote = model.RemoteYes
			}
			if c.Remote == model.RemoteYes && !item.IsRemote {
				continue
			}
			if c.Remote == model.RemoteNo && item.IsRemote {
				continue
			}

			batch = append(batch, model.New(model.Job{
				Title:      item.Title,
				Company:    board,
				Location:   item.Location,
				URL:        item.JobURL,
				Source:     a.Name(),
				Remote:     remote,
				JobType:    ashbyJobType(item.EmploymentType),
				DatePosted: item.PublishedAt,
				Tags:       item.Department,
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
