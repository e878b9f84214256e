package sources

import (
	"context"
	"strings"

	"github.com/DrJonoG/job-search/internal/model"
)

// Greenhouse queries the public job-board API for a configured set of
// company board tokens, no key required. Descriptions are not
// fetched from the listing endpoint; the per-job detail endpoint
// would cost one extra round trip per posting and is skipped to keep
// a full board sweep affordable.
type Greenhouse struct {
	Base
	boards []string
}

func NewGreenhouse(t Tuning, boards []string) *Greenhouse {
	if len(boards) == 0 {
		boards = defaultBoardSeed.Greenhouse
	}
	return &Greenhouse{Base: NewBase(t), boards: boards}
}

func (g *Greenhouse) Name() string      { return "Greenhouse" }
func (g *Greenhouse) IsAvailable() bool { return len(g.boards) > 0 }

type greenhouseResponse struct {
	Jobs []struct {
		Title          string `json:"title"`
		CompanyName    string `json:"company_name"`
		AbsoluteURL    string `json:"absolute_url"`
		Location       struct {
			Name string `json:"name"`
		} `json:"location"`
		FirstPublished string `json:"first_published"`
	} `json:"jobs"`
}

func (g *Greenhouse) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = g.MaxResults()
	}

	var out []model.Job
	for _, board := range g.boards {
		if len(out) >= maxResults {
			break
		}
		var resp greenhouseResponse
		apiURL := "https://boards-api.greenhouse.io/v1/boards/" + board + "/jobs"
		if err := g.getJSON(ctx, apiURL, nil, nil, &resp); err != nil {
			continue
		}

		var batch []model.Job
		for _, item := range resp.Jobs {
			if len(out)+len(batch) >= maxResults {
				break
			}
			company := item.CompanyName
			if company == "" {
				company = titleCaseBoard(board)
			}

			searchable := item.Title + " " + company + " " + item.Location.Name
			if !MatchesKeywords(searchable, keywords) {
				continue
			}

			isRemote := strings.Contains(strings.ToLower(item.Location.Name), "remote")
			if c.Remote == model.RemoteNo && isRemote {
				continue
			}
			if c.Remote == model.RemoteYes && !isRemote {
				continue
			}

			remote := model.RemoteNo
			if isRemote {
				remote = model.RemoteYes
			}
			posted := item.FirstPublished
			if len(posted) >= 10 {
				posted = posted[:10]
			}

			batch = append(batch, model.New(model.Job{
				Title:      item.Title,
				Company:    company,
				Location:   item.Location.Name,
				URL:        item.AbsoluteURL,
				Source:     g.Name(),
				Remote:     remote,
				DatePosted: posted,
				Tags:       board,
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
