package sources

import (
	"context"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// Workable queries the public widget API for a configured set of
// company account subdomains, no key required.
type Workable struct {
	Base
	boards []string
}

func NewWorkable(t Tuning, boards []string) *Workable {
	if len(boards) == 0 {
		boards = defaultBoardSeed.Workable
	}
	return &Workable{Base: NewBase(t), boards: boards}
}

func (w *Workable) Name() string      { return "Workable" }
func (w *Workable) IsAvailable() bool { return len(w.boards) > 0 }

type workableResponse struct {
	Jobs []workableJob `json:"jobs"`
}

type workableJob struct {
	Title      string `json:"title"`
	Department string `json:"department"`
	Location   struct {
		City      string `json:"city"`
		Region    string `json:"region"`
		Country   string `json:"country"`
		LocationStr string `json:"location_str"`
	} `json:"location"`
	Telecommuting  bool   `json:"telecommuting"`
	Shortcode      string `json:"shortcode"`
	URL            string `json:"url"`
	PublishedOn    string `json:"published_on"`
	CreatedAt      string `json:"created_at"`
	EmploymentType string `json:"employment_type"`
	Description    string `json:"description"`
}

func workableJobType(typeStr string) string {
	if typeStr == "" {
		return ""
	}
	tl := strings.ToLower(typeStr)
	switch {
	case strings.Contains(tl, "full"):
		return "Full-time"
	case strings.Contains(tl, "part"):
		return "Part-time"
	case strings.Contains(tl, "contract"), strings.Contains(tl, "freelance"), strings.Contains(tl, "temporary"):
		return "Contract"
	case strings.Contains(tl, "intern"):
		return "Internship"
	default:
		return typeStr
	}
}

func titleCaseBoard(board string) string {
	parts := strings.Split(strings.ReplaceAll(board, "-", " "), " ")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func (w *Workable) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = w.MaxResults()
	}

	var out []model.Job
	for _, board := range w.boards {
		if len(out) >= maxResults {
			break
		}
		var resp workableResponse
		apiURL := "https://apply.workable.com/api/v1/widget/accounts/" + board
		if err := w.getJSON(ctx, apiURL, nil, nil, &resp); err != nil {
			continue
		}

		var batch []model.Job
		for _, item := range resp.Jobs {
			if len(out)+len(batch) >= maxResults {
				break
			}
			var parts []string
			for _, v := range []string{item.Location.City, item.Location.Region, item.Location.Country} {
				if v != "" {
					parts = append(parts, v)
				}
			}
			locName := strings.Join(parts, ", ")
			if locName == "" {
				locName = item.Location.LocationStr
			}

			searchable := item.Title + " " + board + " " + locName + " " + item.Department
			if !MatchesKeywords(searchable, keywords) {
				continue
			}

			isRemote := item.Telecommuting || strings.Contains(strings.ToLower(locName), "remote")
			if c.Remote == model.RemoteYes && !isRemote {
				continue
			}
			if c.Remote == model.RemoteNo && isRemote {
				continue
			}

			jobURL := item.URL
			if jobURL == "" && item.Shortcode != "" {
				jobURL = "https://apply.workable.com/" + board + "/j/" + item.Shortcode + "/"
			}

			datePosted := item.PublishedOn
			if datePosted == "" {
				datePosted = item.CreatedAt
			}
			if idx := strings.Index(datePosted, "T"); idx != -1 {
				datePosted = datePosted[:idx]
			}

			remote := model.RemoteNo
			if isRemote {
				remote = model.RemoteYes
			}

			tags := item.Department
			if tags != "" {
				tags += ", " + board
			} else {
				tags = board
			}

			batch = append(batch, model.New(model.Job{
				Title:       item.Title,
				Company:     titleCaseBoard(board),
				Location:    locName,
				Description: htmlutil.SanitiseHTML(item.Description),
				URL:         jobURL,
				Source:      w.Name(),
				Remote:      remote,
				JobType:     workableJobType(item.EmploymentType),
				DatePosted:  datePosted,
				Tags:        tags,
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
