package sources

import (
	"context"
	"strings"

	"github.com/DrJonoG/job-search/internal/htmlutil"
	"github.com/DrJonoG/job-search/internal/model"
)

// WeWorkRemotely reads one or more category RSS feeds, selected by
// matching the search keywords against a fixed trigger-word table so
// a broad search doesn't always have to crawl every category.
type WeWorkRemotely struct {
	Base
}

func NewWeWorkRemotely(t Tuning) *WeWorkRemotely {
	return &WeWorkRemotely{Base: NewBase(t)}
}

func (w *WeWorkRemotely) Name() string      { return "WeWorkRemotely" }
func (w *WeWorkRemotely) IsAvailable() bool { return true }

var wwrFeeds = map[string]string{
	"programming":       "https://weworkremotely.com/categories/remote-programming-jobs.rss",
	"design":            "https://weworkremotely.com/categories/remote-design-jobs.rss",
	"devops":            "https://weworkremotely.com/categories/remote-devops-sysadmin-jobs.rss",
	"management":        "https://weworkremotely.com/categories/remote-management-and-finance-jobs.rss",
	"customer_support":  "https://weworkremotely.com/categories/remote-customer-support-jobs.rss",
	"sales_marketing":   "https://weworkremotely.com/categories/remote-sales-and-marketing-jobs.rss",
	"all_others":        "https://weworkremotely.com/categories/remote-jobs.rss",
}

var wwrTriggers = map[string][]string{
	"programming":      {"developer", "engineer", "software", "python", "java", "react", "backend", "frontend", "full stack", "web dev", "mobile"},
	"design":           {"design", "ux", "ui", "graphic", "creative"},
	"devops":           {"devops", "sysadmin", "infrastructure", "cloud", "aws", "azure", "kubernetes"},
	"management":       {"manager", "management", "finance", "accounting", "project"},
	"customer_support": {"customer", "support", "service"},
	"sales_marketing":  {"sales", "marketing", "growth", "seo", "content"},
}

func (w *WeWorkRemotely) selectFeeds(keywords []string) map[string]string {
	if len(keywords) == 0 {
		return wwrFeeds
	}
	combined := strings.ToLower(strings.Join(keywords, " "))
	selected := map[string]string{}
	for feedKey, triggers := range wwrTriggers {
		for _, trig := range triggers {
			if strings.Contains(combined, trig) {
				selected[feedKey] = wwrFeeds[feedKey]
				break
			}
		}
	}
	if len(selected) == 0 {
		selected["programming"] = wwrFeeds["programming"]
	}
	selected["all_others"] = wwrFeeds["all_others"]
	return selected
}

func (w *WeWorkRemotely) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if c.Remote == model.RemoteNo {
		return nil, nil
	}
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = w.MaxResults()
	}

	var out []model.Job
	for feedName, feedURL := range w.selectFeeds(keywords) {
		if len(out) >= maxResults {
			break
		}
		items, err := w.fetchRSS(ctx, feedURL)
		if err != nil {
			continue
		}

		var batch []model.Job
		for _, entry := range items {
			if len(out)+len(batch) >= maxResults {
				break
			}
			title := entry.Title
			company := ""
			cleanTitle := title
			if idx := strings.Index(title, ":"); idx != -1 {
				company = strings.TrimSpace(title[:idx])
				cleanTitle = strings.TrimSpace(title[idx+1:])
			}

			searchable := title + " " + entry.Description + " " + feedName
			if !MatchesKeywords(searchable, keywords) {
				continue
			}

			batch = append(batch, model.New(model.Job{
				Title:       cleanTitle,
				Company:     company,
				Location:    "Remote",
				Description: htmlutil.SanitiseHTML(entry.Description),
				URL:         entry.Link,
				Source:      w.Name(),
				Remote:      model.RemoteYes,
				JobType:     "Full-time",
				DatePosted:  entry.PubDate,
				Tags:        feedName,
			}))
		}
		out = append(out, batch...)
		if c.OnBatch != nil && len(batch) > 0 {
			c.OnBatch(batch)
		}
	}
	return out, nil
}
