package sources

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/DrJonoG/job-search/internal/model"
)

// GovUK scrapes the UK government's Find a Job board directly; DWP
// exposes no public API.
type GovUK struct {
	Base
}

func NewGovUK(t Tuning) *GovUK {
	return &GovUK{Base: NewBase(t)}
}

func (g *GovUK) Name() string      { return "GOV.UK Find a Job" }
func (g *GovUK) IsAvailable() bool { return true }

const govUKBaseURL = "https://findajob.dwp.gov.uk"
const govUKUserAgent = "job-search/1.0 (+https://github.com/DrJonoG/job-search)"

func (g *GovUK) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if !g.robotsAllowed(ctx, govUKBaseURL+"/search", govUKUserAgent) {
		return nil, nil
	}

	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = g.MaxResults()
	}

	var out []model.Job
	seen := map[string]bool{}
	for _, kw := range keywords {
		before := len(out)
		q := url.Values{"q": {kw}}
		if c.Location != "" {
			q.Set("loc", "86383")
		}

		body, err := g.getHTML(ctx, govUKBaseURL+"/search", q, nil)
		if err != nil {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(body)
		body.Close()
		if err != nil {
			continue
		}

		doc.Find("article, [class*='SearchResult'], [class*='job-card'], .govuk-summary-card").EachWithBreak(func(_ int, block *goquery.Selection) bool {
			if len(out)-before >= maxResults {
				return false
			}
			link := block.Find("a[href*='/job/']").First()
			href, ok := link.Attr("href")
			if !ok || href == "" {
				return true
			}
			if strings.HasPrefix(href, "/") {
				href = govUKBaseURL + href
			}
			if seen[href] {
				return true
			}
			seen[href] = true

			title := strings.TrimSpace(link.Text())
			title = strings.ReplaceAll(title, "Save ", "")
			title = strings.ReplaceAll(title, " job to favourites", "")
			if title == "" {
				title = strings.TrimSpace(block.Find("h2, h3, .govuk-heading-s").First().Text())
			}
			if title == "" {
				title = "Job"
			}

			var locText, company string
			block.Find("dt, [class*='location'], [class*='employer']").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
				label := strings.ToLower(strings.TrimSpace(dt.Text()))
				val := strings.TrimSpace(dt.Next().Text())
				if strings.Contains(label, "location") || strings.Contains(label, "where") {
					locText = val
				}
				if strings.Contains(label, "employer") || strings.Contains(label, "company") || strings.Contains(label, "organisation") {
					company = val
				}
				return true
			})

			searchable := title + " " + company + " " + locText
			if !MatchesKeywords(searchable, keywords) {
				return true
			}

			out = append(out, model.New(model.Job{
				Title:    title,
				Company:  company,
				Location: locText,
				URL:      href,
				Source:   g.Name(),
				Remote:   model.RemoteUnknown,
				Tags:     "UK, government",
			}))
			return true
		})

		if c.OnBatch != nil && len(out)-before > 0 {
			c.OnBatch(out[before:])
		}
	}
	return out, nil
}
