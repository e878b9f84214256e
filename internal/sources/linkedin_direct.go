package sources

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/DrJonoG/job-search/internal/model"
)

// LinkedInDirect scrapes LinkedIn's jobs-guest API, which returns
// plain HTML job cards without requiring a JavaScript-capable client,
// unlike the JS-rendered /jobs/search/ page.
type LinkedInDirect struct {
	Base
	locations   []string
	browserMode bool
	profileDir  string
}

// NewLinkedInDirect builds the adapter. When browserMode is true and
// profileDir is set, FetchJobs drives a persistent Chromium profile
// over the authenticated UI instead of the anonymous guest API; see
// fetchJobsBrowser for the caveats of that mode.
func NewLinkedInDirect(t Tuning, locations []string, browserMode bool, profileDir string) *LinkedInDirect {
	if len(locations) == 0 {
		locations = []string{"United States"}
	}
	return &LinkedInDirect{Base: NewBase(t), locations: locations, browserMode: browserMode && profileDir != "", profileDir: profileDir}
}

func (l *LinkedInDirect) Name() string      { return "LinkedIn (Direct)" }
func (l *LinkedInDirect) IsAvailable() bool { return true }

const linkedInGuestSearchURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"

var linkedInRemoteRe = regexp.MustCompile(`(?i)remote|wfh|work from home`)

func linkedInTPR(postedInLastDays int) string {
	switch {
	case postedInLastDays <= 0:
		return ""
	case postedInLastDays <= 1:
		return "r86400"
	case postedInLastDays <= 7:
		return "r604800"
	default:
		return "r2592000"
	}
}

const linkedInUserAgent = "Mozilla/5.0 (compatible; job-search/1.0)"

func (l *LinkedInDirect) FetchJobs(ctx context.Context, c Criteria) ([]model.Job, error) {
	if l.browserMode {
		return l.fetchJobsBrowser(ctx, c)
	}

	if !l.robotsAllowed(ctx, linkedInGuestSearchURL, linkedInUserAgent) {
		return nil, nil
	}

	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = l.MaxResults()
	}
	locations := l.locations
	if c.Location != "" {
		locations = []string{c.Location}
	}
	const pageSize = 25

	headers := map[string]string{
		"Accept-Language": "en-US,en;q=0.9",
	}

	var out []model.Job
	seen := map[string]bool{}
	for _, kw := range keywords {
		before := len(out)
		for _, loc := range locations {
			if len(out)-before >= maxResults {
				break
			}
			q := url.Values{"keywords": {kw}, "location": {loc}}
			if c.Remote == model.RemoteYes {
				q.Set("f_WT", "2")
			}
			if tpr := linkedInTPR(c.PostedInLastDays); tpr != "" {
				q.Set("f_TPR", tpr)
			}

			start := 0
			for page := 0; page < 10; page++ {
				if len(out)-before >= maxResults {
					break
				}
				q.Set("start", strconv.Itoa(start))

				body, err := l.getHTML(ctx, linkedInGuestSearchURL, q, headers)
				if err != nil {
					break
				}
				doc, err := goquery.NewDocumentFromReader(body)
				body.Close()
				if err != nil {
					break
				}

				cards := doc.Find("li, div.base-card")
				if cards.Length() == 0 {
					break
				}

				added := 0
				var batch []model.Job
				cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
					if len(out)+len(batch)-before >= maxResults {
						return false
					}
					job, ok := parseLinkedInCard(card, kw, l.Name())
					if !ok || seen[job.URL] {
						return true
					}
					seen[job.URL] = true
					if c.Remote == model.RemoteYes && job.Remote != model.RemoteYes {
						return true
					}
					batch = append(batch, model.New(job))
					added++
					return true
				})
				out = append(out, batch...)
				if c.OnBatch != nil && len(batch) > 0 {
					c.OnBatch(batch)
				}

				if added == 0 || cards.Length() < 20 {
					break
				}
				start += pageSize
				if err := l.Throttle(ctx); err != nil {
					return out, nil
				}
			}
		}
	}
	return out, nil
}

func parseLinkedInCard(card *goquery.Selection, fallbackTitle, source string) (model.Job, bool) {
	titleEl := card.Find(".job-card-list__title, .artdeco-entity-lockup__title, .base-search-card__title, h3.base-search-card__title").First()
	title := strings.TrimSpace(titleEl.Text())
	if title == "" {
		title = fallbackTitle
	}
	if n := len(title); n >= 2 && n%2 == 0 && title[:n/2] == title[n/2:] {
		title = title[:n/2]
	}

	linkEl := card.Find("a.base-card__full-link, a[href*='/jobs/view/']").First()
	href, _ := linkEl.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" || !strings.Contains(href, "/jobs/") || strings.Contains(href, "premium/products") {
		return model.Job{}, false
	}

	company := strings.TrimSpace(card.Find(".base-search-card__subtitle, h4.base-search-card__subtitle").First().Text())
	if company == "" {
		company = "Unknown"
	}
	loc := strings.TrimSpace(card.Find(".job-search-card__location").First().Text())

	isRemote := linkedInRemoteRe.MatchString(loc) || linkedInRemoteRe.MatchString(title)
	remote := model.RemoteNo
	if isRemote {
		remote = model.RemoteYes
	}

	datePosted := ""
	if dt, ok := card.Find("time").First().Attr("datetime"); ok && len(dt) >= 10 {
		datePosted = dt[:10]
	} else {
		datePosted = time.Now().UTC().Format("2006-01-02")
	}

	return model.Job{
		Title:      title,
		Company:    company,
		Location:   loc,
		URL:        href,
		Source:     source,
		Remote:     remote,
		DatePosted: datePosted,
	}, true
}
