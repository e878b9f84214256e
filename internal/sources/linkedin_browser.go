package sources

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	htmlmd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/DrJonoG/job-search/internal/model"
)

// linkedInBrowserFirstRunSettle is how long fetchJobsBrowser waits
// after the first page load before reading job cards, giving a human
// time to complete a login prompt the persistent profile doesn't
// already satisfy. Only the first page of each search waits; later
// pages of the same search skip this.
const linkedInBrowserFirstRunSettle = 25 * time.Second

// fetchJobsBrowser drives a real, persistent-profile Chromium instance
// over LinkedIn's authenticated job search UI, clicking each card to
// load its detail pane. This is a best-effort capability: it depends
// on a human having logged into the profile out-of-band at least once,
// and is not exercised by automated tests.
func (l *LinkedInDirect) fetchJobsBrowser(ctx context.Context, c Criteria) ([]model.Job, error) {
	keywords := NormalizeKeywords(c.Keywords)
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = l.MaxResults()
	}
	locations := l.locations
	if c.Location != "" {
		locations = []string{c.Location}
	}

	launchURL, err := launcher.New().UserDataDir(l.profileDir).Headless(true).NoSandbox(true).Launch()
	if err != nil {
		return nil, err
	}
	browser := rod.New().ControlURL(launchURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	defer func() { _ = browser.Close() }()

	var out []model.Job
	seen := map[string]bool{}
	settled := false
	for _, kw := range keywords {
		for _, loc := range locations {
			if len(out) >= maxResults {
				break
			}
			batch, err := l.scrapeBrowserPage(browser, kw, loc, c, maxResults-len(out), seen, !settled)
			settled = true
			if err != nil {
				continue
			}
			out = append(out, batch...)
			if c.OnBatch != nil && len(batch) > 0 {
				c.OnBatch(batch)
			}
			if err := l.Throttle(ctx); err != nil {
				return out, nil
			}
		}
	}
	return out, nil
}

func (l *LinkedInDirect) scrapeBrowserPage(browser *rod.Browser, keyword, location string, c Criteria, remaining int, seen map[string]bool, firstRun bool) ([]model.Job, error) {
	searchURL := "https://www.linkedin.com/jobs/search/?" + url.Values{
		"keywords": {keyword},
		"location": {location},
		"f_TPR":    {linkedInTPR(c.PostedInLastDays)},
	}.Encode()

	page, err := browser.Page(proto.TargetCreateTarget{URL: searchURL})
	if err != nil {
		return nil, err
	}
	defer func() { _ = page.Close() }()

	if err := page.WaitLoad(); err != nil {
		return nil, err
	}
	if firstRun {
		time.Sleep(linkedInBrowserFirstRunSettle)
	}

	listHTML, err := page.HTML()
	if err != nil {
		return nil, err
	}
	listDoc, err := goquery.NewDocumentFromReader(strings.NewReader(listHTML))
	if err != nil {
		return nil, err
	}

	var jobIDs []string
	listDoc.Find("a[href*='/jobs/view/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if len(jobIDs) >= remaining {
			return false
		}
		href, _ := a.Attr("href")
		if id := linkedInJobIDFromURL(href); id != "" {
			jobIDs = append(jobIDs, id)
		}
		return true
	})

	var out []model.Job
	for _, id := range jobIDs {
		jobURL := "https://www.linkedin.com/jobs/view/" + id + "/"
		if seen[jobURL] {
			continue
		}

		detailPage, err := browser.Page(proto.TargetCreateTarget{URL: jobURL})
		if err != nil {
			continue
		}
		if err := detailPage.WaitLoad(); err != nil {
			_ = detailPage.Close()
			continue
		}
		detailHTML, err := detailPage.HTML()
		_ = detailPage.Close()
		if err != nil {
			continue
		}

		job, ok := parseLinkedInDetailPane(detailHTML, jobURL, keyword, l.Name())
		if !ok {
			continue
		}
		seen[jobURL] = true
		out = append(out, model.New(job))
	}
	return out, nil
}

var linkedInJobIDRe = regexp.MustCompile(`/jobs/view/(\d+)`)

func linkedInJobIDFromURL(href string) string {
	m := linkedInJobIDRe.FindStringSubmatch(href)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}

func parseLinkedInDetailPane(pageHTML, jobURL, fallbackTitle, source string) (model.Job, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return model.Job{}, false
	}

	title := strings.TrimSpace(doc.Find(".job-details-jobs-unified-top-card__job-title, h1").First().Text())
	if title == "" {
		title = fallbackTitle
	}

	company := strings.TrimSpace(doc.Find(".job-details-jobs-unified-top-card__company-name, .jobs-unified-top-card__company-name").First().Text())
	if company == "" {
		company = "Unknown"
	}

	locAndDate := strings.TrimSpace(doc.Find(".job-details-jobs-unified-top-card__primary-description-container").First().Text())
	location, postedText := splitLinkedInLocationDate(locAndDate)

	remote := model.RemoteUnknown
	if linkedInRemoteRe.MatchString(location) || linkedInRemoteRe.MatchString(title) {
		remote = model.RemoteYes
	}

	descSel := doc.Find(".jobs-description__content, .jobs-box__html-content").First()
	descHTML, _ := descSel.Html()
	converter := htmlmd.NewConverter("", true, nil)
	description, _ := converter.ConvertString(descHTML)
	description = strings.TrimSpace(description)

	jobType, salaryMin, salaryMax, salaryCurrency := parseLinkedInBadges(doc)

	return model.Job{
		Title:          title,
		Company:        company,
		Location:       location,
		URL:            jobURL,
		Source:         source,
		Remote:         remote,
		JobType:        jobType,
		SalaryMin:      salaryMin,
		SalaryMax:      salaryMax,
		SalaryCurrency: salaryCurrency,
		Description:    description,
		DatePosted:     resolveRelativeDate(postedText),
	}, true
}

func splitLinkedInLocationDate(text string) (location, posted string) {
	parts := strings.Split(text, "·")
	if len(parts) == 0 {
		return "", ""
	}
	location = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if strings.Contains(p, "ago") {
			posted = p
			break
		}
	}
	return location, posted
}

var linkedInSalaryRe = regexp.MustCompile(`\$([\d,]+)(?:K|k)?\s*(?:/yr)?(?:\s*-\s*\$([\d,]+)(?:K|k)?)?`)

func parseLinkedInBadges(doc *goquery.Document) (jobType string, salaryMin, salaryMax *float64, currency string) {
	doc.Find(".job-details-preferences-and-skills__pill, .job-details-jobs-unified-top-card__job-insight").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		switch {
		case strings.Contains(strings.ToLower(text), "time"):
			if jobType == "" {
				jobType = text
			}
		case linkedInSalaryRe.MatchString(text):
			m := linkedInSalaryRe.FindStringSubmatch(text)
			currency = "USD"
			if v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil {
				if strings.Contains(text, "K") || strings.Contains(text, "k") {
					v *= 1000
				}
				salaryMin = &v
			}
			if len(m) > 2 && m[2] != "" {
				if v, err := strconv.ParseFloat(strings.ReplaceAll(m[2], ",", ""), 64); err == nil {
					if strings.Contains(text, "K") || strings.Contains(text, "k") {
						v *= 1000
					}
					salaryMax = &v
				}
			}
		}
	})
	return jobType, salaryMin, salaryMax, currency
}

var relativeDateRe = regexp.MustCompile(`(?i)(\d+)\s*(hour|day|week|month|year)s?\s+ago`)

// resolveRelativeDate turns LinkedIn's "3 hours ago" / "2 days ago" /
// "1 month ago" style posting text into a YYYY-MM-DD date. Months and
// years are approximated as 30 and 365 days respectively, matching the
// coarse precision the source text itself carries.
func resolveRelativeDate(text string) string {
	now := time.Now().UTC()
	m := relativeDateRe.FindStringSubmatch(text)
	if m == nil {
		return now.Format("2006-01-02")
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return now.Format("2006-01-02")
	}
	var delta time.Duration
	switch strings.ToLower(m[2]) {
	case "hour":
		delta = time.Duration(n) * time.Hour
	case "day":
		delta = time.Duration(n) * 24 * time.Hour
	case "week":
		delta = time.Duration(n) * 7 * 24 * time.Hour
	case "month":
		delta = time.Duration(n) * 30 * 24 * time.Hour
	case "year":
		delta = time.Duration(n) * 365 * 24 * time.Hour
	}
	return now.Add(-delta).Format("2006-01-02")
}
