package sources

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsCache fetches and memoises robots.txt per host so the
// HTML-scraping adapters (GovUK, LinkedInDirect) only fetch it once
// per process lifetime rather than once per search.
type robotsCache struct {
	mu   sync.Mutex
	data map[string]*robotstxt.RobotsData
}

var sharedRobotsCache = &robotsCache{data: make(map[string]*robotstxt.RobotsData)}

// robotsAllowed reports whether userAgent may fetch rawURL per the
// host's robots.txt. A robots.txt that cannot be fetched or parsed is
// treated as permissive — adapters degrade gracefully rather than
// refusing to run because a site has no robots.txt at all.
func (b *Base) robotsAllowed(ctx context.Context, rawURL, userAgent string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	robots := sharedRobotsCache.get(ctx, b.Client(), u, userAgent)
	if robots == nil {
		return true
	}
	group := robots.FindGroup(userAgent)
	if group == nil {
		return true
	}
	return group.Test(u.Path)
}

func (rc *robotsCache) get(ctx context.Context, client *http.Client, base *url.URL, userAgent string) *robotstxt.RobotsData {
	host := base.Scheme + "://" + base.Host

	rc.mu.Lock()
	if data, ok := rc.data[host]; ok {
		rc.mu.Unlock()
		return data
	}
	rc.mu.Unlock()

	data := fetchRobots(ctx, client, host, userAgent)

	rc.mu.Lock()
	rc.data[host] = data
	rc.mu.Unlock()
	return data
}

// fetchRobots fetches and parses robots.txt for the given host. A nil
// return (network error, non-200, unparseable body) is treated by the
// caller as "no restrictions known".
func fetchRobots(ctx context.Context, client *http.Client, host, userAgent string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return data
}
