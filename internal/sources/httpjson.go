package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// getJSON performs a rate-limited, context-bound GET request and
// decodes the JSON body into out. Non-2xx responses are returned as
// an error carrying the status code so adapters can log and move on
// to the next source instead of failing the whole search.
func (b *Base) getJSON(ctx context.Context, rawURL string, query url.Values, headers map[string]string, out any) error {
	if err := b.Throttle(ctx); err != nil {
		return err
	}

	if query != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return err
		}
		u.RawQuery = query.Encode()
		rawURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "job-search/1.0 (+https://github.com/DrJonoG/job-search)")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s: unexpected status %d: %s", rawURL, resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// postJSON performs a rate-limited, context-bound POST with a JSON
// body and decodes the JSON response into out. Used by adapters whose
// API accepts search parameters as a request body (Jooble) rather
// than query-string arguments.
func (b *Base) postJSON(ctx context.Context, rawURL string, body any, out any) error {
	if err := b.Throttle(ctx); err != nil {
		return err
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "job-search/1.0 (+https://github.com/DrJonoG/job-search)")

	resp, err := b.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%s: unexpected status %d: %s", rawURL, resp.StatusCode, string(respBody))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// getHTML performs a rate-limited GET and returns the raw response
// body, for adapters that scrape rendered HTML (goquery) rather than
// consuming a JSON API.
func (b *Base) getHTML(ctx context.Context, rawURL string, query url.Values, headers map[string]string) (io.ReadCloser, error) {
	if err := b.Throttle(ctx); err != nil {
		return nil, err
	}

	if query != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, err
		}
		u.RawQuery = query.Encode()
		rawURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; job-search/1.0)")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.Client().Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: unexpected status %d", rawURL, resp.StatusCode)
	}
	return resp.Body, nil
}
