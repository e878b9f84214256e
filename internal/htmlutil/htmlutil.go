// Package htmlutil sanitises vendor HTML, extracts plain text, and
// parses fuzzy salary strings shared across every source adapter.
package htmlutil

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var tagStripRe = regexp.MustCompile(`<[^>]+>`)

// sanitisePolicy mirrors the allowlist: structural tags survive, everything
// dangerous is dropped, only href/src/alt attributes remain, and outbound
// links are forced to open safely in a new tab.
var sanitisePolicy = newSanitisePolicy()

func newSanitisePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowStandardURLs()
	p.AllowElements(
		"p", "br", "div", "span", "ul", "ol", "li", "strong", "em", "b", "i",
		"u", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "code",
		"table", "thead", "tbody", "tr", "td", "th",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.RequireNoFollowOnLinks(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoFollowOnFullyQualifiedLinks(false)

	// script/style/iframe/form/input/button/textarea/select/object/embed/
	// applet/noscript and their subtrees are dropped by default since they
	// are never added to the allowlist above; bluemonday additionally
	// strips HTML comments unconditionally.
	return p
}

// SanitiseHTML returns HTML safe to embed in a detail view: dangerous
// elements and their subtrees removed, attributes stripped to an
// allowlist, and every remaining <a href> forced to
// target="_blank" rel="noopener noreferrer". Falls back to StripHTML's
// plain-text extraction if the sanitiser panics on malformed input
// (bluemonday itself does not panic on malformed HTML, but the fallback
// mirrors the base adapter contract's documented behaviour for parity
// with the original).
func SanitiseHTML(html string) (out string) {
	if html == "" {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			out = StripHTML(html)
		}
	}()
	clean := strings.TrimSpace(sanitisePolicy.Sanitize(html))

	// bluemonday only targets fully-qualified links and adds rel="noopener";
	// this pass applies both attributes to every surviving link.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean))
	if err != nil {
		return clean
	}
	links := doc.Find("a[href]")
	if links.Length() == 0 {
		return clean
	}
	links.SetAttr("target", "_blank").SetAttr("rel", "noopener noreferrer")
	body, err := doc.Find("body").Html()
	if err != nil {
		return clean
	}
	return strings.TrimSpace(body)
}

// StripHTML removes all tags and returns the text content joined by
// single spaces.
func StripHTML(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(tagStripRe.ReplaceAllString(html, " "))
	}
	text := doc.Text()
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}

var numberRe = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

// ParseSalaryRange extracts all numeric groups from a fuzzy salary
// string. A bare value under 1000 is interpreted as thousands
// ("60k" -> 60000, "£60-£90k" -> 60000-90000). The returned range
// spans the min and max of every extracted value; a single value
// yields (v, v); no numeric content yields (nil, nil).
func ParseSalaryRange(s string) (min, max *float64) {
	if s == "" {
		return nil, nil
	}
	lower := strings.ToLower(s)
	matches := numberRe.FindAllStringIndex(lower, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	var values []float64
	for _, m := range matches {
		raw := strings.ReplaceAll(lower[m[0]:m[1]], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		// Look at the character immediately following the match for a
		// thousands/millions multiplier suffix.
		suffix := ""
		if m[1] < len(lower) {
			suffix = string(lower[m[1]])
		}
		switch {
		case suffix == "k":
			v *= 1000
		case v < 1000 && v > 0:
			v *= 1000
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return &lo, &hi
}

// SafeFloat parses a value as a float, returning nil on failure or on
// non-positive results (mirrors the adapter base's _safe_float, which
// treats zero/negative salary figures as "unknown" rather than real).
func SafeFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}
