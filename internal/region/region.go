// Package region holds the static region label to location-pattern
// table used as a soft geographic filter by the storage engine's
// search. The table deliberately overmatches (e.g. US state two-letter
// codes as a ", xx" suffix); this is acceptable because it is a soft
// filter, not an authoritative classifier. Adding a new region requires
// only a new table entry.
package region

import (
	"sort"
	"strings"
)

// Patterns are SQL LIKE-style patterns using '%' wildcards, lowercased.
// Patterns is keyed by canonical lowercased region label.
var Patterns = map[string][]string{
	"united kingdom": {
		"%united kingdom%", "%uk%", "%great britain%", "%england%",
		"%scotland%", "%wales%", "%northern ireland%", "%london%",
		"%manchester%", "%birmingham%", "%leeds%", "%glasgow%",
		"%edinburgh%", "%bristol%", "%liverpool%", "%cardiff%",
		"%belfast%", "%newcastle%", "%sheffield%", "%nottingham%",
		"%cambridge%", "%oxford%",
	},
	"united states": {
		"%united states%", "%, us%", "% us", "%usa%", "%u.s.%",
		"%, al", "%, ak", "%, az", "%, ar", "%, ca", "%, co", "%, ct",
		"%, de", "%, fl", "%, ga", "%, hi", "%, id", "%, il", "%, in",
		"%, ia", "%, ks", "%, ky", "%, la", "%, me", "%, md", "%, ma",
		"%, mi", "%, mn", "%, ms", "%, mo", "%, mt", "%, ne", "%, nv",
		"%, nh", "%, nj", "%, nm", "%, ny", "%, nc", "%, nd", "%, oh",
		"%, ok", "%, or", "%, pa", "%, ri", "%, sc", "%, sd", "%, tn",
		"%, tx", "%, ut", "%, vt", "%, va", "%, wa", "%, wv", "%, wi", "%, wy",
		"%alabama%", "%alaska%", "%arizona%", "%arkansas%", "%california%",
		"%colorado%", "%connecticut%", "%delaware%", "%florida%", "%georgia%",
		"%hawaii%", "%idaho%", "%illinois%", "%indiana%", "%iowa%",
		"%kansas%", "%kentucky%", "%louisiana%", "%maine%", "%maryland%",
		"%massachusetts%", "%michigan%", "%minnesota%", "%mississippi%",
		"%missouri%", "%montana%", "%nebraska%", "%nevada%",
		"%new hampshire%", "%new jersey%", "%new mexico%", "%new york%",
		"%north carolina%", "%north dakota%", "%ohio%", "%oklahoma%",
		"%oregon%", "%pennsylvania%", "%rhode island%", "%south carolina%",
		"%south dakota%", "%tennessee%", "%texas%", "%utah%", "%vermont%",
		"%virginia%", "%washington%", "%west virginia%", "%wisconsin%", "%wyoming%",
		"%san francisco%", "%los angeles%", "%chicago%", "%houston%",
		"%phoenix%", "%seattle%", "%denver%", "%boston%", "%austin%",
		"%portland%", "%atlanta%", "%miami%", "%dallas%", "%san diego%",
		"%san jose%", "%philadelphia%", "%minneapolis%",
	},
	"canada": {
		"%canada%", "%, ca%",
		"%toronto%", "%vancouver%", "%montreal%", "%ottawa%",
		"%calgary%", "%edmonton%", "%winnipeg%", "%quebec%",
		"%ontario%", "%british columbia%", "%alberta%", "%nova scotia%",
	},
	"germany": {
		"%germany%", "%deutschland%", "%berlin%", "%munich%",
		"%münchen%", "%hamburg%", "%frankfurt%", "%cologne%",
		"%köln%", "%düsseldorf%", "%stuttgart%",
	},
	"france": {
		"%france%", "%paris%", "%lyon%", "%marseille%",
		"%toulouse%", "%bordeaux%", "%lille%",
	},
	"netherlands": {
		"%netherlands%", "%holland%", "%amsterdam%",
		"%rotterdam%", "%the hague%", "%utrecht%", "%eindhoven%",
	},
	"ireland": {
		"%ireland%", "%dublin%", "%cork%", "%galway%", "%limerick%",
	},
	"australia": {
		"%australia%", "%sydney%", "%melbourne%", "%brisbane%",
		"%perth%", "%adelaide%", "%canberra%",
	},
	"india": {
		"%india%", "%bangalore%", "%bengaluru%", "%mumbai%",
		"%delhi%", "%hyderabad%", "%chennai%", "%pune%",
		"%kolkata%", "%noida%", "%gurgaon%", "%gurugram%",
	},
	"spain": {
		"%spain%", "%españa%", "%madrid%", "%barcelona%",
		"%valencia%", "%seville%", "%malaga%",
	},
	"italy": {
		"%italy%", "%italia%", "%rome%", "%roma%",
		"%milan%", "%milano%", "%turin%", "%naples%",
	},
	"sweden": {
		"%sweden%", "%stockholm%", "%gothenburg%", "%malmö%",
	},
	"switzerland": {
		"%switzerland%", "%zürich%", "%zurich%", "%geneva%",
		"%genève%", "%bern%", "%basel%",
	},
	"singapore": {"%singapore%"},
	"japan":     {"%japan%", "%tokyo%", "%osaka%", "%kyoto%"},
	"brazil":    {"%brazil%", "%são paulo%", "%rio de janeiro%"},
	"mexico":    {"%mexico%", "%ciudad de méxico%", "%guadalajara%", "%monterrey%"},
	"poland":    {"%poland%", "%warsaw%", "%krakow%", "%kraków%", "%wroclaw%"},
	"portugal":  {"%portugal%", "%lisbon%", "%lisboa%", "%porto%"},
	"remote / anywhere": {
		"%remote%", "%anywhere%", "%worldwide%", "%global%",
	},
	"europe": {
		"%europe%", "%eu %", "% eu", "%european union%", "%emea%",
	},
}

// Labels returns the sorted list of canonical region labels, suitable
// for populating a client-side dropdown.
func Labels() []string {
	out := make([]string, 0, len(Patterns))
	for k := range Patterns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// PatternsFor returns the LIKE-pattern list for a region label
// (case-insensitive), or nil if the region is unknown.
func PatternsFor(label string) []string {
	return Patterns[strings.ToLower(strings.TrimSpace(label))]
}

// Matches reports whether a lowercased location string satisfies any
// pattern for the given region label. Patterns use '%' as a wildcard
// on either end or in the middle, mirroring SQL LIKE semantics, and are
// evaluated directly in Go so callers that hold results in memory (or
// are assembling a SQL WHERE clause) can share one implementation.
func Matches(location, label string) bool {
	patterns := PatternsFor(label)
	if len(patterns) == 0 {
		return false
	}
	loc := strings.ToLower(location)
	for _, p := range patterns {
		if likeMatch(loc, p) {
			return true
		}
	}
	return false
}

// likeMatch implements the minimal subset of SQL LIKE used by the
// region table: '%' as a wildcard, matched against a literal substring
// on either side.
func likeMatch(s, pattern string) bool {
	if pattern == "" {
		return s == ""
	}
	parts := strings.Split(pattern, "%")
	if len(parts) == 1 {
		return s == pattern
	}

	rest := s
	for i, part := range parts {
		if part == "" {
			continue
		}
		idx := strings.Index(rest, part)
		if idx == -1 {
			return false
		}
		if i == 0 && pattern[0] != '%' && idx != 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}
	if pattern[len(pattern)-1] != '%' {
		return strings.HasSuffix(s, parts[len(parts)-1])
	}
	return true
}
