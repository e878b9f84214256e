package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSONFound is returned when none of the three extraction
// strategies could recover a JSON object from the model's raw text.
var ErrNoJSONFound = errors.New("no valid JSON object found")

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

// ExtractJSON tries, in order: the whole response as JSON; the first
// markdown fenced code block; the substring from the first '{' to the
// last '}'. This tolerates models that wrap JSON in commentary or code
// fences despite being told not to.
func ExtractJSON(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)

	var result map[string]any
	if err := json.Unmarshal([]byte(raw), &result); err == nil {
		return result, nil
	}

	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		candidate := strings.TrimSpace(m[1])
		if err := json.Unmarshal([]byte(candidate), &result); err == nil {
			return result, nil
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		candidate := raw[start : end+1]
		if err := json.Unmarshal([]byte(candidate), &result); err == nil {
			return result, nil
		}
	}

	return nil, ErrNoJSONFound
}
