package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"ocr-ai-service/internal/domain/ocr"
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	braceSpanRe  = regexp.MustCompile(`(?s)\{.*\}`)
)

// Normalize recovers a structured record from free-form vision-model output
// that is nominally JSON but may be wrapped in prose or code fences. Candidate
// selection, first match wins: a fenced json block, then the first-to-last
// brace span, then the whole text. A parse failure at the chosen candidate
// does not retry another candidate; the raw output is preserved in a degraded
// record instead.
func Normalize(raw string) ocr.NormalizedRecord {
	candidate := raw
	if m := fencedJSONRe.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	} else if m := braceSpanRe.FindString(raw); m != "" {
		candidate = m
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return ocr.NormalizedRecord{
			Fields: map[string]string{
				"text_content": raw,
				"analysis":     fmt.Sprintf("failed to parse model output as JSON: %v; returning raw text", err),
			},
			Degraded: true,
		}
	}

	fields := make(map[string]string, len(parsed))
	for key, value := range parsed {
		fields[key] = stringify(value)
	}
	return ocr.NormalizedRecord{Fields: fields}
}

// stringify flattens a decoded JSON value to a string. Non-string values keep
// their JSON encoding so nothing the model said is lost.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return strings.TrimSpace(fmt.Sprint(v))
		}
		return string(encoded)
	}
}
