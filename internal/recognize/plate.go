// Package recognize finds vehicle registration-plate candidates in extracted
// text by pattern matching. Candidates are syntactic only; nothing is checked
// against a registry.
package recognize

import "regexp"

// platePatterns is applied in this fixed order. Ordering does not rank the
// results; all surviving candidates have equal standing. The final
// alphanumeric pattern is intentionally broad and will match incidental
// text such as dates or unrelated serial numbers; that imprecision is
// accepted in exchange for recall.
var platePatterns = []*regexp.Regexp{
	// Japanese plate, spaced (品川500 あ 1234). The region name is kanji
	// only, so hiragana particles in surrounding prose stay out of the
	// match.
	regexp.MustCompile(`\p{Han}{2,4}\s*\d{1,4}\s*\p{Hiragana}\s*\d{1,4}`),
	// Japanese plate, unspaced (品川500あ1234)
	regexp.MustCompile(`\p{Han}{2,4}\d{1,4}\p{Hiragana}\d{1,4}`),
	// Chassis number (1234A123456)
	regexp.MustCompile(`\d{4}[A-Z]\d{6}`),
	// International plate (AB12CD1234)
	regexp.MustCompile(`[A-Z]{2}\d{2}[A-Z]{2}\d{4}`),
	// Digits only, optional separator
	regexp.MustCompile(`\d{3,4}[-\s]?\d{3,4}`),
	// Generic alphanumeric fallback
	regexp.MustCompile(`[A-Z0-9]{4,8}`),
}

type PlateRecognizer struct{}

func NewPlateRecognizer() *PlateRecognizer {
	return &PlateRecognizer{}
}

// Recognize collects every match of every pattern across the full text and
// deduplicates by exact string equality, keeping first-seen order.
func (r *PlateRecognizer) Recognize(text string) []string {
	seen := make(map[string]struct{})
	candidates := make([]string, 0, 4)
	for _, pattern := range platePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			candidates = append(candidates, match)
		}
	}
	return candidates
}

// Merge appends a model-asserted plate number to the candidate set when it is
// non-empty and not already present, regardless of the model's own confidence.
func Merge(candidates []string, modelPlate string) []string {
	if modelPlate == "" {
		return candidates
	}
	for _, c := range candidates {
		if c == modelPlate {
			return candidates
		}
	}
	return append(candidates, modelPlate)
}
