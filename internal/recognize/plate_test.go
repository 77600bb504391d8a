package recognize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecognize_JapanesePlateUnspaced(t *testing.T) {
	r := NewPlateRecognizer()

	candidates := r.Recognize("車両番号は品川500あ1234です")

	assert.Contains(t, candidates, "品川500あ1234")
}

func TestRecognize_SurroundingProseNotAbsorbed(t *testing.T) {
	r := NewPlateRecognizer()

	// The particle は before the region name must stay out of the match.
	candidates := r.Recognize("車両番号は品川500あ1234です")

	assert.NotContains(t, candidates, "号は品川500あ1234")
	assert.Contains(t, candidates, "品川500あ1234")
}

func TestRecognize_JapanesePlateSpaced(t *testing.T) {
	r := NewPlateRecognizer()

	candidates := r.Recognize("品川 500 あ 1234")

	assert.Contains(t, candidates, "品川 500 あ 1234")
}

func TestRecognize_ChassisNumber(t *testing.T) {
	r := NewPlateRecognizer()

	candidates := r.Recognize("chassis 1234A123456 listed")

	assert.Contains(t, candidates, "1234A123456")
}

func TestRecognize_InternationalPlate(t *testing.T) {
	r := NewPlateRecognizer()

	candidates := r.Recognize("registered as AB12CD3456")

	assert.Contains(t, candidates, "AB12CD3456")
}

func TestRecognize_NumericPlate(t *testing.T) {
	r := NewPlateRecognizer()

	candidates := r.Recognize("number 123-4567 on file")

	assert.Contains(t, candidates, "123-4567")
}

func TestRecognize_GenericFallbackMatchesIncidentalText(t *testing.T) {
	r := NewPlateRecognizer()

	// The broad alphanumeric fallback is expected to pick up serial-like
	// tokens too; that is accepted behavior, not a defect.
	candidates := r.Recognize("SN2024X")

	assert.Contains(t, candidates, "SN2024X")
}

func TestRecognize_NoDuplicates(t *testing.T) {
	r := NewPlateRecognizer()

	candidates := r.Recognize("1234-5678 seen twice: 1234-5678")

	seen := make(map[string]int)
	for _, c := range candidates {
		seen[c]++
	}
	for c, n := range seen {
		assert.Equal(t, 1, n, "candidate %q appeared %d times", c, n)
	}
	assert.Contains(t, candidates, "1234-5678")
}

func TestRecognize_EmptyText(t *testing.T) {
	r := NewPlateRecognizer()

	assert.Empty(t, r.Recognize(""))
}

func TestMerge_AddsModelPlateWhenAbsent(t *testing.T) {
	merged := Merge([]string{"1234-5678"}, "AB12CD3456")

	assert.Equal(t, []string{"1234-5678", "AB12CD3456"}, merged)
}

func TestMerge_DeduplicatesAcrossSources(t *testing.T) {
	merged := Merge([]string{"AB12CD3456"}, "AB12CD3456")

	assert.Equal(t, []string{"AB12CD3456"}, merged)
}

func TestMerge_IgnoresEmptyModelPlate(t *testing.T) {
	merged := Merge([]string{"1234-5678"}, "")

	assert.Equal(t, []string{"1234-5678"}, merged)
}
