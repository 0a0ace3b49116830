package ocr

import (
	"strings"

	"github.com/arbovm/levenshtein"
	"github.com/codycollier/wer"
)

// normalize collapses whitespace and lowercases so accuracy scores are not
// dominated by layout differences in the OCR output.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// CharacterErrorRate returns the character-level edit distance between the
// expected and actual text, divided by the expected length. An empty
// expectation scores 0 when the actual text is also empty, 1 otherwise.
func CharacterErrorRate(expected, actual string) float64 {
	expected = normalize(expected)
	actual = normalize(actual)
	if expected == "" {
		if actual == "" {
			return 0
		}
		return 1
	}
	dist := levenshtein.Distance(expected, actual)
	return float64(dist) / float64(len([]rune(expected)))
}

// WordErrorRate returns the word-level edit distance between the expected
// and actual text, divided by the expected word count.
func WordErrorRate(expected, actual string) float64 {
	ref := strings.Fields(normalize(expected))
	hyp := strings.Fields(normalize(actual))
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0
		}
		return 1
	}
	rate, _ := wer.WER(ref, hyp)
	return rate
}
