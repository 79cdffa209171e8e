package service

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxScore is the score of an exact answer
const MaxScore = 100

// Score rates answer against reference on a 0..100 scale using Dice's
// coefficient over character bigrams. Both strings are case-folded and all
// whitespace is removed before comparison.
func Score(answer, reference string) int {
	return int(math.Round(Similarity(answer, reference) * MaxScore))
}

// Similarity returns the Dice coefficient of the character bigram multisets of
// the two normalized strings. Identical strings, including two empty ones,
// have similarity 1; a string shorter than two characters matches nothing else.
func Similarity(a, b string) float64 {
	ra := []rune(normalizeAnswer(a))
	rb := []rune(normalizeAnswer(b))

	if string(ra) == string(rb) {
		return 1
	}
	if len(ra) < 2 || len(rb) < 2 {
		return 0
	}

	bigrams := make(map[[2]rune]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[[2]rune{ra[i], ra[i+1]}]++
	}

	shared := 0
	for i := 0; i < len(rb)-1; i++ {
		key := [2]rune{rb[i], rb[i+1]}
		if bigrams[key] > 0 {
			bigrams[key]--
			shared++
		}
	}

	return 2 * float64(shared) / float64(len(ra)+len(rb)-2)
}

func normalizeAnswer(s string) string {
	s = cases.Fold().String(norm.NFC.String(s))
	return strings.Join(strings.Fields(s), "")
}
