// Package scoring implements the HotpotQA reference answer metrics
// (normalization, exact match, and token-overlap F1). The algorithm
// must match the official hotpot_evaluate_v1 procedure exactly:
// benchmark numbers are only comparable across implementations when
// the normalization and overlap counting are reproduced bit-for-bit.
package scoring

import (
	"strings"
	"unicode"
)

// asciiPunct is the ASCII punctuation set stripped during
// normalization. Only these runes are removed; unicode punctuation
// outside this set is kept, matching the reference behavior.
const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Normalize lowercases s, strips ASCII punctuation, removes the
// English articles "a", "an", "the" as whole words, and collapses
// whitespace. The step order matters: articles are only matched after
// punctuation removal, so "the." normalizes away entirely.
func Normalize(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(asciiPunct, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(removeArticles(b.String())), " ")
}

// isWordRune matches the reference's unicode word class: letters,
// numbers, and underscore. Article boundaries must be unicode-aware so
// that e.g. "thé" is one word and not the article "the" followed by
// an accent.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// removeArticles replaces each maximal word-rune run equal to "a",
// "an", or "the" with a single space.
func removeArticles(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var word []rune
	flush := func() {
		switch w := string(word); w {
		case "a", "an", "the":
			b.WriteByte(' ')
		default:
			b.WriteString(w)
		}
		word = word[:0]
	}
	for _, r := range s {
		if isWordRune(r) {
			word = append(word, r)
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	return b.String()
}

// ExactMatch reports whether prediction and groundTruth are equal
// after normalization.
func ExactMatch(prediction, groundTruth string) bool {
	return Normalize(prediction) == Normalize(groundTruth)
}

// F1 computes token-level F1, precision, and recall between prediction
// and groundTruth after normalization.
//
// When either side normalizes to "yes", "no", or "noanswer" and the
// two sides differ, all three metrics are zero: binary and
// unanswerable questions get no partial credit. Otherwise overlap is
// counted as a bag intersection, so duplicate tokens count up to the
// minimum of their multiplicities on each side.
func F1(prediction, groundTruth string) (f1, precision, recall float64) {
	pred := Normalize(prediction)
	truth := Normalize(groundTruth)

	if isBinaryAnswer(pred) && pred != truth {
		return 0, 0, 0
	}
	if isBinaryAnswer(truth) && pred != truth {
		return 0, 0, 0
	}

	predTokens := strings.Fields(pred)
	truthTokens := strings.Fields(truth)

	numSame := bagOverlap(predTokens, truthTokens)
	if numSame == 0 {
		return 0, 0, 0
	}

	precision = float64(numSame) / float64(len(predTokens))
	recall = float64(numSame) / float64(len(truthTokens))
	f1 = 2 * precision * recall / (precision + recall)
	return f1, precision, recall
}

func isBinaryAnswer(s string) bool {
	switch s {
	case "yes", "no", "noanswer":
		return true
	default:
		return false
	}
}

func bagOverlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	counts := make(map[string]int, len(a))
	for _, tok := range a {
		counts[tok]++
	}

	overlap := 0
	for _, tok := range b {
		if counts[tok] > 0 {
			counts[tok]--
			overlap++
		}
	}
	return overlap
}
