package memory

import (
	"strings"
	"unicode"
)

// englishStopWords is the stop set of the english analyzer.
var englishStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "if", "in",
	"into", "is", "it", "no", "not", "of", "on", "or", "such", "that", "the",
	"their", "then", "there", "these", "they", "this", "to", "was", "will",
	"with",
}

// analyzer approximates the english analyzer: lowercase, split on anything
// that is not a letter or digit, drop possessives and stop words, then strip
// plural suffixes.
type analyzer struct {
	stop map[string]struct{}
}

func newAnalyzer(extraStopWords ...string) *analyzer {
	stop := make(map[string]struct{}, len(englishStopWords)+len(extraStopWords))
	for _, w := range englishStopWords {
		stop[w] = struct{}{}
	}
	for _, w := range extraStopWords {
		stop[strings.ToLower(w)] = struct{}{}
	}
	return &analyzer{stop: stop}
}

var (
	// nameAnalyzer also drops "made".
	nameAnalyzer        = newAnalyzer("made")
	descriptionAnalyzer = newAnalyzer()
)

func (a *analyzer) analyze(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSuffix(w, "'s")
		w = strings.ReplaceAll(w, "'", "")
		if w == "" {
			continue
		}
		if _, ok := a.stop[w]; ok {
			continue
		}
		tokens = append(tokens, stem(w))
	}
	return tokens
}

// stem removes common English plural endings.
func stem(token string) string {
	n := len(token)
	switch {
	case n > 4 && strings.HasSuffix(token, "ies"):
		return token[:n-3] + "y"
	case n > 4 && strings.HasSuffix(token, "sses"):
		return token[:n-2]
	case n > 4 && (strings.HasSuffix(token, "xes") || strings.HasSuffix(token, "zes") ||
		strings.HasSuffix(token, "ches") || strings.HasSuffix(token, "shes")):
		return token[:n-2]
	case n > 3 && strings.HasSuffix(token, "s") &&
		!strings.HasSuffix(token, "ss") && !strings.HasSuffix(token, "us") && !strings.HasSuffix(token, "is"):
		return token[:n-1]
	}
	return token
}

// maxEdits is the AUTO fuzziness: exact up to two characters, one edit up to
// five, two edits beyond that.
func maxEdits(term string) int {
	switch n := len([]rune(term)); {
	case n <= 2:
		return 0
	case n <= 5:
		return 1
	default:
		return 2
	}
}

// editDistance is the optimal string alignment distance, which counts an
// adjacent transposition as one edit.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	rows, cols := len(ra)+1, len(rb)+1

	d := make([][]int, rows)
	for i := range d {
		d[i] = make([]int, cols)
		d[i][0] = i
	}
	for j := 0; j < cols; j++ {
		d[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+1)
			}
		}
	}
	return d[rows-1][cols-1]
}
