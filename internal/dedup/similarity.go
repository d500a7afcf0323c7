package dedup

import "strings"

const (
	jaccardWeight     = 0.6
	levenshteinWeight = 0.4
)

// Jaccard computes set overlap between two word lists.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, w := range a {
		set[w] = true
	}
	inter := 0
	union := len(set)
	seen := make(map[string]bool, len(b))
	for _, w := range b {
		if seen[w] {
			continue
		}
		seen[w] = true
		if set[w] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

// Levenshtein returns the edit distance between two strings.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// TitleSimilarity scores two normalized titles in [0,1]: Jaccard word
// overlap weighted against normalized Levenshtein distance over the
// significant-word strings.
func TitleSimilarity(a, b string, maxWords int) float64 {
	wa := SignificantWords(a, maxWords)
	wb := SignificantWords(b, maxWords)

	ja := Jaccard(wa, wb)

	sa, sb := strings.Join(wa, " "), strings.Join(wb, " ")
	maxLen := len([]rune(sa))
	if l := len([]rune(sb)); l > maxLen {
		maxLen = l
	}
	lev := 1.0
	if maxLen > 0 {
		lev = 1 - float64(Levenshtein(sa, sb))/float64(maxLen)
	}

	return jaccardWeight*ja + levenshteinWeight*lev
}
