package faq

import "strings"

// normalizedDistance computes the Levenshtein edit distance between the
// lowercased, trimmed inputs, divided by the longer length: 0 means
// identical, 1 maximally different. Two empty strings are identical.
func normalizedDistance(a, b string) float64 {
	s1 := []rune(strings.ToLower(strings.TrimSpace(a)))
	s2 := []rune(strings.ToLower(strings.TrimSpace(b)))

	maxLen := max(len(s1), len(s2))
	if maxLen == 0 {
		return 0
	}

	// Two-row dynamic programming over the edit distance matrix.
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return float64(prev[len(s2)]) / float64(maxLen)
}
