package errors

import (
	"fmt"
	"sort"
	"strings"
)

// SuggestName suggests a close match when an unknown name is referenced
// (builtin functions, aliases). It uses Levenshtein distance to find the
// most similar candidate.
func SuggestName(unknown string, valid []string) string {
	if len(valid) == 0 {
		return ""
	}

	candidates := make([]string, len(valid))
	copy(candidates, valid)
	sort.Strings(candidates)

	minDistance := 1000
	var bestMatch string
	for _, name := range candidates {
		dist := levenshteinDistance(unknown, name)
		if dist < minDistance {
			minDistance = dist
			bestMatch = name
		}
	}

	// Only suggest if the distance is reasonable (< 4 edits).
	if minDistance < 4 {
		return fmt.Sprintf("did you mean %q?", bestMatch)
	}

	if len(candidates) > 5 {
		return fmt.Sprintf("known names include: %s, ...", strings.Join(candidates[:5], ", "))
	}
	return fmt.Sprintf("known names: %s", strings.Join(candidates, ", "))
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}

	len1 := len(s1)
	len2 := len(s2)

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}

	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // Deletion
				matrix[i][j-1]+1,      // Insertion
				matrix[i-1][j-1]+cost, // Substitution
			)
		}
	}

	return matrix[len1][len2]
}
