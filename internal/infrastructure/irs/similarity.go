package irs

import "strings"

// MatchThreshold is the minimum name similarity for a registry hit to be
// accepted.
const MatchThreshold = 0.6

// Similarity returns the Ratcliff/Obershelp ratio of a and b compared
// case-insensitively: twice the matched characters over the total length.
// Identical strings score 1 and strings with no common character score 0.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingRunes(ra, rb)) / float64(total)
}

// matchingRunes sums the longest common block of a and b plus, recursively,
// the matches to its left and right.
func matchingRunes(a, b []rune) int {
	i, j, size := longestBlock(a, b)
	if size == 0 {
		return 0
	}
	return size + matchingRunes(a[:i], b[:j]) + matchingRunes(a[i+size:], b[j+size:])
}

// longestBlock finds the earliest longest common substring of a and b.
func longestBlock(a, b []rune) (int, int, int) {
	var bestI, bestJ, best int
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
					bestI, bestJ = i-best, j-best
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return bestI, bestJ, best
}

var corporateSuffixes = strings.NewReplacer("Inc", "", "LLC", "")

// searchTerm strips corporate suffixes, which the registry rarely files under.
func searchTerm(name string) string {
	return strings.Join(strings.Fields(corporateSuffixes.Replace(name)), " ")
}
