package match

// Similarity computes the Ratcliff/Obershelp matching-blocks ratio
// between two strings: 2*M / (len(a)+len(b)) where M is the total length
// of matched blocks found by recursing around the longest common
// substring. The ratio is symmetric and Similarity(a, a) == 1.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	m := matchingBlocksTotal(ra, rb)
	return 2 * float64(m) / float64(total)
}

// matchingBlocksTotal sums matched block lengths: the longest common
// substring first, then recursively the regions to its left and right.
func matchingBlocksTotal(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingBlocksTotal(a[:ai], b[:bi]) +
		matchingBlocksTotal(a[ai+size:], b[bi+size:])
}

// longestCommonSubstring finds the first longest run of runes common to a
// and b, returning its start offsets and length. O(len(a)*len(b)) time
// with a single rolling row.
func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
