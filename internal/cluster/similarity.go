package cluster

// Similarity computes the Ratcliff/Obershelp similarity ratio of two strings
// in [0, 1]: twice the number of matching characters over the total length,
// where matches are counted by recursively taking the longest common
// contiguous block and matching the pieces to its left and right. This is
// the classic sequence-similarity metric; it is not an edit distance and
// not token overlap.
//
// Comparison is rune-wise and case-sensitive; callers normalize case first.
func Similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	// Index positions of each rune in b for the longest-match scan.
	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}

	matched := matchingTotal(ra, rb, 0, len(ra), 0, len(rb), b2j)
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingTotal returns the total size of all matching blocks between
// a[alo:ahi] and b[blo:bhi].
func matchingTotal(a, b []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) int {
	besti, bestj, size := longestMatch(a, alo, ahi, blo, bhi, b2j)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingTotal(a, b, alo, besti, blo, bestj, b2j)
	total += matchingTotal(a, b, besti+size, ahi, bestj+size, bhi, b2j)
	return total
}

// longestMatch finds the longest block such that
// a[besti:besti+size] == b[bestj:bestj+size] within the given ranges.
// Of all maximal blocks it prefers the one starting earliest in a, then
// earliest in b, which keeps the recursion deterministic.
func longestMatch(a []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) (besti, bestj, size int) {
	besti, bestj = alo, blo

	// j2len[j] is the length of the longest match ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > size {
				besti, bestj, size = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}
	return besti, bestj, size
}
