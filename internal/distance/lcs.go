package distance

// LongestCommonSubsequence returns the longest sequence of runes that appears,
// in order but not necessarily contiguously, in both a and b.
//
// When several subsequences share the maximum length the result is fixed by
// the backtracking rule: on a mismatch move left only if the left cell is
// strictly greater, otherwise move up (consuming a).
func LongestCommonSubsequence(a, b string) string {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return ""
	}

	table := lcsTable(ra, rb)

	out := make([]rune, table[len(ra)][len(rb)])
	k := len(out)
	i, j := len(ra), len(rb)
	for i > 0 && j > 0 {
		switch {
		case ra[i-1] == rb[j-1]:
			k--
			out[k] = ra[i-1]
			i--
			j--
		case table[i][j-1] > table[i-1][j]:
			j--
		default:
			i--
		}
	}
	return string(out)
}

// lcsTable fills the (len(a)+1) x (len(b)+1) LCS length table.
// Row 0 and column 0 stay zero.
func lcsTable(a, b []rune) [][]int {
	table := make([][]int, len(a)+1)
	for i := range table {
		table[i] = make([]int, len(b)+1)
	}
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				table[i][j] = table[i-1][j-1] + 1
			} else {
				table[i][j] = max(table[i-1][j], table[i][j-1])
			}
		}
	}
	return table
}
