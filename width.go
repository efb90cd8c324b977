package vtcore

import "github.com/unilibs/uniwidth"

// runeWidth returns the display width: 2 for wide characters (CJK, emoji), 1 for normal, 0 for zero-width (combining marks, control chars).
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// isWideRune returns true if the rune occupies 2 columns (CJK ideographs, fullwidth forms, emoji).
func isWideRune(r rune) bool {
	return uniwidth.RuneWidth(r) == 2
}

// StringWidth returns the total display width of a string (sum of rune widths).
func StringWidth(s string) int {
	return uniwidth.StringWidth(s)
}

// composedWidth resolves a composed-character sentinel to its base rune
// before measuring width. The combining marks folded into a sentinel via
// composeTable.Intern are zero-width by construction (that's why they were
// diverted into the table instead of occupying a cell of their own), so
// they never change the column span recorded when the base rune was first
// printed. table may be nil, in which case r is measured as-is.
func composedWidth(r rune, table *composeTable) int {
	if table != nil && isComposedSentinel(r) {
		if base, _, ok := table.Lookup(r); ok {
			r = base
		}
	}
	return runeWidth(r)
}
