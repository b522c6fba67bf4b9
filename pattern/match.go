package pattern

// FindMatches returns the top-left position of every exact occurrence of p
// inside search, ordered by row then column. Overlapping occurrences are all
// reported. A blank pattern (no rows, no columns or no filled cell) and a
// pattern larger than search in either dimension yield an empty result.
//
// Both grids must be rectangular; use FindMatchesChecked for untrusted input.
func FindMatches(p, search Grid) []Position {
	found := []Position{}

	pr, pc := p.Rows(), p.Cols()
	sr, sc := search.Rows(), search.Cols()
	if pr == 0 || pc == 0 || p.IsBlank() {
		return found
	}
	if pr > sr || pc > sc {
		return found
	}

	for r := 0; r <= sr-pr; r++ {
		for c := 0; c <= sc-pc; c++ {
			if matchesAt(p, search, r, c) {
				found = append(found, Position{Row: r, Col: c})
			}
		}
	}
	return found
}

// FindMatchesChecked validates both grids before matching and returns
// ErrJagged instead of a partial result.
func FindMatchesChecked(p, search Grid) ([]Position, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := search.Validate(); err != nil {
		return nil, err
	}
	return FindMatches(p, search), nil
}

func matchesAt(p, search Grid, r, c int) bool {
	for i, row := range p {
		target := search[r+i][c : c+len(row)]
		for j, cell := range row {
			if cell != target[j] {
				return false
			}
		}
	}
	return true
}

// Covers reports whether (row, col) lies inside a region of the given size
// anchored at any of the matches.
func Covers(matches []Position, size Size, row, col int) bool {
	for _, m := range matches {
		if row >= m.Row && row < m.Row+size.Rows &&
			col >= m.Col && col < m.Col+size.Cols {
			return true
		}
	}
	return false
}
