package shuuro

import "sync"

// Ray directions: N, S, E, W, NE, NW, SE, SW. Rook rays are the first
// four, bishop rays the last four.
var directions = [8][2]int{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0},
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
}

var knightSteps = [8][2]int{
	{1, 2}, {2, 1}, {-1, 2}, {-2, 1},
	{1, -2}, {2, -1}, {-1, -2}, {-2, -1},
}

var giraffeSteps = [8][2]int{
	{1, 4}, {4, 1}, {-1, 4}, {-4, 1},
	{1, -4}, {4, -1}, {-1, -4}, {-4, -1},
}

// attackTable holds the precomputed move geometry for one board size.
type attackTable struct {
	size    int
	knight  [][]Square
	king    [][]Square
	giraffe [][]Square
	rays    [][8][]Square // per square, per direction, walking outward
}

var (
	attacksOnce sync.Once
	tables      [13]*attackTable
)

// InitAttacks builds the per-size tables. Safe to call more than once;
// only the first call does work.
func InitAttacks() {
	attacksOnce.Do(func() {
		for _, size := range []int{6, 8, 12} {
			tables[size] = buildTable(size)
		}
	})
}

func tableFor(size int) *attackTable {
	InitAttacks()
	return tables[size]
}

func buildTable(size int) *attackTable {
	n := size * size
	t := &attackTable{
		size:    size,
		knight:  make([][]Square, n),
		king:    make([][]Square, n),
		giraffe: make([][]Square, n),
		rays:    make([][8][]Square, n),
	}
	for rank := 0; rank < size; rank++ {
		for file := 0; file < size; file++ {
			from := Square{File: file, Rank: rank}
			i := rank*size + file
			t.knight[i] = steps(from, size, knightSteps)
			t.giraffe[i] = steps(from, size, giraffeSteps)
			for _, d := range directions[:8] {
				if sq, ok := offset(from, size, d[0], d[1]); ok {
					t.king[i] = append(t.king[i], sq)
				}
			}
			for di, d := range directions {
				cur := from
				for {
					sq, ok := offset(cur, size, d[0], d[1])
					if !ok {
						break
					}
					t.rays[i][di] = append(t.rays[i][di], sq)
					cur = sq
				}
			}
		}
	}
	return t
}

func steps(from Square, size int, deltas [8][2]int) []Square {
	var out []Square
	for _, d := range deltas {
		if sq, ok := offset(from, size, d[0], d[1]); ok {
			out = append(out, sq)
		}
	}
	return out
}

func offset(from Square, size, df, dr int) (Square, bool) {
	f, r := from.File+df, from.Rank+dr
	if f < 0 || f >= size || r < 0 || r >= size {
		return Square{}, false
	}
	return Square{File: f, Rank: r}, true
}
