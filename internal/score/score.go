// Package score computes the similarity between a team's build and the
// round target. Score is pure: no clock, no shared state, so it can run
// for every team inside the room loop without surprises.
package score

import "github.com/blockparty/build-battle-backend/internal/grid"

type CellResult struct {
	Row      int        `json:"row"`
	Col      int        `json:"col"`
	Height   int        `json:"height"`
	Expected grid.Block `json:"expected"`
	Actual   grid.Block `json:"actual"`
	Correct  bool       `json:"correct"`
}

type Result struct {
	Correct    int          `json:"correct"`
	Total      int          `json:"total"`
	Percentage int          `json:"percentage"`
	Cells      []CellResult `json:"cells"`
}

// Score walks the full coordinate space. Every non-empty target cell
// counts toward Total; a build block where the target is empty also
// counts toward Total (extra blocks cost) but can never be Correct.
// Cells empty on both sides carry no signal and are omitted. An empty
// target scores 0%, not 100%.
func Score(build, target grid.Grid) Result {
	var res Result
	for r := 0; r < grid.Size; r++ {
		for c := 0; c < grid.Size; c++ {
			for h := 0; h < grid.MaxHeight; h++ {
				want := target[r][c][h]
				got := build[r][c][h]
				if want == grid.Empty && got == grid.Empty {
					continue
				}
				res.Total++
				ok := want != grid.Empty && got == want
				if ok {
					res.Correct++
				}
				res.Cells = append(res.Cells, CellResult{
					Row: r, Col: c, Height: h,
					Expected: want, Actual: got, Correct: ok,
				})
			}
		}
	}
	if res.Total > 0 {
		// round half-up of 100*correct/total
		res.Percentage = (200*res.Correct + res.Total) / (2 * res.Total)
	}
	return res
}
