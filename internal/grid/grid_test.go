package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGrid_AllEmpty(t *testing.T) {
	g := NewGrid()
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			for h := 0; h < MaxHeight; h++ {
				assert.Equal(t, Empty, g[r][c][h])
			}
		}
	}
}

func TestAction_Validate(t *testing.T) {
	cases := []struct {
		name   string
		action Action
		err    error
	}{
		{"ok", Action{Row: 0, Col: 0, Height: 0, Block: Wall}, nil},
		{"ok max corner", Action{Row: Size - 1, Col: Size - 1, Height: MaxHeight - 1, Block: Pipe}, nil},
		{"erase is valid", Action{Row: 2, Col: 2, Height: 0, Block: Empty}, nil},
		{"negative row", Action{Row: -1, Col: 0, Height: 0, Block: Wall}, ErrOutOfBounds},
		{"row too large", Action{Row: Size, Col: 0, Height: 0, Block: Wall}, ErrOutOfBounds},
		{"col too large", Action{Row: 0, Col: Size, Height: 0, Block: Wall}, ErrOutOfBounds},
		{"height too large", Action{Row: 0, Col: 0, Height: MaxHeight, Block: Wall}, ErrOutOfBounds},
		{"unknown block", Action{Row: 0, Col: 0, Height: 0, Block: "lava"}, ErrUnknownBlock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.action.Validate(), tc.err)
		})
	}
}

func TestValidAction(t *testing.T) {
	assert.True(t, ValidAction(0, 0, 0, Wall))
	assert.True(t, ValidAction(Size-1, Size-1, MaxHeight-1, Empty))
	assert.False(t, ValidAction(Size, 0, 0, Wall))
	assert.False(t, ValidAction(0, -1, 0, Wall))
	assert.False(t, ValidAction(0, 0, MaxHeight, Wall))
	assert.False(t, ValidAction(0, 0, 0, "lava"))
}

func TestGrid_Place(t *testing.T) {
	g := NewGrid()
	g.Place(Action{Row: 1, Col: 2, Height: 3, Block: Window})
	assert.Equal(t, Window, g[1][2][3])

	// single-cell write only: neighbours untouched
	assert.Equal(t, Empty, g[1][2][2])
	assert.Equal(t, Empty, g[1][3][3])
}

func TestGrid_ValueSemantics(t *testing.T) {
	g := NewGrid()
	g.Place(Action{Row: 0, Col: 0, Height: 0, Block: Wall})

	snap := g
	g.Place(Action{Row: 0, Col: 0, Height: 0, Block: Door})

	assert.Equal(t, Wall, snap[0][0][0])
	assert.Equal(t, Door, g[0][0][0])
}
