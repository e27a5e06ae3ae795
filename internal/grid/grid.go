package grid

import "errors"

var ErrOutOfBounds = errors.New("coordinate out of bounds")
var ErrUnknownBlock = errors.New("unknown block type")

const (
	// Size bounds rows and cols of every build and target grid.
	Size = 6
	// MaxHeight bounds how high blocks can stack on one cell.
	MaxHeight = 4
)

type Block string

const (
	Empty    Block = "empty"
	Wall     Block = "wall"
	Floor    Block = "floor"
	Roof     Block = "roof"
	Window   Block = "window"
	Door     Block = "door"
	Plant    Block = "plant"
	Table    Block = "table"
	Metal    Block = "metal"
	Concrete Block = "concrete"
	Barrel   Block = "barrel"
	Pipe     Block = "pipe"
	Air      Block = "air"
)

var knownBlocks = map[Block]struct{}{
	Empty: {}, Wall: {}, Floor: {}, Roof: {}, Window: {}, Door: {},
	Plant: {}, Table: {}, Metal: {}, Concrete: {}, Barrel: {}, Pipe: {}, Air: {},
}

func KnownBlock(b Block) bool {
	_, ok := knownBlocks[b]
	return ok
}

// Grid is the 3D cell matrix indexed [row][col][height]. It is a value
// type: assignment copies the whole matrix, which is how round snapshots
// are taken.
type Grid [Size][Size][MaxHeight]Block

// NewGrid returns a grid with every cell set to Empty.
func NewGrid() Grid {
	var g Grid
	for r := range g {
		for c := range g[r] {
			for h := range g[r][c] {
				g[r][c][h] = Empty
			}
		}
	}
	return g
}

// Action is a single-cell write. Composite conveniences (a door filling
// two cells, say) are a client policy issuing two actions, never handled
// here.
type Action struct {
	Row    int   `json:"row"`
	Col    int   `json:"col"`
	Height int   `json:"height"`
	Block  Block `json:"block"`
}

func (a Action) Validate() error {
	if a.Row < 0 || a.Row >= Size || a.Col < 0 || a.Col >= Size {
		return ErrOutOfBounds
	}
	if a.Height < 0 || a.Height >= MaxHeight {
		return ErrOutOfBounds
	}
	if !KnownBlock(a.Block) {
		return ErrUnknownBlock
	}
	return nil
}

func ValidAction(row, col, height int, b Block) bool {
	return Action{Row: row, Col: col, Height: height, Block: b}.Validate() == nil
}

// Place writes the action's block at its coordinate. Callers must have
// validated the action first.
func (g *Grid) Place(a Action) {
	g[a.Row][a.Col][a.Height] = a.Block
}
