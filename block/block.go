// Package block discovers Piet color blocks: maximal 4-connected regions
// of codels sharing the exact same classified color. White and Black
// codels are never materialized as blocks; they are the free-movement and
// wall regions the pointer engine treats specially.
package block

import "github.com/gopiet/pietvm/color"

// Point is a codel coordinate, (x, y), 0 <= x < Grid.Width, 0 <= y <
// Grid.Height.
type Point struct {
	X, Y int
}

// Grid is an immutable width x height array of classified codels,
// addressable (x, y). Piet assumes one pixel per codel; callers downsample
// before constructing a Grid if their source image uses larger codels.
type Grid struct {
	Width, Height int
	codels        []color.Color // row-major, len == Width*Height
}

// NewGrid builds a Grid from a row-major slice of classified codels. It
// panics if len(codels) != width*height, which would indicate a
// programming error in the caller (e.g. pietimg), not a malformed Piet
// program.
func NewGrid(width, height int, codels []color.Color) *Grid {
	if len(codels) != width*height {
		panic("block: codel slice length does not match width*height")
	}
	return &Grid{Width: width, Height: height, codels: codels}
}

// At returns the classified color at (x, y). Out-of-bounds coordinates
// return Black, matching the pointer engine's "off-grid is blocked like a
// wall" rule.
func (g *Grid) At(p Point) color.Color {
	if p.X < 0 || p.X >= g.Width || p.Y < 0 || p.Y >= g.Height {
		return color.Color{Kind: color.Black}
	}
	return g.codels[p.Y*g.Width+p.X]
}

func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// ID identifies a colored block. Assignment follows row-major discovery
// order during Build, so two Builds over identical input produce
// identical IDs.
type ID uint32

// Block is a maximal 4-connected region of codels sharing one exact
// (hue, lightness). Only colored regions become blocks; White and Black
// codels never do.
type Block struct {
	ID     ID
	Color  color.Color
	Pixels []Point
}

// Size is the codel count of the block; it becomes the push operand.
func (b *Block) Size() int {
	return len(b.Pixels)
}

// Index is the result of Build: the discovered blocks and an O(1)
// pixel -> block lookup. Rebuilding the lookup per pointer-engine step is
// exactly the linear-scan anti-pattern this package exists to avoid.
type Index struct {
	Grid   *Grid
	Blocks []*Block
	owner  []int32 // row-major, -1 for white/black codels
}

// BlockAt returns the block owning (x, y), or nil if that codel is White,
// Black, or out of bounds.
func (idx *Index) BlockAt(p Point) *Block {
	if !idx.Grid.InBounds(p) {
		return nil
	}
	id := idx.owner[p.Y*idx.Grid.Width+p.X]
	if id < 0 {
		return nil
	}
	return idx.Blocks[id]
}

// Build partitions every colored codel in g into maximal 4-connected
// same-color blocks. Iteration is row-major; each unvisited colored codel
// seeds a flood fill that becomes one block, so block IDs (and therefore
// the whole Index) are deterministic for identical input.
func Build(g *Grid) *Index {
	owner := make([]int32, g.Width*g.Height)
	for i := range owner {
		owner[i] = -1
	}

	idx := &Index{Grid: g, owner: owner}

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := Point{x, y}
			flat := y*g.Width + x
			if owner[flat] != -1 {
				continue
			}
			c := g.At(p)
			if !c.IsChromatic() {
				continue
			}
			idx.floodFill(p, c)
		}
	}

	return idx
}

// floodFill discovers the full connected region of codels matching c
// starting at seed, registers it as a new Block, and marks every pixel in
// owner.
func (idx *Index) floodFill(seed Point, c color.Color) {
	id := ID(len(idx.Blocks))
	blk := &Block{ID: id, Color: c}

	queue := []Point{seed}
	idx.owner[seed.Y*idx.Grid.Width+seed.X] = int32(id)

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		blk.Pixels = append(blk.Pixels, p)

		for _, n := range neighbors(p) {
			if !idx.Grid.InBounds(n) {
				continue
			}
			flat := n.Y*idx.Grid.Width + n.X
			if idx.owner[flat] != -1 {
				continue
			}
			if idx.Grid.At(n) != c {
				continue
			}
			idx.owner[flat] = int32(id)
			queue = append(queue, n)
		}
	}

	idx.Blocks = append(idx.Blocks, blk)
}

func neighbors(p Point) [4]Point {
	return [4]Point{
		{p.X + 1, p.Y},
		{p.X - 1, p.Y},
		{p.X, p.Y + 1},
		{p.X, p.Y - 1},
	}
}
