package block

import (
	"testing"

	"github.com/gopiet/pietvm/color"
)

func grid(width, height int, rows ...[]color.Color) *Grid {
	codels := make([]color.Color, 0, width*height)
	for _, r := range rows {
		codels = append(codels, r...)
	}
	return NewGrid(width, height, codels)
}

var (
	red   = color.Color{Kind: color.Chromatic, Hue: color.Red, Lightness: color.Normal}
	blue  = color.Color{Kind: color.Chromatic, Hue: color.Blue, Lightness: color.Normal}
	white = color.Color{Kind: color.White}
	black = color.Color{Kind: color.Black}
)

func TestBuildSinglePixel(t *testing.T) {
	g := grid(1, 1, []color.Color{red})
	idx := Build(g)

	if len(idx.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1", len(idx.Blocks))
	}
	if idx.Blocks[0].Size() != 1 {
		t.Errorf("Size() = %d, want 1", idx.Blocks[0].Size())
	}
	if b := idx.BlockAt(Point{0, 0}); b != idx.Blocks[0] {
		t.Errorf("BlockAt(0,0) = %v, want %v", b, idx.Blocks[0])
	}
}

func TestBuildMergesOrthogonalNotDiagonal(t *testing.T) {
	// 3x3 grid:
	// R R .
	// R . R
	// . . R
	g := grid(3, 3,
		[]color.Color{red, red, black},
		[]color.Color{red, black, red},
		[]color.Color{black, black, red},
	)
	idx := Build(g)

	// The three top-left reds are 4-connected into one block. The two
	// right-hand reds (2,1) and (2,2) are 4-connected to each other (same
	// column) and touch the top-left group only diagonally, at (1,0), so
	// they form a second, separate block.
	if len(idx.Blocks) != 2 {
		t.Fatalf("len(Blocks) = %d, want 2", len(idx.Blocks))
	}

	topLeft := idx.BlockAt(Point{0, 0})
	if topLeft.Size() != 3 {
		t.Errorf("top-left block size = %d, want 3", topLeft.Size())
	}
	if idx.BlockAt(Point{1, 1}) != nil {
		t.Errorf("BlockAt(1,1) should be black/nil")
	}

	bottomRight := idx.BlockAt(Point{2, 1})
	if bottomRight.Size() != 2 {
		t.Errorf("bottom-right block size = %d, want 2", bottomRight.Size())
	}
	if topLeft == bottomRight {
		t.Errorf("diagonal touch must not merge blocks")
	}
}

func TestBuildDistinctExactColorsDoNotMerge(t *testing.T) {
	g := grid(2, 1, []color.Color{red, blue})
	idx := Build(g)

	if len(idx.Blocks) != 2 {
		t.Fatalf("len(Blocks) = %d, want 2", len(idx.Blocks))
	}
}

func TestBuildCompletenessAndDisjointness(t *testing.T) {
	g := grid(3, 2,
		[]color.Color{red, red, white},
		[]color.Color{blue, black, blue},
	)
	idx := Build(g)

	seen := map[Point]ID{}
	for _, b := range idx.Blocks {
		for _, p := range b.Pixels {
			if other, dup := seen[p]; dup {
				t.Fatalf("pixel %v claimed by both block %d and %d", p, other, b.ID)
			}
			seen[p] = b.ID
			if g.At(p) != b.Color {
				t.Errorf("pixel %v has color %v, block claims %v", p, g.At(p), b.Color)
			}
		}
	}

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := Point{x, y}
			c := g.At(p)
			_, found := seen[p]
			if c.IsChromatic() != found {
				t.Errorf("pixel %v chromatic=%v but membership=%v", p, c.IsChromatic(), found)
			}
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	g := grid(2, 2,
		[]color.Color{red, red},
		[]color.Color{blue, blue},
	)

	a := Build(g)
	b := Build(g)

	if len(a.Blocks) != len(b.Blocks) {
		t.Fatalf("non-deterministic block count: %d vs %d", len(a.Blocks), len(b.Blocks))
	}
	for i := range a.Blocks {
		if a.Blocks[i].ID != b.Blocks[i].ID || a.Blocks[i].Color != b.Blocks[i].Color {
			t.Errorf("non-deterministic block %d: %+v vs %+v", i, a.Blocks[i], b.Blocks[i])
		}
	}
}

func TestOutOfBoundsIsBlack(t *testing.T) {
	g := grid(1, 1, []color.Color{red})
	if c := g.At(Point{5, 5}); c.Kind != color.Black {
		t.Errorf("out-of-bounds At() = %v, want Black", c)
	}
}
