// Package pointer implements the Piet instruction-pointer state machine:
// the Direction Pointer / Codel Chooser pair, exit-codel selection, white
// codel sliding, and the eight-attempt termination rule. This is the
// hardest subsystem in the interpreter, with the most boundary cases to
// get right.
package pointer

import (
	"github.com/gopiet/pietvm/block"
	"github.com/gopiet/pietvm/color"
)

// Direction Pointer values, in the order right, down, left, up.
const (
	Right uint8 = iota
	Down
	Left
	Up

	NumDirections = 4
)

// Codel Chooser values.
const (
	CCLeft uint8 = iota
	CCRight

	NumChoosers = 2
)

// deltas gives the movement vector for each DP value.
var deltas = [NumDirections]block.Point{
	Right: {X: 1, Y: 0},
	Down:  {X: 0, Y: 1},
	Left:  {X: -1, Y: 0},
	Up:    {X: 0, Y: -1},
}

// MaxAttempts is the number of consecutive failed exits from one block
// before the interpreter halts.
const MaxAttempts = 8

// Kind classifies the outcome of a single Step call.
type Kind uint8

const (
	Advanced Kind = iota
	Blocked
	Halted
)

// Result is the outcome of one Step call. Advanced means the pointer
// entered a new colored block (From/To are both populated, From is nil
// only when there was no prior block, which never happens after
// construction). Blocked means the attempt counter advanced and the
// caller should call Step again. Halted means the eight-attempt rule
// fired; the interpreter is done.
type Result struct {
	Kind     Kind
	From, To *block.Block
	// ViaWhite is true when the advance happened by sliding across one
	// or more White codels; the command decoder treats this as a Noop
	// regardless of the hue/lightness delta between From and To.
	ViaWhite bool
}

// Engine holds the mutable pointer state: current block, DP, CC, the
// attempt counter, and (while retrying a blocked white slide) the last
// White codel reached.
type Engine struct {
	Index *block.Index

	Block *block.Block
	IP    block.Point
	DP    uint8
	CC    uint8

	Attempts uint8
	Halted   bool

	// whitePos is non-nil only between a blocked white-slide attempt
	// and its retry: it remembers the White codel the slide stalled at
	// so the next Step resumes from there instead of re-deriving an
	// exit codel from Block.
	whitePos *block.Point
}

// New creates an Engine positioned at the program's first block, with
// ip=(0,0), dp=Right, cc=CCLeft, attempts=0, halted=false.
func New(idx *block.Index, start *block.Block) *Engine {
	return &Engine{
		Index: idx,
		Block: start,
		IP:    block.Point{X: 0, Y: 0},
		DP:    Right,
		CC:    CCLeft,
	}
}

// RotateDP rotates the Direction Pointer clockwise by n steps (n may be
// negative for counter-clockwise), used by the `pointer` opcode.
func (e *Engine) RotateDP(n int) {
	e.DP = uint8(((int(e.DP)+n)%NumDirections + NumDirections) % NumDirections)
}

// ToggleCC toggles the Codel Chooser n times; only its parity matters,
// used by the `switch` opcode.
func (e *Engine) ToggleCC(n int) {
	if n%2 != 0 {
		e.CC = 1 - e.CC
	}
}

// Step attempts to move the pointer out of the current block and into the
// next one. A single call consumes exactly one attempt (Blocked or
// Halted) or produces exactly one Advanced result; it never does both.
func (e *Engine) Step() Result {
	if e.Halted {
		return Result{Kind: Halted}
	}

	var pos block.Point
	if e.whitePos != nil {
		pos = step(*e.whitePos, e.DP)
	} else {
		pos = step(exitCodel(e.Block, e.DP, e.CC), e.DP)
	}

	viaWhite := e.whitePos != nil

	for {
		c := e.Index.Grid.At(pos)
		switch {
		case c.IsChromatic():
			return e.advance(pos, viaWhite)
		case c.Kind == color.White:
			viaWhite = true
			wp := pos
			e.whitePos = &wp
			pos = step(pos, e.DP)
			continue
		default: // Black, or off-grid (Grid.At treats out-of-bounds as Black).
			return e.blocked()
		}
	}
}

func (e *Engine) advance(pos block.Point, viaWhite bool) Result {
	from := e.Block
	to := e.Index.BlockAt(pos)

	e.Block = to
	e.IP = pos
	e.Attempts = 0
	e.whitePos = nil

	return Result{Kind: Advanced, From: from, To: to, ViaWhite: viaWhite}
}

// blocked applies the attempt counter rule: even attempts toggle CC, odd
// attempts rotate DP clockwise, and the eighth attempt halts the
// interpreter. whitePos (if any) is left untouched so the next Step
// retries from the same White codel with the updated DP/CC.
func (e *Engine) blocked() Result {
	if e.Attempts%2 == 0 {
		e.ToggleCC(1)
	} else {
		e.RotateDP(1)
	}
	e.Attempts++

	if e.Attempts == MaxAttempts {
		e.Halted = true
		return Result{Kind: Halted}
	}

	return Result{Kind: Blocked}
}

func step(p block.Point, dp uint8) block.Point {
	d := deltas[dp]
	return block.Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// exitCodel selects the single pixel of blk used to attempt movement in
// direction dp with chooser cc: first the set of pixels furthest in the
// DP direction, then among those the one furthest in the CC-selected
// corner.
func exitCodel(blk *block.Block, dp, cc uint8) block.Point {
	d := deltas[dp]

	best := blk.Pixels[0]
	bestDot := d.X*best.X + d.Y*best.Y
	for _, p := range blk.Pixels[1:] {
		dot := d.X*p.X + d.Y*p.Y
		if dot > bestDot {
			best, bestDot = p, dot
		}
	}

	var candidates []block.Point
	for _, p := range blk.Pixels {
		if d.X*p.X+d.Y*p.Y == bestDot {
			candidates = append(candidates, p)
		}
	}

	return pickCorner(candidates, dp, cc)
}

// pickCorner implements the DP/CC -> corner table.
func pickCorner(pts []block.Point, dp, cc uint8) block.Point {
	best := pts[0]
	for _, p := range pts[1:] {
		if corner(p, best, dp, cc) {
			best = p
		}
	}
	return best
}

// corner reports whether p should replace cur as the extremal corner pick
// for (dp, cc).
func corner(p, cur block.Point, dp, cc uint8) bool {
	switch dp {
	case Right:
		if cc == CCLeft {
			return p.Y < cur.Y
		}
		return p.Y > cur.Y
	case Down:
		if cc == CCLeft {
			return p.X > cur.X
		}
		return p.X < cur.X
	case Left:
		if cc == CCLeft {
			return p.Y > cur.Y
		}
		return p.Y < cur.Y
	default: // Up
		if cc == CCLeft {
			return p.X < cur.X
		}
		return p.X > cur.X
	}
}
