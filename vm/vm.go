// Package vm implements the Piet stack machine: a signed-integer stack,
// the 17 opcodes decoded by package command, and the fetch/decode/execute
// loop that drives package pointer's state machine to completion.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gopiet/pietvm/block"
	"github.com/gopiet/pietvm/command"
	"github.com/gopiet/pietvm/pointer"
)

// IOError wraps a failure reading required input (EOF, malformed number).
// These are fatal: the driver should report them and exit non-zero,
// unlike stack underflow or division by zero, which are silent no-ops.
type IOError struct {
	Op  command.Op
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("vm: %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// StepResult describes the outcome of one Machine.Step call.
type StepResult struct {
	Executed bool // an opcode actually ran (false for a merely-Blocked attempt)
	Op       command.Op
	Halted   bool
}

// Machine is the full interpreter state: the pointer engine plus the
// signed-integer stack and the I/O streams the `in_number`/`in_char`/
// `out_number`/`out_char` opcodes read and write.
type Machine struct {
	*pointer.Engine

	Stack []int64

	in  *bufio.Reader
	out io.Writer

	// Trace, if set, is called after every executed (non-Blocked)
	// step. It is a library-level introspection hook, not an
	// interactive debugger; cmd/pietrun wires it to -trace.
	Trace func(command.Op)
}

// New builds a Machine positioned at the block containing (0,0). If
// (0,0) is not a chromatic codel the interpreter has nowhere to start
// and halts immediately with an empty stack.
func New(idx *block.Index, in io.Reader, out io.Writer) *Machine {
	start := idx.BlockAt(block.Point{X: 0, Y: 0})
	eng := pointer.New(idx, start)
	if start == nil {
		eng.Halted = true
	}

	return &Machine{
		Engine: eng,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Step advances the interpreter by one pointer-engine Step: either it
// consumes an attempt (Executed=false, Halted=false), executes exactly
// one opcode (Executed=true), or halts (Halted=true). A non-nil error is
// always a fatal I/O failure; stack underflow and divide-by-zero are
// never reported as errors.
func (m *Machine) Step() (StepResult, error) {
	if m.Engine.Halted {
		return StepResult{Halted: true}, nil
	}

	res := m.Engine.Step()
	switch res.Kind {
	case pointer.Halted:
		return StepResult{Halted: true}, nil
	case pointer.Blocked:
		return StepResult{}, nil
	default: // pointer.Advanced
		op := command.Noop
		if !res.ViaWhite {
			op = command.Decode(res.From.Color, res.To.Color)
		}
		if err := m.execute(op, int64(res.From.Size())); err != nil {
			return StepResult{Executed: true, Op: op}, err
		}
		return StepResult{Executed: true, Op: op}, nil
	}
}

// Run drives Step to completion: either normal halt (nil error) or a
// fatal I/O error.
func (m *Machine) Run() error {
	for {
		r, err := m.Step()
		if err != nil {
			return err
		}
		if r.Halted {
			return nil
		}
		if r.Executed && m.Trace != nil {
			m.Trace(r.Op)
		}
	}
}

func (m *Machine) execute(op command.Op, pushSize int64) error {
	h, ok := handlers[op]
	if !ok {
		return nil
	}
	return h(m, pushSize)
}

func (m *Machine) push(v int64) {
	m.Stack = append(m.Stack, v)
}

func (m *Machine) pop() (int64, bool) {
	n := len(m.Stack)
	if n == 0 {
		return 0, false
	}
	v := m.Stack[n-1]
	m.Stack = m.Stack[:n-1]
	return v, true
}

func (m *Machine) peek() (int64, bool) {
	n := len(m.Stack)
	if n == 0 {
		return 0, false
	}
	return m.Stack[n-1], true
}

// binary pops b then a (stack order […,a,b]), applies f, and pushes the
// result. If f reports !ok (used for divide/mod by zero) both operands
// are restored and the stack is left exactly as it was, matching the
// documented "ignore the command" policy. If fewer than two values are
// present the command is a no-op and nothing is popped.
func (m *Machine) binary(f func(a, b int64) (int64, bool)) {
	if len(m.Stack) < 2 {
		return
	}
	b, _ := m.pop()
	a, _ := m.pop()
	r, ok := f(a, b)
	if !ok {
		m.push(a)
		m.push(b)
		return
	}
	m.push(r)
}

// unary pops the top, applies f, and pushes the result. A no-op on an
// empty stack.
func (m *Machine) unary(f func(x int64) int64) {
	x, ok := m.pop()
	if !ok {
		return
	}
	m.push(f(x))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// floorMod returns a mod b with the sign of b.
func floorMod(a, b int64) int64 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func (m *Machine) rollOp() {
	if len(m.Stack) < 2 {
		return
	}
	rolls, _ := m.pop()
	depth, _ := m.pop()

	if depth < 0 || depth > int64(len(m.Stack)) {
		return
	}
	d := int(depth)
	if d == 0 {
		return
	}

	r := int(((rolls % int64(d)) + int64(d)) % int64(d))
	if r == 0 {
		return
	}

	sub := m.Stack[len(m.Stack)-d:]
	rotated := make([]int64, d)
	for i := 0; i < d; i++ {
		rotated[i] = sub[(i-r+d)%d]
	}
	copy(sub, rotated)
}

func (m *Machine) pointerOp() {
	x, ok := m.pop()
	if !ok {
		return
	}
	m.Engine.RotateDP(int(x % pointer.NumDirections))
}

func (m *Machine) switchOp() {
	x, ok := m.pop()
	if !ok {
		return
	}
	if x%2 != 0 {
		m.Engine.ToggleCC(1)
	}
}

func (m *Machine) duplicate() {
	v, ok := m.peek()
	if !ok {
		return
	}
	m.push(v)
}

func (m *Machine) readNumber() (int64, error) {
	var sb strings.Builder

	r, _, err := m.in.ReadRune()
	for err == nil && unicode.IsSpace(r) {
		r, _, err = m.in.ReadRune()
	}
	if err != nil {
		return 0, &IOError{Op: command.InNumber, Err: err}
	}
	sb.WriteRune(r)

	for {
		r, _, err := m.in.ReadRune()
		if err != nil {
			break
		}
		if unicode.IsSpace(r) {
			break
		}
		sb.WriteRune(r)
	}

	v, err := strconv.ParseInt(sb.String(), 10, 64)
	if err != nil {
		return 0, &IOError{Op: command.InNumber, Err: err}
	}
	return v, nil
}

func (m *Machine) readChar() (rune, error) {
	r, _, err := m.in.ReadRune()
	if err != nil {
		return 0, &IOError{Op: command.InChar, Err: err}
	}
	return r, nil
}

func (m *Machine) writeChar(x int64) {
	r := rune(x)
	if x < 0 || !utf8.ValidRune(r) {
		r = utf8.RuneError
	}
	fmt.Fprintf(m.out, "%c", r)
}

var handlers = map[command.Op]func(m *Machine, pushSize int64) error{
	command.Noop: func(m *Machine, _ int64) error { return nil },

	command.Push: func(m *Machine, size int64) error {
		m.push(size)
		return nil
	},

	command.Pop: func(m *Machine, _ int64) error {
		m.pop()
		return nil
	},

	command.Add: func(m *Machine, _ int64) error {
		m.binary(func(a, b int64) (int64, bool) { return a + b, true })
		return nil
	},

	command.Subtract: func(m *Machine, _ int64) error {
		m.binary(func(a, b int64) (int64, bool) { return a - b, true })
		return nil
	},

	command.Multiply: func(m *Machine, _ int64) error {
		m.binary(func(a, b int64) (int64, bool) { return a * b, true })
		return nil
	},

	command.Divide: func(m *Machine, _ int64) error {
		m.binary(func(a, b int64) (int64, bool) {
			if b == 0 {
				return 0, false
			}
			return floorDiv(a, b), true
		})
		return nil
	},

	command.Mod: func(m *Machine, _ int64) error {
		m.binary(func(a, b int64) (int64, bool) {
			if b == 0 {
				return 0, false
			}
			return floorMod(a, b), true
		})
		return nil
	},

	command.Not: func(m *Machine, _ int64) error {
		m.unary(func(x int64) int64 {
			if x == 0 {
				return 1
			}
			return 0
		})
		return nil
	},

	command.Greater: func(m *Machine, _ int64) error {
		m.binary(func(a, b int64) (int64, bool) {
			if a > b {
				return 1, true
			}
			return 0, true
		})
		return nil
	},

	command.Pointer: func(m *Machine, _ int64) error {
		m.pointerOp()
		return nil
	},

	command.Switch: func(m *Machine, _ int64) error {
		m.switchOp()
		return nil
	},

	command.Duplicate: func(m *Machine, _ int64) error {
		m.duplicate()
		return nil
	},

	command.Roll: func(m *Machine, _ int64) error {
		m.rollOp()
		return nil
	},

	command.InNumber: func(m *Machine, _ int64) error {
		v, err := m.readNumber()
		if err != nil {
			return err
		}
		m.push(v)
		return nil
	},

	command.InChar: func(m *Machine, _ int64) error {
		r, err := m.readChar()
		if err != nil {
			return err
		}
		m.push(int64(r))
		return nil
	},

	command.OutNumber: func(m *Machine, _ int64) error {
		x, ok := m.pop()
		if !ok {
			return nil
		}
		fmt.Fprintf(m.out, "%d", x)
		return nil
	},

	command.OutChar: func(m *Machine, _ int64) error {
		x, ok := m.pop()
		if !ok {
			return nil
		}
		m.writeChar(x)
		return nil
	},
}
