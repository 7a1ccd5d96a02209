// Package command implements the Piet transition decoder: the fixed 6x3
// lookup from (delta-hue, delta-lightness) to one of the 17 stack-machine
// opcodes.
// https://www.dangermouse.net/esoteric/piet.html
package command

import "github.com/gopiet/pietvm/color"

// Op identifies one of the 17 Piet stack-machine operations.
type Op uint8

const (
	Noop Op = iota
	Push
	Pop
	Add
	Subtract
	Multiply
	Divide
	Mod
	Not
	Greater
	Pointer
	Switch
	Duplicate
	Roll
	InNumber
	InChar
	OutNumber
	OutChar
)

var opNames = [...]string{
	Noop:      "noop",
	Push:      "push",
	Pop:       "pop",
	Add:       "add",
	Subtract:  "subtract",
	Multiply:  "multiply",
	Divide:    "divide",
	Mod:       "mod",
	Not:       "not",
	Greater:   "greater",
	Pointer:   "pointer",
	Switch:    "switch",
	Duplicate: "duplicate",
	Roll:      "roll",
	InNumber:  "in_number",
	InChar:    "in_char",
	OutNumber: "out_number",
	OutChar:   "out_char",
}

func (o Op) String() string {
	if int(o) < len(opNames) && opNames[o] != "" {
		return opNames[o]
	}
	return "unknown"
}

// table[deltaHue][deltaLightness] gives the opcode for that transition, per
// the canonical Piet command chart:
//
//	         dl=0        dl=1        dl=2
//	dh=0   noop        push        pop
//	dh=1   add         subtract    multiply
//	dh=2   divide      mod         not
//	dh=3   greater     pointer     switch
//	dh=4   duplicate   roll        in_number
//	dh=5   in_char     out_number  out_char
var table = [color.NumHues][color.NumLightnesses]Op{
	{Noop, Push, Pop},
	{Add, Subtract, Multiply},
	{Divide, Mod, Not},
	{Greater, Pointer, Switch},
	{Duplicate, Roll, InNumber},
	{InChar, OutNumber, OutChar},
}

// Decode computes the opcode for a transition between two chromatic
// blocks. Callers are responsible for the White-to-color (always Noop) and
// program-start (no command at all) special cases; Decode only implements
// the colored-to-colored table lookup.
func Decode(from, to color.Color) Op {
	dh := color.HueDelta(from, to)
	dl := color.LightnessDelta(from, to)
	return table[dh][dl]
}
