package command

import (
	"testing"

	"github.com/gopiet/pietvm/color"
)

func c(hue, lightness uint8) color.Color {
	return color.Color{Kind: color.Chromatic, Hue: hue, Lightness: lightness}
}

func TestDecodeTable(t *testing.T) {
	red := c(color.Red, color.Light)

	cases := []struct {
		dh, dl uint8
		want   Op
	}{
		{0, 0, Noop},
		{0, 1, Push},
		{0, 2, Pop},
		{1, 0, Add},
		{1, 1, Subtract},
		{1, 2, Multiply},
		{2, 0, Divide},
		{2, 1, Mod},
		{2, 2, Not},
		{3, 0, Greater},
		{3, 1, Pointer},
		{3, 2, Switch},
		{4, 0, Duplicate},
		{4, 1, Roll},
		{4, 2, InNumber},
		{5, 0, InChar},
		{5, 1, OutNumber},
		{5, 2, OutChar},
	}

	for _, tc := range cases {
		to := c((red.Hue+tc.dh)%color.NumHues, (red.Lightness+tc.dl)%color.NumLightnesses)
		if got := Decode(red, to); got != tc.want {
			t.Errorf("Decode(dh=%d,dl=%d) = %v, want %v", tc.dh, tc.dl, got, tc.want)
		}
	}
}

func TestDecodeWrapsModularly(t *testing.T) {
	// Magenta -> Red wraps the hue cycle (5 -> 0, delta 1); Dark -> Light
	// wraps the lightness cycle (2 -> 0, delta 1). dh=1, dl=1 is Subtract.
	from := c(color.Magenta, color.Dark)
	to := c(color.Red, color.Light)

	if got := Decode(from, to); got != Subtract {
		t.Errorf("Decode(magenta-dark -> red-light) = %v, want Subtract", got)
	}
}

func TestOpString(t *testing.T) {
	if s := Push.String(); s != "push" {
		t.Errorf("Push.String() = %q, want push", s)
	}
	if s := Op(200).String(); s != "unknown" {
		t.Errorf("Op(200).String() = %q, want unknown", s)
	}
}
