// Command pietrun executes a Piet program stored as an image.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/gopiet/pietvm/command"
	"github.com/gopiet/pietvm/piet"
)

const (
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

var trace = flag.Bool("trace", false, "print each executed opcode to stderr as it runs")

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: pietrun [-trace] <image>")
		os.Exit(2)
	}

	stdout := colorable.NewColorableStdout()

	d, err := piet.Open(flag.Arg(0), os.Stdin, stdout)
	if err != nil {
		log.Fatalf("pietrun: %v", err)
	}

	if *trace {
		d.Machine.Trace = traceFunc(colorable.NewColorableStderr())
	}

	if err := d.RunWithInterrupt(context.Background()); err != nil {
		log.Fatalf("pietrun: %v", err)
	}
}

// traceFunc returns the -trace callback, writing to w and dimming opcode
// names when stderr is a real terminal, leaving them plain when stderr is
// piped or redirected.
func traceFunc(w io.Writer) func(command.Op) {
	colorize := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return func(op command.Op) {
		if colorize {
			fmt.Fprintf(w, "%s%s%s\n", ansiDim, op, ansiReset)
			return
		}
		fmt.Fprintln(w, op)
	}
}
