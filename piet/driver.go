// Package piet wires the color, block, pointer, vm, and pietimg packages
// into a runnable interpreter and adds the one piece none of them own:
// graceful interruption of a running program.
package piet

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gopiet/pietvm/block"
	"github.com/gopiet/pietvm/pietimg"
	"github.com/gopiet/pietvm/vm"
)

// Driver owns a loaded program's Machine and drives it to completion.
type Driver struct {
	Machine *vm.Machine
}

// Open loads a source image from path and builds a Driver ready to Run.
func Open(path string, in io.Reader, out io.Writer) (*Driver, error) {
	g, err := pietimg.Load(path)
	if err != nil {
		return nil, err
	}
	return FromGrid(g, in, out), nil
}

// FromGrid builds a Driver directly from an already-classified grid,
// skipping image decoding. Useful for embedding Piet programs built
// programmatically rather than loaded from a file.
func FromGrid(g *block.Grid, in io.Reader, out io.Writer) *Driver {
	return &Driver{Machine: vm.New(block.Build(g), in, out)}
}

// Run steps the machine to completion or until ctx is canceled. A
// canceled context surfaces as ctx.Err(); any other return value is
// either nil (the program halted normally) or a *vm.IOError (a fatal
// read failure).
func (d *Driver) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r, err := d.Machine.Step()
		if err != nil {
			return err
		}
		if r.Halted {
			return nil
		}
		if r.Executed && d.Machine.Trace != nil {
			d.Machine.Trace(r.Op)
		}
	}
}

// RunWithInterrupt runs the program the same as Run, but also cancels it
// on SIGINT/SIGTERM, leaving the parent ctx free for other cancellation
// reasons (tests, timeouts).
func (d *Driver) RunWithInterrupt(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-cctx.Done():
		}
	}()

	return d.Run(cctx)
}
