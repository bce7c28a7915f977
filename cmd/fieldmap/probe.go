package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/banshee-data/fieldmap/internal/fieldmap"
)

func runProbe(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	var src sourceFlags
	src.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("probe needs x y z, got %d arguments", fs.NArg())
	}

	var p fieldmap.Vec3
	for i := range p {
		v, err := strconv.ParseFloat(fs.Arg(i), 64)
		if err != nil {
			return fmt.Errorf("coordinate %d: %w", i+1, err)
		}
		p[i] = v
	}

	l, err := src.load()
	if err != nil {
		return err
	}

	b := l.toTesla(l.m.Evaluate(p))
	fmt.Fprintf(stdout, "%g %g %g\n", b[0], b[1], b[2])
	return nil
}
