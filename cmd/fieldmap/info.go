package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/banshee-data/fieldmap/internal/fieldmap"
	"github.com/banshee-data/fieldmap/internal/units"
)

func runInfo(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	var src sourceFlags
	src.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	l, err := src.load()
	if err != nil {
		return err
	}
	printInfo(stdout, l)
	return nil
}

func printInfo(w io.Writer, l *loaded) {
	t := l.m.Table()

	fmt.Fprintf(w, "source:     %s\n", l.source)
	if l.component != "" {
		fmt.Fprintf(w, "component:  %s\n", l.component)
	}
	fmt.Fprintf(w, "grid:       %s (%d nodes)\n", t.Grid.Dims, t.Grid.Dims.Count())
	for a := fieldmap.AxisX; a <= fieldmap.AxisZ; a++ {
		b := t.Box[a]
		inverted := ""
		if b.Inverted {
			inverted = " inverted"
		}
		fmt.Fprintf(w, "%s bounds:   [%g, %g] mm%s\n", a, b.Min, b.Max, inverted)
	}
	fmt.Fprintln(w, "units:")
	for _, h := range t.Header {
		c, ok := fieldmap.ParseColumn(h.Name)
		if !ok {
			fmt.Fprintf(w, "  %-4s %-8s ignored\n", h.Name, h.Unit)
			continue
		}
		fmt.Fprintf(w, "  %-4s %-8s scale %g%s\n", h.Name, h.Unit, t.Units.Scale(c), unitNote(c, h.Unit))
	}

	f := l.m.Frame()
	r := f.Rotation()
	fmt.Fprintf(w, "rotation:   [%g %g %g; %g %g %g; %g %g %g]\n", r[0], r[1], r[2], r[3], r[4], r[5], r[6], r[7], r[8])
	tr := f.Translation()
	fmt.Fprintf(w, "shift:      (%g, %g, %g) mm\n", tr[0], tr[1], tr[2])
}

// unitNote flags a declared unit that is unrecognised or measures the wrong
// quantity for its column.
func unitNote(c fieldmap.Column, token string) string {
	want := units.Length
	if c >= fieldmap.ColBX {
		want = units.MagneticField
	}
	if !units.Known(token) {
		return " (unrecognised unit, values taken as base units)"
	}
	if kind := units.KindOf(token); kind != want {
		return fmt.Sprintf(" (%s unit on a %s column)", kind, want)
	}
	return ""
}
