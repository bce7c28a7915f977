package monitor

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/fieldmap/internal/fsutil"
)

// SaveProfilePNG plots every field component of p against distance and
// writes the PNG to path.
func SaveProfilePNG(fsys fsutil.FileSystem, p *Profile, path string) error {
	if p.Len() == 0 {
		return ErrEmptyProfile
	}

	pl := plot.New()
	pl.Title.Text = p.Title
	pl.X.Label.Text = "Distance (mm)"
	pl.Y.Label.Text = "Field (T)"

	all := p.series()
	colors := generateColors(len(all))
	for i, s := range all {
		pts := make(plotter.XYs, p.Len())
		for j := range pts {
			pts[j] = plotter.XY{X: p.Distance[j], Y: s.values[j]}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		line.Color = colors[i]
		line.Width = vg.Points(1)
		pl.Add(line)
		pl.Legend.Add(s.name, line)
	}

	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Legend.XOffs = -10
	pl.Legend.YOffs = -10

	wt, err := pl.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render profile plot: %w", err)
	}

	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
