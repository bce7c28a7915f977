package monitor

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/fieldmap/internal/fsutil"
)

// RenderProfileHTML renders p as an interactive line chart to w.
func RenderProfileHTML(w io.Writer, p *Profile) error {
	if p.Len() == 0 {
		return ErrEmptyProfile
	}

	x := make([]string, p.Len())
	for i, d := range p.Distance {
		x[i] = strconv.FormatFloat(d, 'g', 6, 64)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: p.Title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: p.Title, Subtitle: p.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Distance (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Field (T)", NameLocation: "middle", NameGap: 50}),
	)

	line.SetXAxis(x)
	for _, s := range p.series() {
		data := make([]opts.LineData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.name, data)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// SaveProfileHTML writes the chart of p to path.
func SaveProfileHTML(fsys fsutil.FileSystem, p *Profile, path string) error {
	if p.Len() == 0 {
		return ErrEmptyProfile
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := RenderProfileHTML(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
