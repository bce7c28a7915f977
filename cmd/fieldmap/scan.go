package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/fieldmap/internal/db"
	"github.com/banshee-data/fieldmap/internal/fieldmap"
	"github.com/banshee-data/fieldmap/internal/fsutil"
	"github.com/banshee-data/fieldmap/internal/monitor"
)

func runScan(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	var src sourceFlags
	src.register(fs)
	fromFlag := fs.String("from", "", "Segment start x,y,z in mm (required)")
	toFlag := fs.String("to", "", "Segment end x,y,z in mm (required)")
	n := fs.Int("n", 101, "Number of samples")
	workers := fs.Int("workers", runtime.NumCPU(), "Concurrent evaluators")
	dbPath := fs.String("db", "", "SQLite database to store the scan in")
	pngPath := fs.String("png", "", "Write a profile plot to this file")
	htmlPath := fs.String("html", "", "Write an interactive profile chart to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *fromFlag == "" || *toFlag == "" {
		return fmt.Errorf("scan requires -from and -to")
	}
	from, err := parseVec(*fromFlag)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	to, err := parseVec(*toFlag)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}
	if *n < 2 {
		return fmt.Errorf("-n must be at least 2, got %d", *n)
	}
	if *workers < 1 {
		*workers = 1
	}

	l, err := src.load()
	if err != nil {
		return err
	}

	samples, err := sampleSegment(context.Background(), l, from, to, *n, *workers)
	if err != nil {
		return err
	}
	if err := writeCSV(stdout, samples); err != nil {
		return err
	}

	pos := make([][3]float64, len(samples))
	field := make([][3]float64, len(samples))
	for i, s := range samples {
		pos[i], field[i] = s.Pos, s.Field
	}
	profile, err := monitor.NewProfile(fmt.Sprintf("Field along (%g,%g,%g) to (%g,%g,%g)", from[0], from[1], from[2], to[0], to[1], to[2]), pos, field)
	if err != nil {
		return err
	}
	profile.Subtitle = l.source

	if *dbPath != "" {
		store, err := db.Open(*dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.RecordScan(db.ScanRun{
			Source:    l.source,
			Component: l.component,
			From:      from,
			To:        to,
			MaxField:  profile.MaxMagnitude(),
		}, samples)
		if err != nil {
			return err
		}
		log.Printf("stored scan %s (%d samples) in %s", id, len(samples), *dbPath)
	}

	out := fsutil.OSFileSystem{}
	if *pngPath != "" {
		if err := monitor.SaveProfilePNG(out, profile, *pngPath); err != nil {
			return err
		}
	}
	if *htmlPath != "" {
		if err := monitor.SaveProfileHTML(out, profile, *htmlPath); err != nil {
			return err
		}
	}
	return nil
}

// sampleSegment evaluates n evenly spaced points from from to to inclusive,
// split across workers goroutines. Fields are returned in tesla.
func sampleSegment(ctx context.Context, l *loaded, from, to fieldmap.Vec3, n, workers int) ([]db.Sample, error) {
	samples := make([]db.Sample, n)
	chunk := (n + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				t := float64(i) / float64(n-1)
				var p fieldmap.Vec3
				for a := range p {
					p[a] = from[a] + t*(to[a]-from[a])
				}
				samples[i] = db.Sample{Seq: i, Pos: p, Field: l.toTesla(l.m.Evaluate(p))}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}

func writeCSV(w io.Writer, samples []db.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"seq", "x_mm", "y_mm", "z_mm", "bx_T", "by_T", "bz_T"}); err != nil {
		return err
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, s := range samples {
		rec := []string{strconv.Itoa(s.Seq), f(s.Pos[0]), f(s.Pos[1]), f(s.Pos[2]), f(s.Field[0]), f(s.Field[1]), f(s.Field[2])}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
