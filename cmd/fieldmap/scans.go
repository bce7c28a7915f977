package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/banshee-data/fieldmap/internal/db"
)

// runScans manages stored scans: list, show <id>, delete <id>, schema, rollback.
func runScans(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("scans", flag.ContinueOnError)
	dbPath := fs.String("db", "", "SQLite database holding the scans (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return fmt.Errorf("scans requires -db")
	}
	// Open would create an empty database.
	if _, err := os.Stat(*dbPath); err != nil {
		return err
	}

	action := "list"
	if fs.NArg() > 0 {
		action = fs.Arg(0)
	}
	needID := action == "show" || action == "delete"
	if needID && fs.NArg() != 2 {
		return fmt.Errorf("scans %s needs a run id", action)
	}

	store, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	switch action {
	case "list":
		return listScans(stdout, store)
	case "show":
		return showScan(stdout, store, fs.Arg(1))
	case "delete":
		if err := store.DeleteScan(fs.Arg(1)); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("no scan %s", fs.Arg(1))
			}
			return err
		}
		fmt.Fprintf(stdout, "deleted %s\n", fs.Arg(1))
		return nil
	case "schema":
		version, dirty, err := store.MigrateVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "schema version %d dirty=%t\n", version, dirty)
		return nil
	case "rollback":
		if err := store.MigrateDown(); err != nil {
			return err
		}
		version, _, err := store.MigrateVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "rolled back to schema version %d\n", version)
		return nil
	default:
		return fmt.Errorf("unknown scans action %q", action)
	}
}

func listScans(w io.Writer, store *db.DB) error {
	runs, err := store.ListScans()
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %-24s %5d samples  max %g T\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Source, r.Count, r.MaxField)
	}
	return nil
}

func showScan(w io.Writer, store *db.DB, id string) error {
	run, err := store.GetScan(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no scan %s", id)
		}
		return err
	}
	samples, err := store.Samples(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "# run %s source %s", run.ID, run.Source)
	if run.Component != "" {
		fmt.Fprintf(w, " component %s", run.Component)
	}
	fmt.Fprintln(w)
	return writeCSV(w, samples)
}
