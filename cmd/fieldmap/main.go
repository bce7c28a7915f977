// Command fieldmap inspects and samples 3D magnetic field tables.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/fieldmap/internal/config"
	"github.com/banshee-data/fieldmap/internal/version"
)

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	var le *loadError
	if errors.As(err, &le) {
		config.Abort(le.key, le.path, le.err)
		return
	}
	log.Fatalf("fieldmap: %v", err)
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("fieldmap", flag.ContinueOnError)
	showVersion := fs.Bool("version", false, "Print version information and exit")
	fs.Usage = func() { printUsage(fs.Output()) }
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		printVersion(stdout)
		return nil
	}
	if fs.NArg() < 1 {
		printUsage(fs.Output())
		return flag.ErrHelp
	}

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "info":
		return runInfo(rest, stdout)
	case "probe":
		return runProbe(rest, stdout)
	case "scan":
		return runScan(rest, stdout)
	case "scans":
		return runScans(rest, stdout)
	case "version":
		printVersion(stdout)
		return nil
	case "help":
		printUsage(stdout)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "fieldmap version %s\n", version.String())
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `fieldmap - inspect and sample 3D magnetic field tables

Usage: fieldmap <command> [options]

Commands:
  info     Load a table and print its grid, bounds and units
  probe    Print the world-space field at a point: probe [options] x y z
  scan     Sample the field along a segment and print CSV
  scans    Manage stored scans: scans -db <file> [list|show <id>|delete <id>|schema|rollback]
  version  Show version information
  help     Show this help message

Table selection (all commands):
  -table <file>        Field table to load
  -rot <r00,...,r22>   Row-major local-to-world rotation (default identity)
  -shift <x,y,z>       Position of the table origin in the world, mm
  -config <file.json>  Parameter file; use with -component instead of -table
  -component <name>    Component whose Ge/<name>/MagneticField3DTable is loaded

Scan options:
  -from <x,y,z> -to <x,y,z>  Segment end points, mm
  -n <count>                 Number of samples (default 101)
  -workers <count>           Concurrent evaluators (default NumCPU)
  -db <file>                 Store the scan in a SQLite database
  -png <file>                Save a profile plot
  -html <file>               Save an interactive profile chart

Example:
  fieldmap scan -table dipole.table -from 0,0,-100 -to 0,0,100 -n 201 -png dipole.png`)
}
