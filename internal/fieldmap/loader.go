package fieldmap

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/fieldmap/internal/fsutil"
	"github.com/banshee-data/fieldmap/internal/monitoring"
	"github.com/banshee-data/fieldmap/internal/units"
)

// headerSentinel is the first token of the line that ends the header.
const headerSentinel = "0"

// maxLineBytes bounds a single table line.
const maxLineBytes = 1 << 20

// DefaultMaxNodes caps nx*ny*nz when Loader.MaxNodes is zero. At three
// float64 components per node this is 768 MiB of grid.
const DefaultMaxNodes = 1 << 25

var logf = monitoring.Prefixed("fieldmap")

// Loader reads field tables. The zero value is not usable; use NewLoader.
type Loader struct {
	FS       fsutil.FileSystem
	Resolver *units.Resolver

	// MaxNodes bounds the grid size a header may declare; 0 means DefaultMaxNodes.
	MaxNodes int
}

// NewLoader returns a loader reading from the OS filesystem and resolving
// units against units.DefaultSystem.
func NewLoader() *Loader {
	return &Loader{
		FS:       fsutil.OSFileSystem{},
		Resolver: units.NewResolver(units.DefaultSystem),
	}
}

// Load reads and validates the table at path using NewLoader.
func Load(path string) (*Table, error) {
	return NewLoader().Load(path)
}

// Load opens path and parses it as a field table.
func (l *Loader) Load(path string) (*Table, error) {
	f, err := l.FS.Open(path)
	if err != nil {
		return nil, &ResourceError{Path: path, Err: err}
	}
	defer f.Close()

	return l.Parse(f, path)
}

type parseState int

const (
	readingDims parseState = iota
	readingHeader
	readingData
)

// tableParser carries the state of one Parse call.
type tableParser struct {
	name     string
	resolver *units.Resolver
	maxNodes int

	state  parseState
	dims   Dimensions
	header []HeaderField
	units  UnitTable
	grid   *Grid

	rows        int
	first, last Vec3
}

// Parse reads a field table from r. name is used in error messages.
//
// The first non-blank line holds the node counts nx ny nz. Header lines
// "<index> <name> [<unit>]" follow until a line starting with "0". Every
// remaining line is a data row "x y z bx by bz", with z varying fastest,
// then y, then x.
func (l *Loader) Parse(r io.Reader, name string) (*Table, error) {
	p := &tableParser{name: name, resolver: l.Resolver, maxNodes: l.MaxNodes}
	if p.maxNodes <= 0 {
		p.maxNodes = DefaultMaxNodes
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}

		var err error
		switch p.state {
		case readingDims:
			err = p.readDims(tokens, line, lineNo)
		case readingHeader:
			err = p.readHeaderLine(tokens, line, lineNo)
		case readingData:
			err = p.readRow(tokens, lineNo)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ResourceError{Path: name, Err: err}
	}

	return p.finish()
}

func (p *tableParser) readDims(tokens []string, line string, lineNo int) error {
	if len(tokens) != 3 {
		return &HeaderFormatError{Path: p.name, LineNo: lineNo, Line: line,
			Reason: fmt.Sprintf("dimension line must hold 3 node counts, found %d tokens", len(tokens))}
	}

	var n [3]int
	total := 1
	for i, tok := range tokens {
		v, err := strconv.Atoi(tok)
		if err != nil {
			return &HeaderFormatError{Path: p.name, LineNo: lineNo, Line: line,
				Reason: fmt.Sprintf("node count %q for %s is not an integer", tok, Axis(i))}
		}
		if v <= 0 {
			return &HeaderFormatError{Path: p.name, LineNo: lineNo, Line: line,
				Reason: fmt.Sprintf("node count for %s must be positive, got %d", Axis(i), v)}
		}
		// Checked before multiplying so the product cannot overflow.
		if v > p.maxNodes/total {
			return &HeaderFormatError{Path: p.name, LineNo: lineNo, Line: line,
				Reason: fmt.Sprintf("grid %s x %s x %s exceeds the limit of %d nodes", tokens[0], tokens[1], tokens[2], p.maxNodes)}
		}
		total *= v
		n[i] = v
	}

	p.dims = Dimensions{NX: n[0], NY: n[1], NZ: n[2]}
	p.state = readingHeader
	return nil
}

func (p *tableParser) readHeaderLine(tokens []string, line string, lineNo int) error {
	if tokens[0] == headerSentinel && len(p.header) > 0 {
		return p.endHeader()
	}

	switch {
	case len(tokens) < 2:
		return nil
	case len(tokens) > 3:
		return &HeaderFormatError{Path: p.name, LineNo: lineNo, Line: line,
			Reason: "header has an unknown format"}
	}

	f := HeaderField{Name: tokens[1]}
	if len(tokens) == 3 {
		f.Unit = tokens[2]
	}
	p.header = append(p.header, f)
	return nil
}

// defaultUnits apply by position when the header declares no units.
var defaultUnits = [numColumns]string{units.MM, units.MM, units.MM, units.Tesla, units.Tesla, units.Tesla}

func (p *tableParser) endHeader() error {
	withUnits := 0
	for _, f := range p.header {
		if f.Unit != "" {
			withUnits++
		}
	}

	switch {
	case withUnits == 0 && len(p.header) > numColumns:
		return &HeaderFormatError{Path: p.name,
			Reason: "only six fields (x,y,z,Bx,By,Bz) are allowed without specified units; include explicit unit declarations in the header"}
	case withUnits != 0 && withUnits != len(p.header):
		return &HeaderFormatError{Path: p.name,
			Reason: fmt.Sprintf("%d of %d header fields declare a unit; declare units for all fields or none", withUnits, len(p.header))}
	case len(p.header) < numColumns:
		return &HeaderFormatError{Path: p.name,
			Reason: fmt.Sprintf("header declares %d fields, rows need at least six (x,y,z,Bx,By,Bz)", len(p.header))}
	}

	if withUnits == 0 {
		logf("No units specified, setting to 'mm' for x,y,z and 'tesla' for Bx,By,Bz")
		for i := range p.header {
			p.header[i].Unit = defaultUnits[i]
		}
	}

	// Units are keyed by field name; columns stay positional.
	var declared [numColumns]bool
	for _, f := range p.header {
		scale := p.resolver.Resolve(f.Unit)
		c, ok := ParseColumn(f.Name)
		if !ok {
			logf("header field %q in %s is not one of X,Y,Z,BX,BY,BZ; its unit is ignored", f.Name, p.name)
			continue
		}
		p.units[c] = scale
		declared[c] = true
	}
	for c, ok := range declared {
		if !ok {
			return &HeaderFormatError{Path: p.name,
				Reason: fmt.Sprintf("header does not declare field %s", Column(c))}
		}
	}

	p.grid = NewGrid(p.dims)
	p.state = readingData
	return nil
}

func (p *tableParser) readRow(tokens []string, lineNo int) error {
	if len(tokens) != len(p.header) {
		return &RowShapeError{Path: p.name, LineNo: lineNo, Got: len(tokens), Want: len(p.header),
			Reason: "file contains columns not in the header"}
	}
	if p.rows >= len(p.grid.BX) {
		return &RowShapeError{Path: p.name, LineNo: lineNo,
			Reason: fmt.Sprintf("more data rows than the %s grid holds", p.dims)}
	}

	var v [numColumns]float64
	for c := range v {
		x, err := strconv.ParseFloat(tokens[c], 64)
		if err != nil {
			return &RowShapeError{Path: p.name, LineNo: lineNo,
				Reason: fmt.Sprintf("column %s is not numeric", Column(c)), Err: err}
		}
		v[c] = x * p.units[c]
	}

	pos := Vec3{v[ColX], v[ColY], v[ColZ]}
	if p.rows == 0 {
		p.first = pos
	}
	p.last = pos

	// Rows arrive z fastest, then y, then x, which is the flat grid order.
	p.grid.BX[p.rows] = v[ColBX]
	p.grid.BY[p.rows] = v[ColBY]
	p.grid.BZ[p.rows] = v[ColBZ]
	p.rows++
	return nil
}

func (p *tableParser) finish() (*Table, error) {
	switch p.state {
	case readingDims:
		return nil, &HeaderFormatError{Path: p.name, Reason: "no dimension line found"}
	case readingHeader:
		return nil, &HeaderFormatError{Path: p.name, Reason: "header is not terminated by a line starting with 0"}
	}

	if want := p.dims.Count(); p.rows != want {
		return nil, &RowShapeError{Path: p.name, Got: p.rows, Want: want,
			Reason: fmt.Sprintf("data row count does not match the %s grid", p.dims)}
	}

	t := &Table{
		Source: p.name,
		Header: p.header,
		Units:  p.units,
		Grid:   p.grid,
		Box:    boxFromCorners(p.first, p.last),
	}
	logf("loaded %s: %s nodes, x [%g, %g] y [%g, %g] z [%g, %g]", p.name, p.dims,
		t.Box[AxisX].Min, t.Box[AxisX].Max, t.Box[AxisY].Min, t.Box[AxisY].Max, t.Box[AxisZ].Min, t.Box[AxisZ].Max)
	return t, nil
}
