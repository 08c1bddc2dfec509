package macroproc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nickwells/check.mod/v2/check"
	"github.com/nickwells/filecheck.mod/filecheck"
	"github.com/nickwells/location.mod/location"
)

// DfltNestingLimit is the default limit on the depth of nested macro
// re-scans. A macro whose expansion keeps producing further macro calls
// fails once this many substitutions have been made without the engine
// returning to plain input.
const DfltNestingLimit = 1024

// ErrNestingLimitExceeded is returned when macro expansion exceeds the
// nesting limit. This is what stops a macro that expands to an
// invocation of itself from running forever.
var ErrNestingLimitExceeded = errors.New("macro nesting limit exceeded")

// Processor holds all the state of the macro processor: the delimiters,
// the macro table and the diversion buffers. The state lives for as long
// as the Processor does, so macros defined while processing one input
// remain visible while processing the next and diversions opened in one
// input can be drained in a later one.
//
// You should create a Processor with NewProcessor and then call Process
// on each input in turn, followed by Finish.
type Processor struct {
	delims *Delims
	table  *Table
	divs   *Diversions

	builtins map[string]builtinFn

	out          io.Writer
	debugOut     io.Writer
	nestingLimit int
	flushAtEnd   bool

	incDirs  []string
	suffixes []string
	incCache map[string]string

	traced map[string]bool
}

// OptFunc can be passed to NewProcessor to configure the Processor
type OptFunc func(p *Processor) error

// NewProcessor creates a new Processor with default delimiters, an empty
// diversion store and every builtin macro bound in the table.
func NewProcessor(opts ...OptFunc) (*Processor, error) {
	p := &Processor{
		delims:       NewDelims(),
		table:        &Table{},
		builtins:     builtinRegistry(),
		out:          os.Stdout,
		debugOut:     os.Stderr,
		nestingLimit: DfltNestingLimit,
		flushAtEnd:   true,
		suffixes:     []string{""},
		incCache:     make(map[string]string),
		traced:       make(map[string]bool),
	}

	for _, o := range opts {
		if err := o(p); err != nil {
			return nil, err
		}
	}

	p.divs = NewDiversions(p.out)

	names := make([]string, 0, len(p.builtins))
	for name := range p.builtins {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		p.table.Define(name, BuiltinValue(name))
	}

	return p, nil
}

// Output returns an OptFunc that will set the primary output writer. The
// default is standard output.
func Output(w io.Writer) OptFunc {
	return func(p *Processor) error {
		p.out = w

		return nil
	}
}

// DebugOutput returns an OptFunc that will set the writer used for trace
// and debug reports. The default is standard error.
func DebugOutput(w io.Writer) OptFunc {
	return func(p *Processor) error {
		p.SetDebugOutput(w)

		return nil
	}
}

// NestingLimit returns an OptFunc that will set the limit on the depth
// of nested macro re-scans
func NestingLimit(n int) OptFunc {
	return func(p *Processor) error {
		return p.SetNestingLimit(n)
	}
}

// Dirs returns an OptFunc that will add the directory names to the,
// initially empty, set of directories searched by the include macro.
// Each of the passed values must be a directory, an error will be
// returned if not and none of the passed values will be added.
func Dirs(dirs ...string) OptFunc {
	return func(p *Processor) error {
		return p.AddDirs(dirs...)
	}
}

// Suffix returns an OptFunc that will add a suffix to the list of
// strings to be tried as suffixes when resolving an include file. Any
// suffix must be complete and include the separator (if any). For
// instance ".m4". The suffixes are tried in the order they are added and
// there is always a first, empty suffix so that an include name will
// always match a file with the exact same name.
func Suffix(suffix string) OptFunc {
	return func(p *Processor) error {
		p.suffixes = append(p.suffixes, suffix)

		return nil
	}
}

// Trace returns an OptFunc that will mark the named macros as traced.
// Each invocation of a traced macro is reported on the debug output.
func Trace(names ...string) OptFunc {
	return func(p *Processor) error {
		for _, name := range names {
			p.AddTrace(name)
		}

		return nil
	}
}

// FlushAtEnd returns an OptFunc that will set whether Finish moves any
// still-diverted text to the primary output. The default is true,
// matching the usual macro-processor convention.
func FlushAtEnd(flush bool) OptFunc {
	return func(p *Processor) error {
		p.flushAtEnd = flush

		return nil
	}
}

// SetNestingLimit sets the limit on the depth of nested macro re-scans.
// The limit must be greater than zero.
func (p *Processor) SetNestingLimit(n int) error {
	if n <= 0 {
		return fmt.Errorf("the nesting limit (%d) must be greater than 0", n)
	}

	p.nestingLimit = n

	return nil
}

// SetDebugOutput sets the writer used for trace and debug reports
func (p *Processor) SetDebugOutput(w io.Writer) {
	p.debugOut = w
}

// AddDirs adds directories to the set searched by the include macro.
// Each must be an existing directory or an error is returned and none of
// them are added.
func (p *Processor) AddDirs(dirs ...string) error {
	if len(dirs) == 0 {
		return fmt.Errorf("at least one include directory must be passed")
	}

	es := filecheck.Provisos{
		Checks:    []check.FileInfo{check.FileInfoIsDir},
		Existence: filecheck.MustExist,
	}
	for _, dir := range dirs {
		err := es.StatusCheck(dir)
		if err != nil {
			return err
		}
	}

	p.incDirs = append(p.incDirs, dirs...)

	return nil
}

// AddTrace marks the named macro as traced
func (p *Processor) AddTrace(name string) {
	p.traced[name] = true
}

// Delims returns the Processor's delimiters
func (p *Processor) Delims() *Delims {
	return p.delims
}

// Table returns the Processor's macro table
func (p *Processor) Table() *Table {
	return p.table
}

// Diversions returns the Processor's diversion store
func (p *Processor) Diversions() *Diversions {
	return p.divs
}

// Process scans and expands the given input, writing the results through
// the diversion store. The name is only used in diagnostics. State
// changes made while processing (macro definitions, delimiter changes,
// diverted text) persist into any subsequent call.
func (p *Processor) Process(name string, data []byte) error {
	e := &expansion{p: p, loc: location.New(name)}
	e.in = newInput(data, e.loc)

	return e.run()
}

// ProcessReader reads the whole of r and processes it as Process does
func (p *Processor) ProcessReader(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("couldn't read %q: %w", name, err)
	}

	return p.Process(name, data)
}

// Finish completes processing. If the Processor flushes at end (the
// default) any still-diverted text is moved to the primary output in
// ascending diversion order.
func (p *Processor) Finish() error {
	if !p.flushAtEnd {
		return nil
	}

	return p.divs.FlushAll()
}

// readInclude searches for the include file in the cache and then in the
// include directories, trying each suffix in turn. Newly found content is
// cached for further use. If no matching file is found an error is
// returned naming the searched directories.
func (p *Processor) readInclude(name string, loc *location.L) (string, error) {
	if text, ok := p.incCache[name]; ok {
		return text, nil
	}

	dirs := append([]string{"."}, p.incDirs...)
	for _, dir := range dirs {
		for _, suffix := range p.suffixes {
			text, err := os.ReadFile(filepath.Join(dir, name+suffix))
			if err == nil {
				p.incCache[name] = string(text)
				return p.incCache[name], nil
			}
		}
	}

	errStr := fmt.Sprintf("include file %q at %s was not found", name, loc)
	if len(p.incDirs) == 1 {
		errStr += " in the include directory: " + p.incDirs[0]
	} else if len(p.incDirs) > 1 {
		errStr += " in any of the include directories: " +
			strings.Join(p.incDirs, ", ")
	}

	return "", errors.New(errStr)
}
