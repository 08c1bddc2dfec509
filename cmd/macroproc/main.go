package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nickwells/filecheck.mod/filecheck"
	"github.com/nickwells/macroproc.mod/macroproc"
)

type flagKind int

const (
	flagFatalWarning flagKind = iota
	flagGnu
	flagTraditional
	flagDebug
	flagDebugFile
	flagInclude
	flagNestingLimit
	flagReloadState
	flagTrace
	flagUndefine
	flagFile
	flagStdin
)

// cmdFlag is one parsed command-line argument. Flags are kept in command
// order and applied in that order, so, for instance, a macro defined by
// a reload-state file is visible to every input named after it.
type cmdFlag struct {
	kind flagKind
	arg  string
	num  int
}

// settings holds the flag values that are recorded but do not yet change
// behaviour
type settings struct {
	debugFlags   string
	fatalWarning bool
	gnulyCorrect bool
}

func usage() {
	fmt.Print(`usage: macroproc [flag ...] [file ...]

Each file (or - for standard input) is macro-expanded in the order
given; with no files, standard input is read. Flags:

    --help                   print this message and exit
    --fatal-warning          treat warnings as fatal
    --gnu                    GNU extensions (the default)
    --traditional            suppress GNU extensions
    --debug=<flags>          set the debug flags
    --debugfile=<path>       send trace and debug output to the file
    --include=<path>         add a directory to the include search path
    --nesting-limit=<n>      limit the macro re-scan depth
    --reload-state=<path>    restore processor state from a frozen file
    --trace=<name>           report each invocation of the named macro
    --undefine=<name>        remove every definition of the named macro
`)
}

func die(err error) {
	fmt.Fprintln(os.Stderr, "macroproc:", err)
	os.Exit(1)
}

func parseArgs(args []string) []cmdFlag {
	flags := []cmdFlag{}
	anyFiles := false

	for _, arg := range args {
		switch {
		case arg == "--help":
			usage()
			os.Exit(0)
		case arg == "--fatal-warning":
			flags = append(flags, cmdFlag{kind: flagFatalWarning})
		case arg == "--gnu":
			flags = append(flags, cmdFlag{kind: flagGnu})
		case arg == "--traditional":
			flags = append(flags, cmdFlag{kind: flagTraditional})
		case strings.HasPrefix(arg, "--debug="):
			flags = append(flags, cmdFlag{
				kind: flagDebug,
				arg:  strings.TrimPrefix(arg, "--debug="),
			})
		case strings.HasPrefix(arg, "--debugfile="):
			flags = append(flags, cmdFlag{
				kind: flagDebugFile,
				arg:  strings.TrimPrefix(arg, "--debugfile="),
			})
		case strings.HasPrefix(arg, "--include="):
			flags = append(flags, cmdFlag{
				kind: flagInclude,
				arg:  strings.TrimPrefix(arg, "--include="),
			})
		case strings.HasPrefix(arg, "--nesting-limit="):
			val := strings.TrimPrefix(arg, "--nesting-limit=")

			n, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				die(fmt.Errorf("the nesting limit (%q) must be a number", val))
			}

			flags = append(flags, cmdFlag{kind: flagNestingLimit, num: int(n)})
		case strings.HasPrefix(arg, "--reload-state="):
			flags = append(flags, cmdFlag{
				kind: flagReloadState,
				arg:  strings.TrimPrefix(arg, "--reload-state="),
			})
		case strings.HasPrefix(arg, "--trace="):
			flags = append(flags, cmdFlag{
				kind: flagTrace,
				arg:  strings.TrimPrefix(arg, "--trace="),
			})
		case strings.HasPrefix(arg, "--undefine="):
			flags = append(flags, cmdFlag{
				kind: flagUndefine,
				arg:  strings.TrimPrefix(arg, "--undefine="),
			})
		case arg == "-":
			anyFiles = true

			flags = append(flags, cmdFlag{kind: flagStdin})
		case strings.HasPrefix(arg, "-"):
			die(fmt.Errorf("unrecognized argument: %q", arg))
		default:
			anyFiles = true

			flags = append(flags, cmdFlag{kind: flagFile, arg: arg})
		}
	}

	if !anyFiles {
		flags = append(flags, cmdFlag{kind: flagStdin})
	}

	return flags
}

// readNamedFile checks that the named file exists and is readable and
// returns its content
func readNamedFile(path string) []byte {
	es := filecheck.Provisos{Existence: filecheck.MustExist}
	if err := es.StatusCheck(path); err != nil {
		die(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		die(fmt.Errorf("couldn't read %q: %v", path, err))
	}

	return data
}

func main() {
	flags := parseArgs(os.Args[1:])

	p, err := macroproc.NewProcessor()
	if err != nil {
		die(err)
	}

	cfg := settings{debugFlags: "aeq", gnulyCorrect: true}

	for _, f := range flags {
		switch f.kind {
		case flagFatalWarning:
			cfg.fatalWarning = true
		case flagGnu:
			cfg.gnulyCorrect = true
		case flagTraditional:
			cfg.gnulyCorrect = false
		case flagDebug:
			cfg.debugFlags = f.arg
		case flagDebugFile:
			df, err := os.Create(f.arg)
			if err != nil {
				die(fmt.Errorf("couldn't create the debug file: %v", err))
			}

			defer df.Close()

			p.SetDebugOutput(df)
		case flagInclude:
			if err := p.AddDirs(f.arg); err != nil {
				die(err)
			}
		case flagNestingLimit:
			if err := p.SetNestingLimit(f.num); err != nil {
				die(err)
			}
		case flagReloadState:
			if err := p.LoadState(readNamedFile(f.arg)); err != nil {
				die(err)
			}
		case flagTrace:
			p.AddTrace(f.arg)
		case flagUndefine:
			p.Table().Undefine(f.arg)
		case flagStdin:
			if err := p.ProcessReader("stdin", os.Stdin); err != nil {
				die(err)
			}
		case flagFile:
			if err := p.Process(f.arg, readNamedFile(f.arg)); err != nil {
				die(err)
			}
		}
	}

	if err := p.Finish(); err != nil {
		die(err)
	}
}
