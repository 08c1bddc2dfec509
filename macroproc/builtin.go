package macroproc

import (
	"bytes"
	"strconv"
	"strings"
)

// builtinFn is a builtin macro handler. It receives the raw, unexpanded
// argument spans and the running expansion, whose Processor gives it
// access to the macro table, the diversion store and the delimiters. A
// handler decides for itself whether to expand its arguments (most do,
// through expandArg). Any returned text is pushed back and re-scanned.
type builtinFn func(e *expansion, name string, args [][]byte) ([]byte, error)

// builtinRegistry returns the registry of builtin handlers, keyed by the
// identifier stored in the macro table. New builtins register here
// without the engine needing to know their logic.
func builtinRegistry() map[string]builtinFn {
	return map[string]builtinFn{
		"define":      bDefine,
		"undefine":    bUndefine,
		"pushdef":     bPushdef,
		"popdef":      bPopdef,
		"divert":      bDivert,
		"undivert":    bUndivert,
		"dnl":         bDnl,
		"changequote": bChangequote,
		"changecom":   bChangecom,
		"ifdef":       bIfdef,
		"ifelse":      bIfelse,
		"include":     bInclude,
	}
}

// argN returns the n'th argument (counting from 0) or nil if there are
// not that many
func argN(args [][]byte, n int) []byte {
	if n >= len(args) {
		return nil
	}

	return args[n]
}

// argInt expands the n'th argument and interprets it as a decimal
// integer. A missing or unparsable argument gives 0.
func argInt(e *expansion, args [][]byte, n int) (int, error) {
	text, err := e.expandArg(argN(args, n))
	if err != nil {
		return 0, err
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(text)))
	if err != nil {
		return 0, nil
	}

	return v, nil
}

func bDefine(e *expansion, _ string, args [][]byte) ([]byte, error) {
	name := string(argN(args, 0))
	if name == "" {
		return nil, nil
	}

	e.p.table.Define(name, TextValue(string(argN(args, 1))))

	return nil, nil
}

func bUndefine(e *expansion, _ string, args [][]byte) ([]byte, error) {
	e.p.table.Undefine(string(argN(args, 0)))

	return nil, nil
}

func bPushdef(e *expansion, _ string, args [][]byte) ([]byte, error) {
	name := string(argN(args, 0))
	if name == "" {
		return nil, nil
	}

	e.p.table.PushDef(name, TextValue(string(argN(args, 1))))

	return nil, nil
}

func bPopdef(e *expansion, _ string, args [][]byte) ([]byte, error) {
	e.p.table.PopDef(string(argN(args, 0)))

	return nil, nil
}

func bDivert(e *expansion, _ string, args [][]byte) ([]byte, error) {
	n, err := argInt(e, args, 0)
	if err != nil {
		return nil, err
	}

	e.p.divs.SetCurrent(n)

	return nil, nil
}

func bUndivert(e *expansion, _ string, args [][]byte) ([]byte, error) {
	if len(args) == 0 {
		for i := 1; i <= e.p.divs.Max(); i++ {
			if err := e.p.divs.Undivert(i); err != nil {
				return nil, err
			}
		}

		return nil, nil
	}

	for i := range args {
		n, err := argInt(e, args, i)
		if err != nil {
			return nil, err
		}

		if err := e.p.divs.Undivert(n); err != nil {
			return nil, err
		}
	}

	return nil, nil
}

// bDnl discards the rest of the current input line, including the
// newline itself
func bDnl(e *expansion, _ string, _ [][]byte) ([]byte, error) {
	for {
		b, ok := e.in.next()
		if !ok || b == '\n' {
			return nil, nil
		}
	}
}

func bChangequote(e *expansion, _ string, args [][]byte) ([]byte, error) {
	if len(args) == 0 {
		return nil, e.p.delims.SetQuote(
			string(DfltQuoteStart), string(DfltQuoteEnd))
	}

	end := string(DfltQuoteEnd)
	if len(args) > 1 {
		end = string(argN(args, 1))
	}

	return nil, e.p.delims.SetQuote(string(argN(args, 0)), end)
}

func bChangecom(e *expansion, _ string, args [][]byte) ([]byte, error) {
	if len(args) == 0 {
		return nil, e.p.delims.SetComment(
			string(DfltCommentStart), string(DfltCommentEnd))
	}

	end := string(DfltCommentEnd)
	if len(args) > 1 {
		end = string(argN(args, 1))
	}

	return nil, e.p.delims.SetComment(string(argN(args, 0)), end)
}

func bIfdef(e *expansion, _ string, args [][]byte) ([]byte, error) {
	if _, ok := e.p.table.Lookup(string(argN(args, 0))); ok {
		return argN(args, 1), nil
	}

	return argN(args, 2), nil
}

// bIfelse compares its first two arguments and expands to the third if
// they are equal. Longer argument lists chain further comparisons in
// groups of three, with an optional final default.
func bIfelse(_ *expansion, _ string, args [][]byte) ([]byte, error) {
	for {
		switch {
		case len(args) <= 2:
			return nil, nil
		case bytes.Equal(argN(args, 0), argN(args, 1)):
			return argN(args, 2), nil
		case len(args) == 3:
			return nil, nil
		case len(args) <= 5:
			return argN(args, 3), nil
		default:
			args = args[3:]
		}
	}
}

func bInclude(e *expansion, _ string, args [][]byte) ([]byte, error) {
	path, err := e.expandArg(argN(args, 0))
	if err != nil {
		return nil, err
	}

	text, err := e.p.readInclude(string(path), e.loc)
	if err != nil {
		return nil, err
	}

	return []byte(text), nil
}
