package macroproc

import (
	"fmt"
	"strconv"

	"github.com/nickwells/location.mod/location"
)

// expansion is the state of one expansion run: the pending input, the
// source location for diagnostics and the current re-scan depth
type expansion struct {
	p     *Processor
	in    *input
	loc   *location.L
	depth int

	// baseDepth is the depth this expansion started at: zero for a
	// top-level scan, the invoking depth for an argument sub-scan. The
	// per-token depth reset restores this value, not zero, so recursion
	// routed through argument expansion still counts against the limit.
	baseDepth int
}

// isBlank reports whether b is one of the whitespace bytes that
// terminate a word
func isBlank(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// isCallPunct reports whether b is one of the bytes with call-syntax
// meaning. These always terminate a word and are passed through
// unchanged unless they belong to a macro call.
func isCallPunct(b byte) bool {
	return b == '(' || b == ')' || b == ','
}

// run is the top-level scan loop. Comments and quoted literals pass
// through unexpanded, whitespace and call punctuation pass through
// unchanged, and words are resolved against the macro table.
func (e *expansion) run() error {
	for {
		if e.in.atBase() {
			e.depth = e.baseDepth
		}

		b, ok := e.in.peek()
		if !ok {
			return nil
		}

		switch {
		case b == e.p.delims.commentStart:
			if err := e.copyComment(); err != nil {
				return err
			}
		case b == e.p.delims.quoteStart:
			e.in.next()

			if err := e.p.divs.Write(e.readQuoted()); err != nil {
				return err
			}
		case isBlank(b) || isCallPunct(b):
			e.in.next()

			if err := e.p.divs.Write([]byte{b}); err != nil {
				return err
			}
		default:
			if err := e.invoke(e.readWord()); err != nil {
				return err
			}
		}
	}
}

// copyComment copies a comment, including both its delimiters, to the
// current diversion. A comment left open at end of input ends there.
func (e *expansion) copyComment() error {
	text := []byte{}

	b, _ := e.in.next()
	text = append(text, b)

	for {
		b, ok := e.in.next()
		if !ok {
			break
		}

		text = append(text, b)

		if b == e.p.delims.commentEnd {
			break
		}
	}

	return e.p.divs.Write(text)
}

// readQuoted reads a quoted literal whose opening delimiter has already
// been consumed and returns the enclosed text with exactly the outermost
// delimiter pair removed. Quotes nest: inner delimiter pairs are kept. A
// quote left open at end of input ends there.
func (e *expansion) readQuoted() []byte {
	text := []byte{}
	depth := 1

	for {
		b, ok := e.in.next()
		if !ok {
			return text
		}

		switch b {
		case e.p.delims.quoteEnd:
			depth--
			if depth == 0 {
				return text
			}
		case e.p.delims.quoteStart:
			depth++
		}

		text = append(text, b)
	}
}

// readWord reads a maximal run of word bytes. Whitespace, call
// punctuation and the comment and quote start delimiters all end a word.
func (e *expansion) readWord() []byte {
	word := []byte{}

	for {
		b, ok := e.in.peek()
		if !ok {
			return word
		}

		if isBlank(b) || isCallPunct(b) ||
			b == e.p.delims.commentStart ||
			b == e.p.delims.quoteStart {
			return word
		}

		e.in.next()

		word = append(word, b)
	}
}

// invoke resolves a word against the macro table. An unbound word is
// written out verbatim. A bound word consumes its arguments, if the next
// byte is an opening parenthesis, and then either dispatches to the
// builtin handler or substitutes the replacement text; either result is
// pushed back to be re-scanned.
func (e *expansion) invoke(word []byte) error {
	name := string(word)

	v, ok := e.p.table.Lookup(name)
	if !ok {
		return e.p.divs.Write(word)
	}

	var args [][]byte

	if b, ok := e.in.peek(); ok && b == '(' {
		e.in.next()

		args = e.readArgs()
	}

	if e.p.traced[name] {
		fmt.Fprintf(e.p.debugOut, "trace: -%d- %s\n", e.depth+1, name)
	}

	if v.Kind == BuiltinMacro {
		fn, ok := e.p.builtins[v.Str]
		if !ok {
			if e.p.traced[name] {
				fmt.Fprintf(e.p.debugOut,
					"trace: no handler for builtin %q\n", v.Str)
			}

			return nil
		}

		repl, err := fn(e, name, args)
		if err != nil {
			return err
		}

		return e.pushExpansion(repl)
	}

	return e.pushExpansion(e.substituteParams(v.Str, name, args))
}

// pushExpansion pushes replacement text back as new input to be
// re-scanned, counting it against the nesting limit. The depth counter
// is reset to the base depth by run once the input stack drains back to
// plain input.
func (e *expansion) pushExpansion(text []byte) error {
	if len(text) == 0 {
		return nil
	}

	e.depth++
	if e.depth > e.p.nestingLimit {
		return fmt.Errorf(
			"macro expansion at %s is more than %d levels deep: %w",
			e.loc, e.p.nestingLimit, ErrNestingLimitExceeded)
	}

	e.in.push(text)

	return nil
}

// readArgs reads a macro's arguments; the opening parenthesis has
// already been consumed. Arguments are separated by commas and end at
// the balancing close parenthesis; commas and parentheses inside a
// deeper parenthesis nesting or inside a quoted literal do not count.
// Quoted literals contribute their content with the outermost delimiter
// pair removed; comments are copied into the argument verbatim. Leading
// unquoted whitespace of each argument is skipped. A call left open at
// end of input ends there.
func (e *expansion) readArgs() [][]byte {
	args := [][]byte{}
	cur := []byte{}
	parens := 1
	started := false

	endArg := func() {
		args = append(args, cur)
		cur = []byte{}
		started = false
	}

	for {
		b, ok := e.in.next()
		if !ok {
			args = append(args, cur)
			return args
		}

		switch {
		case b == e.p.delims.quoteStart:
			cur = append(cur, e.readQuoted()...)
			started = true
		case b == e.p.delims.commentStart:
			cur = append(cur, b)

			for {
				c, ok := e.in.next()
				if !ok {
					break
				}

				cur = append(cur, c)

				if c == e.p.delims.commentEnd {
					break
				}
			}
		case b == '(':
			parens++

			cur = append(cur, b)
			started = true
		case b == ')':
			parens--
			if parens == 0 {
				args = append(args, cur)
				return args
			}

			cur = append(cur, b)
			started = true
		case b == ',' && parens == 1:
			endArg()
		case isBlank(b) && !started:
			// skip leading whitespace
		default:
			cur = append(cur, b)
			started = true
		}
	}
}

// substituteParams replaces the positional tokens in a text macro's
// replacement text: $0 is the invocation name, $1 to $9 are the
// arguments (empty beyond the supplied count), $# is the argument count,
// $* joins the arguments with commas and $@ does the same with each
// argument quoted with the current quote delimiters.
func (e *expansion) substituteParams(
	text, name string, args [][]byte,
) []byte {
	out := []byte{}

	for i := 0; i < len(text); i++ {
		if text[i] != '$' || i+1 >= len(text) {
			out = append(out, text[i])
			continue
		}

		switch c := text[i+1]; {
		case c >= '0' && c <= '9':
			n := int(c - '0')
			if n == 0 {
				out = append(out, name...)
			} else if n <= len(args) {
				out = append(out, args[n-1]...)
			}

			i++
		case c == '#':
			out = append(out, strconv.Itoa(len(args))...)
			i++
		case c == '*':
			for j, arg := range args {
				if j > 0 {
					out = append(out, ',')
				}

				out = append(out, arg...)
			}

			i++
		case c == '@':
			for j, arg := range args {
				if j > 0 {
					out = append(out, ',')
				}

				out = append(out, e.p.delims.quoteStart)
				out = append(out, arg...)
				out = append(out, e.p.delims.quoteEnd)
			}

			i++
		default:
			out = append(out, '$')
		}
	}

	return out
}

// expandArg expands an argument span in isolation, capturing the output.
// The expansion shares the Processor's macro table and delimiters, so
// definitions and delimiter changes it makes are kept; diversion changes
// are confined to a temporary store and discarded with it. The sub-scan
// inherits the invoking depth so the nesting limit still applies.
func (e *expansion) expandArg(arg []byte) ([]byte, error) {
	saved := e.p.divs
	cw := &capturingWriter{}
	e.p.divs = NewDiversions(cw)

	defer func() { e.p.divs = saved }()

	sub := &expansion{p: e.p, loc: e.loc, depth: e.depth, baseDepth: e.depth}
	sub.in = newInput(arg, nil)

	if err := sub.run(); err != nil {
		return nil, err
	}

	return cw.buf, nil
}

// capturingWriter collects everything written to it
type capturingWriter struct {
	buf []byte
}

func (w *capturingWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}
