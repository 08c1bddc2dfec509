package macroproc

import (
	"github.com/nickwells/location.mod/location"
)

// chunk is a span of pending input with a read position
type chunk struct {
	data []byte
	pos  int
}

// input is a stack of byte chunks. The bottom chunk is the original
// input; macro expansions are pushed on top so that expanded text is
// re-scanned before the original input resumes. Newlines are only
// counted against the source location when they are read from the bottom
// chunk, so expansions do not disturb line numbers.
type input struct {
	stack []chunk
	loc   *location.L
}

func newInput(data []byte, loc *location.L) *input {
	if loc != nil {
		loc.Incr()
	}

	return &input{
		stack: []chunk{{data: data}},
		loc:   loc,
	}
}

// next returns the next byte of input, popping exhausted expansion
// chunks as it goes. The second return value is false at end of input.
func (in *input) next() (byte, bool) {
	for len(in.stack) > 0 {
		top := &in.stack[len(in.stack)-1]
		if top.pos >= len(top.data) {
			in.stack = in.stack[:len(in.stack)-1]
			continue
		}

		b := top.data[top.pos]
		top.pos++

		if b == '\n' && len(in.stack) == 1 && in.loc != nil {
			in.loc.Incr()
		}

		return b, true
	}

	return 0, false
}

// peek returns the next byte without consuming it
func (in *input) peek() (byte, bool) {
	for i := len(in.stack) - 1; i >= 0; i-- {
		c := in.stack[i]
		if c.pos < len(c.data) {
			return c.data[c.pos], true
		}
	}

	return 0, false
}

// push makes text the next input to be read, ahead of everything
// currently pending
func (in *input) push(text []byte) {
	in.stack = append(in.stack, chunk{data: text})
}

// atBase reports whether every pushed expansion has been fully consumed,
// leaving only the original input
func (in *input) atBase() bool {
	for i := len(in.stack) - 1; i > 0; i-- {
		if in.stack[i].pos < len(in.stack[i].data) {
			return false
		}
	}

	return true
}
