package macroproc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrReloadStateFormat is returned when a reload-state file is
// malformed: a bad or missing version record, a malformed length field,
// a truncated record or a missing terminating newline. Loading is a
// strict single pass and the first malformed record aborts the whole
// load.
var ErrReloadStateFormat = errors.New("malformed reload-state record")

// stateReader is a single-pass reader over reload-state bytes
type stateReader struct {
	data []byte
	pos  int
}

func (r *stateReader) next() (byte, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}

	b := r.data[r.pos]
	r.pos++

	return b, true
}

// readInt reads decimal digits, with an optional leading minus sign, up
// to and including the separator byte
func (r *stateReader) readInt(sep byte) (int, error) {
	val := 0
	negative := false
	first := true

	for {
		b, ok := r.next()
		if !ok {
			return 0, fmt.Errorf(
				"%w: input ended before the %q separator",
				ErrReloadStateFormat, string(sep))
		}

		if b == sep {
			break
		}

		if b == '-' && first {
			negative = true
			first = false

			continue
		}

		if b < '0' || b > '9' {
			return 0, fmt.Errorf(
				"%w: %q is not a decimal digit",
				ErrReloadStateFormat, string(b))
		}

		val = val*10 + int(b-'0')
		first = false
	}

	if negative {
		val = -val
	}

	return val, nil
}

// take consumes exactly n bytes
func (r *stateReader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf(
			"%w: a field of length %d cannot be read", ErrReloadStateFormat, n)
	}

	field := r.data[r.pos : r.pos+n]
	r.pos += n

	return field, nil
}

// endRecord consumes the mandatory newline terminating a record
func (r *stateReader) endRecord(tag byte) error {
	b, ok := r.next()
	if !ok || b != '\n' {
		return fmt.Errorf(
			"%w: missing newline after the %q record",
			ErrReloadStateFormat, string(tag))
	}

	return nil
}

// skipComment skips to the comment end byte, exclusive of either
// boundary
func (r *stateReader) skipComment(end byte) {
	for {
		b, ok := r.next()
		if !ok || b == end {
			return
		}
	}
}

// twoLengths reads the two comma-separated decimal lengths that follow
// every tagged record
func (r *stateReader) twoLengths() (int, int, error) {
	a, err := r.readInt(',')
	if err != nil {
		return 0, 0, err
	}

	b, err := r.readInt('\n')
	if err != nil {
		return 0, 0, err
	}

	return a, b, nil
}

// LoadState restores processor state from the reload-state record
// format. The first structured record must be the version record; bytes
// outside any recognized record (and outside a comment) are written
// straight to the primary output, since a reload-state file may carry
// already-flushed diversion-0 text alongside its records. Any malformed
// record aborts the load.
func (p *Processor) LoadState(data []byte) error {
	r := &stateReader{data: data}
	seenVersion := false

	checkVersion := func(tag byte) error {
		if !seenVersion {
			return fmt.Errorf(
				"%w: %q record before the version record",
				ErrReloadStateFormat, string(tag))
		}

		return nil
	}

	setDelims := func(tag byte) error {
		if err := checkVersion(tag); err != nil {
			return err
		}

		slen, elen, err := r.twoLengths()
		if err != nil {
			return err
		}

		start, err := r.take(slen)
		if err != nil {
			return err
		}

		end, err := r.take(elen)
		if err != nil {
			return err
		}

		if tag == 'C' {
			err = p.delims.SetComment(string(start), string(end))
		} else {
			err = p.delims.SetQuote(string(start), string(end))
		}

		if err != nil {
			return err
		}

		return r.endRecord(tag)
	}

	defMacro := func(tag byte) error {
		if err := checkVersion(tag); err != nil {
			return err
		}

		nlen, vlen, err := r.twoLengths()
		if err != nil {
			return err
		}

		name, err := r.take(nlen)
		if err != nil {
			return err
		}

		val, err := r.take(vlen)
		if err != nil {
			return err
		}

		if tag == 'T' {
			p.table.Define(string(name), TextValue(string(val)))
		} else {
			p.table.Define(string(name), BuiltinValue(string(val)))
		}

		return r.endRecord(tag)
	}

	for {
		b, ok := r.next()
		if !ok {
			return nil
		}

		if b == p.delims.commentStart {
			r.skipComment(p.delims.commentEnd)
			continue
		}

		switch b {
		case 'V':
			v, ok := r.next()
			if !ok || v != '1' {
				return fmt.Errorf(
					"%w: bad or missing version in the V record",
					ErrReloadStateFormat)
			}

			if err := r.endRecord(b); err != nil {
				return err
			}

			seenVersion = true
		case 'C', 'Q':
			if err := setDelims(b); err != nil {
				return err
			}
		case 'D':
			if err := checkVersion(b); err != nil {
				return err
			}

			div, clen, err := r.twoLengths()
			if err != nil {
				return err
			}

			content, err := r.take(clen)
			if err != nil {
				return err
			}

			p.divs.SetCurrent(div)

			if err := p.divs.Write(content); err != nil {
				return err
			}

			if err := r.endRecord(b); err != nil {
				return err
			}
		case 'T', 'F':
			if err := defMacro(b); err != nil {
				return err
			}
		default:
			if err := p.divs.WritePrimary([]byte{b}); err != nil {
				return err
			}
		}
	}
}

// LoadStateReader reads the whole of r and restores processor state from
// it as LoadState does
func (p *Processor) LoadStateReader(name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("couldn't read %q: %w", name, err)
	}

	return p.LoadState(data)
}

// SaveState writes the processor state in the reload-state record
// format: the version, the delimiters, every macro binding in definition
// order and the content of every non-empty diversion, ending with a
// record restoring the current diversion. Loading the result into a
// fresh Processor reproduces an observably equivalent state.
func (p *Processor) SaveState(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprint(bw, "V1\n")
	fmt.Fprintf(bw, "C1,1\n%c%c\n", p.delims.commentStart, p.delims.commentEnd)
	fmt.Fprintf(bw, "Q1,1\n%c%c\n", p.delims.quoteStart, p.delims.quoteEnd)

	for _, b := range p.table.Bindings() {
		tag := byte('T')
		if b.Val.Kind == BuiltinMacro {
			tag = 'F'
		}

		fmt.Fprintf(bw, "%c%d,%d\n%s%s\n",
			tag, len(b.Name), len(b.Val.Str), b.Name, b.Val.Str)
	}

	for i := 1; i <= p.divs.Max(); i++ {
		content := p.divs.Contents(i)
		if len(content) == 0 {
			continue
		}

		fmt.Fprintf(bw, "D%d,%d\n%s\n", i, len(content), content)
	}

	fmt.Fprintf(bw, "D%d,0\n\n", p.divs.Current())

	return bw.Flush()
}
