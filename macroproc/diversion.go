package macroproc

import (
	"bytes"
	"io"
)

// Diversions routes output either directly to the primary output or into
// one of a set of numbered buffers whose content can be brought back
// later, possibly in a different order. Diversion 0 is the primary
// output, positive numbers select a buffer and negative numbers discard
// the text entirely.
type Diversions struct {
	out     io.Writer
	current int
	bufs    []bytes.Buffer
}

// NewDiversions returns a Diversions writing to the given primary output
// with diversion 0 (immediate output) selected
func NewDiversions(out io.Writer) *Diversions {
	return &Diversions{out: out}
}

// Write routes text according to the current diversion: diversion 0
// writes it to the primary output immediately, a positive diversion
// appends it to the numbered buffer (buffers are created on demand so
// selecting a diversion never fails) and a negative diversion discards
// it
func (d *Diversions) Write(text []byte) error {
	if d.current < 0 {
		return nil
	}

	if d.current == 0 {
		_, err := d.out.Write(text)
		return err
	}

	for len(d.bufs) < d.current {
		d.bufs = append(d.bufs, bytes.Buffer{})
	}

	d.bufs[d.current-1].Write(text)

	return nil
}

// WritePrimary writes text to the primary output regardless of the
// current diversion. The reload-state decoder uses this for raw
// passthrough content.
func (d *Diversions) WritePrimary(text []byte) error {
	_, err := d.out.Write(text)
	return err
}

// SetCurrent changes the current diversion. Any integer is allowed.
func (d *Diversions) SetCurrent(n int) {
	d.current = n
}

// Current returns the current diversion number
func (d *Diversions) Current() int {
	return d.current
}

// Max returns the highest diversion number for which a buffer exists
func (d *Diversions) Max() int {
	return len(d.bufs)
}

// Contents returns the buffered content of diversion n, nil if n has no
// buffer. The primary output (and discarded text) cannot be inspected.
func (d *Diversions) Contents(n int) []byte {
	if n < 1 || n > len(d.bufs) {
		return nil
	}

	return d.bufs[n-1].Bytes()
}

// Undivert moves the content of diversion n to wherever the current
// diversion targets and clears diversion n. Undiverting an out-of-range
// or empty diversion, or a diversion into itself, does nothing.
func (d *Diversions) Undivert(n int) error {
	if n < 1 || n > len(d.bufs) || n == d.current {
		return nil
	}

	if d.bufs[n-1].Len() == 0 {
		return nil
	}

	text := d.bufs[n-1].Bytes()
	d.bufs[n-1] = bytes.Buffer{}

	return d.Write(text)
}

// FlushAll moves the content of every non-empty diversion, in ascending
// numeric order, to the primary output. The current diversion is left
// unchanged.
func (d *Diversions) FlushAll() error {
	saved := d.current
	d.current = 0

	for i := 1; i <= len(d.bufs); i++ {
		if err := d.Undivert(i); err != nil {
			d.current = saved
			return err
		}
	}

	d.current = saved

	return nil
}
