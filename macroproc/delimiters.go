package macroproc

import (
	"errors"
	"fmt"
)

// DfltCommentStart is the default byte introducing a comment
// DfltCommentEnd is the default byte ending a comment
// DfltQuoteStart is the default byte opening a quoted literal
// DfltQuoteEnd is the default byte closing a quoted literal
const (
	DfltCommentStart = byte('#')
	DfltCommentEnd   = byte('\n')
	DfltQuoteStart   = byte('`')
	DfltQuoteEnd     = byte('\'')
)

// ErrUnsupportedDelimiterLength is returned when a comment or quote
// delimiter is set to a value that is not exactly one byte long. Only
// single-byte delimiters are supported.
var ErrUnsupportedDelimiterLength = errors.New(
	"comment and quote delimiters must be exactly one byte long")

// Delims holds the comment and quote delimiters used when scanning
// input. The values can be changed while processing (through the
// changequote and changecom macros or a reload-state file) and any change
// only affects scanning after the point of the change.
type Delims struct {
	commentStart byte
	commentEnd   byte
	quoteStart   byte
	quoteEnd     byte
}

// NewDelims returns a Delims with the default delimiter values: comments
// run from '#' to the end of the line and quotes from a backquote to an
// apostrophe.
func NewDelims() *Delims {
	return &Delims{
		commentStart: DfltCommentStart,
		commentEnd:   DfltCommentEnd,
		quoteStart:   DfltQuoteStart,
		quoteEnd:     DfltQuoteEnd,
	}
}

// SetComment sets the comment delimiters. Each value must be exactly one
// byte long; any other length returns ErrUnsupportedDelimiterLength and
// leaves the delimiters unchanged.
func (d *Delims) SetComment(start, end string) error {
	if len(start) != 1 || len(end) != 1 {
		return fmt.Errorf("cannot set comment delimiters to %q and %q: %w",
			start, end, ErrUnsupportedDelimiterLength)
	}

	d.commentStart, d.commentEnd = start[0], end[0]

	return nil
}

// SetQuote sets the quote delimiters. Each value must be exactly one byte
// long; any other length returns ErrUnsupportedDelimiterLength and leaves
// the delimiters unchanged.
func (d *Delims) SetQuote(start, end string) error {
	if len(start) != 1 || len(end) != 1 {
		return fmt.Errorf("cannot set quote delimiters to %q and %q: %w",
			start, end, ErrUnsupportedDelimiterLength)
	}

	d.quoteStart, d.quoteEnd = start[0], end[0]

	return nil
}

// Comment returns the current comment delimiters
func (d *Delims) Comment() (start, end byte) {
	return d.commentStart, d.commentEnd
}

// Quote returns the current quote delimiters
func (d *Delims) Quote() (start, end byte) {
	return d.quoteStart, d.quoteEnd
}
