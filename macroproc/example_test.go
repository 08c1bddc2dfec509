package macroproc_test

import (
	"bytes"
	"fmt"

	"github.com/nickwells/macroproc.mod/macroproc"
)

// Example demonstrates defining a macro and having it expanded in the
// text that follows. The dnl macro discards the newline that would
// otherwise follow the definition.
func Example() {
	p, err := macroproc.NewProcessor()
	if err != nil {
		fmt.Println("unexpected error creating the processor:", err)
		return
	}

	err = p.Process("example",
		[]byte("define(HOST, db.example.com)dnl\nconnect to HOST\n"))
	if err != nil {
		fmt.Println("unexpected processing error:", err)
		return
	}
	// Output:
	// connect to db.example.com
}

// Example_diversions demonstrates diverting text into a numbered buffer
// and bringing it back at the end of processing
func Example_diversions() {
	p, err := macroproc.NewProcessor()
	if err != nil {
		fmt.Println("unexpected error creating the processor:", err)
		return
	}

	err = p.Process("example",
		[]byte("divert(1)appendix material\ndivert(0)body text\n"))
	if err != nil {
		fmt.Println("unexpected processing error:", err)
		return
	}

	if err = p.Finish(); err != nil {
		fmt.Println("unexpected error finishing:", err)
		return
	}
	// Output:
	// body text
	// appendix material
}

// Example_reloadState demonstrates saving the state of one processor
// and resuming from it with another
func Example_reloadState() {
	p1, err := macroproc.NewProcessor()
	if err != nil {
		fmt.Println("unexpected error creating the processor:", err)
		return
	}

	err = p1.Process("setup", []byte("define(HOST, db.example.com)dnl\n"))
	if err != nil {
		fmt.Println("unexpected processing error:", err)
		return
	}

	state := &bytes.Buffer{}
	if err = p1.SaveState(state); err != nil {
		fmt.Println("unexpected error saving state:", err)
		return
	}

	p2, err := macroproc.NewProcessor()
	if err != nil {
		fmt.Println("unexpected error creating the processor:", err)
		return
	}

	if err = p2.LoadState(state.Bytes()); err != nil {
		fmt.Println("unexpected error loading state:", err)
		return
	}

	if err = p2.Process("resumed", []byte("connect to HOST\n")); err != nil {
		fmt.Println("unexpected processing error:", err)
		return
	}
	// Output:
	// connect to db.example.com
}
