package macroproc

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiversionRouting(t *testing.T) {
	var out bytes.Buffer

	d := NewDiversions(&out)

	if err := d.Write([]byte("now ")); err != nil {
		t.Fatal("write to diversion 0:", err)
	}

	d.SetCurrent(2)

	if err := d.Write([]byte("later")); err != nil {
		t.Fatal("write to diversion 2:", err)
	}

	d.SetCurrent(-1)

	if err := d.Write([]byte("never")); err != nil {
		t.Fatal("write to a negative diversion:", err)
	}

	if out.String() != "now " {
		t.Errorf("diverted text appeared early; output is %q", out.String())
	}

	d.SetCurrent(0)

	if err := d.Undivert(2); err != nil {
		t.Fatal("undivert:", err)
	}

	if out.String() != "now later" {
		t.Errorf("output after undivert is %q, want %q",
			out.String(), "now later")
	}

	if got := d.Contents(2); len(got) != 0 {
		t.Errorf("diversion 2 still holds %q after undivert", got)
	}
}

func TestDiversionsGrowOnDemand(t *testing.T) {
	d := NewDiversions(&bytes.Buffer{})

	d.SetCurrent(5)

	if err := d.Write([]byte("x")); err != nil {
		t.Fatal("write:", err)
	}

	if d.Max() != 5 {
		t.Errorf("Max() = %d, want 5", d.Max())
	}

	if got := d.Contents(3); len(got) != 0 {
		t.Errorf("untouched diversion 3 holds %q, want nothing", got)
	}

	if got := string(d.Contents(5)); got != "x" {
		t.Errorf("diversion 5 holds %q, want %q", got, "x")
	}
}

func TestUndivertIntoCurrentDiversion(t *testing.T) {
	var out bytes.Buffer

	d := NewDiversions(&out)
	d.SetCurrent(3)

	if err := d.Write([]byte("kept")); err != nil {
		t.Fatal("write:", err)
	}

	// a diversion cannot be undiverted into itself
	if err := d.Undivert(3); err != nil {
		t.Fatal("undivert:", err)
	}

	if got := string(d.Contents(3)); got != "kept" {
		t.Errorf("diversion 3 holds %q, want %q", got, "kept")
	}
}

func TestFlushAllAscendingOrder(t *testing.T) {
	var out bytes.Buffer

	d := NewDiversions(&out)

	d.SetCurrent(3)

	if err := d.Write([]byte("third")); err != nil {
		t.Fatal("write:", err)
	}

	d.SetCurrent(1)

	if err := d.Write([]byte("first")); err != nil {
		t.Fatal("write:", err)
	}

	d.SetCurrent(0)

	if err := d.FlushAll(); err != nil {
		t.Fatal("flush:", err)
	}

	if diff := cmp.Diff("firstthird", out.String()); diff != "" {
		t.Errorf("flush order mismatch (-want +got):\n%s", diff)
	}

	for i := 1; i <= d.Max(); i++ {
		if got := d.Contents(i); len(got) != 0 {
			t.Errorf("diversion %d still holds %q after FlushAll", i, got)
		}
	}
}
