package macroproc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// tableOp is one step in a shadowing scenario: apply the operation and
// then check what Lookup returns for the name
type tableOp struct {
	op     string
	val    string
	want   string
	wantOK bool
}

func TestTableShadowing(t *testing.T) {
	testCases := []struct {
		name string
		ops  []tableOp
	}{
		{
			name: "define shadows define",
			ops: []tableOp{
				{op: "define", val: "one", want: "one", wantOK: true},
				{op: "define", val: "two", want: "two", wantOK: true},
				{op: "undefine"},
			},
		},
		{
			name: "undefine removes all bindings",
			ops: []tableOp{
				{op: "define", val: "one", want: "one", wantOK: true},
				{op: "pushdef", val: "two", want: "two", wantOK: true},
				{op: "undefine"},
			},
		},
		{
			name: "popdef re-exposes the shadowed binding",
			ops: []tableOp{
				{op: "define", val: "one", want: "one", wantOK: true},
				{op: "pushdef", val: "two", want: "two", wantOK: true},
				{op: "pushdef", val: "three", want: "three", wantOK: true},
				{op: "popdef", want: "two", wantOK: true},
				{op: "popdef", want: "one", wantOK: true},
				{op: "popdef"},
			},
		},
		{
			name: "removals on an unknown name are no-ops",
			ops: []tableOp{
				{op: "undefine"},
				{op: "popdef"},
				{op: "define", val: "one", want: "one", wantOK: true},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tbl := &Table{}

			for i, op := range tc.ops {
				switch op.op {
				case "define":
					tbl.Define("x", TextValue(op.val))
				case "pushdef":
					tbl.PushDef("x", TextValue(op.val))
				case "undefine":
					tbl.Undefine("x")
				case "popdef":
					tbl.PopDef("x")
				}

				v, ok := tbl.Lookup("x")
				if ok != op.wantOK {
					t.Fatalf("step %d (%s): lookup ok = %t, want %t",
						i, op.op, ok, op.wantOK)
				}

				if ok && v.Str != op.want {
					t.Errorf("step %d (%s): lookup gave %q, want %q",
						i, op.op, v.Str, op.want)
				}
			}
		})
	}
}

func TestTableLookupIsIndependentOfOtherNames(t *testing.T) {
	tbl := &Table{}
	tbl.Define("a", TextValue("1"))
	tbl.Define("b", TextValue("2"))
	tbl.Define("a", TextValue("3"))
	tbl.Undefine("b")

	v, ok := tbl.Lookup("a")
	if !ok || v.Str != "3" {
		t.Errorf("lookup of a gave %q, %t; want \"3\", true", v.Str, ok)
	}

	if _, ok := tbl.Lookup("b"); ok {
		t.Error("b should not be bound after Undefine")
	}
}

func TestTableBindingsKeepDefinitionOrder(t *testing.T) {
	tbl := &Table{}
	tbl.Define("a", TextValue("1"))
	tbl.Define("b", BuiltinValue("divert"))
	tbl.PushDef("a", TextValue("2"))

	want := []Binding{
		{Name: "a", Val: TextValue("1")},
		{Name: "b", Val: BuiltinValue("divert")},
		{Name: "a", Val: TextValue("2")},
	}

	if diff := cmp.Diff(want, tbl.Bindings()); diff != "" {
		t.Errorf("bindings mismatch (-want +got):\n%s", diff)
	}
}
