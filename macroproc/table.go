package macroproc

// ValueKind distinguishes the two sorts of macro binding
type ValueKind int

// TextMacro is a binding whose value is literal replacement text.
// BuiltinMacro is a binding whose value names a handler implemented by the
// engine itself.
const (
	TextMacro ValueKind = iota
	BuiltinMacro
)

// Value is the value bound to a macro name: either replacement text or
// the identifier of a builtin handler
type Value struct {
	Kind ValueKind
	Str  string
}

// TextValue returns a Value holding literal replacement text
func TextValue(text string) Value {
	return Value{Kind: TextMacro, Str: text}
}

// BuiltinValue returns a Value naming a builtin handler
func BuiltinValue(id string) Value {
	return Value{Kind: BuiltinMacro, Str: id}
}

// Binding associates a macro name with its value. Names need not be
// unique; a later binding for the same name shadows earlier ones.
type Binding struct {
	Name string
	Val  Value
}

// Table holds the macro bindings as an append-only history. Lookup scans
// the history in reverse so the most recently added binding for a name
// always wins. This makes pushdef/popdef trivial and the whole table can
// be serialized in a single pass in definition order.
type Table struct {
	bindings []Binding
}

// Define appends a binding for the name, shadowing any earlier bindings
func (t *Table) Define(name string, v Value) {
	t.bindings = append(t.bindings, Binding{Name: name, Val: v})
}

// Undefine removes every binding for the name. It does nothing if the
// name is not bound.
func (t *Table) Undefine(name string) {
	kept := t.bindings[:0]

	for _, b := range t.bindings {
		if b.Name != name {
			kept = append(kept, b)
		}
	}

	t.bindings = kept
}

// PushDef appends a binding for the name. It behaves exactly as Define;
// the distinction only matters to the caller, which can later remove just
// this binding with PopDef.
func (t *Table) PushDef(name string, v Value) {
	t.Define(name, v)
}

// PopDef removes the most recent binding for the name, re-exposing any
// earlier binding. It does nothing if the name is not bound.
func (t *Table) PopDef(name string) {
	for i := len(t.bindings) - 1; i >= 0; i-- {
		if t.bindings[i].Name == name {
			t.bindings = append(t.bindings[:i], t.bindings[i+1:]...)
			return
		}
	}
}

// Lookup returns the most recent binding for the name and true, or the
// zero Value and false if the name is not bound
func (t *Table) Lookup(name string) (Value, bool) {
	for i := len(t.bindings) - 1; i >= 0; i-- {
		if t.bindings[i].Name == name {
			return t.bindings[i].Val, true
		}
	}

	return Value{}, false
}

// Bindings returns the bindings in definition order. The slice is the
// table's own backing store; callers must not modify it.
func (t *Table) Bindings() []Binding {
	return t.bindings
}
