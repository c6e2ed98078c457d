package manifest

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/rustcap/pkg/errors"
)

// Kind identifies the shape of a [Value].
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindFloat
	KindBool
	KindDatetime
	KindArray
	KindTable
)

var kindNames = [...]string{"string", "integer", "float", "boolean", "datetime", "array", "table"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is a node in a manifest document.
//
// The zero value is not meaningful; build values with [String], [Integer],
// [Float], [Bool], [Array] or [NewTable] (via [TableValue]).
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	bit  bool
	date time.Time // local datetimes carry the decoder's marker Location
	arr  []*Value
	tbl  *Table
}

// String returns a string node.
func String(s string) *Value { return &Value{kind: KindString, str: s} }

// Integer returns an integer node.
func Integer(n int64) *Value { return &Value{kind: KindInteger, num: n} }

// Float returns a float node.
func Float(f float64) *Value { return &Value{kind: KindFloat, flt: f} }

// Bool returns a boolean node.
func Bool(b bool) *Value { return &Value{kind: KindBool, bit: b} }

// Array returns an array node holding vs.
func Array(vs ...*Value) *Value { return &Value{kind: KindArray, arr: vs} }

// TableValue wraps t as a node.
func TableValue(t *Table) *Value { return &Value{kind: KindTable, tbl: t} }

// Kind returns the node's shape.
func (v *Value) Kind() Kind { return v.kind }

func (v *Value) mismatch(want Kind) error {
	return errors.New(errors.ErrCodeInvalidManifest, "expected %s, found %s", want, v.kind)
}

// AsString returns the node's string, or an error if it is not a string.
func (v *Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", v.mismatch(KindString)
	}
	return v.str, nil
}

// AsInteger returns the node's integer, or an error if it is not an integer.
func (v *Value) AsInteger() (int64, error) {
	if v.kind != KindInteger {
		return 0, v.mismatch(KindInteger)
	}
	return v.num, nil
}

// AsFloat returns the node's float, or an error if it is not a float.
func (v *Value) AsFloat() (float64, error) {
	if v.kind != KindFloat {
		return 0, v.mismatch(KindFloat)
	}
	return v.flt, nil
}

// AsBool returns the node's boolean, or an error if it is not a boolean.
func (v *Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, v.mismatch(KindBool)
	}
	return v.bit, nil
}

// AsArray returns the node's elements, or an error if it is not an array.
func (v *Value) AsArray() ([]*Value, error) {
	if v.kind != KindArray {
		return nil, v.mismatch(KindArray)
	}
	return v.arr, nil
}

// AsTable returns the node's table, or an error if it is not a table.
func (v *Value) AsTable() (*Table, error) {
	if v.kind != KindTable {
		return nil, v.mismatch(KindTable)
	}
	return v.tbl, nil
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	c := *v
	switch v.kind {
	case KindArray:
		c.arr = make([]*Value, len(v.arr))
		for i, e := range v.arr {
			c.arr[i] = e.Clone()
		}
	case KindTable:
		c.tbl = v.tbl.Clone()
	}
	return &c
}

// Table is a set of keyed nodes. Key order is not significant.
type Table struct {
	entries map[string]*Value
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Value)}
}

// Len returns the number of keys.
func (t *Table) Len() int { return len(t.entries) }

// Keys returns the table's keys in sorted order.
func (t *Table) Keys() []string {
	return slices.Sorted(maps.Keys(t.entries))
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	_, ok := t.entries[key]
	return ok
}

// Get returns the node stored under key.
func (t *Table) Get(key string) (*Value, bool) {
	v, ok := t.entries[key]
	return v, ok
}

// Set stores v under key, replacing any existing node.
func (t *Table) Set(key string, v *Value) { t.entries[key] = v }

// Delete removes key and reports whether it was present.
func (t *Table) Delete(key string) bool {
	_, ok := t.entries[key]
	delete(t.entries, key)
	return ok
}

// Table returns the sub-table under key. A missing key yields (nil, nil); a
// key holding something other than a table is an error naming the key.
func (t *Table) Table(key string) (*Table, error) {
	v, ok := t.entries[key]
	if !ok {
		return nil, nil
	}
	sub, err := v.AsTable()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "key %q", key)
	}
	return sub, nil
}

// StringAt returns the string under key. ok is false if the key is missing.
func (t *Table) StringAt(key string) (s string, ok bool, err error) {
	v, ok := t.entries[key]
	if !ok {
		return "", false, nil
	}
	s, err = v.AsString()
	if err != nil {
		return "", true, errors.Wrap(errors.ErrCodeInvalidManifest, err, "key %q", key)
	}
	return s, true, nil
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	c := NewTable()
	for k, v := range t.entries {
		c.entries[k] = v.Clone()
	}
	return c
}
