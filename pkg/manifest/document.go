package manifest

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/rustcap/pkg/errors"
)

// Document is a parsed manifest.
type Document struct {
	Root *Table
}

// Parse decodes TOML manifest content.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest")
	}
	root, err := tableFrom(raw)
	if err != nil {
		return nil, err
	}
	return &Document{Root: root}, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Encode serializes the document as TOML.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(d.Root.Map()); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "encode manifest")
	}
	return buf.Bytes(), nil
}

// Save overwrites the file at path with the encoded document.
func (d *Document) Save(path string) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func tableFrom(m map[string]any) (*Table, error) {
	t := NewTable()
	for k, raw := range m {
		v, err := valueFrom(raw)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		t.entries[k] = v
	}
	return t, nil
}

func valueFrom(raw any) (*Value, error) {
	switch x := raw.(type) {
	case string:
		return String(x), nil
	case int64:
		return Integer(x), nil
	case float64:
		return Float(x), nil
	case bool:
		return Bool(x), nil
	case time.Time:
		return &Value{kind: KindDatetime, date: x}, nil
	case map[string]any:
		t, err := tableFrom(x)
		if err != nil {
			return nil, err
		}
		return TableValue(t), nil
	case []map[string]any:
		arr := make([]*Value, len(x))
		for i, m := range x {
			t, err := tableFrom(m)
			if err != nil {
				return nil, err
			}
			arr[i] = TableValue(t)
		}
		return Array(arr...), nil
	case []any:
		arr := make([]*Value, len(x))
		for i, e := range x {
			v, err := valueFrom(e)
			if err != nil {
				return nil, err
			}
			arr[i] = v
		}
		return Array(arr...), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidManifest, "unsupported TOML value of type %T", raw)
	}
}

// Interface converts v to plain Go values: string, int64, float64, bool,
// time.Time, []any, []map[string]any for arrays of tables, and
// map[string]any.
func (v *Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.bit
	case KindDatetime:
		return v.date
	case KindTable:
		return v.tbl.Map()
	case KindArray:
		if tables, ok := v.tableArray(); ok {
			return tables
		}
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	}
	return nil
}

// tableArray returns the elements as maps if v is a non-empty array whose
// elements are all tables, so they encode as [[array.of.tables]].
func (v *Value) tableArray() ([]map[string]any, bool) {
	if len(v.arr) == 0 {
		return nil, false
	}
	out := make([]map[string]any, len(v.arr))
	for i, e := range v.arr {
		if e.kind != KindTable {
			return nil, false
		}
		out[i] = e.tbl.Map()
	}
	return out, true
}

// Map converts t to a map of plain Go values (see [Value.Interface]).
func (t *Table) Map() map[string]any {
	m := make(map[string]any, len(t.entries))
	for k, v := range t.entries {
		m[k] = v.Interface()
	}
	return m
}

// LibPath returns the [lib] path setting, or "" when the manifest has none.
func (d *Document) LibPath() (string, error) {
	lib, err := d.Root.Table("lib")
	if err != nil || lib == nil {
		return "", err
	}
	p, _, err := lib.StringAt("path")
	return p, err
}
