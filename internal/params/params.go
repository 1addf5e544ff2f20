package params

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Writer appends fields to a JSON object under construction.
// The first error sticks; later calls are no-ops.
type Writer struct {
	buf    *bytes.Buffer
	fields int
	err    error
}

// Build runs fn against a fresh object and returns the encoded result.
func Build(fn func(w *Writer)) (json.RawMessage, error) {
	w := &Writer{buf: &bytes.Buffer{}}
	w.buf.WriteByte('{')

	fn(w)

	if w.err != nil {
		return nil, w.err
	}

	w.buf.WriteByte('}')

	return json.RawMessage(w.buf.Bytes()), nil
}

// Field writes name with value encoded by encoding/json.
func (w *Writer) Field(name string, value any) {
	if w.err != nil {
		return
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("encode parameter %q: %w", name, err)

		return
	}

	w.key(name)
	w.buf.Write(encoded)
}

// Object writes name as a nested object filled in by fn.
func (w *Writer) Object(name string, fn func(w *Writer)) {
	if w.err != nil {
		return
	}

	w.key(name)
	w.object(fn)
}

// Array writes name as an array whose elements are added by fn.
func (w *Writer) Array(name string, fn func(e *Elements)) {
	if w.err != nil {
		return
	}

	w.key(name)
	w.buf.WriteByte('[')

	fn(&Elements{parent: w})

	if w.err != nil {
		return
	}

	w.buf.WriteByte(']')
}

// Elements appends to an array opened by Writer.Array.
type Elements struct {
	parent *Writer
	count  int
}

// Object appends an object filled in by fn.
func (e *Elements) Object(fn func(w *Writer)) {
	if e.parent.err != nil {
		return
	}

	if e.count > 0 {
		e.parent.buf.WriteByte(',')
	}

	e.count++
	e.parent.object(fn)
}

func (w *Writer) object(fn func(w *Writer)) {
	nested := &Writer{buf: w.buf}
	w.buf.WriteByte('{')

	fn(nested)

	if nested.err != nil {
		w.err = nested.err

		return
	}

	w.buf.WriteByte('}')
}

func (w *Writer) key(name string) {
	if w.fields > 0 {
		w.buf.WriteByte(',')
	}

	w.fields++

	// json.Marshal of a string cannot fail.
	encoded, _ := json.Marshal(name)
	w.buf.Write(encoded)
	w.buf.WriteByte(':')
}

// FromMap encodes m with its keys in the order given. Keys present in m but
// missing from order are appended afterwards in sorted order.
func FromMap(m map[string]any, order ...string) (json.RawMessage, error) {
	if len(m) == 0 && len(order) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(order))

	return Build(func(w *Writer) {
		for _, k := range order {
			v, ok := m[k]
			if !ok || seen[k] {
				continue
			}

			seen[k] = true
			w.Field(k, v)
		}

		for _, k := range slices.Sorted(maps.Keys(m)) {
			if !seen[k] {
				w.Field(k, m[k])
			}
		}
	})
}
