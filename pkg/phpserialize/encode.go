package phpserialize

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"reflect"
	"sort"

	"github.com/acolita/phpwire/internal/wire"
)

// Encoder writes Go values to an output sink in PHP's serialize() format.
//
// LIMITATION: circular pointer graphs are not detected; encoding one
// recurses until the stack is exhausted. The format has no reference
// tags, so cycles cannot be represented at all.
type Encoder struct {
	w *wire.Writer
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: wire.NewWriter(w)}
}

// Marshal encodes v as a PHP-serialized byte vector. Supported values:
//   - nil and nil pointers → null
//   - bool, integer and float kinds, string, []byte
//   - slices and arrays → sequence arrays with positional integer keys
//   - maps with string or integer keys → mapping arrays (keys sorted,
//     since the format is order-sensitive and Go maps are not)
//   - structs → mapping arrays keyed by field name or `php` tag
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalTo encodes v directly to a sink, without buffering the whole
// output in memory first.
func MarshalTo(w io.Writer, v any) error {
	return NewEncoder(w).Encode(v)
}

// Encode writes one value.
func (e *Encoder) Encode(v any) error {
	if v == nil {
		return e.w.WriteNull()
	}
	return e.encodeValue(reflect.ValueOf(v))
}

func (e *Encoder) encodeValue(rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		// Absent optionals are the null literal.
		if rv.IsNil() {
			return e.w.WriteNull()
		}
		return e.encodeValue(rv.Elem())
	case reflect.Bool:
		return e.w.WriteBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.w.WriteInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return e.w.WriteUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return e.w.WriteFloat(rv.Float())
	case reflect.String:
		return e.w.WriteString(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return e.w.WriteBytes(rv.Bytes())
		}
		return e.encodeSequence(rv)
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			raw := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(raw), rv)
			return e.w.WriteBytes(raw)
		}
		return e.encodeSequence(rv)
	case reflect.Map:
		return e.encodeMap(rv)
	case reflect.Struct:
		return e.encodeStruct(rv)
	}
	return fmt.Errorf("%w: cannot marshal %s", ErrUnsupportedFeature, rv.Kind())
}

/// encodeSequence writes a slice or array as `a:<n>:{i:0;<v0>i:1;<v1>...}`.
func (e *Encoder) encodeSequence(rv reflect.Value) error {
	n := rv.Len()
	if err := e.w.WriteArrayHeader(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := e.w.WriteInt(int64(i)); err != nil {
			return err
		}
		if err := e.encodeValue(rv.Index(i)); err != nil {
			return err
		}
	}
	return e.w.WriteArrayEnd()
}

func (e *Encoder) encodeMap(rv reflect.Value) error {
	keys := rv.MapKeys()
	switch rv.Type().Key().Kind() {
	case reflect.String:
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Int() < keys[j].Int() })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		sort.Slice(keys, func(i, j int) bool { return keys[i].Uint() < keys[j].Uint() })
	default:
		return fmt.Errorf("%w: map key type %s", ErrUnsupportedFeature, rv.Type().Key())
	}

	if err := e.w.WriteArrayHeader(len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		var err error
		switch k.Kind() {
		case reflect.String:
			err = e.w.WriteString(k.String())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			err = e.w.WriteUint(k.Uint())
		default:
			err = e.w.WriteInt(k.Int())
		}
		if err != nil {
			return err
		}
		if err := e.encodeValue(rv.MapIndex(k)); err != nil {
			return err
		}
	}
	return e.w.WriteArrayEnd()
}

func (e *Encoder) encodeStruct(rv reflect.Value) error {
	flds := cachedFields(rv.Type())

	// The array header carries the entry count, so omitted fields have to
	// be counted before anything is written.
	n := 0
	for i := range flds.list {
		f := &flds.list[i]
		if f.omitEmpty && isEmptyValue(rv.Field(f.index)) {
			continue
		}
		n++
	}

	if err := e.w.WriteArrayHeader(n); err != nil {
		return err
	}
	for i := range flds.list {
		f := &flds.list[i]
		if f.omitEmpty && isEmptyValue(rv.Field(f.index)) {
			continue
		}
		if err := e.w.WriteString(f.name); err != nil {
			return err
		}
		if err := e.encodeValue(rv.Field(f.index)); err != nil {
			return err
		}
	}
	return e.w.WriteArrayEnd()
}

// EncodeSequence writes a sequence array from a push-style element
// source. The format length-prefixes every aggregate, so the element
/// count must be known before the body is written: n < 0 reports
// ErrLengthRequired instead of buffering the sequence in memory.
func (e *Encoder) EncodeSequence(n int, seq iter.Seq[any]) error {
	if n < 0 {
		return ErrLengthRequired
	}
	if err := e.w.WriteArrayHeader(n); err != nil {
		return err
	}
	i := 0
	for v := range seq {
		if i == n {
			return fmt.Errorf("phpserialize: sequence produced more than the declared %d elements", n)
		}
		if err := e.w.WriteInt(int64(i)); err != nil {
			return err
		}
		if err := e.Encode(v); err != nil {
			return err
		}
		i++
	}
	if i != n {
		return fmt.Errorf("phpserialize: sequence produced %d of the declared %d elements", i, n)
	}
	return e.w.WriteArrayEnd()
}
