package phpserialize

import (
	"reflect"
	"slices"
)

// unorderedDecoder is the hook the Decoder checks for before its regular
// tag dispatch.
type unorderedDecoder interface {
	decodeUnordered(d *Decoder) error
}

// UnorderedArray decodes a PHP array whose integer keys may be out of
// order or sparse. The entries are collected as an integer-keyed mapping,
// sorted by key, and emitted as a dense slice: gaps are dropped, never
// padded. Decoding
//
//	a:4:{i:0;s:4:"zero";i:2;s:3:"two";i:1;s:3:"one";i:6;s:3:"six";}
//
// yields ["zero", "one", "two", "six"].
//
// This is the only decode path that tolerates non-consecutive keys; a
// plain slice target rejects them with ErrIndexMismatch. An
// UnorderedArray encodes as an ordinary dense sequence.
type UnorderedArray[T any] []T

func (u *UnorderedArray[T]) decodeUnordered(d *Decoder) error {
	var m map[int]T
	if err := d.decodeValue(reflect.ValueOf(&m).Elem()); err != nil {
		return err
	}
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	*u = out
	return nil
}

// UnmarshalUnordered decodes data as an integer-keyed array with
// UnorderedArray semantics and returns the dense, key-ordered slice.
func UnmarshalUnordered[T any](data []byte, opts ...Option) ([]T, error) {
	var u UnorderedArray[T]
	if err := Unmarshal(data, &u, opts...); err != nil {
		return nil, err
	}
	return []T(u), nil
}
