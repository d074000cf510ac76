// Package wire implements low-level lexical primitives for PHP's
// serialize() format.
//
// This package handles the mechanical byte manipulation required to read
// and write the format's grammar: type tags, signed digit runs,
// length-prefixed raw strings, and array headers.
package wire

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Common errors returned by Reader methods.
var (
	ErrUnexpectedEOF = errors.New("wire: unexpected end of input")
	ErrLengthLimit   = errors.New("wire: declared length exceeds limit")
)

// UnexpectedByteError reports a lexical mismatch against an expected byte.
type UnexpectedByteError struct {
	Expected byte
	Actual   byte
}

func (e *UnexpectedByteError) Error() string {
	return fmt.Sprintf("wire: expected %q but got %q", e.Expected, e.Actual)
}

// ExpectedDigitError reports a non-digit byte where a digit run had to start.
type ExpectedDigitError struct {
	Actual byte
}

func (e *ExpectedDigitError) Error() string {
	return fmt.Sprintf("wire: expected a digit but got %q", e.Actual)
}

// Reader reads PHP-serialized data from a byte stream.
// It buffers at most one byte of lookahead, which is enough to
// disambiguate every production in the grammar.
type Reader struct {
	src     io.Reader
	buf     byte
	ok      bool
	scratch [1]byte
}

// NewReader creates a Reader over the given byte source.
func NewReader(src io.Reader) *Reader {
	return &Reader{src: src}
}

// fill buffers the next byte if none is buffered. At end of input the
// buffer stays empty; underlying read failures are wrapped.
func (r *Reader) fill() error {
	if r.ok {
		return nil
	}
	if _, err := io.ReadFull(r.src, r.scratch[:]); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("wire: read failed: %w", err)
	}
	r.buf = r.scratch[0]
	r.ok = true
	return nil
}

// Peek returns the next byte without consuming it.
// ok is false only at true end of input.
func (r *Reader) Peek() (b byte, ok bool, err error) {
	if err := r.fill(); err != nil {
		return 0, false, err
	}
	return r.buf, r.ok, nil
}

// ReadByte reads a single byte. Implements io.ByteReader.
// Returns ErrUnexpectedEOF at end of input.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.fill(); err != nil {
		return 0, err
	}
	if !r.ok {
		return 0, ErrUnexpectedEOF
	}
	r.ok = false
	return r.buf, nil
}

// Expect consumes one byte and fails with an UnexpectedByteError if it is
// not the wanted one.
func (r *Reader) Expect(want byte) error {
	got, err := r.ReadByte()
	if err != nil {
		return err
	}
	if got != want {
		return &UnexpectedByteError{Expected: want, Actual: got}
	}
	return nil
}

// ReadFull reads exactly len(p) bytes, folding in the buffered lookahead
// byte first. Premature end of input maps to ErrUnexpectedEOF.
func (r *Reader) ReadFull(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if r.ok {
		p[0] = r.buf
		r.ok = false
		p = p[1:]
	}
	if len(p) == 0 {
		return nil
	}
	if _, err := io.ReadFull(r.src, p); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrUnexpectedEOF
		}
		return fmt.Errorf("wire: read failed: %w", err)
	}
	return nil
}

// CollectUnsigned appends one-or-more ASCII digits to buf. The first byte
// must be a digit; after that the run stops, without consuming, at the
// first non-digit or end of input.
func (r *Reader) CollectUnsigned(buf []byte) ([]byte, error) {
	c, err := r.ReadByte()
	if err != nil {
		return buf, err
	}
	if c < '0' || c > '9' {
		return buf, &ExpectedDigitError{Actual: c}
	}
	buf = append(buf, c)

	for {
		c, ok, err := r.Peek()
		if err != nil {
			return buf, err
		}
		if !ok || c < '0' || c > '9' {
			return buf, nil
		}
		_, _ = r.ReadByte() // consume digit (already peeked)
		buf = append(buf, c)
	}
}

// CollectSign appends a leading `+` or `-` to buf if one is present.
// Absence of a sign is not an error.
func (r *Reader) CollectSign(buf []byte) ([]byte, error) {
	c, ok, err := r.Peek()
	if err != nil {
		return buf, err
	}
	if ok && (c == '+' || c == '-') {
		_, _ = r.ReadByte() // consume sign (already peeked)
		buf = append(buf, c)
	}
	return buf, nil
}

// readLength reads an unsigned decimal length field.
func (r *Reader) readLength() (int, error) {
	var scratch [20]byte
	buf, err := r.CollectUnsigned(scratch[:0])
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(string(buf), 10, 63)
	if err != nil {
		return 0, fmt.Errorf("wire: invalid length %q: %w", buf, err)
	}
	return int(n), nil
}

// ReadLengthPrefixedBytes reads `<len>:"<len raw bytes>";`. The length is
// a byte count and the content may be arbitrary non-text bytes. The
// declared length is attacker-controlled; maxLen > 0 caps it before any
// allocation happens (ErrLengthLimit), maxLen <= 0 disables the cap.
func (r *Reader) ReadLengthPrefixedBytes(maxLen int) ([]byte, error) {
	length, err := r.readLength()
	if err != nil {
		return nil, err
	}
	if err := r.Expect(':'); err != nil {
		return nil, err
	}
	if err := r.Expect('"'); err != nil {
		return nil, err
	}
	if maxLen > 0 && length > maxLen {
		return nil, fmt.Errorf("%w: string length %d > %d", ErrLengthLimit, length, maxLen)
	}

	data := make([]byte, length)
	if err := r.ReadFull(data); err != nil {
		return nil, err
	}

	if err := r.Expect('"'); err != nil {
		return nil, err
	}
	if err := r.Expect(';'); err != nil {
		return nil, err
	}
	return data, nil
}

// ReadArrayHeader reads `<count>:{` and returns the declared entry count:
// element pairs for sequences, key/value pairs for mappings. maxCount > 0
// caps the declared count (ErrLengthLimit), maxCount <= 0 disables the cap.
func (r *Reader) ReadArrayHeader(maxCount int) (int, error) {
	count, err := r.readLength()
	if err != nil {
		return 0, err
	}
	if err := r.Expect(':'); err != nil {
		return 0, err
	}
	if err := r.Expect('{'); err != nil {
		return 0, err
	}
	if maxCount > 0 && count > maxCount {
		return 0, fmt.Errorf("%w: array count %d > %d", ErrLengthLimit, count, maxCount)
	}
	return count, nil
}
