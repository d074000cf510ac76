package phpserialize

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/acolita/phpwire/internal/wire"
)

// DefaultMaxStringLen is the default maximum declared string length (64 MiB).
// This prevents memory exhaustion from a hostile length prefix.
const DefaultMaxStringLen = 64 << 20

// DefaultMaxArrayLen is the default maximum declared array entry count
// (10 million entries).
const DefaultMaxArrayLen = 10_000_000

// DefaultMaxDepth is the default maximum nesting depth.
const DefaultMaxDepth = 1000

// Decoder reads PHP-serialized values from a stream and populates Go
// targets. A Decoder is owned by a single caller; it is not safe for
// concurrent use.
type Decoder struct {
	r            *wire.Reader
	maxDepth     int
	maxStringLen int
	maxArrayLen  int
	depth        int
	scratch      []byte
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxDepth sets the maximum nesting depth (default 1000).
func WithMaxDepth(depth int) Option {
	return func(d *Decoder) {
		d.maxDepth = depth
	}
}

// WithMaxStringLen caps the declared length of a single string before the
// decoder allocates for it (default 64 MiB, 0 means unlimited).
func WithMaxStringLen(n int) Option {
	return func(d *Decoder) {
		d.maxStringLen = n
	}
}

// WithMaxArrayLen caps the declared entry count of a single array
// (default 10 million, 0 means unlimited).
func WithMaxArrayLen(n int) Option {
	return func(d *Decoder) {
		d.maxArrayLen = n
	}
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{
		r:            wire.NewReader(r),
		maxDepth:     DefaultMaxDepth,
		maxStringLen: DefaultMaxStringLen,
		maxArrayLen:  DefaultMaxArrayLen,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Unmarshal decodes a single PHP-serialized value from data into v,
// which must be a non-nil pointer. See Decoder.Decode for the supported
// target types.
func Unmarshal(data []byte, v any, opts ...Option) error {
	return NewDecoder(bytes.NewReader(data), opts...).Decode(v)
}

// Decode reads one value from the stream into v. Supported targets:
// booleans, integer and float kinds, string ([]byte for raw non-UTF-8
// content), pointers (a wire null yields nil), slices and arrays
// (sequences), maps and structs (mappings), and any.
//
// Struct fields are matched by name or by a `php:"name"` tag. Wire keys
// not present in the target struct are skipped; duplicate mapping keys
// keep the last value seen.
func (d *Decoder) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: target must be a non-nil pointer, got %T", ErrTypeMismatch, v)
	}
	return d.decodeValue(rv.Elem())
}

// wireErr maps lexical-layer errors onto the public taxonomy.
func wireErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, wire.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}
	if errors.Is(err, wire.ErrLengthLimit) {
		return fmt.Errorf("%w: %v", ErrSizeLimitExceeded, err)
	}
	var ub *wire.UnexpectedByteError
	var ed *wire.ExpectedDigitError
	if errors.As(err, &ub) || errors.As(err, &ed) {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return err // wrapped I/O failure
}

// decodeValue decodes one value into rv, dispatching on the wire tag.
func (d *Decoder) decodeValue(rv reflect.Value) error {
	d.depth++
	if d.depth > d.maxDepth {
		return ErrMaxDepthExceeded
	}
	defer func() { d.depth-- }()

	if rv.CanAddr() {
		if u, ok := rv.Addr().Interface().(unorderedDecoder); ok {
			return u.decodeUnordered(d)
		}
	}

	switch rv.Kind() {
	case reflect.Pointer:
		// Optional target: a leading null means absent.
		c, ok, err := d.r.Peek()
		if err != nil {
			return wireErr(err)
		}
		if !ok {
			return ErrUnexpectedEOF
		}
		if c == tagNull {
			if err := d.readNull(); err != nil {
				return err
			}
			rv.SetZero()
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return d.decodeValue(rv.Elem())
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return fmt.Errorf("%w: cannot decode into non-empty interface %s", ErrTypeMismatch, rv.Type())
		}
		v, err := d.decodeAny()
		if err != nil {
			return err
		}
		if v == nil {
			rv.SetZero()
		} else {
			rv.Set(reflect.ValueOf(v))
		}
		return nil
	}

	tag, err := d.r.ReadByte()
	if err != nil {
		return wireErr(err)
	}

	switch tag {
	case tagNull:
		// Null terminates without a colon. Only optional (pointer) and
		// any targets accept it; both are handled above.
		if err := wireErr(d.r.Expect(';')); err != nil {
			return err
		}
		return fmt.Errorf("%w: null into %s", ErrTypeMismatch, rv.Type())

	case tagBool:
		b, err := d.readBoolBody()
		if err != nil {
			return err
		}
		if rv.Kind() != reflect.Bool {
			return fmt.Errorf("%w: boolean into %s", ErrTypeMismatch, rv.Type())
		}
		rv.SetBool(b)
		return nil

	case tagInt:
		n, err := d.readIntBody()
		if err != nil {
			return err
		}
		return setInt(rv, n)

	case tagFloat:
		f, err := d.readFloatBody()
		if err != nil {
			return err
		}
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			if rv.OverflowFloat(f) {
				return fmt.Errorf("%w: %g does not fit %s", ErrNumericConversion, f, rv.Type())
			}
			rv.SetFloat(f)
			return nil
		}
		return fmt.Errorf("%w: float into %s", ErrTypeMismatch, rv.Type())

	case tagString:
		raw, err := d.readStringBody()
		if err != nil {
			return err
		}
		switch {
		case rv.Kind() == reflect.String:
			// PHP strings are raw bytes; text targets force UTF-8.
			if !utf8.Valid(raw) {
				return fmt.Errorf("%w: %d bytes", ErrInvalidUTF8, len(raw))
			}
			rv.SetString(string(raw))
			return nil
		case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
			rv.SetBytes(raw)
			return nil
		}
		return fmt.Errorf("%w: string into %s", ErrTypeMismatch, rv.Type())

	case tagArray:
		return d.decodeArray(rv)

	case tagObject:
		// The payload is not parseable past this point, so nothing is
		// consumed after the tag.
		return fmt.Errorf("%w: PHP object decoding is not implemented", ErrUnsupportedFeature)

	default:
		return fmt.Errorf("%w: %q", ErrInvalidTypeTag, tag)
	}
}

// setInt assigns a decoded wire integer to any numeric target kind.
func setInt(rv reflect.Value, n int64) error {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.OverflowInt(n) {
			return fmt.Errorf("%w: %d does not fit %s", ErrNumericConversion, n, rv.Type())
		}
		rv.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n < 0 || rv.OverflowUint(uint64(n)) {
			return fmt.Errorf("%w: %d does not fit %s", ErrNumericConversion, n, rv.Type())
		}
		rv.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		rv.SetFloat(float64(n))
		return nil
	}
	return fmt.Errorf("%w: integer into %s", ErrTypeMismatch, rv.Type())
}

// readNull consumes the `N;` literal.
func (d *Decoder) readNull() error {
	if err := d.r.Expect(tagNull); err != nil {
		return wireErr(err)
	}
	return wireErr(d.r.Expect(';'))
}

// readBoolBody consumes `:<digit>;` after the `b` tag.
func (d *Decoder) readBoolBody() (bool, error) {
	if err := d.r.Expect(':'); err != nil {
		return false, wireErr(err)
	}
	c, err := d.r.ReadByte()
	if err != nil {
		return false, wireErr(err)
	}
	if err := d.r.Expect(';'); err != nil {
		return false, wireErr(err)
	}
	switch c {
	case '0':
		return false, nil
	case '1':
		return true, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidBoolean, c)
}

// readIntBody consumes `:<sign?><digits>;` after the `i` tag.
func (d *Decoder) readIntBody() (int64, error) {
	if err := d.r.Expect(':'); err != nil {
		return 0, wireErr(err)
	}
	buf, err := d.r.CollectSign(d.scratch[:0])
	if err != nil {
		return 0, wireErr(err)
	}
	if buf, err = d.r.CollectUnsigned(buf); err != nil {
		return 0, wireErr(err)
	}
	if err := d.r.Expect(';'); err != nil {
		return 0, wireErr(err)
	}
	d.scratch = buf[:0]
	n, err := strconv.ParseInt(string(buf), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNumericConversion, err)
	}
	return n, nil
}

// readFloatBody consumes `:<sign?><digits>[.<digits>];` after the `d`
// tag. PHP omits the fractional part for whole-number floats, so the dot
// is optional on read.
func (d *Decoder) readFloatBody() (float64, error) {
	if err := d.r.Expect(':'); err != nil {
		return 0, wireErr(err)
	}
	buf, err := d.r.CollectSign(d.scratch[:0])
	if err != nil {
		return 0, wireErr(err)
	}
	if buf, err = d.r.CollectUnsigned(buf); err != nil {
		return 0, wireErr(err)
	}
	c, ok, err := d.r.Peek()
	if err != nil {
		return 0, wireErr(err)
	}
	if ok && c == '.' {
		_, _ = d.r.ReadByte() // consume dot (already peeked)
		buf = append(buf, '.')
		if buf, err = d.r.CollectUnsigned(buf); err != nil {
			return 0, wireErr(err)
		}
	}
	if err := d.r.Expect(';'); err != nil {
		return 0, wireErr(err)
	}
	d.scratch = buf[:0]
	f, err := strconv.ParseFloat(string(buf), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNumericConversion, err)
	}
	return f, nil
}

// readStringBody consumes `:<len>:"<raw>";` after the `s` tag.
func (d *Decoder) readStringBody() ([]byte, error) {
	if err := d.r.Expect(':'); err != nil {
		return nil, wireErr(err)
	}
	raw, err := d.r.ReadLengthPrefixedBytes(d.maxStringLen)
	if err != nil {
		return nil, wireErr(err)
	}
	return raw, nil
}

// decodeArray consumes the rest of an array after the `a` tag and
// populates rv. Struct and map targets always take the mapping path (an
// empty record is indistinguishable from an empty sequence on the wire);
// sequence targets disambiguate on the first key's tag.
func (d *Decoder) decodeArray(rv reflect.Value) error {
	if err := d.r.Expect(':'); err != nil {
		return wireErr(err)
	}
	count, err := d.r.ReadArrayHeader(d.maxArrayLen)
	if err != nil {
		return wireErr(err)
	}

	switch rv.Kind() {
	case reflect.Struct:
		err = d.decodeStruct(rv, count)
	case reflect.Map:
		err = d.decodeMap(rv, count)
	case reflect.Slice, reflect.Array:
		var c byte
		var ok bool
		c, ok, err = d.r.Peek()
		if err != nil {
			return wireErr(err)
		}
		if !ok {
			return ErrUnexpectedEOF
		}
		switch c {
		case tagInt, arrayEnd:
			err = d.decodeSequence(rv, count)
		case tagString:
			err = fmt.Errorf("%w: mapping array into %s", ErrTypeMismatch, rv.Type())
		default:
			err = fmt.Errorf("%w: %q", ErrUnsupportedArrayKey, c)
		}
	default:
		err = fmt.Errorf("%w: array into %s", ErrTypeMismatch, rv.Type())
	}
	if err != nil {
		return err
	}
	return wireErr(d.r.Expect(arrayEnd))
}

// seqCursor steps through a sequence array, enforcing consecutive
// zero-based integer keys.
type seqCursor struct {
	expected int
	next     int
}

func (c *seqCursor) more() bool {
	return c.next < c.expected
}

// advance consumes the next element's integer key. Keys must be exactly
// 0..expected-1 in order; no gap-filling.
func (c *seqCursor) advance(d *Decoder) error {
	if err := d.r.Expect(tagInt); err != nil {
		return wireErr(err)
	}
	idx, err := d.readIntBody()
	if err != nil {
		return err
	}
	if idx != int64(c.next) {
		return fmt.Errorf("%w: expected index %d, got %d", ErrIndexMismatch, c.next, idx)
	}
	c.next++
	return nil
}

// mapCursor steps through a mapping array by declared pair count.
type mapCursor struct {
	expected int
	consumed int
}

func (c *mapCursor) more() bool {
	return c.consumed < c.expected
}

func (d *Decoder) decodeSequence(rv reflect.Value, count int) error {
	cur := seqCursor{expected: count}
	switch rv.Kind() {
	case reflect.Slice:
		rv.Set(reflect.MakeSlice(rv.Type(), count, count))
	case reflect.Array:
		if rv.Len() != count {
			return fmt.Errorf("%w: wire sequence has %d elements, %s holds %d", ErrTypeMismatch, count, rv.Type(), rv.Len())
		}
	}
	for i := 0; cur.more(); i++ {
		if err := cur.advance(d); err != nil {
			return err
		}
		if err := d.decodeValue(rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) decodeStruct(rv reflect.Value, count int) error {
	flds := cachedFields(rv.Type())
	cur := mapCursor{expected: count}
	for cur.more() {
		key, err := d.readMappingKeyText()
		if err != nil {
			return err
		}
		cur.consumed++
		f, ok := flds.byName[key]
		if !ok {
			if err := d.skipValue(); err != nil {
				return err
			}
			continue
		}
		if err := d.decodeValue(rv.Field(f.index)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) decodeMap(rv reflect.Value, count int) error {
	t := rv.Type()
	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(t, count))
	}
	cur := mapCursor{expected: count}
	for cur.more() {
		key := reflect.New(t.Key()).Elem()
		if err := d.decodeMapKey(key); err != nil {
			return err
		}
		cur.consumed++
		val := reflect.New(t.Elem()).Elem()
		if err := d.decodeValue(val); err != nil {
			return err
		}
		rv.SetMapIndex(key, val) // duplicate keys: last write wins
	}
	return nil
}

// readMappingKeyText decodes one mapping key as text. Wire keys are
// always integer- or string-tagged; record field names are always text,
// so integer keys are rendered in decimal.
func (d *Decoder) readMappingKeyText() (string, error) {
	c, ok, err := d.r.Peek()
	if err != nil {
		return "", wireErr(err)
	}
	if !ok {
		return "", ErrUnexpectedEOF
	}
	switch c {
	case tagInt:
		_, _ = d.r.ReadByte() // consume tag (already peeked)
		n, err := d.readIntBody()
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(n, 10), nil
	case tagString:
		_, _ = d.r.ReadByte() // consume tag (already peeked)
		raw, err := d.readStringBody()
		if err != nil {
			return "", err
		}
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("%w: mapping key", ErrInvalidUTF8)
		}
		return string(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedArrayKey, c)
}

// decodeMapKey decodes one mapping key into a typed map key.
func (d *Decoder) decodeMapKey(key reflect.Value) error {
	switch key.Kind() {
	case reflect.String:
		s, err := d.readMappingKeyText()
		if err != nil {
			return err
		}
		key.SetString(s)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if err := d.r.Expect(tagInt); err != nil {
			return wireErr(err)
		}
		n, err := d.readIntBody()
		if err != nil {
			return err
		}
		return setInt(key, n)
	}
	return fmt.Errorf("%w: map key type %s", ErrTypeMismatch, key.Type())
}

// decodeAny decodes one value generically: nil, bool, int64, float64,
// string ([]byte when the content is not valid UTF-8), []any for
// sequences, and map[string]any for mappings.
func (d *Decoder) decodeAny() (any, error) {
	d.depth++
	if d.depth > d.maxDepth {
		return nil, ErrMaxDepthExceeded
	}
	defer func() { d.depth-- }()

	tag, err := d.r.ReadByte()
	if err != nil {
		return nil, wireErr(err)
	}

	switch tag {
	case tagNull:
		return nil, wireErr(d.r.Expect(';'))
	case tagBool:
		return d.readBoolBody()
	case tagInt:
		return d.readIntBody()
	case tagFloat:
		return d.readFloatBody()
	case tagString:
		raw, err := d.readStringBody()
		if err != nil {
			return nil, err
		}
		if utf8.Valid(raw) {
			return string(raw), nil
		}
		return raw, nil
	case tagArray:
		return d.decodeAnyArray()
	case tagObject:
		return nil, fmt.Errorf("%w: PHP object decoding is not implemented", ErrUnsupportedFeature)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidTypeTag, tag)
}

func (d *Decoder) decodeAnyArray() (any, error) {
	if err := d.r.Expect(':'); err != nil {
		return nil, wireErr(err)
	}
	count, err := d.r.ReadArrayHeader(d.maxArrayLen)
	if err != nil {
		return nil, wireErr(err)
	}

	c, ok, err := d.r.Peek()
	if err != nil {
		return nil, wireErr(err)
	}
	if !ok {
		return nil, ErrUnexpectedEOF
	}

	var out any
	switch c {
	case tagInt, arrayEnd:
		seq := make([]any, 0, count)
		cur := seqCursor{expected: count}
		for cur.more() {
			if err := cur.advance(d); err != nil {
				return nil, err
			}
			v, err := d.decodeAny()
			if err != nil {
				return nil, err
			}
			seq = append(seq, v)
		}
		out = seq
	case tagString:
		m := make(map[string]any, count)
		cur := mapCursor{expected: count}
		for cur.more() {
			key, err := d.readMappingKeyText()
			if err != nil {
				return nil, err
			}
			cur.consumed++
			v, err := d.decodeAny()
			if err != nil {
				return nil, err
			}
			m[key] = v // duplicate keys: last write wins
		}
		out = m
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedArrayKey, c)
	}

	if err := wireErr(d.r.Expect(arrayEnd)); err != nil {
		return nil, err
	}
	return out, nil
}

// skipValue consumes one value without a target, used for wire keys that
// have no matching struct field.
func (d *Decoder) skipValue() error {
	_, err := d.decodeAny()
	return err
}
