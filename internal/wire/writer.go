package wire

import (
	"fmt"
	"io"
	"strconv"
)

// Writer writes PHP-serialized data to an output sink.
// Scalar methods render the exact byte grammar the Reader accepts.
type Writer struct {
	w   io.Writer
	buf []byte
}

// NewWriter creates a Writer over the given sink.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, 64)}
}

func (w *Writer) flush() error {
	if _, err := w.w.Write(w.buf); err != nil {
		return fmt.Errorf("wire: write failed: %w", err)
	}
	return nil
}

// WriteNull writes the null literal `N;`.
func (w *Writer) WriteNull() error {
	w.buf = append(w.buf[:0], 'N', ';')
	return w.flush()
}

// WriteBool writes `b:0;` or `b:1;`.
func (w *Writer) WriteBool(b bool) error {
	digit := byte('0')
	if b {
		digit = '1'
	}
	w.buf = append(w.buf[:0], 'b', ':', digit, ';')
	return w.flush()
}

// WriteInt writes `i:<decimal>;`.
func (w *Writer) WriteInt(n int64) error {
	w.buf = append(w.buf[:0], 'i', ':')
	w.buf = strconv.AppendInt(w.buf, n, 10)
	w.buf = append(w.buf, ';')
	return w.flush()
}

// WriteUint writes `i:<decimal>;`.
func (w *Writer) WriteUint(n uint64) error {
	w.buf = append(w.buf[:0], 'i', ':')
	w.buf = strconv.AppendUint(w.buf, n, 10)
	w.buf = append(w.buf, ';')
	return w.flush()
}

// WriteFloat writes `d:<decimal>;` using the shortest decimal rendering
// that round-trips. Whole floats render without a fractional part
// (5.0 becomes `d:5;`), matching PHP's own output.
func (w *Writer) WriteFloat(f float64) error {
	w.buf = append(w.buf[:0], 'd', ':')
	w.buf = strconv.AppendFloat(w.buf, f, 'f', -1, 64)
	w.buf = append(w.buf, ';')
	return w.flush()
}

// WriteBytes writes `s:<byte length>:"<raw bytes>";`. The content is
// written verbatim; quotes never escape anything in this format.
func (w *Writer) WriteBytes(b []byte) error {
	w.buf = append(w.buf[:0], 's', ':')
	w.buf = strconv.AppendInt(w.buf, int64(len(b)), 10)
	w.buf = append(w.buf, ':', '"')
	if err := w.flush(); err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("wire: write failed: %w", err)
	}
	w.buf = append(w.buf[:0], '"', ';')
	return w.flush()
}

// WriteString writes a string as a length-prefixed byte string.
// The length is the UTF-8 byte count, not the rune count.
func (w *Writer) WriteString(s string) error {
	w.buf = append(w.buf[:0], 's', ':')
	w.buf = strconv.AppendInt(w.buf, int64(len(s)), 10)
	w.buf = append(w.buf, ':', '"')
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, '"', ';')
	return w.flush()
}

// WriteArrayHeader writes `a:<count>:{`. Every aggregate carries its entry
// count before the body, so callers must know n up front.
func (w *Writer) WriteArrayHeader(n int) error {
	w.buf = append(w.buf[:0], 'a', ':')
	w.buf = strconv.AppendInt(w.buf, int64(n), 10)
	w.buf = append(w.buf, ':', '{')
	return w.flush()
}

// WriteArrayEnd writes the closing `}` of an array body.
func (w *Writer) WriteArrayEnd() error {
	w.buf = append(w.buf[:0], '}')
	return w.flush()
}
