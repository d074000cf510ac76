package wire

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestReader(s string) *Reader {
	return NewReader(strings.NewReader(s))
}

func TestPeekDoesNotConsume(t *testing.T) {
	r := newTestReader("ab")

	for i := 0; i < 3; i++ {
		c, ok, err := r.Peek()
		if err != nil || !ok || c != 'a' {
			t.Fatalf("Peek #%d = %q, %v, %v; want 'a', true, nil", i, c, ok, err)
		}
	}

	c, err := r.ReadByte()
	if err != nil || c != 'a' {
		t.Fatalf("ReadByte = %q, %v; want 'a', nil", c, err)
	}
	c, err = r.ReadByte()
	if err != nil || c != 'b' {
		t.Fatalf("ReadByte = %q, %v; want 'b', nil", c, err)
	}

	_, ok, err := r.Peek()
	if err != nil || ok {
		t.Fatalf("Peek at EOF = ok=%v, err=%v; want false, nil", ok, err)
	}
	if _, err := r.ReadByte(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("ReadByte at EOF = %v; want ErrUnexpectedEOF", err)
	}
}

func TestExpect(t *testing.T) {
	r := newTestReader("i:")
	if err := r.Expect('i'); err != nil {
		t.Fatalf("Expect('i') = %v", err)
	}

	err := r.Expect(';')
	var ub *UnexpectedByteError
	if !errors.As(err, &ub) {
		t.Fatalf("Expect(';') = %v; want UnexpectedByteError", err)
	}
	if ub.Expected != ';' || ub.Actual != ':' {
		t.Errorf("got expected=%q actual=%q", ub.Expected, ub.Actual)
	}

	if err := r.Expect('x'); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("Expect at EOF = %v; want ErrUnexpectedEOF", err)
	}
}

func TestReadFullFoldsLookahead(t *testing.T) {
	r := newTestReader("hello")

	// Buffer one byte of lookahead, then read across it.
	if _, _, err := r.Peek(); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 5)
	if err := r.ReadFull(buf); err != nil {
		t.Fatalf("ReadFull = %v", err)
	}
	if !bytes.Equal(buf, []byte("hello")) {
		t.Errorf("ReadFull = %q, want %q", buf, "hello")
	}
}

func TestReadFullShortInput(t *testing.T) {
	r := newTestReader("ab")
	buf := make([]byte, 3)
	if err := r.ReadFull(buf); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("ReadFull = %v; want ErrUnexpectedEOF", err)
	}
}

func TestCollectUnsigned(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		digits string
		rest   byte // next byte after the run, 0 for EOF
	}{
		{"stops-at-delimiter", "123;", "123", ';'},
		{"single-digit", "0:", "0", ':'},
		{"runs-to-eof", "42", "42", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReader(tt.input)
			buf, err := r.CollectUnsigned(nil)
			if err != nil {
				t.Fatalf("CollectUnsigned = %v", err)
			}
			if string(buf) != tt.digits {
				t.Errorf("digits = %q, want %q", buf, tt.digits)
			}
			c, ok, err := r.Peek()
			if err != nil {
				t.Fatal(err)
			}
			if tt.rest == 0 {
				if ok {
					t.Errorf("expected EOF after run, got %q", c)
				}
			} else if !ok || c != tt.rest {
				t.Errorf("next byte = %q, want %q", c, tt.rest)
			}
		})
	}
}

func TestCollectUnsignedErrors(t *testing.T) {
	var ed *ExpectedDigitError
	_, err := newTestReader("x").CollectUnsigned(nil)
	if !errors.As(err, &ed) || ed.Actual != 'x' {
		t.Fatalf("CollectUnsigned non-digit = %v; want ExpectedDigitError{'x'}", err)
	}

	_, err = newTestReader("").CollectUnsigned(nil)
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("CollectUnsigned empty = %v; want ErrUnexpectedEOF", err)
	}
}

func TestCollectSign(t *testing.T) {
	tests := []struct {
		input string
		sign  string
	}{
		{"-5", "-"},
		{"+5", "+"},
		{"5", ""},
		{"", ""},
	}

	for _, tt := range tests {
		r := newTestReader(tt.input)
		buf, err := r.CollectSign(nil)
		if err != nil {
			t.Fatalf("CollectSign(%q) = %v", tt.input, err)
		}
		if string(buf) != tt.sign {
			t.Errorf("CollectSign(%q) = %q, want %q", tt.input, buf, tt.sign)
		}
	}
}

func TestReadLengthPrefixedBytes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `5:"hello";`, "hello"},
		{"empty", `0:"";`, ""},
		{"embedded-quote", `14:"single quote '";`, "single quote '"},
		{"embedded-delimiters", `8:"a";b:{}c";`, `a";b:{}c`},
		{"raw-bytes", "3:\"\x00\xff\n\";", "\x00\xff\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestReader(tt.input).ReadLengthPrefixedBytes(0)
			if err != nil {
				t.Fatalf("ReadLengthPrefixedBytes = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadLengthPrefixedBytesErrors(t *testing.T) {
	if _, err := newTestReader(`5:"he`).ReadLengthPrefixedBytes(0); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("truncated content = %v; want ErrUnexpectedEOF", err)
	}
	if _, err := newTestReader(`5:"hello"`).ReadLengthPrefixedBytes(0); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("missing semicolon = %v; want ErrUnexpectedEOF", err)
	}
	if _, err := newTestReader(`1000000:"x";`).ReadLengthPrefixedBytes(16); !errors.Is(err, ErrLengthLimit) {
		t.Errorf("over limit = %v; want ErrLengthLimit", err)
	}

	// The length is validated before the content allocation happens, so a
	// hostile prefix with no content behind it must not allocate.
	if _, err := newTestReader(`99999999999:"`).ReadLengthPrefixedBytes(16); !errors.Is(err, ErrLengthLimit) {
		t.Errorf("hostile length = %v; want ErrLengthLimit", err)
	}
}

func TestReadArrayHeader(t *testing.T) {
	r := newTestReader(`3:{`)
	n, err := r.ReadArrayHeader(0)
	if err != nil || n != 3 {
		t.Fatalf("ReadArrayHeader = %d, %v; want 3, nil", n, err)
	}

	if _, err := newTestReader(`3:{`).ReadArrayHeader(2); !errors.Is(err, ErrLengthLimit) {
		t.Errorf("over limit = %v; want ErrLengthLimit", err)
	}

	var ub *UnexpectedByteError
	if _, err := newTestReader(`3:[`).ReadArrayHeader(0); !errors.As(err, &ub) {
		t.Errorf("bad open = %v; want UnexpectedByteError", err)
	}
}
