// Package textdecode turns uploaded log bytes into text. Device logs exported
// from Korean-locale Windows terminals are often CP949, so bytes that are not
// valid UTF-8 are decoded as CP949 (EUC-KR superset) with undecodable bytes
// dropped.
package textdecode

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Encoding names reported by Decode.
const (
	UTF8  = "utf-8"
	CP949 = "cp949"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode returns data as a string and the encoding it was read as.
// It never fails: invalid sequences are dropped.
func Decode(data []byte) (string, string) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), UTF8
	}

	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		// The decoder substitutes rather than fails; keep the valid
		// UTF-8 subset if it ever does.
		return strings.ToValidUTF8(string(data), ""), UTF8
	}
	return strings.ReplaceAll(string(out), "\uFFFD", ""), CP949
}

// Reader decodes a stream one line at a time with Decode, so a capture can
// be classified without holding it in memory. Each line picks its own
// encoding, which also keeps UTF-8 lines intact in mixed files.
type Reader struct {
	src *bufio.Reader
	buf []byte
	err error
}

// NewReader returns a Reader decoding r.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: bufio.NewReader(r)}
}

func (r *Reader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		line, err := r.src.ReadBytes('\n')
		r.err = err
		if len(line) > 0 {
			text, _ := Decode(line)
			r.buf = []byte(text)
		}
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
