package textdecode

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
		encoding string
	}{
		{
			name:     "Plain ASCII",
			input:    []byte("%LINK-3-UPDOWN: Interface Gi1/0/1, changed state to down"),
			expected: "%LINK-3-UPDOWN: Interface Gi1/0/1, changed state to down",
			encoding: UTF8,
		},
		{
			name:     "UTF-8 with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("장애 로그")...),
			expected: "장애 로그",
			encoding: UTF8,
		},
		{
			// "장애" in CP949
			name:     "CP949",
			input:    []byte{0xC0, 0xE5, 0xBE, 0xD6, ' ', 'o', 'k'},
			expected: "장애 ok",
			encoding: CP949,
		},
		{
			name:     "Empty",
			input:    nil,
			expected: "",
			encoding: UTF8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, enc := Decode(tt.input)
			if got != tt.expected {
				t.Errorf("Decode() = %q, want %q", got, tt.expected)
			}
			if enc != tt.encoding {
				t.Errorf("encoding = %s, want %s", enc, tt.encoding)
			}
		})
	}
}

func TestDecode_DropsUndecodableBytes(t *testing.T) {
	got, enc := Decode([]byte{'a', 0xFF, 'b'})
	if enc != CP949 {
		t.Errorf("encoding = %s, want %s", enc, CP949)
	}
	if got != "ab" {
		t.Errorf("Decode() = %q, want %q", got, "ab")
	}
}

func TestReader_MixedEncodings(t *testing.T) {
	var in []byte
	in = append(in, 0xEF, 0xBB, 0xBF)
	in = append(in, "%SYS-2-MALLOCFAIL: 장애\n"...)
	in = append(in, 0xC0, 0xE5, 0xBE, 0xD6)
	in = append(in, " %LINK-3-UPDOWN: down\r\n"...)
	in = append(in, "no newline"...)

	got, err := io.ReadAll(NewReader(iotest.OneByteReader(strings.NewReader(string(in)))))
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	want := "%SYS-2-MALLOCFAIL: 장애\n장애 %LINK-3-UPDOWN: down\r\nno newline"
	if string(got) != want {
		t.Errorf("Reader = %q, want %q", got, want)
	}
}

func TestReader_LongLine(t *testing.T) {
	line := strings.Repeat("x", 3<<20) + "\n"
	got, err := io.ReadAll(NewReader(strings.NewReader(line)))
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != len(line) {
		t.Errorf("Read %d bytes, want %d", len(got), len(line))
	}
}

func TestReader_PropagatesError(t *testing.T) {
	boom := io.ErrUnexpectedEOF
	_, err := io.ReadAll(NewReader(iotest.ErrReader(boom)))
	if err != boom {
		t.Errorf("Expected %v, got %v", boom, err)
	}
}
