package push

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,                                // empty
		[]byte("hi"),                       // tiny
		bytes.Repeat([]byte{'a'}, 125),     // max 7-bit length
		bytes.Repeat([]byte{'b'}, 126),     // smallest 16-bit length
		bytes.Repeat([]byte{'c'}, 0xFFFF),  // max 16-bit length
		bytes.Repeat([]byte{'d'}, 0x10000), // smallest 64-bit length
	}

	for _, payload := range payloads {
		var buf bytes.Buffer
		if err := writeFrame(&buf, opText, payload); err != nil {
			t.Fatalf("writeFrame(len=%d) error = %v", len(payload), err)
		}

		f, err := readFrame(bufio.NewReader(&buf))
		if err != nil {
			t.Fatalf("readFrame(len=%d) error = %v", len(payload), err)
		}
		if !f.fin {
			t.Error("fin bit not set on unfragmented frame")
		}
		if f.opcode != opText {
			t.Errorf("opcode = %#x, want %#x", f.opcode, opText)
		}
		if !bytes.Equal(f.payload, payload) {
			t.Errorf("payload mismatch at len=%d", len(payload))
		}
	}
}

func TestReadFrame_MaskedPayload(t *testing.T) {
	// Hand-built masked client frame: "abc" with mask key 0x01020304.
	masked := []byte{
		finBit | opText,
		maskBit | 3,
		0x01, 0x02, 0x03, 0x04,
		'a' ^ 0x01, 'b' ^ 0x02, 'c' ^ 0x03,
	}

	f, err := readFrame(bufio.NewReader(bytes.NewReader(masked)))
	if err != nil {
		t.Fatalf("readFrame() error = %v", err)
	}
	if string(f.payload) != "abc" {
		t.Errorf("unmasked payload = %q, want abc", f.payload)
	}
}

func TestReadFrame_RejectsOversizedPayload(t *testing.T) {
	oversized := []byte{
		finBit | opBinary,
		127,
		0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF, // ~4 GiB claimed length
	}

	if _, err := readFrame(bufio.NewReader(bytes.NewReader(oversized))); err == nil {
		t.Error("readFrame() accepted payload over the size limit")
	}
}

func TestAcceptKey(t *testing.T) {
	// Worked example from RFC 6455 section 1.3.
	got := acceptKey("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Errorf("acceptKey() = %q, want %q", got, want)
	}
}

func TestHeaderContainsToken(t *testing.T) {
	if !headerContainsToken("keep-alive, Upgrade", "upgrade") {
		t.Error("token not found in comma-separated header")
	}
	if headerContainsToken("keep-alive", "upgrade") {
		t.Error("token falsely reported present")
	}
	if !headerContainsToken(strings.ToUpper("upgrade"), "upgrade") {
		t.Error("token match should be case-insensitive")
	}
}
