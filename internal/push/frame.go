package push

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// WebSocket frame opcodes (RFC 6455 section 5.2).
const (
	opContinuation = 0x0
	opText         = 0x1
	opBinary       = 0x2
	opClose        = 0x8
	opPing         = 0x9
	opPong         = 0xA
)

const (
	finBit  = 0x80
	maskBit = 0x80

	// maxFramePayload bounds inbound frames. Clients only ever send
	// control frames and tiny text messages; anything larger is abuse.
	maxFramePayload = 1 << 20
)

var errFrameTooLarge = errors.New("push: frame payload exceeds limit")

// frame is one decoded WebSocket frame.
type frame struct {
	fin     bool
	opcode  byte
	payload []byte
}

// writeFrame encodes a single unfragmented, unmasked frame. Servers never
// mask (RFC 6455 section 5.1).
func writeFrame(w io.Writer, opcode byte, payload []byte) error {
	header := make([]byte, 2, 10)
	header[0] = finBit | opcode

	length := len(payload)
	switch {
	case length < 126:
		header[1] = byte(length)
	case length <= 0xFFFF:
		header[1] = 126
		header = append(header, 0, 0)
		binary.BigEndian.PutUint16(header[2:4], uint16(length))
	default:
		header[1] = 127
		header = append(header, 0, 0, 0, 0, 0, 0, 0, 0)
		binary.BigEndian.PutUint64(header[2:10], uint64(length))
	}

	if _, err := w.Write(header); err != nil {
		return err
	}
	if length > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// readFrame decodes one frame, unmasking the payload when the mask bit is
// set. Client frames are always masked; the decoder tolerates unmasked
// frames so the encoder can be exercised against it directly.
func readFrame(r *bufio.Reader) (frame, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return frame{}, err
	}

	f := frame{
		fin:    header[0]&finBit != 0,
		opcode: header[0] & 0x0F,
	}
	masked := header[1]&maskBit != 0

	length := uint64(header[1] & 0x7F)
	switch length {
	case 126:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return frame{}, err
		}
		length = uint64(binary.BigEndian.Uint16(ext[:]))
	case 127:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return frame{}, err
		}
		length = binary.BigEndian.Uint64(ext[:])
	}
	if length > maxFramePayload {
		return frame{}, fmt.Errorf("%w: %d bytes", errFrameTooLarge, length)
	}

	var maskKey [4]byte
	if masked {
		if _, err := io.ReadFull(r, maskKey[:]); err != nil {
			return frame{}, err
		}
	}

	if length > 0 {
		f.payload = make([]byte, length)
		if _, err := io.ReadFull(r, f.payload); err != nil {
			return frame{}, err
		}
		if masked {
			for i := range f.payload {
				f.payload[i] ^= maskKey[i%4]
			}
		}
	}
	return f, nil
}
