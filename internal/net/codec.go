package net

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const headerSize = 2

// MaxPayload is the largest payload a frame can carry.
const MaxPayload = 0xffff - headerSize

// ErrFrameSize reports a frame whose length header is out of range.
var ErrFrameSize = errors.New("bad frame size")

// ReadFrame reads one frame from r and returns its payload. The wire format
// is a little-endian uint16 total length, header included, then the payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	n := int(binary.LittleEndian.Uint16(header[:])) - headerSize
	if n <= 0 {
		return nil, fmt.Errorf("%w: length %d", ErrFrameSize, n+headerSize)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", n, err)
	}
	return payload, nil
}

// WriteFrame writes data as one frame with a single Write call.
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) == 0 || len(data) > MaxPayload {
		return fmt.Errorf("%w: payload %d bytes", ErrFrameSize, len(data))
	}
	buf := make([]byte, headerSize+len(data))
	binary.LittleEndian.PutUint16(buf, uint16(len(buf)))
	copy(buf[headerSize:], data)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
