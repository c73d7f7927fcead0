package packet

import "encoding/binary"

// Reader reads packet fields from a decrypted payload. Byte 0 is the opcode.
// A read past the end yields a zero value and marks the reader short.
type Reader struct {
	data  []byte
	off   int
	short bool
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, off: 1}
}

func (r *Reader) Opcode() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

// Short reports whether any read ran past the end of the payload.
func (r *Reader) Short() bool { return r.short }

func (r *Reader) take(n int) []byte {
	if r.off+n > len(r.data) {
		r.short = true
		r.off = len(r.data)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	if b := r.take(1); b != nil {
		return b[0]
	}
	return 0
}

// ReadH reads a little-endian uint16.
func (r *Reader) ReadH() uint16 {
	if b := r.take(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

// ReadD reads a little-endian int32.
func (r *Reader) ReadD() int32 {
	if b := r.take(4); b != nil {
		return int32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

// ReadQ reads a little-endian uint64.
func (r *Reader) ReadQ() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}
	return 0
}

// ReadS reads a null-terminated string in the wire charset and returns
// UTF-8. A missing terminator returns what is left and marks the reader
// short.
func (r *Reader) ReadS() string {
	start := r.off
	for i := start; i < len(r.data); i++ {
		if r.data[i] == 0 {
			r.off = i + 1
			return decodeString(r.data[start:i])
		}
	}
	r.short = true
	r.off = len(r.data)
	return decodeString(r.data[start:])
}

// ReadBytes copies n raw bytes.
func (r *Reader) ReadBytes(n int) []byte {
	if r.off+n > len(r.data) {
		rest := append([]byte(nil), r.data[r.off:]...)
		r.short = true
		r.off = len(r.data)
		return rest
	}
	return append([]byte(nil), r.take(n)...)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}
