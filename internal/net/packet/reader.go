package packet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

var (
	ErrShortBuffer = errors.New("short buffer")
	ErrBadLength   = errors.New("bad length prefix")
	ErrBadString   = errors.New("invalid utf-8 string")
)

// Reader reads fields from a datagram payload. The first failure is
// sticky: later reads return zero values and Err reports the cause.
type Reader struct {
	data []byte
	off  int
	err  error
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

func (r *Reader) fail(what string, need int) {
	if r.err == nil {
		r.err = fmt.Errorf("read %s at offset %d (need %d, have %d): %w",
			what, r.off, need, len(r.data)-r.off, ErrShortBuffer)
	}
}

func (r *Reader) take(what string, n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.fail(what, n)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	b := r.take("byte", 1)
	if b == nil {
		return 0
	}
	return b[0]
}

// ReadBool reads 1 byte; any non-zero value is true.
func (r *Reader) ReadBool() bool {
	return r.ReadC() != 0
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	b := r.take("uint16", 2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// ReadD reads 4 bytes as little-endian int32.
func (r *Reader) ReadD() int32 {
	b := r.take("int32", 4)
	if b == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// ReadDU reads 4 bytes as little-endian uint32.
func (r *Reader) ReadDU() uint32 {
	b := r.take("uint32", 4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// ReadQ reads 8 bytes as little-endian uint64.
func (r *Reader) ReadQ() uint64 {
	b := r.take("uint64", 8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// ReadF reads an IEEE-754 little-endian float32.
func (r *Reader) ReadF() float32 {
	b := r.take("float32", 4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// ReadS reads a [present:1][len:4][utf8 bytes] string.
func (r *Reader) ReadS() string {
	if !r.ReadBool() {
		return ""
	}
	n := r.ReadD()
	if r.err != nil {
		return ""
	}
	if n < 0 || int(n) > r.Remaining() {
		r.err = fmt.Errorf("string length %d at offset %d: %w", n, r.off, ErrBadLength)
		return ""
	}
	b := r.take("string", int(n))
	if !utf8.Valid(b) {
		r.err = fmt.Errorf("string at offset %d: %w", r.off, ErrBadString)
		return ""
	}
	return string(b)
}

// ReadCount reads an array length prefix. minElem is the smallest encoded
// size of one element; a count that cannot fit the remaining bytes fails.
func (r *Reader) ReadCount(minElem int) int {
	n := r.ReadD()
	if r.err != nil {
		return 0
	}
	if minElem < 1 {
		minElem = 1
	}
	if n < 0 || int(n) > r.Remaining()/minElem {
		r.err = fmt.Errorf("array count %d at offset %d: %w", n, r.off, ErrBadLength)
		return 0
	}
	return int(n)
}

// ReadBlob reads a length-prefixed byte slice into an owned copy.
func (r *Reader) ReadBlob() []byte {
	n := r.ReadD()
	if r.err != nil {
		return nil
	}
	if n < 0 || int(n) > r.Remaining() {
		r.err = fmt.Errorf("blob length %d at offset %d: %w", n, r.off, ErrBadLength)
		return nil
	}
	src := r.take("blob", int(n))
	out := make([]byte, len(src))
	copy(out, src)
	return out
}

// ReadBytes reads n raw bytes into an owned copy.
func (r *Reader) ReadBytes(n int) []byte {
	src := r.take("bytes", n)
	if src == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, src)
	return out
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Fail records err as the decode failure unless one is already set.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Err returns the first decode failure, if any.
func (r *Reader) Err() error {
	return r.err
}
