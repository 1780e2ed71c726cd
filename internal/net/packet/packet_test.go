package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderFields(t *testing.T) {
	w := NewWriterWithOpcode(7)
	w.WriteBool(true)
	w.WriteH(0xBEEF)
	w.WriteD(-42)
	w.WriteDU(4000000000)
	w.WriteQ(1 << 40)
	w.WriteF(1.5)
	w.WriteS("héros")
	w.WriteS("")
	w.WriteBlob([]byte{1, 2, 3})
	w.WriteCount(2)

	r := NewReader(w.Bytes())
	assert.Equal(t, byte(7), r.ReadC())
	assert.True(t, r.ReadBool())
	assert.Equal(t, uint16(0xBEEF), r.ReadH())
	assert.Equal(t, int32(-42), r.ReadD())
	assert.Equal(t, uint32(4000000000), r.ReadDU())
	assert.Equal(t, uint64(1<<40), r.ReadQ())
	assert.Equal(t, float32(1.5), r.ReadF())
	assert.Equal(t, "héros", r.ReadS())
	assert.Equal(t, "", r.ReadS())
	assert.Equal(t, []byte{1, 2, 3}, r.ReadBlob())
	assert.Equal(t, int32(2), r.ReadD())
	require.NoError(t, r.Err())
	assert.Zero(t, r.Remaining())
}

func TestStringLayout(t *testing.T) {
	w := NewWriter()
	w.WriteS("ab")
	assert.Equal(t, []byte{1, 2, 0, 0, 0, 'a', 'b'}, w.Bytes())

	w.Reset()
	w.WriteS("")
	assert.Equal(t, []byte{0}, w.Bytes())
}

func TestReaderErrorsAreSticky(t *testing.T) {
	r := NewReader([]byte{1, 2})
	assert.Equal(t, int32(0), r.ReadD())
	require.ErrorIs(t, r.Err(), ErrShortBuffer)
	assert.Equal(t, byte(0), r.ReadC(), "reads after a failure return zero")
}

func TestReaderRejectsBadLengths(t *testing.T) {
	w := NewWriter()
	w.WriteC(1)
	w.WriteD(1000) // string longer than the payload
	r := NewReader(w.Bytes())
	assert.Equal(t, "", r.ReadS())
	assert.ErrorIs(t, r.Err(), ErrBadLength)

	w.Reset()
	w.WriteD(50) // 50 elements of at least 4 bytes cannot fit
	w.WriteD(0)
	r = NewReader(w.Bytes())
	assert.Zero(t, r.ReadCount(4))
	assert.ErrorIs(t, r.Err(), ErrBadLength)

	r = NewReader([]byte{1, 2, 0, 0, 0, 0xff, 0xfe})
	r.ReadS()
	assert.ErrorIs(t, r.Err(), ErrBadString)
}
