package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackFloatsRoundTrip(t *testing.T) {
	cases := []float32{0, 1, -1, 50.0, 30000, -90, 0.0001, 3.14159}
	for _, v := range cases {
		packed := PackFloats(v)
		require.Len(t, packed, 4)

		values, err := Decode(packed, KindF32)
		require.NoError(t, err)
		assert.Equal(t, v, values[0].Float)
	}
}

func TestPackFloatsMultipleSlots(t *testing.T) {
	packed := PackFloats(1.5, -2.5, 3.5)
	values, err := Decode(packed, KindF32, KindF32, KindF32)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), values[0].Float)
	assert.Equal(t, float32(-2.5), values[1].Float)
	assert.Equal(t, float32(3.5), values[2].Float)
}

func TestPackBytesZeroPadsToSlot(t *testing.T) {
	packed := PackBytes([]byte("C:\\XL\\IMG.TIF"))
	assert.Equal(t, 0, len(packed)%4)
	assert.True(t, len(packed) >= len("C:\\XL\\IMG.TIF"))
}

func TestFillZeros(t *testing.T) {
	assert.Equal(t, make([]byte, 20), FillZeros(5))
	assert.Equal(t, []byte{}, FillZeros(0))
}

func TestDecodeU16Pair(t *testing.T) {
	values, err := Decode([]byte{0x2A, 0x00, 0x64, 0x01}, KindU16Pair)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), values[0].Pair[0])
	assert.Equal(t, uint16(0x0164), values[0].Pair[1])
}

func TestDecodeRejectsShortPayload(t *testing.T) {
	_, err := Decode([]byte{1, 2, 3}, KindF32)
	require.ErrorIs(t, err, ErrCommunication)
}

func TestDecodeRejectsSecondSlotMissing(t *testing.T) {
	_, err := Decode(make([]byte, 4), KindF32, KindF32)
	require.ErrorIs(t, err, ErrCommunication)
}
