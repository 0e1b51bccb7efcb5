package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves ReadExact from a fixed buffer, truncating on timeout
// the same way a real port would: fewer bytes than requested, no error.
type fakeReader struct {
	buf       []byte
	timeoutAt int // when >= 0, a read from an empty buffer returns nil; -1 disables that
}

func (f *fakeReader) ReadExact(n int) ([]byte, error) {
	if f.timeoutAt >= 0 && len(f.buf) == 0 {
		return nil, nil
	}
	if n > len(f.buf) {
		n = len(f.buf)
	}
	out := f.buf[:n]
	f.buf = f.buf[n:]
	return out, nil
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for op := 0; op <= 255; op += 17 {
		for payloadLen := 0; payloadLen <= MaxPayload; payloadLen += 37 {
			payload := make([]byte, payloadLen)
			for i := range payload {
				payload[i] = byte(i)
			}

			frame, err := Encode(byte(op), payload)
			require.NoError(t, err)

			reply, err := DecodeFrame(&fakeReader{buf: frame, timeoutAt: 0})
			require.NoError(t, err)
			require.NotNil(t, reply)

			assert.Equal(t, byte(op), reply.Op)
			assert.False(t, reply.Error)
			assert.Equal(t, byte(0), reply.Status)
			assert.Equal(t, payload, reply.Payload)
		}
	}
}

func TestEncodeRejectsOversizePayload(t *testing.T) {
	_, err := Encode(10, make([]byte, MaxPayload+1))
	require.ErrorIs(t, err, ErrCommunication)
}

func TestDecodeFrameRejectsBadSyncByte(t *testing.T) {
	_, err := DecodeFrame(&fakeReader{buf: []byte{0x06, 0x09, 0, 0, 1, 2, 3, 4, 0}, timeoutAt: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommunication))
}

func TestDecodeFrameSoftMissOnTimeout(t *testing.T) {
	reply, err := DecodeFrame(&fakeReader{buf: nil, timeoutAt: 0})
	require.NoError(t, err)
	assert.Nil(t, reply)
}

func TestDecodeFrameDetectsAnySingleBitFlip(t *testing.T) {
	frame, err := Encode(0x31, PackFloats(50.0))
	require.NoError(t, err)

	for i := range frame {
		for bit := 0; bit < 8; bit++ {
			corrupted := append([]byte(nil), frame...)
			corrupted[i] ^= 1 << bit

			_, decodeErr := DecodeFrame(&fakeReader{buf: corrupted, timeoutAt: 0})
			// A corrupted sync byte fails the sync check and a corrupted
			// length byte fails the length/truncation checks or the
			// checksum. Any other single-byte change alters the byte sum
			// and fails checksum verification, which runs before the
			// status-bits check. All of these are Communication failures.
			assert.Error(t, decodeErr, "byte %d bit %d should have been detected", i, bit)
			assert.ErrorIs(t, decodeErr, ErrCommunication)
		}
	}
}

func TestDecodeFrameRejectsShortErrorPayload(t *testing.T) {
	// STATUS with error bit set but only 2 payload bytes, not enough for
	// a 32-bit error code.
	frame := []byte{Sync, 7, 0x02, 0x80, 0xAA, 0xBB, 0}
	var checksum byte
	for _, b := range frame[:len(frame)-1] {
		checksum += b
	}
	frame[len(frame)-1] = checksum

	_, err := DecodeFrame(&fakeReader{buf: frame, timeoutAt: 0})
	require.ErrorIs(t, err, ErrCommunication)
}

func TestDecodeFrameGetIDScenario(t *testing.T) {
	// get_id returns XL30 (type 3) s/n 42.
	wire := []byte{0x05, 0x09, 0x00, 0x00, 0x03, 0x00, 0x2A, 0x00, 0x3B}
	reply, err := DecodeFrame(&fakeReader{buf: wire, timeoutAt: 0})
	require.NoError(t, err)
	require.NotNil(t, reply)

	values, err := Decode(reply.Payload, KindU16Pair)
	require.NoError(t, err)
	assert.Equal(t, uint16(3), values[0].Pair[0])
	assert.Equal(t, uint16(42), values[0].Pair[1])
}
