package xl30

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withFastBackoff shortens retry/reconnect delays so these tests don't
// actually wait out the default 5s pauses.
func withFastBackoff() []Option {
	return []Option{
		WithRetryDelay(time.Millisecond),
		WithReconnectDelay(time.Millisecond),
	}
}

func TestCallExhaustsRetriesThenReconnectsThenFails(t *testing.T) {
	handshake := encodeFrame(opGetID, 0, u16PairPayload(3, 42))
	port := newFakePort(handshake)

	opts := append(withFastBackoff(), WithRetryCount(2), WithReconnectCount(2))
	s, err := NewWithTransport(port, opts...)
	require.NoError(t, err)
	defer s.Close()

	// Every subsequent read times out (soft miss), so every attempt fails
	// with a retryable Communication error. Since this session does not own
	// its transport, every reconnect attempt fails immediately without
	// consuming extra attempts of its own.
	_, err = s.GetContrast()
	require.Error(t, err)
	assert.Equal(t, KindCommunication, err.(*Error).Kind)

	// 1 handshake write + (1 initial + 2 retries + 2 reconnect-then-retry)
	// attempts for GetContrast.
	assert.Equal(t, 1+5, port.writeCount())
}

func TestCallSucceedsAfterOneRetry(t *testing.T) {
	handshake := encodeFrame(opGetID, 0, u16PairPayload(3, 42))
	port := newFakePort(handshake, nil, encodeFrame(opGetContrast, 0, floatPayload(42)))

	opts := append(withFastBackoff(), WithRetryCount(2), WithReconnectCount(2))
	s, err := NewWithTransport(port, opts...)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.GetContrast()
	require.NoError(t, err)
	assert.InDelta(t, 42, v, 0.001)
	assert.Equal(t, 3, port.writeCount()) // handshake + failed attempt + retry
}

func TestCallNotConnectedSkipsRetryBudgetAndGoesStraightToReconnect(t *testing.T) {
	handshake := encodeFrame(opGetID, 0, u16PairPayload(3, 42))
	port := newFakePort(handshake)

	opts := append(withFastBackoff(), WithRetryCount(3), WithReconnectCount(2))
	s, err := NewWithTransport(port, opts...)
	require.NoError(t, err)
	defer s.Close()

	attempts := 0
	err = s.call("test_op", func() error {
		attempts++
		return notConnectedErr("test_op")
	})
	require.Error(t, err)
	assert.Equal(t, KindNotConnected, err.(*Error).Kind)

	// NotConnected must never spend the 3-attempt retry budget: only the
	// initial attempt plus one per reconnect (2) are made.
	assert.Equal(t, 3, attempts)
}

func TestCallDoesNotRetryValueErrors(t *testing.T) {
	handshake := encodeFrame(opGetID, 0, u16PairPayload(3, 42))
	port := newFakePort(handshake)

	s, err := NewWithTransport(port, withFastBackoff()...)
	require.NoError(t, err)
	defer s.Close()

	err = s.SetContrast(-1)
	require.Error(t, err)
	assert.Equal(t, KindValue, err.(*Error).Kind)
	assert.Equal(t, 1, port.writeCount())
}
