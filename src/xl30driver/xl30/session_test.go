package xl30

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dividat/xl30-driver/src/xl30driver/capability"
)

func TestNewWithTransportRunsHandshake(t *testing.T) {
	port := newFakePort(encodeFrame(opGetID, 0, u16PairPayload(3, 42)))

	s, err := NewWithTransport(port, WithLogLevel(0))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, capability.MachineTypeXL30, s.MachineType())
	assert.Equal(t, uint16(42), s.MachineSerial())
	assert.Equal(t, 1, port.writeCount())
}

func TestNewWithTransportRejectsUnknownMachineType(t *testing.T) {
	port := newFakePort(encodeFrame(opGetID, 0, u16PairPayload(99, 1)))

	_, err := NewWithTransport(port)
	require.Error(t, err)
	assert.Equal(t, KindCommunication, err.(*Error).Kind)
}

func TestCloseDeregistersTerminator(t *testing.T) {
	port := newFakePort(encodeFrame(opGetID, 0, u16PairPayload(3, 42)))

	s, err := NewWithTransport(port)
	require.NoError(t, err)
	require.NotNil(t, s.terminatorHandle)

	require.NoError(t, s.Close())
	assert.Nil(t, s.terminatorHandle)
}

func TestExternallyOwnedSessionReconnectAlwaysFails(t *testing.T) {
	port := newFakePort(encodeFrame(opGetID, 0, u16PairPayload(3, 42)))
	s, err := NewWithTransport(port)
	require.NoError(t, err)
	defer s.Close()

	assert.False(t, s.reconnect())
	assert.False(t, port.closed)
}
