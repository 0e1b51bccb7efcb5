package xl30

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func fiveFloatsPayload(a, b, c, d, e float32) []byte {
	var out []byte
	for _, v := range []float32{a, b, c, d, e} {
		out = append(out, floatPayload(v)...)
	}
	return out
}

// writtenOps returns the opcode byte of every frame written to port, in
// order, skipping the handshake's leading get_id write.
func writtenOps(port *fakePort) []byte {
	ops := make([]byte, 0, len(port.writes)-1)
	for _, w := range port.writes[1:] {
		ops = append(ops, w[2])
	}
	return ops
}

func TestSetStagePositionSafeOrderMovesZThenXYThenRotationThenTiltLast(t *testing.T) {
	handshake := encodeFrame(opGetID, 0, u16PairPayload(3, 42))
	port := newFakePort(
		handshake,
		encodeFrame(opSetStageZ, 0, nil),
		encodeFrame(opGetStagePosition, 0, fiveFloatsPayload(0, 0, 0, 0, 0)),
		encodeFrame(opSetStageXY, 0, nil),
		encodeFrame(opSetStageRotation, 0, nil),
		encodeFrame(opSetStageTilt, 0, nil),
	)

	s, err := NewWithTransport(port, WithSafeStagePositionOrder(true))
	require.NoError(t, err)
	defer s.Close()

	err = s.SetStagePosition(StagePositionTarget{
		X:        f64(1),
		Y:        f64(2),
		Z:        f64(3),
		Rotation: f64(4),
		Tilt:     f64(5),
	})
	require.NoError(t, err)

	assert.Equal(t,
		[]byte{opSetStageZ, opGetStagePosition, opSetStageXY, opSetStageRotation, opSetStageTilt},
		writtenOps(port),
	)
}

func TestSetStagePositionSafeOrderFailsFastOnZError(t *testing.T) {
	handshake := encodeFrame(opGetID, 0, u16PairPayload(3, 42))
	// No reply queued for set_stage_z, so it times out (soft miss) and the
	// call must stop there instead of moving on to the other axes.
	port := newFakePort(handshake)

	s, err := NewWithTransport(port, WithSafeStagePositionOrder(true), WithRetryCount(0), WithReconnectCount(0))
	require.NoError(t, err)
	defer s.Close()

	err = s.SetStagePosition(StagePositionTarget{
		Z:    f64(3),
		Tilt: f64(5),
	})
	require.Error(t, err)

	assert.Equal(t, []byte{opSetStageZ}, writtenOps(port))
}
