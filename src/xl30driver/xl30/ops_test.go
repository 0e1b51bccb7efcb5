package xl30

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandshakedSession(t *testing.T, replies ...[]byte) (*Session, *fakePort) {
	t.Helper()
	all := append([][]byte{encodeFrame(opGetID, 0, u16PairPayload(3, 42))}, replies...)
	port := newFakePort(all...)
	s, err := NewWithTransport(port)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, port
}

func TestGetContrastDecodesFloat(t *testing.T) {
	s, _ := newHandshakedSession(t, encodeFrame(opGetContrast, 0, floatPayload(50)))

	v, err := s.GetContrast()
	require.NoError(t, err)
	assert.InDelta(t, 50, v, 0.001)
}

func TestSetContrastRejectsOutOfRangeWithoutWriting(t *testing.T) {
	s, port := newHandshakedSession(t)

	err := s.SetContrast(150)
	require.Error(t, err)
	assert.Equal(t, KindValue, err.(*Error).Kind)
	assert.Equal(t, 1, port.writeCount()) // only the handshake's get_id write
}

func TestSetContrastHappyPath(t *testing.T) {
	s, port := newHandshakedSession(t, encodeFrame(opSetContrast, 0, nil))

	require.NoError(t, s.SetContrast(50))
	assert.Equal(t, 2, port.writeCount())
}

func TestDeviceErrorReplyIsNotRetryableAndSurfacesCode(t *testing.T) {
	errPayload := append([]byte{7, 0, 0, 0}, floatPayload(0)...)
	s, port := newHandshakedSession(t, encodeFrame(opGetContrast, statusErrorBitForTest, errPayload))

	_, err := s.GetContrast()
	require.Error(t, err)
	xerr := err.(*Error)
	assert.Equal(t, KindDeviceError, xerr.Kind)
	assert.Equal(t, uint32(7), xerr.ErrorCode)
	assert.Equal(t, 2, port.writeCount()) // no retry attempted
}

const statusErrorBitForTest = 0x80

func TestSetHighTensionRejectsBelowAbsoluteFloor(t *testing.T) {
	s, port := newHandshakedSession(t)

	err := s.SetHighTension(50)
	require.Error(t, err)
	assert.Equal(t, KindValue, err.(*Error).Kind)
	assert.Equal(t, 1, port.writeCount())
}

func TestSetHighTensionRampsToTarget(t *testing.T) {
	s, port := newHandshakedSession(t,
		encodeFrame(opSetHTEnabled, 0, nil),
		encodeFrame(opSetHTValue, 0, nil),
		encodeFrame(opGetHTValue, 0, floatPayload(9950)),
	)

	require.NoError(t, s.SetHighTension(10000))
	assert.Equal(t, 4, port.writeCount())
}

func TestGetDetectorResolvesCatalogueEntry(t *testing.T) {
	s, _ := newHandshakedSession(t, encodeFrame(opGetDetector, 0, u16PairPayload(3, 2)))

	info, err := s.GetDetector()
	require.NoError(t, err)
	assert.Equal(t, "Secondary Electron 1", info.Name)
	assert.Equal(t, "SED", info.Type.ShortName)
}

func TestSetScanModeRejectsUnsupportedMode(t *testing.T) {
	s, port := newHandshakedSession(t)

	err := s.SetScanMode(99)
	require.Error(t, err)
	assert.Equal(t, KindValue, err.(*Error).Kind)
	assert.Equal(t, 1, port.writeCount())
}
