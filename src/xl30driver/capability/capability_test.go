package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultXL30CapabilitiesMatchesDevice(t *testing.T) {
	caps := DefaultXL30Capabilities()
	assert.Equal(t, Range{Min: 100, Max: 30e3}, caps.HighTensionRange)
	assert.Equal(t, Range{Min: 1, Max: 10}, caps.SpotSizeRange)
	assert.Equal(t, Range{Min: 10, Max: 100000}, caps.MagnificationRange)
	assert.Equal(t, 1, caps.StigmatorCount())
	assert.True(t, caps.SupportsScanMode(ScanModeFullFrame))
	assert.True(t, caps.SupportsScanMode(ScanModeExtXY))
}

func TestNewCapabilitiesRejectsInvertedRange(t *testing.T) {
	_, err := NewCapabilities(Range{Min: 10, Max: 5}, Range{Min: 1, Max: 10}, Range{Min: 10, Max: 100}, []ScanMode{ScanModeSpot}, 1)
	require.Error(t, err)
}

func TestNewCapabilitiesRejectsEmptyScanModes(t *testing.T) {
	_, err := NewCapabilities(Range{Min: 1, Max: 2}, Range{Min: 1, Max: 2}, Range{Min: 1, Max: 2}, nil, 1)
	require.Error(t, err)
}

func TestNewCapabilitiesRejectsNegativeStigmatorCount(t *testing.T) {
	_, err := NewCapabilities(Range{Min: 1, Max: 2}, Range{Min: 1, Max: 2}, Range{Min: 1, Max: 2}, []ScanMode{ScanModeSpot}, -1)
	require.Error(t, err)
}

func TestDetectorCatalogueHasThirtyOneEntries(t *testing.T) {
	assert.Len(t, DetectorCatalogue, 31)

	mixed, ok := DetectorByID(256)
	require.True(t, ok)
	assert.Equal(t, "Mixed", mixed.Name)
	require.NotNil(t, mixed.Type)
	assert.Equal(t, 4, *mixed.Type)

	none, ok := DetectorByID(0)
	require.True(t, ok)
	assert.Nil(t, none.Type)
}

func TestDetectorSupportDefaultsUnsupported(t *testing.T) {
	s := NewDetectorSupport()
	assert.False(t, s.IsSupported(1))
	s.Set(1, true)
	assert.True(t, s.IsSupported(1))
	assert.False(t, s.IsSupported(2))
}

func TestLinesPerFrameTVSentinel(t *testing.T) {
	tv, ok := LinesPerFrameByWireCode(100)
	require.True(t, ok)
	assert.True(t, tv.TV)

	code, ok := WireCodeOfLinesPerFrame(LinesPerFrame{Value: 484})
	require.True(t, ok)
	assert.Equal(t, uint16(2), code)
}

func TestLineTimeTVSentinel(t *testing.T) {
	tv, ok := LineTimeByWireCode(100)
	require.True(t, ok)
	assert.True(t, tv.TV)

	code, ok := WireCodeOfLineTime(LineTime{Milliseconds: 6.86})
	require.True(t, ok)
	assert.Equal(t, uint16(3), code)
}

func TestScanModeFromWire(t *testing.T) {
	mode, ok := ScanModeFromWire(7)
	require.True(t, ok)
	assert.Equal(t, ScanModeFullFrame, mode)

	_, ok = ScanModeFromWire(99)
	assert.False(t, ok)
}
