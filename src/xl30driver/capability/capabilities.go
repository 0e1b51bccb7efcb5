package capability

import "fmt"

// Range is an inclusive [Min, Max] bound on a numeric argument.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v falls within the range, inclusive.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Capabilities holds the immutable-after-construction envelope a session
// validates caller arguments against: configured ranges, the set of scan
// modes this microscope supports, and its stigmator count.
type Capabilities struct {
	HighTensionRange  Range
	SpotSizeRange     Range
	MagnificationRange Range

	supportedScanModes map[ScanMode]bool
	stigmatorCount     int
}

// NewCapabilities validates and constructs a Capabilities envelope.
// Mirrors the invariants every concrete microscope model must satisfy:
// each range's min must not exceed its max, at least one scan mode must be
// supported, and the stigmator count must be non-negative.
func NewCapabilities(highTension, spotSize, magnification Range, supportedScanModes []ScanMode, stigmatorCount int) (*Capabilities, error) {
	for name, r := range map[string]Range{
		"high tension":  highTension,
		"spot size":     spotSize,
		"magnification": magnification,
	} {
		if r.Min > r.Max {
			return nil, fmt.Errorf("%s range has min %v greater than max %v", name, r.Min, r.Max)
		}
	}
	if len(supportedScanModes) == 0 {
		return nil, fmt.Errorf("at least one scan mode must be supported")
	}
	if stigmatorCount < 0 {
		return nil, fmt.Errorf("stigmator count must be non-negative, got %d", stigmatorCount)
	}

	modes := make(map[ScanMode]bool, len(supportedScanModes))
	for _, m := range supportedScanModes {
		modes[m] = true
	}

	return &Capabilities{
		HighTensionRange:   highTension,
		SpotSizeRange:      spotSize,
		MagnificationRange: magnification,
		supportedScanModes: modes,
		stigmatorCount:     stigmatorCount,
	}, nil
}

// SupportsScanMode reports whether m is in this microscope's configured
// supported-scan-mode set.
func (c *Capabilities) SupportsScanMode(m ScanMode) bool {
	return c.supportedScanModes[m]
}

// StigmatorCount is the number of stigmator coil pairs this microscope has.
func (c *Capabilities) StigmatorCount() int {
	return c.stigmatorCount
}

// DefaultXL30Capabilities returns the capability envelope for the XL30
// model: high tension 100V-30kV, spot size 1-10, magnification 10-100000,
// all six scan modes, one stigmator.
func DefaultXL30Capabilities() *Capabilities {
	caps, err := NewCapabilities(
		Range{Min: 100, Max: 30e3},
		Range{Min: 1, Max: 10},
		Range{Min: 10, Max: 100000},
		[]ScanMode{
			ScanModeFullFrame,
			ScanModeSelectedArea,
			ScanModeSpot,
			ScanModeLineX,
			ScanModeLineY,
			ScanModeExtXY,
		},
		1,
	)
	if err != nil {
		// The XL30 defaults are fixed and known-valid; a failure here
		// would mean this package itself is broken.
		panic(err)
	}
	return caps
}
