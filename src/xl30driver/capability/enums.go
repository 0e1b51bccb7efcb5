// Package capability models the microscope's fixed enumerations, its
// detector catalogue, and the configured capability ranges a session
// validates caller input against.
package capability

import "fmt"

// MachineType identifies which microscope model answered an identity
// query.
type MachineType int

const (
	MachineTypeUnknown MachineType = iota
	MachineTypeXL20
	MachineTypeXL30
	MachineTypeXL40
)

func (m MachineType) String() string {
	switch m {
	case MachineTypeXL20:
		return "XL20"
	case MachineTypeXL30:
		return "XL30"
	case MachineTypeXL40:
		return "XL40"
	default:
		return "Unknown"
	}
}

// MachineTypeFromWire maps the device's raw identity code to a MachineType.
// Returns false for any code the protocol does not define.
func MachineTypeFromWire(code uint16) (MachineType, bool) {
	switch code {
	case 2:
		return MachineTypeXL20, true
	case 3:
		return MachineTypeXL30, true
	case 4:
		return MachineTypeXL40, true
	default:
		return MachineTypeUnknown, false
	}
}

// ScanMode selects how the beam sweeps the specimen. Values match the
// device's wire encoding directly.
type ScanMode int

const (
	ScanModeExtXY        ScanMode = 1
	ScanModeLineY        ScanMode = 3
	ScanModeLineX        ScanMode = 4
	ScanModeSpot         ScanMode = 5
	ScanModeSelectedArea ScanMode = 6
	ScanModeFullFrame    ScanMode = 7
)

func (m ScanMode) String() string {
	switch m {
	case ScanModeFullFrame:
		return "FULL_FRAME"
	case ScanModeSelectedArea:
		return "SELECTED_AREA"
	case ScanModeSpot:
		return "SPOT"
	case ScanModeLineX:
		return "LINE_X"
	case ScanModeLineY:
		return "LINE_Y"
	case ScanModeExtXY:
		return "EXT_XY"
	default:
		return fmt.Sprintf("ScanMode(%d)", int(m))
	}
}

// ScanModeFromWire validates a raw scan mode value against the enum's known
// wire values, independent of whether the device currently supports it.
func ScanModeFromWire(v uint16) (ScanMode, bool) {
	switch ScanMode(v) {
	case ScanModeFullFrame, ScanModeSelectedArea, ScanModeSpot, ScanModeLineX, ScanModeLineY, ScanModeExtXY:
		return ScanMode(v), true
	default:
		return 0, false
	}
}

// ImageFilterMode selects how successive scans are combined into the
// displayed/captured image.
type ImageFilterMode int

const (
	ImageFilterLive ImageFilterMode = iota
	ImageFilterAverage
	ImageFilterIntegrate
	ImageFilterFreeze
)

func (m ImageFilterMode) String() string {
	switch m {
	case ImageFilterLive:
		return "LIVE"
	case ImageFilterAverage:
		return "AVERAGE"
	case ImageFilterIntegrate:
		return "INTEGRATE"
	case ImageFilterFreeze:
		return "FREEZE"
	default:
		return fmt.Sprintf("ImageFilterMode(%d)", int(m))
	}
}

// ImageFilterModeFromWire validates a raw image filter mode value.
func ImageFilterModeFromWire(v uint16) (ImageFilterMode, bool) {
	switch ImageFilterMode(v) {
	case ImageFilterLive, ImageFilterAverage, ImageFilterIntegrate, ImageFilterFreeze:
		return ImageFilterMode(v), true
	default:
		return 0, false
	}
}

// SpecimenCurrentDetectorMode selects what the specimen current detector is
// being used for.
type SpecimenCurrentDetectorMode int

const (
	SpecimenCurrentTouchAlarm SpecimenCurrentDetectorMode = iota
	SpecimenCurrentImaging
	SpecimenCurrentMeasuring
)

func (m SpecimenCurrentDetectorMode) String() string {
	switch m {
	case SpecimenCurrentTouchAlarm:
		return "TOUCH_ALARM"
	case SpecimenCurrentImaging:
		return "IMAGING"
	case SpecimenCurrentMeasuring:
		return "MEASURING"
	default:
		return fmt.Sprintf("SpecimenCurrentDetectorMode(%d)", int(m))
	}
}

// SpecimenCurrentDetectorModeFromWire validates a raw mode value.
func SpecimenCurrentDetectorModeFromWire(v uint16) (SpecimenCurrentDetectorMode, bool) {
	switch SpecimenCurrentDetectorMode(v) {
	case SpecimenCurrentTouchAlarm, SpecimenCurrentImaging, SpecimenCurrentMeasuring:
		return SpecimenCurrentDetectorMode(v), true
	default:
		return 0, false
	}
}
