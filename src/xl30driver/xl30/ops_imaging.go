package xl30

import (
	"fmt"
	"math"
	"time"

	"github.com/dividat/xl30-driver/src/xl30driver/capability"
	"github.com/dividat/xl30-driver/src/xl30driver/protocol"
)

const (
	opGetSpotSize      byte = 6
	opSetSpotSize      byte = 7
	opGetMagnification byte = 12
	opSetMagnification byte = 13
	opGetScanMode      byte = 16
	opSetScanMode      byte = 17
	opGetLinesPerFrame byte = 18
	opSetLinesPerFrame byte = 19
	opGetSetLineTime   byte = 21
	opMakePhoto        byte = 37
	opGetContrast      byte = 48
	opSetContrast      byte = 49
	opGetBrightness    byte = 50
	opSetBrightness    byte = 51
	opAutoContrastBrightness byte = 53
	opGetImageFilter   byte = 74
	opSetImageFilter   byte = 75
	opWriteTiffImage   byte = 84
	opGetDatabarText   byte = 100
	opSetDatabarText   byte = 101
	opAutoFocus        byte = 111

	autoFocusTimeout = 240 * time.Second
)

const (
	flagPrintMagnification byte = 0x80
	flagGraphicsBitPlane   byte = 0x40
	flagDatabar            byte = 0x20
	flagOverwrite          byte = 0x10
)

// GetSpotSize returns the current spot size (probe current index).
func (s *Session) GetSpotSize() (float32, error) {
	var result float32
	err := s.call("get_spotsize", func() error {
		reply, err := s.transact("get_spotsize", opGetSpotSize, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("get_spotsize", reply, protocol.KindF32)
		if err != nil {
			return err
		}
		result = values[0].Float
		return nil
	})
	return result, err
}

// SetSpotSize sets the spot size; rejects values outside [1.0, 10.0]
// without writing to the port.
func (s *Session) SetSpotSize(spotSize float64) error {
	if !s.caps.SpotSizeRange.Contains(spotSize) {
		return valueErr("set_spotsize", fmt.Errorf("spot size %v out of range %+v", spotSize, s.caps.SpotSizeRange))
	}
	return s.call("set_spotsize", func() error {
		_, err := s.transact("set_spotsize", opSetSpotSize, protocol.PackFloats(float32(spotSize)))
		return err
	})
}

// GetMagnification returns the current magnification.
func (s *Session) GetMagnification() (float32, error) {
	var result float32
	err := s.call("get_magnification", func() error {
		reply, err := s.transact("get_magnification", opGetMagnification, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("get_magnification", reply, protocol.KindF32)
		if err != nil {
			return err
		}
		result = values[0].Float
		return nil
	})
	return result, err
}

// absoluteMagnificationRange is the hardware-level bound enforced
// regardless of the session's configured MagnificationRange.
var absoluteMagnificationRange = capability.Range{Min: 20, Max: 4e5}

// SetMagnification sets the magnification; rejects values outside the
// absolute [20, 400000] bound or the configured range.
func (s *Session) SetMagnification(magnification float64) error {
	if !absoluteMagnificationRange.Contains(magnification) {
		return valueErr("set_magnification", fmt.Errorf("magnification %v out of absolute range %+v", magnification, absoluteMagnificationRange))
	}
	if !s.caps.MagnificationRange.Contains(magnification) {
		return valueErr("set_magnification", fmt.Errorf("magnification %v out of configured range %+v", magnification, s.caps.MagnificationRange))
	}
	return s.call("set_magnification", func() error {
		_, err := s.transact("set_magnification", opSetMagnification, protocol.PackFloats(float32(magnification)))
		return err
	})
}

// GetContrast returns the current contrast (0-100).
func (s *Session) GetContrast() (float32, error) {
	var result float32
	err := s.call("get_contrast", func() error {
		reply, err := s.transact("get_contrast", opGetContrast, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("get_contrast", reply, protocol.KindF32)
		if err != nil {
			return err
		}
		result = values[0].Float
		return nil
	})
	return result, err
}

// SetContrast sets contrast; rejects values outside [0, 100].
func (s *Session) SetContrast(contrast float64) error {
	if !percentRange.Contains(contrast) {
		return valueErr("set_contrast", fmt.Errorf("contrast %v out of range [0, 100]", contrast))
	}
	return s.call("set_contrast", func() error {
		_, err := s.transact("set_contrast", opSetContrast, protocol.PackFloats(float32(contrast)))
		return err
	})
}

// GetBrightness returns the current brightness (0-100).
func (s *Session) GetBrightness() (float32, error) {
	var result float32
	err := s.call("get_brightness", func() error {
		reply, err := s.transact("get_brightness", opGetBrightness, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("get_brightness", reply, protocol.KindF32)
		if err != nil {
			return err
		}
		result = values[0].Float
		return nil
	})
	return result, err
}

// SetBrightness sets brightness; rejects values outside [0, 100].
func (s *Session) SetBrightness(brightness float64) error {
	if !percentRange.Contains(brightness) {
		return valueErr("set_brightness", fmt.Errorf("brightness %v out of range [0, 100]", brightness))
	}
	return s.call("set_brightness", func() error {
		_, err := s.transact("set_brightness", opSetBrightness, protocol.PackFloats(float32(brightness)))
		return err
	})
}

var percentRange = capability.Range{Min: 0, Max: 100}

// AutoContrastBrightness issues the auto contrast/brightness command and
// waits the 30s the device needs to complete it before returning, matching
// the source's internal sleep rather than leaving the wait to the caller.
func (s *Session) AutoContrastBrightness() error {
	return s.call("auto_cb", func() error {
		_, err := s.transact("auto_cb", opAutoContrastBrightness, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		time.Sleep(30 * time.Second)
		return nil
	})
}

// AutoFocus runs the device's autofocus routine under a 240s timeout
// override.
func (s *Session) AutoFocus() error {
	return s.call("auto_focus", func() error {
		return s.withTimeout(autoFocusTimeout, func() error {
			_, err := s.transact("auto_focus", opAutoFocus, protocol.FillZeros(1))
			return err
		})
	})
}

// GetScanMode returns the device's current scan mode.
func (s *Session) GetScanMode() (capability.ScanMode, error) {
	var result capability.ScanMode
	err := s.call("get_scanmode", func() error {
		reply, err := s.transact("get_scanmode", opGetScanMode, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("get_scanmode", reply, protocol.KindU16Pair)
		if err != nil {
			return err
		}
		mode, ok := capability.ScanModeFromWire(values[0].Pair[0])
		if !ok {
			return communicationErr("get_scanmode", fmt.Errorf("unknown scan mode %d", values[0].Pair[0]))
		}
		result = mode
		return nil
	})
	return result, err
}

// SetScanMode sets the scan mode; rejects modes this microscope was not
// configured to support.
func (s *Session) SetScanMode(mode capability.ScanMode) error {
	if !s.caps.SupportsScanMode(mode) {
		return valueErr("set_scanmode", fmt.Errorf("scan mode %s is not in the configured supported set", mode))
	}
	return s.call("set_scanmode", func() error {
		_, err := s.transact("set_scanmode", opSetScanMode, []byte{byte(mode), 0, 0, 0})
		return err
	})
}

// GetLinesPerFrame returns the device's current lines-per-frame setting.
func (s *Session) GetLinesPerFrame() (capability.LinesPerFrame, error) {
	var result capability.LinesPerFrame
	err := s.call("get_linesperframe", func() error {
		reply, err := s.transact("get_linesperframe", opGetLinesPerFrame, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("get_linesperframe", reply, protocol.KindU16Pair)
		if err != nil {
			return err
		}
		v, ok := capability.LinesPerFrameByWireCode(values[0].Pair[0])
		if !ok {
			return communicationErr("get_linesperframe", fmt.Errorf("unknown lines-per-frame code %d", values[0].Pair[0]))
		}
		result = v
		return nil
	})
	return result, err
}

// SetLinesPerFrame sets the lines-per-frame to one of the device's
// discrete options.
func (s *Session) SetLinesPerFrame(v capability.LinesPerFrame) error {
	code, ok := capability.WireCodeOfLinesPerFrame(v)
	if !ok {
		return valueErr("set_linesperframe", fmt.Errorf("%v is not a supported lines-per-frame value", v))
	}
	return s.call("set_linesperframe", func() error {
		_, err := s.transact("set_linesperframe", opSetLinesPerFrame, []byte{byte(code), 0, 0, 0})
		return err
	})
}

// GetLineTime returns the device's current line time.
func (s *Session) GetLineTime() (capability.LineTime, error) {
	var result capability.LineTime
	err := s.call("get_linetime", func() error {
		reply, err := s.transact("get_linetime", opGetSetLineTime, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("get_linetime", reply, protocol.KindU16Pair)
		if err != nil {
			return err
		}
		v, ok := capability.LineTimeByWireCode(values[0].Pair[0])
		if !ok {
			return communicationErr("get_linetime", fmt.Errorf("unknown line time code %d", values[0].Pair[0]))
		}
		result = v
		return nil
	})
	return result, err
}

// SetLineTime sets the line time to one of the device's discrete options.
// Uses the same opcode as GetLineTime; the device distinguishes get from
// set by request payload shape.
func (s *Session) SetLineTime(v capability.LineTime) error {
	code, ok := capability.WireCodeOfLineTime(v)
	if !ok {
		return valueErr("set_linetime", fmt.Errorf("%v is not a supported line time value", v))
	}
	return s.call("set_linetime", func() error {
		_, err := s.transact("set_linetime", opGetSetLineTime, []byte{byte(code), 0, 0, 0})
		return err
	})
}

// MakePhoto commits the current frame buffer as a stored image.
func (s *Session) MakePhoto() error {
	return s.call("make_photo", func() error {
		_, err := s.transact("make_photo", opMakePhoto, nil)
		return err
	})
}

// WriteTiffImageOptions controls the flag bits write_tiff_image sets.
type WriteTiffImageOptions struct {
	PrintMagnification bool
	GraphicsBitPlane   bool
	Databar            bool
	Overwrite          bool
}

// WriteTiffImage instructs the microscope to save a TIFF at an absolute
// path on its own control PC; retrieval is out of band (SMB), so this
// returns only once the device has acknowledged the save was issued.
func (s *Session) WriteTiffImage(path string, opts WriteTiffImageOptions) error {
	var flagLow, flagHigh byte
	if opts.PrintMagnification {
		flagHigh |= flagPrintMagnification
	}
	if opts.GraphicsBitPlane {
		flagHigh |= flagGraphicsBitPlane
	}
	if opts.Databar {
		flagHigh |= flagDatabar
	}
	if opts.Overwrite {
		flagLow |= flagOverwrite
	}

	nameBytes := protocol.PadTo4(append([]byte(path), 0))
	payload := append([]byte{flagLow, flagHigh, 0, 0}, nameBytes...)

	return s.call("write_tiff_image", func() error {
		_, err := s.transact("write_tiff_image", opWriteTiffImage, payload)
		return err
	})
}

// SetDatabarText sets the on-screen overlay text burned into captured
// images; limited to 39 ASCII characters.
func (s *Session) SetDatabarText(text string) error {
	if len(text) > 39 {
		return valueErr("set_databar_text", fmt.Errorf("databar text of %d characters exceeds the 39-character limit", len(text)))
	}
	for i := 0; i < len(text); i++ {
		if text[i] > 0x7F {
			return valueErr("set_databar_text", fmt.Errorf("databar text has non-ASCII byte 0x%02X at offset %d", text[i], i))
		}
	}
	textBytes := protocol.PadTo4(append([]byte(text), 0))
	payload := append([]byte{0, 0, 0, 0}, textBytes...)

	return s.call("set_databar_text", func() error {
		_, err := s.transact("set_databar_text", opSetDatabarText, payload)
		return err
	})
}

// GetDatabarText returns the current databar text.
func (s *Session) GetDatabarText() (string, error) {
	var result string
	err := s.call("get_databar_text", func() error {
		reply, err := s.transact("get_databar_text", opGetDatabarText, protocol.FillZeros(11))
		if err != nil {
			return err
		}
		if len(reply.Payload) < 4 {
			return communicationErr("get_databar_text", fmt.Errorf("reply too short to carry a databar text prefix"))
		}
		result = stripTrailingZeros(reply.Payload[4:])
		return nil
	})
	return result, err
}

func stripTrailingZeros(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

// GetImageFilterMode returns the current image filter mode and averaging
// frame count.
func (s *Session) GetImageFilterMode() (capability.ImageFilterMode, int, error) {
	var mode capability.ImageFilterMode
	var frames int
	err := s.call("get_imagefilter_mode", func() error {
		reply, err := s.transact("get_imagefilter_mode", opGetImageFilter, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("get_imagefilter_mode", reply, protocol.KindU16Pair)
		if err != nil {
			return err
		}
		m, ok := capability.ImageFilterModeFromWire(values[0].Pair[0])
		if !ok {
			return communicationErr("get_imagefilter_mode", fmt.Errorf("unknown image filter mode %d", values[0].Pair[0]))
		}
		mode = m
		frames = 1 << values[0].Pair[1]
		return nil
	})
	return mode, frames, err
}

// SetImageFilterMode sets the image filter mode and averaging frame count;
// frames must be a power of two no greater than 2^255.
func (s *Session) SetImageFilterMode(mode capability.ImageFilterMode, frames int) error {
	if frames < 1 {
		return valueErr("set_imagefilter_mode", fmt.Errorf("at least one frame is required"))
	}
	log2Frames := math.Log2(float64(frames))
	if log2Frames != math.Trunc(log2Frames) {
		return valueErr("set_imagefilter_mode", fmt.Errorf("frame count %d is not a power of two", frames))
	}
	if log2Frames > 255 {
		return valueErr("set_imagefilter_mode", fmt.Errorf("frame count %d exceeds 2^255", frames))
	}

	return s.call("set_imagefilter_mode", func() error {
		_, err := s.transact("set_imagefilter_mode", opSetImageFilter, []byte{byte(mode), byte(log2Frames), 0, 0})
		return err
	})
}
