package xl30

import (
	"fmt"
	"time"

	"github.com/dividat/xl30-driver/src/xl30driver/protocol"
)

const (
	opGetHTEnabled byte = 4
	opSetHTEnabled byte = 5
	opGetHTValue   byte = 2
	opSetHTValue   byte = 3
)

// absoluteHighTensionRange is the hardware safety bound enforced in
// addition to the session's configured HighTensionRange.
var absoluteHighTensionRange = struct{ min, max float64 }{200, 30000}

const (
	highTensionRampInterval = 500 * time.Millisecond
	highTensionRampAttempts = 180 // 90s at 500ms per the device's ramp budget
	highTensionTolerance    = 100 // volts
)

func (s *Session) getHighTensionEnabledRaw() (bool, error) {
	reply, err := s.transact("get_ht_enabled", opGetHTEnabled, protocol.FillZeros(1))
	if err != nil {
		return false, err
	}
	values, err := decodeReply("get_ht_enabled", reply, protocol.KindU16Pair)
	if err != nil {
		return false, err
	}
	return values[0].Pair[0] != 0, nil
}

func (s *Session) getHighTensionValueRaw() (float32, error) {
	reply, err := s.transact("get_ht_value", opGetHTValue, protocol.FillZeros(1))
	if err != nil {
		return 0, err
	}
	values, err := decodeReply("get_ht_value", reply, protocol.KindF32)
	if err != nil {
		return 0, err
	}
	return values[0].Float, nil
}

// GetHighTension returns the current high-tension voltage, or 0 if high
// tension is currently disabled.
func (s *Session) GetHighTension() (float32, error) {
	var result float32
	err := s.call("get_hightension", func() error {
		enabled, err := s.getHighTensionEnabledRaw()
		if err != nil {
			return err
		}
		if !enabled {
			result = 0
			return nil
		}
		v, err := s.getHighTensionValueRaw()
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

func (s *Session) setHighTensionEnabledRaw(enabled bool) error {
	payload := []byte{0, 0, 0, 0}
	if enabled {
		payload[0] = 1
	}
	_, err := s.transact("set_ht_enabled", opSetHTEnabled, payload)
	return err
}

func (s *Session) setHighTensionValueRaw(voltage float32) error {
	_, err := s.transact("set_ht_value", opSetHTValue, protocol.PackFloats(voltage))
	return err
}

// SetHighTension is the composite set_hightension operation. voltage==0
// disables high tension; any other value enables it, sets the target, and
// polls until the measured value is within 100V of target or 90s elapse
// (raising KindIO so the reliability wrapper reconnects). On a failed
// enable/set it attempts to disable before returning.
func (s *Session) SetHighTension(voltage float64) error {
	if voltage != 0 {
		if voltage < absoluteHighTensionRange.min || voltage > absoluteHighTensionRange.max {
			return valueErr("set_hightension", fmt.Errorf("high tension voltage %v out of absolute range [%v, %v]", voltage, absoluteHighTensionRange.min, absoluteHighTensionRange.max))
		}
		if !s.caps.HighTensionRange.Contains(voltage) {
			return valueErr("set_hightension", fmt.Errorf("high tension voltage %v out of configured range %+v", voltage, s.caps.HighTensionRange))
		}
	}

	return s.call("set_hightension", func() error {
		if voltage == 0 {
			s.log().Info("disabling high tension")
			return s.setHighTensionEnabledRaw(false)
		}

		s.log().Info("enabling high tension")
		if err := s.setHighTensionEnabledRaw(true); err != nil {
			_ = s.setHighTensionEnabledRaw(false)
			return err
		}

		s.log().WithField("voltage", voltage).Info("setting high tension target")
		if err := s.setHighTensionValueRaw(float32(voltage)); err != nil {
			_ = s.setHighTensionEnabledRaw(false)
			return err
		}

		var measured float32
		for attempt := 0; attempt < highTensionRampAttempts; attempt++ {
			time.Sleep(highTensionRampInterval)
			v, err := s.getHighTensionValueRaw()
			if err != nil {
				return err
			}
			measured = v
			if diff := float64(measured) - voltage; diff > -highTensionTolerance && diff < highTensionTolerance {
				return nil
			}
			s.log().WithFields(map[string]interface{}{"target": voltage, "measured": measured}).Debug("waiting for high tension ramp")
		}

		return ioErr("set_hightension", fmt.Errorf("failed to reach %vV within 90s (last measured %v)", voltage, measured))
	})
}
