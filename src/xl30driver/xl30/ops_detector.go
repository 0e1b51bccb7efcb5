package xl30

import (
	"fmt"

	"github.com/dividat/xl30-driver/src/xl30driver/capability"
	"github.com/dividat/xl30-driver/src/xl30driver/protocol"
)

const (
	opGetDetector                byte = 14
	opSetDetector                byte = 15
	opGetSpecimenCurrentMode     byte = 58
	opSetSpecimenCurrentMode     byte = 59
	opGetSpecimenCurrent         byte = 60
)

// DetectorInfo describes the detector the microscope currently has
// selected, resolved against the fixed catalogue.
type DetectorInfo struct {
	ID        int
	Name      string
	ShortName string
	Type      capability.DetectorType
}

func (s *Session) getDetectorRaw() (DetectorInfo, error) {
	reply, err := s.transact("get_detector", opGetDetector, protocol.FillZeros(1))
	if err != nil {
		return DetectorInfo{}, err
	}
	values, err := decodeReply("get_detector", reply, protocol.KindU16Pair)
	if err != nil {
		return DetectorInfo{}, err
	}

	rawID, rawType := int(values[0].Pair[0]), int(values[0].Pair[1])
	descriptor, ok := capability.DetectorByID(rawID)
	if !ok {
		return DetectorInfo{}, communicationErr("get_detector", fmt.Errorf("unknown detector id %d", rawID))
	}
	detType, ok := capability.DetectorTypeByID(rawType)
	if !ok {
		return DetectorInfo{}, communicationErr("get_detector", fmt.Errorf("unknown detector type %d", rawType))
	}

	return DetectorInfo{ID: descriptor.ID, Name: descriptor.Name, ShortName: descriptor.ShortName, Type: detType}, nil
}

// GetDetector returns the currently selected detector.
func (s *Session) GetDetector() (DetectorInfo, error) {
	var result DetectorInfo
	err := s.call("get_detector", func() error {
		r, err := s.getDetectorRaw()
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

func (s *Session) setDetectorRaw(id int, detType int) error {
	payload := []byte{byte(id), byte(detType), 0, 0}
	_, err := s.transact("set_detector", opSetDetector, payload)
	return err
}

// SetDetector selects a detector by catalogue id. The reference firmware
// is known not to actually switch to the Secondary Electron 1 detector
// (id 3) even though it acknowledges the request; there is no protocol-
// level way to detect this from the reply.
func (s *Session) SetDetector(id int) error {
	descriptor, ok := capability.DetectorByID(id)
	if !ok || descriptor.Type == nil {
		return valueErr("set_detector", fmt.Errorf("detector id %d is not a selectable catalogue entry", id))
	}
	return s.call("set_detector", func() error {
		return s.setDetectorRaw(id, *descriptor.Type)
	})
}

func (s *Session) getSpecimenCurrentDetectorModeRaw() (capability.SpecimenCurrentDetectorMode, error) {
	reply, err := s.transact("get_specimen_current_detector_mode", opGetSpecimenCurrentMode, protocol.FillZeros(1))
	if err != nil {
		return 0, err
	}
	values, err := decodeReply("get_specimen_current_detector_mode", reply, protocol.KindU16Pair)
	if err != nil {
		return 0, err
	}
	mode, ok := capability.SpecimenCurrentDetectorModeFromWire(values[0].Pair[0])
	if !ok {
		return 0, communicationErr("get_specimen_current_detector_mode", fmt.Errorf("unknown mode %d", values[0].Pair[0]))
	}
	return mode, nil
}

// GetSpecimenCurrentDetectorMode returns what the specimen current
// detector is currently being used for.
func (s *Session) GetSpecimenCurrentDetectorMode() (capability.SpecimenCurrentDetectorMode, error) {
	var result capability.SpecimenCurrentDetectorMode
	err := s.call("get_specimen_current_detector_mode", func() error {
		mode, err := s.getSpecimenCurrentDetectorModeRaw()
		if err != nil {
			return err
		}
		result = mode
		return nil
	})
	return result, err
}

// SetSpecimenCurrentDetectorMode switches the specimen current detector's
// mode of operation.
func (s *Session) SetSpecimenCurrentDetectorMode(mode capability.SpecimenCurrentDetectorMode) error {
	return s.call("set_specimen_current_detector_mode", func() error {
		_, err := s.transact("set_specimen_current_detector_mode", opSetSpecimenCurrentMode, []byte{byte(mode), 0, 0, 0})
		return err
	})
}

// GetSpecimenCurrent reads the measured specimen current. Only meaningful
// while the specimen current detector is in MEASURING mode; the caller is
// responsible for having switched modes first, matching the device's own
// lack of server-side enforcement here.
func (s *Session) GetSpecimenCurrent() (float32, error) {
	var result float32
	err := s.call("get_specimen_current", func() error {
		reply, err := s.transact("get_specimen_current", opGetSpecimenCurrent, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("get_specimen_current", reply, protocol.KindF32)
		if err != nil {
			return err
		}
		result = values[0].Float
		return nil
	})
	return result, err
}
