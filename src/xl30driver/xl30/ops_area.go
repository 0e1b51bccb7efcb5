package xl30

import (
	"fmt"

	"github.com/dividat/xl30-driver/src/xl30driver/capability"
	"github.com/dividat/xl30-driver/src/xl30driver/protocol"
)

const (
	opGetSelectedAreaSizeX byte = 22
	opSetSelectedAreaSizeX byte = 23
	opGetSelectedAreaSizeY byte = 24
	opSetSelectedAreaSizeY byte = 25

	opGetAreaOrDotShiftX byte = 26
	opSetAreaOrDotShiftX byte = 27
	opGetAreaOrDotShiftY byte = 28
	opSetAreaOrDotShiftY byte = 29
)

var selectedAreaSizeRange = capability.Range{Min: 0, Max: 100}
var areaOrDotShiftRange = capability.Range{Min: -100, Max: 100}

func (s *Session) getSingleFloat(op string, opcode byte) (float32, error) {
	reply, err := s.transact(op, opcode, protocol.FillZeros(1))
	if err != nil {
		return 0, err
	}
	values, err := decodeReply(op, reply, protocol.KindF32)
	if err != nil {
		return 0, err
	}
	return values[0].Float, nil
}

func (s *Session) setSingleFloat(op string, opcode byte, v float32) error {
	_, err := s.transact(op, opcode, protocol.PackFloats(v))
	return err
}

// GetSelectedAreaSizeX returns the selected-area scan's X size as a
// percentage of the full frame.
func (s *Session) GetSelectedAreaSizeX() (float32, error) {
	var result float32
	err := s.call("get_selected_area_size_x", func() error {
		v, err := s.getSingleFloat("get_selected_area_size_x", opGetSelectedAreaSizeX)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

// SetSelectedAreaSizeX sets the selected-area scan's X size; rejects
// values outside [0, 100].
func (s *Session) SetSelectedAreaSizeX(percent float64) error {
	if !selectedAreaSizeRange.Contains(percent) {
		return valueErr("set_selected_area_size_x", fmt.Errorf("size %v out of range [0, 100]", percent))
	}
	return s.call("set_selected_area_size_x", func() error {
		return s.setSingleFloat("set_selected_area_size_x", opSetSelectedAreaSizeX, float32(percent))
	})
}

// GetSelectedAreaSizeY returns the selected-area scan's Y size as a
// percentage of the full frame.
func (s *Session) GetSelectedAreaSizeY() (float32, error) {
	var result float32
	err := s.call("get_selected_area_size_y", func() error {
		v, err := s.getSingleFloat("get_selected_area_size_y", opGetSelectedAreaSizeY)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

// SetSelectedAreaSizeY sets the selected-area scan's Y size; rejects
// values outside [0, 100].
func (s *Session) SetSelectedAreaSizeY(percent float64) error {
	if !selectedAreaSizeRange.Contains(percent) {
		return valueErr("set_selected_area_size_y", fmt.Errorf("size %v out of range [0, 100]", percent))
	}
	return s.call("set_selected_area_size_y", func() error {
		return s.setSingleFloat("set_selected_area_size_y", opSetSelectedAreaSizeY, float32(percent))
	})
}

// GetAreaOrDotShiftX returns the selected-area/spot scan's X shift.
func (s *Session) GetAreaOrDotShiftX() (float32, error) {
	var result float32
	err := s.call("get_area_or_dot_shift_x", func() error {
		v, err := s.getSingleFloat("get_area_or_dot_shift_x", opGetAreaOrDotShiftX)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

// SetAreaOrDotShiftX sets the selected-area/spot scan's X shift; rejects
// values outside [-100, 100].
func (s *Session) SetAreaOrDotShiftX(percent float64) error {
	if !areaOrDotShiftRange.Contains(percent) {
		return valueErr("set_area_or_dot_shift_x", fmt.Errorf("shift %v out of range [-100, 100]", percent))
	}
	return s.call("set_area_or_dot_shift_x", func() error {
		return s.setSingleFloat("set_area_or_dot_shift_x", opSetAreaOrDotShiftX, float32(percent))
	})
}

// GetAreaOrDotShiftY returns the selected-area/spot scan's Y shift.
func (s *Session) GetAreaOrDotShiftY() (float32, error) {
	var result float32
	err := s.call("get_area_or_dot_shift_y", func() error {
		v, err := s.getSingleFloat("get_area_or_dot_shift_y", opGetAreaOrDotShiftY)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

// SetAreaOrDotShiftY sets the selected-area/spot scan's Y shift; rejects
// values outside [-100, 100].
func (s *Session) SetAreaOrDotShiftY(percent float64) error {
	if !areaOrDotShiftRange.Contains(percent) {
		return valueErr("set_area_or_dot_shift_y", fmt.Errorf("shift %v out of range [-100, 100]", percent))
	}
	return s.call("set_area_or_dot_shift_y", func() error {
		return s.setSingleFloat("set_area_or_dot_shift_y", opSetAreaOrDotShiftY, float32(percent))
	})
}
