package xl30

import (
	"fmt"

	"github.com/dividat/xl30-driver/src/xl30driver/protocol"
)

const (
	opGetStigmator byte = 70
	opSetStigmator byte = 71

	opIsOplocked byte = 38
	opOplock     byte = 39

	opIsBlanked byte = 62
	opBlank     byte = 63
)

func (s *Session) getStigmatorRaw() (x, y float32, err error) {
	reply, err := s.transact("get_stigmator", opGetStigmator, protocol.FillZeros(2))
	if err != nil {
		return 0, 0, err
	}
	values, err := decodeReply("get_stigmator", reply, protocol.KindF32, protocol.KindF32)
	if err != nil {
		return 0, 0, err
	}
	return values[0].Float, values[1].Float, nil
}

// GetStigmator returns the stigmator's x/y correction for the device's
// single stigmator.
func (s *Session) GetStigmator(index int) (float32, float32, error) {
	if index != 0 {
		return 0, 0, valueErr("get_stigmator", fmt.Errorf("stigmator index %d out of range; this device has one stigmator at index 0", index))
	}
	var x, y float32
	err := s.call("get_stigmator", func() error {
		var err error
		x, y, err = s.getStigmatorRaw()
		return err
	})
	return x, y, err
}

// SetStigmator sets the stigmator's x/y correction; either axis may be
// omitted (nil) to leave it at its current value, read back first.
func (s *Session) SetStigmator(index int, x, y *float64) error {
	if index != 0 {
		return valueErr("set_stigmator", fmt.Errorf("stigmator index %d out of range; this device has one stigmator at index 0", index))
	}
	return s.call("set_stigmator", func() error {
		curX, curY, err := s.getStigmatorRaw()
		if err != nil {
			return err
		}
		newX, newY := curX, curY
		if x != nil {
			newX = float32(*x)
		}
		if y != nil {
			newY = float32(*y)
		}
		_, err = s.transact("set_stigmator", opSetStigmator, protocol.PackFloats(newX, newY))
		return err
	})
}

// IsOplocked reports whether the device's operator panel is currently
// locked out.
func (s *Session) IsOplocked() (bool, error) {
	var result bool
	err := s.call("is_oplocked", func() error {
		reply, err := s.transact("is_oplocked", opIsOplocked, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("is_oplocked", reply, protocol.KindU16Pair)
		if err != nil {
			return err
		}
		result = values[0].Pair[0] != 0
		return nil
	})
	return result, err
}

// SetOplock locks or unlocks the operator panel.
func (s *Session) SetOplock(locked bool) error {
	var v byte
	if locked {
		v = 1
	}
	return s.call("oplock", func() error {
		_, err := s.transact("oplock", opOplock, []byte{v, 0, 0, 0})
		return err
	})
}

// IsBlanked reports whether the electron beam is currently blanked.
func (s *Session) IsBlanked() (bool, error) {
	var result bool
	err := s.call("is_blanked", func() error {
		reply, err := s.transact("is_blanked", opIsBlanked, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("is_blanked", reply, protocol.KindU16Pair)
		if err != nil {
			return err
		}
		result = values[0].Pair[0] != 0
		return nil
	})
	return result, err
}

func (s *Session) setBlankedRaw(blanked bool) error {
	var v byte
	if blanked {
		v = 1
	}
	_, err := s.transact("blank", opBlank, []byte{v, 0, 0, 0})
	return err
}

// Blank blanks the electron beam.
func (s *Session) Blank() error {
	return s.call("blank", func() error { return s.setBlankedRaw(true) })
}

// Unblank unblanks the electron beam.
func (s *Session) Unblank() error {
	return s.call("unblank", func() error { return s.setBlankedRaw(false) })
}
