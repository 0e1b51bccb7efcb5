package xl30

import (
	"fmt"
	"time"

	"github.com/dividat/xl30-driver/src/xl30driver/capability"
	"github.com/dividat/xl30-driver/src/xl30driver/protocol"
)

const (
	opStageHome        byte = 175
	opSetStageXY       byte = 177
	opSetStageRotation byte = 179
	opSetStageZ        byte = 187
	opSetStageTilt     byte = 189
	opGetStagePosition byte = 190

	opGetBeamShift byte = 80
	opSetBeamShift byte = 81

	opGetScanRotation byte = 98
	opSetScanRotation byte = 99

	stageHomeTimeout    = 165 * time.Second // 2m30s home + 15s settle
	stageAxisTimeout    = 60 * time.Second
)

var scanRotationRange = capability.Range{Min: -90, Max: 90}

// StagePosition is the device's five stage axes in one reading.
type StagePosition struct {
	X, Y, Z, Tilt, Rotation float64
}

// StageHome re-homes the stage, under a 165s timeout override. On some
// firmware revisions the control PC pops up an operator confirmation
// dialog before homing proceeds; this call will block for the full
// timeout if nobody is at the console to dismiss it.
func (s *Session) StageHome() error {
	return s.call("stage_home", func() error {
		return s.withTimeout(stageHomeTimeout, func() error {
			_, err := s.transact("stage_home", opStageHome, nil)
			return err
		})
	})
}

// GetStagePosition reads all five stage axes.
func (s *Session) GetStagePosition() (StagePosition, error) {
	var result StagePosition
	err := s.call("get_stage_position", func() error {
		reply, err := s.transact("get_stage_position", opGetStagePosition, protocol.FillZeros(5))
		if err != nil {
			return err
		}
		values, err := decodeReply("get_stage_position", reply, protocol.KindF32, protocol.KindF32, protocol.KindF32, protocol.KindF32, protocol.KindF32)
		if err != nil {
			return err
		}
		result = StagePosition{
			X:        float64(values[0].Float),
			Y:        float64(values[1].Float),
			Z:        float64(values[2].Float),
			Tilt:     float64(values[3].Float),
			Rotation: float64(values[4].Float),
		}
		return nil
	})
	return result, err
}

func (s *Session) setStageXYRaw(x, y float32) error {
	_, err := s.transact("set_stage_xy", opSetStageXY, protocol.PackFloats(x, y))
	return err
}

func (s *Session) setStageRotationRaw(rotation float32) error {
	_, err := s.transact("set_stage_rotation", opSetStageRotation, protocol.PackFloats(rotation))
	return err
}

func (s *Session) setStageZRaw(z float32) error {
	_, err := s.transact("set_stage_z", opSetStageZ, protocol.PackFloats(z))
	return err
}

func (s *Session) setStageTiltRaw(tilt float32) error {
	_, err := s.transact("set_stage_tilt", opSetStageTilt, protocol.PackFloats(tilt))
	return err
}

// StagePositionTarget gives the axes to move; nil fields are left
// untouched.
type StagePositionTarget struct {
	X, Y     *float64
	Z        *float64
	Tilt     *float64
	Rotation *float64
}

// SetStagePosition moves one or more stage axes in a single composite,
// retried-as-a-unit operation, each axis step under its own 60s timeout.
// When X or Y is given without the other, the missing one is filled from
// the current reading before the move. By default axes move in the
// device driver's original order (XY, rotation, Z, tilt) and a Z-axis
// failure is logged but does not fail the whole call, matching the
// original Python driver. WithSafeStagePositionOrder instead moves Z
// first, then XY, then rotation, then tilt last, and treats a Z failure as
// fatal like the other axes.
func (s *Session) SetStagePosition(target StagePositionTarget) error {
	return s.call("set_stage_position", func() error {
		moveXY := func() error {
			if target.X == nil && target.Y == nil {
				return nil
			}
			current, err := s.GetStagePosition()
			if err != nil {
				return err
			}
			x, y := current.X, current.Y
			if target.X != nil {
				x = *target.X
			}
			if target.Y != nil {
				y = *target.Y
			}
			return s.withTimeout(stageAxisTimeout, func() error {
				return s.setStageXYRaw(float32(x), float32(y))
			})
		}
		moveRotation := func() error {
			if target.Rotation == nil {
				return nil
			}
			return s.withTimeout(stageAxisTimeout, func() error {
				return s.setStageRotationRaw(float32(*target.Rotation))
			})
		}
		moveZ := func() error {
			if target.Z == nil {
				return nil
			}
			err := s.withTimeout(stageAxisTimeout, func() error {
				return s.setStageZRaw(float32(*target.Z))
			})
			if err != nil {
				s.log().WithError(err).Warn("stage z move failed")
				if s.safeStagePositionOrder {
					return err
				}
				return nil
			}
			return nil
		}
		moveTilt := func() error {
			if target.Tilt == nil {
				return nil
			}
			return s.withTimeout(stageAxisTimeout, func() error {
				return s.setStageTiltRaw(float32(*target.Tilt))
			})
		}

		if s.safeStagePositionOrder {
			if err := moveZ(); err != nil {
				return err
			}
			if err := moveXY(); err != nil {
				return err
			}
			if err := moveRotation(); err != nil {
				return err
			}
			return moveTilt()
		}

		if err := moveXY(); err != nil {
			return err
		}
		if err := moveRotation(); err != nil {
			return err
		}
		if err := moveZ(); err != nil {
			return err
		}
		return moveTilt()
	})
}

func (s *Session) getBeamShiftRaw() (x, y float32, err error) {
	reply, err := s.transact("get_beamshift", opGetBeamShift, protocol.FillZeros(2))
	if err != nil {
		return 0, 0, err
	}
	values, err := decodeReply("get_beamshift", reply, protocol.KindF32, protocol.KindF32)
	if err != nil {
		return 0, 0, err
	}
	return values[0].Float, values[1].Float, nil
}

// GetBeamShift returns the current beam shift (x, y).
func (s *Session) GetBeamShift() (float32, float32, error) {
	var x, y float32
	err := s.call("get_beamshift", func() error {
		var err error
		x, y, err = s.getBeamShiftRaw()
		return err
	})
	return x, y, err
}

// SetBeamShift sets the beam shift; either axis may be omitted (nil) to
// leave it at its current value, read back first. The device does not
// bound-check x/y itself and neither does this method; out-of-range
// values are accepted and can shift the beam off the detector.
func (s *Session) SetBeamShift(x, y *float64) error {
	return s.call("set_beamshift", func() error {
		curX, curY, err := s.getBeamShiftRaw()
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
		_, err = s.transact("set_beamshift", opSetBeamShift, protocol.PackFloats(newX, newY))
		return err
	})
}

// GetScanRotation returns the current scan rotation in degrees.
func (s *Session) GetScanRotation() (float32, error) {
	var result float32
	err := s.call("get_scanrotation", func() error {
		reply, err := s.transact("get_scanrotation", opGetScanRotation, protocol.FillZeros(1))
		if err != nil {
			return err
		}
		values, err := decodeReply("get_scanrotation", reply, protocol.KindF32)
		if err != nil {
			return err
		}
		result = values[0].Float
		return nil
	})
	return result, err
}

// SetScanRotation sets scan rotation; valid range is [-90, 90] degrees.
func (s *Session) SetScanRotation(degrees float64) error {
	if !scanRotationRange.Contains(degrees) {
		return valueErr("set_scanrotation", fmt.Errorf("scan rotation %v out of range [-90, 90]", degrees))
	}
	return s.call("set_scanrotation", func() error {
		_, err := s.transact("set_scanrotation", opSetScanRotation, protocol.PackFloats(float32(degrees)))
		return err
	})
}
