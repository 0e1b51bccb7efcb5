package xl30

import (
	"fmt"

	"github.com/dividat/xl30-driver/src/xl30driver/capability"
	"github.com/dividat/xl30-driver/src/xl30driver/protocol"
)

const opGetID byte = 0

type idReply struct {
	machineType capability.MachineType
	serial      uint16
}

func (s *Session) getIDRaw() (idReply, error) {
	reply, err := s.transact("get_id", opGetID, protocol.FillZeros(1))
	if err != nil {
		return idReply{}, err
	}

	values, err := decodeReply("get_id", reply, protocol.KindU16Pair)
	if err != nil {
		return idReply{}, err
	}

	code, serial := values[0].Pair[0], values[0].Pair[1]
	machineType, ok := capability.MachineTypeFromWire(code)
	if !ok {
		return idReply{}, communicationErr("get_id", fmt.Errorf("unknown machine type code %d", code))
	}

	return idReply{machineType: machineType, serial: serial}, nil
}

// getID is used both by the public GetID and by the initial handshake
// (connect and reconnect), each wrapping it in the same retry policy.
func (s *Session) getID() (idReply, error) {
	var result idReply
	err := s.call("get_id", func() error {
		r, err := s.getIDRaw()
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

// GetID queries the microscope's identity: model and serial number.
func (s *Session) GetID() (capability.MachineType, uint16, error) {
	result, err := s.getID()
	return result.machineType, result.serial, err
}
