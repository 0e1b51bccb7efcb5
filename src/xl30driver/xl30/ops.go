package xl30

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dividat/xl30-driver/src/xl30driver/protocol"
	"github.com/dividat/xl30-driver/src/xl30driver/transport"
)

var errTimeoutNoReply = errors.New("timeout waiting for reply")

// withTimeout temporarily overrides the port's read timeout for the
// duration of fn, setting it back to transport.DefaultReadTimeout on
// return (the value the port holds outside such overrides). Used by the
// handful of operations (auto_focus, stage_home, axis moves) that need
// longer than the 60s default.
func (s *Session) withTimeout(d time.Duration, fn func() error) error {
	if err := s.port.SetReadTimeout(d); err != nil {
		return communicationErr("set_timeout", err)
	}
	defer s.port.SetReadTimeout(transport.DefaultReadTimeout)
	return fn()
}

// transact writes one request frame and reads back one reply frame. A
// timed-out read (no bytes at all) and a truncated/corrupt frame both
// surface as KindCommunication so the reliability wrapper retries them the
// same way.
func (s *Session) transact(op string, opcode byte, payload []byte) (*protocol.Reply, error) {
	if !s.connected() {
		return nil, notConnectedErr(op)
	}

	frame, err := protocol.Encode(opcode, payload)
	if err != nil {
		return nil, communicationErr(op, err)
	}

	s.log().WithFields(logrus.Fields{"op": op, "opcode": opcode, "frame": frame}).Debug("tx")
	if _, err := s.port.Write(frame); err != nil {
		return nil, communicationErr(op, err)
	}

	reply, err := protocol.DecodeFrame(s.port)
	if err != nil {
		return nil, communicationErr(op, err)
	}
	if reply == nil {
		return nil, communicationErr(op, errTimeoutNoReply)
	}

	s.log().WithFields(logrus.Fields{"op": op, "reply": reply}).Debug("rx")

	if reply.Error {
		return reply, deviceErrorErr(op, reply.ErrorCode)
	}

	return reply, nil
}

// decodeReply is a small convenience over protocol.Decode that maps a
// format failure to the same KindCommunication failure a wire-level fault
// would produce.
func decodeReply(op string, reply *protocol.Reply, kinds ...protocol.Kind) ([]protocol.Value, error) {
	values, err := protocol.Decode(reply.Payload, kinds...)
	if err != nil {
		return nil, communicationErr(op, err)
	}
	return values, nil
}
