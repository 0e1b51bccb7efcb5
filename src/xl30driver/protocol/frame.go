// Package protocol implements the microscope's framed binary wire
// protocol: checksum-verified frames carrying fixed-size payload slots.
package protocol

import (
	"errors"
	"fmt"
)

const (
	// Sync is the first byte of every frame, request or reply.
	Sync byte = 0x05

	// MaxPayload is the largest payload a single frame can carry, so that
	// LEN (which includes the 5 bytes of framing overhead) still fits a
	// single byte.
	MaxPayload = 250

	statusErrorBit    byte = 0x80
	statusTransportMask byte = 0x3F
)

// ErrCommunication marks a wire-level fault: bad sync byte, bad length,
// bad checksum, non-zero transport status bits, a truncated frame, or a
// malformed error reply. Every codec failure this package reports wraps it
// so callers can test with errors.Is(err, protocol.ErrCommunication); an
// error returned by the FrameReader itself is passed through unwrapped.
var ErrCommunication = errors.New("communication error")

// Reply is a decoded incoming frame.
type Reply struct {
	Op        byte
	Status    byte
	Error     bool
	ErrorCode uint32
	Payload   []byte
}

// Encode serializes op and payload into a complete frame ready to write to
// the transport: [SYNC, LEN, OP, STATUS=0, PAYLOAD..., CKSUM].
func Encode(op byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds %d-byte limit", ErrCommunication, len(payload), MaxPayload)
	}

	length := len(payload) + 5
	frame := make([]byte, 0, length)
	frame = append(frame, Sync, byte(length), op, 0x00)
	frame = append(frame, payload...)

	var checksum byte
	for _, b := range frame {
		checksum += b
	}
	frame = append(frame, checksum)

	return frame, nil
}

// FrameReader is the minimal read surface DecodeFrame needs: read exactly n
// bytes, returning fewer on timeout. transport.Port satisfies this.
type FrameReader interface {
	ReadExact(n int) ([]byte, error)
}

// DecodeFrame reads one reply frame from r. A (nil, nil) result is a soft
// miss: the read timed out before any bytes arrived, which is not itself an
// error (the caller's retry policy decides what to do with silence).
func DecodeFrame(r FrameReader) (*Reply, error) {
	header, err := r.ReadExact(2)
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, nil
	}
	if len(header) != 2 {
		return nil, fmt.Errorf("%w: incomplete frame header (%d of 2 bytes)", ErrCommunication, len(header))
	}

	if header[0] != Sync {
		return nil, fmt.Errorf("%w: expected sync byte 0x%02X, got 0x%02X", ErrCommunication, Sync, header[0])
	}

	length := int(header[1])
	remaining := length - 2
	if remaining < 0 {
		return nil, fmt.Errorf("%w: frame length %d shorter than header", ErrCommunication, length)
	}

	rest, err := r.ReadExact(remaining)
	if err != nil {
		return nil, err
	}
	if len(rest) != remaining {
		return nil, fmt.Errorf("%w: truncated frame (%d of %d bytes)", ErrCommunication, len(rest), remaining)
	}

	full := append(header, rest...)

	var checksum byte
	for _, b := range full[:len(full)-1] {
		checksum += b
	}
	if checksum != full[len(full)-1] {
		return nil, fmt.Errorf("%w: checksum mismatch (computed 0x%02X, got 0x%02X)", ErrCommunication, checksum, full[len(full)-1])
	}

	status := full[3]
	if status&statusTransportMask != 0 {
		return nil, fmt.Errorf("%w: transport status bits set (0x%02X)", ErrCommunication, status)
	}

	reply := &Reply{
		Op:     full[2],
		Status: status,
		Error:  status&statusErrorBit != 0,
	}
	if length > 5 {
		reply.Payload = full[4 : len(full)-1]
	}

	if reply.Error {
		if len(reply.Payload) < 4 {
			return nil, fmt.Errorf("%w: error reply carries %d payload bytes, need 4 for error code", ErrCommunication, len(reply.Payload))
		}
		reply.ErrorCode = decodeU32(reply.Payload[:4])
	}

	return reply, nil
}

func decodeU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
