package protocol

import (
	"fmt"
	"math"
)

const slotSize = 4

// PackFloats encodes each value as a little-endian IEEE-754 32-bit float,
// one per 4-byte slot, in order.
func PackFloats(values ...float32) []byte {
	out := make([]byte, 0, len(values)*slotSize)
	for _, v := range values {
		bits := math.Float32bits(v)
		out = append(out, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	return out
}

// PackBytes lays out bs as 4-byte slots, zero-padding the final slot if bs
// is not a multiple of 4 long.
func PackBytes(bs []byte) []byte {
	padded := len(bs)
	if rem := padded % slotSize; rem != 0 {
		padded += slotSize - rem
	}
	out := make([]byte, padded)
	copy(out, bs)
	return out
}

// PadTo4 zero-pads b up to the next multiple of 4 bytes, used for the
// ASCIIZ filename/text payloads the device expects slot-aligned.
func PadTo4(b []byte) []byte {
	return PackBytes(b)
}

// FillZeros returns slots*4 zero bytes, used for requests that carry no
// argument data but must still occupy reserved slots.
func FillZeros(slots int) []byte {
	return make([]byte, slots*slotSize)
}

// Kind identifies how to decode one payload slot.
type Kind int

const (
	// KindBlob decodes a slot as an opaque 4-byte value.
	KindBlob Kind = iota
	// KindU16Pair decodes a slot as two little-endian u16 values.
	KindU16Pair
	// KindF32 decodes a slot as one little-endian IEEE-754 float.
	KindF32
)

// Value is one decoded slot. Exactly one of the fields is meaningful,
// selected by Kind.
type Value struct {
	Kind  Kind
	Blob  [4]byte
	Pair  [2]uint16
	Float float32
}

// Decode consumes one 4-byte slot per entry in kinds, in order. It fails
// ErrCommunication if payload is shorter than len(kinds)*4 bytes.
func Decode(payload []byte, kinds ...Kind) ([]Value, error) {
	need := len(kinds) * slotSize
	if len(payload) < need {
		return nil, fmt.Errorf("%w: need %d payload bytes for %d slots, got %d", ErrCommunication, need, len(kinds), len(payload))
	}

	values := make([]Value, len(kinds))
	for i, k := range kinds {
		slot := payload[i*slotSize : (i+1)*slotSize]
		v := Value{Kind: k}
		switch k {
		case KindBlob:
			copy(v.Blob[:], slot)
		case KindU16Pair:
			v.Pair[0] = uint16(slot[0]) | uint16(slot[1])<<8
			v.Pair[1] = uint16(slot[2]) | uint16(slot[3])<<8
		case KindF32:
			bits := uint32(slot[0]) | uint32(slot[1])<<8 | uint32(slot[2])<<16 | uint32(slot[3])<<24
			v.Float = math.Float32frombits(bits)
		default:
			return nil, fmt.Errorf("%w: unknown payload slot kind %d", ErrCommunication, k)
		}
		values[i] = v
	}
	return values, nil
}
