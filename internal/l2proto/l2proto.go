// Package l2proto implements the layer-2 framing protocol used between a
// host and an attached device over a byte-oriented link.
//
// Purpose:	Frame and deframe byte streams with the layout
//
//	preamble | header | payload | fcs
//
// where header packs a caller-defined "usr" tag into its high bits and the
// payload length into its low bits, transmitted in network byte order.
//
// The encoder produces a whole frame in one call.  The decoder is fed one
// byte at a time and drives a 4-state automaton (preamble, head, data, fcs),
// emitting an Event on every call.  Decode failures are local
// resynchronization events: the decoder never aborts and is always ready
// for the next byte.
package l2proto

import "errors"

// PreambleByte is the literal synchronization byte repeated PreambleByteCnt
// times at the start of every frame.
const PreambleByte = 0xAA

// ErrParam reports a misuse error: a nil argument, a payload too long for
// the length field, or an output buffer too small to hold the encoded
// frame.  It is only ever returned by Encode;
// Decoder.Feed reports the analogous case as EventParamError so that the
// decode loop never needs a second return value to carry an error.
var ErrParam = errors.New("l2proto: invalid argument")

// FCSFunc computes a frame check sequence of len(fcs) bytes over data and
// writes it into fcs.  It must be pure and deterministic.
type FCSFunc func(data []byte, fcs []byte)

// EndianFunc reverses a field of bytes in place for "to network" (hton) or
// "from network" (ntoh) conversion.  It is its own inverse: calling it twice
// on the same bytes restores the original sequence.  Callers whose host is
// already big-endian should pass a no-op.
type EndianFunc func(buf []byte)

// Descriptor is the immutable configuration of an L2 channel.
type Descriptor struct {
	// FCSCalc computes the trailer over the payload only.
	FCSCalc FCSFunc
	// HTON converts a field from host to network byte order.
	HTON EndianFunc
	// NTOH converts a field from network to host byte order.
	NTOH EndianFunc

	// PreambleByteCnt is the number of leading 0xAA sync bytes. Must be >= 1.
	PreambleByteCnt uint8
	// HeadByteCnt is the total header size in bytes. Must be >= 1.
	HeadByteCnt uint8
	// LenBitCnt is the number of low bits of the header holding the payload
	// length; the remaining high bits of the header's first byte hold Usr.
	// Must be <= HeadByteCnt*8.
	LenBitCnt uint8
	// FCSByteCnt is the trailer size in bytes.
	FCSByteCnt uint8
}

// Packet is a decoded or to-be-encoded frame payload.
type Packet struct {
	// Data references a receive buffer owned by the Decoder (after a
	// successful decode) or caller-owned storage (before encode). It is
	// only valid until the next Feed call.
	Data []byte
	// Usr is the unstructured high-bit application tag.
	Usr uint8
}

// MaxDataLen returns the largest payload length the descriptor's length
// field can represent.
func (d Descriptor) MaxDataLen() int {
	return (1 << d.LenBitCnt) - 1
}

// EncodedLen returns the total wire size of a frame carrying dataLen bytes
// of payload.
func (d Descriptor) EncodedLen(dataLen int) int {
	return int(d.PreambleByteCnt) + int(d.HeadByteCnt) + dataLen + int(d.FCSByteCnt)
}

func bitsToBytes(bits uint8) int {
	return (int(bits) + 7) / 8
}

// Encode writes a whole frame for pkt into out and returns the number of
// bytes written. out must be at least d.EncodedLen(len(pkt.Data)) long.
func Encode(d Descriptor, pkt Packet, out []byte) (int, error) {
	if d.FCSCalc == nil || d.HTON == nil || d.NTOH == nil || out == nil {
		return 0, ErrParam
	}
	dataLen := len(pkt.Data)
	if dataLen >= (1 << d.LenBitCnt) {
		return 0, ErrParam
	}
	needed := d.EncodedLen(dataLen)
	if len(out) < needed {
		return 0, ErrParam
	}

	idx := 0
	for i := 0; i < int(d.PreambleByteCnt); i++ {
		out[idx+i] = PreambleByte
	}
	idx += int(d.PreambleByteCnt)

	head := out[idx : idx+int(d.HeadByteCnt)]
	for i := range head {
		head[i] = 0
	}
	lenByteCnt := bitsToBytes(d.LenBitCnt)
	putLittleEndian(head[:lenByteCnt], uint32(dataLen))
	d.HTON(head)

	usrBitCnt := 8 - d.LenBitCnt%8
	if d.LenBitCnt%8 != 0 {
		head[0] &= byte(1<<(8-usrBitCnt)) - 1
		head[0] |= pkt.Usr << (8 - usrBitCnt)
	}
	idx += int(d.HeadByteCnt)

	copy(out[idx:idx+dataLen], pkt.Data)
	idx += dataLen

	fcs := out[idx : idx+int(d.FCSByteCnt)]
	d.FCSCalc(pkt.Data, fcs)
	d.HTON(fcs)
	idx += int(d.FCSByteCnt)

	return idx, nil
}

func putLittleEndian(dst []byte, v uint32) {
	for i := range dst {
		dst[i] = byte(v)
		v >>= 8
	}
}

func getLittleEndian(src []byte) uint32 {
	var v uint32
	for i := len(src) - 1; i >= 0; i-- {
		v = (v << 8) | uint32(src[i])
	}
	return v
}
