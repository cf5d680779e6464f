package l2proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testDescriptor() Descriptor {
	return Descriptor{
		FCSCalc:         Sum8FCS,
		HTON:            ReverseBytes,
		NTOH:            ReverseBytes,
		PreambleByteCnt: 1,
		HeadByteCnt:     2,
		LenBitCnt:       12,
		FCSByteCnt:      1,
	}
}

func feedAll(t *testing.T, d *Decoder, frame []byte) []Event {
	t.Helper()
	events := make([]Event, len(frame))
	for i, b := range frame {
		ev, _ := d.Feed(b)
		events[i] = ev
	}
	return events
}

// TestE1MinimalFrame matches spec scenario E1: the literal encoded bytes and
// the byte-by-byte event sequence for a 4-byte payload with usr=5.
func TestE1MinimalFrame(t *testing.T) {
	desc := testDescriptor()
	pkt := Packet{Data: []byte{0x01, 0x02, 0x03, 0x04}, Usr: 5}

	out := make([]byte, 16)
	n, err := Encode(desc, pkt, out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0x50, 0x04, 0x01, 0x02, 0x03, 0x04, 0x0A}, out[:n])

	dec := NewDecoder(desc, make([]byte, 64))
	events := feedAll(t, dec, out[:n])
	want := []Event{
		EventNone, EventNone, EventNone, EventNone,
		EventNone, EventNone, EventNone, EventEncodedPkt,
	}
	assert.Equal(t, want, events)
}

// TestE2SyncResync matches spec scenario E2: a garbage byte before a valid
// frame produces exactly one drop_sync_error before the frame decodes.
func TestE2SyncResync(t *testing.T) {
	desc := testDescriptor()
	frame := []byte{0x55, 0xAA, 0x50, 0x04, 0x01, 0x02, 0x03, 0x04, 0x0A}

	dec := NewDecoder(desc, make([]byte, 64))
	events := feedAll(t, dec, frame)
	assert.Equal(t, EventDropSyncError, events[0])
	assert.Equal(t, EventEncodedPkt, events[len(events)-1])
	for _, ev := range events[1 : len(events)-1] {
		assert.Equal(t, EventNone, ev)
	}
}

// TestE3FCSError matches spec scenario E3: flipping the trailing FCS byte
// yields drop_fcs_error and returns the decoder to the preamble state.
func TestE3FCSError(t *testing.T) {
	desc := testDescriptor()
	frame := []byte{0xAA, 0x50, 0x04, 0x01, 0x02, 0x03, 0x04, 0x0B}

	dec := NewDecoder(desc, make([]byte, 64))
	events := feedAll(t, dec, frame)
	assert.Equal(t, EventDropFCSError, events[len(events)-1])
	assert.Equal(t, statusPreamble, dec.status)
}

func TestEncodeLength(t *testing.T) {
	desc := testDescriptor()
	pkt := Packet{Data: []byte{1, 2, 3, 4}, Usr: 5}
	out := make([]byte, 32)
	n, err := Encode(desc, pkt, out)
	require.NoError(t, err)
	assert.Equal(t, desc.EncodedLen(len(pkt.Data)), n)
}

func TestEncodeNoOverflow(t *testing.T) {
	desc := testDescriptor()
	pkt := Packet{Data: []byte{1, 2, 3, 4}, Usr: 5}

	big := make([]byte, 100)
	for i := range big {
		big[i] = 0xFF
	}
	n, err := Encode(desc, pkt, big[1:len(big)-1])
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), big[0])
	assert.Equal(t, byte(0xFF), big[n+1])
}

func TestDecodeNoOverflow(t *testing.T) {
	desc := testDescriptor()
	pkt := Packet{Data: []byte{1, 2, 3, 4}, Usr: 5}
	out := make([]byte, 32)
	n, err := Encode(desc, pkt, out)
	require.NoError(t, err)

	rxLen := int(desc.HeadByteCnt) + len(pkt.Data) + int(desc.FCSByteCnt)
	sentinel := make([]byte, rxLen+2)
	for i := range sentinel {
		sentinel[i] = 0xEE
	}
	rxBuf := sentinel[1 : 1+rxLen]

	dec := NewDecoder(desc, rxBuf)
	var lastEvent Event
	for _, b := range out[:n] {
		lastEvent, _ = dec.Feed(b)
	}
	assert.Equal(t, EventEncodedPkt, lastEvent)
	assert.Equal(t, byte(0xEE), sentinel[0])
	assert.Equal(t, byte(0xEE), sentinel[len(sentinel)-1])
}

// TestLengthFieldSaturation matches invariant 7 from spec.md: a header
// declaring dataLen >= (1<<LenBitCnt) produces drop_too_long and returns
// the decoder to the preamble state. With a 2-byte header and a 4-bit
// length field, the high four bits of the last header byte lie above the
// length field and outside usr, so the header 0x00 0xFF declares 255 >= 16.
func TestLengthFieldSaturation(t *testing.T) {
	desc := testDescriptor()
	desc.LenBitCnt = 4
	dec := NewDecoder(desc, make([]byte, 64))

	ev, _ := dec.Feed(PreambleByte)
	assert.Equal(t, EventNone, ev)
	ev, _ = dec.Feed(0x00)
	assert.Equal(t, EventNone, ev)
	ev, _ = dec.Feed(0xFF)
	assert.Equal(t, EventDropTooLong, ev)
	assert.Equal(t, statusPreamble, dec.status)
	assert.Equal(t, 0, dec.nextOffset)
}

func TestFCSBitFlipDetected(t *testing.T) {
	desc := testDescriptor()
	pkt := Packet{Data: []byte{9, 8, 7}, Usr: 1}
	out := make([]byte, 32)
	n, err := Encode(desc, pkt, out)
	require.NoError(t, err)
	out[n-1] ^= 0x01

	dec := NewDecoder(desc, make([]byte, 64))
	events := feedAll(t, dec, out[:n])
	assert.Equal(t, EventDropFCSError, events[len(events)-1])
}

// TestRoundTripProperty is invariant 1 from spec.md: for any descriptor and
// payload satisfying preconditions, encode then decode byte-by-byte yields
// exactly one encoded_packet event equal to the original payload.
func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		desc := testDescriptor()
		desc.LenBitCnt = uint8(rapid.IntRange(4, 15).Draw(t, "lenBits"))
		maxLen := desc.MaxDataLen()
		if maxLen > 256 {
			maxLen = 256
		}
		dataLen := rapid.IntRange(0, maxLen).Draw(t, "dataLen")
		data := rapid.SliceOfN(rapid.Byte(), dataLen, dataLen).Draw(t, "data")
		usrBitCnt := 8 - desc.LenBitCnt%8
		var usr uint8
		if desc.LenBitCnt%8 != 0 {
			usr = uint8(rapid.IntRange(0, (1<<usrBitCnt)-1).Draw(t, "usr"))
		}

		pkt := Packet{Data: data, Usr: usr}
		out := make([]byte, desc.EncodedLen(dataLen))
		n, err := Encode(desc, pkt, out)
		require.NoError(t, err)

		dec := NewDecoder(desc, make([]byte, desc.EncodedLen(maxLen)))
		var gotEvent Event
		var gotPkt Packet
		count := 0
		for _, b := range out[:n] {
			ev, p := dec.Feed(b)
			if ev == EventEncodedPkt {
				gotEvent, gotPkt = ev, p
				count++
			}
		}
		assert.Equal(t, 1, count)
		assert.Equal(t, EventEncodedPkt, gotEvent)
		assert.Equal(t, usr, gotPkt.Usr)
		assert.Equal(t, data, gotPkt.Data)
	})
}
