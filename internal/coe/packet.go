package coe

import (
	"encoding/binary"
	"fmt"
)

// CoE v2.0 frame layout, one payload per frame:
//
//	byte 0      version major (2)
//	byte 1      version minor (0)
//	byte 2      payload count (1)
//	byte 3      reserved (0)
//	byte 4      virtual node
//	byte 5      PDO index, zero-based
//	byte 6      payload format (0 = digital)
//	byte 7      unit (43 = on/off)
//	bytes 8-11  value, uint32 little-endian (1 = on, 0 = off)
const (
	versionMajor = 2
	versionMinor = 0

	// FrameSize is the serialized size of a single-payload frame.
	FrameSize = 12

	// FormatDigital marks a digital (boolean) payload.
	FormatDigital = 0

	// UnitOnOff is the CMI unit index for on/off signals.
	UnitOnOff = 43
)

// Packet is one digital CoE payload addressed to a CMI output.
type Packet struct {
	Node uint8
	PDO  uint8 // zero-based
	On   bool
}

// Encode serializes the packet into a single-payload CoE v2.0 frame.
func (p Packet) Encode() [FrameSize]byte {
	var frame [FrameSize]byte
	frame[0] = versionMajor
	frame[1] = versionMinor
	frame[2] = 1 // payload count
	frame[3] = 0
	frame[4] = p.Node
	frame[5] = p.PDO
	frame[6] = FormatDigital
	frame[7] = UnitOnOff
	var value uint32
	if p.On {
		value = 1
	}
	binary.LittleEndian.PutUint32(frame[8:12], value)
	return frame
}

// Marshal returns the encoded frame as a slice ready for WriteToUDP.
func (p Packet) Marshal() []byte {
	frame := p.Encode()
	return frame[:]
}

// Decode parses a single-payload frame back into a Packet. It rejects
// frames of the wrong size, version, payload count or format.
func Decode(frame []byte) (Packet, error) {
	if len(frame) != FrameSize {
		return Packet{}, fmt.Errorf("frame is %d bytes, want %d", len(frame), FrameSize)
	}
	if frame[0] != versionMajor || frame[1] != versionMinor {
		return Packet{}, fmt.Errorf("unsupported CoE version %d.%d", frame[0], frame[1])
	}
	if frame[2] != 1 {
		return Packet{}, fmt.Errorf("frame carries %d payloads, want 1", frame[2])
	}
	if frame[6] != FormatDigital {
		return Packet{}, fmt.Errorf("payload format %d is not digital", frame[6])
	}
	value := binary.LittleEndian.Uint32(frame[8:12])
	if value > 1 {
		return Packet{}, fmt.Errorf("digital value %d is not 0 or 1", value)
	}
	return Packet{
		Node: frame[4],
		PDO:  frame[5],
		On:   value == 1,
	}, nil
}
