package pms

import "encoding/binary"

// Encode renders a measurement as a wire frame. Used by the bench
// emulator and by tests; a real sensor produces these on its own.
func Encode(m Measurement) []byte {
	frame := make([]byte, 2+bodyLen)
	frame[0] = sync0
	frame[1] = sync1
	binary.BigEndian.PutUint16(frame[2:], payloadLen)

	var words [13]uint16
	// Standard-particle words mirror the atmospheric ones closely on
	// real hardware; the emulator just repeats them.
	words[0], words[1], words[2] = m.PM1, m.PM25, m.PM10
	words[3], words[4], words[5] = m.PM1, m.PM25, m.PM10
	for i, w := range words {
		binary.BigEndian.PutUint16(frame[4+2*i:], w)
	}

	sum := uint16(0)
	for _, v := range frame[:len(frame)-2] {
		sum += uint16(v)
	}
	binary.BigEndian.PutUint16(frame[len(frame)-2:], sum)
	return frame
}
