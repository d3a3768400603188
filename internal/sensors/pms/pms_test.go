package pms

import (
	"bytes"
	"testing"

	"github.com/airshed/airshed/internal/sensors"
)

func TestDecodeValidFrame(t *testing.T) {
	tests := []struct {
		name string
		m    Measurement
	}{
		{"typical", Measurement{PM1: 8, PM25: 12, PM10: 15}},
		{"zero", Measurement{}},
		{"max", Measurement{PM1: 65535, PM25: 65535, PM10: 65535}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, status := Decode(bytes.NewReader(Encode(tt.m)))
			if !status.OK() {
				t.Fatalf("status = %v, want ok", status)
			}
			if got != tt.m {
				t.Errorf("got %+v, want %+v", got, tt.m)
			}
		})
	}
}

func TestDecodeSkipsGarbageBeforeSync(t *testing.T) {
	frame := Encode(Measurement{PM1: 3, PM25: 7, PM10: 9})
	stream := append([]byte{0x00, 0x42, 0x00, 0x13, 0x37}, frame...)

	got, status := Decode(bytes.NewReader(stream))
	if !status.OK() {
		t.Fatalf("status = %v, want ok", status)
	}
	if got.PM25 != 7 {
		t.Errorf("PM25 = %d, want 7", got.PM25)
	}
}

func TestDecodeChecksumMismatch(t *testing.T) {
	frame := Encode(Measurement{PM1: 8, PM25: 12, PM10: 15})

	// Corrupt each checksum byte in turn
	for _, i := range []int{len(frame) - 2, len(frame) - 1} {
		corrupted := append([]byte(nil), frame...)
		corrupted[i] ^= 0x01
		if _, status := Decode(bytes.NewReader(corrupted)); status != sensors.StatusChecksumMismatch {
			t.Errorf("corrupt byte %d: status = %v, want %v", i, status, sensors.StatusChecksumMismatch)
		}
	}
}

func TestDecodeDataCorruption(t *testing.T) {
	frame := Encode(Measurement{PM1: 8, PM25: 12, PM10: 15})
	frame[10] ^= 0x01 // flip one payload bit, checksum no longer matches

	if _, status := Decode(bytes.NewReader(frame)); status != sensors.StatusChecksumMismatch {
		t.Errorf("status = %v, want %v", status, sensors.StatusChecksumMismatch)
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	frame := Encode(Measurement{PM25: 12})
	frame[2], frame[3] = 0x00, 0x1A // length 26 instead of 28

	if _, status := Decode(bytes.NewReader(frame)); status != sensors.StatusLengthMismatch {
		t.Errorf("status = %v, want %v", status, sensors.StatusLengthMismatch)
	}
}

func TestDecodeShortRead(t *testing.T) {
	frame := Encode(Measurement{PM25: 12})

	// Truncated mid-body: sync was found but the body never arrived
	if _, status := Decode(bytes.NewReader(frame[:10])); status != sensors.StatusTransportError {
		t.Errorf("truncated body: status = %v, want %v", status, sensors.StatusTransportError)
	}

	// Empty stream: no frame at all
	if _, status := Decode(bytes.NewReader(nil)); status != sensors.StatusNoFrame {
		t.Errorf("empty stream: status = %v, want %v", status, sensors.StatusNoFrame)
	}
}

func TestDecodeNeverSyncs(t *testing.T) {
	junk := bytes.Repeat([]byte{0x00, 0x11}, maxSyncScan)
	if _, status := Decode(bytes.NewReader(junk)); status != sensors.StatusNoFrame {
		t.Errorf("status = %v, want %v", status, sensors.StatusNoFrame)
	}
}

func TestReadWithoutOpen(t *testing.T) {
	r := &Reader{}
	if _, status := r.Read(); status != sensors.StatusTransportError {
		t.Errorf("status = %v, want %v", status, sensors.StatusTransportError)
	}
}
