package so2

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"periph.io/x/periph/conn/i2c/i2ctest"

	"github.com/airshed/airshed/internal/sensors"
)

func frameOp(r []byte) i2ctest.IO {
	return i2ctest.IO{Addr: DefaultAddr, W: []byte{frameReg}, R: r}
}

func newTestSensor(t *testing.T, ops []i2ctest.IO) (*Sensor, *fakeClock) {
	t.Helper()
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	s := NewFromBus(bus, DefaultAddr, time.Second, zap.NewNop().Sugar())
	clock := &fakeClock{t: time.Unix(1000, 0)}
	s.now = clock.Now
	return s, clock
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestReadDecodesFrame(t *testing.T) {
	tests := []struct {
		name    string
		frame   []byte
		wantPPM float64
		wantRaw uint16
	}{
		{"scale 0.1", []byte{0xFF, 0x86, 0x01, 0x2C, 0x00, 0x01, 0x00, 0x00}, 30.0, 300},
		{"scale 1.0", []byte{0xFF, 0x86, 0x00, 0x2A, 0x00, 0x00, 0x00, 0x00}, 42.0, 42},
		{"scale 0.01", []byte{0xFF, 0x86, 0x00, 0x64, 0x00, 0x02, 0x00, 0x00}, 1.0, 100},
		{"unknown scale defaults to 1.0", []byte{0xFF, 0x86, 0x00, 0x05, 0x00, 0x07, 0x00, 0x00}, 5.0, 5},
		{"mode-ack command accepted", []byte{0xFF, 0x78, 0x00, 0x05, 0x00, 0x00, 0x00, 0x00}, 5.0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSensor(t, []i2ctest.IO{frameOp(tt.frame)})
			m, status := s.Read()
			if !status.OK() {
				t.Fatalf("status = %v, want ok", status)
			}
			if m.PPM != tt.wantPPM {
				t.Errorf("PPM = %v, want %v", m.PPM, tt.wantPPM)
			}
			if m.Raw != tt.wantRaw {
				t.Errorf("Raw = %v, want %v", m.Raw, tt.wantRaw)
			}
			if m.Byte0 != tt.frame[2] || m.Byte1 != tt.frame[3] {
				t.Errorf("raw bytes = %02x %02x, want %02x %02x", m.Byte0, m.Byte1, tt.frame[2], tt.frame[3])
			}
		})
	}
}

func TestReadBadFrames(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		want  sensors.Status
	}{
		{"missing start marker", []byte{0x00, 0x86, 0x01, 0x2C, 0x00, 0x01, 0x00, 0x00}, sensors.StatusBadFrame},
		{"unknown command code", []byte{0xFF, 0x99, 0x01, 0x2C, 0x00, 0x01, 0x00, 0x00}, sensors.StatusBadFrame},
		{"all zero block", []byte{0, 0, 0, 0, 0, 0, 0, 0}, sensors.StatusNoFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSensor(t, []i2ctest.IO{frameOp(tt.frame)})
			if _, status := s.Read(); status != tt.want {
				t.Errorf("status = %v, want %v", status, tt.want)
			}
		})
	}
}

func TestReadTransportError(t *testing.T) {
	// Playback with no ops and DontPanic returns an error from Tx
	s, _ := newTestSensor(t, nil)
	if _, status := s.Read(); status != sensors.StatusTransportError {
		t.Errorf("status = %v, want %v", status, sensors.StatusTransportError)
	}
}

func TestReadRateLimited(t *testing.T) {
	good := []byte{0xFF, 0x86, 0x01, 0x2C, 0x00, 0x01, 0x00, 0x00}
	s, clock := newTestSensor(t, []i2ctest.IO{frameOp(good), frameOp(good)})

	if _, status := s.Read(); !status.OK() {
		t.Fatalf("first read: status = %v, want ok", status)
	}
	first := s.lastAttempt

	// Second call inside the interval is skipped and must not advance
	// the limiter timestamp
	clock.Advance(300 * time.Millisecond)
	if _, status := s.Read(); status != sensors.StatusRateLimited {
		t.Fatalf("second read: status = %v, want %v", status, sensors.StatusRateLimited)
	}
	if !s.lastAttempt.Equal(first) {
		t.Error("rate-limited read advanced the limiter timestamp")
	}

	// Once the interval elapses, reads proceed again
	clock.Advance(time.Second)
	if _, status := s.Read(); !status.OK() {
		t.Errorf("third read: status = %v, want ok", status)
	}
}
