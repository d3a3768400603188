// Package so2 reads a DFRobot Gravity calibrated SO2 sensor over I2C.
//
// The sensor exposes its latest frame as an 8-byte block at register
// 0x00: a 0xFF start marker, a command code (0x86 for a gas reading,
// 0x78 for the mode-switch echo some firmware revisions emit), the
// big-endian raw concentration in bytes 2-3, and a decimal-scale
// selector in byte 5. Reads are deliberately conservative: one block
// read per call, no command frames, no retries, and a minimum interval
// between attempts so the bus is never hammered.
package so2

import (
	"fmt"
	"time"

	"github.com/airshed/airshed/internal/sensors"
	"go.uber.org/zap"
	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
)

const (
	// DefaultAddr is the factory I2C address of the sensor
	DefaultAddr = 0x74

	frameReg   = 0x00
	frameLen   = 8
	startByte  = 0xFF
	cmdGasRead = 0x86
	cmdModeAck = 0x78
)

// Measurement holds one decoded gas frame. Byte0 and Byte1 are the raw
// high and low concentration bytes, recorded alongside the scaled value
// for field debugging.
type Measurement struct {
	PPM   float64
	Raw   uint16
	Byte0 uint8
	Byte1 uint8
}

// Sensor reads the gas sensor with a minimum interval between attempts.
type Sensor struct {
	dev         i2c.Dev
	bus         i2c.BusCloser
	minInterval time.Duration
	lastAttempt time.Time
	now         func() time.Time
	logger      *zap.SugaredLogger
}

// New opens the named I2C bus (empty for the first available) and
// returns a Sensor at the given address. host.Init must have been
// called first.
func New(busName string, addr uint16, minInterval time.Duration, logger *zap.SugaredLogger) (*Sensor, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("opening I2C bus %q: %w", busName, err)
	}
	s := NewFromBus(bus, addr, minInterval, logger)
	s.bus = bus
	return s, nil
}

// NewFromBus returns a Sensor on an already-open bus. The caller
// retains ownership of the bus.
func NewFromBus(bus i2c.Bus, addr uint16, minInterval time.Duration, logger *zap.SugaredLogger) *Sensor {
	return &Sensor{
		dev:         i2c.Dev{Bus: bus, Addr: addr},
		minInterval: minInterval,
		now:         time.Now,
		logger:      logger.Named("so2"),
	}
}

// Close releases the bus if this Sensor opened it
func (s *Sensor) Close() error {
	if s.bus == nil {
		return nil
	}
	return s.bus.Close()
}

// Read performs at most one rate-limited block read and decodes it. It
// never returns an error; all failures are reported through the status.
func (s *Sensor) Read() (Measurement, sensors.Status) {
	now := s.now()
	if !s.lastAttempt.IsZero() && now.Sub(s.lastAttempt) < s.minInterval {
		// Intentional skip; the limiter timestamp is not advanced so
		// the next permitted attempt time stays fixed.
		return Measurement{}, sensors.StatusRateLimited
	}
	s.lastAttempt = now

	var frame [frameLen]byte
	if err := s.dev.Tx([]byte{frameReg}, frame[:]); err != nil {
		s.logger.Debugw("block read failed", "err", err)
		return Measurement{}, sensors.StatusTransportError
	}

	return decodeFrame(frame)
}

func decodeFrame(frame [frameLen]byte) (Measurement, sensors.Status) {
	empty := true
	for _, b := range frame {
		if b != 0 {
			empty = false
			break
		}
	}
	if empty {
		// The bus transfer succeeded but the device had nothing staged
		return Measurement{}, sensors.StatusNoFrame
	}

	if frame[0] != startByte {
		return Measurement{}, sensors.StatusBadFrame
	}
	if frame[1] != cmdGasRead && frame[1] != cmdModeAck {
		return Measurement{}, sensors.StatusBadFrame
	}

	b0, b1 := frame[2], frame[3]
	raw := uint16(b0)<<8 | uint16(b1)

	scale := 1.0
	switch frame[5] {
	case 1:
		scale = 0.1
	case 2:
		scale = 0.01
	}

	return Measurement{
		PPM:   float64(raw) * scale,
		Raw:   raw,
		Byte0: b0,
		Byte1: b1,
	}, sensors.StatusOK
}
