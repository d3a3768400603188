// Package bme reads a Bosch BME688 climate sensor over I2C using the
// periph bmxx80 driver.
package bme

import (
	"fmt"

	"github.com/airshed/airshed/internal/sensors"
	"go.uber.org/zap"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/devices/bmxx80"
)

// DefaultAddr is the usual I2C address of the BME688 (0x77 on some
// breakout boards).
const DefaultAddr = 0x76

// Measurement holds one climate sample. VOCOhm is nil when the gas
// resistance channel is unavailable; the bmxx80 driver does not expose
// the BME688 gas ADC, so today it always is.
type Measurement struct {
	TempC       float64
	RHPct       float64
	PressureHPa float64
	VOCOhm      *float64
}

type envSenser interface {
	Sense(env *physic.Env) error
}

// Sensor reads the climate sensor
type Sensor struct {
	dev    envSenser
	bus    interface{ Close() error }
	logger *zap.SugaredLogger
}

// New opens the named I2C bus (empty for the first available) and
// initializes the sensor. host.Init must have been called first.
func New(busName string, addr uint16, logger *zap.SugaredLogger) (*Sensor, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("opening I2C bus %q: %w", busName, err)
	}

	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("initializing BME at 0x%02x: %w", addr, err)
	}

	return &Sensor{
		dev:    dev,
		bus:    bus,
		logger: logger.Named("bme"),
	}, nil
}

// Close releases the bus
func (s *Sensor) Close() error {
	if s.bus == nil {
		return nil
	}
	return s.bus.Close()
}

// Read takes one climate sample. It never returns an error; all
// failures are reported through the status.
func (s *Sensor) Read() (Measurement, sensors.Status) {
	var env physic.Env
	if err := s.dev.Sense(&env); err != nil {
		s.logger.Debugw("sense failed", "err", err)
		return Measurement{}, sensors.StatusTransportError
	}

	return Measurement{
		TempC:       env.Temperature.Celsius(),
		RHPct:       float64(env.Humidity) / float64(physic.PercentRH),
		PressureHPa: float64(env.Pressure) / float64(100*physic.Pascal),
	}, sensors.StatusOK
}
