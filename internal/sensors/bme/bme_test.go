package bme

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"periph.io/x/periph/conn/physic"

	"github.com/airshed/airshed/internal/sensors"
)

type fakeDev struct {
	env physic.Env
	err error
}

func (f *fakeDev) Sense(env *physic.Env) error {
	if f.err != nil {
		return f.err
	}
	*env = f.env
	return nil
}

func TestReadConvertsUnits(t *testing.T) {
	dev := &fakeDev{env: physic.Env{
		Temperature: physic.ZeroCelsius + 21500*physic.MilliKelvin,
		Pressure:    101325 * physic.Pascal,
		Humidity:    45 * physic.PercentRH,
	}}
	s := &Sensor{dev: dev, logger: zap.NewNop().Sugar()}

	m, status := s.Read()
	if !status.OK() {
		t.Fatalf("status = %v, want ok", status)
	}
	if m.TempC < 21.49 || m.TempC > 21.51 {
		t.Errorf("TempC = %v, want 21.5", m.TempC)
	}
	if m.PressureHPa < 1013.2 || m.PressureHPa > 1013.3 {
		t.Errorf("PressureHPa = %v, want 1013.25", m.PressureHPa)
	}
	if m.RHPct < 44.99 || m.RHPct > 45.01 {
		t.Errorf("RHPct = %v, want 45", m.RHPct)
	}
	if m.VOCOhm != nil {
		t.Error("VOCOhm should be absent")
	}
}

func TestReadTransportError(t *testing.T) {
	s := &Sensor{dev: &fakeDev{err: errors.New("i2c: bus error")}, logger: zap.NewNop().Sugar()}
	if _, status := s.Read(); status != sensors.StatusTransportError {
		t.Errorf("status = %v, want %v", status, sensors.StatusTransportError)
	}
}
