// Package collector runs the sampling loop: once per tick it polls each
// sensor sequentially, cross-validates the particulate pair, and emits
// one fully-populated reading to the distributor.
package collector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/airshed/airshed/internal/pairwise"
	"github.com/airshed/airshed/internal/sensors"
	"github.com/airshed/airshed/internal/sensors/bme"
	"github.com/airshed/airshed/internal/sensors/pms"
	"github.com/airshed/airshed/internal/sensors/so2"
	"github.com/airshed/airshed/internal/types"
	"github.com/airshed/airshed/pkg/aqi"
)

// ParticulateSource is a PMS5003 sensor as seen by the collector
type ParticulateSource interface {
	Name() string
	Read() (pms.Measurement, sensors.Status)
	Close() error
}

// GasSource is an SO2 sensor as seen by the collector
type GasSource interface {
	Read() (so2.Measurement, sensors.Status)
	Close() error
}

// ClimateSource is a BME climate sensor as seen by the collector
type ClimateSource interface {
	Read() (bme.Measurement, sensors.Status)
	Close() error
}

// Collector owns the tick loop. Sources left nil are recorded as
// disabled on every tick rather than skipped, so the record shape never
// changes with configuration.
type Collector struct {
	nodeID   string
	runID    string
	interval time.Duration

	pms1    ParticulateSource
	pms2    ParticulateSource
	gas     GasSource
	climate ClimateSource

	engine      *pairwise.Engine
	distributor chan<- types.Reading
	logger      *zap.SugaredLogger
	now         func() time.Time
}

// New creates a collector. Any source may be nil (disabled).
func New(nodeID string, interval time.Duration, pms1, pms2 ParticulateSource, gas GasSource, climate ClimateSource, distributor chan<- types.Reading, logger *zap.SugaredLogger) *Collector {
	return &Collector{
		nodeID:      nodeID,
		runID:       uuid.New().String(),
		interval:    interval,
		pms1:        pms1,
		pms2:        pms2,
		gas:         gas,
		climate:     climate,
		engine:      pairwise.NewEngine(logger),
		distributor: distributor,
		logger:      logger.Named("collector"),
		now:         time.Now,
	}
}

// Run executes the tick loop until the context is cancelled, then
// closes the sensor transports. Sensors are polled sequentially within
// a tick; cancellation is honored between ticks.
func (c *Collector) Run(ctx context.Context) {
	c.logger.Infow("collector starting", "node_id", c.nodeID, "run_id", c.runID, "tick", c.interval)
	defer c.closeSources()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		r := c.CollectOnce()
		select {
		case c.distributor <- r:
		case <-ctx.Done():
			c.logger.Info("collector stopping")
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			c.logger.Info("collector stopping")
			return
		}
	}
}

// CollectOnce performs a single tick and returns the assembled reading.
// Every field is populated; absence is a nil pointer, never a sentinel.
func (c *Collector) CollectOnce() types.Reading {
	r := types.Reading{
		Timestamp: c.now().UTC(),
		NodeID:    c.nodeID,
	}

	v1, ok1 := c.readParticulate(c.pms1, &r.PM1PMS1, &r.PM25PMS1, &r.PM10PMS1, &r.PMS1Status)
	v2, ok2 := c.readParticulate(c.pms2, &r.PM1PMS2, &r.PM25PMS2, &r.PM10PMS2, &r.PMS2Status)

	pair := c.engine.Evaluate(v1, ok1, v2, ok2)
	r.PM25Mean = pair.Mean
	r.PM25RPD = pair.RPD
	r.PM25PairFlag = string(pair.Flag)
	r.PM25SuspectSensor = string(pair.Suspect)
	if pair.Mean != nil {
		r.PM25AQI = types.Int(aqi.CalculatePM25(*pair.Mean))
	}

	c.readGas(&r)
	c.readClimate(&r)
	return r
}

func (c *Collector) readParticulate(src ParticulateSource, pm1, pm25, pm10 **float64, status *string) (*float64, bool) {
	if src == nil {
		*status = string(sensors.StatusDisabled)
		return nil, false
	}

	m, st := src.Read()
	*status = string(st)
	if !st.OK() {
		c.logger.Debugw("particulate read failed", "sensor", src.Name(), "status", st)
		return nil, false
	}

	*pm1 = types.Float(float64(m.PM1))
	*pm25 = types.Float(float64(m.PM25))
	*pm10 = types.Float(float64(m.PM10))
	return *pm25, true
}

func (c *Collector) readGas(r *types.Reading) {
	if c.gas == nil {
		r.SO2Status = "disabled"
		r.SO2Error = "DISABLED"
		return
	}

	m, st := c.gas.Read()
	r.SO2Error = gasError(st)
	if !st.OK() {
		r.SO2Status = "error"
		if st != sensors.StatusRateLimited {
			c.logger.Debugw("gas read failed", "status", st)
		}
		return
	}

	r.SO2Status = "ok"
	r.SO2PPM = types.Float(m.PPM)
	r.SO2Raw = types.Int(int(m.Raw))
	r.SO2Byte0 = types.Int(int(m.Byte0))
	r.SO2Byte1 = types.Int(int(m.Byte1))
}

// gasError is the upper-case fault label the daily files carry for the
// gas channel, distinct from the machine status column
func gasError(st sensors.Status) string {
	switch st {
	case sensors.StatusOK:
		return "OK"
	case sensors.StatusNoFrame:
		return "NO_FRAME"
	case sensors.StatusBadFrame:
		return "BAD_FRAME"
	case sensors.StatusRateLimited:
		return "RATE_LIMIT"
	case sensors.StatusTransportError:
		return "TRANSPORT_ERROR"
	default:
		return "ERROR"
	}
}

func (c *Collector) readClimate(r *types.Reading) {
	if c.climate == nil {
		r.BMEStatus = string(sensors.StatusDisabled)
		return
	}

	m, st := c.climate.Read()
	r.BMEStatus = string(st)
	if !st.OK() {
		c.logger.Debugw("climate read failed", "status", st)
		return
	}

	r.TempC = types.Float(m.TempC)
	r.RHPct = types.Float(m.RHPct)
	r.PressureHPa = types.Float(m.PressureHPa)
	r.VOCOhm = m.VOCOhm
}

func (c *Collector) closeSources() {
	if c.pms1 != nil {
		if err := c.pms1.Close(); err != nil {
			c.logger.Warnf("closing %s: %v", c.pms1.Name(), err)
		}
	}
	if c.pms2 != nil {
		if err := c.pms2.Close(); err != nil {
			c.logger.Warnf("closing %s: %v", c.pms2.Name(), err)
		}
	}
	if c.gas != nil {
		if err := c.gas.Close(); err != nil {
			c.logger.Warnf("closing so2: %v", err)
		}
	}
	if c.climate != nil {
		if err := c.climate.Close(); err != nil {
			c.logger.Warnf("closing bme: %v", err)
		}
	}
}
