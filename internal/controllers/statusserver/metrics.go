package statusserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/airshed/airshed/internal/types"
)

// Package-level collectors so they register exactly once per process
var (
	readingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airshed_readings_total",
		Help: "Number of readings received since start.",
	})
	sensorOK = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "airshed_sensor_ok",
		Help: "1 when the sensor's last read decoded cleanly, 0 otherwise.",
	}, []string{"sensor"})
	pm25 = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "airshed_pm25_ugm3",
		Help: "PM2.5 concentration, atmospheric calibration.",
	}, []string{"sensor"})
	pm25Mean = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airshed_pm25_pair_mean_ugm3",
		Help: "Mean PM2.5 of the sensor pair.",
	})
	pm25RPD = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airshed_pm25_pair_rpd",
		Help: "Relative percent difference of the PM2.5 pair.",
	})
	pm25AQI = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airshed_pm25_aqi",
		Help: "EPA AQI computed from the pair mean PM2.5.",
	})
	pairMismatch = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airshed_pm25_pair_mismatch",
		Help: "1 when the latest tick classified the pair as MISMATCH.",
	})
	so2PPM = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airshed_so2_ppm",
		Help: "SO2 concentration.",
	})
	tempC = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airshed_temp_celsius",
		Help: "Ambient temperature.",
	})
	rhPct = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airshed_humidity_percent",
		Help: "Relative humidity.",
	})
	pressureHPa = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airshed_pressure_hpa",
		Help: "Barometric pressure.",
	})
)

type metrics struct{}

func newMetrics() *metrics {
	return &metrics{}
}

// observe updates the gauges from one reading. Absent values leave the
// previous gauge value in place rather than publishing zeros.
func (m *metrics) observe(r types.Reading) {
	readingsTotal.Inc()

	sensorOK.WithLabelValues("pms1").Set(boolGauge(r.PMS1Status == "ok"))
	sensorOK.WithLabelValues("pms2").Set(boolGauge(r.PMS2Status == "ok"))
	sensorOK.WithLabelValues("so2").Set(boolGauge(r.SO2Status == "ok"))
	sensorOK.WithLabelValues("bme").Set(boolGauge(r.BMEStatus == "ok"))

	setIfPresent(pm25.WithLabelValues("pms1"), r.PM25PMS1)
	setIfPresent(pm25.WithLabelValues("pms2"), r.PM25PMS2)
	setIfPresent(pm25Mean, r.PM25Mean)
	setIfPresent(pm25RPD, r.PM25RPD)
	if r.PM25AQI != nil {
		pm25AQI.Set(float64(*r.PM25AQI))
	}
	pairMismatch.Set(boolGauge(r.PM25PairFlag == "MISMATCH"))

	setIfPresent(so2PPM, r.SO2PPM)
	setIfPresent(tempC, r.TempC)
	setIfPresent(rhPct, r.RHPct)
	setIfPresent(pressureHPa, r.PressureHPa)
}

func setIfPresent(g prometheus.Gauge, v *float64) {
	if v != nil {
		g.Set(*v)
	}
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
