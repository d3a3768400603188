// Package types defines the reading record shared between the collector,
// storage backends, and controllers.
package types

import (
	"strconv"
	"time"

	"github.com/airshed/airshed/pkg/timeutil"
)

// NoData is the display sentinel written for absent values at the
// persistence boundary. Inside the process, absent values are nil
// pointers, never sentinel strings.
const NoData = "NODATA"

// Reading is one normalized record for a single collection tick. Every
// column is always present; numeric fields are pointers so that "no
// data" is representable without sentinel values.  The gorm column
// names double as the CSV header, so they are the on-disk contract.
type Reading struct {
	Timestamp time.Time `gorm:"column:time"`
	NodeID    string    `gorm:"column:node_id"`

	// BME688 climate block
	TempC       *float64 `gorm:"column:temp_c"`
	RHPct       *float64 `gorm:"column:rh_pct"`
	PressureHPa *float64 `gorm:"column:pressure_hpa"`
	VOCOhm      *float64 `gorm:"column:voc_ohm"`
	BMEStatus   string   `gorm:"column:bme_status"`

	// Particulate sensors, atmospheric-environment calibration
	PM1PMS1    *float64 `gorm:"column:pm1_atm_pms1"`
	PM25PMS1   *float64 `gorm:"column:pm25_atm_pms1"`
	PM10PMS1   *float64 `gorm:"column:pm10_atm_pms1"`
	PMS1Status string   `gorm:"column:pms1_status"`

	PM1PMS2    *float64 `gorm:"column:pm1_atm_pms2"`
	PM25PMS2   *float64 `gorm:"column:pm25_atm_pms2"`
	PM10PMS2   *float64 `gorm:"column:pm10_atm_pms2"`
	PMS2Status string   `gorm:"column:pms2_status"`

	// Pair diagnostics (PM2.5)
	PM25Mean          *float64 `gorm:"column:pm25_pms_mean"`
	PM25RPD           *float64 `gorm:"column:pm25_pms_rpd"`
	PM25PairFlag      string   `gorm:"column:pm25_pair_flag"`
	PM25SuspectSensor string   `gorm:"column:pm25_suspect_sensor"`
	PM25AQI           *int     `gorm:"column:pm25_aqi"`

	// SO2 gas block
	SO2PPM    *float64 `gorm:"column:so2_ppm"`
	SO2Raw    *int     `gorm:"column:so2_raw"`
	SO2Byte0  *int     `gorm:"column:so2_byte0"`
	SO2Byte1  *int     `gorm:"column:so2_byte1"`
	SO2Error  string   `gorm:"column:so2_error"`
	SO2Status string   `gorm:"column:so2_status"`
}

// TableName implements the gorm Tabler interface
func (Reading) TableName() string {
	return "readings"
}

// CSVHeader is the stable column order of the daily CSV files. The
// airshed-status and airshed-combine tools depend on these names.
func CSVHeader() []string {
	return []string{
		"timestamp_utc", "timestamp_local", "node_id",
		"temp_c", "rh_pct", "pressure_hpa", "voc_ohm", "bme_status",
		"pm1_atm_pms1", "pm25_atm_pms1", "pm10_atm_pms1", "pms1_status",
		"pm1_atm_pms2", "pm25_atm_pms2", "pm10_atm_pms2", "pms2_status",
		"pm25_pms_mean", "pm25_pms_rpd", "pm25_pair_flag", "pm25_suspect_sensor", "pm25_aqi",
		"so2_ppm", "so2_raw", "so2_byte0", "so2_byte1", "so2_error", "so2_status",
	}
}

// CSVRow renders the reading in CSVHeader order, converting absent
// values to the NoData sentinel. loc controls the local timestamp.
func (r *Reading) CSVRow(loc *time.Location) []string {
	return []string{
		timeutil.ISOUTCZ(r.Timestamp),
		timeutil.ISOLocal(r.Timestamp, loc),
		r.NodeID,
		FormatFloat(r.TempC),
		FormatFloat(r.RHPct),
		FormatFloat(r.PressureHPa),
		FormatFloat(r.VOCOhm),
		FormatString(r.BMEStatus),
		FormatFloat(r.PM1PMS1),
		FormatFloat(r.PM25PMS1),
		FormatFloat(r.PM10PMS1),
		FormatString(r.PMS1Status),
		FormatFloat(r.PM1PMS2),
		FormatFloat(r.PM25PMS2),
		FormatFloat(r.PM10PMS2),
		FormatString(r.PMS2Status),
		FormatFloat(r.PM25Mean),
		FormatFloat(r.PM25RPD),
		FormatString(r.PM25PairFlag),
		FormatString(r.PM25SuspectSensor),
		FormatInt(r.PM25AQI),
		FormatFloat(r.SO2PPM),
		FormatInt(r.SO2Raw),
		FormatInt(r.SO2Byte0),
		FormatInt(r.SO2Byte1),
		FormatString(r.SO2Error),
		FormatString(r.SO2Status),
	}
}

// FormatFloat renders an optional float, or the NoData sentinel
func FormatFloat(v *float64) string {
	if v == nil {
		return NoData
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// FormatInt renders an optional int, or the NoData sentinel
func FormatInt(v *int) string {
	if v == nil {
		return NoData
	}
	return strconv.Itoa(*v)
}

// FormatString renders a status-like string, mapping empty to NoData
func FormatString(s string) string {
	if s == "" {
		return NoData
	}
	return s
}

// Float is a convenience for building optional values
func Float(v float64) *float64 {
	return &v
}

// Int is a convenience for building optional values
func Int(v int) *int {
	return &v
}
