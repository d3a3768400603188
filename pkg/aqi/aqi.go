// Package aqi provides functions for calculating Air Quality Index values
// from particulate matter concentrations according to EPA standards
package aqi

import "math"

type breakpoint struct {
	cLow, cHigh float64
	iLow, iHigh float64
}

// EPA breakpoints for 24-hour PM2.5 averages (µg/m³)
var pm25Breakpoints = []breakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// EPA breakpoints for 24-hour PM10 averages (µg/m³)
var pm10Breakpoints = []breakpoint{
	{0, 54, 0, 50},
	{55, 154, 51, 100},
	{155, 254, 101, 150},
	{255, 354, 151, 200},
	{355, 424, 201, 300},
	{425, 504, 301, 400},
	{505, 604, 401, 500},
}

// CalculatePM25 calculates the Air Quality Index from PM2.5 concentration (µg/m³)
func CalculatePM25(pm25 float64) int {
	return calculate(pm25, pm25Breakpoints)
}

// CalculatePM10 calculates the Air Quality Index from PM10 concentration (µg/m³)
func CalculatePM10(pm10 float64) int {
	return calculate(pm10, pm10Breakpoints)
}

func calculate(c float64, bps []breakpoint) int {
	if c < 0 {
		return 0
	}
	for _, bp := range bps {
		if c <= bp.cHigh {
			// I = (I_high - I_low) / (C_high - C_low) * (C - C_low) + I_low
			i := ((bp.iHigh-bp.iLow)/(bp.cHigh-bp.cLow))*(c-bp.cLow) + bp.iLow
			return int(math.Round(i))
		}
	}
	// Beyond the highest breakpoint, AQI is 500+
	return 500
}

// GetCategory returns the AQI category name for a given AQI value
func GetCategory(aqi int) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}
