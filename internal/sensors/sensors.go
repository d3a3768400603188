// Package sensors defines the decode status shared by all sensor drivers.
package sensors

// Status is the outcome of a single sample attempt. Decoders always
// return a Status instead of propagating transport or parse errors;
// the tick loop never sees a raw error from a sensor read path.
type Status string

const (
	// StatusOK means a validated measurement was produced.
	StatusOK Status = "ok"

	// StatusNoFrame means the transport yielded no usable frame before
	// its read timeout.
	StatusNoFrame Status = "no_frame"

	// StatusLengthMismatch means a frame was found but its length field
	// was wrong.
	StatusLengthMismatch Status = "length_mismatch"

	// StatusChecksumMismatch means a frame failed checksum validation.
	StatusChecksumMismatch Status = "checksum_mismatch"

	// StatusBadFrame means a frame failed marker or command-code
	// validation.
	StatusBadFrame Status = "bad_frame"

	// StatusRateLimited means the read was intentionally skipped to
	// respect a minimum sampling interval. Not a fault.
	StatusRateLimited Status = "rate_limited"

	// StatusTransportError means the device could not be reached.
	StatusTransportError Status = "transport_error"

	// StatusDisabled means the sensor is not configured or failed to
	// initialize at startup.
	StatusDisabled Status = "disabled"
)

// OK reports whether the status carries a valid measurement.
func (s Status) OK() bool {
	return s == StatusOK
}

func (s Status) String() string {
	return string(s)
}
