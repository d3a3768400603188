// Package pms reads Plantower PMS5003 particulate sensors.
//
// The PMS5003 continuously emits 32-byte frames on its serial line:
// two sync bytes (0x42 0x4D), a big-endian length field that must be
// 28, thirteen big-endian data words, and a big-endian additive
// checksum over everything before it. Words 3, 4 and 5 carry PM1.0,
// PM2.5 and PM10 in µg/m³ under atmospheric-environment calibration.
package pms

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/airshed/airshed/internal/sensors"
	"github.com/airshed/airshed/pkg/config"
	serial "github.com/tarm/goserial"
	"go.uber.org/zap"
)

const (
	sync0 = 0x42
	sync1 = 0x4D

	// Body length after the sync bytes: length word + 13 data words +
	// checksum word.
	bodyLen = 30

	// Expected value of the frame length field.
	payloadLen = 28

	// Upper bound on bytes scanned while hunting for the sync marker,
	// so a noisy line cannot stall a tick forever.
	maxSyncScan = 512

	readDeadline = 5 * time.Second
)

// Measurement holds one decoded particulate frame.
type Measurement struct {
	PM1  uint16
	PM25 uint16
	PM10 uint16
}

// Reader reads and decodes frames from one PMS5003, over a serial
// device or a TCP connection (for bench use with pms-emulator).
type Reader struct {
	name    string
	config  config.SerialDeviceData
	rwc     io.ReadWriteCloser
	netConn net.Conn
	logger  *zap.SugaredLogger
}

// New creates a Reader for the given device configuration. Call Open
// before the first Read.
func New(name string, cfg config.SerialDeviceData, logger *zap.SugaredLogger) *Reader {
	return &Reader{
		name:   name,
		config: cfg,
		logger: logger.Named("pms").With("sensor", name),
	}
}

// Name returns the configured sensor name
func (r *Reader) Name() string {
	return r.name
}

// Open connects to the sensor. An open failure at startup disables the
// sensor for the process lifetime; the caller decides whether that is
// fatal.
func (r *Reader) Open() error {
	if r.config.SerialDevice != "" {
		sc := &serial.Config{Name: r.config.SerialDevice, Baud: r.config.Baud}
		rwc, err := serial.OpenPort(sc)
		if err != nil {
			return fmt.Errorf("opening serial port %s: %w", r.config.SerialDevice, err)
		}
		r.rwc = rwc
		r.logger.Infof("connected to %s at %d baud", r.config.SerialDevice, r.config.Baud)
		return nil
	}

	if r.config.Hostname != "" && r.config.Port != "" {
		addr := net.JoinHostPort(r.config.Hostname, r.config.Port)
		conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", addr, err)
		}
		r.netConn = conn
		r.rwc = conn
		r.logger.Infof("connected to %s", addr)
		return nil
	}

	return fmt.Errorf("sensor [%s] must define either a serial device or hostname+port", r.name)
}

// Close releases the transport
func (r *Reader) Close() error {
	if r.rwc == nil {
		return nil
	}
	err := r.rwc.Close()
	r.rwc = nil
	r.netConn = nil
	return err
}

// Read decodes the next frame from the transport. It never returns an
// error; all failures are reported through the status.
func (r *Reader) Read() (Measurement, sensors.Status) {
	if r.rwc == nil {
		return Measurement{}, sensors.StatusTransportError
	}
	if r.netConn != nil {
		r.netConn.SetReadDeadline(time.Now().Add(readDeadline))
	}
	m, status := Decode(r.rwc)
	if !status.OK() {
		r.logger.Debugw("frame decode failed", "status", status)
	}
	return m, status
}

// Decode scans src for the next valid PMS5003 frame and decodes it.
func Decode(src io.Reader) (Measurement, sensors.Status) {
	var b [1]byte

	// Sync to the 0x42 0x4D header
	synced := false
	for scanned := 0; scanned < maxSyncScan; scanned++ {
		if _, err := io.ReadFull(src, b[:]); err != nil {
			return Measurement{}, sensors.StatusNoFrame
		}
		if b[0] != sync0 {
			continue
		}
		if _, err := io.ReadFull(src, b[:]); err != nil {
			return Measurement{}, sensors.StatusNoFrame
		}
		if b[0] == sync1 {
			synced = true
			break
		}
	}
	if !synced {
		return Measurement{}, sensors.StatusNoFrame
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(src, body); err != nil {
		return Measurement{}, sensors.StatusTransportError
	}

	if binary.BigEndian.Uint16(body[0:2]) != payloadLen {
		return Measurement{}, sensors.StatusLengthMismatch
	}

	sum := uint16(sync0 + sync1)
	for _, v := range body[:bodyLen-2] {
		sum += uint16(v)
	}
	if sum != binary.BigEndian.Uint16(body[bodyLen-2:]) {
		return Measurement{}, sensors.StatusChecksumMismatch
	}

	// 13 big-endian words follow the length field; words 3..5 are the
	// atmospheric-environment concentrations.
	var words [13]uint16
	for i := range words {
		words[i] = binary.BigEndian.Uint16(body[2+2*i:])
	}

	return Measurement{
		PM1:  words[3],
		PM25: words[4],
		PM10: words[5],
	}, sensors.StatusOK
}
