// Package config provides configuration loading for the airshed node.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Node        NodeData        `json:"node"`
	Sensors     SensorsData     `json:"sensors"`
	Storage     StorageData     `json:"storage,omitempty"`
	Controllers ControllersData `json:"controllers,omitempty"`
}

// NodeData holds node-wide settings
type NodeData struct {
	NodeID      string  `json:"node_id"`
	Timezone    string  `json:"timezone,omitempty"`
	TickSeconds float64 `json:"tick_seconds,omitempty"`
	DataDir     string  `json:"data_dir,omitempty"`
	LogFile     string  `json:"log_file,omitempty"`
}

// SensorsData holds per-sensor device configuration
type SensorsData struct {
	PMS1 SerialDeviceData `json:"pms1,omitempty"`
	PMS2 SerialDeviceData `json:"pms2,omitempty"`
	SO2  I2CDeviceData    `json:"so2,omitempty"`
	BME  I2CDeviceData    `json:"bme,omitempty"`
}

// SerialDeviceData holds configuration for a serial-attached sensor.
// Hostname+Port may be used instead of SerialDevice to read frames over
// TCP (e.g. from the pms-emulator).
type SerialDeviceData struct {
	Enabled      bool   `json:"enabled"`
	SerialDevice string `json:"serial_device,omitempty"`
	Baud         int    `json:"baud,omitempty"`
	Hostname     string `json:"hostname,omitempty"`
	Port         string `json:"port,omitempty"`
}

// I2CDeviceData holds configuration for an I2C-attached sensor
type I2CDeviceData struct {
	Enabled       bool   `json:"enabled"`
	Bus           string `json:"i2c_bus,omitempty"`
	Address       uint16 `json:"address,omitempty"`
	MinIntervalMS int    `json:"min_interval_ms,omitempty"`
}

// StorageData holds the configuration for various storage backends
type StorageData struct {
	CSV         *CSVData         `json:"csv,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

// CSVData holds configuration for the daily CSV storage backend
type CSVData struct {
	Directory string `json:"directory,omitempty"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

// ControllersData holds the configuration for controller backends
type ControllersData struct {
	StatusServer *StatusServerData `json:"status,omitempty"`
}

type StatusServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
}
