package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Node struct {
			NodeID      string  `yaml:"node_id"`
			Timezone    string  `yaml:"timezone,omitempty"`
			TickSeconds float64 `yaml:"tick_seconds,omitempty"`
			DataDir     string  `yaml:"data_dir,omitempty"`
			LogFile     string  `yaml:"log_file,omitempty"`
		} `yaml:"node"`
		Sensors struct {
			PMS1 serialDeviceYAML `yaml:"pms1,omitempty"`
			PMS2 serialDeviceYAML `yaml:"pms2,omitempty"`
			SO2  i2cDeviceYAML    `yaml:"so2,omitempty"`
			BME  i2cDeviceYAML    `yaml:"bme,omitempty"`
		} `yaml:"sensors"`
		Storage struct {
			CSV *struct {
				Directory string `yaml:"directory,omitempty"`
			} `yaml:"csv,omitempty"`
			TimescaleDB *struct {
				ConnectionString string `yaml:"connection_string"`
			} `yaml:"timescaledb,omitempty"`
		} `yaml:"storage,omitempty"`
		Controllers struct {
			StatusServer *struct {
				ListenAddr string `yaml:"listen_addr,omitempty"`
			} `yaml:"status,omitempty"`
		} `yaml:"controllers,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Node: NodeData{
			NodeID:      yamlConfig.Node.NodeID,
			Timezone:    yamlConfig.Node.Timezone,
			TickSeconds: yamlConfig.Node.TickSeconds,
			DataDir:     yamlConfig.Node.DataDir,
			LogFile:     yamlConfig.Node.LogFile,
		},
		Sensors: SensorsData{
			PMS1: convertSerialDevice(yamlConfig.Sensors.PMS1),
			PMS2: convertSerialDevice(yamlConfig.Sensors.PMS2),
			SO2:  convertI2CDevice(yamlConfig.Sensors.SO2),
			BME:  convertI2CDevice(yamlConfig.Sensors.BME),
		},
	}

	if yamlConfig.Storage.CSV != nil {
		config.Storage.CSV = &CSVData{
			Directory: yamlConfig.Storage.CSV.Directory,
		}
	}
	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}
	if yamlConfig.Controllers.StatusServer != nil {
		config.Controllers.StatusServer = &StatusServerData{
			ListenAddr: yamlConfig.Controllers.StatusServer.ListenAddr,
		}
	}

	applyDefaults(config)

	return config, nil
}

// Close is a no-op for YAML files
func (y *YAMLProvider) Close() error {
	return nil
}

type serialDeviceYAML struct {
	Enabled      bool   `yaml:"enabled"`
	SerialDevice string `yaml:"serial_device,omitempty"`
	Baud         int    `yaml:"baud,omitempty"`
	Hostname     string `yaml:"hostname,omitempty"`
	Port         string `yaml:"port,omitempty"`
}

type i2cDeviceYAML struct {
	Enabled       bool   `yaml:"enabled"`
	Bus           string `yaml:"i2c_bus,omitempty"`
	Address       uint16 `yaml:"address,omitempty"`
	MinIntervalMS int    `yaml:"min_interval_ms,omitempty"`
}

func convertSerialDevice(d serialDeviceYAML) SerialDeviceData {
	return SerialDeviceData{
		Enabled:      d.Enabled,
		SerialDevice: d.SerialDevice,
		Baud:         d.Baud,
		Hostname:     d.Hostname,
		Port:         d.Port,
	}
}

func convertI2CDevice(d i2cDeviceYAML) I2CDeviceData {
	return I2CDeviceData{
		Enabled:       d.Enabled,
		Bus:           d.Bus,
		Address:       d.Address,
		MinIntervalMS: d.MinIntervalMS,
	}
}

func applyDefaults(c *ConfigData) {
	if c.Node.NodeID == "" {
		c.Node.NodeID = "NodeX"
	}
	if c.Node.Timezone == "" {
		c.Node.Timezone = "UTC"
	}
	if c.Node.TickSeconds <= 0 {
		c.Node.TickSeconds = 1.0
	}
	if c.Node.DataDir == "" {
		c.Node.DataDir = "data"
	}
	// PMS5003 talks at 9600 baud
	if c.Sensors.PMS1.Baud == 0 {
		c.Sensors.PMS1.Baud = 9600
	}
	if c.Sensors.PMS2.Baud == 0 {
		c.Sensors.PMS2.Baud = 9600
	}
	if c.Sensors.SO2.Address == 0 {
		c.Sensors.SO2.Address = 0x74
	}
	if c.Sensors.SO2.MinIntervalMS == 0 {
		c.Sensors.SO2.MinIntervalMS = 1000
	}
	if c.Sensors.BME.Address == 0 {
		c.Sensors.BME.Address = 0x76
	}
}
