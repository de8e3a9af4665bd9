package models

// MConfig Structure
type MConfig struct {
	Name     string             `yaml:"name"`
	Host     string             `yaml:"host"`
	Port     int                `yaml:"port"`
	LogLevel string             `yaml:"log_level"`
	Broker   MBrokerConfig      `yaml:"broker"`
	Stream   MStreamConfig      `yaml:"stream"`
	Storage  MStorageConfig     `yaml:"storage"`
	Bridge   MBridgeAPIConfig   `yaml:"bridge"`
	Trading  MTradingParameters `yaml:"trading"`
}

type MBrokerConfig struct {
	Source                string `yaml:"source"` // "live", "file" or "mock"
	Symbol                string `yaml:"symbol"`
	Timeframe             string `yaml:"timeframe"`
	LiveURL               string `yaml:"live_url"`     // ws:// endpoint of the terminal
	LiveSecret            string `yaml:"live_secret"`  // shared secret query param
	FilePath              string `yaml:"file_path"`    // bridge file to read
	CommandPath           string `yaml:"command_path"` // command file to append
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	MaxAgeSeconds         int    `yaml:"max_age_seconds"` // 0 selects the per-variant default
}

type MStreamConfig struct {
	TickIntervalSeconds    int `yaml:"tick_interval_seconds"`
	AccountIntervalSeconds int `yaml:"account_interval_seconds"`
	CandleIntervalSeconds  int `yaml:"candle_interval_seconds"`
	SessionQueueSize       int `yaml:"session_queue_size"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MBridgeAPIConfig struct {
	Enabled      bool   `yaml:"enabled"`
	SharedSecret string `yaml:"shared_secret"`
}
