package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon configuration.
type Config struct {
	IPMIAddr          string // UDP listen address for RMCP
	HTTPAddr          string // HTTP listen address (console bridge, metrics)
	ConsoleSocket     string // host console unix socket for SOL bridging
	BaudRate          uint32 // host console baud rate
	ChannelFile       string // YAML channel map
	CipherFile        string // writable cipher suite state
	CipherDefaultFile string // distribution cipher suite defaults
	StateDir          string // writable state (DHCP mode, VLAN memo)
	LogLevel          string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		IPMIAddr:          getEnv("IPMI_ADDR", ":623"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8443"),
		ConsoleSocket:     getEnv("CONSOLE_SOCK", "/var/run/console/default.sock"),
		BaudRate:          getUint32Env("CONSOLE_BAUD", 115200),
		ChannelFile:       getEnv("CHANNEL_FILE", "/etc/netipmid/channels.yaml"),
		CipherFile:        getEnv("CIPHER_FILE", "/var/lib/netipmid/cipher_suites.yaml"),
		CipherDefaultFile: getEnv("CIPHER_DEFAULT_FILE", "/usr/share/netipmid/cipher_suites.yaml"),
		StateDir:          getEnv("STATE_DIR", "/var/lib/netipmid"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}
}

// ChannelConfig describes one IPMI channel in the channel map file.
type ChannelConfig struct {
	Name    string `yaml:"name"`
	Medium  string `yaml:"medium"`  // "lan" or "other"
	Session string `yaml:"session"` // "multi", "single" or "none"
}

// LoadChannels parses the YAML channel map, keyed by channel number.
func LoadChannels(path string) (map[uint8]ChannelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading channel map: %w", err)
	}
	var channels map[uint8]ChannelConfig
	if err := yaml.Unmarshal(data, &channels); err != nil {
		return nil, fmt.Errorf("parsing channel map: %w", err)
	}
	for id, ch := range channels {
		if ch.Name == "" {
			return nil, fmt.Errorf("channel %d has no interface name", id)
		}
	}
	return channels, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getUint32Env(key string, defaultValue uint32) uint32 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return defaultValue
	}
	return uint32(n)
}
