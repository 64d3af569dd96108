package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config 应用配置结构
//
// The file is read at startup only; the application never writes it back.
type Config struct {
	Serial   SerialConfig `json:"serial"`
	Window   WindowConfig `json:"window"`
	LogLevel string       `json:"log_level"`
	Language string       `json:"language"`
}

// SerialConfig 串口收发时序配置
type SerialConfig struct {
	ReadTimeoutMs  int `json:"read_timeout_ms"`
	PollIntervalMs int `json:"poll_interval_ms"`
}

// WindowConfig 窗口尺寸
type WindowConfig struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			ReadTimeoutMs:  100,
			PollIntervalMs: 50,
		},
		Window: WindowConfig{
			Width:  700,
			Height: 600,
		},
		LogLevel: "INFO",
		Language: "auto",
	}
}

// ReadTimeout returns the serial read timeout as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Serial.ReadTimeoutMs) * time.Millisecond
}

// PollInterval returns the receiver sleep between polls.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Serial.PollIntervalMs) * time.Millisecond
}

// Load 加载配置文件
func Load() (*Config, error) {
	return LoadFile(getConfigPath())
}

// LoadFile reads path on top of the defaults, so keys missing from the file keep their
// default values. Non-positive timings are reset to the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	err = json.Unmarshal(data, cfg)
	if err != nil {
		return nil, err
	}

	def := Default()
	if cfg.Serial.ReadTimeoutMs <= 0 {
		cfg.Serial.ReadTimeoutMs = def.Serial.ReadTimeoutMs
	}
	if cfg.Serial.PollIntervalMs <= 0 {
		cfg.Serial.PollIntervalMs = def.Serial.PollIntervalMs
	}
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		cfg.Window = def.Window
	}

	return cfg, nil
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	exeDir := filepath.Dir(exePath)
	// Look for config.json in the same directory as the executable
	return filepath.Join(exeDir, "config.json")
}
