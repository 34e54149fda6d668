package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// dirName is the per-user and per-project config directory
const dirName = ".spiffs-uploader"

// fileNames are tried in order inside a config directory
var fileNames = []string{"config.json", "config.yaml", "config.yml"}

// Config represents the user's configuration
type Config struct {
	FlashTool   []string `json:"flash_tool,omitempty" yaml:"flash_tool,omitempty"`     // argv prefix, e.g. ["python", "-m", "esptool"]
	Packer      string   `json:"packer,omitempty" yaml:"packer,omitempty"`             // mkspiffs path
	DefaultPort string   `json:"default_port,omitempty" yaml:"default_port,omitempty"` // used when LastPort is unset or gone
	LastPort    string   `json:"last_port,omitempty" yaml:"last_port,omitempty"`
	Debug       bool     `json:"debug" yaml:"debug"`

	// Path is the file the config was loaded from; Save writes back there
	Path string `json:"-" yaml:"-"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	cfg := &Config{}
	if runtime.GOOS == "windows" {
		cfg.DefaultPort = "COM6"
	}
	return cfg
}

// InitialPort picks the port to preselect: the last used one if it is still
// present, then the configured default, then the first available port
func (c *Config) InitialPort(available []string) string {
	has := func(p string) bool {
		for _, a := range available {
			if a == p {
				return true
			}
		}
		return false
	}

	if c.LastPort != "" && has(c.LastPort) {
		return c.LastPort
	}
	if c.DefaultPort != "" {
		return c.DefaultPort
	}
	if len(available) > 0 {
		return available[0]
	}
	return c.LastPort
}

// globalConfigDir returns the global config directory path (~/.spiffs-uploader)
func globalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}

// findIn returns the first existing config file in dir, or "" if there is none
func findIn(dir string) string {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// GlobalPath returns the first existing config file in ~/.spiffs-uploader,
// falling back to config.json there.
func GlobalPath() (string, error) {
	dir, err := globalConfigDir()
	if err != nil {
		return "", err
	}
	if path := findIn(dir); path != "" {
		return path, nil
	}
	return filepath.Join(dir, fileNames[0]), nil
}

// Load reads the config from disk, checking project config first, then global.
// A missing file yields DefaultConfig.
func Load() (*Config, error) {
	if path := findIn(dirName); path != "" {
		return LoadFrom(path)
	}

	globalPath, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(globalPath)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFrom reads the config at path. Files ending in .yaml or .yml are YAML,
// anything else is JSON.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config exists, return default (don't auto-create)
			cfg := DefaultConfig()
			cfg.Path = path
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Save writes the config back to the file it was loaded from, or to the
// global location for a config built in memory
func Save(cfg *Config) error {
	if cfg.Path != "" {
		return SaveTo(cfg, cfg.Path)
	}
	path, err := GlobalPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to path, creating its directory
func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
