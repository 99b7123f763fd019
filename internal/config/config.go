package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"locoboard/internal/model"
)

// FileName is the configuration file looked up next to the executable.
const FileName = "config.toml"

// Environment overrides.
const (
	EnvSpreadsheetID = "LOCOBOARD_SPREADSHEET_ID"
	EnvEditURL       = "LOCOBOARD_EDIT_URL"
	EnvConfigPath    = "LOCOBOARD_CONFIG"
)

// AppConfig is the application configuration.
type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Data    DataConfig    `toml:"data"`
	Source  SourceConfig  `toml:"source"`
	Edit    EditConfig    `toml:"edit"`
	Report  ReportConfig  `toml:"report"`
	Metrics MetricsConfig `toml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
}

// DataConfig locates the operational log database.
type DataConfig struct {
	DataDir string `toml:"data_dir"`
	LogDB   string `toml:"log_db"`
}

// SourceConfig describes the spreadsheet.
type SourceConfig struct {
	BaseURL        string          `toml:"base_url"`
	SpreadsheetID  string          `toml:"spreadsheet_id"`
	TimeoutSeconds int             `toml:"timeout_seconds"`
	Sheets         SheetNames      `toml:"sheets"`
	Failures       []FailureSource `toml:"failures"`
}

// SheetNames names the single-table sheets.
type SheetNames struct {
	Details       string `toml:"details"`
	Schedules     string `toml:"schedules"`
	Modifications string `toml:"modifications"`
}

// FailureSource is one failure log sheet.
type FailureSource struct {
	Sheet   string `toml:"sheet"`
	Fleet   string `toml:"fleet"`
	Variant string `toml:"variant"` // "A", "B" or "auto"
}

// EditConfig configures the remote edit endpoint.
type EditConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ReportConfig holds summary defaults.
type ReportConfig struct {
	LocoAccount []string `toml:"loco_account"` // responsibility codes charged to the shed
	GroupBy     string   `toml:"group_by"`
	LabelsFile  string   `toml:"labels_file"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LoadConfigInfo reports how the configuration was loaded.
type LoadConfigInfo struct {
	Path          string
	Found         bool
	PortSpecified bool
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        20261,
			DevMode:     false,
			OpenBrowser: false,
		},
		Data: DataConfig{
			DataDir: "data",
			LogDB:   "locoboard.db",
		},
		Source: SourceConfig{
			BaseURL:        "https://docs.google.com/spreadsheets/d",
			TimeoutSeconds: 30,
			Sheets: SheetNames{
				Details:       "Loco Details",
				Schedules:     "Schedules",
				Modifications: "Modifications",
			},
			Failures: []FailureSource{
				{Sheet: "WAG9 Failures", Fleet: "WAG-9", Variant: "A"},
				{Sheet: "WAP7 Shed Investigation", Fleet: "WAP-7", Variant: "B"},
			},
		},
		Edit: EditConfig{
			TimeoutSeconds: 30,
		},
		Report: ReportConfig{
			LocoAccount: []string{"ELS", "Shed"},
			GroupBy:     model.FieldEquipment,
			LabelsFile:  "labels.yaml",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// SourceTimeout returns the fetch timeout.
func (c *AppConfig) SourceTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

// EditTimeout returns the edit request timeout.
func (c *AppConfig) EditTimeout() time.Duration {
	return time.Duration(c.Edit.TimeoutSeconds) * time.Second
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir returns the directory of the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath returns $LOCOBOARD_CONFIG or config.toml next to the executable.
func DefaultPath() string {
	if v := os.Getenv(EnvConfigPath); v != "" {
		return v
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, FileName)
}

// LoadConfigWithInfo loads path over the defaults. A missing file is not an
// error. Environment overrides are applied last.
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		applyEnv(config)
		return config, info, nil
	case err != nil:
		return nil, info, err
	}
	info.Found = true
	info.PortSpecified = isPortSpecifiedInToml(data)

	// [[source.failures]] replaces the default list rather than extending it.
	defaults := config.Source.Failures
	config.Source.Failures = nil
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, info, err
	}
	if len(config.Source.Failures) == 0 {
		config.Source.Failures = defaults
	}
	applyEnv(config)
	return config, info, nil
}

// LoadConfig loads the configuration from DefaultPath.
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(DefaultPath())
	return config, err
}

func applyEnv(config *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvSpreadsheetID)); v != "" {
		config.Source.SpreadsheetID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEditURL)); v != "" {
		config.Edit.URL = v
	}
}

// SaveConfig writes config to path.
func SaveConfig(config *AppConfig, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ResolvePath resolves p against the directory of the config file.
func ResolvePath(configPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}

// EnsureDataDir creates the data directory and returns its path.
func EnsureDataDir(config *AppConfig, configPath string) (string, error) {
	dataDir := ResolvePath(configPath, config.Data.DataDir)
	if dataDir == "" {
		dataDir = filepath.Dir(configPath)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}
