package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Workdir  string `yaml:"workdir" json:"workdir"`
	Location string `yaml:"location" json:"location"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

func (w WebConfig) Listen() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	Filename   string `yaml:"filename" json:"filename"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
}

type StoreConfig struct {
	Path string `yaml:"path" json:"path"`
	// Node is the snowflake node id for this till; must be unique per
	// device within an outlet so offline ids never collide.
	Node int64 `yaml:"node" json:"node"`
}

type SyncConfig struct {
	// Mode selects the pusher implementation: "http" posts queue items to
	// the cloud API, "postgres" upserts straight into a self hosted
	// system of record, "none" disables the worker.
	Mode        string `yaml:"mode" json:"mode"`
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	APIKey      string `yaml:"api_key" json:"api_key"`
	DSN         string `yaml:"dsn" json:"dsn"`
	IntervalSec int    `yaml:"interval" json:"interval"`
}

type PrintConfig struct {
	DefaultPrinter string `yaml:"default_printer" json:"default_printer"`
	// SilentCommand is the platform render helper invoked by the silent
	// fallback strategy. {file} and {printer} placeholders are expanded.
	SilentCommand string `yaml:"silent_command" json:"silent_command"`
	Codepage      string `yaml:"codepage" json:"codepage"`
	Workers       int    `yaml:"workers" json:"workers"`
}

type AppConfig struct {
	System   SysConfig   `yaml:"system" json:"system"`
	Web      WebConfig   `yaml:"web" json:"web"`
	Logger   LogConfig   `yaml:"logger" json:"logger"`
	Store    StoreConfig `yaml:"store" json:"store"`
	Sync     SyncConfig  `yaml:"sync" json:"sync"`
	Printing PrintConfig `yaml:"printing" json:"printing"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Workdir:  "/var/posbridge",
		Location: "Local",
		Debug:    true,
	},
	Web: WebConfig{
		Host: "127.0.0.1",
		Port: 9186,
	},
	Logger: LogConfig{
		Mode:       "development",
		Filename:   "/var/posbridge/posbridge.log",
		FileEnable: true,
	},
	Store: StoreConfig{
		Path: "",
		Node: 1,
	},
	Sync: SyncConfig{
		Mode:        "none",
		IntervalSec: 30,
	},
	Printing: PrintConfig{
		Workers: 2,
	},
}

func (c *AppConfig) GetStorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(c.System.Workdir, "data", "posbridge.db")
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) InitDirs() {
	os.MkdirAll(filepath.Join(c.System.Workdir, "data"), 0755)
	os.MkdirAll(filepath.Join(c.System.Workdir, "logs"), 0755)
	os.MkdirAll(filepath.Join(c.System.Workdir, "metrics"), 0755)
}

func setEnvValue(name string, val *string) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		*val = evalue == "true" || evalue == "1" || evalue == "on"
	}
}

func setEnvInt64Value(name string, val *int64) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := cast.ToInt64E(evalue)
	if err == nil {
		*val = p
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = os.Getenv(name)
	if evalue == "" {
		return
	}
	p, err := cast.ToIntE(evalue)
	if err == nil {
		*val = p
	}
}

// LoadConfig reads the YAML configuration file and applies POSBRIDGE_*
// environment overrides. A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	appconfig := new(AppConfig)
	*appconfig = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, appconfig)
		}
	}

	setEnvValue("POSBRIDGE_SYSTEM_WORKDIR", &appconfig.System.Workdir)
	setEnvBoolValue("POSBRIDGE_SYSTEM_DEBUG", &appconfig.System.Debug)
	setEnvValue("POSBRIDGE_WEB_HOST", &appconfig.Web.Host)
	setEnvIntValue("POSBRIDGE_WEB_PORT", &appconfig.Web.Port)
	setEnvValue("POSBRIDGE_LOGGER_MODE", &appconfig.Logger.Mode)
	setEnvValue("POSBRIDGE_STORE_PATH", &appconfig.Store.Path)
	setEnvInt64Value("POSBRIDGE_STORE_NODE", &appconfig.Store.Node)
	setEnvValue("POSBRIDGE_SYNC_MODE", &appconfig.Sync.Mode)
	setEnvValue("POSBRIDGE_SYNC_ENDPOINT", &appconfig.Sync.Endpoint)
	setEnvValue("POSBRIDGE_SYNC_APIKEY", &appconfig.Sync.APIKey)
	setEnvValue("POSBRIDGE_SYNC_DSN", &appconfig.Sync.DSN)
	setEnvIntValue("POSBRIDGE_SYNC_INTERVAL", &appconfig.Sync.IntervalSec)
	setEnvValue("POSBRIDGE_PRINT_DEFAULT", &appconfig.Printing.DefaultPrinter)
	setEnvValue("POSBRIDGE_PRINT_SILENT_COMMAND", &appconfig.Printing.SilentCommand)
	setEnvValue("POSBRIDGE_PRINT_CODEPAGE", &appconfig.Printing.Codepage)
	setEnvIntValue("POSBRIDGE_PRINT_WORKERS", &appconfig.Printing.Workers)

	return appconfig
}
