package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SMOOTHIE_HEADLESS_ENABLED=true.
const EnvPrefix = "SMOOTHIE"

// WindowConfig holds window settings.
type WindowConfig struct {
	Title  string `mapstructure:"title"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

// HeadlessConfig holds software rendering settings.
type HeadlessConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	OutputDir string `mapstructure:"outputDir"`
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	FPS       int    `mapstructure:"fps"`
}

// MQTTConfig holds frame stream settings.
type MQTTConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	ClientID string `mapstructure:"clientId"`
	Topic    string `mapstructure:"topic"`
	QoS      int    `mapstructure:"qos"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// DemoConfig holds settings of the bundled demo animation.
type DemoConfig struct {
	Easing string `mapstructure:"easing"`
}

// Config is the full application configuration.
type Config struct {
	LogLevel          string         `mapstructure:"logLevel"`
	Window            WindowConfig   `mapstructure:"window"`
	TickRate          float64        `mapstructure:"tickRate"`
	RenderFrameLimit  float64        `mapstructure:"renderFrameLimit"`
	PrimitiveCapacity int            `mapstructure:"primitiveCapacity"`
	PresentMode       string         `mapstructure:"presentMode"`
	MSAA              int            `mapstructure:"msaa"`
	Profiling         bool           `mapstructure:"profiling"`
	Workers           int            `mapstructure:"workers"`
	Headless          HeadlessConfig `mapstructure:"headless"`
	MQTT              MQTTConfig     `mapstructure:"mqtt"`
	Demo              DemoConfig     `mapstructure:"demo"`
}

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"config":         "",
	"log-level":      "logLevel",
	"title":          "window.title",
	"width":          "window.width",
	"height":         "window.height",
	"tick-rate":      "tickRate",
	"fps-limit":      "renderFrameLimit",
	"primitives":     "primitiveCapacity",
	"present-mode":   "presentMode",
	"msaa":           "msaa",
	"profiling":      "profiling",
	"workers":        "workers",
	"headless":       "headless.enabled",
	"out":            "headless.outputDir",
	"headless-fps":   "headless.fps",
	"mqtt":           "mqtt.enabled",
	"mqtt-url":       "mqtt.url",
	"mqtt-topic":     "mqtt.topic",
	"mqtt-client-id": "mqtt.clientId",
	"easing":         "demo.easing",
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")

	viper.SetDefault("window.title", "smoothie")
	viper.SetDefault("window.width", 1280)
	viper.SetDefault("window.height", 720)

	viper.SetDefault("tickRate", 60.0)
	viper.SetDefault("renderFrameLimit", 0.0)
	viper.SetDefault("primitiveCapacity", 256)
	viper.SetDefault("presentMode", "vsync")
	viper.SetDefault("msaa", 4)
	viper.SetDefault("profiling", false)
	viper.SetDefault("workers", 0)

	viper.SetDefault("headless.enabled", false)
	viper.SetDefault("headless.outputDir", "./frames")
	viper.SetDefault("headless.width", 640)
	viper.SetDefault("headless.height", 360)
	viper.SetDefault("headless.fps", 30)

	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.url", "tcp://localhost:1883")
	viper.SetDefault("mqtt.clientId", "smoothie")
	viper.SetDefault("mqtt.topic", "smoothie/frames")
	viper.SetDefault("mqtt.qos", 0)
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")

	viper.SetDefault("demo.easing", "ease-in-out")
}

// Load sets defaults, enables SMOOTHIE_ environment overrides and reads the YAML file at
// path. An empty path skips the file.
//
// Parameters:
//   - path: the config file, or "" for defaults and environment only
//
// Returns:
//   - error: an error if the file cannot be read or parsed
func Load(path string) error {
	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path == "" {
		return nil
	}

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// NewFlagSet declares the command line flags. Bind them with BindFlags after parsing.
//
// Parameters:
//   - name: the program name
//
// Returns:
//   - *pflag.FlagSet: the flag set
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("config", "c", "", "YAML config file")
	fs.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	fs.String("title", "smoothie", "window title")
	fs.Int("width", 1280, "window width in pixels")
	fs.Int("height", 720, "window height in pixels")
	fs.Float64("tick-rate", 60, "scene ticks per second")
	fs.Float64("fps-limit", 0, "render frame cap (0 = uncapped)")
	fs.Int("primitives", 256, "primitive buffer capacity")
	fs.String("present-mode", "vsync", "present mode (vsync, uncapped)")
	fs.Int("msaa", 4, "MSAA sample count (1, 4, 8, 16)")
	fs.Bool("profiling", false, "log frame rate and memory statistics")
	fs.Int("workers", 0, "scene worker pool size (0 = default)")
	fs.Bool("headless", false, "render PNG frames instead of opening a window")
	fs.String("out", "./frames", "headless frame output directory")
	fs.Int("headless-fps", 30, "headless frames per second")
	fs.Bool("mqtt", false, "publish frames to MQTT")
	fs.String("mqtt-url", "tcp://localhost:1883", "MQTT broker URL")
	fs.String("mqtt-topic", "smoothie/frames", "MQTT topic")
	fs.String("mqtt-client-id", "smoothie", "MQTT client id")
	fs.String("easing", "ease-in-out", "demo easing curve")
	return fs
}

// BindFlags binds every flag of fs that maps to a config key, so a flag set on the command
// line overrides the file and the environment.
//
// Parameters:
//   - fs: a flag set created by NewFlagSet
//
// Returns:
//   - error: an error if a flag cannot be bound
func BindFlags(fs *pflag.FlagSet) error {
	var errs []error
	for name, key := range flagKeys {
		if key == "" {
			continue
		}
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			errs = append(errs, fmt.Errorf("bind flag %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Get decodes the current configuration.
//
// Returns:
//   - Config: the configuration
//   - error: an error if a value has the wrong type
func Get() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
