package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds every tunable of a run. Values come from the environment
// (and an optional .env file), with sane defaults for a local session.
type Config struct {
	Window  WindowConfig
	Network NetworkConfig
	Run     RunConfig
	Demo    DemoConfig
	Export  ExportConfig
	Log     LogConfig
}

type WindowConfig struct {
	Width  int    `validate:"gte=320,lte=7680"`
	Height int    `validate:"gte=240,lte=4320"`
	Margin int    `validate:"gte=0"`
	Title  string `validate:"required"`
}

type NetworkConfig struct {
	File string `validate:"required"`
}

type RunConfig struct {
	Steps     int           `validate:"gt=0"`
	StepDelay time.Duration `validate:"gte=0"`
	ModeLabel string
	Headless  bool
}

type DemoConfig struct {
	Seed     int64
	Vehicles int `validate:"gte=0"`
}

type ExportConfig struct {
	Enabled bool
	Addr    string `validate:"required_with=Enabled"`
}

type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
}

func setDefaults() {
	viper.SetDefault("WINDOW_WIDTH", 1200)
	viper.SetDefault("WINDOW_HEIGHT", 800)
	viper.SetDefault("WINDOW_MARGIN", 50)
	viper.SetDefault("WINDOW_TITLE", "Traffic Viewer")
	viper.SetDefault("NETWORK_FILE", "network.net.xml")
	viper.SetDefault("RUN_STEPS", 1000)
	viper.SetDefault("RUN_STEP_DELAY_MS", 50)
	viper.SetDefault("RUN_MODE_LABEL", "Fixed Timing")
	viper.SetDefault("RUN_HEADLESS", false)
	viper.SetDefault("DEMO_SEED", 1)
	viper.SetDefault("DEMO_VEHICLES", 30)
	viper.SetDefault("EXPORT_ENABLED", false)
	viper.SetDefault("EXPORT_ADDR", ":8080")
	viper.SetDefault("LOG_LEVEL", "info")
}

// Load reads the environment into a validated Config. A missing .env file
// is not an error.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{
		Window: WindowConfig{
			Width:  viper.GetInt("WINDOW_WIDTH"),
			Height: viper.GetInt("WINDOW_HEIGHT"),
			Margin: viper.GetInt("WINDOW_MARGIN"),
			Title:  viper.GetString("WINDOW_TITLE"),
		},
		Network: NetworkConfig{
			File: viper.GetString("NETWORK_FILE"),
		},
		Run: RunConfig{
			Steps:     viper.GetInt("RUN_STEPS"),
			StepDelay: time.Duration(viper.GetInt("RUN_STEP_DELAY_MS")) * time.Millisecond,
			ModeLabel: viper.GetString("RUN_MODE_LABEL"),
			Headless:  viper.GetBool("RUN_HEADLESS"),
		},
		Demo: DemoConfig{
			Seed:     viper.GetInt64("DEMO_SEED"),
			Vehicles: viper.GetInt("DEMO_VEHICLES"),
		},
		Export: ExportConfig{
			Enabled: viper.GetBool("EXPORT_ENABLED"),
			Addr:    viper.GetString("EXPORT_ADDR"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
