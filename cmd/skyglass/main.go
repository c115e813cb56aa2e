package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	"go.uber.org/zap"

	"github.com/lox/skyglass/internal/config"
	"github.com/lox/skyglass/internal/logging"
)

// Globals are flags shared by every command. Values set here override the
// config file.
type Globals struct {
	EnvFile   kongdotenv.ENVFileConfig `kong:"optional,name='env-file',default='.env',help='Path to .env file'"`
	Config    string                   `short:"c" type:"path" env:"SKYGLASS_CONFIG" help:"Path to TOML config file."`
	LogLevel  string                   `env:"SKYGLASS_LOG_LEVEL" help:"Log level (debug, info, warn, error)."`
	LogFormat string                   `env:"SKYGLASS_LOG_FORMAT" help:"Log format (json or console)."`
	Latitude  *float64                 `env:"SKYGLASS_LATITUDE" help:"Default location latitude."`
	Longitude *float64                 `env:"SKYGLASS_LONGITUDE" help:"Default location longitude."`
	Name      string                   `env:"SKYGLASS_LOCATION_NAME" help:"Default location name."`
}

type CLI struct {
	Globals

	Serve  ServeCmd  `cmd:"" default:"withargs" help:"Run the dashboard server (default)."`
	Fetch  FetchCmd  `cmd:"" help:"Fetch the forecast once and print it as JSON."`
	Search SearchCmd `cmd:"" help:"Search for a place by name."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("skyglass"),
		kong.Description("Weather and air quality dashboard."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the config, applies flag overrides and builds the root logger.
func (g *Globals) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}

	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Logging.Format = g.LogFormat
	}
	if g.Latitude != nil {
		cfg.Location.Latitude = *g.Latitude
	}
	if g.Longitude != nil {
		cfg.Location.Longitude = *g.Longitude
	}
	if g.Name != "" {
		cfg.Location.Name = g.Name
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}
