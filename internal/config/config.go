package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/santorini/internal/grpc/gameserver"
)

// Config holds all configuration for the application
type Config struct {
	Search  SearchConfig  `mapstructure:"search"`
	Host    HostConfig    `mapstructure:"host"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	UI      UIConfig      `mapstructure:"ui"`
}

// SearchConfig holds minimax search settings
type SearchConfig struct {
	Depth       int  `mapstructure:"depth"`
	Parallelism int  `mapstructure:"parallelism"`
	AlphaBeta   bool `mapstructure:"alpha_beta"`
	// Seed fixes the tie breaker; 0 seeds from the clock
	Seed int64 `mapstructure:"seed"`
}

// HostConfig holds settings of a locally hosted match
type HostConfig struct {
	MaxAttempts int             `mapstructure:"max_attempts"`
	MaxTurns    int             `mapstructure:"max_turns"`
	ReportDir   string          `mapstructure:"report_dir"`
	RandomStart bool            `mapstructure:"random_start"`
	Seed        int64           `mapstructure:"seed"`
	Placement   PlacementConfig `mapstructure:"placement"`
	Players     PlayersConfig   `mapstructure:"players"`
}

// PlacementConfig holds starting land selection settings
type PlacementConfig struct {
	MinWorkerSpacing int `mapstructure:"min_worker_spacing"`
}

// PlayersConfig holds the two seats
type PlayersConfig struct {
	Blue  PlayerConfig `mapstructure:"blue"`
	White PlayerConfig `mapstructure:"white"`
}

// PlayerConfig names a player and the agent playing it
type PlayerConfig struct {
	Name  string `mapstructure:"name"`
	Agent string `mapstructure:"agent"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	GRPCServer GRPCServerConfig `mapstructure:"grpc_server"`
}

// GRPCServerConfig holds gRPC server configuration. Durations are seconds.
type GRPCServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	LogLevel              string `mapstructure:"log_level"`
	MaxGames              int    `mapstructure:"max_games"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
	FinishedGameTTL       int    `mapstructure:"finished_game_ttl"`
	AbandonedGameTTL      int    `mapstructure:"abandoned_game_ttl"`
	CleanupInterval       int    `mapstructure:"cleanup_interval"`
	IdempotencyTTL        int    `mapstructure:"idempotency_ttl"`
	SuggestDepth          int    `mapstructure:"suggest_depth"`
}

// LoggingConfig holds logging settings for the binaries
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// UIConfig holds spectator window settings
type UIConfig struct {
	Window WindowConfig   `mapstructure:"window"`
	Game   UIGameConfig   `mapstructure:"game"`
	Colors UIColorsConfig `mapstructure:"colors"`
}

// WindowConfig holds window settings
type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// UIGameConfig holds UI game settings
type UIGameConfig struct {
	TileSize int `mapstructure:"tile_size"`
	// TurnInterval is the number of frames between two turns
	TurnInterval int `mapstructure:"turn_interval"`
}

// UIColorsConfig holds spectator colors
type UIColorsConfig struct {
	Background [3]int `mapstructure:"background"`
	GridLines  [3]int `mapstructure:"grid_lines"`
	Blue       [3]int `mapstructure:"blue"`
	White      [3]int `mapstructure:"white"`
	Dome       [3]int `mapstructure:"dome"`
}

// Agent kinds accepted for host players
var agentKinds = []string{"search", "greedy", "random"}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Search defaults
	v.SetDefault("search.depth", 4)
	v.SetDefault("search.parallelism", 4)
	v.SetDefault("search.alpha_beta", true)
	v.SetDefault("search.seed", 0)

	// Host defaults
	v.SetDefault("host.max_attempts", 10)
	v.SetDefault("host.max_turns", 200)
	v.SetDefault("host.report_dir", "reports")
	v.SetDefault("host.random_start", true)
	v.SetDefault("host.seed", 0)
	v.SetDefault("host.placement.min_worker_spacing", 2)
	v.SetDefault("host.players.blue.name", "Blue")
	v.SetDefault("host.players.blue.agent", "search")
	v.SetDefault("host.players.white.name", "White")
	v.SetDefault("host.players.white.agent", "greedy")

	// gRPC server defaults
	v.SetDefault("server.grpc_server.host", "0.0.0.0")
	v.SetDefault("server.grpc_server.port", 50051)
	v.SetDefault("server.grpc_server.log_level", "info")
	v.SetDefault("server.grpc_server.max_games", 100)
	v.SetDefault("server.grpc_server.graceful_shutdown_delay", 5)
	v.SetDefault("server.grpc_server.finished_game_ttl", 300)
	v.SetDefault("server.grpc_server.abandoned_game_ttl", 1800)
	v.SetDefault("server.grpc_server.cleanup_interval", 60)
	v.SetDefault("server.grpc_server.idempotency_ttl", 300)
	v.SetDefault("server.grpc_server.suggest_depth", 3)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// UI defaults
	v.SetDefault("ui.window.width", 600)
	v.SetDefault("ui.window.height", 660)
	v.SetDefault("ui.window.title", "Santorini")
	v.SetDefault("ui.game.tile_size", 120)
	v.SetDefault("ui.game.turn_interval", 45)
	v.SetDefault("ui.colors.background", []int{24, 48, 96})
	v.SetDefault("ui.colors.grid_lines", []int{70, 110, 60})
	v.SetDefault("ui.colors.blue", []int{50, 100, 220})
	v.SetDefault("ui.colors.white", []int{240, 240, 240})
	v.SetDefault("ui.colors.dome", []int{30, 60, 160})
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/santorini")
	}

	v.SetEnvPrefix("SANTORINI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing explicit file falls back to defaults; for the default
		// locations only ConfigFileNotFoundError is tolerated.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath == "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml, looked up next to the
// loaded config file, over the loaded config. A missing file is ignored.
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	dir := "."
	if used := v.ConfigFileUsed(); used != "" {
		dir = filepath.Dir(used)
	}
	envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
	if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	ev := viper.New()
	ev.SetConfigFile(envFile)
	if err := ev.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading environment config %s: %w", envFile, err)
	}
	if err := v.MergeConfigMap(ev.AllSettings()); err != nil {
		return fmt.Errorf("error merging environment config %s: %w", envFile, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}
	return Validate(cfg)
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	_ = v.Unmarshal(cfg)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return v.GetBool(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file. onChange runs after the
// new values were decoded.
func WatchConfig(onChange func()) {
	v.OnConfigChange(func(e fsnotify.Event) {
		_ = v.Unmarshal(cfg)
		if onChange != nil {
			onChange()
		}
	})
	v.WatchConfig()
}

// ParseLevel turns a configured level into a zerolog level. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(level))
}

// Validate validates the configuration values
func Validate(c *Config) error {
	// Search
	if c.Search.Depth < 1 || c.Search.Depth > 8 {
		return fmt.Errorf("search.depth must be between 1 and 8")
	}
	if c.Search.Parallelism < 1 {
		return fmt.Errorf("search.parallelism must be positive")
	}

	// Host
	if c.Host.MaxAttempts < 1 {
		return fmt.Errorf("host.max_attempts must be positive")
	}
	if c.Host.MaxTurns < 0 {
		return fmt.Errorf("host.max_turns must be non-negative")
	}
	if c.Host.Placement.MinWorkerSpacing < 0 {
		return fmt.Errorf("host.placement.min_worker_spacing must be non-negative")
	}
	if err := validatePlayer(c.Host.Players.Blue, "host.players.blue"); err != nil {
		return err
	}
	if err := validatePlayer(c.Host.Players.White, "host.players.white"); err != nil {
		return err
	}
	if strings.EqualFold(c.Host.Players.Blue.Name, c.Host.Players.White.Name) {
		return fmt.Errorf("host.players names must differ")
	}

	// Server
	if c.Server.GRPCServer.Port <= 0 || c.Server.GRPCServer.Port > 65535 {
		return fmt.Errorf("server.grpc_server.port must be between 1 and 65535")
	}
	if c.Server.GRPCServer.MaxGames <= 0 {
		return fmt.Errorf("server.grpc_server.max_games must be positive")
	}
	if c.Server.GRPCServer.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.grpc_server.graceful_shutdown_delay must be non-negative")
	}
	if c.Server.GRPCServer.FinishedGameTTL < 0 || c.Server.GRPCServer.AbandonedGameTTL < 0 {
		return fmt.Errorf("server.grpc_server game ttls must be non-negative")
	}
	if c.Server.GRPCServer.CleanupInterval <= 0 {
		return fmt.Errorf("server.grpc_server.cleanup_interval must be positive")
	}
	if c.Server.GRPCServer.IdempotencyTTL <= 0 {
		return fmt.Errorf("server.grpc_server.idempotency_ttl must be positive")
	}
	if c.Server.GRPCServer.SuggestDepth < 1 || c.Server.GRPCServer.SuggestDepth > gameserver.MaxSuggestDepth {
		return fmt.Errorf("server.grpc_server.suggest_depth must be between 1 and %d", gameserver.MaxSuggestDepth)
	}
	if _, err := ParseLevel(c.Server.GRPCServer.LogLevel); err != nil {
		return fmt.Errorf("server.grpc_server.log_level: %w", err)
	}

	// Logging
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be console or json")
	}

	// UI
	if c.UI.Window.Width <= 0 || c.UI.Window.Height <= 0 {
		return fmt.Errorf("ui.window dimensions must be positive")
	}
	if c.UI.Game.TileSize <= 0 {
		return fmt.Errorf("ui.game.tile_size must be positive")
	}
	if c.UI.Game.TurnInterval <= 0 {
		return fmt.Errorf("ui.game.turn_interval must be positive")
	}

	validateRGB := func(rgb [3]int, name string) error {
		for i, v := range rgb {
			if v < 0 || v > 255 {
				return fmt.Errorf("%s[%d] must be between 0 and 255", name, i)
			}
		}
		return nil
	}
	colors := map[string][3]int{
		"ui.colors.background": c.UI.Colors.Background,
		"ui.colors.grid_lines": c.UI.Colors.GridLines,
		"ui.colors.blue":       c.UI.Colors.Blue,
		"ui.colors.white":      c.UI.Colors.White,
		"ui.colors.dome":       c.UI.Colors.Dome,
	}
	for name, rgb := range colors {
		if err := validateRGB(rgb, name); err != nil {
			return err
		}
	}

	return nil
}

func validatePlayer(p PlayerConfig, key string) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%s.name must not be empty", key)
	}
	for _, kind := range agentKinds {
		if p.Agent == kind {
			return nil
		}
	}
	return fmt.Errorf("%s.agent must be one of %s", key, strings.Join(agentKinds, ", "))
}
