package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset() {
	cfg = nil
	v = nil
}

func TestInit(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
search:
  depth: 3
  parallelism: 2
  alpha_beta: false
host:
  max_turns: 80
  players:
    blue:
      name: Ada
      agent: random
server:
  grpc_server:
    port: 8080
ui:
  window:
    width: 1024
    height: 768
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	reset()
	require.NoError(t, Init(configFile))

	c := Get()
	assert.Equal(t, 3, c.Search.Depth)
	assert.Equal(t, 2, c.Search.Parallelism)
	assert.False(t, c.Search.AlphaBeta)
	assert.Equal(t, 80, c.Host.MaxTurns)
	assert.Equal(t, "Ada", c.Host.Players.Blue.Name)
	assert.Equal(t, "random", c.Host.Players.Blue.Agent)
	assert.Equal(t, "White", c.Host.Players.White.Name, "untouched keys keep their defaults")
	assert.Equal(t, 8080, c.Server.GRPCServer.Port)
	assert.Equal(t, 1024, c.UI.Window.Width)
	assert.Equal(t, 768, c.UI.Window.Height)
	assert.Equal(t, configFile, ConfigFilePath())
}

func TestInitWithDefaults(t *testing.T) {
	reset()
	require.NoError(t, Init("/non/existent/path/config.yaml"))

	c := Get()
	assert.Equal(t, 4, c.Search.Depth)
	assert.True(t, c.Search.AlphaBeta)
	assert.Equal(t, 10, c.Host.MaxAttempts)
	assert.Equal(t, 200, c.Host.MaxTurns)
	assert.Equal(t, "reports", c.Host.ReportDir)
	assert.Equal(t, 2, c.Host.Placement.MinWorkerSpacing)
	assert.Equal(t, "search", c.Host.Players.Blue.Agent)
	assert.Equal(t, "greedy", c.Host.Players.White.Agent)
	assert.Equal(t, 50051, c.Server.GRPCServer.Port)
	assert.Equal(t, 100, c.Server.GRPCServer.MaxGames)
	assert.Equal(t, 3, c.Server.GRPCServer.SuggestDepth)
	assert.Equal(t, "console", c.Logging.Format)
	assert.Equal(t, [3]int{50, 100, 220}, c.UI.Colors.Blue)
}

func TestEnvironmentVariables(t *testing.T) {
	reset()
	t.Setenv("SANTORINI_SEARCH_DEPTH", "2")
	t.Setenv("SANTORINI_SERVER_GRPC_SERVER_PORT", "9090")
	t.Setenv("SANTORINI_HOST_PLAYERS_WHITE_AGENT", "random")

	require.NoError(t, Init(""))

	c := Get()
	assert.Equal(t, 2, c.Search.Depth)
	assert.Equal(t, 9090, c.Server.GRPCServer.Port)
	assert.Equal(t, "random", c.Host.Players.White.Agent)
}

func TestInit_InvalidFileValues(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("search:\n  depth: 0\n"), 0644))

	reset()
	err := Init(configFile)
	assert.ErrorContains(t, err, "search.depth")
}

func TestSet(t *testing.T) {
	reset()
	require.NoError(t, Init(""))

	Set("search.depth", 6)
	Set("ui.window.width", 1280)

	c := Get()
	assert.Equal(t, 6, c.Search.Depth)
	assert.Equal(t, 1280, c.UI.Window.Width)
}

func TestGetHelpers(t *testing.T) {
	reset()
	require.NoError(t, Init(""))

	Set("test.string", "hello")
	Set("test.int", 42)
	Set("test.bool", true)

	assert.Equal(t, "hello", GetString("test.string"))
	assert.Equal(t, 42, GetInt("test.int"))
	assert.Equal(t, true, GetBool("test.bool"))
	assert.NotNil(t, GetViper())
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()

	baseConfig := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(baseConfig, []byte(`
search:
  depth: 4
server:
  grpc_server:
    port: 50051
`), 0644))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.prod.yaml"), []byte(`
search:
  depth: 5
server:
  grpc_server:
    port: 8080
    log_level: "error"
`), 0644))

	t.Chdir(tmpDir)

	reset()
	require.NoError(t, Init(baseConfig))
	require.NoError(t, LoadEnvironmentConfig("prod"))

	c := Get()
	assert.Equal(t, 5, c.Search.Depth)
	assert.Equal(t, 8080, c.Server.GRPCServer.Port)
	assert.Equal(t, "error", c.Server.GRPCServer.LogLevel)
	assert.NoError(t, LoadEnvironmentConfig(""))
	assert.NoError(t, LoadEnvironmentConfig("staging"), "a missing environment file is ignored")
	assert.Equal(t, baseConfig, ConfigFilePath())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{"chatty", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	reset()
	require.NoError(t, Init(""))
	base := *Get()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"depth too deep", func(c *Config) { c.Search.Depth = 9 }, "search.depth"},
		{"no parallelism", func(c *Config) { c.Search.Parallelism = 0 }, "search.parallelism"},
		{"no attempts", func(c *Config) { c.Host.MaxAttempts = 0 }, "host.max_attempts"},
		{"negative turns", func(c *Config) { c.Host.MaxTurns = -1 }, "host.max_turns"},
		{"empty name", func(c *Config) { c.Host.Players.Blue.Name = " " }, "host.players.blue.name"},
		{"unknown agent", func(c *Config) { c.Host.Players.White.Agent = "oracle" }, "host.players.white.agent"},
		{"same names", func(c *Config) { c.Host.Players.White.Name = "blue" }, "names must differ"},
		{"bad port", func(c *Config) { c.Server.GRPCServer.Port = 70000 }, "port"},
		{"no games", func(c *Config) { c.Server.GRPCServer.MaxGames = 0 }, "max_games"},
		{"no cleanup", func(c *Config) { c.Server.GRPCServer.CleanupInterval = 0 }, "cleanup_interval"},
		{"suggest depth above the server maximum", func(c *Config) { c.Server.GRPCServer.SuggestDepth = 7 }, "suggest_depth"},
		{"deepest suggest depth", func(c *Config) { c.Server.GRPCServer.SuggestDepth = 6 }, ""},
		{"bad server level", func(c *Config) { c.Server.GRPCServer.LogLevel = "loud" }, "log_level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"bad color", func(c *Config) { c.UI.Colors.Dome = [3]int{0, 256, 0} }, "ui.colors.dome[1]"},
		{"no tiles", func(c *Config) { c.UI.Game.TileSize = 0 }, "tile_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := Validate(&c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
