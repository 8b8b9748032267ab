package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

const (
	// TicksPerSecond 广播频率（20 TPS）
	TicksPerSecond = 20

	DefaultLobbySize         = 2
	DefaultPlayerSpeed       = 0.1
	DefaultMapSize           = 10.0
	DefaultPickupRadius      = 0.5
	DefaultCoinSpawnInterval = 3 * time.Second
	DefaultTickInterval      = time.Second / TicksPerSecond // 50ms
	DefaultSendQueue         = 64

	envPrefix = "COINRUSH_"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config 服务端参数；默认值即原始常量，启动后不再变化
type Config struct {
	Addr              string        `json:"addr"`
	LobbySize         int           `json:"lobbySize"`
	PlayerSpeed       float64       `json:"playerSpeed"`
	MapSize           float64       `json:"mapSize"`
	PickupRadius      float64       `json:"pickupRadius"`
	CoinSpawnInterval time.Duration `json:"coinSpawnInterval"`
	TickInterval      time.Duration `json:"tickInterval"`
	SendQueue         int           `json:"sendQueue"`
	LogFile           string        `json:"logFile"`
	LogLevel          string        `json:"logLevel"`
}

func DefaultConfig() Config {
	return Config{
		Addr:              ":8765",
		LobbySize:         DefaultLobbySize,
		PlayerSpeed:       DefaultPlayerSpeed,
		MapSize:           DefaultMapSize,
		PickupRadius:      DefaultPickupRadius,
		CoinSpawnInterval: DefaultCoinSpawnInterval,
		TickInterval:      DefaultTickInterval,
		SendQueue:         DefaultSendQueue,
		LogLevel:          "info",
	}
}

// LoadConfig 依次叠加：默认值 → .env 文件（可选） → COINRUSH_* 环境变量 → 命令行参数
func LoadConfig(args []string) (Config, error) {
	cfg := DefaultConfig()

	fs := pflag.NewFlagSet("coinrush", pflag.ContinueOnError)
	envFile := fs.String("env-file", ".env", "optional dotenv file")
	fs.StringVarP(&cfg.Addr, "addr", "a", cfg.Addr, "server listen address, e.g. :8765")
	fs.IntVar(&cfg.LobbySize, "lobby-size", cfg.LobbySize, "players needed to start the game")
	fs.Float64Var(&cfg.PlayerSpeed, "player-speed", cfg.PlayerSpeed, "displacement per move input")
	fs.Float64Var(&cfg.MapSize, "map-size", cfg.MapSize, "coins spawn within [-map-size, map-size]")
	fs.Float64Var(&cfg.PickupRadius, "pickup-radius", cfg.PickupRadius, "per-axis coin pickup distance")
	fs.DurationVar(&cfg.CoinSpawnInterval, "coin-interval", cfg.CoinSpawnInterval, "coin spawn period")
	fs.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "state broadcast period")
	fs.IntVar(&cfg.SendQueue, "send-queue", cfg.SendQueue, "per-connection outbound queue length")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "rolling log file; empty logs to stderr")
	fs.StringVarP(&cfg.LogLevel, "log-level", "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if _, err := os.Stat(*envFile); err == nil {
		if err := godotenv.Load(*envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", *envFile, err)
		}
	}
	if err := cfg.applyEnv(fs); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// applyEnv 仅覆盖命令行未显式指定的字段
func (c *Config) applyEnv(fs *pflag.FlagSet) error {
	type binding struct {
		flag string
		set  func(string) error
	}
	bindings := []binding{
		{"addr", func(v string) error { c.Addr = v; return nil }},
		{"lobby-size", intSetter(&c.LobbySize)},
		{"player-speed", floatSetter(&c.PlayerSpeed)},
		{"map-size", floatSetter(&c.MapSize)},
		{"pickup-radius", floatSetter(&c.PickupRadius)},
		{"coin-interval", durationSetter(&c.CoinSpawnInterval)},
		{"tick", durationSetter(&c.TickInterval)},
		{"send-queue", intSetter(&c.SendQueue)},
		{"log-file", func(v string) error { c.LogFile = v; return nil }},
		{"log-level", func(v string) error { c.LogLevel = v; return nil }},
	}
	for _, b := range bindings {
		if fs.Changed(b.flag) {
			continue
		}
		key := envKey(b.flag)
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if err := b.set(v); err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, v, err)
		}
	}
	return nil
}

// envKey "lobby-size" -> "COINRUSH_LOBBY_SIZE"
func envKey(flag string) string {
	b := []byte(envPrefix)
	for i := 0; i < len(flag); i++ {
		ch := flag[i]
		switch {
		case ch == '-':
			ch = '_'
		case ch >= 'a' && ch <= 'z':
			ch -= 'a' - 'A'
		}
		b = append(b, ch)
	}
	return string(b)
}

func intSetter(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func floatSetter(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func durationSetter(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

func (c Config) Validate() error {
	switch {
	case c.LobbySize < 1:
		return fmt.Errorf("%w: lobby size must be >= 1, got %d", ErrInvalidConfig, c.LobbySize)
	case c.PlayerSpeed <= 0:
		return fmt.Errorf("%w: player speed must be > 0", ErrInvalidConfig)
	case c.MapSize <= 0:
		return fmt.Errorf("%w: map size must be > 0", ErrInvalidConfig)
	case c.PickupRadius <= 0:
		return fmt.Errorf("%w: pickup radius must be > 0", ErrInvalidConfig)
	case c.CoinSpawnInterval <= 0, c.TickInterval <= 0:
		return fmt.Errorf("%w: intervals must be > 0", ErrInvalidConfig)
	case c.SendQueue < 1:
		return fmt.Errorf("%w: send queue must be >= 1", ErrInvalidConfig)
	}
	return nil
}
