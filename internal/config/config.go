package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Network   NetworkConfig   `toml:"network"`
	Match     MatchConfig     `toml:"match"`
	Content   ContentConfig   `toml:"content"`
	Scripting ScriptingConfig `toml:"scripting"`
	Lobby     LobbyConfig     `toml:"lobby"`
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	ID        int    `toml:"id"`
	StartTime int64  // set at boot, not from config
}

type NetworkConfig struct {
	BindAddress       string        `toml:"bind_address"`
	TickRate          time.Duration `toml:"tick_rate"`
	InQueueSize       int           `toml:"in_queue_size"`
	ReadTimeout       time.Duration `toml:"read_timeout"`
	MaxPacketsPerTick int           `toml:"max_packets_per_tick"`
	IdleTimeout       time.Duration `toml:"idle_timeout"`
	MaxDatagram       int           `toml:"max_datagram"`
	MaxPending        int           `toml:"max_pending"` // unacked reliable events per client before disconnect
}

type MatchConfig struct {
	Mode              string  `toml:"mode"`
	TeamCount         int     `toml:"team_count"`
	MinPlayers        int     `toml:"min_players"`
	RespawnSeconds    float64 `toml:"respawn_seconds"`
	InterestRadius    float64 `toml:"interest_radius"`
	HeroLinger        float64 `toml:"hero_linger"` // seconds a disconnected player's hero idles before despawn
	FriendlyFire      bool    `toml:"friendly_fire"`
	ReservedEntityIDs uint32  `toml:"reserved_entity_ids"` // ids below this are reserved for heroes (id == player id)
}

type ContentConfig struct {
	Dir string `toml:"dir"`
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type LobbyConfig struct {
	PasswordHash string `toml:"password_hash"` // bcrypt; empty = open lobby
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty disables match history
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	RecorderQueue   int           `toml:"recorder_queue"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Network.TickRate <= 0 {
		return fmt.Errorf("network.tick_rate must be positive")
	}
	if c.Network.MaxPending < 1 {
		return fmt.Errorf("network.max_pending must be positive")
	}
	if c.Match.TeamCount < 1 {
		return fmt.Errorf("match.team_count must be at least 1")
	}
	if c.Match.InterestRadius <= 0 {
		return fmt.Errorf("match.interest_radius must be positive")
	}
	if c.Match.ReservedEntityIDs < 2 {
		return fmt.Errorf("match.reserved_entity_ids must leave room for player heroes")
	}
	return nil
}

// Defaults returns the built-in configuration used when a key is absent.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "L1JGO-Arena",
			ID:   1,
		},
		Network: NetworkConfig{
			BindAddress:       "0.0.0.0:7777",
			TickRate:          50 * time.Millisecond,
			InQueueSize:       1024,
			ReadTimeout:       250 * time.Millisecond,
			MaxPacketsPerTick: 256,
			IdleTimeout:       15 * time.Second,
			MaxDatagram:       65507,
			MaxPending:        1024,
		},
		Match: MatchConfig{
			Mode:              "deathmatch",
			TeamCount:         2,
			MinPlayers:        1,
			RespawnSeconds:    5,
			InterestRadius:    20,
			HeroLinger:        30,
			ReservedEntityIDs: 1024,
		},
		Content: ContentConfig{
			Dir: "data/yaml",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			RecorderQueue:   256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
