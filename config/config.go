// Package config loads the nested TOML configuration schema and
// the flat ban list, using the same go-toml library and
// file-creates-itself-on-first-run pattern as dragonfly's whitelist.go.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Config is the root configuration structure.
type Config struct {
	Server ServerConfig `toml:"server"`
	Border BorderConfig `toml:"border"`
	Player PlayerConfig `toml:"player"`
	Food   FoodConfig   `toml:"food"`
	Virus  VirusConfig  `toml:"virus"`
	Eject  EjectConfig  `toml:"eject"`
}

type ServerConfig struct {
	Port              uint16 `toml:"port"`
	Bind              string `toml:"bind"`
	MaxConnections    int    `toml:"max_connections"`
	Timeout           uint64 `toml:"timeout"`
	IPLimit           int    `toml:"ip_limit"`
	GameMode          uint32 `toml:"gamemode"`
	Name              string `toml:"name"`
	TickIntervalMS    uint64 `toml:"tick_interval_ms"`
	Bots              int    `toml:"bots"`
	ServerMinions     int    `toml:"server_minions"`
	MobilePhysics     bool   `toml:"mobile_physics"`
	OperatorPassword  string `toml:"operator_password"`
}

type BorderConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

type PlayerConfig struct {
	StartSize       float64 `toml:"start_size"`
	MinSize         float64 `toml:"min_size"`
	MaxSize         float64 `toml:"max_size"`
	MinSplitSize    float64 `toml:"min_split_size"`
	MinEjectSize    float64 `toml:"min_eject_size"`
	MaxCells        int     `toml:"max_cells"`
	Speed           float64 `toml:"speed"`
	DecayRate       float64 `toml:"decay_rate"`
	MergeTime       float64 `toml:"merge_time"`
	SplitSpeed      float64 `toml:"split_speed"`
	MinionSameColor bool    `toml:"minion_same_color"`
	MaxNickLength   int     `toml:"max_nick_length"`
}

type FoodConfig struct {
	MinSize     float64 `toml:"min_size"`
	MaxSize     float64 `toml:"max_size"`
	MinAmount   int     `toml:"min_amount"`
	MaxAmount   int     `toml:"max_amount"`
	SpawnAmount int     `toml:"spawn_amount"`
}

type VirusConfig struct {
	MinSize    float64 `toml:"min_size"`
	MaxSize    float64 `toml:"max_size"`
	MinAmount  int     `toml:"min_amount"`
	MaxAmount  int     `toml:"max_amount"`
	EjectSpeed float64 `toml:"eject_speed"`
	MaxCells   int     `toml:"max_cells"`
	SplitDiv   float64 `toml:"split_div"`
}

type EjectConfig struct {
	Size     float64 `toml:"size"`
	SizeLoss float64 `toml:"size_loss"`
	Speed    float64 `toml:"speed"`
	Cooldown int     `toml:"cooldown"`
}

// Default returns the configuration used when no config.toml is present,
// values chosen to match the reference server's own defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           11443,
			Bind:           "0.0.0.0",
			MaxConnections: 100,
			Timeout:        300,
			IPLimit:        100,
			GameMode:       0,
			Name:           "cogar",
			TickIntervalMS: 40,
			MobilePhysics:  true,
		},
		Border: BorderConfig{Width: 14142, Height: 14142},
		Player: PlayerConfig{
			StartSize:     32,
			MinSize:       32,
			MaxSize:       1500,
			MinSplitSize:  60,
			MinEjectSize:  60,
			MaxCells:      16,
			Speed:         30,
			DecayRate:     0.002,
			MergeTime:     30,
			SplitSpeed:    780,
			MaxNickLength: 15,
		},
		Food: FoodConfig{MinSize: 10, MaxSize: 10, MinAmount: 1000, MaxAmount: 2000, SpawnAmount: 30},
		Virus: VirusConfig{
			MinSize: 100, MaxSize: 141.421356, MinAmount: 30, MaxAmount: 60,
			EjectSpeed: 780, MaxCells: 12, SplitDiv: 36,
		},
		Eject: EjectConfig{Size: 38, SizeLoss: 43, Speed: 780, Cooldown: 2},
	}
}

// Load reads config.toml at path, or writes out Default() if the file does
// not exist yet (grounded on original_source's Config::load and dragonfly's
// whitelist-file-creates-itself pattern).
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		return cfg, Save(path, cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as pretty-printed TOML.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
