package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"chessarena/internal/domain"
)

// Ability is the fixed cooldown and damage of a piece type's ability.
type Ability struct {
	CooldownSeconds float64 `json:"cooldown_seconds" jsonschema:"minimum=0"`
	Damage          int     `json:"damage" jsonschema:"minimum=0"`
}

// BotConfig tunes the practice bots that top up an arena with few humans.
type BotConfig struct {
	Enabled bool `json:"enabled"`
	// AutoFillDelaySeconds is how long humans wait in an under-filled arena before bots join.
	AutoFillDelaySeconds float64 `json:"auto_fill_delay_seconds" jsonschema:"minimum=0"`
	MinPlayers           int     `json:"min_players" jsonschema:"minimum=0"`
	ActIntervalSeconds   float64 `json:"act_interval_seconds" jsonschema:"minimum=0"`
	Strategy             string  `json:"strategy" jsonschema:"enum=wanderer,enum=hunter"`
	IdentitiesPath       string  `json:"identities_path,omitempty"`
}

// GameConfig holds every tunable of an arena match.
type GameConfig struct {
	BoardSize int                          `json:"board_size"`
	Health    map[domain.PieceType]int     `json:"health"`
	Abilities map[domain.PieceType]Ability `json:"abilities"`

	EventIntervalSeconds float64 `json:"event_interval_seconds" jsonschema:"exclusiveMinimum=0"`
	LootIntervalSeconds  float64 `json:"loot_interval_seconds" jsonschema:"exclusiveMinimum=0"`
	LateGameSeconds      float64 `json:"late_game_seconds" jsonschema:"minimum=0"`
	SurgeFactor          float64 `json:"surge_factor" jsonschema:"exclusiveMinimum=0,maximum=1"`

	RespawnEnabled      bool    `json:"respawn_enabled"`
	RespawnDelaySeconds float64 `json:"respawn_delay_seconds" jsonschema:"minimum=0"`
	FriendlyFire        bool    `json:"friendly_fire"`
	MaxPlayers          int     `json:"max_players" jsonschema:"minimum=1"`

	ExtraLootCount int     `json:"extra_loot_count" jsonschema:"minimum=0"`
	LootProbes     int     `json:"loot_probes" jsonschema:"minimum=0"`
	ShieldSeconds  float64 `json:"shield_seconds" jsonschema:"minimum=0"`
	EffectSeconds  float64 `json:"effect_seconds" jsonschema:"minimum=0"`

	KingEventBonus int `json:"king_event_bonus" jsonschema:"minimum=0"`
	KingHealthCap  int `json:"king_health_cap" jsonschema:"minimum=1"`

	NeutralHealth              int     `json:"neutral_health" jsonschema:"minimum=1"`
	NeutralDamage              int     `json:"neutral_damage" jsonschema:"minimum=0"`
	NeutralMoveIntervalSeconds float64 `json:"neutral_move_interval_seconds" jsonschema:"exclusiveMinimum=0"`

	HealAuraSeconds float64 `json:"heal_aura_seconds" jsonschema:"minimum=0"`
	HealPerSecond   int     `json:"heal_per_second" jsonschema:"minimum=0"`

	EventLogSize int `json:"event_log_size" jsonschema:"minimum=1"`
	TickRate     int `json:"tick_rate" jsonschema:"minimum=1,maximum=60"`
	// KillReward is the wallet coins credited to the attacker on a defeat. Zero disables it.
	KillReward int64 `json:"kill_reward" jsonschema:"minimum=0"`
	// Codec selects the payload encoding: "json" or "msgpack".
	Codec string `json:"codec" jsonschema:"enum=json,enum=msgpack"`

	Bots BotConfig `json:"bots"`
}

// Default returns the stock arena settings.
func Default() *GameConfig {
	health := make(map[domain.PieceType]int, len(domain.DefaultHealth))
	for k, v := range domain.DefaultHealth {
		health[k] = v
	}
	return &GameConfig{
		BoardSize: domain.BoardSize,
		Health:    health,
		Abilities: map[domain.PieceType]Ability{
			domain.Pawn:   {CooldownSeconds: 5, Damage: 2},
			domain.Rook:   {CooldownSeconds: 10, Damage: 3},
			domain.Knight: {CooldownSeconds: 8, Damage: 1},
			domain.Bishop: {CooldownSeconds: 7, Damage: 2},
			domain.Queen:  {CooldownSeconds: 12, Damage: 3},
			domain.King:   {CooldownSeconds: 15, Damage: 0},
		},
		EventIntervalSeconds:       180,
		LootIntervalSeconds:        120,
		LateGameSeconds:            480,
		SurgeFactor:                0.5,
		RespawnEnabled:             true,
		RespawnDelaySeconds:        5,
		FriendlyFire:               false,
		MaxPlayers:                 32,
		ExtraLootCount:             3,
		LootProbes:                 20,
		ShieldSeconds:              10,
		EffectSeconds:              5,
		KingEventBonus:             5,
		KingHealthCap:              20,
		NeutralHealth:              10,
		NeutralDamage:              2,
		NeutralMoveIntervalSeconds: 3,
		HealAuraSeconds:            5,
		HealPerSecond:              1,
		EventLogSize:               20,
		TickRate:                   10,
		KillReward:                 10,
		Codec:                      "json",
		Bots: BotConfig{
			Enabled:              true,
			AutoFillDelaySeconds: 10,
			MinPlayers:           4,
			ActIntervalSeconds:   2,
			Strategy:             "hunter",
		},
	}
}

// HealthTable returns the configured base health as a domain table.
func (c *GameConfig) HealthTable() domain.HealthTable {
	return domain.HealthTable(c.Health)
}

// AbilityOf returns the ability for t, falling back to the stock table.
func (c *GameConfig) AbilityOf(t domain.PieceType) Ability {
	if a, ok := c.Abilities[t]; ok {
		return a
	}
	return Default().Abilities[t]
}

// Validate checks the settings for values the engine cannot run with.
func (c *GameConfig) Validate() error {
	var errs []error
	if c.BoardSize != domain.BoardSize {
		errs = append(errs, fmt.Errorf("board_size must be %d", domain.BoardSize))
	}
	for _, t := range domain.AllPieceTypes {
		if hp, ok := c.Health[t]; ok && hp <= 0 {
			errs = append(errs, fmt.Errorf("health for %s must be positive", t))
		}
		if a, ok := c.Abilities[t]; ok && (a.CooldownSeconds < 0 || a.Damage < 0) {
			errs = append(errs, fmt.Errorf("ability for %s must not be negative", t))
		}
	}
	if c.EventIntervalSeconds <= 0 || c.LootIntervalSeconds <= 0 || c.NeutralMoveIntervalSeconds <= 0 {
		errs = append(errs, errors.New("scheduler intervals must be positive"))
	}
	if c.SurgeFactor <= 0 || c.SurgeFactor > 1 {
		errs = append(errs, errors.New("surge_factor must be in (0,1]"))
	}
	if c.MaxPlayers <= 0 {
		errs = append(errs, errors.New("max_players must be positive"))
	}
	if c.TickRate <= 0 {
		errs = append(errs, errors.New("tick_rate must be positive"))
	}
	if c.EventLogSize <= 0 {
		errs = append(errs, errors.New("event_log_size must be positive"))
	}
	if c.Codec != "" && c.Codec != "json" && c.Codec != "msgpack" {
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Codec))
	}
	return errors.Join(errs...)
}

// Load reads a JSON file over the defaults. Keys absent from the file keep their default.
func Load(path string) (*GameConfig, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	return c, nil
}

// EnvPrefix marks runtime environment keys that override settings.
const EnvPrefix = "arena_"

// ApplyEnv overrides scalar settings from env keys such as arena_max_players or
// ARENA_FRIENDLY_FIRE. Unknown keys are ignored; malformed values are reported.
func (c *GameConfig) ApplyEnv(env map[string]string) error {
	setters := map[string]func(string) error{
		"event_interval_seconds":        floatSetter(&c.EventIntervalSeconds),
		"loot_interval_seconds":         floatSetter(&c.LootIntervalSeconds),
		"late_game_seconds":             floatSetter(&c.LateGameSeconds),
		"respawn_enabled":               boolSetter(&c.RespawnEnabled),
		"respawn_delay_seconds":         floatSetter(&c.RespawnDelaySeconds),
		"friendly_fire":                 boolSetter(&c.FriendlyFire),
		"max_players":                   intSetter(&c.MaxPlayers),
		"extra_loot_count":              intSetter(&c.ExtraLootCount),
		"neutral_move_interval_seconds": floatSetter(&c.NeutralMoveIntervalSeconds),
		"tick_rate":                     intSetter(&c.TickRate),
		"kill_reward":                   int64Setter(&c.KillReward),
		"codec":                         func(v string) error { c.Codec = v; return nil },
		"bots_enabled":                  boolSetter(&c.Bots.Enabled),
		"bots_min_players":              intSetter(&c.Bots.MinPlayers),
		"bots_strategy":                 func(v string) error { c.Bots.Strategy = v; return nil },
	}

	var errs []error
	for key, value := range env {
		lower := strings.ToLower(key)
		if !strings.HasPrefix(lower, EnvPrefix) {
			continue
		}
		set, ok := setters[strings.TrimPrefix(lower, EnvPrefix)]
		if !ok {
			continue
		}
		if err := set(strings.TrimSpace(value)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return c.Validate()
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

func int64Setter(dst *int64) func(string) error {
	return func(v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func boolSetter(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the process-wide configuration once. An empty path keeps the defaults.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		if path == "" {
			cfg = Default()
			return
		}
		cfg, loadErr = Load(path)
	})
	return loadErr
}

// GetGameConfig returns a copy of the process-wide configuration, or the defaults
// when nothing was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Default()
	}
	return cfg.Clone()
}

// Clone returns a deep copy of c.
func (c *GameConfig) Clone() *GameConfig {
	out := *c
	out.Health = make(map[domain.PieceType]int, len(c.Health))
	for k, v := range c.Health {
		out.Health[k] = v
	}
	out.Abilities = make(map[domain.PieceType]Ability, len(c.Abilities))
	for k, v := range c.Abilities {
		out.Abilities[k] = v
	}
	return &out
}
