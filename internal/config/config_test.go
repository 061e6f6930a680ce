package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"chessarena/internal/domain"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Equal(t, 15, c.HealthTable().Of(domain.King))
	require.Equal(t, Ability{CooldownSeconds: 12, Damage: 3}, c.AbilityOf(domain.Queen))
	require.Equal(t, 32, c.MaxPlayers)
	require.False(t, c.FriendlyFire)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.json")
	body := `{"friendly_fire": true, "health": {"pawn": 6}, "bots": {"enabled": false}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.True(t, c.FriendlyFire)
	require.Equal(t, 6, c.Health[domain.Pawn])
	require.Equal(t, 15, c.Health[domain.King], "untouched entries keep their default")
	require.False(t, c.Bots.Enabled)
	require.Equal(t, 180.0, c.EventIntervalSeconds)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arena.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_players": 0, "codec": "xml"}`), 0o600))

	_, err := Load(path)
	require.ErrorContains(t, err, "max_players")
	require.ErrorContains(t, err, "codec")

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(map[string]string{
		"arena_max_players":   "8",
		"ARENA_FRIENDLY_FIRE": "true",
		"arena_kill_reward":   "25",
		"arena_codec":         "msgpack",
		"unrelated":           "x",
		"arena_unknown":       "1",
	})
	require.NoError(t, err)
	require.Equal(t, 8, c.MaxPlayers)
	require.True(t, c.FriendlyFire)
	require.EqualValues(t, 25, c.KillReward)
	require.Equal(t, "msgpack", c.Codec)

	err = c.ApplyEnv(map[string]string{"arena_tick_rate": "fast"})
	require.ErrorContains(t, err, "arena_tick_rate")
}

func TestCloneIsDeep(t *testing.T) {
	c := Default()
	d := c.Clone()
	d.Health[domain.Pawn] = 99
	d.Abilities[domain.Pawn] = Ability{}
	require.Equal(t, 5, c.Health[domain.Pawn])
	require.Equal(t, 2, c.Abilities[domain.Pawn].Damage)
}
