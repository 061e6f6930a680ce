package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create an arena with room.
	RpcQuickMatch = "quick_match"

	// MatchNameArena is the authoritative match handler name registered with Nakama.
	MatchNameArena = "chess_arena"
)

// Match label keys, queried by RpcQuickMatch.
const (
	labelKeyOpen    = "open"
	labelKeyGame    = "game"
	labelKeyPlayers = "players"
	labelKeyLate    = "late"
)

// Runtime environment keys read from the Nakama config.
const (
	envConfigPath     = "arena_config_path"
	envIdentitiesPath = "arena_bot_identities_path"
)

const defaultIdentitiesPath = "data/bot_identities.json"
