package protocol

// Op codes for client intents and server events.
const (
	// Client -> Server
	OpRegister            int64 = 1
	OpConfirmRegistration int64 = 2
	OpMove                int64 = 3
	OpAbility             int64 = 4

	// Server -> Client events
	OpAssignment    int64 = 100 // sent privately
	OpSnapshot      int64 = 101 // sent privately
	OpUpdate        int64 = 102
	OpMoveRejected  int64 = 103 // sent privately
	OpGameEvent     int64 = 104
	OpPlayerRespawn int64 = 105
	OpLootSpawn     int64 = 106
	OpLootCollect   int64 = 107
	OpDefeat        int64 = 108
	OpAbilityUsed   int64 = 109
)

// OpName returns a readable name for logging.
func OpName(op int64) string {
	switch op {
	case OpRegister:
		return "register"
	case OpConfirmRegistration:
		return "confirmRegistration"
	case OpMove:
		return "move"
	case OpAbility:
		return "ability"
	case OpAssignment:
		return "assignment"
	case OpSnapshot:
		return "snapshot"
	case OpUpdate:
		return "update"
	case OpMoveRejected:
		return "moveRejected"
	case OpGameEvent:
		return "gameEvent"
	case OpPlayerRespawn:
		return "playerRespawn"
	case OpLootSpawn:
		return "lootSpawn"
	case OpLootCollect:
		return "lootCollect"
	case OpDefeat:
		return "defeat"
	case OpAbilityUsed:
		return "abilityUsed"
	default:
		return "unknown"
	}
}
