package protocol

import "chessarena/internal/app"

// Outbound is an engine event mapped to its wire op code.
type Outbound struct {
	OpCode     int64
	Payload    any
	Recipients []string // empty means broadcast
}

var opByKind = map[app.EventKind]int64{
	app.EventAssignment:    OpAssignment,
	app.EventSnapshot:      OpSnapshot,
	app.EventUpdate:        OpUpdate,
	app.EventMoveRejected:  OpMoveRejected,
	app.EventGameEvent:     OpGameEvent,
	app.EventPlayerRespawn: OpPlayerRespawn,
	app.EventLootSpawn:     OpLootSpawn,
	app.EventLootCollect:   OpLootCollect,
	app.EventDefeat:        OpDefeat,
	app.EventAbilityUsed:   OpAbilityUsed,
}

// FromEvent maps an engine event to its outbound message. Unknown kinds report false.
func FromEvent(ev app.Event) (Outbound, bool) {
	op, ok := opByKind[ev.Kind]
	if !ok {
		return Outbound{}, false
	}
	return Outbound{OpCode: op, Payload: ev.Payload, Recipients: ev.Recipients}, true
}
