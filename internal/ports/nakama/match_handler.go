package nakama

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"time"

	"chessarena/internal/app"
	"chessarena/internal/bot"
	"chessarena/internal/config"
	"chessarena/internal/domain"
	"chessarena/internal/ports"
	"chessarena/internal/protocol"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Match      *app.Match                  `json:"-"` // Arena engine
	Config     *config.GameConfig          `json:"-"`
	Codec      protocol.Codec              `json:"-"` // Payload encoding for every op code
	Tick       int64                       `json:"tick"`
	TickRate   int                         `json:"tick_rate"`
	Presences  map[string]runtime.Presence `json:"-"` // Map UserId -> Presence for targeted messaging
	Bots       map[string]*bot.Agent       `json:"-"` // Active bot agents
	BotNextAct map[string]int64            `json:"bot_next_act"`
	BotSeq     int                         `json:"bot_seq"`    // Next identity index handed to a bot
	FillSince  int64                       `json:"fill_since"` // Tick the auto-fill timer started, 0 when idle
	Economy    ports.EconomyPort           `json:"-"`          // Interface to Nakama wallet
	Rng        *rand.Rand                  `json:"-"`
	label      string
}

func newMatchState(cfg *config.GameConfig, codec protocol.Codec, rng *rand.Rand) *MatchState {
	return &MatchState{
		Match:      app.NewMatch(cfg, rng),
		Config:     cfg,
		Codec:      codec,
		TickRate:   cfg.TickRate,
		Presences:  make(map[string]runtime.Presence),
		Bots:       make(map[string]*bot.Agent),
		BotNextAct: make(map[string]int64),
		Rng:        rng,
	}
}

// GetHumanPlayerCount returns the number of connected humans.
func (ms *MatchState) GetHumanPlayerCount() int {
	return len(ms.Presences)
}

// IsFull reports whether no further player can be registered without evicting a bot.
func (ms *MatchState) IsFull() bool {
	return ms.Match.PlayerCount() >= ms.Config.MaxPlayers
}

// isBotUserId reports whether the given user id represents a bot.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

type matchHandler struct{}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing arena.")

	cfg := config.GetGameConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if err := cfg.ApplyEnv(env); err != nil {
			logger.Warn("MatchInit: Ignoring invalid env overrides: %v", err)
			cfg = config.GetGameConfig()
		}
	}

	codec, err := protocol.CodecByName(cfg.Codec)
	if err != nil {
		logger.Warn("MatchInit: %v, falling back to json", err)
		codec = protocol.JSONCodec{}
	}

	state := newMatchState(cfg, codec, rand.New(rand.NewSource(time.Now().UnixNano())))
	if nk != nil {
		state.Economy = NewNakamaEconomyAdapter(nk)
	}

	label, err := buildLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	state.label = label

	logger.Info("MatchInit: Arena ready (tick_rate=%d, max_players=%d, codec=%s)", state.TickRate, cfg.MaxPlayers, codec.Name())
	return state, state.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Rejoining players keep their piece.
	if matchState.Match.Has(presence.GetUserId()) {
		return matchState, true, ""
	}
	if matchState.IsFull() && len(matchState.Bots) == 0 {
		return matchState, false, "Match full"
	}
	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if view, live := matchState.Match.Piece(userID); live {
			logger.Debug("MatchJoin: User %s rejoined as %s %s.", userID, view.Team, view.Type)
			mh.sendEvents(ctx, matchState, dispatcher, logger, []app.Event{{
				Kind:       app.EventSnapshot,
				Payload:    app.WelcomePayload{Self: view, Snapshot: matchState.Match.Snapshot()},
				Recipients: []string{userID},
			}})
			continue
		}

		if matchState.IsFull() {
			mh.evictBot(ctx, matchState, dispatcher, logger, userID)
		}

		_, events, err := matchState.Match.Register(userID)
		if err != nil {
			logger.Warn("MatchJoin: User %s could not be registered: %v", userID, err)
			continue
		}
		mh.sendEvents(ctx, matchState, dispatcher, logger, events)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		events, err := matchState.Match.Disconnect(userID)
		if err != nil {
			logger.Warn("MatchLeave: %v", err)
			continue
		}
		logger.Debug("MatchLeave: User %s left.", userID)
		mh.sendEvents(ctx, matchState, dispatcher, logger, events)
	}

	if matchState.GetHumanPlayerCount() == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		userID := msg.GetUserId()
		events, err := protocol.Dispatch(matchState.Match, matchState.Codec, userID, msg.GetOpCode(), msg.GetData())
		if err != nil {
			logIntentError(logger, userID, msg.GetOpCode(), err)
		}
		mh.sendEvents(ctx, matchState, dispatcher, logger, events)
	}

	if matchState.Config.Bots.Enabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	dt := 1 / float64(matchState.TickRate)
	mh.sendEvents(ctx, matchState, dispatcher, logger, matchState.Match.Tick(dt))
	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

// logIntentError keeps ordinary game rejections at debug level.
func logIntentError(logger runtime.Logger, userID string, op int64, err error) {
	var rej *domain.MoveRejection
	switch {
	case errors.Is(err, protocol.ErrUnknownOp):
		logger.Warn("MatchLoop: Unknown opcode received from %s: %d", userID, op)
	case errors.As(err, &rej), errors.Is(err, app.ErrOnCooldown):
		logger.Debug("MatchLoop: %s rejected for %s: %v", protocol.OpName(op), userID, err)
	default:
		logger.Warn("MatchLoop: %s from %s failed: %v", protocol.OpName(op), userID, err)
	}
}

// sendEvents encodes app events and dispatches them, crediting kill rewards along the way.
func (mh *matchHandler) sendEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	var rewards []ports.WalletUpdate
	for _, ev := range events {
		if ev.Kind == app.EventDefeat {
			if update, ok := killReward(ctx, state, ev.Payload); ok {
				rewards = append(rewards, update)
			}
		}
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}

	if len(rewards) > 0 && state.Economy != nil {
		if err := state.Economy.UpdateBalances(ctx, rewards); err != nil {
			logger.Error("Failed to credit kill rewards: %v", err)
		}
	}
}

// killReward returns the wallet credit for a human defeating another piece with an ability.
func killReward(ctx context.Context, state *MatchState, payload any) (ports.WalletUpdate, bool) {
	p, ok := payload.(app.DefeatPayload)
	if !ok || p.Cause != app.CauseAbility || p.AttackerID == "" || state.Config.KillReward == 0 {
		return ports.WalletUpdate{}, false
	}
	if isBotUserId(p.AttackerID) {
		return ports.WalletUpdate{}, false
	}
	return ports.WalletUpdate{
		UserID: p.AttackerID,
		Amount: state.Config.KillReward,
		Metadata: map[string]interface{}{
			"match_id": ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
			"reason":   "kill",
			"victim":   p.ID,
		},
	}, true
}

// broadcastEvent handles the conversion and dispatching of one app event to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	out, ok := protocol.FromEvent(ev)
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := state.Codec.Marshal(out.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(out.Recipients) > 0 {
		for _, uid := range out.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// Private events for bots have no connected recipient and must not fall back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(out.OpCode, bytes, recipients, nil, true); err != nil {
		logger.Warn("Failed to send %s: %v", protocol.OpName(out.OpCode), err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated (grace %ds)", graceSeconds)
	return state
}

// MatchSignal triggers a scheduled game event by name, e.g. "lootShower".
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, "state not found"
	}

	kind := app.GameEventType(data)
	switch kind {
	case app.GameEventLootShower, app.GameEventKingsBlessing, app.GameEventWildSprout, app.GameEventSurge:
	default:
		return matchState, "unknown event"
	}

	logger.Info("MatchSignal: Triggering %s", kind)
	events := matchState.Match.TriggerEvent(kind)
	events = append(events, matchState.Match.Flush()...)
	mh.sendEvents(ctx, matchState, dispatcher, logger, events)
	return matchState, "ok"
}
