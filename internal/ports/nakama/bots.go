package nakama

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"chessarena/internal/app"
	"chessarena/internal/bot"
	"chessarena/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	cfg := state.Config.Bots

	// 1. Top the arena up with bots once humans have waited long enough.
	if state.GetHumanPlayerCount() > 0 && state.Match.PlayerCount() < cfg.MinPlayers {
		if state.FillSince == 0 {
			state.FillSince = state.Tick
			logger.Debug("processBots: Arena under %d players, starting auto-fill timer.", cfg.MinPlayers)
		}

		if float64(state.Tick-state.FillSince) >= cfg.AutoFillDelaySeconds*float64(state.TickRate) {
			for state.Match.PlayerCount() < cfg.MinPlayers {
				if err := mh.addBot(ctx, state, dispatcher, logger); err != nil {
					logger.Warn("processBots: Failed to add bot: %v", err)
					break
				}
			}
			state.FillSince = 0
		}
	} else {
		state.FillSince = 0
	}

	// 2. Let each bot act on its own cadence.
	interval := int64(math.Max(1, math.Round(cfg.ActIntervalSeconds*float64(state.TickRate))))
	for _, id := range sortedBotIDs(state.Bots) {
		if state.Tick < state.BotNextAct[id] {
			continue
		}
		state.BotNextAct[id] = state.Tick + interval

		events, err := state.Bots[id].Act(state.Match)
		if err != nil {
			var rej *domain.MoveRejection
			if !errors.As(err, &rej) && !errors.Is(err, app.ErrOnCooldown) {
				logger.Warn("processBots: Bot %s failed to act: %v", id, err)
			}
		}
		mh.sendEvents(ctx, state, dispatcher, logger, events)
	}
}

// addBot registers and places one bot, skipping identities already in the arena.
func (mh *matchHandler) addBot(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) error {
	seq := state.BotSeq
	state.BotSeq++

	identity := bot.GetBotIdentity(seq)
	if identity.UserID == "" || state.Match.Has(identity.UserID) {
		identity.UserID = fmt.Sprintf("%s%d", bot.BotIDPrefix, seq)
	}
	strategy := identity.Strategy
	if strategy == "" {
		strategy = state.Config.Bots.Strategy
	}

	brain, err := bot.NewBrain(strategy, state.Rng)
	if err != nil {
		return err
	}

	if _, _, err := state.Match.Register(identity.UserID); err != nil {
		return err
	}
	events, err := state.Match.ConfirmRegistration(identity.UserID, app.Claim{})
	if err != nil {
		return err
	}

	state.Bots[identity.UserID] = &bot.Agent{ID: identity.UserID, Name: identity.DisplayName, Strategy: brain}
	state.BotNextAct[identity.UserID] = state.Tick + 1
	logger.Info("processBots: Added bot %s (%s) playing %s", identity.DisplayName, identity.UserID, brain.Name())

	mh.sendEvents(ctx, state, dispatcher, logger, events)
	return nil
}

// evictBot removes one bot to make room for a joining human.
func (mh *matchHandler) evictBot(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, humanID string) {
	ids := sortedBotIDs(state.Bots)
	if len(ids) == 0 {
		return
	}
	botID := ids[0]
	delete(state.Bots, botID)
	delete(state.BotNextAct, botID)

	events, err := state.Match.Disconnect(botID)
	if err != nil {
		logger.Warn("MatchJoin: Failed to remove bot %s: %v", botID, err)
		return
	}
	logger.Info("MatchJoin: Replacing bot %s with human %s", botID, humanID)
	mh.sendEvents(ctx, state, dispatcher, logger, events)
}

func sortedBotIDs(bots map[string]*bot.Agent) []string {
	ids := make([]string, 0, len(bots))
	for id := range bots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
