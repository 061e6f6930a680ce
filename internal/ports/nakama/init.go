package nakama

import (
	"context"
	"database/sql"

	"chessarena/internal/bot"
	"chessarena/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	if err := config.LoadGameConfig(env[envConfigPath]); err != nil {
		logger.Error("InitModule: Failed to load arena config: %v", err)
		return err
	}

	identitiesPath := env[envIdentitiesPath]
	if identitiesPath == "" {
		identitiesPath = config.GetGameConfig().Bots.IdentitiesPath
	}
	if identitiesPath == "" {
		identitiesPath = defaultIdentitiesPath
	}
	if err := bot.LoadIdentities(identitiesPath); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else {
		bot.ProvisionBots(ctx, nk, logger)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterMatch(MatchNameArena, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	}); err != nil {
		return err
	}

	logger.Info("Chess arena Go module loaded.")
	return nil
}
