package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// BotIDPrefix marks synthetic bot ids handed out when no identity file is loaded.
const BotIDPrefix = "bot-"

type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Strategy    string `json:"strategy"` // "hunter", "wanderer"
}

var (
	identitiesMu  sync.RWMutex
	botIdentities []BotIdentity
	botIDMap      map[string]BotIdentity
	loadOnce      sync.Once
	provisionOnce sync.Once
	loadErr       error
)

// LoadIdentities loads the bot profiles from the given path. Only the first call reads the file.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		var identities []BotIdentity
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}
		SetIdentities(identities)
	})
	return loadErr
}

// SetIdentities replaces the identity pool.
func SetIdentities(identities []BotIdentity) {
	identitiesMu.Lock()
	defer identitiesMu.Unlock()
	botIdentities = identities
	botIDMap = make(map[string]BotIdentity, len(identities))
	for _, identity := range identities {
		if identity.UserID != "" {
			botIDMap[identity.UserID] = identity
		}
	}
}

// ProvisionBots ensures that every identity with a device id has a Nakama account tagged as a bot.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		identitiesMu.RLock()
		pool := append([]BotIdentity(nil), botIdentities...)
		identitiesMu.RUnlock()

		for i := range pool {
			identity := &pool[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":   true,
				"strategy": identity.Strategy,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Strategy: %s", identity.DisplayName, userID, identity.Strategy)
		}
		SetIdentities(pool)
	})
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
func GetBotIdentity(index int) BotIdentity {
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()
	if len(botIdentities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("%s%d", BotIDPrefix, index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
		}
	}
	identity := botIdentities[index%len(botIdentities)]
	if identity.UserID == "" {
		identity.UserID = fmt.Sprintf("%s%d", BotIDPrefix, index)
	}
	return identity
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	if strings.HasPrefix(userID, BotIDPrefix) {
		return true
	}
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()
	_, ok := botIDMap[userID]
	return ok
}
