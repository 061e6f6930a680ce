package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"chessarena/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting an arena with room.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

func quickMatchQuery() string {
	return fmt.Sprintf("+label.%s:T +label.%s:%s", labelKeyOpen, labelKeyGame, MatchNameArena)
}

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	limit := 10
	authoritative := true

	minSize := 1
	maxSize := config.GetGameConfig().MaxPlayers - 1

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery())
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Team and piece assignment happens in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameArena, map[string]interface{}{})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := QuickMatchResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
