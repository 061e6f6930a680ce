package nakama

import (
	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// buildLabel renders the match label queried by matchmaking, e.g.
// {"game":"chess_arena","late":false,"open":true,"players":3}.
func buildLabel(state *MatchState) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		labelKeyOpen:    !state.IsFull(),
		labelKeyGame:    MatchNameArena,
		labelKeyPlayers: state.Match.PlayerCount(),
		labelKeyLate:    state.Match.LateGame(),
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

// updateLabel pushes the label to Nakama when it changed since the last push.
func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if label == state.label {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.label = label
}
