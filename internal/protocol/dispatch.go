package protocol

import (
	"errors"
	"fmt"

	"chessarena/internal/app"
	"chessarena/internal/domain"
)

// ErrUnknownOp is returned for op codes that are not client intents.
var ErrUnknownOp = errors.New("unknown op code")

// Dispatch decodes one client intent and applies it to the match on behalf of sender.
// Events are returned even when err is non-nil so a move rejection still reaches its sender.
func Dispatch(m *app.Match, codec Codec, sender string, op int64, data []byte) ([]app.Event, error) {
	switch op {
	case OpRegister:
		_, events, err := m.Register(sender)
		return events, err

	case OpConfirmRegistration:
		var req ConfirmRequest
		if err := decodeBody(codec, data, &req); err != nil {
			return nil, err
		}
		return m.ConfirmRegistration(sender, app.Claim{
			Type:     domain.PieceType(req.Type),
			Team:     domain.Team(req.Team),
			Position: req.Position,
			HP:       req.HP,
		})

	case OpMove:
		var req MoveRequest
		if err := decodeBody(codec, data, &req); err != nil {
			return nil, err
		}
		if req.Position == nil {
			return m.RejectMove(sender, fmt.Errorf("%w: missing position", domain.ErrInvalidPosition))
		}
		return m.Move(sender, *req.Position)

	case OpAbility:
		var req AbilityRequest
		if err := decodeBody(codec, data, &req); err != nil {
			return nil, err
		}
		if req.Target == nil {
			return nil, fmt.Errorf("ability %s: %w: missing target", sender, domain.ErrInvalidPosition)
		}
		return m.UseAbility(sender, *req.Target, req.Damage)

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOp, op)
	}
}

func decodeBody(codec Codec, data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := codec.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
