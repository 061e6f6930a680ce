package protocol

import "chessarena/internal/domain"

// RegisterRequest asks for a piece assignment. The transport decides the player id;
// an id in the payload is only used for diagnostics.
type RegisterRequest struct {
	ID string `json:"id,omitempty"`
}

// ConfirmRequest finalizes a registration with what the client believes it was assigned.
type ConfirmRequest struct {
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type,omitempty"`
	Team     string           `json:"team,omitempty"`
	Position *domain.Position `json:"position,omitempty"`
	HP       int              `json:"hp,omitempty"`
}

// MoveRequest asks to move to Position. A request without a position is rejected.
type MoveRequest struct {
	ID       string           `json:"id,omitempty"`
	Position *domain.Position `json:"position"`
}

type AbilityRequest struct {
	ID     string           `json:"id,omitempty"`
	Target *domain.Position `json:"target"`
	Damage int              `json:"damage"`
}
