package domain

// LifeState is the lifecycle stage of a piece.
type LifeState string

const (
	// StateActive pieces are on the board and can act.
	StateActive LifeState = "active"
	// StateDefeated pieces dropped to zero health and await respawn handling.
	StateDefeated LifeState = "defeated"
	// StateRespawning pieces have a pending respawn timer.
	StateRespawning LifeState = "respawning"
	// StateSpectator pieces were defeated with respawn disabled. Terminal.
	StateSpectator LifeState = "spectator"
)

// StatusEffects holds the transient flags on a piece. Durations are seconds remaining.
type StatusEffects struct {
	Shield      float64 `json:"shield,omitempty"`
	DoubleMove  float64 `json:"doubleMove,omitempty"`
	Immobilized float64 `json:"immobilized,omitempty"`
	VineTrap    bool    `json:"vineTrap,omitempty"`
}

// Piece is a player-controlled unit. Mutation goes through Registry or the methods below
// so that type, team and position stay consistent with the occupancy index.
type Piece struct {
	id         string
	kind       PieceType
	team       Team
	pos        Position
	health     int
	cooldown   float64
	effects    StatusEffects
	state      LifeState
	lastMoveAt float64
}

func (p *Piece) ID() string             { return p.id }
func (p *Piece) Type() PieceType        { return p.kind }
func (p *Piece) Team() Team             { return p.team }
func (p *Piece) Position() Position     { return p.pos }
func (p *Piece) Health() int            { return p.health }
func (p *Piece) Cooldown() float64      { return p.cooldown }
func (p *Piece) Effects() StatusEffects { return p.effects }
func (p *Piece) State() LifeState       { return p.state }
func (p *Piece) LastMoveAt() float64    { return p.lastMoveAt }

// Active reports whether the piece is on the board and able to act.
func (p *Piece) Active() bool { return p.state == StateActive }

// SetCooldown starts an ability cooldown. Negative values clamp to zero.
func (p *Piece) SetCooldown(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	p.cooldown = seconds
}

// ScaleCooldown multiplies the remaining cooldown by factor.
func (p *Piece) ScaleCooldown(factor float64) {
	p.SetCooldown(p.cooldown * factor)
}

// GrantShield activates a one-hit shield for the given duration.
func (p *Piece) GrantShield(seconds float64) { p.effects.Shield = seconds }

// GrantDoubleMove lets the next move chain two legal steps within the given duration.
func (p *Piece) GrantDoubleMove(seconds float64) { p.effects.DoubleMove = seconds }

// Immobilize blocks movement for the given duration. A longer running immobilize is kept.
func (p *Piece) Immobilize(seconds float64) {
	if seconds > p.effects.Immobilized {
		p.effects.Immobilized = seconds
	}
}

// HoldVineTrap stores a vine trap for later use.
func (p *Piece) HoldVineTrap() { p.effects.VineTrap = true }

// ConsumeVineTrap clears a held vine trap and reports whether one was held.
func (p *Piece) ConsumeVineTrap() bool {
	held := p.effects.VineTrap
	p.effects.VineTrap = false
	return held
}

// Advance counts down the cooldown and effect timers by dt seconds, flooring at zero.
func (p *Piece) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	p.cooldown = countdown(p.cooldown, dt)
	p.effects.Shield = countdown(p.effects.Shield, dt)
	p.effects.DoubleMove = countdown(p.effects.DoubleMove, dt)
	p.effects.Immobilized = countdown(p.effects.Immobilized, dt)
}

func countdown(v, dt float64) float64 {
	v -= dt
	if v < 0 {
		return 0
	}
	return v
}
