package domain

import (
	"fmt"
	"sort"
)

// DamageResult describes the outcome of ApplyDamage.
type DamageResult struct {
	Health   int
	Absorbed bool
	Defeated bool
	// Ignored is set when the piece was not active and nothing changed.
	Ignored bool
}

// Registry owns the live pieces of a match and the index of active pieces per square.
// It is not safe for concurrent use; the match loop serializes all access.
type Registry struct {
	health HealthTable
	pieces map[string]*Piece
	tiles  map[Position]map[string]*Piece
}

// NewRegistry creates an empty registry using health for base HP. A nil table uses DefaultHealth.
func NewRegistry(health HealthTable) *Registry {
	if health == nil {
		health = DefaultHealth
	}
	return &Registry{
		health: health,
		pieces: make(map[string]*Piece),
		tiles:  make(map[Position]map[string]*Piece),
	}
}

// BaseHealth returns the configured base HP for t.
func (r *Registry) BaseHealth(t PieceType) int { return r.health.Of(t) }

// Register creates an active piece with base health at pos.
func (r *Registry) Register(id string, kind PieceType, team Team, pos Position) (*Piece, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if _, ok := r.pieces[id]; ok {
		return nil, fmt.Errorf("register %s: %w", id, ErrDuplicateID)
	}
	if _, ok := moveRules[kind]; !ok {
		return nil, fmt.Errorf("register %s as %q: %w", id, kind, ErrUnknownType)
	}
	if _, ok := ParseTeam(string(team)); !ok {
		return nil, fmt.Errorf("register %s: unknown team %q", id, team)
	}
	if !IsValidPosition(pos) {
		return nil, fmt.Errorf("register %s at %s: %w", id, pos, ErrInvalidPosition)
	}

	p := &Piece{
		id:     id,
		kind:   kind,
		team:   team,
		pos:    pos,
		health: r.health.Of(kind),
		state:  StateActive,
	}
	r.pieces[id] = p
	r.index(p)
	return p, nil
}

// Get returns the piece with id.
func (r *Registry) Get(id string) (*Piece, bool) {
	p, ok := r.pieces[id]
	return p, ok
}

// Pieces returns every registered piece sorted by id.
func (r *Registry) Pieces() []*Piece {
	out := make([]*Piece, 0, len(r.pieces))
	for _, p := range r.pieces {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Count returns the number of registered pieces in any state.
func (r *Registry) Count() int { return len(r.pieces) }

// CountTeam returns the number of registered pieces on team.
func (r *Registry) CountTeam(team Team) int {
	n := 0
	for _, p := range r.pieces {
		if p.team == team {
			n++
		}
	}
	return n
}

// PiecesAt implements Occupancy over the active pieces.
func (r *Registry) PiecesAt(pos Position) []*Piece {
	tile := r.tiles[pos]
	if len(tile) == 0 {
		return nil
	}
	out := make([]*Piece, 0, len(tile))
	for _, p := range tile {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Move relocates an active piece along a legal move. Any failure is a *MoveRejection.
// A pending double move is consumed by the move.
func (r *Registry) Move(id string, dest Position, now float64) error {
	p, ok := r.pieces[id]
	if !ok {
		return ErrPieceNotFound
	}
	reject := func(reason error) error {
		return &MoveRejection{ID: id, Correct: p.pos, Reason: reason}
	}
	switch {
	case !p.Active():
		return reject(ErrNotActive)
	case !IsValidPosition(dest):
		return reject(ErrInvalidPosition)
	case p.effects.Immobilized > 0:
		return reject(ErrImmobilized)
	case !IsLegalMove(r, p, dest):
		return reject(ErrIllegalMove)
	}

	r.unindex(p)
	p.pos = dest
	r.index(p)
	p.lastMoveAt = now
	p.effects.DoubleMove = 0
	return nil
}

// ApplyDamage subtracts amount from an active piece. An active shield absorbs the whole hit
// and is cleared. Reaching zero health moves the piece to StateDefeated and removes it from
// the board index; this is reported exactly once.
func (r *Registry) ApplyDamage(id string, amount int) (DamageResult, error) {
	p, ok := r.pieces[id]
	if !ok {
		return DamageResult{}, ErrPieceNotFound
	}
	if !p.Active() {
		return DamageResult{Health: p.health, Ignored: true}, nil
	}
	if amount <= 0 {
		return DamageResult{Health: p.health}, nil
	}
	if p.effects.Shield > 0 {
		p.effects.Shield = 0
		return DamageResult{Health: p.health, Absorbed: true}, nil
	}

	p.health -= amount
	if p.health > 0 {
		return DamageResult{Health: p.health}, nil
	}
	p.health = 0
	p.state = StateDefeated
	r.unindex(p)
	return DamageResult{Health: 0, Defeated: true}, nil
}

// Heal raises an active piece's health by amount without exceeding ceiling.
// A piece already above ceiling keeps its health. Returns the resulting health.
func (r *Registry) Heal(id string, amount, ceiling int) (int, error) {
	p, ok := r.pieces[id]
	if !ok {
		return 0, ErrPieceNotFound
	}
	if !p.Active() || amount <= 0 || p.health >= ceiling {
		return p.health, nil
	}
	p.health += amount
	if p.health > ceiling {
		p.health = ceiling
	}
	return p.health, nil
}

// Remove deletes a piece and frees its square.
func (r *Registry) Remove(id string) error {
	p, ok := r.pieces[id]
	if !ok {
		return ErrPieceNotFound
	}
	r.unindex(p)
	delete(r.pieces, id)
	return nil
}

// MarkRespawning moves a defeated piece into StateRespawning.
func (r *Registry) MarkRespawning(id string) error {
	return r.transition(id, StateDefeated, StateRespawning)
}

// MarkSpectator moves a defeated piece into the terminal StateSpectator.
func (r *Registry) MarkSpectator(id string) error {
	return r.transition(id, StateDefeated, StateSpectator)
}

func (r *Registry) transition(id string, from, to LifeState) error {
	p, ok := r.pieces[id]
	if !ok {
		return ErrPieceNotFound
	}
	if p.state != from {
		return fmt.Errorf("%s is %s, want %s: %w", id, p.state, from, ErrNotActive)
	}
	p.state = to
	return nil
}

// Revive returns a respawning piece to the board at pos with base health and no effects.
func (r *Registry) Revive(id string, pos Position) (*Piece, error) {
	p, ok := r.pieces[id]
	if !ok {
		return nil, ErrPieceNotFound
	}
	if p.state != StateRespawning {
		return nil, fmt.Errorf("revive %s from %s: %w", id, p.state, ErrNotActive)
	}
	if !IsValidPosition(pos) {
		return nil, fmt.Errorf("revive %s at %s: %w", id, pos, ErrInvalidPosition)
	}
	p.pos = pos
	p.health = r.health.Of(p.kind)
	p.cooldown = 0
	p.effects = StatusEffects{}
	p.state = StateActive
	r.index(p)
	return p, nil
}

func (r *Registry) index(p *Piece) {
	tile, ok := r.tiles[p.pos]
	if !ok {
		tile = make(map[string]*Piece, 1)
		r.tiles[p.pos] = tile
	}
	tile[p.id] = p
}

func (r *Registry) unindex(p *Piece) {
	tile, ok := r.tiles[p.pos]
	if !ok {
		return
	}
	delete(tile, p.id)
	if len(tile) == 0 {
		delete(r.tiles, p.pos)
	}
}
