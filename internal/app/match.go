package app

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"chessarena/internal/config"
	"chessarena/internal/domain"
)

var (
	ErrMatchFull   = errors.New("match is full")
	ErrNotAssigned = errors.New("no pending assignment")
	ErrOnCooldown  = errors.New("ability on cooldown")
)

type respawnTimer struct {
	due float64
}

type healAura struct {
	team      domain.Team
	remaining float64
	carry     float64
}

// Match is the authoritative state of one arena. It is not safe for concurrent use:
// the owning loop (Nakama MatchLoop or the standalone room) serializes every call.
type Match struct {
	cfg      *config.GameConfig
	rng      *rand.Rand
	registry *domain.Registry
	slots    *domain.SlotPool
	pending  map[string]Assignment
	loot     map[string]*domain.LootItem
	neutrals map[string]*domain.NeutralEntity
	respawns map[string]respawnTimer
	auras    map[string]*healAura
	log      *eventLog
	newID    func() string

	elapsed       float64
	nextLootAt    float64
	nextEventAt   float64
	late          bool
	cooldownScale float64
	dirty         bool
}

// NewMatch constructs a Match with the provided config and rng. Nil arguments fall back to
// the defaults and a time-seeded source.
func NewMatch(cfg *config.GameConfig, rng *rand.Rand) *Match {
	if cfg == nil {
		cfg = config.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Match{
		cfg:           cfg,
		rng:           rng,
		registry:      domain.NewRegistry(cfg.HealthTable()),
		slots:         domain.NewSlotPool(),
		pending:       make(map[string]Assignment),
		loot:          make(map[string]*domain.LootItem),
		neutrals:      make(map[string]*domain.NeutralEntity),
		respawns:      make(map[string]respawnTimer),
		auras:         make(map[string]*healAura),
		log:           newEventLog(cfg.EventLogSize),
		newID:         uuid.NewString,
		nextLootAt:    cfg.LootIntervalSeconds,
		nextEventAt:   cfg.EventIntervalSeconds,
		cooldownScale: 1,
	}
}

// Config returns the settings the match runs with.
func (m *Match) Config() *config.GameConfig { return m.cfg }

// Elapsed returns the match clock in seconds.
func (m *Match) Elapsed() float64 { return m.elapsed }

// LateGame reports whether the surge phase has begun.
func (m *Match) LateGame() bool { return m.late }

// CooldownScale is the multiplier applied to new ability cooldowns.
func (m *Match) CooldownScale() float64 { return m.cooldownScale }

// PlayerCount returns registered plus pending players.
func (m *Match) PlayerCount() int { return m.registry.Count() + len(m.pending) }

// Has reports whether id is registered or holds a pending assignment.
func (m *Match) Has(id string) bool {
	if _, ok := m.pending[id]; ok {
		return true
	}
	_, ok := m.registry.Get(id)
	return ok
}

// LegalDestinations returns the squares the piece may currently move to.
func (m *Match) LegalDestinations(id string) []domain.Position {
	p, ok := m.registry.Get(id)
	if !ok || !p.Active() || p.Effects().Immobilized > 0 {
		return nil
	}
	return domain.LegalDestinations(m.registry, p)
}

func (m *Match) teamSize(team domain.Team) int {
	n := m.registry.CountTeam(team)
	for _, a := range m.pending {
		if a.Team == team {
			n++
		}
	}
	return n
}

// Register assigns a team, piece type and starting square to a new player. The assignment
// stays pending until ConfirmRegistration. Registering again while pending returns the same
// assignment.
func (m *Match) Register(id string) (Assignment, []Event, error) {
	if id == "" {
		return Assignment{}, nil, domain.ErrEmptyID
	}
	if a, ok := m.pending[id]; ok {
		return a, []Event{m.assignmentEvent(a)}, nil
	}
	if _, ok := m.registry.Get(id); ok {
		return Assignment{}, nil, fmt.Errorf("register %s: %w", id, domain.ErrDuplicateID)
	}
	if m.PlayerCount() >= m.cfg.MaxPlayers {
		return Assignment{}, nil, ErrMatchFull
	}

	team := domain.White
	if m.teamSize(domain.Black) < m.teamSize(domain.White) {
		team = domain.Black
	}

	a := Assignment{ID: id, Team: team}
	if kind, ok := m.drawSlotType(team); ok {
		slot, _ := m.slots.Reserve(id, team, kind)
		a.Type, a.Position, a.FromPool = slot.Type, slot.Position, true
	} else {
		pos, ok := m.randomSquare(m.spawnFree)
		if !ok {
			return Assignment{}, nil, fmt.Errorf("register %s: %w", id, domain.ErrNoSpace)
		}
		a.Type = domain.AllPieceTypes[m.rng.Intn(len(domain.AllPieceTypes))]
		a.Position = pos
	}
	a.HP = m.registry.BaseHealth(a.Type)
	m.pending[id] = a
	return a, []Event{m.assignmentEvent(a)}, nil
}

// drawSlotType picks a piece type weighted by the team's free starting slots.
func (m *Match) drawSlotType(team domain.Team) (domain.PieceType, bool) {
	free := m.slots.Free(team)
	total := 0
	for _, t := range domain.AllPieceTypes {
		total += free[t]
	}
	if total == 0 {
		return "", false
	}
	n := m.rng.Intn(total)
	for _, t := range domain.AllPieceTypes {
		if n < free[t] {
			return t, true
		}
		n -= free[t]
	}
	return "", false
}

func (m *Match) assignmentEvent(a Assignment) Event {
	return Event{Kind: EventAssignment, Payload: a, Recipients: []string{a.ID}}
}

// ConfirmRegistration places a pending assignment on the board. The server's assignment
// wins over the client's claim; overridden fields are listed in the welcome payload.
func (m *Match) ConfirmRegistration(id string, claim Claim) ([]Event, error) {
	a, ok := m.pending[id]
	if !ok {
		if _, live := m.registry.Get(id); live {
			return nil, fmt.Errorf("confirm %s: %w", id, domain.ErrDuplicateID)
		}
		return nil, fmt.Errorf("confirm %s: %w", id, ErrNotAssigned)
	}

	p, err := m.registry.Register(id, a.Type, a.Team, a.Position)
	if err != nil {
		return nil, err
	}
	delete(m.pending, id)
	m.log.add(m.elapsed, "%s joined as %s %s", id, a.Team, a.Type)

	var corrected []string
	if claim.Type != "" && claim.Type != a.Type {
		corrected = append(corrected, "type")
	}
	if claim.Team != "" && claim.Team != a.Team {
		corrected = append(corrected, "team")
	}
	if claim.Position != nil && *claim.Position != a.Position {
		corrected = append(corrected, "position")
	}
	if claim.HP != 0 && claim.HP != p.Health() {
		corrected = append(corrected, "hp")
	}

	return []Event{
		{
			Kind: EventSnapshot,
			Payload: WelcomePayload{
				Self:      m.viewOf(p),
				Corrected: corrected,
				Snapshot:  m.Snapshot(),
			},
			Recipients: []string{id},
		},
		m.updateEvent(),
	}, nil
}

// Move applies a move intent. A rejection is reported to the sender only, with the
// position to roll back to. Unknown ids are a no-op.
func (m *Match) Move(id string, dest domain.Position) ([]Event, error) {
	if _, ok := m.registry.Get(id); !ok {
		return nil, fmt.Errorf("move %s: %w", id, domain.ErrPieceNotFound)
	}
	err := m.registry.Move(id, dest, m.elapsed)
	var rej *domain.MoveRejection
	if errors.As(err, &rej) {
		return []Event{rejectionEvent(rej)}, err
	}
	if err != nil {
		return nil, err
	}
	return []Event{m.updateEvent()}, nil
}

// RejectMove refuses a move request that could not be decoded into a destination. The
// sender is told to stay where it is.
func (m *Match) RejectMove(id string, reason error) ([]Event, error) {
	p, ok := m.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("move %s: %w", id, domain.ErrPieceNotFound)
	}
	rej := &domain.MoveRejection{ID: id, Correct: p.Position(), Reason: reason}
	return []Event{rejectionEvent(rej)}, rej
}

func rejectionEvent(rej *domain.MoveRejection) Event {
	return Event{
		Kind: EventMoveRejected,
		Payload: MoveRejectedPayload{
			ID:              rej.ID,
			CorrectPosition: rej.Correct,
			Reason:          rej.Reason.Error(),
		},
		Recipients: []string{rej.ID},
	}
}

// Disconnect removes a player, releasing its starting slot and cancelling any pending
// respawn or heal aura.
func (m *Match) Disconnect(id string) ([]Event, error) {
	_, wasPending := m.pending[id]
	delete(m.pending, id)
	m.slots.Release(id)
	delete(m.respawns, id)
	delete(m.auras, id)

	if err := m.registry.Remove(id); err != nil {
		if wasPending {
			return nil, nil
		}
		return nil, fmt.Errorf("disconnect %s: %w", id, err)
	}
	m.log.add(m.elapsed, "%s left", id)
	return []Event{m.updateEvent()}, nil
}

// Log returns the retained event log, oldest first.
func (m *Match) Log() []LogEntry { return m.log.Tail() }

func sortedKeys[V any](in map[string]V) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
