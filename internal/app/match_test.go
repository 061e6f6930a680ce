package app

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"chessarena/internal/config"
	"chessarena/internal/domain"
)

func newTestMatch(t *testing.T, mutate func(*config.GameConfig)) *Match {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	m := NewMatch(cfg, rand.New(rand.NewSource(7)))
	n := 0
	m.newID = func() string {
		n++
		return fmt.Sprintf("%03d", n)
	}
	return m
}

func place(t *testing.T, m *Match, id string, kind domain.PieceType, team domain.Team, pos domain.Position) *domain.Piece {
	t.Helper()
	p, err := m.registry.Register(id, kind, team, pos)
	if err != nil {
		t.Fatalf("place %s: %v", id, err)
	}
	return p
}

func eventsOf(events []Event, kind EventKind) []Event {
	var out []Event
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestRegisterBalancesTeams(t *testing.T) {
	m := newTestMatch(t, nil)
	want := []domain.Team{domain.White, domain.Black, domain.White, domain.Black, domain.White}
	for i, team := range want {
		id := fmt.Sprintf("p%d", i)
		a, events, err := m.Register(id)
		if err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
		if a.Team != team {
			t.Errorf("%s team = %s, want %s", id, a.Team, team)
		}
		if !a.FromPool || a.HP != domain.DefaultHealth[a.Type] {
			t.Errorf("%s assignment = %+v", id, a)
		}
		if len(events) != 1 || events[0].Kind != EventAssignment || events[0].Recipients[0] != id {
			t.Errorf("%s events = %+v", id, events)
		}
	}
	if m.PlayerCount() != len(want) {
		t.Errorf("player count = %d", m.PlayerCount())
	}
}

func TestRegisterIsIdempotentWhilePending(t *testing.T) {
	m := newTestMatch(t, nil)
	first, _, _ := m.Register("a")
	again, _, err := m.Register("a")
	if err != nil || again != first {
		t.Errorf("re-register = %+v, %v", again, err)
	}
	if _, err := m.ConfirmRegistration("a", Claim{}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, _, err := m.Register("a"); !errors.Is(err, domain.ErrDuplicateID) {
		t.Errorf("register live id = %v", err)
	}
}

func TestRegisterRespectsMaxPlayers(t *testing.T) {
	m := newTestMatch(t, func(c *config.GameConfig) { c.MaxPlayers = 2 })
	for _, id := range []string{"a", "b"} {
		if _, _, err := m.Register(id); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	if _, _, err := m.Register("c"); !errors.Is(err, ErrMatchFull) {
		t.Errorf("expected ErrMatchFull, got %v", err)
	}
}

func TestRegisterFallsBackWhenPoolExhausted(t *testing.T) {
	m := newTestMatch(t, func(c *config.GameConfig) { c.MaxPlayers = 40 })
	counts := map[domain.Team]map[domain.PieceType]int{domain.White: {}, domain.Black: {}}
	for i := 0; i < 32; i++ {
		a, _, err := m.Register(fmt.Sprintf("p%02d", i))
		if err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
		if !a.FromPool {
			t.Fatalf("player %d should come from the pool", i)
		}
		counts[a.Team][a.Type]++
	}
	if counts[domain.White][domain.Pawn] != 8 || counts[domain.Black][domain.King] != 1 {
		t.Errorf("pool draw counts = %v", counts)
	}

	a, _, err := m.Register("extra")
	if err != nil {
		t.Fatalf("register extra: %v", err)
	}
	if a.FromPool || !domain.IsValidPosition(a.Position) {
		t.Errorf("extra assignment = %+v", a)
	}
}

func TestConfirmRegistration(t *testing.T) {
	m := newTestMatch(t, nil)
	a, _, _ := m.Register("a")

	wrong := domain.Position{X: 0, Z: 3}
	events, err := m.ConfirmRegistration("a", Claim{Type: "dragon", Team: a.Team, Position: &wrong, HP: 99})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %+v", events)
	}
	welcome, ok := events[0].Payload.(WelcomePayload)
	if !ok || events[0].Recipients[0] != "a" {
		t.Fatalf("first event = %+v", events[0])
	}
	if welcome.Self.Position != a.Position || welcome.Self.Type != a.Type {
		t.Errorf("server assignment should win: %+v", welcome.Self)
	}
	if fmt.Sprint(welcome.Corrected) != "[type position hp]" {
		t.Errorf("corrected = %v", welcome.Corrected)
	}
	if len(welcome.Snapshot.Pieces) != 1 || len(welcome.Snapshot.Log) != 1 {
		t.Errorf("snapshot = %+v", welcome.Snapshot)
	}
	if events[1].Kind != EventUpdate || len(events[1].Recipients) != 0 {
		t.Errorf("second event should be a broadcast update: %+v", events[1])
	}

	if _, err := m.ConfirmRegistration("ghost", Claim{}); !errors.Is(err, ErrNotAssigned) {
		t.Errorf("confirm unknown = %v", err)
	}
}

func TestMoveAcceptedAndRejected(t *testing.T) {
	m := newTestMatch(t, nil)
	place(t, m, "p", domain.Pawn, domain.White, domain.Position{X: 4, Z: 6})

	events, err := m.Move("p", domain.Position{X: 4, Z: 4})
	if err != nil || len(events) != 1 || events[0].Kind != EventUpdate {
		t.Fatalf("accepted move = %+v, %v", events, err)
	}

	events, err = m.Move("p", domain.Position{X: 4, Z: 1})
	var rej *domain.MoveRejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if len(events) != 1 || events[0].Kind != EventMoveRejected {
		t.Fatalf("rejected move events = %+v", events)
	}
	payload := events[0].Payload.(MoveRejectedPayload)
	if payload.CorrectPosition != (domain.Position{X: 4, Z: 4}) || events[0].Recipients[0] != "p" || len(events[0].Recipients) != 1 {
		t.Errorf("rejection = %+v to %v", payload, events[0].Recipients)
	}

	events, err = m.Move("ghost", domain.Position{})
	if !errors.Is(err, domain.ErrPieceNotFound) || events != nil {
		t.Errorf("unknown move = %+v, %v", events, err)
	}
}

func TestAbilityDamageAndCooldown(t *testing.T) {
	m := newTestMatch(t, nil)
	place(t, m, "pawn", domain.Pawn, domain.White, domain.Position{X: 3, Z: 4})
	rook := place(t, m, "rook", domain.Rook, domain.Black, domain.Position{X: 4, Z: 3})
	ally := place(t, m, "ally", domain.Knight, domain.White, domain.Position{X: 4, Z: 3})

	events, err := m.UseAbility("pawn", domain.Position{X: 4, Z: 3}, 9)
	if err != nil {
		t.Fatalf("ability: %v", err)
	}
	used := eventsOf(events, EventAbilityUsed)[0].Payload.(AbilityUsedPayload)
	if used.Damage != 2 || used.DeclaredDamage != 9 || len(used.Hits) != 1 {
		t.Errorf("ability payload = %+v", used)
	}
	if rook.Health() != 5 || ally.Health() != 7 {
		t.Errorf("rook=%d ally=%d", rook.Health(), ally.Health())
	}

	p, _ := m.registry.Get("pawn")
	if p.Cooldown() != 5 {
		t.Errorf("cooldown = %v", p.Cooldown())
	}
	events, err = m.UseAbility("pawn", domain.Position{X: 4, Z: 3}, 2)
	if !errors.Is(err, ErrOnCooldown) || events != nil {
		t.Errorf("second use = %+v, %v", events, err)
	}
	if rook.Health() != 5 {
		t.Error("rejected ability must not deal damage")
	}
}

func TestFriendlyFire(t *testing.T) {
	m := newTestMatch(t, func(c *config.GameConfig) { c.FriendlyFire = true })
	place(t, m, "a", domain.Queen, domain.White, domain.Position{X: 0, Z: 0})
	ally := place(t, m, "b", domain.Knight, domain.White, domain.Position{X: 1, Z: 1})
	if _, err := m.UseAbility("a", domain.Position{X: 1, Z: 1}, 3); err != nil {
		t.Fatalf("ability: %v", err)
	}
	if ally.Health() != 4 {
		t.Errorf("ally health = %d", ally.Health())
	}
}

func TestAbilityNeverHitsAttacker(t *testing.T) {
	m := newTestMatch(t, func(c *config.GameConfig) { c.FriendlyFire = true })
	attacker := place(t, m, "a", domain.Queen, domain.White, domain.Position{X: 3, Z: 3})
	ally := place(t, m, "b", domain.Knight, domain.White, domain.Position{X: 3, Z: 3})
	if _, err := m.UseAbility("a", domain.Position{X: 3, Z: 3}, 3); err != nil {
		t.Fatalf("ability: %v", err)
	}
	if attacker.Health() != m.registry.BaseHealth(domain.Queen) {
		t.Errorf("attacker health = %d", attacker.Health())
	}
	if ally.Health() != m.registry.BaseHealth(domain.Knight)-3 {
		t.Errorf("ally health = %d", ally.Health())
	}
}

func TestDefeatFiresOnceAndRespawns(t *testing.T) {
	m := newTestMatch(t, func(c *config.GameConfig) {
		c.Abilities[domain.Queen] = config.Ability{CooldownSeconds: 0, Damage: 20}
	})
	place(t, m, "q", domain.Queen, domain.Black, domain.Position{X: 3, Z: 0})
	king := place(t, m, "k", domain.King, domain.White, domain.Position{X: 4, Z: 7})

	events, _ := m.UseAbility("q", domain.Position{X: 4, Z: 7}, 20)
	defeats := eventsOf(events, EventDefeat)
	if len(defeats) != 1 {
		t.Fatalf("defeats = %+v", defeats)
	}
	d := defeats[0].Payload.(DefeatPayload)
	if d.ID != "k" || d.AttackerID != "q" || !d.Respawning || d.RespawnIn != 5 {
		t.Errorf("defeat = %+v", d)
	}
	if king.Health() != 0 || king.State() != domain.StateRespawning || !m.PendingRespawn("k") {
		t.Fatalf("king hp=%d state=%s", king.Health(), king.State())
	}

	events, _ = m.UseAbility("q", domain.Position{X: 4, Z: 7}, 20)
	if len(eventsOf(events, EventDefeat)) != 0 {
		t.Error("a defeated piece must not be defeated again")
	}

	if got := eventsOf(m.Tick(4.9), EventPlayerRespawn); len(got) != 0 {
		t.Fatalf("respawned early: %+v", got)
	}
	respawns := eventsOf(m.Tick(0.2), EventPlayerRespawn)
	if len(respawns) != 1 {
		t.Fatalf("respawns = %+v", respawns)
	}
	r := respawns[0].Payload.(PlayerRespawnPayload)
	if r.HP != 15 || !king.Active() || king.Position() != r.Position || m.PendingRespawn("k") {
		t.Errorf("respawn = %+v king=%s", r, king.State())
	}
}

func TestSpectatorWhenRespawnDisabled(t *testing.T) {
	m := newTestMatch(t, func(c *config.GameConfig) { c.RespawnEnabled = false })
	place(t, m, "r", domain.Rook, domain.White, domain.Position{X: 0, Z: 7})
	pawn := place(t, m, "p", domain.Pawn, domain.Black, domain.Position{X: 0, Z: 5})
	_, _ = m.registry.ApplyDamage("p", 2)

	events, _ := m.UseAbility("r", domain.Position{X: 0, Z: 5}, 3)
	if d := eventsOf(events, EventDefeat); len(d) != 1 || d[0].Payload.(DefeatPayload).Respawning {
		t.Fatalf("defeat events = %+v", d)
	}
	if pawn.State() != domain.StateSpectator || m.PendingRespawn("p") {
		t.Errorf("state = %s", pawn.State())
	}
}

func TestDisconnectDuringRespawnDoesNotResurrect(t *testing.T) {
	m := newTestMatch(t, nil)
	place(t, m, "r", domain.Rook, domain.White, domain.Position{X: 0, Z: 7})
	place(t, m, "p", domain.Pawn, domain.Black, domain.Position{X: 0, Z: 5})
	_, _ = m.registry.ApplyDamage("p", 4)
	_, _ = m.UseAbility("r", domain.Position{X: 0, Z: 5}, 3)
	if !m.PendingRespawn("p") {
		t.Fatal("respawn should be pending")
	}

	if _, err := m.Disconnect("p"); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if m.PendingRespawn("p") {
		t.Error("disconnect should cancel the respawn")
	}
	events := m.Tick(10)
	if len(eventsOf(events, EventPlayerRespawn)) != 0 || m.Has("p") {
		t.Error("removed piece must not come back")
	}

	if _, err := m.Disconnect("p"); !errors.Is(err, domain.ErrPieceNotFound) {
		t.Errorf("second disconnect = %v", err)
	}
}

func TestDisconnectReleasesSlot(t *testing.T) {
	m := newTestMatch(t, nil)
	a, _, _ := m.Register("a")
	if _, err := m.ConfirmRegistration("a", Claim{}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	before := m.slots.Remaining(a.Team)
	events, err := m.Disconnect("a")
	if err != nil || len(eventsOf(events, EventUpdate)) != 1 {
		t.Fatalf("disconnect = %+v, %v", events, err)
	}
	if m.slots.Remaining(a.Team) != before+1 {
		t.Error("slot should be released")
	}

	_, _, _ = m.Register("b")
	if events, err := m.Disconnect("b"); err != nil || events != nil {
		t.Errorf("pending disconnect = %+v, %v", events, err)
	}
	if m.PlayerCount() != 0 {
		t.Errorf("player count = %d", m.PlayerCount())
	}
}

func TestTickWithoutChangesIsQuiet(t *testing.T) {
	m := newTestMatch(t, nil)
	place(t, m, "k", domain.King, domain.White, domain.Position{X: 4, Z: 7})
	if events := m.Tick(0.1); len(events) != 0 {
		t.Errorf("idle tick events = %+v", events)
	}
	if events := m.Tick(0); events != nil {
		t.Errorf("zero tick events = %+v", events)
	}
}
