package app

import (
	"fmt"
	"math/rand"
	"testing"

	"chessarena/internal/config"
	"chessarena/internal/domain"
)

func fillBoard(t *testing.T, m *Match) {
	t.Helper()
	for z := 0; z < domain.BoardSize; z++ {
		for x := 0; x < domain.BoardSize; x++ {
			team := domain.White
			if z < domain.BoardSize/2 {
				team = domain.Black
			}
			place(t, m, fmt.Sprintf("f%d%d", x, z), domain.Pawn, team, domain.Position{X: x, Z: z})
		}
	}
}

func TestLootSchedulerSkipsFullBoard(t *testing.T) {
	m := newTestMatch(t, nil)
	fillBoard(t, m)
	events := m.Tick(m.cfg.LootIntervalSeconds)
	if got := eventsOf(events, EventLootSpawn); len(got) != 0 {
		t.Errorf("loot spawned on a full board: %+v", got)
	}
	if len(m.Loot()) != 0 {
		t.Errorf("loot = %+v", m.Loot())
	}
}

func TestLootSchedulerSpawnsOnEmptySquare(t *testing.T) {
	m := newTestMatch(t, nil)
	place(t, m, "k", domain.King, domain.White, domain.Position{X: 4, Z: 7})
	if got := eventsOf(m.Tick(m.cfg.LootIntervalSeconds-1), EventLootSpawn); len(got) != 0 {
		t.Fatalf("loot spawned early: %+v", got)
	}
	events := m.Tick(1)
	spawns := eventsOf(events, EventLootSpawn)
	if len(spawns) != 1 {
		t.Fatalf("spawns = %+v", spawns)
	}
	item := spawns[0].Payload.(LootSpawnPayload).Item
	if item.Position == (domain.Position{X: 4, Z: 7}) || !domain.IsValidPosition(item.Position) {
		t.Errorf("loot on %v", item.Position)
	}
	wantDuration := 5.0
	if item.Type == domain.LootPetalShield {
		wantDuration = 10
	}
	if item.Duration != wantDuration || item.ID != "loot-001" {
		t.Errorf("item = %+v", item)
	}
	if len(eventsOf(events, EventUpdate)) != 1 {
		t.Error("spawn should broadcast an update")
	}
}

func TestLootCollection(t *testing.T) {
	tests := []struct {
		kind  domain.LootType
		check func(fx domain.StatusEffects) bool
	}{
		{domain.LootDoubleMove, func(fx domain.StatusEffects) bool { return fx.DoubleMove > 0 }},
		{domain.LootPetalShield, func(fx domain.StatusEffects) bool { return fx.Shield > 9 }},
		{domain.LootVineTrap, func(fx domain.StatusEffects) bool { return fx.VineTrap }},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			m := newTestMatch(t, nil)
			b := place(t, m, "b", domain.Bishop, domain.White, domain.Position{X: 2, Z: 2})
			a := place(t, m, "a", domain.Bishop, domain.Black, domain.Position{X: 2, Z: 2})
			m.loot["loot-x"] = &domain.LootItem{ID: "loot-x", Type: tt.kind, Position: domain.Position{X: 2, Z: 2}, Duration: 10}

			collects := eventsOf(m.Tick(0.1), EventLootCollect)
			if len(collects) != 1 {
				t.Fatalf("collects = %+v", collects)
			}
			if got := collects[0].Payload.(LootCollectPayload); got.PieceID != "a" || got.LootID != "loot-x" {
				t.Errorf("collect = %+v", got)
			}
			if !tt.check(a.Effects()) || b.Effects() != (domain.StatusEffects{}) {
				t.Errorf("effects a=%+v b=%+v", a.Effects(), b.Effects())
			}
			if len(m.Loot()) != 0 {
				t.Error("collected loot should be removed")
			}
		})
	}
}

func TestVineTrapImmobilizesTargets(t *testing.T) {
	m := newTestMatch(t, nil)
	attacker := place(t, m, "a", domain.Bishop, domain.White, domain.Position{X: 2, Z: 7})
	target := place(t, m, "t", domain.Rook, domain.Black, domain.Position{X: 4, Z: 5})
	attacker.HoldVineTrap()

	events, err := m.UseAbility("a", target.Position(), 2)
	if err != nil {
		t.Fatalf("ability: %v", err)
	}
	if !eventsOf(events, EventAbilityUsed)[0].Payload.(AbilityUsedPayload).VineTrap {
		t.Error("ability should report the vine trap")
	}
	if attacker.Effects().VineTrap {
		t.Error("vine trap should be consumed")
	}
	if target.Effects().Immobilized != 5 {
		t.Errorf("immobilized = %v", target.Effects().Immobilized)
	}
	if _, err := m.Move("t", domain.Position{X: 4, Z: 4}); err == nil {
		t.Error("immobilized piece should not move")
	}
}

func TestKingAuraHealsAlliesUpToBase(t *testing.T) {
	m := newTestMatch(t, nil)
	king := place(t, m, "k", domain.King, domain.White, domain.Position{X: 4, Z: 7})
	ally := place(t, m, "n", domain.Knight, domain.White, domain.Position{X: 1, Z: 7})
	foe := place(t, m, "f", domain.Knight, domain.Black, domain.Position{X: 1, Z: 0})
	_, _ = m.registry.ApplyDamage("k", 2)
	_, _ = m.registry.ApplyDamage("n", 5)
	_, _ = m.registry.ApplyDamage("f", 5)

	events, err := m.UseAbility("k", domain.Position{X: 4, Z: 7}, 0)
	if err != nil {
		t.Fatalf("ability: %v", err)
	}
	if used := eventsOf(events, EventAbilityUsed)[0].Payload.(AbilityUsedPayload); used.Damage != 0 || len(used.Hits) != 0 {
		t.Errorf("king ability = %+v", used)
	}

	for i := 0; i < 30; i++ {
		m.Tick(0.1)
	}
	if king.Health() != 15 || ally.Health() != 5 {
		t.Errorf("after 3s king=%d ally=%d", king.Health(), ally.Health())
	}
	for i := 0; i < 50; i++ {
		m.Tick(0.1)
	}
	if ally.Health() != 7 {
		t.Errorf("ally should be capped at base, got %d", ally.Health())
	}
	if foe.Health() != 2 {
		t.Errorf("opponents must not be healed, got %d", foe.Health())
	}
	if len(m.auras) != 0 {
		t.Error("aura should expire")
	}
}

func TestKingsBlessingCapped(t *testing.T) {
	m := newTestMatch(t, nil)
	k1 := place(t, m, "k1", domain.King, domain.White, domain.Position{X: 4, Z: 7})
	k2 := place(t, m, "k2", domain.King, domain.Black, domain.Position{X: 4, Z: 0})
	pawn := place(t, m, "p", domain.Pawn, domain.Black, domain.Position{X: 4, Z: 1})
	_, _ = m.registry.ApplyDamage("p", 1)

	m.TriggerEvent(GameEventKingsBlessing)
	if k1.Health() != 20 || k2.Health() != 20 || pawn.Health() != 4 {
		t.Errorf("k1=%d k2=%d pawn=%d", k1.Health(), k2.Health(), pawn.Health())
	}
	m.TriggerEvent(GameEventKingsBlessing)
	if k1.Health() != 20 {
		t.Errorf("king above cap: %d", k1.Health())
	}
}

func TestLootShowerSpawnsExtraLoot(t *testing.T) {
	m := newTestMatch(t, nil)
	events := m.TriggerEvent(GameEventLootShower)
	if got := len(eventsOf(events, EventLootSpawn)); got != 3 {
		t.Errorf("spawned %d items", got)
	}
	if got := eventsOf(events, EventGameEvent); len(got) != 1 || got[0].Payload.(GameEventPayload).Type != GameEventLootShower {
		t.Errorf("game events = %+v", got)
	}
	seen := map[domain.Position]bool{}
	for _, item := range m.Loot() {
		if seen[item.Position] {
			t.Errorf("two items on %v", item.Position)
		}
		seen[item.Position] = true
	}
}

func TestVineBeastCollision(t *testing.T) {
	m := newTestMatch(t, nil)
	east := place(t, m, "e", domain.Pawn, domain.White, domain.Position{X: 1, Z: 0})
	north := place(t, m, "n", domain.Pawn, domain.White, domain.Position{X: 0, Z: 1})
	north.GrantShield(10)
	m.neutrals["vine-1"] = &domain.NeutralEntity{ID: "vine-1", Kind: domain.VineBeastKind, Position: domain.Position{}, Health: 10, NextMoveIn: 3}

	m.Tick(2.9)
	if m.neutrals["vine-1"].Position != (domain.Position{}) {
		t.Fatal("vine beast moved early")
	}
	m.Tick(0.2)
	pos := m.neutrals["vine-1"].Position
	switch pos {
	case east.Position():
		if east.Health() != 3 {
			t.Errorf("east health = %d", east.Health())
		}
	case north.Position():
		if north.Health() != 5 || north.Effects().Shield != 0 {
			t.Errorf("shield should absorb: hp=%d fx=%+v", north.Health(), north.Effects())
		}
	default:
		t.Fatalf("vine beast at %v, not orthogonally adjacent to the corner", pos)
	}
}

func TestVineBeastDefeatsAndIsFelled(t *testing.T) {
	m := newTestMatch(t, func(c *config.GameConfig) { c.NeutralDamage = 10 })
	place(t, m, "e", domain.Pawn, domain.White, domain.Position{X: 1, Z: 0})
	place(t, m, "n", domain.Pawn, domain.White, domain.Position{X: 0, Z: 1})
	m.neutrals["vine-1"] = &domain.NeutralEntity{ID: "vine-1", Position: domain.Position{}, Health: 10, NextMoveIn: 0.1}

	events := m.Tick(0.1)
	defeats := eventsOf(events, EventDefeat)
	if len(defeats) != 1 {
		t.Fatalf("defeats = %+v", defeats)
	}
	if d := defeats[0].Payload.(DefeatPayload); d.Cause != "neutral" || d.AttackerID != "vine-1" {
		t.Errorf("defeat = %+v", d)
	}

	q := place(t, m, "q", domain.Queen, domain.Black, domain.Position{X: 7, Z: 7})
	beast := m.neutrals["vine-1"]
	beast.Health = 3
	beast.NextMoveIn = 100
	events, err := m.UseAbility(q.ID(), beast.Position, 3)
	if err != nil {
		t.Fatalf("ability: %v", err)
	}
	if _, ok := m.neutrals["vine-1"]; ok {
		t.Error("vine beast at zero health should be removed")
	}
	hits := eventsOf(events, EventAbilityUsed)[0].Payload.(AbilityUsedPayload).Hits
	if len(hits) != 1 || !hits[0].Neutral || !hits[0].Defeated {
		t.Errorf("hits = %+v", hits)
	}
}

func TestWildSproutAvoidsPieces(t *testing.T) {
	m := newTestMatch(t, nil)
	fillBoard(t, m)
	_ = m.registry.Remove("f33")
	m.TriggerEvent(GameEventWildSprout)
	neutrals := m.Neutrals()
	if len(neutrals) != 1 || neutrals[0].Position != (domain.Position{X: 3, Z: 3}) || neutrals[0].Health != 10 {
		t.Errorf("neutrals = %+v", neutrals)
	}
	m.TriggerEvent(GameEventWildSprout)
	if len(m.Neutrals()) != 1 {
		t.Error("no free square should mean no spawn")
	}
}

func TestLateGameSurge(t *testing.T) {
	m := newTestMatch(t, func(c *config.GameConfig) {
		c.LateGameSeconds = 10
		c.EventIntervalSeconds = 20
		c.LootIntervalSeconds = 1000
	})
	rook := place(t, m, "r", domain.Rook, domain.White, domain.Position{X: 0, Z: 7})
	rook.SetCooldown(8)

	events := m.Tick(10.5)
	surges := eventsOf(events, EventGameEvent)
	if len(surges) != 1 || surges[0].Payload.(GameEventPayload).Type != GameEventSurge {
		t.Fatalf("surge events = %+v", surges)
	}
	if !m.LateGame() || m.CooldownScale() != 0.5 {
		t.Errorf("late=%v scale=%v", m.LateGame(), m.CooldownScale())
	}
	if rook.Cooldown() != 0 {
		t.Errorf("rook cooldown = %v", rook.Cooldown())
	}

	if _, err := m.UseAbility("r", domain.Position{X: 0, Z: 0}, 3); err != nil {
		t.Fatalf("ability: %v", err)
	}
	if rook.Cooldown() != 5 {
		t.Errorf("scaled cooldown = %v", rook.Cooldown())
	}

	events = m.Tick(10)
	if got := eventsOf(events, EventGameEvent); len(got) != 1 || got[0].Payload.(GameEventPayload).Type != GameEventSurge {
		t.Fatalf("repeat surge = %+v", got)
	}
	if m.CooldownScale() != 0.25 {
		t.Errorf("scale = %v", m.CooldownScale())
	}
}

func TestEventLogKeepsTail(t *testing.T) {
	l := newEventLog(3)
	if got := l.Tail(); got == nil || len(got) != 0 {
		t.Errorf("empty tail = %v", got)
	}
	for i := 0; i < 5; i++ {
		l.add(float64(i), "entry %d", i)
	}
	got := l.Tail()
	if len(got) != 3 || got[0].Message != "entry 2" || got[2].Message != "entry 4" {
		t.Errorf("tail = %+v", got)
	}
}

func TestEventSchedulerBeforeLateGame(t *testing.T) {
	seen := map[GameEventType]int{}
	for seed := int64(1); seed <= 30; seed++ {
		cfg := config.Default()
		m := NewMatch(cfg, rand.New(rand.NewSource(seed)))
		king := place(t, m, "k", domain.King, domain.White, domain.Position{X: 4, Z: 7})

		if got := eventsOf(m.Tick(cfg.EventIntervalSeconds-0.5), EventGameEvent); len(got) != 0 {
			t.Fatalf("seed %d: event fired early: %+v", seed, got)
		}
		lootBefore, neutralsBefore := len(m.Loot()), len(m.Neutrals())

		events := m.Tick(0.5)
		games := eventsOf(events, EventGameEvent)
		if len(games) != 1 {
			t.Fatalf("seed %d: game events = %+v", seed, games)
		}
		kind := games[0].Payload.(GameEventPayload).Type
		seen[kind]++

		switch kind {
		case GameEventLootShower:
			if got := len(eventsOf(events, EventLootSpawn)); got != cfg.ExtraLootCount {
				t.Errorf("seed %d: loot spawns = %d", seed, got)
			}
			if got := len(m.Loot()); got != lootBefore+cfg.ExtraLootCount {
				t.Errorf("seed %d: loot = %d, want %d", seed, got, lootBefore+cfg.ExtraLootCount)
			}
		case GameEventKingsBlessing:
			if king.Health() != cfg.KingHealthCap {
				t.Errorf("seed %d: king hp = %d", seed, king.Health())
			}
		case GameEventWildSprout:
			if got := len(m.Neutrals()); got != neutralsBefore+1 {
				t.Errorf("seed %d: neutrals = %d", seed, got)
			}
		default:
			t.Fatalf("seed %d: unexpected event %s before late game", seed, kind)
		}
		if m.LateGame() || m.CooldownScale() != 1 {
			t.Errorf("seed %d: surge applied before late game", seed)
		}
	}
	for _, kind := range []GameEventType{GameEventLootShower, GameEventKingsBlessing, GameEventWildSprout} {
		if seen[kind] == 0 {
			t.Errorf("%s never drawn: %v", kind, seen)
		}
	}
}
