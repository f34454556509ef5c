package game

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/frontierline/frontier-server/internal/cards"
)

// bareEngine sets up an engine with missions only, so tests can stage
// board state directly.
func bareEngine(t *testing.T, seed uint64) *Engine {
	t.Helper()
	e := NewEngine("tester", cards.DemoCatalog(), cards.NewSeededRNG(seed), zaptest.NewLogger(t), Options{})
	deck := cards.DemoDeck()
	deck.Draw = nil
	deck.Dilemmas = nil
	if err := e.Setup(deck); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return e
}

func instantiate(t *testing.T, e *Engine, id string) *cards.Card {
	t.Helper()
	c, err := e.catalog.Instantiate(id)
	if err != nil {
		t.Fatalf("Instantiate %s: %v", id, err)
	}
	return c
}

func stage(e *Engine, missionIndex int, members ...*cards.Card) *CardGroup {
	group := &CardGroup{Cards: members}
	e.missions[missionIndex].Groups = append(e.missions[missionIndex].Groups, group)
	return group
}

func TestPlayEventRefreshesHand(t *testing.T) {
	e := bareEngine(t, 1)
	event := instantiate(t, e, "evt-fleet-resupply")
	e.hand = append(e.hand, event)
	for i := 0; i < 3; i++ {
		e.deck = append(e.deck, instantiate(t, e, "per-field-medic"))
	}

	if err := e.PlayEvent(event.UniqueID); err != nil {
		t.Fatalf("PlayEvent: %v", err)
	}
	if len(e.hand) != 2 {
		t.Fatalf("hand = %d, want the 2 drawn cards", len(e.hand))
	}
	if e.DeckSize() != 1 {
		t.Fatalf("deck = %d, want 1 after drawing 2 of 3", e.DeckSize())
	}
	if e.Counters() != DefaultCountersPerTurn-2 {
		t.Fatalf("counters = %d, want the event's cost spent", e.Counters())
	}
	if len(e.discard) != 1 || e.discard[0].UniqueID != event.UniqueID {
		t.Fatal("the event must be discarded after resolving")
	}
}

func TestPlayEventUnplayableEffectLeavesStateUntouched(t *testing.T) {
	e := bareEngine(t, 9)
	event := &cards.Card{
		ID: "evt-sudden-reprieve", UniqueID: "evt-sudden-reprieve-1",
		Name: "Sudden Reprieve", Type: cards.TypeEvent, Cost: 2,
		Abilities: []cards.Ability{{
			ID:      "reprieve",
			Trigger: cards.TriggerEvent,
			Effects: []cards.Effect{{Kind: cards.EffectPreventAndOvercome}},
		}},
	}
	e.hand = append(e.hand, event)

	// No dilemma resolution is pending during PlayAndDraw, so the effect
	// can never apply; the card and the counters must both survive.
	if err := e.PlayEvent(event.UniqueID); err == nil {
		t.Fatal("an event whose effect cannot apply must be refused")
	}
	if len(e.hand) != 1 || e.hand[0].UniqueID != event.UniqueID {
		t.Fatal("a refused event must stay in hand")
	}
	if e.Counters() != DefaultCountersPerTurn {
		t.Fatalf("counters = %d, want none spent", e.Counters())
	}
	if len(e.discard) != 0 {
		t.Fatal("a refused event must not reach the discard pile")
	}
}

func TestOrderAbilityBoostsRangeOncePerTurn(t *testing.T) {
	e := bareEngine(t, 2)
	ship := instantiate(t, e, "ship-light-cruiser")
	qm := instantiate(t, e, "per-quartermaster")
	stage(e, e.hqIndex, ship, qm)
	e.deck = append(e.deck, instantiate(t, e, "per-field-medic"), instantiate(t, e, "per-field-medic"))
	e.phase = PhaseExecuteOrders

	if err := e.ExecuteOrderAbility(qm.UniqueID, "quartermaster-refit"); err != nil {
		t.Fatalf("ExecuteOrderAbility: %v", err)
	}
	if ship.Ship.RangeRemaining != 10 {
		t.Fatalf("range = %d, want 8+2", ship.Ship.RangeRemaining)
	}
	if e.DeckSize() != 1 {
		t.Fatalf("deck = %d, want one card discarded as cost", e.DeckSize())
	}
	if err := e.ExecuteOrderAbility(qm.UniqueID, "quartermaster-refit"); err == nil {
		t.Fatal("a once-per-turn ability must refuse a second use")
	}

	// The limit resets with the turn.
	e.phase = PhaseDiscardExcess
	if _, err := e.NextPhase(); err != nil {
		t.Fatalf("NextPhase: %v", err)
	}
	e.phase = PhaseExecuteOrders
	if err := e.ExecuteOrderAbility(qm.UniqueID, "quartermaster-refit"); err != nil {
		t.Fatalf("ExecuteOrderAbility after turn reset: %v", err)
	}
}

func TestInterlinkGrantDecidesTheAttempt(t *testing.T) {
	e := bareEngine(t, 3)
	crew := []*cards.Card{
		instantiate(t, e, "per-interlink-coordinator"),
		instantiate(t, e, "per-archaeologist"),
		instantiate(t, e, "per-security-chief"),
		instantiate(t, e, "per-helm-officer"),
		instantiate(t, e, "per-diplomat"),
	}
	const ruinsIdx = 1
	e.missions[ruinsIdx].Groups[0].Cards = crew
	// A soft obstacle holds the encounter open for the interlink window.
	soft := &cards.Card{
		ID: "dil-soft", UniqueID: "dil-soft-1", Name: "Soft Obstacle", Type: cards.TypeDilemma,
		Dilemma: &cards.Dilemma{Cost: 1, Where: cards.DilemmaDual,
			Rule: cards.DilemmaRule{Kind: cards.RuleCrewLimit, KeepCount: 9}},
	}
	e.dilemmaPool = []*cards.Card{soft}
	e.phase = PhaseExecuteOrders

	if err := e.AttemptMission(ruinsIdx, 0); err != nil {
		t.Fatalf("AttemptMission: %v", err)
	}
	if e.Encounter() == nil || e.Encounter().Pending == nil {
		t.Fatal("encounter should be holding the soft obstacle")
	}

	// Nobody holds Science natively; the coordinator's interlink grants it
	// to the crew for the rest of the attempt.
	if err := e.ExecuteInterlinkAbility(crew[0].UniqueID, "coordinator-uplink"); err != nil {
		t.Fatalf("ExecuteInterlinkAbility: %v", err)
	}
	if len(e.Granted()) != 1 {
		t.Fatalf("granted records = %d, want 1", len(e.Granted()))
	}
	if err := e.ExecuteInterlinkAbility(crew[0].UniqueID, "coordinator-uplink"); err == nil {
		t.Fatal("the uplink is once per turn")
	}

	if err := e.AdvanceDilemma(); err != nil {
		t.Fatalf("AdvanceDilemma: %v", err)
	}
	if !e.missions[ruinsIdx].Mission.Mission.Completed {
		t.Fatal("the granted Science should have completed the mission")
	}
	if e.Score() != 35 {
		t.Fatalf("score = %d, want 35", e.Score())
	}
	if len(e.Granted()) != 0 {
		t.Fatal("encounter-scoped grants must purge when the encounter clears")
	}
}

func TestInterruptReplacesPendingResolution(t *testing.T) {
	e := bareEngine(t, 4)
	crew := []*cards.Card{
		instantiate(t, e, "per-field-medic"),
		instantiate(t, e, "per-field-medic"),
		instantiate(t, e, "per-field-medic"),
		instantiate(t, e, "per-diplomat"),
		instantiate(t, e, "per-diplomat"),
	}
	const reliefIdx = 3
	e.missions[reliefIdx].Groups[0].Cards = crew

	// A copy of the saboteur is already overcome beneath another mission,
	// which is what the emergency transport's condition requires.
	overcomeCopy := instantiate(t, e, "dil-hidden-saboteur")
	overcomeCopy.Dilemma.Overcome = true
	e.missions[1].Dilemmas = append(e.missions[1].Dilemmas, overcomeCopy)

	faced := instantiate(t, e, "dil-hidden-saboteur")
	e.dilemmaPool = []*cards.Card{faced}
	save := instantiate(t, e, "int-emergency-transport")
	e.hand = append(e.hand, save)
	e.phase = PhaseExecuteOrders

	if err := e.AttemptMission(reliefIdx, 0); err != nil {
		t.Fatalf("AttemptMission: %v", err)
	}
	pending := e.Encounter().Pending
	// No one holds Security, so the saboteur's kill penalty is pending.
	if len(pending.KilledIDs) != 1 {
		t.Fatalf("pending kills = %v, want one victim", pending.KilledIDs)
	}

	if err := e.PlayInterrupt(save.UniqueID, "emergency-transport-save"); err != nil {
		t.Fatalf("PlayInterrupt: %v", err)
	}
	pending = e.Encounter().Pending
	if !pending.Overcome || len(pending.KilledIDs) != 0 {
		t.Fatalf("pending = %+v, want a clean overcome", pending)
	}
	if _, c := e.findInHand(save.UniqueID); c == nil {
		t.Fatal("a return-to-hand interrupt stays in hand")
	}

	if err := e.AdvanceDilemma(); err != nil {
		t.Fatalf("AdvanceDilemma: %v", err)
	}
	if !e.missions[reliefIdx].Mission.Mission.Completed {
		t.Fatal("the untouched crew should complete the mission")
	}
	if len(e.missions[reliefIdx].Groups[0].UnstoppedPersonnel()) != 5 {
		t.Fatal("nobody should have been killed or stopped")
	}
}

func TestInterruptConditionUnmetIsRejected(t *testing.T) {
	e := bareEngine(t, 5)
	crew := []*cards.Card{
		instantiate(t, e, "per-field-medic"),
		instantiate(t, e, "per-diplomat"),
	}
	const reliefIdx = 3
	e.missions[reliefIdx].Groups[0].Cards = crew
	faced := instantiate(t, e, "dil-hidden-saboteur")
	e.dilemmaPool = []*cards.Card{faced}
	save := instantiate(t, e, "int-emergency-transport")
	e.hand = append(e.hand, save)
	e.phase = PhaseExecuteOrders

	if err := e.AttemptMission(reliefIdx, 0); err != nil {
		t.Fatalf("AttemptMission: %v", err)
	}
	if err := e.PlayInterrupt(save.UniqueID, "emergency-transport-save"); err == nil {
		t.Fatal("the interrupt requires an overcome copy elsewhere")
	}
}
