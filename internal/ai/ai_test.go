package ai

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game"
)

// engineDriver is a pass-through orchestrator binding the planner straight
// to one engine, with no turn gating. Good enough to exercise a full
// solo turn.
type engineDriver struct{ e *game.Engine }

func (d engineDriver) Draw(string) error { return d.e.Draw() }
func (d engineDriver) Deploy(_, cardUID string, missionIndex, groupIndex int) error {
	return d.e.Deploy(cardUID, missionIndex, groupIndex)
}
func (d engineDriver) DiscardCard(_, cardUID string) error { return d.e.DiscardCard(cardUID) }
func (d engineDriver) NextPhase(string) error {
	_, err := d.e.NextPhase()
	return err
}
func (d engineDriver) MoveShip(_, shipUID string, toIndex int) error {
	return d.e.MoveShip(shipUID, toIndex)
}
func (d engineDriver) BeamToShip(_, personUID string, missionIndex, shipGroup int) error {
	return d.e.BeamToShip(personUID, missionIndex, shipGroup)
}
func (d engineDriver) BeamToPlanet(_, personUID string, missionIndex, shipGroup int) error {
	return d.e.BeamToPlanet(personUID, missionIndex, shipGroup)
}
func (d engineDriver) BeamAllToShip(_ string, missionIndex, shipGroup int) error {
	return d.e.BeamAllToShip(missionIndex, shipGroup)
}
func (d engineDriver) BeamAllToPlanet(_ string, missionIndex, shipGroup int) error {
	return d.e.BeamAllToPlanet(missionIndex, shipGroup)
}
func (d engineDriver) AttemptMission(_ string, missionIndex, groupIndex int) error {
	return d.e.AttemptMission(missionIndex, groupIndex)
}
func (d engineDriver) SelectPersonnelForDilemma(_, personUID string) error {
	return d.e.SelectPersonnelForDilemma(personUID)
}
func (d engineDriver) AdvanceDilemma(string) error { return d.e.AdvanceDilemma() }

func soloPlayer(t *testing.T, seed uint64) (*Player, *game.Engine) {
	t.Helper()
	e := game.NewEngine("solo", cards.DemoCatalog(), cards.NewSeededRNG(seed), zaptest.NewLogger(t), game.Options{})
	return NewPlayer("solo", e, engineDriver{e: e}, zaptest.NewLogger(t), 0), e
}

func instantiate(t *testing.T, id string) *cards.Card {
	t.Helper()
	c, err := cards.DemoCatalog().Instantiate(id)
	if err != nil {
		t.Fatalf("Instantiate %s: %v", id, err)
	}
	return c
}

func TestReorderPoolMostDamagingFirst(t *testing.T) {
	p, _ := soloPlayer(t, 1)
	plague := instantiate(t, "dil-plague-outbreak") // occasional kill, cost 3
	storm := instantiate(t, "dil-ion-storm")        // stop-all that returns, cost 2
	rotation := instantiate(t, "dil-crew-rotation") // two stops for cost 1

	ordered := p.ReorderPool([]*cards.Card{plague, storm, rotation})
	want := []string{"dil-crew-rotation", "dil-ion-storm", "dil-plague-outbreak"}
	for i, id := range want {
		if ordered[i].ID != id {
			t.Fatalf("ordered[%d] = %s, want %s", i, ordered[i].ID, id)
		}
	}
}

func TestEffectivenessToleratesMalformedCards(t *testing.T) {
	p, _ := soloPlayer(t, 1)
	if got := p.effectiveness(nil); got != 0 {
		t.Fatalf("effectiveness(nil) = %v, want 0", got)
	}
	notADilemma := instantiate(t, "per-field-medic")
	if got := p.effectiveness(notADilemma); got != 0 {
		t.Fatalf("effectiveness of a personnel card = %v, want 0", got)
	}
}

func TestEffectivenessCreditsPersistentCrewLimits(t *testing.T) {
	p, _ := soloPlayer(t, 1)
	hazard := instantiate(t, "dil-navigation-hazard") // crew limit, faced again until overcome
	saboteur := instantiate(t, "dil-hidden-saboteur") // one-shot choose-or-kill

	if p.effectiveness(hazard) <= p.effectiveness(saboteur) {
		t.Fatalf("a crew limit that stays beneath the mission scored %v, must beat the one-shot saboteur at %v",
			p.effectiveness(hazard), p.effectiveness(saboteur))
	}
	ordered := p.ReorderPool([]*cards.Card{saboteur, hazard})
	if ordered[0].ID != "dil-navigation-hazard" {
		t.Fatalf("ordered[0] = %s, want dil-navigation-hazard", ordered[0].ID)
	}
}

func TestEffectivenessPenalizesTrivialDilemmas(t *testing.T) {
	p, _ := soloPlayer(t, 1)
	trivial := &cards.Card{
		ID: "toothless", UniqueID: "toothless", Name: "Toothless", Type: cards.TypeDilemma,
		Dilemma: &cards.Dilemma{Cost: 1, Where: cards.DilemmaDual,
			Rule: cards.DilemmaRule{Kind: cards.RuleCrewLimit, KeepCount: 9}},
	}
	rotation := instantiate(t, "dil-crew-rotation")
	if p.effectiveness(trivial) >= p.effectiveness(rotation) {
		t.Fatal("a dilemma that threatens nobody must sort behind a real one")
	}
}

func TestLeastValuablePrefersCheapestCrew(t *testing.T) {
	p, e := soloPlayer(t, 2)
	deck := cards.DemoDeck()
	deck.Draw = []string{"per-field-medic", "per-security-chief", "per-vulcan-analyst"}
	if err := e.Setup(deck); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	var medic, chief, analyst string
	for _, c := range e.Hand() {
		switch c.ID {
		case "per-field-medic":
			medic = c.UniqueID
		case "per-security-chief":
			chief = c.UniqueID
		case "per-vulcan-analyst":
			analyst = c.UniqueID
		}
	}
	hq := e.HeadquartersIndex()
	for _, uid := range []string{medic, chief, analyst} {
		if err := e.Deploy(uid, hq, 0); err != nil {
			t.Fatalf("Deploy: %v", err)
		}
	}

	if got := p.leastValuable([]string{analyst, chief, medic}); got != medic {
		t.Fatalf("leastValuable = %s, want the field medic", got)
	}
	if got := p.leastValuable([]string{"unknown-uid"}); got != "unknown-uid" {
		t.Fatal("unknown candidates fall back to the first offered")
	}
}

func TestDeployPriority(t *testing.T) {
	p, e := soloPlayer(t, 3)
	deck := cards.DemoDeck()
	deck.Draw = []string{"ship-light-cruiser", "per-field-medic", "per-field-medic"}
	if err := e.Setup(deck); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	var ship, medic *cards.Card
	for _, c := range e.Hand() {
		switch c.Type {
		case cards.TypeShip:
			ship = c
		case cards.TypePersonnel:
			medic = c
		}
	}
	if p.deployPriority(ship) != 10 {
		t.Fatalf("first ship priority = %v, want 10", p.deployPriority(ship))
	}
	if p.deployPriority(medic) <= 0 {
		t.Fatal("a deployable personnel always scores above zero")
	}
	tooDear := medic.Clone()
	tooDear.Cost = 99
	if p.deployPriority(tooDear) != 0 {
		t.Fatal("cards above the counter budget must score zero")
	}
}

func TestPlayTurnCompletesAFullTurn(t *testing.T) {
	p, e := soloPlayer(t, 4)
	if err := e.Setup(cards.DemoDeck()); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	p.PlayTurn()

	if e.GameOver() {
		t.Fatal("a single opening turn must not end the game")
	}
	if e.Turn() != 2 {
		t.Fatalf("turn = %d, want 2 after a full turn", e.Turn())
	}
	if e.CurrentPhase() != game.PhasePlayAndDraw {
		t.Fatalf("phase = %s, want a fresh play-and-draw", e.CurrentPhase())
	}
	if len(e.Hand()) > e.HandLimit() {
		t.Fatalf("hand %d exceeds the limit after discard", len(e.Hand()))
	}

	deployed := 0
	for _, md := range e.Missions() {
		for _, g := range md.Groups {
			deployed += len(g.Cards)
		}
	}
	if deployed == 0 {
		t.Fatal("the planner should have deployed something on turn one")
	}
}
