package abilities

import (
	"testing"

	"github.com/frontierline/frontier-server/internal/cards"
)

func person(uid string, integrity int, skills ...cards.Skill) *cards.Card {
	return &cards.Card{
		ID:       uid,
		UniqueID: uid,
		Name:     uid,
		Type:     cards.TypePersonnel,
		Cost:     2,
		Personnel: &cards.Personnel{
			Attributes:  cards.Attributes{Integrity: integrity, Cunning: 5, Strength: 5},
			SkillGroups: [][]cards.Skill{skills},
		},
	}
}

func TestEffectiveAttributePassiveBoostExcludesSelf(t *testing.T) {
	captain := person("captain", 6, "Leadership")
	captain.Abilities = []cards.Ability{{
		ID:      "captain-presence",
		Trigger: cards.TriggerPassive,
		Target: cards.TargetFilter{
			Scope:       cards.ScopePresent,
			CardTypes:   []cards.CardType{cards.TypePersonnel},
			ExcludeSelf: true,
		},
		Effects: []cards.Effect{{
			Kind:      cards.EffectStatModifier,
			Attribute: cards.AttrIntegrity,
			Amount:    1,
		}},
	}}
	ensign := person("ensign", 5, "Science")
	board := Board{
		Present:   []*cards.Card{captain, ensign},
		AllInPlay: []*cards.Card{captain, ensign},
	}

	if got := EffectiveAttribute(ensign, board, cards.AttrIntegrity); got != 6 {
		t.Fatalf("ensign integrity = %d, want 6 with captain's +1", got)
	}
	if got := EffectiveAttribute(captain, board, cards.AttrIntegrity); got != 6 {
		t.Fatalf("captain integrity = %d, want base 6, self excluded", got)
	}
}

func TestEffectiveAttributePresenceScopeRequiresHolderPresent(t *testing.T) {
	captain := person("captain", 6)
	captain.Abilities = []cards.Ability{{
		Trigger: cards.TriggerPassive,
		Target:  cards.TargetFilter{Scope: cards.ScopePresent, ExcludeSelf: true},
		Effects: []cards.Effect{{
			Kind:      cards.EffectStatModifier,
			Attribute: cards.AttrIntegrity,
			Amount:    1,
		}},
	}}
	ensign := person("ensign", 5)

	// Captain is in play but in another group.
	board := Board{
		Present:   []*cards.Card{ensign},
		AllInPlay: []*cards.Card{captain, ensign},
	}
	if got := EffectiveAttribute(ensign, board, cards.AttrIntegrity); got != 5 {
		t.Fatalf("ensign integrity = %d, want unboosted 5 when captain is elsewhere", got)
	}
}

func TestEffectiveSkillsIncludeGrants(t *testing.T) {
	analyst := person("analyst", 7, "Science")
	board := Board{Present: []*cards.Card{analyst}, AllInPlay: []*cards.Card{analyst}}
	granted := []GrantedSkill{{
		Skill:          "Astrometrics",
		Filter:         cards.TargetFilter{Scope: cards.ScopePresent},
		Duration:       cards.DurationTurn,
		SourceUniqueID: "analyst",
	}}

	if !HasEffectiveSkill(analyst, board, granted, "Astrometrics") {
		t.Fatal("granted Astrometrics should be effective")
	}
	if !HasEffectiveSkill(analyst, board, granted, "Science") {
		t.Fatal("native Science must survive alongside grants")
	}
	if HasEffectiveSkill(analyst, board, nil, "Astrometrics") {
		t.Fatal("without the grant record the skill must be absent")
	}
}

func TestEffectiveSkillsWhileFacingDilemmaSelfGrant(t *testing.T) {
	veteran := person("veteran", 6, "Security")
	veteran.Abilities = []cards.Ability{{
		Trigger: cards.TriggerWhileFacingDilemma,
		Target:  cards.TargetFilter{Scope: cards.ScopeSelf},
		Effects: []cards.Effect{{Kind: cards.EffectGrantSkill, Skill: "Leadership"}},
	}}

	calm := Board{Present: []*cards.Card{veteran}, AllInPlay: []*cards.Card{veteran}}
	if HasEffectiveSkill(veteran, calm, nil, "Leadership") {
		t.Fatal("dilemma-scoped grant must not apply outside an encounter")
	}
	facing := calm
	facing.FacingDilemma = true
	if !HasEffectiveSkill(veteran, facing, nil, "Leadership") {
		t.Fatal("dilemma-scoped grant should apply during an encounter")
	}
}

func TestEffectiveCostWhilePlayingReduction(t *testing.T) {
	recruit := person("recruit", 5)
	recruit.Cost = 3
	recruit.Abilities = []cards.Ability{{
		Trigger: cards.TriggerWhilePlaying,
		Target:  cards.TargetFilter{Scope: cards.ScopeSelf},
		Effects: []cards.Effect{{Kind: cards.EffectCostModifier, Amount: 2}},
	}}

	if got := EffectiveCost(recruit, nil, Ownership{}); got != 1 {
		t.Fatalf("cost = %d, want 3-2=1", got)
	}
}

func TestEffectiveCostPerMatchingScalesAndClamps(t *testing.T) {
	flagship := person("flagship", 5)
	flagship.Cost = 4
	flagship.Abilities = []cards.Ability{{
		Trigger: cards.TriggerWhilePlaying,
		Target:  cards.TargetFilter{Scope: cards.ScopeSelf},
		Effects: []cards.Effect{{
			Kind:   cards.EffectCostModifier,
			Amount: 2,
			PerMatching: &cards.CountFilter{
				Relation: cards.RelationOwned,
				Filter:   cards.TargetFilter{CardTypes: []cards.CardType{cards.TypePersonnel}},
			},
		}},
	}}
	own := Ownership{Owned: []*cards.Card{person("a", 5), person("b", 5), person("c", 5)}}

	// 4 - 2*3 = -2, clamped to zero.
	if got := EffectiveCost(flagship, nil, own); got != 0 {
		t.Fatalf("cost = %d, want clamp to 0", got)
	}
}

func TestEffectiveCostPassiveHolderFilter(t *testing.T) {
	quartermaster := person("quartermaster", 5)
	quartermaster.Abilities = []cards.Ability{{
		Trigger: cards.TriggerPassive,
		Target:  cards.TargetFilter{CardTypes: []cards.CardType{cards.TypeShip}},
		Effects: []cards.Effect{{Kind: cards.EffectCostModifier, Amount: 1}},
	}}
	inPlay := []*cards.Card{quartermaster}

	ship := &cards.Card{
		ID: "ship", UniqueID: "ship", Type: cards.TypeShip, Cost: 5,
		Ship: &cards.Ship{Range: 8, RangeRemaining: 8},
	}
	if got := EffectiveCost(ship, inPlay, Ownership{}); got != 4 {
		t.Fatalf("ship cost = %d, want 4 with the quartermaster in play", got)
	}
	crew := person("crew", 5)
	if got := EffectiveCost(crew, inPlay, Ownership{}); got != 2 {
		t.Fatalf("personnel cost = %d, want unmodified 2", got)
	}
}

func TestTargetFilterDimensionsAnd(t *testing.T) {
	vulcan := person("vulcan", 7, "Science")
	vulcan.Affiliations = []cards.Affiliation{"Federation"}
	vulcan.Personnel.Species = []cards.Species{"Vulcan"}

	filter := cards.TargetFilter{
		CardTypes:    []cards.CardType{cards.TypePersonnel},
		Affiliations: []cards.Affiliation{"Federation"},
		Species:      []cards.Species{"Vulcan"},
	}
	if !filter.Matches("holder", vulcan) {
		t.Fatal("all dimensions match, filter should accept")
	}

	filter.Species = []cards.Species{"Klingon"}
	if filter.Matches("holder", vulcan) {
		t.Fatal("species dimension fails, filter must reject")
	}
}
