package cards

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCardYAML = `
cards:
  - id: per-test-officer
    name: Test Officer
    type: PERSONNEL
    unique: true
    affiliations: [Federation]
    cost: 3
    personnel:
      integrity: 6
      cunning: 7
      strength: 5
      skillGroups:
        - [Security, Leadership]
        - [Diplomacy]
      species: [Human]
      icon: COMMAND
  - id: evt-test-refit
    name: Test Refit
    type: EVENT
    affiliations: [Federation]
    cost: 2
    abilities:
      - id: refit-boost
        trigger: EVENT
        duration: TURN
        usageLimit: 1
        text: Boost a commanded ship's range this turn.
        target:
          scope: PRESENT
          cardTypes: [SHIP]
          excludeSelf: true
        cost:
          kind: DISCARD_FROM_DECK
          count: 2
        condition:
          kind: SPECIES_PRESENT
          species: Human
        effects:
          - kind: RANGE_MODIFIER
            amount: 2
          - kind: COST_MODIFIER
            amount: -1
            perMatching:
              relation: COMMANDED_NOT_OWNED
              filter:
                scope: ALL_IN_PLAY
                affiliations: [Federation]
  - id: ship-test-scout
    name: Test Scout
    type: SHIP
    affiliations: [Federation]
    cost: 3
    ship:
      staffing: [STAFF]
      range: 7
      weapons: 4
      shields: 5
  - id: msn-test-dig
    name: Test Dig
    type: MISSION
    mission:
      missionType: PLANET
      requirements:
        - [Archaeology, Science]
      attribute: CUNNING
      threshold: 24
      quadrant: Alpha
      span: 3
      score: 35
  - id: dil-test-trap
    name: Test Trap
    type: DILEMMA
    dilemma:
      rule: UNLESS_CHECK
      cost: 2
      where: DUAL
      penalty: "RANDOM_KILL_WITH_SKILL: Medical"
      requirements:
        - skills: [Security, Security]
        - single: true
          skills: [Security]
          attribute: STRENGTH
          threshold: 7
`

func TestParseCatalogFullSchema(t *testing.T) {
	cat, err := ParseCatalog([]byte(sampleCardYAML))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}

	officer, ok := cat.Lookup("per-test-officer")
	if !ok {
		t.Fatal("personnel template missing")
	}
	if !officer.Unique || officer.Cost != 3 {
		t.Errorf("card fields = unique %v cost %d", officer.Unique, officer.Cost)
	}
	p := officer.Personnel
	if p == nil {
		t.Fatal("personnel payload missing")
	}
	if p.Attributes.Cunning != 7 || p.Icon != IconCommand {
		t.Errorf("personnel = %+v", p)
	}
	if len(p.SkillGroups) != 2 || p.SkillGroups[0][1] != "Leadership" {
		t.Errorf("skill groups = %v", p.SkillGroups)
	}

	refit, ok := cat.Lookup("evt-test-refit")
	if !ok || len(refit.Abilities) != 1 {
		t.Fatal("event ability missing")
	}
	ab := refit.Abilities[0]
	if ab.Trigger != TriggerEvent || ab.Duration != DurationTurn || ab.UsageLimit != 1 {
		t.Errorf("ability header = %+v", ab)
	}
	if ab.Target.Scope != ScopePresent || !ab.Target.ExcludeSelf ||
		len(ab.Target.CardTypes) != 1 || ab.Target.CardTypes[0] != TypeShip {
		t.Errorf("target = %+v", ab.Target)
	}
	if ab.Cost == nil || ab.Cost.Kind != CostDiscardFromDeck || ab.Cost.Count != 2 {
		t.Errorf("cost = %+v", ab.Cost)
	}
	if ab.Condition == nil || ab.Condition.Kind != ConditionSpeciesPresent || ab.Condition.Species != "Human" {
		t.Errorf("condition = %+v", ab.Condition)
	}
	if len(ab.Effects) != 2 {
		t.Fatalf("effects = %+v", ab.Effects)
	}
	if ab.Effects[0].Kind != EffectRangeModifier || ab.Effects[0].Amount != 2 {
		t.Errorf("range effect = %+v", ab.Effects[0])
	}
	scaled := ab.Effects[1]
	if scaled.Kind != EffectCostModifier || scaled.Amount != -1 || scaled.PerMatching == nil {
		t.Fatalf("cost effect = %+v", scaled)
	}
	if scaled.PerMatching.Relation != RelationCommandedNotOwned ||
		scaled.PerMatching.Filter.Scope != ScopeAllInPlay {
		t.Errorf("per-matching = %+v", scaled.PerMatching)
	}

	ship, ok := cat.Lookup("ship-test-scout")
	if !ok || ship.Ship == nil {
		t.Fatal("ship template missing")
	}
	if ship.Ship.Range != 7 || ship.Ship.RangeRemaining != 7 {
		t.Errorf("range = %d remaining %d, want both 7", ship.Ship.Range, ship.Ship.RangeRemaining)
	}
	if len(ship.Ship.Staffing) != 1 || ship.Ship.Staffing[0] != IconStaff {
		t.Errorf("staffing = %v", ship.Ship.Staffing)
	}

	dig, ok := cat.Lookup("msn-test-dig")
	if !ok || dig.Mission == nil {
		t.Fatal("mission template missing")
	}
	if dig.Mission.Type != MissionPlanet || dig.Mission.Score != 35 {
		t.Errorf("mission = %+v", dig.Mission)
	}
	if dig.Mission.Attribute == nil || dig.Mission.Attribute.Attribute != AttrCunning || dig.Mission.Attribute.Value != 24 {
		t.Errorf("attribute requirement = %+v", dig.Mission.Attribute)
	}

	trap, ok := cat.Lookup("dil-test-trap")
	if !ok || trap.Dilemma == nil {
		t.Fatal("dilemma template missing")
	}
	rule := trap.Dilemma.Rule
	if rule.Kind != RuleUnlessCheck || trap.Dilemma.Where != DilemmaDual {
		t.Errorf("rule kind %d where %d", int(rule.Kind), int(trap.Dilemma.Where))
	}
	if rule.Penalty.Kind != PenaltyRandomKillWithSkill || rule.Penalty.Skill != "Medical" {
		t.Errorf("penalty = %+v", rule.Penalty)
	}
	if len(rule.Requirements) != 2 {
		t.Fatalf("requirements = %v", rule.Requirements)
	}
	if rule.Requirements[0].Kind != RequirementPooled {
		t.Error("first requirement should be pooled")
	}
	second := rule.Requirements[1]
	if second.Kind != RequirementSinglePersonnel || second.Attribute == nil || second.Attribute.Value != 7 {
		t.Errorf("single-personnel requirement = %+v", second)
	}
}

func TestParseCatalogRejectsBadDefinitions(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown card type",
			yaml: "cards:\n  - id: x\n    type: ARTIFACT\n",
			want: "unknown card type",
		},
		{
			name: "missing personnel payload",
			yaml: "cards:\n  - id: x\n    type: PERSONNEL\n",
			want: "personnel payload missing",
		},
		{
			name: "unknown dilemma rule",
			yaml: "cards:\n  - id: x\n    type: DILEMMA\n    dilemma:\n      rule: COIN_FLIP\n      where: DUAL\n",
			want: "unknown dilemma rule",
		},
		{
			name: "unknown penalty",
			yaml: "cards:\n  - id: x\n    type: DILEMMA\n    dilemma:\n      rule: CHOOSE_TO_STOP\n      where: DUAL\n      penalty: EXILE\n",
			want: "unknown penalty",
		},
		{
			name: "unknown trigger",
			yaml: "cards:\n  - id: x\n    type: EVENT\n    abilities:\n      - id: a\n        trigger: SORCERY\n        effects:\n          - kind: HAND_REFRESH\n",
			want: "unknown trigger",
		},
		{
			name: "unknown effect kind",
			yaml: "cards:\n  - id: x\n    type: EVENT\n    abilities:\n      - id: a\n        trigger: EVENT\n        effects:\n          - kind: TIME_TRAVEL\n",
			want: "unknown effect kind",
		},
		{
			name: "ability without effects",
			yaml: "cards:\n  - id: x\n    type: EVENT\n    abilities:\n      - id: a\n        trigger: EVENT\n",
			want: "no effects",
		},
		{
			name: "not yaml",
			yaml: "cards: [not a map",
			want: "decode yaml",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tc.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoaderCachesByPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.yaml")
	if err := os.WriteFile(path, []byte(sampleCardYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader()
	first, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load (cached): %v", err)
	}
	if first != second {
		t.Error("repeated loads of one path should share a catalog")
	}

	if _, err := loader.Load(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Error("loading a missing file must fail")
	}
}
