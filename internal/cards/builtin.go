package cards

// Built-in demo set. Enough templates to run a full human-vs-AI game
// without external card data; tests lean on it too.

// DeckList names the templates a player brings to a game: five missions
// (one of them a headquarters), a draw deck and a dilemma pool.
type DeckList struct {
	Missions []string
	Draw     []string
	Dilemmas []string
}

// DemoCatalog returns a catalog holding the built-in demo set. The set is
// static; construction cannot fail.
func DemoCatalog() *Catalog {
	cat, err := NewCatalog(demoTemplates())
	if err != nil {
		panic("builtin card set invalid: " + err.Error())
	}
	return cat
}

// DemoDeck returns a playable deck list drawn from the demo set.
func DemoDeck() DeckList {
	draw := []string{
		"ship-light-cruiser", "ship-light-cruiser", "ship-heavy-cruiser",
		"per-veteran-captain",
		"per-field-medic", "per-field-medic", "per-field-medic", "per-field-medic",
		"per-security-chief", "per-security-chief", "per-security-chief",
		"per-helm-officer", "per-helm-officer", "per-helm-officer", "per-helm-officer",
		"per-staff-engineer", "per-staff-engineer", "per-staff-engineer", "per-staff-engineer",
		"per-science-ensign", "per-science-ensign", "per-science-ensign", "per-science-ensign",
		"per-xeno-linguist", "per-xeno-linguist", "per-xeno-linguist",
		"per-vulcan-analyst", "per-vulcan-analyst", "per-vulcan-analyst",
		"per-archaeologist", "per-archaeologist",
		"per-interlink-coordinator", "per-interlink-coordinator",
		"per-quartermaster", "per-quartermaster",
		"evt-fleet-resupply", "evt-fleet-resupply",
		"int-emergency-transport", "int-emergency-transport",
		"per-diplomat", "per-diplomat", "per-diplomat",
	}
	return DeckList{
		Missions: []string{
			"msn-home-starbase",
			"msn-survey-ruins",
			"msn-chart-nebula",
			"msn-relief-colony",
			"msn-deep-space-probe",
		},
		Draw: draw,
		Dilemmas: []string{
			"dil-hidden-saboteur",
			"dil-ion-storm",
			"dil-plague-outbreak",
			"dil-ancient-sentry",
			"dil-crew-rotation",
			"dil-boarding-party",
			"dil-navigation-hazard",
		},
	}
}

func demoTemplates() []*Card {
	fed := []Affiliation{"Federation"}

	personnel := func(id, name string, unique bool, integ, cun, str int, icon StaffingIcon, species Species, groups ...[]Skill) *Card {
		return &Card{
			ID: id, Name: name, Type: TypePersonnel, Unique: unique,
			Affiliations: fed, Cost: 2,
			Personnel: &Personnel{
				Attributes:  Attributes{Integrity: integ, Cunning: cun, Strength: str},
				SkillGroups: groups,
				Species:     []Species{species},
				Icon:        icon,
			},
		}
	}

	cards := []*Card{
		{
			ID: "msn-home-starbase", Name: "Home Starbase", Type: TypeMission,
			Affiliations: fed,
			Mission: &Mission{
				Type: MissionHeadquarters, Affiliations: fed,
				Quadrant: "Alpha", Span: 2,
			},
		},
		{
			ID: "msn-survey-ruins", Name: "Survey Ancient Ruins", Type: TypeMission,
			Mission: &Mission{
				Type:         MissionPlanet,
				Requirements: [][]Skill{{"Archaeology", "Science", "Security"}, {"Archaeology", "Anthropology", "Anthropology"}},
				Attribute:    &AttributeRequirement{Attribute: AttrCunning, Value: 28},
				Quadrant:     "Alpha", Span: 3, Score: 35,
			},
		},
		{
			ID: "msn-relief-colony", Name: "Relieve Stricken Colony", Type: TypeMission,
			Mission: &Mission{
				Type:         MissionPlanet,
				Requirements: [][]Skill{{"Medical", "Medical", "Leadership"}},
				Attribute:    &AttributeRequirement{Attribute: AttrIntegrity, Value: 26},
				Quadrant:     "Alpha", Span: 2, Score: 30,
			},
		},
		{
			ID: "msn-chart-nebula", Name: "Chart Shrouded Nebula", Type: TypeMission,
			Mission: &Mission{
				Type:         MissionSpace,
				Requirements: [][]Skill{{"Astrometrics", "Navigation", "Science"}},
				Attribute:    &AttributeRequirement{Attribute: AttrCunning, Value: 30},
				Quadrant:     "Alpha", Span: 4, Score: 35,
			},
		},
		{
			ID: "msn-deep-space-probe", Name: "Recover Deep Space Probe", Type: TypeMission,
			Mission: &Mission{
				Type:         MissionSpace,
				Requirements: [][]Skill{{"Engineer", "Engineer", "Programming"}, {"Engineer", "Physics", "Navigation"}},
				Quadrant:     "Beta", Span: 3, Score: 30,
			},
		},
		{
			ID: "ship-light-cruiser", Name: "Light Cruiser", Type: TypeShip,
			Affiliations: fed, Cost: 4,
			Ship: &Ship{Staffing: []StaffingIcon{IconStaff, IconStaff}, Range: 8, RangeRemaining: 8, Weapons: 6, Shields: 6},
		},
		{
			ID: "ship-heavy-cruiser", Name: "Heavy Cruiser", Type: TypeShip,
			Affiliations: fed, Cost: 5,
			Ship: &Ship{Staffing: []StaffingIcon{IconCommand, IconStaff, IconStaff}, Range: 9, RangeRemaining: 9, Weapons: 8, Shields: 8},
		},

		personnel("per-field-medic", "Field Medic", false, 6, 5, 4, IconStaff, "Human",
			[]Skill{"Medical", "Biology"}),
		personnel("per-security-chief", "Security Chief", false, 5, 5, 7, IconStaff, "Human",
			[]Skill{"Security", "Leadership"}),
		personnel("per-helm-officer", "Helm Officer", false, 5, 6, 5, IconStaff, "Human",
			[]Skill{"Navigation", "Astrometrics"}),
		personnel("per-staff-engineer", "Staff Engineer", false, 5, 6, 5, IconStaff, "Human",
			[]Skill{"Engineer", "Transporters"}),
		personnel("per-science-ensign", "Science Ensign", false, 6, 6, 4, IconStaff, "Human",
			[]Skill{"Science", "Physics"}),
		personnel("per-xeno-linguist", "Xenolinguist", false, 6, 6, 3, IconNone, "Human",
			[]Skill{"Anthropology", "Diplomacy"}),
		personnel("per-vulcan-analyst", "Vulcan Analyst", false, 7, 8, 5, IconStaff, "Vulcan",
			[]Skill{"Science", "Programming"}, []Skill{"Astrometrics"}),
		personnel("per-archaeologist", "Archaeologist", false, 6, 7, 4, IconNone, "Human",
			[]Skill{"Archaeology", "Anthropology"}),
		personnel("per-diplomat", "Federation Diplomat", false, 7, 5, 3, IconNone, "Human",
			[]Skill{"Diplomacy", "Leadership"}),
	}

	captain := personnel("per-veteran-captain", "Veteran Captain", true, 7, 7, 6, IconCommand, "Human",
		[]Skill{"Leadership", "Diplomacy", "Honor"})
	captain.Abilities = []Ability{{
		ID:      "veteran-captain-presence",
		Trigger: TriggerPassive,
		Target: TargetFilter{
			Scope:       ScopePresent,
			CardTypes:   []CardType{TypePersonnel},
			ExcludeSelf: true,
		},
		Effects: []Effect{{Kind: EffectStatModifier, Attribute: AttrIntegrity, Amount: 1}},
		Text:    "Each other personnel present gets +1 Integrity.",
	}}
	cards = append(cards, captain)

	coordinator := personnel("per-interlink-coordinator", "Interlink Coordinator", false, 6, 7, 4, IconStaff, "Vulcan",
		[]Skill{"Programming", "Engineer"})
	coordinator.Abilities = []Ability{{
		ID:      "coordinator-uplink",
		Trigger: TriggerInterlink,
		Target: TargetFilter{
			Scope:       ScopePresent,
			CardTypes:   []CardType{TypePersonnel},
			ExcludeSelf: true,
		},
		Effects:    []Effect{{Kind: EffectGrantSkill, Skill: "Science"}},
		Duration:   DurationEncounter,
		UsageLimit: 1,
		Text:       "Interlink: each other personnel present gains Science until the end of this mission attempt.",
	}}
	cards = append(cards, coordinator)

	quartermaster := personnel("per-quartermaster", "Quartermaster", false, 6, 6, 4, IconStaff, "Human",
		[]Skill{"Engineer"})
	quartermaster.Abilities = []Ability{{
		ID:      "quartermaster-refit",
		Trigger: TriggerOrder,
		Target: TargetFilter{
			Scope:     ScopePresent,
			CardTypes: []CardType{TypeShip},
		},
		Effects:    []Effect{{Kind: EffectRangeModifier, Amount: 2}},
		Cost:       &AbilityCost{Kind: CostDiscardFromDeck, Count: 1},
		Duration:   DurationTurn,
		UsageLimit: 1,
		Text:       "Order: discard the top card of your deck. Ships present get +2 Range this turn.",
	}}
	cards = append(cards, quartermaster)

	cards = append(cards,
		&Card{
			ID: "evt-fleet-resupply", Name: "Fleet Resupply", Type: TypeEvent,
			Affiliations: fed, Cost: 2,
			Abilities: []Ability{{
				ID:      "fleet-resupply-draw",
				Trigger: TriggerEvent,
				Target:  TargetFilter{Scope: ScopeSelf},
				Effects: []Effect{{Kind: EffectHandRefresh, Amount: 2}},
				Text:    "Draw two cards.",
			}},
		},
		&Card{
			ID: "int-emergency-transport", Name: "Emergency Transport", Type: TypeInterrupt,
			Affiliations: fed, Cost: 0,
			Abilities: []Ability{{
				ID:        "emergency-transport-save",
				Trigger:   TriggerInterrupt,
				Target:    TargetFilter{Scope: ScopeSelf},
				Effects:   []Effect{{Kind: EffectPreventAndOvercome}},
				Condition: &Condition{Kind: ConditionCopyOvercomeElsewhere},
				Cost:      &AbilityCost{Kind: CostReturnToHand, Count: 1},
				Text:      "If a copy of the dilemma being faced is already overcome, prevent and overcome it. Return this card to hand.",
			}},
		},
	)

	cards = append(cards,
		&Card{
			ID: "dil-hidden-saboteur", Name: "Hidden Saboteur", Type: TypeDilemma,
			Dilemma: &Dilemma{
				Cost: 2, Where: DilemmaDual,
				Rule: DilemmaRule{
					Kind:    RuleChooseToStop,
					Skills:  []Skill{"Security"},
					Penalty: Penalty{Kind: PenaltyRandomKill},
				},
			},
		},
		&Card{
			ID: "dil-ion-storm", Name: "Ion Storm", Type: TypeDilemma,
			Dilemma: &Dilemma{
				Cost: 2, Where: DilemmaSpace,
				Rule: DilemmaRule{
					Kind: RuleUnlessCheck,
					Requirements: []DilemmaRequirement{
						{Kind: RequirementPooled, Skills: []Skill{"Engineer", "Navigation"}},
					},
					Penalty: Penalty{Kind: PenaltyStopAllReturnToPile},
				},
			},
		},
		&Card{
			ID: "dil-plague-outbreak", Name: "Plague Outbreak", Type: TypeDilemma,
			Dilemma: &Dilemma{
				Cost: 3, Where: DilemmaPlanet,
				Rule: DilemmaRule{
					Kind: RuleUnlessCheck,
					Requirements: []DilemmaRequirement{
						{Kind: RequirementPooled, Skills: []Skill{"Medical", "Medical"}},
						{Kind: RequirementSinglePersonnel, Skills: []Skill{"Medical"}, Attribute: &AttributeRequirement{Attribute: AttrCunning, Value: 7}},
					},
					Penalty: Penalty{Kind: PenaltyRandomKillWithSkill, Skill: "Medical"},
				},
			},
		},
		&Card{
			ID: "dil-ancient-sentry", Name: "Ancient Sentry", Type: TypeDilemma,
			Dilemma: &Dilemma{
				Cost: 3, Where: DilemmaDual,
				Rule: DilemmaRule{
					Kind: RuleRandomThenCheck,
					Requirements: []DilemmaRequirement{
						{Kind: RequirementPooled, Skills: []Skill{"Security", "Security"}},
					},
				},
			},
		},
		&Card{
			ID: "dil-crew-rotation", Name: "Crew Rotation", Type: TypeDilemma,
			Dilemma: &Dilemma{
				Cost: 1, Where: DilemmaDual,
				Rule: DilemmaRule{Kind: RuleRandomStop, Stops: []int{3, 6}},
			},
		},
		&Card{
			ID: "dil-boarding-party", Name: "Boarding Party", Type: TypeDilemma,
			Dilemma: &Dilemma{
				Cost: 4, Where: DilemmaSpace,
				Rule: DilemmaRule{
					Kind: RuleUnlessCheck,
					Requirements: []DilemmaRequirement{
						{Kind: RequirementPooled, Skills: []Skill{"Security", "Leadership"}, Attribute: &AttributeRequirement{Attribute: AttrStrength, Value: 18}},
					},
					Penalty: Penalty{Kind: PenaltyChooseMatchingToStopElseStopAll, Skills: []Skill{"Security"}},
				},
			},
		},
		&Card{
			ID: "dil-navigation-hazard", Name: "Navigation Hazard", Type: TypeDilemma,
			Dilemma: &Dilemma{
				Cost: 2, Where: DilemmaDual,
				Rule: DilemmaRule{Kind: RuleCrewLimit, KeepCount: 4},
			},
		},
	)

	return cards
}
