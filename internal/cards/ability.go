package cards

import "fmt"

// TriggerType scopes when an ability may fire.
type TriggerType int

const (
	// TriggerPassive applies continuously while the holder is in play.
	TriggerPassive TriggerType = iota
	// TriggerOrder is player-initiated during Execute Orders.
	TriggerOrder
	// TriggerInterlink shares skills at mission-attempt time.
	TriggerInterlink
	// TriggerInterrupt reacts while a dilemma resolution is pending.
	TriggerInterrupt
	// TriggerWhileFacingDilemma applies only under a dilemma context.
	TriggerWhileFacingDilemma
	// TriggerWhilePlaying modifies the holder's own deploy.
	TriggerWhilePlaying
	// TriggerEvent fires when the event card is played from hand.
	TriggerEvent
)

var triggerNames = map[TriggerType]string{
	TriggerPassive:            "PASSIVE",
	TriggerOrder:              "ORDER",
	TriggerInterlink:          "INTERLINK",
	TriggerInterrupt:          "INTERRUPT",
	TriggerWhileFacingDilemma: "WHILE_FACING_DILEMMA",
	TriggerWhilePlaying:       "WHILE_PLAYING",
	TriggerEvent:              "EVENT",
}

func (t TriggerType) String() string {
	if name, ok := triggerNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TRIGGER_%d", int(t))
}

// TargetScope determines the candidate set a filter is evaluated against.
type TargetScope int

const (
	ScopeSelf TargetScope = iota
	ScopePresent
	ScopeAllInPlay
)

// TargetFilter selects which cards an effect reaches. Dimensions are
// AND'd together; within one dimension an empty list matches everything
// and a non-empty list matches any listed value. ExcludeSelf compares
// instance identity, never template identity.
type TargetFilter struct {
	Scope        TargetScope
	Species      []Species
	Affiliations []Affiliation
	CardTypes    []CardType
	ExcludeSelf  bool
}

// Matches reports whether candidate passes the filter held by the card
// instance identified by holderUID. Scope narrowing of the candidate set
// is the caller's job; this checks only the per-card dimensions.
func (f TargetFilter) Matches(holderUID string, candidate *Card) bool {
	if f.ExcludeSelf && holderUID != "" && candidate.UniqueID == holderUID {
		return false
	}
	if len(f.CardTypes) > 0 {
		found := false
		for _, t := range f.CardTypes {
			if candidate.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Affiliations) > 0 {
		found := false
		for _, a := range f.Affiliations {
			if candidate.HasAffiliation(a) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Species) > 0 {
		if candidate.Personnel == nil {
			return false
		}
		found := false
		for _, want := range f.Species {
			for _, have := range candidate.Personnel.Species {
				if have == want {
					found = true
					break
				}
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// OwnershipRelation qualifies cost-modifier scaling counts.
type OwnershipRelation int

const (
	RelationOwned OwnershipRelation = iota
	RelationCommanded
	RelationCommandedNotOwned
)

// CountFilter scales a cost modifier by the number of in-play cards that
// match Filter under Relation.
type CountFilter struct {
	Relation OwnershipRelation
	Filter   TargetFilter
}

// EffectKind names one entry of the effect vocabulary.
type EffectKind int

const (
	EffectStatModifier EffectKind = iota
	EffectGrantSkill
	EffectCostModifier
	EffectHandRefresh
	EffectBeamAll
	EffectRangeModifier
	EffectPreventAndOvercome
	EffectRecoverFromDiscard
)

var effectKindNames = map[EffectKind]string{
	EffectStatModifier:       "STAT_MODIFIER",
	EffectGrantSkill:         "GRANT_SKILL",
	EffectCostModifier:       "COST_MODIFIER",
	EffectHandRefresh:        "HAND_REFRESH",
	EffectBeamAll:            "BEAM_ALL",
	EffectRangeModifier:      "RANGE_MODIFIER",
	EffectPreventAndOvercome: "PREVENT_AND_OVERCOME",
	EffectRecoverFromDiscard: "RECOVER_FROM_DISCARD",
}

func (k EffectKind) String() string {
	if name, ok := effectKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EFFECT_%d", int(k))
}

// Effect is one concrete consequence of an ability. Attribute and Amount
// qualify stat, cost and range modifiers; Skill qualifies grants;
// PerMatching scales Amount for cost modifiers.
type Effect struct {
	Kind        EffectKind
	Attribute   Attribute
	Amount      int
	Skill       Skill
	PerMatching *CountFilter
}

// CostKind names how an ability's activation cost is paid.
type CostKind int

const (
	CostDiscardFromDeck CostKind = iota
	CostSacrificeSelf
	CostReturnToHand
)

// AbilityCost is the activation price paid strictly before effects apply.
type AbilityCost struct {
	Kind  CostKind
	Count int
}

// Duration bounds how long an ephemeral effect record lives.
type Duration int

const (
	DurationPermanent Duration = iota
	DurationTurn
	DurationEncounter
)

// ConditionKind names a declared precondition on ability execution.
type ConditionKind int

const (
	// ConditionSpeciesPresent requires an unstopped personnel of Species
	// in the same group as the holder.
	ConditionSpeciesPresent ConditionKind = iota
	// ConditionCopyOvercomeElsewhere requires a copy of the dilemma being
	// faced to already be overcome beneath another mission.
	ConditionCopyOvercomeElsewhere
)

// Condition is a declared precondition validated before cost payment.
type Condition struct {
	Kind    ConditionKind
	Species Species
}

// Ability is one activatable or continuous capability printed on a card.
// UsageLimit of zero means unlimited uses per turn.
type Ability struct {
	ID         string
	Trigger    TriggerType
	Target     TargetFilter
	Effects    []Effect
	Cost       *AbilityCost
	Duration   Duration
	UsageLimit int
	Condition  *Condition
	Text       string
}

func (a Ability) clone() Ability {
	out := a
	out.Effects = append([]Effect(nil), a.Effects...)
	for i, eff := range a.Effects {
		if eff.PerMatching != nil {
			cf := *eff.PerMatching
			out.Effects[i].PerMatching = &cf
		}
	}
	if a.Cost != nil {
		cost := *a.Cost
		out.Cost = &cost
	}
	if a.Condition != nil {
		cond := *a.Condition
		out.Condition = &cond
	}
	out.Target.Species = append([]Species(nil), a.Target.Species...)
	out.Target.Affiliations = append([]Affiliation(nil), a.Target.Affiliations...)
	out.Target.CardTypes = append([]CardType(nil), a.Target.CardTypes...)
	return out
}
