// Package abilities computes effective stats, skills and deploy costs for
// cards under passive and contextual ability modifiers.
package abilities

import (
	"github.com/frontierline/frontier-server/internal/cards"
)

// GrantedSkill is an ephemeral skill conferral recorded when an order or
// interlink ability executes. It is purged at its duration boundary.
type GrantedSkill struct {
	Skill           cards.Skill
	Filter          cards.TargetFilter
	Duration        cards.Duration
	SourceUniqueID  string
	SourceAbilityID string
}

// RangeBoost is an ephemeral range conferral recorded when a range
// modifier effect executes.
type RangeBoost struct {
	Amount          int
	Filter          cards.TargetFilter
	Duration        cards.Duration
	SourceUniqueID  string
	SourceAbilityID string
}

// Board is the evaluation context for one target card: the cards
// physically present in its group, every card its controller has in play,
// and whether a dilemma is currently being faced.
type Board struct {
	Present       []*cards.Card
	AllInPlay     []*cards.Card
	FacingDilemma bool
}

func containsUID(set []*cards.Card, uid string) bool {
	for _, c := range set {
		if c.UniqueID == uid {
			return true
		}
	}
	return false
}

// inScope reports whether an ability on holder can reach target given the
// ability's scope.
func inScope(scope cards.TargetScope, holder, target *cards.Card, board Board) bool {
	switch scope {
	case cards.ScopeSelf:
		return holder.UniqueID == target.UniqueID
	case cards.ScopePresent:
		return containsUID(board.Present, holder.UniqueID)
	case cards.ScopeAllInPlay:
		return true
	}
	return false
}

// modifierActive reports whether an ability's trigger contributes to
// continuous evaluation in this context.
func modifierActive(trigger cards.TriggerType, board Board) bool {
	switch trigger {
	case cards.TriggerPassive:
		return true
	case cards.TriggerWhileFacingDilemma:
		return board.FacingDilemma
	}
	return false
}

// EffectiveAttribute returns target's base attribute plus every matching
// stat modifier in play. Modifiers stack additively, including modifiers
// on the target itself unless the filter excludes self.
func EffectiveAttribute(target *cards.Card, board Board, attr cards.Attribute) int {
	if target.Personnel == nil {
		return 0
	}
	total := target.Personnel.Attributes.Get(attr)
	for _, holder := range board.AllInPlay {
		for _, ability := range holder.Abilities {
			if !modifierActive(ability.Trigger, board) {
				continue
			}
			if !inScope(ability.Target.Scope, holder, target, board) {
				continue
			}
			if !ability.Target.Matches(holder.UniqueID, target) {
				continue
			}
			for _, eff := range ability.Effects {
				if eff.Kind == cards.EffectStatModifier && eff.Attribute == attr {
					total += eff.Amount
				}
			}
		}
	}
	return total
}

// EffectiveAttributes returns all three effective attributes for target.
func EffectiveAttributes(target *cards.Card, board Board) cards.Attributes {
	return cards.Attributes{
		Integrity: EffectiveAttribute(target, board, cards.AttrIntegrity),
		Cunning:   EffectiveAttribute(target, board, cards.AttrCunning),
		Strength:  EffectiveAttribute(target, board, cards.AttrStrength),
	}
}

// grantApplies reports whether a recorded grant reaches target in the
// given context.
func grantApplies(g GrantedSkill, target *cards.Card, board Board) bool {
	switch g.Filter.Scope {
	case cards.ScopeSelf:
		if target.UniqueID != g.SourceUniqueID {
			return false
		}
	case cards.ScopePresent:
		if !containsUID(board.Present, g.SourceUniqueID) {
			return false
		}
	}
	return g.Filter.Matches(g.SourceUniqueID, target)
}

// EffectiveSkills returns target's native skills plus every recorded grant
// that reaches it, plus its own whileFacingDilemma skill grants when a
// dilemma context is active. Duplicates are kept; each occurrence is one
// pool unit.
func EffectiveSkills(target *cards.Card, board Board, granted []GrantedSkill) []cards.Skill {
	if target.Personnel == nil {
		return nil
	}
	skills := target.Personnel.Skills()
	for _, g := range granted {
		if grantApplies(g, target, board) {
			skills = append(skills, g.Skill)
		}
	}
	if board.FacingDilemma {
		for _, ability := range target.Abilities {
			if ability.Trigger != cards.TriggerWhileFacingDilemma {
				continue
			}
			if ability.Target.Scope != cards.ScopeSelf {
				continue
			}
			for _, eff := range ability.Effects {
				if eff.Kind == cards.EffectGrantSkill {
					skills = append(skills, eff.Skill)
				}
			}
		}
	}
	return skills
}

// HasEffectiveSkill reports whether target has skill natively or by grant.
func HasEffectiveSkill(target *cards.Card, board Board, granted []GrantedSkill, skill cards.Skill) bool {
	for _, have := range EffectiveSkills(target, board, granted) {
		if have == skill {
			return true
		}
	}
	return false
}

// Ownership partitions a player's in-play cards for cost-modifier
// scaling: cards the player owns versus cards the player commands.
type Ownership struct {
	Owned     []*cards.Card
	Commanded []*cards.Card
}

func (o Ownership) countMatching(relation cards.OwnershipRelation, filter cards.TargetFilter, holderUID string) int {
	var pool []*cards.Card
	switch relation {
	case cards.RelationOwned:
		pool = o.Owned
	case cards.RelationCommanded:
		pool = o.Commanded
	case cards.RelationCommandedNotOwned:
		for _, c := range o.Commanded {
			if !containsUID(o.Owned, c.UniqueID) {
				pool = append(pool, c)
			}
		}
	}
	count := 0
	for _, c := range pool {
		if filter.Matches(holderUID, c) {
			count++
		}
	}
	return count
}

// EffectiveCost returns the deploy cost of card after every matching cost
// modifier, clamped to a minimum of zero. Modifiers come from the card's
// own whilePlaying abilities and from passive abilities on in-play cards
// whose filter reaches it.
func EffectiveCost(card *cards.Card, inPlay []*cards.Card, own Ownership) int {
	cost := card.Cost
	for _, ability := range card.Abilities {
		if ability.Trigger != cards.TriggerWhilePlaying {
			continue
		}
		cost -= costReduction(ability, card.UniqueID, own)
	}
	for _, holder := range inPlay {
		for _, ability := range holder.Abilities {
			if ability.Trigger != cards.TriggerPassive {
				continue
			}
			if !ability.Target.Matches(holder.UniqueID, card) {
				continue
			}
			cost -= costReduction(ability, holder.UniqueID, own)
		}
	}
	if cost < 0 {
		cost = 0
	}
	return cost
}

func costReduction(ability cards.Ability, holderUID string, own Ownership) int {
	total := 0
	for _, eff := range ability.Effects {
		if eff.Kind != cards.EffectCostModifier {
			continue
		}
		amount := eff.Amount
		if eff.PerMatching != nil {
			amount *= own.countMatching(eff.PerMatching.Relation, eff.PerMatching.Filter, holderUID)
		}
		total += amount
	}
	return total
}
