package ai

import (
	"sort"

	"github.com/frontierline/frontier-server/internal/cards"
)

// Effectiveness weights for the dilemma ordering heuristic. Kills are
// worth the most, a dilemma that cannot threaten anyone is actively bad
// at the front of the pile.
const (
	weightKill    = 10.0
	weightStop    = 5.0
	weightPersist = 3.0
	weightReturn  = 2.0
	weightTrivial = 5.0
)

// ReorderPool sorts a dilemma pool most-damaging-first, so the cheapest
// high-impact dilemmas are drawn before filler. The input slice is
// reordered in place and returned.
func (p *Player) ReorderPool(pool []*cards.Card) []*cards.Card {
	sort.SliceStable(pool, func(i, j int) bool {
		return p.effectiveness(pool[i]) > p.effectiveness(pool[j])
	})
	return pool
}

// effectiveness estimates how much damage a dilemma deals per cost
// point, from the structure of its rule alone. Malformed rules score
// zero rather than crashing the ordering.
func (p *Player) effectiveness(c *cards.Card) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			score = 0
		}
	}()
	if c == nil || c.Dilemma == nil {
		return 0
	}
	d := c.Dilemma
	kills, stops, returns := penaltyEstimate(d.Rule)
	score = kills*weightKill + stops*weightStop + returns*weightReturn
	if kills == 0 && stops == 0 && returns == 0 {
		score -= weightTrivial
	} else if returns > 0 || persistsBeneath(d.Rule) {
		// A dilemma that comes back to the pile or stays beneath the
		// mission un-overcome threatens every later attempt, not just
		// this one.
		score += weightPersist
	}
	cost := d.Cost
	if cost < 1 {
		cost = 1
	}
	return score / float64(cost)
}

// persistsBeneath reports whether a rule resolves un-overcome, leaving
// the dilemma beneath the mission to be faced again on the next attempt.
func persistsBeneath(rule cards.DilemmaRule) bool {
	return rule.Kind == cards.RuleCrewLimit
}

// penaltyEstimate returns rough expected kill, stop, and return-to-pile
// counts for a rule, without knowing the opposing crew.
func penaltyEstimate(rule cards.DilemmaRule) (kills, stops, returns float64) {
	switch rule.Kind {
	case cards.RuleChooseToStop:
		k, s, r := penaltyCounts(rule.Penalty)
		// The attacker usually has the skill and takes the stop.
		return k * 0.4, s*0.4 + 0.6, r * 0.4
	case cards.RuleUnlessCheck:
		k, s, r := penaltyCounts(rule.Penalty)
		// Checks pass about half the time against a built crew.
		return k * 0.5, s * 0.5, r * 0.5
	case cards.RuleRandomThenCheck:
		// Pass stops the target, fail kills it and stops the rest.
		return 0.5, 0.5 + 0.5*3, 0.5
	case cards.RuleRandomStop:
		return 0, float64(len(rule.Stops)), 0
	case cards.RuleCrewLimit:
		over := 5 - rule.KeepCount
		if over < 0 {
			over = 0
		}
		return 0, float64(over), 0
	}
	return 0, 0, 0
}

func penaltyCounts(pen cards.Penalty) (kills, stops, returns float64) {
	switch pen.Kind {
	case cards.PenaltyRandomKill, cards.PenaltyRandomKillWithSkill:
		return 1, 0, 0
	case cards.PenaltyStopAllReturnToPile:
		return 0, 4, 1
	case cards.PenaltyChooseMatchingToStopElseStopAll:
		return 0, 2, 0.5
	}
	return 0, 0, 0
}
