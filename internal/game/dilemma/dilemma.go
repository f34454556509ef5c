// Package dilemma evaluates the five obstacle-resolution templates
// against an attempting crew. Resolutions are pure values; applying them
// to crew state is the caller's job, so an interrupt window can replace a
// resolution before it commits.
package dilemma

import (
	"fmt"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/game/abilities"
	"github.com/frontierline/frontier-server/internal/game/mission"
)

// Resolution is the computed outcome of facing one dilemma. Stopped and
// killed ids reference personnel instances; nothing is mutated here.
type Resolution struct {
	Overcome            bool
	StoppedIDs          []string
	KilledIDs           []string
	ReturnsToPile       bool
	RequiresSelection   bool
	SelectablePersonnel []string
	FailureReason       string
}

// Resolve evaluates d's rule against the crew. Stopped and killed members
// never enter candidate pools. A selection-pending resolution carries the
// candidate ids and defers everything else to ResolveChosen.
func Resolve(d *cards.Dilemma, crew mission.Crew, rng cards.RandomSource) (Resolution, error) {
	switch d.Rule.Kind {
	case cards.RuleChooseToStop:
		return resolveChooseToStop(d.Rule, crew, rng), nil
	case cards.RuleUnlessCheck:
		return resolveUnlessCheck(d.Rule, crew, rng), nil
	case cards.RuleRandomThenCheck:
		return resolveRandomThenCheck(d.Rule, crew, rng), nil
	case cards.RuleRandomStop:
		return resolveRandomStop(d.Rule, crew, rng), nil
	case cards.RuleCrewLimit:
		return resolveCrewLimit(d.Rule, crew, rng), nil
	}
	return Resolution{}, fmt.Errorf("unknown dilemma rule kind %d", int(d.Rule.Kind))
}

// ResolveChosen is the single-purpose resolver fed by a personnel
// selection: the chosen personnel is stopped and the dilemma overcome.
func ResolveChosen(chosenUID string) Resolution {
	return Resolution{
		Overcome:   true,
		StoppedIDs: []string{chosenUID},
	}
}

func unstopped(crew mission.Crew) []*cards.Card {
	var out []*cards.Card
	for _, member := range crew.Members {
		if member.IsUnstoppedPersonnel() {
			out = append(out, member)
		}
	}
	return out
}

// withAnySkill filters members holding at least one of skills, base or
// granted.
func withAnySkill(crew mission.Crew, members []*cards.Card, skills []cards.Skill) []*cards.Card {
	var out []*cards.Card
	for _, member := range members {
		for _, skill := range skills {
			if abilities.HasEffectiveSkill(member, crew.Board, crew.Granted, skill) {
				out = append(out, member)
				break
			}
		}
	}
	return out
}

func ids(members []*cards.Card) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.UniqueID)
	}
	return out
}

func resolveChooseToStop(rule cards.DilemmaRule, crew mission.Crew, rng cards.RandomSource) Resolution {
	active := unstopped(crew)
	candidates := withAnySkill(crew, active, rule.Skills)
	if len(candidates) > 0 {
		return Resolution{
			RequiresSelection:   true,
			SelectablePersonnel: ids(candidates),
		}
	}
	return applyPenalty(rule.Penalty, crew, active, rng)
}

func resolveUnlessCheck(rule cards.DilemmaRule, crew mission.Crew, rng cards.RandomSource) Resolution {
	for _, req := range rule.Requirements {
		if requirementSatisfied(req, crew) {
			return Resolution{Overcome: true}
		}
	}
	res := applyPenalty(rule.Penalty, crew, unstopped(crew), rng)
	if !res.Overcome && res.FailureReason == "" {
		res.FailureReason = "no requirement group satisfied"
	}
	return res
}

// requirementSatisfied checks one OR'd alternative: either the crew's
// pooled skills and attribute, or one individual alone.
func requirementSatisfied(req cards.DilemmaRequirement, crew mission.Crew) bool {
	switch req.Kind {
	case cards.RequirementPooled:
		return mission.CheckPooled(req.Skills, req.Attribute, crew)
	case cards.RequirementSinglePersonnel:
		for _, member := range unstopped(crew) {
			if singleSatisfies(member, req, crew) {
				return true
			}
		}
	}
	return false
}

func singleSatisfies(member *cards.Card, req cards.DilemmaRequirement, crew mission.Crew) bool {
	have := make(map[cards.Skill]int)
	for _, skill := range abilities.EffectiveSkills(member, crew.Board, crew.Granted) {
		have[skill]++
	}
	for _, skill := range req.Skills {
		if have[skill] <= 0 {
			return false
		}
		have[skill]--
	}
	if req.Attribute != nil {
		if abilities.EffectiveAttribute(member, crew.Board, req.Attribute.Attribute) <= req.Attribute.Value {
			return false
		}
	}
	return true
}

func applyPenalty(penalty cards.Penalty, crew mission.Crew, active []*cards.Card, rng cards.RandomSource) Resolution {
	switch penalty.Kind {
	case cards.PenaltyRandomKill:
		if len(active) == 0 {
			return Resolution{Overcome: true}
		}
		victim := active[rng.Intn(len(active))]
		return Resolution{Overcome: true, KilledIDs: []string{victim.UniqueID}}

	case cards.PenaltyRandomKillWithSkill:
		matching := withAnySkill(crew, active, []cards.Skill{penalty.Skill})
		if len(matching) == 0 {
			return Resolution{Overcome: true}
		}
		victim := matching[rng.Intn(len(matching))]
		return Resolution{Overcome: true, KilledIDs: []string{victim.UniqueID}}

	case cards.PenaltyStopAllReturnToPile:
		return Resolution{
			StoppedIDs:    ids(active),
			ReturnsToPile: true,
			FailureReason: "crew stopped",
		}

	case cards.PenaltyChooseMatchingToStopElseStopAll:
		matching := withAnySkill(crew, active, penalty.Skills)
		if len(matching) > 0 {
			return Resolution{
				RequiresSelection:   true,
				SelectablePersonnel: ids(matching),
			}
		}
		return Resolution{
			StoppedIDs:    ids(active),
			ReturnsToPile: true,
			FailureReason: "no matching personnel to stop",
		}
	}
	return Resolution{Overcome: true}
}

func resolveRandomThenCheck(rule cards.DilemmaRule, crew mission.Crew, rng cards.RandomSource) Resolution {
	active := unstopped(crew)
	if len(active) == 0 {
		return Resolution{Overcome: true}
	}
	target := active[rng.Intn(len(active))]
	for _, req := range rule.Requirements {
		if requirementSatisfied(req, crew) {
			return Resolution{Overcome: true, StoppedIDs: []string{target.UniqueID}}
		}
	}
	var others []string
	for _, member := range active {
		if member.UniqueID != target.UniqueID {
			others = append(others, member.UniqueID)
		}
	}
	return Resolution{
		KilledIDs:     []string{target.UniqueID},
		StoppedIDs:    others,
		ReturnsToPile: true,
		FailureReason: "crew failed the check",
	}
}

func resolveRandomStop(rule cards.DilemmaRule, crew mission.Crew, rng cards.RandomSource) Resolution {
	remaining := unstopped(crew)
	var stopped []string
	for _, threshold := range rule.Stops {
		if len(remaining) < threshold {
			continue
		}
		idx := rng.Intn(len(remaining))
		stopped = append(stopped, remaining[idx].UniqueID)
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return Resolution{Overcome: true, StoppedIDs: stopped}
}

func resolveCrewLimit(rule cards.DilemmaRule, crew mission.Crew, rng cards.RandomSource) Resolution {
	remaining := unstopped(crew)
	var stopped []string
	for len(remaining) > rule.KeepCount {
		idx := rng.Intn(len(remaining))
		stopped = append(stopped, remaining[idx].UniqueID)
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return Resolution{StoppedIDs: stopped}
}
